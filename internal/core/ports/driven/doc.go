// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - TokenProvider: supplies the GitHub bearer token
//   - RepositoryLister: discovers organisation repositories
//   - ContentFetcher: reads files and directories from a repository
//   - ContentExtractor: pulls raw fields out of repository content
//   - RecordNormaliser: turns raw fields into a ProjectRecord
//   - DatasetStore: persists the dataset atomically
//   - AssetStore: maps asset URLs to local files and downloads them
//   - AssetManifestStore: persists per-asset outcomes
//
// # Optional Interfaces
//
//   - RateLimitReporter: exposes the API budget for worker pool sizing.
//     Without it the pool runs at its configured maximum.
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter, connector, or normaliser package
package driven
