// Package domain defines the core entities of the project gallery pipeline.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - RepositoryID: the organisation/name key used for every lookup
//   - Repository: a discovered repository with its listing metadata
//   - ProjectRecord: the normalised, per-repository dataset entry
//   - AssetReference: a record's asset mapped to a deterministic local path
//   - RateLimitState: the API call budget reported by GitHub
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
