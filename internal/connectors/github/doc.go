// Package github implements the GitHub REST API side of the gallery
// pipeline: an authenticated, rate-limit aware client, organisation
// repository discovery, and repository content access.
//
// # Architecture
//
// The package implements the driven ports [driven.RepositoryLister] and
// [driven.ContentFetcher]. It comprises the following components:
//
//   - Client: performs requests with token injection, throttling and retry
//   - RateLimiter: owns the process-wide rate-limit state
//   - RetryMachine: the per-request rate-limit state machine
//   - Discoverer: lazy, restartable listing of organisation repositories
//
// # Authentication
//
// The token comes from a [driven.TokenProvider] and is injected as a
// bearer token through an oauth2 static token source. It is resolved
// lazily on the first request.
//
// # Rate Limiting
//
// The client implements a dual-strategy rate limiting approach:
//
//  1. Proactive throttling: a token bucket shared by all workers limits
//     requests to approximately 1.2 requests per second, lowered further
//     when the reported budget cannot sustain that rate until the reset.
//
//  2. Reactive handling: a 429, or a 403 with no remaining budget, moves
//     the request from Ready to Waiting. The client sleeps until the
//     reported reset (Retry-After, else X-RateLimit-Reset), bounded by
//     the maximum wait, and replays the identical request once
//     (Retrying). A second limit is terminal (Exhausted) and returns
//     [RateLimitError].
//
// # Error Handling
//
//   - 404: returned as a Response with NotFound() true, never an error
//   - Network errors and 500/502/503/504: retried with exponential backoff
//     (1s, 2s, 4s); then [TransientError]
//   - Other statuses: [APIError]
//   - Listing failures at organisation level: [DiscoveryError], fatal
//
// All typed errors match the domain sentinels through errors.Is.
//
// # Example Usage
//
//	client := github.NewClient(tokenProvider, github.DefaultOptions())
//	discoverer := github.NewDiscoverer(client, true)
//
//	for repo, err := range discoverer.Repositories(ctx, "UBC-MDS", "DSCI-532_2026_") {
//	    if err != nil {
//	        return err
//	    }
//	    readme, found, err := client.GetFile(ctx, repo.ID, "README.md", repo.Branch())
//	    // ...
//	}
package github
