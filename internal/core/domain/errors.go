package domain

import "errors"

// Domain errors represent pipeline failures.
// Typed errors in the adapters wrap these so callers can use errors.Is.
var (
	// ErrNotFound indicates a requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates malformed or invalid input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrAuthRequired indicates no credential source produced a token.
	ErrAuthRequired = errors.New("authentication required")

	// Run-level errors. These abort the whole run.

	// ErrDiscovery indicates the organisation could not be listed.
	ErrDiscovery = errors.New("discovery failed")

	// ErrPersist indicates the dataset could not be written.
	ErrPersist = errors.New("persist failed")

	// Item-level errors. These degrade a single record to failed.

	// ErrRateLimitExceeded indicates the rate limit was still exhausted
	// after waiting for the reset and retrying once.
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrTransientFetch indicates a network failure that persisted
	// through every retry.
	ErrTransientFetch = errors.New("transient fetch error")
)

// IsItemFailure reports whether err is scoped to a single repository or
// asset rather than the whole run.
func IsItemFailure(err error) bool {
	return errors.Is(err, ErrRateLimitExceeded) || errors.Is(err, ErrTransientFetch)
}
