package github

import (
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/repogallery/internal/core/domain"
)

// GitHub-specific errors.
var (
	// ErrNotAFile indicates a contents path resolved to a directory.
	ErrNotAFile = errors.New("github: path is not a file")

	// ErrNotADirectory indicates a contents path resolved to a file.
	ErrNotADirectory = errors.New("github: path is not a directory")
)

// RateLimitError is returned when the rate limit was still exhausted after
// waiting for the reset and replaying the request once.
type RateLimitError struct {
	ResetAt   time.Time
	Remaining int
	Limit     int
	Waited    time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: rate limit exceeded, resets at %s (waited %s)",
		e.ResetAt.Format(time.RFC3339), e.Waited)
}

// Is matches domain.ErrRateLimitExceeded.
func (e *RateLimitError) Is(target error) bool {
	return target == domain.ErrRateLimitExceeded
}

// TransientError is returned when a network failure persisted through
// every retry.
type TransientError struct {
	Attempts int
	Err      error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("github: transient error after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap returns the last underlying failure.
func (e *TransientError) Unwrap() error {
	return e.Err
}

// Is matches domain.ErrTransientFetch.
func (e *TransientError) Is(target error) bool {
	return target == domain.ErrTransientFetch
}

// APIError represents a GitHub API error response.
type APIError struct {
	StatusCode int
	Message    string
	URL        string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("github: API error %d: %s (URL: %s)", e.StatusCode, e.Message, e.URL)
}

// DiscoveryError is returned when the organisation cannot be listed.
type DiscoveryError struct {
	Organization string
	Err          error
}

func (e *DiscoveryError) Error() string {
	return fmt.Sprintf("github: discover repositories of %s: %v", e.Organization, e.Err)
}

// Unwrap returns the underlying failure.
func (e *DiscoveryError) Unwrap() error {
	return e.Err
}

// Is matches domain.ErrDiscovery.
func (e *DiscoveryError) Is(target error) bool {
	return target == domain.ErrDiscovery
}

// IsRateLimited checks if the error indicates rate limit exhaustion.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// IsTransient checks if the error indicates exhausted network retries.
func IsTransient(err error) bool {
	var transientErr *TransientError
	return errors.As(err, &transientErr)
}

// IsUnauthorized checks if the error indicates an authentication failure.
func IsUnauthorized(err error) bool {
	return hasStatus(err, 401)
}

// IsForbidden checks if the error indicates a forbidden resource.
func IsForbidden(err error) bool {
	return hasStatus(err, 403)
}

func hasStatus(err error, status int) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == status
	}
	return false
}
