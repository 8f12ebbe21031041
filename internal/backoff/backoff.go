// Package backoff holds the retry schedule shared by the GitHub API client
// and the asset downloader.
package backoff

import "time"

const (
	// DefaultMaxRetries is the number of retries after the first attempt.
	DefaultMaxRetries = 3

	// DefaultInitial is the delay before the first retry.
	DefaultInitial = time.Second

	// DefaultMax caps any single delay.
	DefaultMax = 30 * time.Second
)

// Policy is an exponential backoff schedule.
type Policy struct {
	MaxRetries int
	Initial    time.Duration
	Max        time.Duration
}

// Default returns the standard policy: 3 retries at 1s, 2s, 4s.
func Default() Policy {
	return Policy{
		MaxRetries: DefaultMaxRetries,
		Initial:    DefaultInitial,
		Max:        DefaultMax,
	}
}

// Delay returns the wait before retry number attempt (1-based).
func (p Policy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	d := p.Initial
	for i := 1; i < attempt; i++ {
		d *= 2
		if p.Max > 0 && d >= p.Max {
			return p.Max
		}
	}
	if p.Max > 0 && d > p.Max {
		return p.Max
	}
	return d
}

// Attempts returns the total number of tries, including the first.
func (p Policy) Attempts() int {
	if p.MaxRetries < 0 {
		return 1
	}
	return p.MaxRetries + 1
}
