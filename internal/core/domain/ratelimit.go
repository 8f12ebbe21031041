package domain

import "time"

// RateLimitState is the call budget reported by the API on each response.
type RateLimitState struct {
	Limit     int       `json:"limit"`
	Remaining int       `json:"remaining"`
	Reset     time.Time `json:"reset"`
}

// Exhausted reports whether no calls remain before the reset.
func (s RateLimitState) Exhausted(now time.Time) bool {
	return s.Remaining <= 0 && now.Before(s.Reset)
}

// Window returns the time until the budget resets, or zero if unknown
// or already past.
func (s RateLimitState) Window(now time.Time) time.Duration {
	if s.Reset.IsZero() || !now.Before(s.Reset) {
		return 0
	}
	return s.Reset.Sub(now)
}
