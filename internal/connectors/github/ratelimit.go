package github

import (
	"context"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/repogallery/internal/core/domain"
)

const (
	// GitHubRateLimit is the authenticated rate limit (5000/hour).
	GitHubRateLimit = 5000

	// ProactiveRate is the proactive throttle rate (~1.2 req/sec = 4320/hr).
	ProactiveRate = 1.2

	// DefaultMaxRateLimitWait bounds a single wait for the limit to reset.
	DefaultMaxRateLimitWait = 15 * time.Minute

	// secondaryLimitWait is used when a limited response carries neither
	// Retry-After nor a future X-RateLimit-Reset.
	secondaryLimitWait = time.Minute

	// HeaderRateLimit is the rate limit header.
	HeaderRateLimit = "X-RateLimit-Limit"

	// HeaderRateRemaining is the remaining requests header.
	HeaderRateRemaining = "X-RateLimit-Remaining"

	// HeaderRateReset is the reset timestamp header (Unix seconds).
	HeaderRateReset = "X-RateLimit-Reset"

	// HeaderRetryAfter is the retry-after header (seconds).
	HeaderRetryAfter = "Retry-After"
)

// RateLimiter owns the process-wide rate-limit state for one client.
// It combines a token bucket for proactive throttling with the budget
// reported by the API on every response.
type RateLimiter struct {
	mu         sync.Mutex
	state      domain.RateLimitState
	bucket     *rate.Limiter
	configured rate.Limit
	clock      Clock
	maxWait    time.Duration
}

// NewRateLimiter creates a rate limiter. A non-positive requestsPerSecond
// disables proactive throttling.
func NewRateLimiter(requestsPerSecond float64, maxWait time.Duration, clock Clock) *RateLimiter {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	if clock == nil {
		clock = SystemClock{}
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxRateLimitWait
	}
	return &RateLimiter{
		state: domain.RateLimitState{
			Remaining: GitHubRateLimit, // Assume full quota initially
			Limit:     GitHubRateLimit,
		},
		bucket:     rate.NewLimiter(limit, 1),
		configured: limit,
		clock:      clock,
		maxWait:    maxWait,
	}
}

// Wait blocks until it's safe to make a request.
// It uses both proactive throttling and the reported budget.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.bucket.Wait(ctx); err != nil {
		return err
	}

	r.mu.Lock()
	state := r.state
	r.mu.Unlock()

	now := r.clock.Now()
	if state.Exhausted(now) {
		return r.clock.Sleep(ctx, r.capWait(state.Window(now)))
	}
	return nil
}

// Throttle applies only the proactive token bucket.
func (r *RateLimiter) Throttle(ctx context.Context) error {
	return r.bucket.Wait(ctx)
}

// UpdateFromResponse updates rate limit state from response headers.
func (r *RateLimiter) UpdateFromResponse(resp *http.Response) {
	if resp == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if remaining := resp.Header.Get(HeaderRateRemaining); remaining != "" {
		if val, err := strconv.Atoi(remaining); err == nil {
			r.state.Remaining = val
		}
	}

	if limit := resp.Header.Get(HeaderRateLimit); limit != "" {
		if val, err := strconv.Atoi(limit); err == nil {
			r.state.Limit = val
		}
	}

	if reset := resp.Header.Get(HeaderRateReset); reset != "" {
		if val, err := strconv.ParseInt(reset, 10, 64); err == nil {
			r.state.Reset = time.Unix(val, 0)
		}
	}

	r.adapt()
}

// adapt lowers the bucket rate to what the remaining budget can sustain
// until the reset. Caller must hold mu.
func (r *RateLimiter) adapt() {
	if r.configured == rate.Inf {
		return
	}
	window := r.state.Window(r.clock.Now())
	if window <= 0 || r.state.Remaining <= 0 {
		r.bucket.SetLimit(r.configured)
		return
	}
	sustainable := rate.Limit(float64(r.state.Remaining) / window.Seconds())
	if sustainable < r.configured {
		r.bucket.SetLimit(sustainable)
		return
	}
	r.bucket.SetLimit(r.configured)
}

// IsRateLimitResponse reports whether a response signals rate-limit
// exhaustion: 429, or 403 with no remaining budget or a Retry-After header.
func IsRateLimitResponse(status int, header http.Header) bool {
	switch status {
	case http.StatusTooManyRequests:
		return true
	case http.StatusForbidden:
		return header.Get(HeaderRateRemaining) == "0" || header.Get(HeaderRetryAfter) != ""
	}
	return false
}

// ResetFor returns when the limit signalled by a response lifts.
// Retry-After takes precedence over X-RateLimit-Reset.
func (r *RateLimiter) ResetFor(header http.Header) time.Time {
	now := r.clock.Now()
	if retryAfter := header.Get(HeaderRetryAfter); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			return now.Add(time.Duration(seconds) * time.Second)
		}
	}
	r.mu.Lock()
	reset := r.state.Reset
	r.mu.Unlock()
	if reset.After(now) {
		return reset
	}
	return now.Add(secondaryLimitWait)
}

// WaitUntil sleeps until t, bounded by the maximum wait, and returns how
// long it slept.
func (r *RateLimiter) WaitUntil(ctx context.Context, t time.Time) (time.Duration, error) {
	d := r.capWait(t.Sub(r.clock.Now()))
	if d <= 0 {
		return 0, ctx.Err()
	}
	return d, r.clock.Sleep(ctx, d)
}

func (r *RateLimiter) capWait(d time.Duration) time.Duration {
	if d > r.maxWait {
		return r.maxWait
	}
	return d
}

// State returns a snapshot of the rate limit state.
func (r *RateLimiter) State() domain.RateLimitState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Remaining returns the current remaining requests.
func (r *RateLimiter) Remaining() int {
	return r.State().Remaining
}

// Limit returns the rate limit.
func (r *RateLimiter) Limit() int {
	return r.State().Limit
}

// ResetTime returns the rate limit reset time.
func (r *RateLimiter) ResetTime() time.Time {
	return r.State().Reset
}

// RetryState is a request's position in rate-limit handling.
type RetryState int

const (
	// StateReady means the request may be sent.
	StateReady RetryState = iota

	// StateWaiting means the request was limited and must wait for the reset.
	StateWaiting

	// StateRetrying means the single replay after the wait is in flight.
	StateRetrying

	// StateExhausted means the replay was limited too; give up.
	StateExhausted
)

func (s RetryState) String() string {
	switch s {
	case StateReady:
		return "ready"
	case StateWaiting:
		return "waiting"
	case StateRetrying:
		return "retrying"
	case StateExhausted:
		return "exhausted"
	}
	return "unknown"
}

// RetryMachine drives one request through rate-limit handling:
//
//	Ready --limited--> Waiting --waited--> Retrying --limited--> Exhausted
//	                                          \--ok--> Ready
type RetryMachine struct {
	state RetryState
}

// State returns the current state.
func (m *RetryMachine) State() RetryState {
	return m.state
}

// Observe records whether the latest response was rate limited and
// returns the next state. Exhausted is terminal.
func (m *RetryMachine) Observe(limited bool) RetryState {
	switch m.state {
	case StateReady:
		if limited {
			m.state = StateWaiting
		}
	case StateRetrying:
		if limited {
			m.state = StateExhausted
		} else {
			m.state = StateReady
		}
	}
	return m.state
}

// Waited records that the wait for the reset finished.
func (m *RetryMachine) Waited() RetryState {
	if m.state == StateWaiting {
		m.state = StateRetrying
	}
	return m.state
}
