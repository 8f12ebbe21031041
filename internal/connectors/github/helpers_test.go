package github

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

// mockTokenProvider implements driven.TokenProvider for testing.
type mockTokenProvider struct {
	token string
	err   error
}

func (p *mockTokenProvider) GetToken(_ context.Context) (string, error) {
	return p.token, p.err
}

func (p *mockTokenProvider) IsAuthenticated() bool {
	return p.token != ""
}

// fakeClock advances instantly on Sleep and records every wait.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	sleeps []time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Unix(1_700_000_000, 0)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.sleeps = append(c.sleeps, d)
	c.mu.Unlock()
	return ctx.Err()
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

// timeoutError is a net.Error reporting a timeout.
type timeoutError struct{}

func (timeoutError) Error() string   { return "i/o timeout" }
func (timeoutError) Timeout() bool   { return true }
func (timeoutError) Temporary() bool { return true }

var _ net.Error = timeoutError{}

// failingTransport fails every request whose path satisfies match and
// sends the rest to next.
type failingTransport struct {
	mu    sync.Mutex
	match func(*http.Request) bool
	next  http.RoundTripper
	calls int
}

func (f *failingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if f.match == nil || f.match(req) {
		f.mu.Lock()
		f.calls++
		f.mu.Unlock()
		return nil, timeoutError{}
	}
	return f.next.RoundTrip(req)
}

func (f *failingTransport) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// newTestClient creates a client against handler with throttling off and
// a fake clock.
func newTestClient(t *testing.T, handler http.Handler) (*Client, *fakeClock) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	clock := newFakeClock()
	opts := DefaultOptions()
	opts.BaseURL = srv.URL + "/"
	opts.RequestsPerSecond = 0
	opts.Clock = clock

	return NewClient(&mockTokenProvider{token: "test-token"}, opts), clock
}
