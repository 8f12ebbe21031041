package github

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/repogallery/internal/backoff"
	"github.com/custodia-labs/repogallery/internal/core/domain"
)

// recordedRequest captures what the fake API saw.
type recordedRequest struct {
	Path  string
	Query string
	At    time.Time
}

type recorder struct {
	mu   sync.Mutex
	reqs []recordedRequest
}

func (r *recorder) add(req *http.Request, at time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.reqs = append(r.reqs, recordedRequest{Path: req.URL.Path, Query: req.URL.RawQuery, At: at})
	return len(r.reqs)
}

func (r *recorder) all() []recordedRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]recordedRequest(nil), r.reqs...)
}

func TestClient_Request(t *testing.T) {
	t.Run("injects bearer token and returns body", func(t *testing.T) {
		var auth string
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth = r.Header.Get("Authorization")
			w.Header().Set(HeaderRateRemaining, "4999")
			w.Header().Set(HeaderRateLimit, "5000")
			_, _ = w.Write([]byte(`{"ok":true}`))
		}))

		resp, err := client.Request(context.Background(), http.MethodGet, "orgs/o/repos", url.Values{"page": {"1"}})

		require.NoError(t, err)
		assert.Equal(t, "Bearer test-token", auth)
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
		assert.Equal(t, 4999, resp.RateLimit.Remaining)
		assert.Equal(t, 4999, client.RateLimitState().Remaining)
	})

	t.Run("404 is a distinguished result, not an error", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"message":"Not Found"}`))
		}))

		resp, err := client.Request(context.Background(), http.MethodGet, "repos/o/r/contents/x", nil)

		require.NoError(t, err)
		assert.True(t, resp.NotFound())
	})

	t.Run("other statuses become APIError", func(t *testing.T) {
		client, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"message":"Bad credentials"}`))
		}))

		_, err := client.Request(context.Background(), http.MethodGet, "orgs/o/repos", nil)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Equal(t, "Bad credentials", apiErr.Message)
		assert.True(t, IsUnauthorized(err))
		assert.False(t, IsForbidden(err))
	})

	t.Run("missing token provider requires auth", func(t *testing.T) {
		client := NewClient(nil, DefaultOptions())

		_, err := client.Request(context.Background(), http.MethodGet, "orgs/o/repos", nil)

		assert.True(t, errors.Is(err, domain.ErrAuthRequired))
	})

	t.Run("token errors propagate", func(t *testing.T) {
		client := NewClient(&mockTokenProvider{err: domain.ErrAuthRequired}, DefaultOptions())

		_, err := client.Request(context.Background(), http.MethodGet, "orgs/o/repos", nil)

		assert.True(t, errors.Is(err, domain.ErrAuthRequired))
	})
}

func TestClient_TransientRetry(t *testing.T) {
	t.Run("retries gateway errors with exponential backoff", func(t *testing.T) {
		rec := &recorder{}
		client, clock := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rec.add(r, time.Time{}) <= 3 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			_, _ = w.Write([]byte(`[]`))
		}))

		resp, err := client.Request(context.Background(), http.MethodGet, "orgs/o/repos", nil)

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status)
		assert.Len(t, rec.all(), 4)
		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, clock.Sleeps())
	})

	t.Run("gives up after the retry budget with TransientError", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusOK)
		}))
		t.Cleanup(srv.Close)

		transport := &failingTransport{next: http.DefaultTransport}
		clock := newFakeClock()
		opts := DefaultOptions()
		opts.BaseURL = srv.URL + "/"
		opts.RequestsPerSecond = 0
		opts.Clock = clock
		opts.HTTPClient = &http.Client{Transport: transport}
		client := NewClient(&mockTokenProvider{token: "t"}, opts)

		_, err := client.Request(context.Background(), http.MethodGet, "repos/o/r/contents/README.md", nil)

		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrTransientFetch))
		assert.True(t, IsTransient(err))
		assert.Equal(t, 4, transport.Calls())

		var transientErr *TransientError
		require.ErrorAs(t, err, &transientErr)
		assert.Equal(t, 4, transientErr.Attempts)
		assert.Contains(t, transientErr.Error(), "timeout")
	})

	t.Run("does not retry a cancelled context", func(t *testing.T) {
		transport := &failingTransport{next: http.DefaultTransport}
		opts := DefaultOptions()
		opts.BaseURL = "http://127.0.0.1:1/"
		opts.RequestsPerSecond = 0
		opts.Clock = newFakeClock()
		opts.HTTPClient = &http.Client{Transport: transport}
		client := NewClient(&mockTokenProvider{token: "t"}, opts)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := client.Request(ctx, http.MethodGet, "orgs/o/repos", nil)

		assert.True(t, errors.Is(err, context.Canceled))
		assert.False(t, IsTransient(err))
	})

	t.Run("zero retries tries once", func(t *testing.T) {
		rec := &recorder{}
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec.add(r, time.Time{})
			w.WriteHeader(http.StatusBadGateway)
		}))
		t.Cleanup(srv.Close)

		opts := DefaultOptions()
		opts.BaseURL = srv.URL + "/"
		opts.RequestsPerSecond = 0
		opts.Clock = newFakeClock()
		opts.Retry = backoff.Policy{}
		client := NewClient(&mockTokenProvider{token: "t"}, opts)

		_, err := client.Request(context.Background(), http.MethodGet, "orgs/o/repos", nil)

		assert.True(t, IsTransient(err))
		assert.Len(t, rec.all(), 1)
	})
}

func TestClient_RateLimit(t *testing.T) {
	t.Run("waits until reset then replays the same request", func(t *testing.T) {
		rec := &recorder{}
		var (
			clock *fakeClock
			reset time.Time
		)
		client, clock := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			n := rec.add(r, clock.Now())
			if n == 1 {
				w.Header().Set(HeaderRateRemaining, "0")
				w.Header().Set(HeaderRateLimit, "5000")
				w.Header().Set(HeaderRateReset, fmt.Sprint(reset.Unix()))
				w.WriteHeader(http.StatusTooManyRequests)
				return
			}
			_, _ = w.Write([]byte(`[]`))
		}))
		reset = clock.Now().Add(90 * time.Second)

		resp, err := client.Request(context.Background(), http.MethodGet, "orgs/o/repos",
			url.Values{"per_page": {"100"}, "page": {"3"}})

		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.Status)

		reqs := rec.all()
		require.Len(t, reqs, 2)
		assert.False(t, reqs[1].At.Before(reset), "retry fired before reset")
		assert.Equal(t, reqs[0].Path, reqs[1].Path)
		assert.Equal(t, reqs[0].Query, reqs[1].Query)
		assert.Equal(t, []time.Duration{90 * time.Second}, clock.Sleeps())
	})

	t.Run("honours Retry-After on 403", func(t *testing.T) {
		rec := &recorder{}
		client, clock := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if rec.add(r, time.Time{}) == 1 {
				w.Header().Set(HeaderRetryAfter, "30")
				w.WriteHeader(http.StatusForbidden)
				_, _ = w.Write([]byte(`{"message":"You have exceeded a secondary rate limit"}`))
				return
			}
			_, _ = w.Write([]byte(`{}`))
		}))

		_, err := client.Request(context.Background(), http.MethodGet, "orgs/o/repos", nil)

		require.NoError(t, err)
		assert.Equal(t, []time.Duration{30 * time.Second}, clock.Sleeps())
	})

	t.Run("second limit is RateLimitExceeded", func(t *testing.T) {
		rec := &recorder{}
		var clock *fakeClock
		client, clock := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rec.add(r, time.Time{})
			w.Header().Set(HeaderRateRemaining, "0")
			w.Header().Set(HeaderRateReset, fmt.Sprint(clock.Now().Add(time.Minute).Unix()))
			w.WriteHeader(http.StatusForbidden)
		}))

		_, err := client.Request(context.Background(), http.MethodGet, "orgs/o/repos", nil)

		require.Error(t, err)
		assert.True(t, errors.Is(err, domain.ErrRateLimitExceeded))
		assert.True(t, IsRateLimited(err))
		assert.Len(t, rec.all(), 2, "exactly one replay")

		var rlErr *RateLimitError
		require.ErrorAs(t, err, &rlErr)
		assert.Equal(t, time.Minute, rlErr.Waited)
	})

	t.Run("wait is bounded by MaxRateLimitWait", func(t *testing.T) {
		var clock *fakeClock
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set(HeaderRateRemaining, "0")
			w.Header().Set(HeaderRateReset, fmt.Sprint(clock.Now().Add(time.Hour).Unix()))
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		t.Cleanup(srv.Close)

		clock = newFakeClock()
		opts := DefaultOptions()
		opts.BaseURL = srv.URL + "/"
		opts.RequestsPerSecond = 0
		opts.Clock = clock
		opts.MaxRateLimitWait = 5 * time.Minute
		client := NewClient(&mockTokenProvider{token: "t"}, opts)

		_, err := client.Request(context.Background(), http.MethodGet, "orgs/o/repos", nil)

		assert.True(t, IsRateLimited(err))
		assert.Equal(t, []time.Duration{5 * time.Minute}, clock.Sleeps())
	})
}
