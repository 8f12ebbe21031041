package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	gh "github.com/google/go-github/v80/github"
	"golang.org/x/oauth2"

	"github.com/custodia-labs/repogallery/internal/backoff"
	"github.com/custodia-labs/repogallery/internal/core/domain"
	"github.com/custodia-labs/repogallery/internal/core/ports/driven"
	"github.com/custodia-labs/repogallery/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second
)

// Ensure Client reports its rate-limit state.
var _ driven.RateLimitReporter = (*Client)(nil)

// Options configures a Client. Start from DefaultOptions.
type Options struct {
	// BaseURL overrides the API root; it must end with a slash.
	BaseURL string

	// HTTPClient is the base client the token transport wraps.
	HTTPClient *http.Client

	// RequestsPerSecond is the proactive throttle. Zero disables it.
	RequestsPerSecond float64

	// MaxRateLimitWait bounds a single wait for the limit to reset.
	MaxRateLimitWait time.Duration

	// Retry is the backoff schedule for transient failures.
	Retry backoff.Policy

	// Clock is used for every wait. Defaults to SystemClock.
	Clock Clock
}

// DefaultOptions returns the production settings.
func DefaultOptions() Options {
	return Options{
		RequestsPerSecond: ProactiveRate,
		MaxRateLimitWait:  DefaultMaxRateLimitWait,
		Retry:             backoff.Default(),
		Clock:             SystemClock{},
	}
}

// Response is the outcome of a single logical API request.
type Response struct {
	Status    int
	Body      []byte
	Header    http.Header
	RateLimit domain.RateLimitState
}

// NotFound reports the distinguished 404 result.
func (r *Response) NotFound() bool {
	return r.Status == http.StatusNotFound
}

// Client wraps the go-github client with rate-limit awareness and retry.
type Client struct {
	mu            sync.Mutex
	gh            *gh.Client
	tokenProvider driven.TokenProvider
	opts          Options
	rateLimiter   *RateLimiter
}

// NewClient creates a new GitHub API client with a token provider.
func NewClient(tokenProvider driven.TokenProvider, opts Options) *Client {
	if opts.Clock == nil {
		opts.Clock = SystemClock{}
	}
	return &Client{
		tokenProvider: tokenProvider,
		opts:          opts,
		rateLimiter:   NewRateLimiter(opts.RequestsPerSecond, opts.MaxRateLimitWait, opts.Clock),
	}
}

// ensureClient initializes the go-github client if not already done.
// This is called lazily so the token is only resolved when needed.
func (c *Client) ensureClient(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gh != nil {
		return nil
	}
	if c.tokenProvider == nil {
		return domain.ErrAuthRequired
	}

	token, err := c.tokenProvider.GetToken(ctx)
	if err != nil {
		return fmt.Errorf("get token: %w", err)
	}

	base := c.opts.HTTPClient
	if base == nil {
		base = &http.Client{Timeout: DefaultTimeout}
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.WithValue(context.Background(), oauth2.HTTPClient, base), ts)
	tc.Timeout = base.Timeout

	client := gh.NewClient(tc)
	if c.opts.BaseURL != "" {
		u, err := url.Parse(c.opts.BaseURL)
		if err != nil {
			return fmt.Errorf("parse base url: %w", err)
		}
		client.BaseURL = u
	}
	c.gh = client

	return nil
}

// BaseURL returns the API root requests are resolved against.
func (c *Client) BaseURL(ctx context.Context) (*url.URL, error) {
	if err := c.ensureClient(ctx); err != nil {
		return nil, err
	}
	return c.gh.BaseURL, nil
}

// Request performs method on path with query params.
//
// A 404 is returned as a Response with NotFound() true and a nil error.
// Rate-limited responses wait for the reset (bounded) and are replayed
// exactly once; a second limit yields *RateLimitError. Network failures
// and 5xx gateway errors are retried with exponential backoff; exhausting
// the retries yields *TransientError. Other non-2xx statuses yield
// *APIError.
func (c *Client) Request(ctx context.Context, method, path string, params url.Values) (*Response, error) {
	if err := c.ensureClient(ctx); err != nil {
		return nil, err
	}

	var (
		machine RetryMachine
		waited  time.Duration
	)
	for {
		replay := machine.State() == StateRetrying
		resp, err := c.doWithRetry(ctx, method, path, params, replay)
		if err != nil {
			return nil, err
		}

		limited := IsRateLimitResponse(resp.Status, resp.Header)
		switch machine.Observe(limited) {
		case StateWaiting:
			reset := c.rateLimiter.ResetFor(resp.Header)
			logger.Warn("[github] rate limited on %s %s, waiting until %s",
				method, path, reset.Format(time.RFC3339))
			d, err := c.rateLimiter.WaitUntil(ctx, reset)
			waited += d
			if err != nil {
				return nil, err
			}
			machine.Waited()
		case StateExhausted:
			state := c.rateLimiter.State()
			return nil, &RateLimitError{
				ResetAt:   c.rateLimiter.ResetFor(resp.Header),
				Remaining: state.Remaining,
				Limit:     state.Limit,
				Waited:    waited,
			}
		default:
			if err := checkStatus(resp, c.gh.BaseURL, path); err != nil {
				return nil, err
			}
			return resp, nil
		}
	}
}

// doWithRetry performs one exchange, retrying transient failures.
func (c *Client) doWithRetry(
	ctx context.Context, method, path string, params url.Values, replay bool,
) (*Response, error) {
	attempts := c.opts.Retry.Attempts()
	var lastErr error

	for i := 0; i < attempts; i++ {
		if i > 0 {
			delay := c.opts.Retry.Delay(i)
			logger.Debug("[github] retry %d/%d for %s %s in %s: %v",
				i, attempts-1, method, path, delay, lastErr)
			if err := c.opts.Clock.Sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		resp, err := c.exchange(ctx, method, path, params, replay)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			lastErr = err
			continue
		}
		if isTransientStatus(resp.Status) {
			lastErr = fmt.Errorf("server returned %d", resp.Status)
			continue
		}
		return resp, nil
	}

	return nil, &TransientError{Attempts: attempts, Err: lastErr}
}

// exchange sends a single HTTP request. A non-nil error means no usable
// response was received. A replay has already waited for the reset and
// only goes through the token bucket.
func (c *Client) exchange(
	ctx context.Context, method, path string, params url.Values, replay bool,
) (*Response, error) {
	wait := c.rateLimiter.Wait
	if replay {
		wait = c.rateLimiter.Throttle
	}
	if err := wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	urlStr := path
	if len(params) > 0 {
		urlStr += "?" + params.Encode()
	}
	req, err := c.gh.NewRequest(method, urlStr, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	// The limiter owns rate-limit state; skip go-github's own pre-flight check.
	ctx = context.WithValue(ctx, gh.BypassRateLimitCheck, true)
	resp, doErr := c.gh.BareDo(ctx, req)
	if resp == nil || resp.Response == nil {
		if doErr == nil {
			doErr = errors.New("empty response")
		}
		return nil, doErr
	}
	defer resp.Body.Close()

	c.rateLimiter.UpdateFromResponse(resp.Response)

	body, readErr := io.ReadAll(resp.Body)
	if readErr != nil && doErr == nil {
		// A body cut short on a success status is a network failure.
		return nil, fmt.Errorf("read body: %w", readErr)
	}

	return &Response{
		Status:    resp.StatusCode,
		Body:      body,
		Header:    resp.Header,
		RateLimit: c.rateLimiter.State(),
	}, nil
}

// RateLimitState returns the most recent rate limit state.
func (c *Client) RateLimitState() domain.RateLimitState {
	return c.rateLimiter.State()
}

// RateLimiter returns the rate limiter for external access.
func (c *Client) RateLimiter() *RateLimiter {
	return c.rateLimiter
}

func isTransientStatus(status int) bool {
	switch status {
	case http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// checkStatus converts non-success statuses other than 404 into *APIError.
func checkStatus(resp *Response, base *url.URL, path string) error {
	if resp.Status >= 200 && resp.Status < 300 || resp.NotFound() {
		return nil
	}

	var body struct {
		Message string `json:"message"`
	}
	_ = json.Unmarshal(resp.Body, &body)
	if body.Message == "" {
		body.Message = http.StatusText(resp.Status)
	}

	target := path
	if u, err := base.Parse(strings.TrimPrefix(path, "/")); err == nil {
		target = u.String()
	}
	return &APIError{
		StatusCode: resp.Status,
		Message:    body.Message,
		URL:        target,
	}
}
