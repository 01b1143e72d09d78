package fetch

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/time/rate"
)

// Fetcher retrieves a page and returns its raw markup, or a definitive
// *Error after the retry policy is exhausted.
//
// Design decision: We accept interfaces at the consumer side (the crawler
// and verifier both take a Fetcher) so tests can substitute synthetic site
// trees without a network.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Client is the production Fetcher. It paces requests, retries transient
// failures with exponential backoff, and honors server rate-limit hints.
type Client struct {
	// hc is the underlying HTTP client. It carries the per-request timeout.
	hc *http.Client

	// limiter paces requests. Every attempt, including retries, waits on
	// the limiter before touching the network.
	limiter *rate.Limiter

	// maxRetries is the number of retry attempts after the first failure.
	maxRetries int

	// baseDelay is the initial backoff delay; each retry doubles it.
	baseDelay time.Duration

	// maxDelay caps the backoff delay.
	maxDelay time.Duration

	// userAgent is sent with every request.
	userAgent string

	// maxBodySize limits how many response bytes are read.
	maxBodySize int64

	// logger records retry activity at debug level.
	logger *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithRetryPolicy sets the retry attempt count and backoff delays.
func WithRetryPolicy(maxRetries int, baseDelay, maxDelay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.baseDelay = baseDelay
		c.maxDelay = maxDelay
	}
}

// WithRequestDelay sets the pacing delay applied before each request.
// Zero disables pacing.
func WithRequestDelay(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.limiter = rate.NewLimiter(rate.Every(d), 1)
		} else {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
		}
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithMaxBodySize sets the maximum response body size.
func WithMaxBodySize(size int64) Option {
	return func(c *Client) {
		c.maxBodySize = size
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a Client around the given HTTP client.
//
// Design decision: We require an external client rather than building one
// because the caller owns the timeout and transport configuration, and tests
// pass httptest-backed clients.
func NewClient(hc *http.Client, opts ...Option) *Client {
	c := &Client{
		hc:          hc,
		limiter:     rate.NewLimiter(rate.Inf, 1),
		maxRetries:  3,
		baseDelay:   time.Second,
		maxDelay:    60 * time.Second,
		userAgent:   "regcrawl/1.0",
		maxBodySize: 10 * 1024 * 1024,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves url. It makes up to 1+maxRetries attempts, waiting on the
// pacing limiter before each and backing off exponentially between failures.
// A 429 response with a Retry-After header delays the next attempt by the
// server-requested interval instead of the backoff schedule.
//
// The returned error, when non-nil, is always a *Error describing the final
// attempt, or the context error if the caller cancelled.
func (c *Client) Fetch(ctx context.Context, url string) ([]byte, error) {
	var lastErr *Error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			wait := c.backoff(attempt)
			// A rate-limited response overrides the backoff schedule with
			// the server's own hint.
			if lastErr != nil && lastErr.Kind == KindRateLimit {
				if hint := retryAfterHint(lastErr); hint > 0 {
					wait = hint
				}
			}
			c.logger.DebugContext(ctx, "retrying fetch",
				"url", url,
				"attempt", attempt,
				"wait", wait,
			)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(wait):
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		body, err := c.do(ctx, url)
		if err == nil {
			return body, nil
		}
		if !errors.As(err, &lastErr) {
			// Context cancellation surfaces as-is; nothing to retry.
			return nil, err
		}
	}

	return nil, lastErr
}

// retryAfter carries the server's Retry-After hint through the error chain.
type retryAfter struct {
	d time.Duration
}

func (r *retryAfter) Error() string {
	return "retry after " + r.d.String()
}

// retryAfterHint extracts the server-provided delay from a rate-limit error.
func retryAfterHint(err *Error) time.Duration {
	var ra *retryAfter
	if errors.As(err.Err, &ra) {
		return ra.d
	}
	return 0
}

// backoff returns the exponential backoff delay before the given attempt.
func (c *Client) backoff(attempt int) time.Duration {
	d := c.baseDelay << (attempt - 1)
	if d > c.maxDelay || d <= 0 {
		d = c.maxDelay
	}
	return d
}

// do performs a single HTTP attempt and classifies any failure.
func (c *Client) do(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &Error{URL: url, Kind: KindConnection, Err: err}
	}

	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := c.hc.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return nil, &Error{URL: url, Kind: KindTimeout, Err: err}
		}
		return nil, &Error{URL: url, Kind: KindConnection, Err: err}
	}
	defer resp.Body.Close() //nolint:errcheck // Best-effort close on read path

	if resp.StatusCode != http.StatusOK {
		// Drain so the connection can be reused across retries.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

		if resp.StatusCode == http.StatusTooManyRequests {
			return nil, &Error{
				URL:        url,
				Kind:       KindRateLimit,
				StatusCode: resp.StatusCode,
				Err:        &retryAfter{d: parseRetryAfter(resp.Header.Get("Retry-After"))},
			}
		}
		return nil, &Error{URL: url, Kind: KindStatus, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize))
	if err != nil {
		return nil, &Error{URL: url, Kind: KindConnection, Err: err}
	}
	return body, nil
}

// defaultRetryAfter is used when a 429 response carries no parseable
// Retry-After header.
const defaultRetryAfter = 60 * time.Second

// parseRetryAfter interprets a Retry-After header value in seconds.
// Date-format values and garbage fall back to defaultRetryAfter.
func parseRetryAfter(v string) time.Duration {
	if v == "" {
		return defaultRetryAfter
	}
	secs, err := strconv.Atoi(v)
	if err != nil || secs < 0 {
		return defaultRetryAfter
	}
	return time.Duration(secs) * time.Second
}
