// Package base provides the shared HTTP client used to talk to api.php.
package base

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cenkalti/backoff/v5"
	"golang.org/x/time/rate"

	"github.com/olgasafonova/mediawiki-list-client/internal/infra"
	"github.com/olgasafonova/mediawiki-list-client/metrics"
)

const (
	// DefaultTimeout for API requests
	DefaultTimeout = 30 * time.Second

	// DefaultCacheTTL for cached responses
	DefaultCacheTTL = 5 * time.Minute

	// MaxConcurrentRequests limits parallel API calls
	MaxConcurrentRequests = 5

	// DefaultUserAgent is sent when the request names none
	DefaultUserAgent = "mediawiki-list-client/1.0"

	// MaxResponseSize caps how much of a response body is read
	MaxResponseSize = 32 << 20
)

// Client provides common HTTP client infrastructure with caching, rate limiting,
// circuit breaking, and request deduplication.
type Client struct {
	HTTPClient     *http.Client
	Logger         *slog.Logger
	Cache          *infra.Cache
	Dedup          *infra.RequestDeduplicator
	CircuitBreaker *infra.CircuitBreaker
	Semaphore      chan struct{}
	Limiter        *rate.Limiter

	// NewBackOff builds the retry schedule for one request.
	NewBackOff func() backoff.BackOff
}

// ClientOption configures the Client
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) ClientOption {
	return func(client *Client) {
		client.HTTPClient = c
	}
}

// WithLogger sets a custom logger
func WithLogger(l *slog.Logger) ClientOption {
	return func(client *Client) {
		client.Logger = l
	}
}

// WithCache sets a custom cache
func WithCache(c *infra.Cache) ClientOption {
	return func(client *Client) {
		client.Cache = c
	}
}

// WithCircuitBreaker sets a custom circuit breaker
func WithCircuitBreaker(cb *infra.CircuitBreaker) ClientOption {
	return func(client *Client) {
		client.CircuitBreaker = cb
	}
}

// WithMaxConcurrent sets how many requests may be in flight at once
func WithMaxConcurrent(n int) ClientOption {
	return func(client *Client) {
		if n > 0 {
			client.Semaphore = make(chan struct{}, n)
		}
	}
}

// WithRateLimit spaces requests to rps per second with the given burst.
// A non-positive rps disables the limiter.
func WithRateLimit(rps float64, burst int) ClientOption {
	return func(client *Client) {
		if rps <= 0 {
			client.Limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		client.Limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// WithBackOff replaces the retry schedule
func WithBackOff(newBackOff func() backoff.BackOff) ClientOption {
	return func(client *Client) {
		client.NewBackOff = newBackOff
	}
}

// NewClient creates a new base client with default settings
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		HTTPClient:     newHTTPClient(DefaultTimeout),
		Logger:         slog.Default(),
		Cache:          infra.NewCache(infra.DefaultMaxCacheEntries),
		Dedup:          infra.NewRequestDeduplicator(),
		CircuitBreaker: infra.NewCircuitBreaker(),
		Semaphore:      make(chan struct{}, MaxConcurrentRequests),
		NewBackOff:     defaultBackOff,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func defaultBackOff() backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 100 * time.Millisecond
	b.MaxInterval = 5 * time.Second
	return b
}

// Close releases resources held by the client
func (c *Client) Close() {
	if c.Cache != nil {
		c.Cache.Purge()
	}
	if c.HTTPClient != nil {
		c.HTTPClient.CloseIdleConnections()
	}
}

// CircuitBreakerStats returns the current circuit breaker state
func (c *Client) CircuitBreakerStats() infra.CircuitBreakerStats {
	return c.CircuitBreaker.Stats()
}

// DedupStats returns the number of in-flight deduplicated requests
func (c *Client) DedupStats() int {
	return c.Dedup.Stats()
}

// AcquireSlot blocks until a request slot is available or context is canceled
func (c *Client) AcquireSlot(ctx context.Context) error {
	select {
	case c.Semaphore <- struct{}{}:
		return nil
	default:
	}
	metrics.RateLimitWaits.Inc()
	select {
	case c.Semaphore <- struct{}{}:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("context canceled while waiting for request slot: %w", ctx.Err())
	}
}

// ReleaseSlot releases a request slot
func (c *Client) ReleaseSlot() {
	<-c.Semaphore
}

// WaitRateLimit blocks until the limiter grants a token. A nil limiter never blocks.
func (c *Client) WaitRateLimit(ctx context.Context) error {
	if c.Limiter == nil {
		return nil
	}
	if c.Limiter.Tokens() < 1 {
		metrics.RateLimitWaits.Inc()
	}
	if err := c.Limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}
	return nil
}

// CheckCircuitBreaker returns nil if requests are allowed, or an error if the circuit is open
func (c *Client) CheckCircuitBreaker() error {
	if !c.CircuitBreaker.Allow() {
		stats := c.CircuitBreaker.Stats()
		return &infra.ErrCircuitOpen{
			State:    stats.State,
			RetryAt:  c.CircuitBreaker.RetryAt(),
			Failures: stats.ConsecutiveFails,
		}
	}
	return nil
}

// RequestConfig configures a single HTTP request
type RequestConfig struct {
	URL       string
	Form      url.Values // sent as a POST body when set
	UserAgent string
	MaxRetry  int // attempts, defaults to 3
}

type response struct {
	body   []byte
	status int
}

// DoRequest performs an HTTP request with circuit breaker, rate limiting, and retries.
// Network failures, 429 and 5xx are retried; Retry-After is honored. Any other
// status is returned with its body for the caller to interpret.
func (c *Client) DoRequest(ctx context.Context, cfg RequestConfig) ([]byte, int, error) {
	if err := c.CheckCircuitBreaker(); err != nil {
		return nil, 0, err
	}
	if err := c.WaitRateLimit(ctx); err != nil {
		return nil, 0, err
	}
	if err := c.AcquireSlot(ctx); err != nil {
		return nil, 0, err
	}
	defer c.ReleaseSlot()

	maxRetry := cfg.MaxRetry
	if maxRetry <= 0 {
		maxRetry = 3
	}

	attempt := 0
	operation := func() (response, error) {
		attempt++
		req, err := newRequest(ctx, cfg)
		if err != nil {
			return response{}, backoff.Permanent(err)
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			c.Logger.Warn("API request failed",
				"attempt", attempt,
				"max_attempts", maxRetry,
				"url", cfg.URL,
				"error", err)
			return response{}, fmt.Errorf("request failed: %w", err)
		}
		metrics.HTTPRequestsTotal.WithLabelValues(req.Method, strconv.Itoa(resp.StatusCode)).Inc()

		body, err := readAndClose(resp)
		if err != nil {
			return response{}, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode == http.StatusTooManyRequests {
			if seconds, parseErr := strconv.Atoi(resp.Header.Get("Retry-After")); parseErr == nil && seconds >= 0 {
				c.Logger.Warn("Rate limited, waiting", "retry_after", seconds, "attempt", attempt)
				return response{}, backoff.RetryAfter(seconds)
			}
			return response{}, fmt.Errorf("rate limited (429)")
		}

		if resp.StatusCode >= 500 {
			return response{}, fmt.Errorf("server error %d: %s", resp.StatusCode, Truncate(string(body), 200))
		}

		return response{body: body, status: resp.StatusCode}, nil
	}

	res, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(c.NewBackOff()),
		backoff.WithMaxTries(uint(maxRetry)),
		backoff.WithNotify(func(err error, next time.Duration) {
			metrics.APIRetries.WithLabelValues(retryReason(err)).Inc()
			c.Logger.Debug("Retrying API request", "after", next, "error", err)
		}),
	)
	if err != nil {
		if ctx.Err() == nil {
			c.CircuitBreaker.RecordFailure()
		}
		return nil, 0, err
	}
	return res.body, res.status, nil
}

func newRequest(ctx context.Context, cfg RequestConfig) (*http.Request, error) {
	method := http.MethodGet
	var body io.Reader
	if cfg.Form != nil {
		method = http.MethodPost
		body = strings.NewReader(cfg.Form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, method, cfg.URL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if cfg.Form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if cfg.UserAgent != "" {
		req.Header.Set("User-Agent", cfg.UserAgent)
	} else {
		req.Header.Set("User-Agent", DefaultUserAgent)
	}
	return req, nil
}

func retryReason(err error) string {
	var retryAfter *backoff.RetryAfterError
	switch {
	case errors.As(err, &retryAfter):
		return "rate_limited"
	case strings.HasPrefix(err.Error(), "rate limited"):
		return "rate_limited"
	case strings.HasPrefix(err.Error(), "server error"):
		return "server_error"
	default:
		return "network"
	}
}

// RecordSuccess records a successful request with the circuit breaker
func (c *Client) RecordSuccess() {
	c.CircuitBreaker.RecordSuccess()
}

// RecordFailure records a failed request with the circuit breaker
func (c *Client) RecordFailure() {
	c.CircuitBreaker.RecordFailure()
}

// readAndClose reads the response body and closes it
func readAndClose(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	_ = resp.Body.Close()
	if err != nil {
		return body, err
	}
	if len(body) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeds %d bytes", MaxResponseSize)
	}
	return body, nil
}

// Truncate shortens s to at most maxLen bytes, adding "..." if truncated.
// The cut backs off to a rune boundary so the result stays valid UTF-8.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := max(maxLen, 0)
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

// newHTTPClient creates an HTTP client with a cookie jar for wiki sessions
func newHTTPClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   20,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       120 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	jar, _ := cookiejar.New(nil)
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
		Jar:       jar,
	}
}

// NewHTTPClient creates the default transport with a custom timeout
func NewHTTPClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return newHTTPClient(timeout)
}
