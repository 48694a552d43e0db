package nse

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"

	"github.com/ternarybob/quartermaster/internal/common"
)

const (
	// warmupPath is visited after the homepage to establish a plausible
	// referer context before any API call.
	warmupPath = "/companies-listing/corporate-filings-financial-results"

	// shortRetryWait is the fixed pause after connection/auth failures,
	// applied once the session has been reinitialized.
	shortRetryWait = 2 * time.Second

	// serverBackoffBase seeds the exponential backoff for 5xx responses.
	serverBackoffBase = 5 * time.Second

	// otherBackoffBase seeds the jittered backoff for unclassified failures.
	otherBackoffBase = time.Second
)

// Client owns a single evolving authenticated session against the NSE host.
// All requests serialize through one rate limiter; session cookies, expiry
// and the consecutive-error counter are process-wide state behind a mutex.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	logger          arbor.ILogger
	limiter         *rate.Limiter
	sessionLifetime time.Duration
	maxRetries      int
	errorThreshold  int

	mu                sync.Mutex
	initialized       bool
	sessionExpiry     time.Time
	consecutiveErrors int
}

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client. The client's cookie jar is
// replaced so session cookies survive reinitialization.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets a logger.
func WithLogger(logger arbor.ILogger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a session client from configuration.
func NewClient(cfg common.NSEConfig, opts ...ClientOption) *Client {
	jar, _ := cookiejar.New(nil)

	c := &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Jar:     jar,
			Timeout: cfg.RequestTimeout.Std(),
		},
		logger:          common.GetLogger(),
		limiter:         rate.NewLimiter(rate.Every(cfg.MinRequestInterval.Std()), 1),
		sessionLifetime: cfg.SessionLifetime.Std(),
		maxRetries:      cfg.MaxRetries,
		errorThreshold:  cfg.ErrorThreshold,
	}

	for _, opt := range opts {
		opt(c)
	}

	if c.httpClient.Jar == nil {
		c.httpClient.Jar = jar
	}

	return c
}

// browserHeaders mimics a real browser; the host rejects bare API clients.
func browserHeaders() map[string]string {
	return map[string]string{
		"User-Agent":       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		"Accept":           "application/json, text/plain, */*",
		"Accept-Language":  "en-US,en;q=0.9",
		"X-Requested-With": "XMLHttpRequest",
	}
}

// initializeSession navigates the homepage and a warm-up page to collect
// session cookies, then sets a forward expiry. Callers hold c.mu.
func (c *Client) initializeSession(ctx context.Context) error {
	c.logger.Debug().Str("base_url", c.baseURL).Msg("Initializing NSE session")

	if err := c.visit(ctx, c.baseURL, ""); err != nil {
		return fmt.Errorf("session homepage visit failed: %w", err)
	}
	if err := c.visit(ctx, c.baseURL+warmupPath, c.baseURL); err != nil {
		return fmt.Errorf("session warm-up visit failed: %w", err)
	}

	c.initialized = true
	c.sessionExpiry = time.Now().Add(c.sessionLifetime)
	c.consecutiveErrors = 0

	c.logger.Debug().
		Str("expires", c.sessionExpiry.Format(time.RFC3339)).
		Msg("NSE session initialized")
	return nil
}

// visit performs a cookie-collecting page load as part of session setup.
func (c *Client) visit(ctx context.Context, pageURL, referer string) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return err
	}
	for k, v := range browserHeaders() {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml")
	req.Header.Del("X-Requested-With")
	if referer != "" {
		req.Header.Set("Referer", referer)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode != http.StatusOK {
		return &APIError{StatusCode: resp.StatusCode, Endpoint: pageURL}
	}
	return nil
}

// ensureSession reinitializes the session when it is missing, expired, or the
// consecutive-error counter has crossed the threshold.
func (c *Client) ensureSession(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.initialized && time.Now().Before(c.sessionExpiry) && c.consecutiveErrors < c.errorThreshold {
		return nil
	}

	if c.consecutiveErrors >= c.errorThreshold {
		c.logger.Warn().
			Int("consecutive_errors", c.consecutiveErrors).
			Msg("Error threshold crossed, forcing session reinitialization")
	}

	return c.initializeSession(ctx)
}

// invalidateSession marks the session uninitialized so the next request
// re-authenticates.
func (c *Client) invalidateSession() {
	c.mu.Lock()
	c.initialized = false
	c.mu.Unlock()
}

func (c *Client) recordFailure() {
	c.mu.Lock()
	c.consecutiveErrors++
	c.mu.Unlock()
}

func (c *Client) recordSuccess() {
	c.mu.Lock()
	c.consecutiveErrors = 0
	c.mu.Unlock()
}

// Get performs a session-backed GET against an API endpoint, retrying
// transient failures up to the configured ceiling. The endpoint is a path
// relative to the base URL.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) ([]byte, error) {
	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}
	return c.fetch(ctx, reqURL, endpoint, "application/json, text/plain, */*")
}

// DownloadBinary fetches a raw document payload (PDF, XBRL, zip) under the
// same session, rate-limit and retry discipline as Get.
func (c *Client) DownloadBinary(ctx context.Context, rawURL string) ([]byte, error) {
	return c.fetch(ctx, rawURL, rawURL, "*/*")
}

// fetch is the shared bounded retry loop. Each attempt yields an explicit
// result that is either terminal (success or context cancellation) or
// retryable with a class-specific wait.
func (c *Client) fetch(ctx context.Context, rawURL, endpoint, accept string) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := c.ensureSession(ctx); err != nil {
			lastErr = err
			c.recordFailure()
			if attempt < c.maxRetries {
				if waitErr := sleepCtx(ctx, shortRetryWait); waitErr != nil {
					return nil, waitErr
				}
			}
			continue
		}

		body, status, err := c.attempt(ctx, rawURL, accept)
		if err == nil && status == http.StatusOK {
			c.recordSuccess()
			return body, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		if err != nil {
			lastErr = err
		} else {
			lastErr = &APIError{StatusCode: status, Endpoint: endpoint}
		}
		c.recordFailure()

		class := classifyFailure(err, status)
		wait := c.backoffFor(class, attempt)

		c.logger.Warn().
			Err(lastErr).
			Str("endpoint", endpoint).
			Int("attempt", attempt+1).
			Int("max_retries", c.maxRetries).
			Str("wait", wait.String()).
			Msg("NSE request attempt failed")

		if class == errClassConnection || class == errClassAuth {
			c.invalidateSession()
		}

		if attempt < c.maxRetries {
			if waitErr := sleepCtx(ctx, wait); waitErr != nil {
				return nil, waitErr
			}
		}
	}

	return nil, &RequestError{Endpoint: endpoint, Attempts: c.maxRetries + 1, Err: lastErr}
}

// attempt performs exactly one rate-limited request.
func (c *Client) attempt(ctx context.Context, rawURL, accept string) ([]byte, int, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}
	for k, v := range browserHeaders() {
		req.Header.Set(k, v)
	}
	req.Header.Set("Accept", accept)
	req.Header.Set("Referer", c.baseURL+warmupPath)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, err
	}

	return body, resp.StatusCode, nil
}

// backoffFor computes the wait before the next attempt for a failure class.
func (c *Client) backoffFor(class errorClass, attempt int) time.Duration {
	switch class {
	case errClassConnection, errClassAuth:
		return shortRetryWait
	case errClassServer:
		return serverBackoffBase * time.Duration(1<<uint(attempt))
	default:
		base := otherBackoffBase * time.Duration(1<<uint(attempt))
		jitter := time.Duration(rand.Int63n(int64(500 * time.Millisecond)))
		return base + jitter
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
