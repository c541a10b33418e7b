package feed

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"
)

// HTTPClientConfig holds configuration for HTTP clients
type HTTPClientConfig struct {
	Timeout           time.Duration
	MaxRetries        int
	RetryWaitMin      time.Duration
	RetryWaitMax      time.Duration
	RateLimit         float64 // requests per second
	CircuitBreakerMax int     // max consecutive failures before circuit break
	// BreakerCooldown is how long an open breaker rejects calls before one trial request
	BreakerCooldown time.Duration
}

// DefaultHTTPClientConfig returns recommended defaults
func DefaultHTTPClientConfig() HTTPClientConfig {
	return HTTPClientConfig{
		Timeout:           30 * time.Second,
		MaxRetries:        3,
		RetryWaitMin:      200 * time.Millisecond,
		RetryWaitMax:      5 * time.Second,
		RateLimit:         5.0,
		CircuitBreakerMax: 5,
		BreakerCooldown:   30 * time.Second,
	}
}

// RateLimitedHTTPClient wraps retryablehttp.Client with rate limiting and a circuit breaker.
// An open breaker lets a single trial request through after the cooldown; success closes it,
// failure reopens it for another cooldown.
type RateLimitedHTTPClient struct {
	client            *retryablehttp.Client
	limiter           *rate.Limiter
	circuitBreakerMax int
	cooldown          time.Duration
	logger            *logrus.Entry
	now               func() time.Time

	mu                sync.Mutex
	consecutiveErrors int
	isOpen            bool
	openedAt          time.Time
	trialInFlight     bool
	lastError         error
}

// NewRateLimitedHTTPClient creates a new rate-limited HTTP client
func NewRateLimitedHTTPClient(cfg HTTPClientConfig, logger *logrus.Logger) *RateLimitedHTTPClient {
	if logger == nil {
		logger = logrus.New()
		logger.SetOutput(io.Discard)
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = DefaultHTTPClientConfig().RateLimit
	}
	if cfg.CircuitBreakerMax <= 0 {
		cfg.CircuitBreakerMax = DefaultHTTPClientConfig().CircuitBreakerMax
	}
	if cfg.BreakerCooldown <= 0 {
		cfg.BreakerCooldown = DefaultHTTPClientConfig().BreakerCooldown
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = cfg.Timeout
	retryClient.RetryMax = cfg.MaxRetries
	retryClient.RetryWaitMin = cfg.RetryWaitMin
	retryClient.RetryWaitMax = cfg.RetryWaitMax
	retryClient.CheckRetry = customRetryPolicy()
	// Hand back the last response instead of a generic error once retries run out
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	entry := logger.WithField("component", "feed_http")
	retryClient.Logger = entry

	return &RateLimitedHTTPClient{
		client:            retryClient,
		limiter:           rate.NewLimiter(rate.Limit(cfg.RateLimit), 1),
		circuitBreakerMax: cfg.CircuitBreakerMax,
		cooldown:          cfg.BreakerCooldown,
		logger:            entry,
		now:               time.Now,
	}
}

// Do executes an HTTP request with rate limiting and circuit breaker
func (c *RateLimitedHTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	trial, err := c.acquire()
	if err != nil {
		return nil, err
	}

	if err := c.limiter.Wait(ctx); err != nil {
		c.release(trial)
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	retryReq, err := retryablehttp.FromRequest(req.WithContext(ctx))
	if err != nil {
		c.release(trial)
		return nil, fmt.Errorf("failed to wrap request: %w", err)
	}
	resp, err := c.client.Do(retryReq)

	c.record(trial, err)
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// acquire rejects calls while the breaker is open and admits one trial once the cooldown ends
func (c *RateLimitedHTTPClient) acquire() (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.isOpen {
		return false, nil
	}
	if c.trialInFlight || c.now().Sub(c.openedAt) < c.cooldown {
		return false, fmt.Errorf("circuit breaker open: %v", c.lastError)
	}
	c.trialInFlight = true
	c.logger.Info("Circuit breaker half-open, sending trial request")
	return true, nil
}

// release gives back a trial slot that never reached upstream
func (c *RateLimitedHTTPClient) release(trial bool) {
	if !trial {
		return
	}
	c.mu.Lock()
	c.trialInFlight = false
	c.mu.Unlock()
}

func (c *RateLimitedHTTPClient) record(trial bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if trial {
		c.trialInFlight = false
	}

	if err != nil {
		c.consecutiveErrors++
		c.lastError = err
		if trial {
			c.openedAt = c.now()
			c.logger.WithError(err).Warn("Trial request failed, circuit breaker reopened")
			return
		}
		if !c.isOpen && c.consecutiveErrors >= c.circuitBreakerMax {
			c.isOpen = true
			c.openedAt = c.now()
			c.logger.WithError(err).Errorf("Circuit breaker opened after %d consecutive errors", c.consecutiveErrors)
		}
		return
	}

	if c.isOpen {
		c.logger.Info("Circuit breaker closed")
	}
	c.isOpen = false
	c.consecutiveErrors = 0
	c.lastError = nil
}

// Get executes a GET request
func (c *RateLimitedHTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return c.Do(ctx, req)
}

// Reset closes the circuit breaker
func (c *RateLimitedHTTPClient) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.isOpen = false
	c.trialInFlight = false
	c.consecutiveErrors = 0
	c.lastError = nil
}

// Close closes any resources held by the client
func (c *RateLimitedHTTPClient) Close() error {
	c.client.HTTPClient.CloseIdleConnections()
	return nil
}

// customRetryPolicy defines which HTTP responses should trigger a retry
func customRetryPolicy() retryablehttp.CheckRetry {
	return func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		if err != nil {
			// Retry on network errors
			return true, nil
		}

		switch resp.StatusCode {
		case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
			http.StatusServiceUnavailable, http.StatusGatewayTimeout:
			return true, nil
		}
		return false, nil
	}
}
