package gacha

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	internalbackoff "github.com/kille250/gacha-sub011/internal/backoff"
)

// Client is the HTTP client every game call site goes through. It layers
// response caching, in-flight request de-duplication, retries, circuit
// breaking, rate limiting, middleware and metrics around the standard
// net/http Client. It is safe for concurrent use.
type Client struct {
	httpClient        *http.Client
	maxRetries        int
	initialBackoff    time.Duration
	maxBackoff        time.Duration
	backoffMultiplier float64
	jitter            float64
	timeout           time.Duration
	retryCondition    RetryCondition
	backoffCalc       *internalbackoff.Calculator
	circuitBreaker    *CircuitBreaker
	middleware        []Middleware
	rateLimiter       *RateLimiter
	cache             Cache
	cacheTTL          time.Duration
	routeTTLs         []TTLRule
	cacheKeyFunc      CacheKeyFunc
	cacheCondition    CacheCondition
	pending           *PendingTracker
	onUnauthorized    UnauthorizedHandler
	metrics           *MetricsCollector
	debug             *DebugConfig
	logger            Logger
	validationError   error
}

// New constructs a Client using the provided functional options. Caching and
// de-duplication are on by default; a best effort validation is performed,
// call IsValid / ValidationError for errors.
func New(options ...Option) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		maxRetries:        3,
		initialBackoff:    100 * time.Millisecond,
		maxBackoff:        10 * time.Second,
		backoffMultiplier: 2.0,
		jitter:            0.1,
		timeout:           30 * time.Second,
		retryCondition:    DefaultRetryCondition,
		backoffCalc:       internalbackoff.GetExponentialJitterCalculator(),
		circuitBreaker:    NewCircuitBreaker(CircuitBreakerConfig{}),
		middleware:        []Middleware{},
		rateLimiter:       nil,
		cache:             NewInMemoryCache(),
		cacheTTL:          DefaultTTL,
		routeTTLs:         DefaultRouteTTLs(),
		cacheKeyFunc:      DefaultCacheKeyFunc,
		cacheCondition:    DefaultCacheCondition,
		pending:           NewPendingTracker(),
		metrics:           nil,
		debug:             DefaultDebugConfig(),
		logger:            nil,
	}

	for _, option := range options {
		option(client)
	}

	if err := client.ValidateConfiguration(); err != nil {
		client.validationError = err
	}

	return client
}

// Get performs an HTTP GET with context.
func (c *Client) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return c.Do(req)
}

// Post performs an HTTP POST with the given content type.
func (c *Client) Post(ctx context.Context, url, contentType string, body io.Reader) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)
	return c.Do(req)
}

// Invalidate drops cache entries. With no arguments every entry goes (auth
// transitions stale every credential-scoped key at once); with patterns,
// entries whose key contains any pattern as a substring are dropped.
// In-flight requests are never touched: an already-dispatched read still
// completes and may repopulate the cache, an accepted race.
func (c *Client) Invalidate(patterns ...string) {
	if c.cache == nil {
		return
	}

	if len(patterns) == 0 {
		c.cache.Clear()
		if c.metrics != nil {
			c.metrics.RecordInvalidation("full")
			c.metrics.RecordCacheSize("default", c.cache.Len())
		}
		if c.debug != nil && c.debug.Enabled && c.debug.LogCache && c.logger != nil {
			c.logger.Debug("Cache cleared")
		}
		return
	}

	for _, pattern := range patterns {
		c.cache.DeleteMatching(pattern)
		if c.metrics != nil {
			c.metrics.RecordInvalidation("pattern")
		}
		if c.debug != nil && c.debug.Enabled && c.debug.LogCache && c.logger != nil {
			c.logger.Debug("Cache invalidated", "pattern", pattern)
		}
	}
	if c.metrics != nil {
		c.metrics.RecordCacheSize("default", c.cache.Len())
	}
}

// Do executes a prepared *http.Request. Cache-eligible requests (GETs by
// default) are answered from the cache when a live entry exists, joined onto
// an identical in-flight request when one is on the wire, and dispatched
// otherwise. Mutating requests always reach the network.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	start := time.Now()
	endpoint := getEndpointFromRequest(req)

	var requestID string
	if c.debug != nil && c.debug.Enabled && c.debug.RequestIDGen != nil {
		requestID = c.debug.RequestIDGen()
	}

	if c.debug != nil && c.debug.Enabled && c.debug.LogRequests && c.logger != nil {
		c.logger.Debug("Starting request", "requestID", requestID, "method", req.Method, "url", req.URL.String(), "endpoint", endpoint)
	}

	if c.metrics != nil {
		c.metrics.RecordRequestStart(req.Method, endpoint)
		defer c.metrics.RecordRequestEnd(req.Method, endpoint)
	}

	if c.pending == nil || c.cacheCondition == nil || c.cacheKeyFunc == nil || !c.cacheCondition(req) {
		resp, err := c.doWithRetry(req, 0, requestID, start)
		c.recordOutcome(req.Method, endpoint, resp, start)
		c.signalUnauthorized(req, resp)
		return resp, err
	}

	key := c.cacheKeyFunc(req)

	// De-duplication runs off the same key even when caching is disabled.
	if c.cache != nil {
		if entry, found := c.cache.Get(key); found {
			if c.debug != nil && c.debug.Enabled && c.debug.LogCache && c.logger != nil {
				c.logger.Debug("Cache hit", "requestID", requestID, "cacheKey", key)
			}
			if c.metrics != nil {
				c.metrics.RecordCacheHit(req.Method, endpoint)
				c.metrics.RecordRequest(req.Method, endpoint, entry.StatusCode, time.Since(start))
			}
			return entry.Response(), nil
		}

		if c.metrics != nil {
			c.metrics.RecordCacheMiss(req.Method, endpoint)
		}
	}

	pending, owner := c.pending.GetOrCreate(key)
	if !owner {
		entry, err := pending.Wait(req.Context())
		if c.debug != nil && c.debug.Enabled && c.logger != nil {
			c.logger.Debug("Joined in-flight request", "requestID", requestID, "cacheKey", key)
		}
		if c.metrics != nil {
			c.metrics.RecordDeduplicationHit(req.Method, endpoint)
		}
		if err != nil {
			return nil, err
		}
		if c.metrics != nil {
			c.metrics.RecordRequest(req.Method, endpoint, entry.StatusCode, time.Since(start))
		}
		return entry.Response(), nil
	}

	if c.debug != nil && c.debug.Enabled && c.debug.LogCache && c.logger != nil {
		c.logger.Debug("Cache miss - proceeding with request", "requestID", requestID, "cacheKey", key)
	}

	resp, err := c.doWithRetry(req, 0, requestID, start)
	if err != nil {
		// Settle waiters and free the key so the next identical GET
		// dispatches fresh. Failures are never cached.
		c.pending.Complete(key, nil, err)
		c.recordOutcome(req.Method, endpoint, nil, start)
		return nil, err
	}

	entry, bufErr := newCacheEntry(resp)
	if bufErr != nil {
		readErr := c.createClientError(ErrorTypeNetwork, "reading response body failed", bufErr, requestID, req, 0, time.Since(start))
		c.pending.Complete(key, nil, readErr)
		return nil, readErr
	}

	if c.cache != nil && resp.StatusCode >= 200 && resp.StatusCode < 300 {
		ttl := c.getCacheTTLForRequest(req)
		c.cache.Set(key, entry, ttl)

		if c.metrics != nil {
			c.metrics.RecordCacheSize("default", c.cache.Len())
		}
		if c.debug != nil && c.debug.Enabled && c.debug.LogCache && c.logger != nil {
			c.logger.Debug("Response cached", "requestID", requestID, "cacheKey", key, "ttl", ttl)
		}
	}

	c.pending.Complete(key, entry, nil)
	c.recordOutcome(req.Method, endpoint, resp, start)
	c.signalUnauthorized(req, resp)

	return resp, nil
}

func (c *Client) recordOutcome(method, endpoint string, resp *http.Response, start time.Time) {
	if c.metrics == nil {
		return
	}
	statusCode := 0
	if resp != nil {
		statusCode = resp.StatusCode
	}
	c.metrics.RecordRequest(method, endpoint, statusCode, time.Since(start))
}

func (c *Client) signalUnauthorized(req *http.Request, resp *http.Response) {
	if c.onUnauthorized == nil || resp == nil {
		return
	}
	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		c.onUnauthorized(req, resp)
	}
}

func (c *Client) doWithRetry(req *http.Request, attempt int, requestID string, startTime time.Time) (*http.Response, error) {
	endpoint := getEndpointFromRequest(req)

	if c.rateLimiter != nil && !c.rateLimiter.Allow() {
		if c.debug != nil && c.debug.Enabled && c.debug.LogRateLimit && c.logger != nil {
			c.logger.Warn("Rate limit exceeded", "requestID", requestID, "endpoint", endpoint)
		}

		if c.metrics != nil {
			c.metrics.RecordError(ErrorTypeRateLimit, req.Method, endpoint)
		}
		return nil, c.createClientError(ErrorTypeRateLimit, "rate limit exceeded", nil, requestID, req, attempt, time.Since(startTime))
	}

	if c.rateLimiter != nil && c.metrics != nil {
		c.metrics.RecordRateLimiterTokens("default", c.rateLimiter.Tokens())
	}

	if !c.circuitBreaker.Allow() {
		if c.debug != nil && c.debug.Enabled && c.debug.LogCircuit && c.logger != nil {
			c.logger.Warn("Circuit breaker open", "requestID", requestID, "endpoint", endpoint)
		}

		if c.metrics != nil {
			c.metrics.RecordError(ErrorTypeCircuitOpen, req.Method, endpoint)
		}
		return nil, c.createClientError(ErrorTypeCircuitOpen, "circuit breaker is open", nil, requestID, req, attempt, time.Since(startTime))
	}

	if attempt > 0 {
		if c.debug != nil && c.debug.Enabled && c.debug.LogRetries && c.logger != nil {
			c.logger.Info("Retry attempt", "requestID", requestID, "attempt", attempt, "maxRetries", c.maxRetries, "endpoint", endpoint)
		}

		if c.metrics != nil {
			c.metrics.RecordRetry(req.Method, endpoint, attempt)
		}
	}

	resp, err := c.executeMiddleware(req)

	if err != nil || (resp != nil && resp.StatusCode >= 500) {
		c.circuitBreaker.RecordFailure()
		if c.metrics != nil {
			c.metrics.RecordCircuitBreakerState("default", c.circuitBreaker.State())
		}

		if err != nil {
			if c.metrics != nil {
				c.metrics.RecordError(ErrorTypeNetwork, req.Method, endpoint)
			}
		} else {
			if c.metrics != nil {
				c.metrics.RecordError(ErrorTypeServer, req.Method, endpoint)
			}
		}
	} else {
		c.circuitBreaker.RecordSuccess()
		if c.metrics != nil {
			c.metrics.RecordCircuitBreakerState("default", c.circuitBreaker.State())
		}
	}

	if attempt < c.maxRetries && c.retryCondition(resp, err) {
		delay := c.calculateBackoff(attempt)

		if c.debug != nil && c.debug.Enabled && c.debug.LogRetries && c.logger != nil {
			c.logger.Info("Scheduling retry", "requestID", requestID, "attempt", attempt+1, "backoff", delay, "endpoint", endpoint)
		}

		select {
		case <-time.After(delay):
		case <-req.Context().Done():
			return nil, c.createClientError(ErrorTypeTimeout, "request cancelled during backoff", req.Context().Err(), requestID, req, attempt, time.Since(startTime))
		}
		return c.doWithRetry(req, attempt+1, requestID, startTime)
	}

	if err != nil {
		return nil, c.createClientError(ErrorTypeNetwork, "network request failed", err, requestID, req, attempt, time.Since(startTime))
	}

	return resp, nil
}

func (c *Client) executeMiddleware(req *http.Request) (*http.Response, error) {
	if len(c.middleware) == 0 {
		return c.httpClient.Do(req)
	}

	current := RoundTripperFunc(c.httpClient.Do)

	for i := len(c.middleware) - 1; i >= 0; i-- {
		middleware := c.middleware[i]
		next := current
		current = RoundTripperFunc(func(r *http.Request) (*http.Response, error) {
			return middleware(r, next)
		})
	}

	return current.RoundTrip(req)
}

func (c *Client) calculateBackoff(attempt int) time.Duration {
	return c.backoffCalc.Calculate(attempt, c.initialBackoff, c.maxBackoff, c.backoffMultiplier, c.jitter)
}

// DefaultRetryCondition retries on transport errors and 5xx responses.
func DefaultRetryCondition(resp *http.Response, err error) bool {
	if err != nil {
		return true
	}
	return resp.StatusCode >= 500
}

func (c *Client) createClientError(errorType, message string, cause error, requestID string, req *http.Request, attempt int, duration time.Duration) *ClientError {
	endpoint := getEndpointFromRequest(req)

	return &ClientError{
		Type:       errorType,
		Message:    message,
		Cause:      cause,
		RequestID:  requestID,
		Method:     req.Method,
		URL:        req.URL.String(),
		Attempt:    attempt,
		MaxRetries: c.maxRetries,
		Timestamp:  time.Now(),
		Duration:   duration,
		StatusCode: 0,
		Endpoint:   endpoint,
	}
}

// IsValid reports whether configuration validation passed at construction.
func (c *Client) IsValid() bool {
	return c.validationError == nil
}

// ValidationError returns the configuration validation error, if any.
func (c *Client) ValidationError() error {
	return c.validationError
}

func getEndpointFromRequest(req *http.Request) string {
	if req.URL == nil {
		return "unknown"
	}

	host := req.URL.Host
	path := req.URL.Path

	var builder strings.Builder
	builder.WriteString(host)

	if path != "" && path != "/" {
		builder.WriteString(path)
	} else {
		builder.WriteByte('/')
	}

	return builder.String()
}
