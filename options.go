package gacha

import (
	"fmt"
	"net/http"
	"time"

	internalbackoff "github.com/kille250/gacha-sub011/internal/backoff"
)

// WithMaxRetries sets the maximum number of retry attempts
func WithMaxRetries(n int) Option {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithInitialBackoff sets the initial backoff duration
func WithInitialBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.initialBackoff = d
	}
}

// WithMaxBackoff sets the maximum backoff duration
func WithMaxBackoff(d time.Duration) Option {
	return func(c *Client) {
		c.maxBackoff = d
	}
}

// WithBackoffMultiplier sets the backoff multiplier
func WithBackoffMultiplier(f float64) Option {
	return func(c *Client) {
		c.backoffMultiplier = f
	}
}

// WithJitter sets the jitter factor for backoff (0.0 to 1.0)
func WithJitter(f float64) Option {
	return func(c *Client) {
		if f < 0 {
			f = 0
		}
		if f > 1 {
			f = 1
		}
		c.jitter = f
	}
}

// WithDecorrelatedJitter switches backoff to AWS-style decorrelated jitter.
func WithDecorrelatedJitter() Option {
	return func(c *Client) {
		c.backoffCalc = internalbackoff.GetDecorrelatedJitterCalculator()
	}
}

// WithRateLimiter sets the rate limiter
func WithRateLimiter(maxTokens int, refillRate time.Duration) Option {
	return func(c *Client) {
		c.rateLimiter = NewRateLimiter(maxTokens, refillRate)
	}
}

// WithCache sets a custom cache implementation
func WithCache(cache Cache) Option {
	return func(c *Client) {
		c.cache = cache
	}
}

// WithoutCache disables response caching. De-duplication of concurrent
// identical GETs stays on.
func WithoutCache() Option {
	return func(c *Client) {
		c.cache = nil
	}
}

// WithRouteTTLs sets the ordered route TTL table and the fallback TTL used
// when no rule matches. Rules are substring-matched in order, first match
// wins.
func WithRouteTTLs(rules []TTLRule, fallback time.Duration) Option {
	return func(c *Client) {
		c.routeTTLs = rules
		c.cacheTTL = fallback
	}
}

// WithCacheKeyFunc sets a custom cache key function
func WithCacheKeyFunc(fn CacheKeyFunc) Option {
	return func(c *Client) {
		c.cacheKeyFunc = fn
	}
}

// WithCacheCondition sets a custom cache condition function
func WithCacheCondition(fn CacheCondition) Option {
	return func(c *Client) {
		c.cacheCondition = fn
	}
}

// WithUnauthorizedHandler registers a handler invoked whenever the backend
// answers 401 or 403, so session handling can react globally.
func WithUnauthorizedHandler(fn UnauthorizedHandler) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// WithTimeout sets the request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
		if c.httpClient != nil {
			c.httpClient.Timeout = d
		}
	}
}

// WithRetryCondition sets a custom retry condition
func WithRetryCondition(fn RetryCondition) Option {
	return func(c *Client) {
		c.retryCondition = fn
	}
}

// WithCircuitBreaker sets the circuit breaker configuration
func WithCircuitBreaker(config CircuitBreakerConfig) Option {
	return func(c *Client) {
		c.circuitBreaker = NewCircuitBreaker(config)
	}
}

// WithMiddleware adds middleware to the client
func WithMiddleware(middleware ...Middleware) Option {
	return func(c *Client) {
		c.middleware = append(c.middleware, middleware...)
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
		if c.timeout != 0 {
			c.httpClient.Timeout = c.timeout
		}
	}
}

// WithMetrics enables Prometheus metrics collection
func WithMetrics() Option {
	return func(c *Client) {
		c.metrics = NewMetricsCollector()
	}
}

// WithMetricsCollector sets a custom metrics collector
func WithMetricsCollector(collector *MetricsCollector) Option {
	return func(c *Client) {
		c.metrics = collector
	}
}

// WithDebug enables debug logging with default configuration
func WithDebug() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
	}
}

// WithDebugConfig sets custom debug configuration
func WithDebugConfig(config *DebugConfig) Option {
	return func(c *Client) {
		c.debug = config
	}
}

// WithLogger sets a custom logger for debug output
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithSimpleLogger enables debug logging with a simple console logger
func WithSimpleLogger() Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.Enabled = true
		c.logger = NewSimpleLogger()
	}
}

// WithRequestIDGenerator sets a custom function for generating request IDs
func WithRequestIDGenerator(gen func() string) Option {
	return func(c *Client) {
		if c.debug == nil {
			c.debug = DefaultDebugConfig()
		}
		c.debug.RequestIDGen = gen
	}
}

// ValidateConfiguration validates the client configuration and returns an error if invalid
func (c *Client) ValidateConfiguration() error {
	var errs []string

	errs = append(errs, c.validateRetryConfig()...)
	errs = append(errs, c.validateRateLimiterConfig()...)
	errs = append(errs, c.validateCacheConfig()...)
	errs = append(errs, c.validateCircuitBreakerConfig()...)
	errs = append(errs, c.validateDebugConfig()...)
	errs = append(errs, c.validateMiddlewareConfig()...)
	errs = append(errs, c.validateHTTPClientConfig()...)

	if len(errs) > 0 {
		return &ClientError{
			Type:    ErrorTypeValidation,
			Message: "configuration validation failed",
			Cause:   fmt.Errorf("validation errors: %v", errs),
		}
	}

	return nil
}

func (c *Client) validateRetryConfig() []string {
	var errs []string

	if c.maxRetries < 0 {
		errs = append(errs, "maxRetries must be non-negative")
	}

	if c.initialBackoff <= 0 {
		errs = append(errs, "initialBackoff must be positive")
	}

	if c.maxBackoff < c.initialBackoff {
		errs = append(errs, "maxBackoff must be greater than or equal to initialBackoff")
	}

	if c.backoffMultiplier <= 0 {
		errs = append(errs, "backoffMultiplier must be positive")
	}

	if c.jitter < 0 || c.jitter > 1 {
		errs = append(errs, "jitter must be between 0 and 1")
	}

	if c.timeout <= 0 {
		errs = append(errs, "timeout must be positive")
	}

	return errs
}

func (c *Client) validateRateLimiterConfig() []string {
	var errs []string

	if c.rateLimiter != nil {
		if c.rateLimiter.maxTokens <= 0 {
			errs = append(errs, "rateLimiter maxTokens must be positive")
		}
		if c.rateLimiter.refillRate <= 0 {
			errs = append(errs, "rateLimiter refillRate must be positive")
		}
	}

	return errs
}

func (c *Client) validateCacheConfig() []string {
	var errs []string

	if c.cache != nil {
		if c.cacheTTL <= 0 {
			errs = append(errs, "fallback cacheTTL must be positive when cache is enabled")
		}
		if c.cacheKeyFunc == nil {
			errs = append(errs, "cacheKeyFunc must be set when cache is enabled")
		}
		if c.cacheCondition == nil {
			errs = append(errs, "cacheCondition must be set when cache is enabled")
		}
		for i, rule := range c.routeTTLs {
			if rule.Pattern == "" {
				errs = append(errs, fmt.Sprintf("routeTTLs[%d] pattern cannot be empty", i))
			}
			if rule.TTL <= 0 {
				errs = append(errs, fmt.Sprintf("routeTTLs[%d] TTL must be positive", i))
			}
		}
	}

	return errs
}

func (c *Client) validateCircuitBreakerConfig() []string {
	var errs []string

	if c.circuitBreaker != nil {
		if c.circuitBreaker.config.FailureThreshold <= 0 {
			errs = append(errs, "circuitBreaker FailureThreshold must be positive")
		}
		if c.circuitBreaker.config.RecoveryTimeout <= 0 {
			errs = append(errs, "circuitBreaker RecoveryTimeout must be positive")
		}
		if c.circuitBreaker.config.SuccessThreshold <= 0 {
			errs = append(errs, "circuitBreaker SuccessThreshold must be positive")
		}
	}

	return errs
}

func (c *Client) validateDebugConfig() []string {
	var errs []string

	if c.debug != nil && c.debug.Enabled {
		if c.debug.RequestIDGen == nil {
			errs = append(errs, "debug RequestIDGen must be set when debug is enabled")
		}
		if c.logger == nil {
			errs = append(errs, "logger must be set when debug is enabled")
		}
	}

	return errs
}

func (c *Client) validateMiddlewareConfig() []string {
	var errs []string

	for i, middleware := range c.middleware {
		if middleware == nil {
			errs = append(errs, fmt.Sprintf("middleware[%d] cannot be nil", i))
		}
	}

	return errs
}

func (c *Client) validateHTTPClientConfig() []string {
	var errs []string

	if c.httpClient == nil {
		errs = append(errs, "HTTP client cannot be nil")
	}

	return errs
}
