package gacha

import (
	"net/http"
	"time"
)

// RetryCondition determines whether a request should be retried
type RetryCondition func(resp *http.Response, err error) bool

// Middleware represents a middleware function
type Middleware func(req *http.Request, next RoundTripper) (*http.Response, error)

// RoundTripper represents the HTTP transport interface
type RoundTripper interface {
	RoundTrip(*http.Request) (*http.Response, error)
}

// RoundTripperFunc is a helper type for middleware
type RoundTripperFunc func(*http.Request) (*http.Response, error)

func (f RoundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

// CacheEntry is a buffered response payload. The body is opaque to the cache;
// it is captured once and never mutated, only replaced wholesale.
type CacheEntry struct {
	Body       []byte
	StatusCode int
	Header     http.Header
	ExpiresAt  time.Time
}

// Cache stores buffered responses keyed by derived request identity.
// Expired entries must be treated as absent (lazy expiry, no sweep).
type Cache interface {
	Get(key string) (*CacheEntry, bool)
	Set(key string, entry *CacheEntry, ttl time.Duration)
	Delete(key string)
	// DeleteMatching removes every entry whose key contains pattern as a
	// substring. Substring semantics are load-bearing: call sites rely on
	// "/fishing" also evicting "/fishing/inventory".
	DeleteMatching(pattern string)
	Clear()
	Len() int
}

// CacheCondition determines whether a request is eligible for caching
type CacheCondition func(req *http.Request) bool

// CacheKeyFunc derives the cache/pending key from a request
type CacheKeyFunc func(req *http.Request) string

// TTLRule maps a URL substring to a cache TTL. Rules are checked in
// declaration order and the first substring match wins, so more specific
// routes must precede general ones.
type TTLRule struct {
	Pattern string
	TTL     time.Duration
}

// UnauthorizedHandler is invoked when the backend answers 401/403, so that
// session handling elsewhere (token drop, cache clear) can react.
type UnauthorizedHandler func(req *http.Request, resp *http.Response)

// CircuitBreakerConfig holds circuit breaker configuration
type CircuitBreakerConfig struct {
	FailureThreshold int
	RecoveryTimeout  time.Duration
	SuccessThreshold int
}

// CircuitBreaker is an atomic CAS based breaker shared by all requests.
type CircuitBreaker struct {
	config      CircuitBreakerConfig
	state       int64
	failures    int64
	lastFailure int64
	successes   int64
}

// CircuitState represents the state of the circuit breaker
type CircuitState int64

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

// RateLimiter is a lock-free token bucket.
type RateLimiter struct {
	tokens     int64
	maxTokens  int64
	refillRate time.Duration
	lastRefill int64
}

// Option represents a configuration option
type Option func(*Client)
