package gacha

import (
	"net/http"
	"strings"
	"testing"
	"time"
)

func TestWithMaxRetries(t *testing.T) {
	client := New(WithMaxRetries(5))

	if client.maxRetries != 5 {
		t.Errorf("Expected maxRetries=5, got %d", client.maxRetries)
	}
}

func TestWithInitialBackoff(t *testing.T) {
	backoff := 200 * time.Millisecond
	client := New(WithInitialBackoff(backoff))

	if client.initialBackoff != backoff {
		t.Errorf("Expected initialBackoff=%v, got %v", backoff, client.initialBackoff)
	}
}

func TestWithMaxBackoff(t *testing.T) {
	maxBackoff := 30 * time.Second
	client := New(WithMaxBackoff(maxBackoff))

	if client.maxBackoff != maxBackoff {
		t.Errorf("Expected maxBackoff=%v, got %v", maxBackoff, client.maxBackoff)
	}
}

func TestWithJitter(t *testing.T) {
	tests := []struct {
		input    float64
		expected float64
	}{
		{0.1, 0.1},
		{0.5, 0.5},
		{1.0, 1.0},
		{-0.1, 0.0}, // Should clamp to 0
		{1.5, 1.0},  // Should clamp to 1
	}

	for _, test := range tests {
		client := New(WithJitter(test.input))
		if client.jitter != test.expected {
			t.Errorf("WithJitter(%v) = %v, expected %v", test.input, client.jitter, test.expected)
		}
	}
}

func TestWithRateLimiter(t *testing.T) {
	client := New(WithRateLimiter(100, 1*time.Minute))

	if client.rateLimiter == nil {
		t.Fatal("Expected rate limiter to be set")
	}

	if client.rateLimiter.maxTokens != 100 {
		t.Errorf("Expected maxTokens=100, got %d", client.rateLimiter.maxTokens)
	}

	if client.rateLimiter.refillRate != 1*time.Minute {
		t.Errorf("Expected refillRate=1m, got %v", client.rateLimiter.refillRate)
	}
}

func TestCacheOnByDefault(t *testing.T) {
	client := New()

	if client.cache == nil {
		t.Fatal("Expected cache enabled by default")
	}
	if _, ok := client.cache.(*InMemoryCache); !ok {
		t.Error("Expected InMemoryCache implementation")
	}
	if client.pending == nil {
		t.Error("Expected pending tracker enabled by default")
	}
	if len(client.routeTTLs) == 0 {
		t.Error("Expected default route TTL table")
	}
	if client.cacheTTL != DefaultTTL {
		t.Errorf("Expected fallback TTL %v, got %v", DefaultTTL, client.cacheTTL)
	}
}

func TestWithCache(t *testing.T) {
	customCache := NewInMemoryCache()
	client := New(WithCache(customCache))

	if client.cache != customCache {
		t.Error("Expected custom cache to be set")
	}
}

func TestWithoutCache(t *testing.T) {
	client := New(WithoutCache())

	if client.cache != nil {
		t.Error("Expected cache disabled")
	}
}

func TestWithRouteTTLs(t *testing.T) {
	rules := []TTLRule{
		{Pattern: "/essence-tap", TTL: 2 * time.Second},
		{Pattern: "/banners", TTL: 5 * time.Minute},
	}
	client := New(WithRouteTTLs(rules, 30*time.Second))

	if len(client.routeTTLs) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(client.routeTTLs))
	}
	if client.cacheTTL != 30*time.Second {
		t.Errorf("Expected fallback TTL 30s, got %v", client.cacheTTL)
	}
}

func TestWithCacheKeyFunc(t *testing.T) {
	customKeyFunc := func(req *http.Request) string {
		return "custom-key"
	}

	client := New(WithCacheKeyFunc(customKeyFunc))

	req, _ := http.NewRequest("GET", "https://example.com", nil)
	if got := client.cacheKeyFunc(req); got != "custom-key" {
		t.Errorf("Expected custom key func, got %q", got)
	}
}

func TestWithCacheCondition(t *testing.T) {
	client := New(WithCacheCondition(func(req *http.Request) bool {
		return false
	}))

	req, _ := http.NewRequest("GET", "https://example.com", nil)
	if client.cacheCondition(req) {
		t.Error("Expected custom cache condition to be used")
	}
}

func TestWithTimeout(t *testing.T) {
	client := New(WithTimeout(5 * time.Second))

	if client.timeout != 5*time.Second {
		t.Errorf("Expected timeout 5s, got %v", client.timeout)
	}
	if client.httpClient.Timeout != 5*time.Second {
		t.Errorf("Expected HTTP client timeout propagated, got %v", client.httpClient.Timeout)
	}
}

func TestWithCircuitBreaker(t *testing.T) {
	client := New(WithCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		RecoveryTimeout:  10 * time.Second,
		SuccessThreshold: 1,
	}))

	if client.circuitBreaker == nil {
		t.Fatal("Expected circuit breaker to be set")
	}
	if client.circuitBreaker.config.FailureThreshold != 3 {
		t.Errorf("Expected FailureThreshold=3, got %d", client.circuitBreaker.config.FailureThreshold)
	}
}

func TestWithHTTPClient(t *testing.T) {
	custom := &http.Client{}
	client := New(WithHTTPClient(custom))

	if client.httpClient != custom {
		t.Error("Expected custom HTTP client to be set")
	}
}

func TestWithDebugRequiresLogger(t *testing.T) {
	client := New(WithDebug())

	if client.IsValid() {
		t.Error("Debug without a logger should fail validation")
	}
}

func TestWithSimpleLogger(t *testing.T) {
	client := New(WithSimpleLogger())

	if !client.IsValid() {
		t.Errorf("Expected valid configuration, got %v", client.ValidationError())
	}
	if client.logger == nil {
		t.Error("Expected logger to be set")
	}
	if client.debug == nil || !client.debug.Enabled {
		t.Error("Expected debug enabled")
	}
}

func TestValidateConfigurationDefaults(t *testing.T) {
	client := New()

	if !client.IsValid() {
		t.Errorf("Default configuration must validate, got %v", client.ValidationError())
	}
}

func TestValidateConfigurationErrors(t *testing.T) {
	testCases := []struct {
		name    string
		options []Option
		wantMsg string
	}{
		{"negative retries", []Option{WithMaxRetries(-1)}, "maxRetries"},
		{"zero initial backoff", []Option{WithInitialBackoff(0)}, "initialBackoff"},
		{"max below initial", []Option{WithInitialBackoff(time.Second), WithMaxBackoff(time.Millisecond)}, "maxBackoff"},
		{"zero multiplier", []Option{WithBackoffMultiplier(0)}, "backoffMultiplier"},
		{"zero timeout", []Option{WithTimeout(0)}, "timeout"},
		{"nil middleware", []Option{WithMiddleware(nil)}, "middleware"},
		{"empty route pattern", []Option{WithRouteTTLs([]TTLRule{{Pattern: "", TTL: time.Second}}, time.Minute)}, "pattern"},
		{"zero route TTL", []Option{WithRouteTTLs([]TTLRule{{Pattern: "/x", TTL: 0}}, time.Minute)}, "TTL"},
		{"zero fallback TTL", []Option{WithRouteTTLs(nil, 0)}, "cacheTTL"},
		{"nil key func", []Option{WithCacheKeyFunc(nil)}, "cacheKeyFunc"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			client := New(tc.options...)
			err := client.ValidationError()
			if err == nil {
				t.Fatal("Expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantMsg) {
				t.Errorf("Expected error mentioning %q, got %v", tc.wantMsg, err)
			}
		})
	}
}
