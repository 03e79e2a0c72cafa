package gacha

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestRateLimiterAllow(t *testing.T) {
	limiter := NewRateLimiter(3, time.Hour)

	for i := 0; i < 3; i++ {
		if !limiter.Allow() {
			t.Errorf("Request %d should be allowed within capacity", i)
		}
	}

	if limiter.Allow() {
		t.Error("Request beyond capacity should be denied")
	}
}

func TestRateLimiterRefill(t *testing.T) {
	limiter := NewRateLimiter(1, 20*time.Millisecond)

	if !limiter.Allow() {
		t.Fatal("First request should be allowed")
	}
	if limiter.Allow() {
		t.Fatal("Bucket should be empty")
	}

	time.Sleep(30 * time.Millisecond)

	if !limiter.Allow() {
		t.Error("Token should have refilled after the refill interval")
	}
}

func TestRateLimiterCapacityCap(t *testing.T) {
	limiter := NewRateLimiter(2, 5*time.Millisecond)

	time.Sleep(50 * time.Millisecond)

	allowed := 0
	for i := 0; i < 10; i++ {
		if limiter.Allow() {
			allowed++
		}
	}
	if allowed > 2 {
		t.Errorf("Bucket must never exceed capacity, allowed %d", allowed)
	}
}

func TestRateLimiterConcurrent(t *testing.T) {
	limiter := NewRateLimiter(50, time.Hour)

	var allowed int64
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if limiter.Allow() {
				atomic.AddInt64(&allowed, 1)
			}
		}()
	}
	wg.Wait()

	if allowed != 50 {
		t.Errorf("Expected exactly 50 allowed under contention, got %d", allowed)
	}
}

func TestRateLimiterTokens(t *testing.T) {
	limiter := NewRateLimiter(5, time.Hour)

	if got := limiter.Tokens(); got != 5 {
		t.Errorf("Expected 5 tokens initially, got %d", got)
	}

	limiter.Allow()
	limiter.Allow()

	if got := limiter.Tokens(); got != 3 {
		t.Errorf("Expected 3 tokens after two requests, got %d", got)
	}
}
