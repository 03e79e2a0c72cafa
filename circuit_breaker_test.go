package gacha

import (
	"testing"
	"time"
)

func TestCircuitBreakerDefaults(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})

	if cb.config.FailureThreshold != 5 {
		t.Errorf("Expected default FailureThreshold=5, got %d", cb.config.FailureThreshold)
	}
	if cb.config.RecoveryTimeout != 60*time.Second {
		t.Errorf("Expected default RecoveryTimeout=60s, got %v", cb.config.RecoveryTimeout)
	}
	if cb.config.SuccessThreshold != 2 {
		t.Errorf("Expected default SuccessThreshold=2, got %d", cb.config.SuccessThreshold)
	}
	if cb.State() != StateClosed {
		t.Errorf("Expected initial state closed, got %v", cb.State())
	}
}

func TestCircuitBreakerOpensAfterFailures(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 3,
		RecoveryTimeout:  time.Minute,
		SuccessThreshold: 1,
	})

	for i := 0; i < 3; i++ {
		if !cb.Allow() {
			t.Fatalf("Request %d should be allowed while closed", i)
		}
		cb.RecordFailure()
	}

	if cb.State() != StateOpen {
		t.Fatalf("Expected open after %d failures, got %v", 3, cb.State())
	}
	if cb.Allow() {
		t.Error("Open breaker must reject requests")
	}
}

func TestCircuitBreakerHalfOpenRecovery(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  10 * time.Millisecond,
		SuccessThreshold: 2,
	})

	cb.RecordFailure()
	if cb.State() != StateOpen {
		t.Fatal("Expected open state")
	}

	time.Sleep(20 * time.Millisecond)

	if !cb.Allow() {
		t.Fatal("Expected probe allowed after recovery timeout")
	}
	if cb.State() != StateHalfOpen {
		t.Fatalf("Expected half-open state, got %v", cb.State())
	}

	cb.RecordSuccess()
	if cb.State() != StateHalfOpen {
		t.Error("One success below the threshold should stay half-open")
	}

	cb.RecordSuccess()
	if cb.State() != StateClosed {
		t.Errorf("Expected closed after success threshold, got %v", cb.State())
	}
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{
		FailureThreshold: 1,
		RecoveryTimeout:  10 * time.Millisecond,
		SuccessThreshold: 2,
	})

	cb.RecordFailure()
	time.Sleep(20 * time.Millisecond)

	if !cb.Allow() {
		t.Fatal("Expected probe allowed")
	}
	cb.RecordFailure()

	if cb.State() != StateOpen {
		t.Errorf("Failure while probing must re-open, got %v", cb.State())
	}
	if cb.Allow() {
		t.Error("Re-opened breaker must reject requests")
	}
}

func TestCircuitBreakerSuccessWhileClosed(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{})

	cb.RecordSuccess()
	if cb.State() != StateClosed {
		t.Errorf("Success while closed must not change state, got %v", cb.State())
	}
}
