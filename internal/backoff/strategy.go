package backoff

import (
	"math/rand"
	"time"
)

// Strategy defines the interface for backoff calculation algorithms.
type Strategy interface {
	// Calculate returns the backoff duration for the given attempt number and parameters.
	Calculate(attempt int, initialBackoff, maxBackoff time.Duration, multiplier, jitter float64) time.Duration
}

// ExponentialJitterStrategy implements exponential backoff with uniform jitter.
type ExponentialJitterStrategy struct{}

// Calculate implements the Strategy interface for exponential backoff with jitter.
func (s ExponentialJitterStrategy) Calculate(attempt int, initialBackoff, maxBackoff time.Duration, multiplier, jitter float64) time.Duration {
	if attempt < 0 {
		attempt = 0
	}

	// Prevent overflow by limiting attempt
	if attempt > 30 {
		attempt = 30
	}

	backoff := time.Duration(float64(initialBackoff) * Pow(multiplier, attempt))
	if backoff < 0 || backoff > maxBackoff {
		backoff = maxBackoff
	}

	jitter = clampJitter(jitter)
	if jitter > 0 {
		jitterAmount := time.Duration(float64(backoff) * jitter * rand.Float64())
		if backoff+jitterAmount > maxBackoff {
			backoff = maxBackoff
		} else {
			backoff += jitterAmount
		}
	}
	return backoff
}

// DecorrelatedJitterStrategy implements decorrelated jitter as per the AWS
// architecture blog. It gives smoother tail latencies than exponential jitter.
type DecorrelatedJitterStrategy struct{}

// Calculate implements the Strategy interface for decorrelated jitter.
func (s DecorrelatedJitterStrategy) Calculate(attempt int, initialBackoff, maxBackoff time.Duration, multiplier, jitter float64) time.Duration {
	if attempt <= 0 {
		return initialBackoff
	}

	// Prevent overflow by limiting attempt
	if attempt > 10 {
		attempt = 10
	}

	// Stateless variant: random_between(base, min(cap, base * 3^attempt))
	base := float64(initialBackoff)
	factor := Pow(3.0, attempt)
	upper := base * factor

	maxBackoffFloat := float64(maxBackoff)
	if upper > maxBackoffFloat || upper < 0 {
		upper = maxBackoffFloat
	}
	if upper < base {
		upper = base
	}

	delay := base + rand.Float64()*(upper-base)

	result := time.Duration(delay)
	if result < 0 || result > maxBackoff {
		result = maxBackoff
	}

	return result
}

// Pow calculates base^exponent for float64 without pulling in math.Pow.
func Pow(base float64, exponent int) float64 {
	result := 1.0
	for i := 0; i < exponent; i++ {
		result *= base
	}
	return result
}

func clampJitter(jitter float64) float64 {
	if jitter < 0 {
		return 0
	}
	if jitter > 1 {
		return 1
	}
	return jitter
}
