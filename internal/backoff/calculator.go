package backoff

import (
	"time"
)

// Calculator provides backoff calculation using a configurable strategy.
type Calculator struct {
	strategy Strategy
}

// NewCalculator creates a new backoff calculator with the specified strategy.
func NewCalculator(strategy Strategy) *Calculator {
	return &Calculator{
		strategy: strategy,
	}
}

// Calculate computes the backoff duration for the given attempt and parameters.
func (c *Calculator) Calculate(attempt int, initialBackoff, maxBackoff time.Duration, multiplier, jitter float64) time.Duration {
	return c.strategy.Calculate(attempt, initialBackoff, maxBackoff, multiplier, jitter)
}

// GetStrategy returns the current strategy being used by this calculator.
func (c *Calculator) GetStrategy() Strategy {
	return c.strategy
}

// GetExponentialJitterCalculator returns a calculator configured with the
// exponential jitter strategy, the default for retries.
func GetExponentialJitterCalculator() *Calculator {
	return NewCalculator(ExponentialJitterStrategy{})
}

// GetDecorrelatedJitterCalculator returns a calculator configured with
// AWS-style decorrelated jitter.
func GetDecorrelatedJitterCalculator() *Calculator {
	return NewCalculator(DecorrelatedJitterStrategy{})
}
