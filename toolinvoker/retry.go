package toolinvoker

import (
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"context"
)

// RetryConfig mirrors middleware.RetryConfig's shape (core/client/middleware)
// but applies to an arbitrary typed call rather than only the LLM client's
// send path.
type RetryConfig struct {
	// MaxAttempts is the number of retries after the first failure.
	MaxAttempts int

	// BaseDelay is the wait before the first retry.
	BaseDelay time.Duration

	// Factor is the exponential backoff growth multiplier.
	Factor float64

	// Retryable returns true when an error should trigger a retry. A nil
	// Retryable retries every error.
	Retryable func(error) bool
}

// DefaultRetryConfig returns the spec's documented defaults: 3 attempts,
// base 1s, factor 2.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{MaxAttempts: 3, BaseDelay: time.Second, Factor: 2}
}

func (c RetryConfig) withDefaults() RetryConfig {
	if c.MaxAttempts == 0 {
		c.MaxAttempts = 3
	}
	if c.BaseDelay == 0 {
		c.BaseDelay = time.Second
	}
	if c.Factor == 0 {
		c.Factor = 2
	}
	return c
}

func backoff(cfg RetryConfig, attempt int) time.Duration {
	base := float64(cfg.BaseDelay) * math.Pow(cfg.Factor, float64(attempt))
	jitter := base * 0.1 * rand.Float64() //nolint:gosec // non-cryptographic jitter
	return time.Duration(base + jitter)
}

// retryCall runs call up to cfg.MaxAttempts+1 times, backing off
// exponentially with jitter between attempts, stopping early on a
// non-retryable error.
func retryCall[T any](ctx context.Context, cfg RetryConfig, call func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.withDefaults()

	var zero T
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxAttempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return zero, ctx.Err()
			case <-time.After(backoff(cfg, attempt-1)):
			}
		}

		value, err := call(ctx)
		if err == nil {
			return value, nil
		}

		lastErr = err
		if cfg.Retryable != nil && !cfg.Retryable(err) {
			return zero, err
		}
	}

	return zero, fmt.Errorf("%w after %d attempts: %w", ErrRetryExhausted, cfg.MaxAttempts, lastErr)
}
