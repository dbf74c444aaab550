package apierr

import (
	"context"
	"fmt"
	"time"
)

// RetryConfig holds retry parameters for exponential backoff.
//
// Invalid values are normalized: a negative MaxRetries means a single
// attempt, a non-positive BaseDelay becomes 1ms and a non-positive
// MaxDelay becomes BaseDelay.
type RetryConfig struct {
	MaxRetries int
	BaseDelay  time.Duration
	MaxDelay   time.Duration

	// OnRetry, if set, is called before each wait with the upcoming attempt
	// number (1-based), the error that caused it and the delay.
	OnRetry func(attempt int, err error, delay time.Duration)
}

func (c RetryConfig) normalized() RetryConfig {
	c.MaxRetries = max(c.MaxRetries, 0)
	if c.BaseDelay <= 0 {
		c.BaseDelay = time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = c.BaseDelay
	}
	return c
}

// delay returns the wait before retry n (1-based): BaseDelay doubled n-1 times, capped.
func (c RetryConfig) delay(n int) time.Duration {
	d := c.BaseDelay
	for range n - 1 {
		if d >= c.MaxDelay {
			break
		}
		d *= 2
	}
	return min(d, c.MaxDelay)
}

// RetryWithBackoff calls fn until it succeeds, fails with an error
// shouldRetry rejects, or MaxRetries retries are spent.
// Cancelling ctx during a wait returns ctx.Err().
func RetryWithBackoff[T any](
	ctx context.Context,
	cfg RetryConfig,
	fn func() (T, error),
	shouldRetry func(error) bool,
) (T, error) {
	cfg = cfg.normalized()

	var zero T
	var lastErr error
	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			d := cfg.delay(attempt)
			if cfg.OnRetry != nil {
				cfg.OnRetry(attempt, lastErr, d)
			}
			if err := sleep(ctx, d); err != nil {
				return zero, err
			}
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		if !shouldRetry(err) {
			return zero, err
		}
		lastErr = err
	}

	return zero, fmt.Errorf("max retries (%d) exceeded: %w", cfg.MaxRetries, lastErr)
}

// sleep waits for d or until ctx ends.
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
