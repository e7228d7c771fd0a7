package common

import (
	"context"
	"fmt"
	"time"
)

// RetryPolicy describes a bounded retry with exponential backoff.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Multiplier  float64
}

// DefaultRetryPolicy is the 1s/2s/4s schedule used for payment-side order
// updates.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Multiplier:  2,
	}
}

// Retry runs fn until it succeeds, the policy's attempts are exhausted, or
// the context is cancelled. The backoff sleep happens between attempts, not
// after the last one. The returned error is the last error from fn, wrapped
// with the attempt count; context cancellation wins over a pending retry.
func Retry(ctx context.Context, policy RetryPolicy, fn func(ctx context.Context) error) error {
	if policy.MaxAttempts <= 0 {
		policy.MaxAttempts = 1
	}
	if policy.Multiplier <= 0 {
		policy.Multiplier = 2
	}

	var lastErr error
	delay := policy.BaseDelay
	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}

		if attempt == policy.MaxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = time.Duration(float64(delay) * policy.Multiplier)
	}

	return fmt.Errorf("after %d attempts: %w", policy.MaxAttempts, lastErr)
}
