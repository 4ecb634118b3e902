package errors

import (
	"context"
	"math"
	"time"
)

const (
	MaxRetries        = 3
	InitialBackoff    = 100 * time.Millisecond
	MaxBackoff        = 5 * time.Second
	BackoffMultiplier = 2.0
)

// WithRetry calls fn until it succeeds, fails with a non-retryable error or
// MaxRetries is exhausted. Backoff waits are cut short by ctx.
func WithRetry(ctx context.Context, fn func() error) error {
	if fn == nil {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	var err error
	for attempt := 0; attempt <= MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		err = fn()
		if err == nil {
			return nil
		}

		if !IsRetryable(err) {
			return err
		}

		if attempt == MaxRetries {
			return err
		}

		timer := time.NewTimer(calculateBackoffDuration(attempt + 1))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return err
}

func IsRetryable(err error) bool {
	if err == nil {
		return false
	}

	if domainErr, ok := AsDomain(err); ok {
		return domainErr.Retryable
	}

	return false
}

func calculateBackoffDuration(attempt int) time.Duration {
	delay := float64(InitialBackoff) * math.Pow(BackoffMultiplier, float64(attempt))
	backoff := time.Duration(delay)
	if backoff > MaxBackoff {
		return MaxBackoff
	}

	return backoff
}
