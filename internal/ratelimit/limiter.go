// Package ratelimit throttles bot updates per Telegram user.
package ratelimit

import (
	"context"
	"errors"
	"time"
)

// Result captures the outcome of a rate-limit evaluation.
type Result struct {
	Allowed   bool
	Remaining int
	// RetryAfter is how long until the oldest counted request leaves the window.
	RetryAfter time.Duration
}

// Limiter counts requests per key in a sliding window.
type Limiter interface {
	Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error)
}

// ErrLimitExceeded is returned together with a rejected Result.
var ErrLimitExceeded = errors.New("rate limit exceeded")
