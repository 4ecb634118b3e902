package ratelimit

import (
	"context"
	stdErrors "errors"
	"log/slog"
	"time"

	"github.com/Proton-105/lanxat-bot/pkg/metrics"
)

// AdaptiveLimiter delegates to a shared (redis) limiter and falls back to a
// stricter in-memory limiter while the shared one fails.
type AdaptiveLimiter struct {
	primary  Limiter
	fallback Limiter
	log      *slog.Logger
}

var _ Limiter = (*AdaptiveLimiter)(nil)

func NewAdaptiveLimiter(primary, fallback Limiter, log *slog.Logger) *AdaptiveLimiter {
	if log == nil {
		log = slog.Default()
	}

	return &AdaptiveLimiter{primary: primary, fallback: fallback, log: log}
}

func (a *AdaptiveLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	result, err := a.primary.Check(ctx, key, limit, window)
	if err == nil || stdErrors.Is(err, ErrLimitExceeded) {
		metrics.RecordRateLimitCheck("redis", result != nil && result.Allowed)
		return result, err
	}

	metrics.RecordRateLimitBackendError("redis")
	a.log.Warn("redis limiter failed, falling back to in-memory", slog.String("key", key), slog.Any("error", err))

	// each instance only sees its own share of the traffic
	fallbackLimit := max(limit/2, 1)

	result, err = a.fallback.Check(ctx, key, fallbackLimit, window)
	if err != nil && !stdErrors.Is(err, ErrLimitExceeded) {
		return nil, err
	}

	metrics.RecordRateLimitCheck("memory", result.Allowed)
	return result, err
}
