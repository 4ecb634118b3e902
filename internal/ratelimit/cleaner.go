package ratelimit

import (
	"context"
	"log/slog"
	"time"
)

// Cleaner evicts idle keys from an in-memory limiter.
type Cleaner struct {
	limiter  *MemoryLimiter
	log      *slog.Logger
	interval time.Duration
	maxAge   time.Duration
}

func NewCleaner(limiter *MemoryLimiter, log *slog.Logger, interval, maxAge time.Duration) *Cleaner {
	if log == nil {
		log = slog.Default()
	}

	return &Cleaner{limiter: limiter, log: log, interval: interval, maxAge: maxAge}
}

// Run sweeps every interval until ctx is canceled.
func (c *Cleaner) Run(ctx context.Context) {
	if c.limiter == nil || c.interval <= 0 {
		return
	}

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			c.log.Info("rate limit cleaner stopped", slog.String("reason", ctx.Err().Error()))
			return
		case <-ticker.C:
			if removed := c.limiter.Cleanup(c.maxAge); removed > 0 {
				c.log.Debug("rate limit keys cleaned", slog.Int("keys_removed", removed))
			}
		}
	}
}
