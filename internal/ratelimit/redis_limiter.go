package ratelimit

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// KeyPrefix namespaces limiter keys in redis.
const KeyPrefix = "lanxat:ratelimit:"

// RedisLimiter implements a sliding window over a sorted set per key, shared
// by every bot instance.
type RedisLimiter struct {
	client redis.Cmdable
	log    *slog.Logger
	now    func() time.Time
}

var _ Limiter = (*RedisLimiter)(nil)

func NewRedisLimiter(client redis.Cmdable, log *slog.Logger) *RedisLimiter {
	if log == nil {
		log = slog.Default()
	}

	return &RedisLimiter{client: client, log: log, now: time.Now}
}

// Check records the request and rejects it when the window already holds
// limit requests. Rejected requests are not counted.
func (l *RedisLimiter) Check(ctx context.Context, key string, limit int, window time.Duration) (*Result, error) {
	now := l.now()
	redisKey := KeyPrefix + key
	member := uuid.NewString()

	cutoff := now.Add(-window).UnixMilli()

	pipe := l.client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", "("+strconv.FormatInt(cutoff, 10))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixMilli()), Member: member})
	countCmd := pipe.ZCard(ctx, redisKey)
	oldestCmd := pipe.ZRangeWithScores(ctx, redisKey, 0, 0)
	pipe.PExpire(ctx, redisKey, window)

	if _, err := pipe.Exec(ctx); err != nil {
		l.log.Error("rate limiter pipeline failed", slog.String("key", key), slog.Any("error", err))
		return nil, fmt.Errorf("rate limit pipeline: %w", err)
	}

	count := int(countCmd.Val())
	result := &Result{Allowed: count <= limit, Remaining: max(limit-count, 0)}

	if oldest := oldestCmd.Val(); len(oldest) > 0 {
		resetAt := time.UnixMilli(int64(oldest[0].Score)).Add(window)
		result.RetryAfter = max(resetAt.Sub(now), 0)
	}

	if !result.Allowed {
		if err := l.client.ZRem(ctx, redisKey, member).Err(); err != nil {
			l.log.Warn("failed to drop rejected request", slog.String("key", key), slog.Any("error", err))
		}
		return result, ErrLimitExceeded
	}

	return result, nil
}
