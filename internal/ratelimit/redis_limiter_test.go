package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/lanxat-bot/internal/testutil"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return mr, client
}

func TestRedisLimiter_AllowsWithinLimit(t *testing.T) {
	_, client := setupTestRedis(t)
	limiter := NewRedisLimiter(client, testutil.Logger())

	for i := 0; i < 3; i++ {
		result, err := limiter.Check(context.Background(), "user:1", 5, time.Minute)
		require.NoError(t, err)
		assert.True(t, result.Allowed)
		assert.Equal(t, 5-(i+1), result.Remaining)
	}
}

func TestRedisLimiter_BlocksWhenExceeded(t *testing.T) {
	mr, client := setupTestRedis(t)
	limiter := NewRedisLimiter(client, testutil.Logger())
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := limiter.Check(ctx, "user:2", 2, time.Minute)
		require.NoError(t, err)
	}

	result, err := limiter.Check(ctx, "user:2", 2, time.Minute)
	assert.ErrorIs(t, err, ErrLimitExceeded)
	assert.False(t, result.Allowed)
	assert.Greater(t, result.RetryAfter, time.Duration(0))

	members, err := mr.ZMembers(KeyPrefix + "user:2")
	require.NoError(t, err)
	assert.Len(t, members, 2)
}

func TestRedisLimiter_SlidingWindow(t *testing.T) {
	_, client := setupTestRedis(t)
	limiter := NewRedisLimiter(client, testutil.Logger())
	ctx := context.Background()

	now := time.Now()
	limiter.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		_, err := limiter.Check(ctx, "user:3", 2, time.Second)
		require.NoError(t, err)
	}

	_, err := limiter.Check(ctx, "user:3", 2, time.Second)
	assert.ErrorIs(t, err, ErrLimitExceeded)

	now = now.Add(1100 * time.Millisecond)
	result, err := limiter.Check(ctx, "user:3", 2, time.Second)
	require.NoError(t, err)
	assert.True(t, result.Allowed)
}
