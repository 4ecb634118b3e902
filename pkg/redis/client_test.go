package redis

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	promtest "github.com/prometheus/client_golang/prometheus/testutil"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InstrumentsCommands(t *testing.T) {
	mr := miniredis.RunT(t)
	ctx := context.Background()

	client, err := New(ctx, Config{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	require.NoError(t, client.HealthCheck(ctx))

	getsBefore := promtest.ToFloat64(redisRequestsTotal.WithLabelValues("get"))
	errorsBefore := promtest.ToFloat64(redisErrorsTotal.WithLabelValues("get"))

	_, err = client.Get(ctx, "profile:1").Result()
	assert.ErrorIs(t, err, goredis.Nil)
	require.NoError(t, client.Set(ctx, "profile:1", "{}", time.Minute).Err())

	assert.Equal(t, getsBefore+1, promtest.ToFloat64(redisRequestsTotal.WithLabelValues("get")))
	assert.Equal(t, errorsBefore, promtest.ToFloat64(redisErrorsTotal.WithLabelValues("get")))
}

func TestNew_FailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(context.Background(), Config{Addr: addr, MaxRetries: -1})
	assert.Error(t, err)
}
