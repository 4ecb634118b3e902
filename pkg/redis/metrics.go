package redis

import (
	"context"
	stdErrors "errors"
	"net"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	goredis "github.com/redis/go-redis/v9"
)

var (
	redisRequestsTotal   *prometheus.CounterVec
	redisErrorsTotal     *prometheus.CounterVec
	redisRequestDuration *prometheus.HistogramVec
)

func init() {
	redisRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_requests_total",
			Help: "Total number of Redis requests by command.",
		},
		[]string{"command"},
	)
	redisErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "redis_errors_total",
			Help: "Total number of Redis errors by command.",
		},
		[]string{"command"},
	)
	redisRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "redis_request_duration_seconds",
			Help:    "Redis request latency distributions.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"command"},
	)

	prometheus.MustRegister(redisRequestsTotal, redisErrorsTotal, redisRequestDuration)
}

// metricsHook records every command and pipeline sent through the client.
type metricsHook struct{}

var _ goredis.Hook = metricsHook{}

func (metricsHook) DialHook(next goredis.DialHook) goredis.DialHook {
	return func(ctx context.Context, network, addr string) (net.Conn, error) {
		conn, err := next(ctx, network, addr)
		if err != nil {
			redisErrorsTotal.WithLabelValues("dial").Inc()
		}
		return conn, err
	}
}

func (metricsHook) ProcessHook(next goredis.ProcessHook) goredis.ProcessHook {
	return func(ctx context.Context, cmd goredis.Cmder) error {
		name := strings.ToLower(cmd.Name())
		timer := prometheus.NewTimer(redisRequestDuration.WithLabelValues(name))
		err := next(ctx, cmd)
		timer.ObserveDuration()
		observe(name, err)
		return err
	}
}

func (metricsHook) ProcessPipelineHook(next goredis.ProcessPipelineHook) goredis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []goredis.Cmder) error {
		timer := prometheus.NewTimer(redisRequestDuration.WithLabelValues("pipeline"))
		err := next(ctx, cmds)
		timer.ObserveDuration()
		observe("pipeline", err)
		return err
	}
}

func observe(command string, err error) {
	redisRequestsTotal.WithLabelValues(command).Inc()
	// a missing key is a normal answer, not a failure
	if err != nil && !stdErrors.Is(err, goredis.Nil) {
		redisErrorsTotal.WithLabelValues(command).Inc()
	}
}
