// Package redis provides the Redis client used for the profile cache, profile locks and rate limiting.
package redis

import (
	"context"
	"fmt"
	"time"

	redis "github.com/redis/go-redis/v9"
)

// Config defines connection parameters for initializing the Redis client.
type Config struct {
	Addr         string
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	PoolTimeout  time.Duration
	IdleTimeout  time.Duration
	MaxRetries   int
}

// Client embeds go-redis so it satisfies redis.Cmdable, with every command instrumented.
type Client struct {
	*redis.Client
}

// New creates a Redis client configured with cfg and verifies the connection with Ping.
func New(ctx context.Context, cfg Config) (*Client, error) {
	opts := &redis.Options{
		Addr:            cfg.Addr,
		Password:        cfg.Password,
		DB:              cfg.DB,
		PoolSize:        cfg.PoolSize,
		MinIdleConns:    cfg.MinIdleConns,
		PoolTimeout:     cfg.PoolTimeout,
		ConnMaxIdleTime: cfg.IdleTimeout,
		MaxRetries:      cfg.MaxRetries,
	}

	rdb := redis.NewClient(opts)
	rdb.AddHook(metricsHook{})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return &Client{rdb}, nil
}

// HealthCheck issues a PING.
func (c *Client) HealthCheck(ctx context.Context) error {
	return c.Ping(ctx).Err()
}
