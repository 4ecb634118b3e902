// Package mongodb bootstraps the MongoDB client used by the profile and search stores.
package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Config defines connection parameters for the MongoDB client.
type Config struct {
	URL            string
	Database       string
	ConnectTimeout time.Duration
}

// Client wraps mongo.Client bound to the application database.
type Client struct {
	client   *mongo.Client
	database *mongo.Database
}

// Connect dials MongoDB and verifies the connection with a primary ping.
func Connect(ctx context.Context, cfg Config) (*Client, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	opts := options.Client().
		ApplyURI(cfg.URL).
		SetAppName("lanxat-bot").
		SetConnectTimeout(timeout).
		SetServerSelectionTimeout(timeout)

	client, err := mongo.Connect(connectCtx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}

	if err := client.Ping(connectCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	return &Client{client: client, database: client.Database(cfg.Database)}, nil
}

// Database returns the configured application database.
func (c *Client) Database() *mongo.Database {
	return c.database
}

// HealthCheck pings the primary.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c == nil || c.client == nil {
		return mongo.ErrClientDisconnected
	}
	return c.client.Ping(ctx, readpref.Primary())
}

// Close disconnects the client.
func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	return c.client.Disconnect(ctx)
}
