package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Option adjusts client options parsed from the URL.
type Option func(*redis.Options)

// WithClientName sets the name reported by CLIENT LIST.
func WithClientName(name string) Option {
	return func(o *redis.Options) { o.ClientName = name }
}

// WithPoolSize overrides the connection pool size.
func WithPoolSize(n int) Option {
	return func(o *redis.Options) { o.PoolSize = n }
}

// NewClient creates a new Redis client.
func NewClient(ctx context.Context, redisURL string, opts ...Option) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse redis URL: %w", err)
	}
	for _, opt := range opts {
		opt(options)
	}

	client := redis.NewClient(options)

	// Verify connection
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	return client, nil
}

// Checker reports Redis reachability to the readiness probe.
type Checker struct {
	client *redis.Client
}

// NewChecker creates a Checker for client.
func NewChecker(client *redis.Client) Checker {
	return Checker{client: client}
}

// Name identifies the dependency.
func (c Checker) Name() string { return "redis" }

// Check pings Redis.
func (c Checker) Check(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}
