package redis

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Logger interface for logging
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
}

// Client wraps redis.Client with the pub/sub operations the notification
// bus needs
type Client struct {
	redis  *redis.Client
	logger Logger
}

// Options are the connection settings
type Options struct {
	Addr     string
	Password string
	DB       int
}

// NewClient creates a new Redis client wrapper
func NewClient(redisClient *redis.Client, logger Logger) *Client {
	return &Client{
		redis:  redisClient,
		logger: logger,
	}
}

// Dial connects to redis and verifies the connection with PING
func Dial(ctx context.Context, opts Options, logger Logger) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", opts.Addr, err)
	}

	logger.Info("connected to redis", "addr", opts.Addr)
	return NewClient(rdb, logger), nil
}

// GetUnderlying returns the underlying redis.Client for advanced operations
func (c *Client) GetUnderlying() *redis.Client {
	return c.redis
}

// Ping checks connectivity
func (c *Client) Ping(ctx context.Context) error {
	if err := c.redis.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// PublishEvent publishes an event to a Redis channel
func (c *Client) PublishEvent(ctx context.Context, channel string, message string) error {
	err := c.redis.Publish(ctx, channel, message).Err()
	if err != nil {
		c.logger.Error("redis PUBLISH failed", "channel", channel, "error", err)
		return fmt.Errorf("failed to publish to channel %s: %w", channel, err)
	}
	c.logger.Debug("redis PUBLISH", "channel", channel)
	return nil
}

// PSubscribe subscribes to every channel matching pattern and waits for the
// subscription to be confirmed
func (c *Client) PSubscribe(ctx context.Context, pattern string) (*redis.PubSub, error) {
	pubsub := c.redis.PSubscribe(ctx, pattern)
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", pattern, err)
	}
	c.logger.Debug("redis PSUBSCRIBE", "pattern", pattern)
	return pubsub, nil
}

// Close closes the connection pool
func (c *Client) Close() error {
	return c.redis.Close()
}
