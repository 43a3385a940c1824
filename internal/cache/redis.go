package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pawgram/internal/config"
	"pawgram/internal/middleware"
)

var client *redis.Client

// InitRedis connects the package-level Redis client. The connection is
// verified with a ping before being accepted.
func InitRedis(cfg *config.Config) error {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("parsing redis url: %w", err)
	}
	client = redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client = nil
		return fmt.Errorf("connecting to redis: %w", err)
	}

	middleware.Logger.Info("redis connected", "addr", opts.Addr)
	return nil
}

// SetClient swaps in a client directly. Used by tests with miniredis.
func SetClient(c *redis.Client) {
	client = c
}

// GetClient returns the shared Redis client, or nil when Redis is not configured.
func GetClient() *redis.Client {
	return client
}

// Close shuts down the shared client.
func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	return err
}
