// Package cache provides a best-effort Redis cache. Every operation is
// fail-open: a missing or unreachable Redis never blocks a request.
package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache wraps a Redis client. A nil Cache (or one whose connection failed)
// behaves as an always-miss cache.
type Cache struct {
	client *redis.Client
}

// New connects to Redis at addr. If the connection cannot be established the
// returned Cache is still usable and simply misses on every lookup.
func New(addr string) *Cache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		slog.Warn("redis unavailable, continuing without cache", "addr", addr, "error", err)
		return &Cache{}
	}

	slog.Info("redis connected", "addr", addr)
	return &Cache{client: client}
}

// Client returns the underlying Redis client, or nil when unavailable.
func (c *Cache) Client() *redis.Client {
	if c == nil {
		return nil
	}
	return c.client
}
