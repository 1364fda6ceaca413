package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/finquill/finchat/pkg/flog"
)

type RedisCache struct {
	client *redis.Client
	logger *flog.Logger
}

// NewRedisCache connects to Redis and verifies it with a ping. Returns nil
// when Redis is offline so the caller can fall back to the in-memory cache.
func NewRedisCache(ctx context.Context, addr string) *RedisCache {
	logger := flog.NewLogger("Answer Cache")

	client := redis.NewClient(&redis.Options{
		Addr:                  addr,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Error("Redis is offline", "addr", addr, "error", err)
		return nil
	}

	logger.Info("Redis answer cache connected", "addr", addr)
	return &RedisCache{client: client, logger: logger}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	raw, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.logger.Error("Cache read failed", "error", err)
		}
		return "", false
	}
	return raw, true
}

func (c *RedisCache) Set(ctx context.Context, key string, raw string, ttl time.Duration) {
	if err := c.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		c.logger.Error("Cache write failed", "error", err)
	}
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// NewTestCache wraps an existing client, for tests against miniredis.
func NewTestCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client, logger: flog.NewLogger("Answer Cache")}
}
