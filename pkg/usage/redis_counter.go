package usage

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCounter implements Counter on Redis. INCRBY gives the additive
// server-side semantics the ledger requires across concurrent runs.
type RedisCounter struct {
	client *redis.Client
}

// NewRedisCounter wraps an existing Redis client.
func NewRedisCounter(client *redis.Client) *RedisCounter {
	return &RedisCounter{client: client}
}

func (c *RedisCounter) IncrBy(ctx context.Context, key string, n int64, ttl time.Duration) (int64, error) {
	val, err := c.client.IncrBy(ctx, key, n).Result()
	if err != nil {
		return 0, err
	}
	if ttl > 0 {
		// NX: only stamp the expiry when the key is new, so the window
		// keeps its original end.
		_ = c.client.ExpireNX(ctx, key, ttl).Err()
	}
	return val, nil
}

func (c *RedisCounter) Get(ctx context.Context, key string) (int64, error) {
	val, err := c.client.Get(ctx, key).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return val, err
}
