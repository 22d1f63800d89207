package qa

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Manoranjanhere/EDUUB/pkg/redis"
)

// redisCache is a Redis-backed AnswerCache.
type redisCache struct {
	client *redis.Client
}

// NewRedisAnswerCache wraps a Redis client as an AnswerCache.
func NewRedisAnswerCache(client *redis.Client) AnswerCache {
	return &redisCache{client: client}
}

func (c *redisCache) Get(ctx context.Context, key string) (string, bool, error) {
	val, err := c.client.Get(ctx, key).Result()
	if err == goredis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return val, true, nil
}

func (c *redisCache) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}
