package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache implements Cache on Redis with a generation counter per cache:
// entries live under "dms:cache:<name>:<generation>:<key>" and EvictAll just
// increments the generation, making every prior entry unreachable. Stale
// generations are reclaimed by the per-entry TTL.
type RedisCache struct {
	name   string
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, name string, ttl time.Duration) *RedisCache {
	return &RedisCache{name: name, client: client, ttl: ttl}
}

func (c *RedisCache) Name() string { return c.name }

func (c *RedisCache) genKey() string {
	return "dms:cache:" + c.name + ":gen"
}

func (c *RedisCache) entryKey(ctx context.Context, key string) (string, error) {
	gen, err := c.client.Get(ctx, c.genKey()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			gen = "0"
		} else {
			return "", err
		}
	}
	return "dms:cache:" + c.name + ":" + gen + ":" + key, nil
}

func (c *RedisCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	k, err := c.entryKey(ctx, key)
	if err != nil {
		return false, err
	}
	b, err := c.client.Get(ctx, k).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(b, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, value interface{}) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	k, err := c.entryKey(ctx, key)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, k, b, c.ttl).Err()
}

func (c *RedisCache) EvictAll(ctx context.Context) error {
	return c.client.Incr(ctx, c.genKey()).Err()
}
