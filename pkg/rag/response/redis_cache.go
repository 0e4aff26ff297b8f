package response

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "regchat:response:"

// RedisCache shares cached answers across instances. Capacity is left to the
// Redis server's own memory policy; only the TTL is enforced here.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *RedisCache) Get(ctx context.Context, query string) (*Cached, bool) {
	raw, err := c.client.Get(ctx, redisKeyPrefix+NormalizeKey(query)).Bytes()
	if err != nil {
		return nil, false
	}

	var cached Cached
	if err := json.Unmarshal(raw, &cached); err != nil {
		return nil, false
	}
	return &cached, true
}

func (c *RedisCache) Set(ctx context.Context, query string, value *Cached) {
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	// A failed cache write is invisible to the caller; the next request
	// recomputes.
	c.client.Set(ctx, redisKeyPrefix+NormalizeKey(query), raw, c.ttl)
}
