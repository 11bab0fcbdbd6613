package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/katchitechstudio/nouvs-backend/internal/application"
	"github.com/katchitechstudio/nouvs-backend/internal/domain"
)

const keyPrefix = "nouvs:"

// Redis is the shared read cache. It is best-effort by contract: every error
// is absorbed and surfaces as a miss, so a Redis outage degrades reads to the
// database instead of failing them.
type Redis struct {
	Client *redis.Client
	TTL    time.Duration
}

var _ application.ReadCache = (*Redis)(nil)

func NewRedis(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{Client: client, TTL: ttl}
}

func (c *Redis) Get(ctx context.Context, key string) (string, bool) {
	v, err := c.Client.Get(ctx, keyPrefix+key).Result()
	if err != nil {
		return "", false
	}
	return v, true
}

func (c *Redis) Set(ctx context.Context, key, value string) {
	_ = c.Client.Set(ctx, keyPrefix+key, value, c.TTL).Err()
}

func (c *Redis) InvalidateClass(ctx context.Context, class domain.AssetClass) {
	pattern := keyPrefix + string(class) + ":*"
	iter := c.Client.Scan(ctx, 0, pattern, 0).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if iter.Err() != nil {
		return
	}
	if len(keys) > 0 {
		_ = c.Client.Del(ctx, keys...).Err()
	}
}
