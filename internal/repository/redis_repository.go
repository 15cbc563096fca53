package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimitRepository counts events per key in fixed windows.
type RateLimitRepository struct {
	client *redis.Client
	prefix string
}

func NewRateLimitRepository(client *redis.Client) *RateLimitRepository {
	return &RateLimitRepository{client: client, prefix: "ratelimit:"}
}

// Allow records one event for key and reports whether it is within limit
// for the current window. The window starts with the first event.
func (r *RateLimitRepository) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	fullKey := r.prefix + key
	count, err := r.client.Incr(ctx, fullKey).Result()
	if err != nil {
		return false, fmt.Errorf("error incrementing rate counter: %s", err)
	}
	if count == 1 {
		if err := r.client.Expire(ctx, fullKey, window).Err(); err != nil {
			return false, fmt.Errorf("error setting rate window: %s", err)
		}
	}
	return count <= int64(limit), nil
}

// RetryAfter reports how long until the window for key resets.
func (r *RateLimitRepository) RetryAfter(ctx context.Context, key string) time.Duration {
	ttl, err := r.client.TTL(ctx, r.prefix+key).Result()
	if err != nil || ttl < 0 {
		return 0
	}
	return ttl
}
