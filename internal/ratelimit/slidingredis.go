package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisLimiter is a sliding window limiter backed by Redis sorted sets. It is
// shared across previewd replicas.
type RedisLimiter struct {
	Client *redis.Client
	Prefix string
}

// Allow registers an event for key and reports whether it is within limit per window.
func (l RedisLimiter) Allow(ctx context.Context, key string, window time.Duration, limit int) (Decision, error) {
	now := time.Now()
	until := now.Add(window)
	if l.Client == nil || limit <= 0 || window <= 0 {
		return Decision{Allowed: true, Remaining: limit, Reset: until}, nil
	}

	redisKey := l.Prefix + key
	member := fmt.Sprintf("%s:%s", key, uuid.NewString())

	pipe := l.Client.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", fmt.Sprintf("%d", now.Add(-window).UnixNano()))
	pipe.ZAdd(ctx, redisKey, redis.Z{Score: float64(now.UnixNano()), Member: member})
	countCmd := pipe.ZCard(ctx, redisKey)
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return Decision{Reset: until}, fmt.Errorf("ratelimit redis: %w", err)
	}

	current := int(countCmd.Val())
	return Decision{
		Allowed:   current <= limit,
		Remaining: max(0, limit-current),
		Reset:     until,
	}, nil
}
