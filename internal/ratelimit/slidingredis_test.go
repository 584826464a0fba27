package ratelimit

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func TestRedisLimiterSlidingWindow(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("run miniredis: %v", err)
	}
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer func() { _ = client.Close() }()
	limiter := RedisLimiter{Client: client, Prefix: "test:"}

	ctx := context.Background()
	window := 2 * time.Second
	limit := 2

	for i := 0; i < limit; i++ {
		d, err := limiter.Allow(ctx, "key", window, limit)
		if err != nil {
			t.Fatalf("allow: %v", err)
		}
		if !d.Allowed {
			t.Fatalf("expected request %d to be allowed", i)
		}
		if d.Remaining != limit-(i+1) {
			t.Fatalf("unexpected remaining: %d", d.Remaining)
		}
	}

	d, err := limiter.Allow(ctx, "key", window, limit)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if d.Allowed {
		t.Fatal("expected third request to be rejected")
	}
	if d.Remaining != 0 {
		t.Fatalf("expected remaining 0, got %d", d.Remaining)
	}
	if ttl := mr.TTL("test:key"); ttl <= 0 || ttl > window {
		t.Fatalf("expected key ttl within window, got %v", ttl)
	}
}

func TestRedisLimiterDisabled(t *testing.T) {
	d, err := RedisLimiter{}.Allow(context.Background(), "key", time.Second, 3)
	if err != nil {
		t.Fatalf("allow: %v", err)
	}
	if !d.Allowed || d.Remaining != 3 {
		t.Fatalf("unexpected decision %#v", d)
	}
}
