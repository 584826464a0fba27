package main

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/extra/redisotel/v9"
	redis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/config"
	"github.com/noah-isme/toko-storefront/internal/health"
	"github.com/noah-isme/toko-storefront/internal/ratelimit"
)

// newRateLimit builds the preview API throttle. The returned close function
// releases the Redis client, if any.
func newRateLimit(cfg *config.Config, logger zerolog.Logger, probes map[string]health.Probe) (*ratelimit.Handler, func(), error) {
	noop := func() {}
	if cfg.RateLimitBackend == "off" {
		return nil, noop, nil
	}
	trust, err := common.ParseProxyTrust(cfg.TrustedProxies)
	if err != nil {
		return nil, noop, fmt.Errorf("trusted proxies: %w", err)
	}
	var limiter ratelimit.Allower
	switch cfg.RateLimitBackend {
	case "redis":
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, noop, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		if cfg.TracingEnabled {
			if err := redisotel.InstrumentTracing(client); err != nil {
				logger.Error().Err(err).Msg("instrument redis tracing")
			}
		}
		probes["redis"] = func(ctx context.Context) error { return client.Ping(ctx).Err() }
		limiter = ratelimit.RedisLimiter{Client: client, Prefix: "toko:ratelimit:"}
		noop = func() {
			if err := client.Close(); err != nil {
				logger.Error().Err(err).Msg("close redis")
			}
		}
	default:
		limiter = ratelimit.NewMemoryLimiter("toko:ratelimit")
	}
	return &ratelimit.Handler{
		Limiter: limiter,
		Config: ratelimit.Config{
			Key:    ratelimit.ByClientIP("preview:", trust),
			Window: cfg.RateLimitWindow,
			Max:    cfg.RateLimitMax,
		},
		OnError: func(err error) { logger.Warn().Err(err).Msg("rate limit unavailable") },
	}, noop, nil
}
