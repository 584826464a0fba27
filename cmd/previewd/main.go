package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/config"
	"github.com/noah-isme/toko-storefront/internal/health"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/preview"
	"github.com/noah-isme/toko-storefront/internal/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	logger := obs.NewLogger(cfg.LogFormat, cfg.LogLevel).With().Str("env", cfg.AppEnv).Logger()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	tracing := cfg.TracingEnabled
	if tracing {
		shutdown, err := obs.InitTracer(ctx, obs.TracingConfig{
			Endpoint:      cfg.OTLPEndpoint,
			SamplingRatio: cfg.TracingSampling,
			Environment:   cfg.AppEnv,
		})
		if err != nil {
			logger.Error().Err(err).Msg("initialise tracing")
			tracing = false
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					logger.Error().Err(err).Msg("shutdown tracer")
				}
			}()
		}
	}

	readiness := probes(cfg)
	limit, closeLimit, err := newRateLimit(cfg, logger, readiness)
	if err != nil {
		logger.Fatal().Err(err).Msg("initialise rate limit")
	}
	defer closeLimit()

	deps := routerDeps{
		Logger:    logger,
		Tracing:   tracing,
		Origins:   cfg.CORSAllowedOrigins,
		StaticDir: cfg.StaticDir,
		Cart:      &cart.Handler{TaxBps: cfg.PricingTaxRateBPS, Validate: validator.New()},
		Preview:   &preview.Handler{CurrencySymbol: cfg.CurrencySymbol, Validate: validator.New()},
		Health:    health.Handler{Probes: readiness},
		RateLimit: limit,
		BodyLimit: security.BodyLimit{Max: cfg.MaxBodyBytes},
		Settings:  cfg.ClientSettings(),
	}
	if cfg.MetricsEnabled {
		obs.MustRegisterDomainMetrics(cfg.MetricsNamespace, nil)
		deps.HTTPMetrics = obs.NewHTTPMetrics(cfg.MetricsNamespace, obs.ParseBucketsCSV(cfg.MetricsBuckets), nil)
		deps.MetricsHandler = promhttp.Handler()
	}

	srv := &http.Server{
		Addr:    cfg.HTTPAddr(),
		Handler: newRouter(deps),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			logger.Fatal().Err(err).Msg("server exited unexpectedly")
		}
	case <-ctx.Done():
	}

	health.SetReady(false)
	logger.Info().Dur("timeout", cfg.ShutdownTimeout).Msg("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown")
	}
}

// probes reports the static bundle as a readiness dependency when one is served.
func probes(cfg *config.Config) map[string]health.Probe {
	out := map[string]health.Probe{}
	if cfg.StaticDir == "" {
		return out
	}
	dir := cfg.StaticDir
	out["static"] = func(context.Context) error {
		info, err := os.Stat(dir)
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return fmt.Errorf("%s is not a directory", dir)
		}
		return nil
	}
	return out
}
