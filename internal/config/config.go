package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/pricing"
)

// Config holds application configuration loaded from the environment.
type Config struct {
	AppEnv             string
	Port               string
	CORSAllowedOrigins []string
	StaticDir          string

	PricingTaxRateBPS int
	CurrencySymbol    string

	CartSyncBaseURL     string
	CartSyncTimeout     time.Duration
	CartSyncMaxAttempts int
	CartSyncBackoff     time.Duration
	CartSyncBreaker     bool

	RateLimitBackend string
	RateLimitMax     int
	RateLimitWindow  time.Duration
	RedisURL         string
	TrustedProxies   []string
	MaxBodyBytes     int64

	LogFormat        string
	LogLevel         string
	ShutdownTimeout  time.Duration
	MetricsEnabled   bool
	MetricsNamespace string
	MetricsBuckets   string
	TracingEnabled   bool
	OTLPEndpoint     string
	TracingSampling  float64
}

// Load reads configuration from environment variables and optional .env files.
func Load() (*Config, error) {
	_ = godotenv.Load()

	k := koanf.New(".")
	if err := k.Load(env.Provider("", ".", func(s string) string { return s }), nil); err != nil {
		return nil, fmt.Errorf("load env: %w", err)
	}

	cfg := &Config{
		AppEnv:              valueOrDefault(k.String("APP_ENV"), "development"),
		Port:                valueOrDefault(k.String("PORT"), "8080"),
		CORSAllowedOrigins:  splitAndTrim(k.String("CORS_ALLOWED_ORIGINS")),
		StaticDir:           strings.TrimSpace(k.String("STATIC_DIR")),
		PricingTaxRateBPS:   parseInt(k.String("PRICING_TAX_RATE_BPS"), pricing.DefaultTaxBps),
		CurrencySymbol:      valueOrDefault(k.String("CURRENCY_SYMBOL"), pricing.DefaultCurrencySymbol),
		CartSyncBaseURL:     strings.TrimSpace(k.String("CART_SYNC_BASE_URL")),
		CartSyncTimeout:     parseDuration(k.String("CART_SYNC_TIMEOUT"), "5s"),
		CartSyncMaxAttempts: parseInt(k.String("CART_SYNC_MAX_ATTEMPTS"), 1),
		CartSyncBackoff:     parseDuration(k.String("CART_SYNC_BACKOFF"), "200ms"),
		CartSyncBreaker:     parseBool(k.String("CART_SYNC_BREAKER"), false),
		RateLimitBackend:    strings.ToLower(valueOrDefault(k.String("RATE_LIMIT_BACKEND"), "memory")),
		RateLimitMax:        parseInt(k.String("RATE_LIMIT_MAX"), 120),
		RateLimitWindow:     parseDuration(k.String("RATE_LIMIT_WINDOW"), "1m"),
		RedisURL:            strings.TrimSpace(k.String("REDIS_URL")),
		TrustedProxies:      splitAndTrim(k.String("TRUSTED_PROXIES")),
		MaxBodyBytes:        int64(parseInt(k.String("MAX_BODY_BYTES"), 64<<10)),
		LogFormat:           valueOrDefault(k.String("OBS_LOG_FORMAT"), "json"),
		LogLevel:            valueOrDefault(k.String("OBS_LOG_LEVEL"), "info"),
		ShutdownTimeout:     parseDuration(k.String("SHUTDOWN_TIMEOUT"), "10s"),
		MetricsEnabled:      parseBool(k.String("OBS_ENABLE_PROMETHEUS"), true),
		MetricsNamespace:    valueOrDefault(k.String("OBS_METRICS_NAMESPACE"), "toko"),
		MetricsBuckets:      strings.TrimSpace(k.String("OBS_METRICS_BUCKETS_MS")),
		TracingEnabled:      parseBool(k.String("OBS_ENABLE_TRACING"), false),
		OTLPEndpoint:        strings.TrimSpace(k.String("OBS_OTLP_ENDPOINT")),
		TracingSampling:     parseFloat(k.String("OBS_TRACING_SAMPLING_RATIO"), 1.0),
	}

	if cfg.PricingTaxRateBPS < 1 || cfg.PricingTaxRateBPS > 10000 {
		return nil, fmt.Errorf("PRICING_TAX_RATE_BPS must be between 1 and 10000, got %d", cfg.PricingTaxRateBPS)
	}
	if cfg.CartSyncMaxAttempts < 1 {
		return nil, fmt.Errorf("CART_SYNC_MAX_ATTEMPTS must be at least 1, got %d", cfg.CartSyncMaxAttempts)
	}

	if cfg.MaxBodyBytes < 1 {
		return nil, fmt.Errorf("MAX_BODY_BYTES must be positive, got %d", cfg.MaxBodyBytes)
	}
	if _, err := common.ParseProxyTrust(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("TRUSTED_PROXIES: %w", err)
	}

	switch cfg.RateLimitBackend {
	case "off", "memory":
	case "redis":
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when RATE_LIMIT_BACKEND=redis")
		}
	default:
		return nil, fmt.Errorf("RATE_LIMIT_BACKEND must be off, memory or redis, got %q", cfg.RateLimitBackend)
	}

	return cfg, nil
}

// HTTPAddr returns the address the HTTP server should bind to.
func (c *Config) HTTPAddr() string {
	port := strings.TrimSpace(c.Port)
	if port == "" {
		port = "8080"
	}
	if strings.HasPrefix(port, ":") {
		return port
	}
	return ":" + port
}

func splitAndTrim(value string) []string {
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

func valueOrDefault(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

func parseDuration(value, fallback string) time.Duration {
	base := strings.TrimSpace(value)
	if base == "" {
		base = fallback
	}
	d, err := time.ParseDuration(base)
	if err != nil {
		d, _ = time.ParseDuration(fallback)
	}
	return d
}

func parseInt(value string, fallback int) int {
	v, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return v
}

func parseFloat(value string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return v
}

func parseBool(value string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "t", "true", "yes", "on":
		return true
	case "0", "f", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

// MustLoad behaves like Load but panics on error. Useful for command entrypoints.
func MustLoad() *Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// LoadForTests allows tests to override environment variables without touching the real environment.
func LoadForTests(env map[string]string) (*Config, error) {
	original := make(map[string]string, len(env))
	for key := range env {
		original[key] = os.Getenv(key)
		if err := setEnvVar(key, env[key]); err != nil {
			return nil, err
		}
	}
	cfg, err := Load()
	restoreErr := restoreEnv(original)
	if err != nil {
		return nil, err
	}
	return cfg, restoreErr
}

func setEnvVar(key, value string) error {
	if value == "" {
		return os.Unsetenv(key)
	}
	return os.Setenv(key, value)
}

func restoreEnv(values map[string]string) error {
	var errs []string
	for key, value := range values {
		if err := setEnvVar(key, value); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %v", key, err))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("restore env: %s", strings.Join(errs, "; "))
	}
	return nil
}
