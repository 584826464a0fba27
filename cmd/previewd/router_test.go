package main

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/common"
	"github.com/noah-isme/toko-storefront/internal/config"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/preview"
	"github.com/noah-isme/toko-storefront/internal/ratelimit"
	"github.com/noah-isme/toko-storefront/internal/security"
)

func testServer(t *testing.T, staticDir string) *httptest.Server {
	t.Helper()
	registry := prometheus.NewRegistry()
	srv := httptest.NewServer(newRouter(routerDeps{
		Logger:         zerolog.New(io.Discard),
		HTTPMetrics:    obs.NewHTTPMetrics("test", nil, registry),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		StaticDir:      staticDir,
		Cart:           &cart.Handler{},
		Preview:        &preview.Handler{},
		Settings:       config.ClientSettings{TaxBps: 500, CurrencySymbol: "₹"},
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestRouterServesPreviewEndpoints(t *testing.T) {
	srv := testServer(t, "")

	resp, err := http.Post(srv.URL+"/api/v1/preview/cart", "application/json",
		strings.NewReader(`{"rows":[{"id":"7","unitPrice":"100","weightMult":"0.5","qty":"3"}]}`))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var quote struct {
		Data struct {
			Subtotal string `json:"subtotal"`
			Tax      string `json:"tax"`
			Total    string `json:"total"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&quote))
	require.Equal(t, "150.00", quote.Data.Subtotal)
	require.Equal(t, "7.50", quote.Data.Tax)
	require.Equal(t, "157.50", quote.Data.Total)

	resp2, err := http.Get(srv.URL + "/api/v1/preview/price?unit=piece&label=6&base=2.5")
	require.NoError(t, err)
	defer resp2.Body.Close()
	require.Equal(t, http.StatusOK, resp2.StatusCode)

	resp3, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer resp3.Body.Close()
	body, err := io.ReadAll(resp3.Body)
	require.NoError(t, err)
	require.Contains(t, string(body), `test_http_requests_total{method="POST",route="/api/v1/preview/cart",status="200"} 1`)
}

func TestRouterServesClientSettings(t *testing.T) {
	srv := testServer(t, "")
	resp, err := http.Get(srv.URL + "/api/v1/preview/settings")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Data config.ClientSettings `json:"data"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, 500, body.Data.TaxBps)
	require.Equal(t, "₹", body.Data.CurrencySymbol)
}

func TestRouterHealthAndStatic(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "cart.js"), []byte("ok"), 0o600))
	srv := testServer(t, dir)

	resp, err := http.Get(srv.URL + "/health/live")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/static/cart.js")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "ok", string(body))
}

func TestStaticProbe(t *testing.T) {
	require.Empty(t, probes(&config.Config{}))

	file := filepath.Join(t.TempDir(), "bundle")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	p := probes(&config.Config{StaticDir: file})
	require.Error(t, p["static"](t.Context()))

	p = probes(&config.Config{StaticDir: filepath.Dir(file)})
	require.NoError(t, p["static"](t.Context()))
}

func TestRouterRateLimitsPreviewOnly(t *testing.T) {
	limit := &ratelimit.Handler{
		Limiter: ratelimit.NewMemoryLimiter("test"),
		Config:  ratelimit.Config{Key: ratelimit.ByClientIP("", common.ProxyTrust{}), Window: time.Minute, Max: 1},
	}
	srv := httptest.NewServer(newRouter(routerDeps{
		Logger:    zerolog.New(io.Discard),
		Cart:      &cart.Handler{},
		Preview:   &preview.Handler{},
		RateLimit: limit,
	}))
	defer srv.Close()

	target := srv.URL + "/api/v1/preview/price?base=1"
	resp, err := http.Get(target)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(target)
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusTooManyRequests, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/health/live")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestRouterRateLimitIgnoresSpoofedForwardedFor(t *testing.T) {
	limit := &ratelimit.Handler{
		Limiter: ratelimit.NewMemoryLimiter("test"),
		Config:  ratelimit.Config{Key: ratelimit.ByClientIP("preview:", common.ProxyTrust{}), Window: time.Minute, Max: 1},
	}
	srv := httptest.NewServer(newRouter(routerDeps{
		Logger:    zerolog.New(io.Discard),
		Cart:      &cart.Handler{},
		Preview:   &preview.Handler{},
		RateLimit: limit,
	}))
	defer srv.Close()

	codes := make([]int, 0, 2)
	for _, forwarded := range []string{"1.1.1.1", "2.2.2.2"} {
		req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/v1/preview/price?base=1", nil)
		require.NoError(t, err)
		req.Header.Set("X-Forwarded-For", forwarded)
		req.Header.Set("X-Real-IP", forwarded)
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		codes = append(codes, resp.StatusCode)
	}
	require.Equal(t, []int{http.StatusOK, http.StatusTooManyRequests}, codes)
}

func TestRouterRejectsOversizedCartBody(t *testing.T) {
	srv := httptest.NewServer(newRouter(routerDeps{
		Logger:    zerolog.New(io.Discard),
		Cart:      &cart.Handler{},
		Preview:   &preview.Handler{},
		BodyLimit: security.BodyLimit{Max: 256},
	}))
	defer srv.Close()

	row := `{"id":"7","unitPrice":"100","weightMult":"1","qty":"1"}`
	payload := `{"rows":[` + strings.TrimSuffix(strings.Repeat(row+",", 20), ",") + `]}`
	resp, err := http.Post(srv.URL+"/api/v1/preview/cart", "application/json", strings.NewReader(payload))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.Equal(t, "PAYLOAD_TOO_LARGE", body.Error.Code)

	small, err := http.Post(srv.URL+"/api/v1/preview/cart", "application/json", strings.NewReader(`{"rows":[`+row+`]}`))
	require.NoError(t, err)
	small.Body.Close()
	require.Equal(t, http.StatusOK, small.StatusCode)
}
