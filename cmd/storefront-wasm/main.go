//go:build js && wasm

// Command storefront-wasm drives the cart and product detail pages in the browser.
//
// Settings come from previewd's /api/v1/preview/settings and may be overridden
// per page through window.tokoStorefront:
//
//	{cartSyncBaseURL: "https://shop.example", taxBps: 500, currencySymbol: "₹", logLevel: "info"}
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"syscall/js"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/toko-storefront/internal/cart"
	"github.com/noah-isme/toko-storefront/internal/cartsync"
	"github.com/noah-isme/toko-storefront/internal/config"
	"github.com/noah-isme/toko-storefront/internal/obs"
	"github.com/noah-isme/toko-storefront/internal/preview"
	"github.com/noah-isme/toko-storefront/internal/resilience"
)

const settingsPath = "/api/v1/preview/settings"

type settings struct {
	config.ClientSettings
	LogLevel string
}

func fetchSettings(ctx context.Context, client *http.Client, origin string) (config.ClientSettings, error) {
	var body struct {
		Data config.ClientSettings `json:"data"`
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, origin+settingsPath, nil)
	if err != nil {
		return body.Data, err
	}
	resp, err := client.Do(req)
	if err != nil {
		return body.Data, err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		return body.Data, fmt.Errorf("settings: %s", resp.Status)
	}
	err = json.NewDecoder(resp.Body).Decode(&body)
	return body.Data, err
}

// overrides applies window.tokoStorefront on top of s.
func overrides(window js.Value, s *settings) {
	cfg := window.Get("tokoStorefront")
	if !present(cfg) {
		return
	}
	if v := str(cfg.Get("cartSyncBaseURL")); strings.TrimSpace(v) != "" {
		s.CartSyncBaseURL = v
	}
	if v := cfg.Get("taxBps"); present(v) && v.Type() == js.TypeNumber {
		s.TaxBps = v.Int()
	}
	if v := str(cfg.Get("currencySymbol")); v != "" {
		s.CurrencySymbol = v
	}
	s.LogLevel = str(cfg.Get("logLevel"))
}

func main() {
	window := js.Global()
	doc := window.Get("document")
	origin := str(window.Get("location").Get("origin"))
	// plain fetch transport; spans are not exported from the browser
	client := &http.Client{}

	s := settings{}
	served, fetchErr := fetchSettings(context.Background(), client, origin)
	if fetchErr == nil {
		s.ClientSettings = served
	}
	overrides(window, &s)
	if s.CartSyncBaseURL == "" {
		s.CartSyncBaseURL = origin
	}

	logger := obs.NewLogger("console", s.LogLevel).With().Str("component", "storefront").Logger()
	if fetchErr != nil {
		logger.Warn().Err(fetchErr).Msg("using default storefront settings")
	}

	if len(queryAll(doc, ".quantity")) > 0 {
		bindCart(doc, s, client, &logger)
	}
	if present(doc.Call("getElementById", "weightSelector")) {
		bindPreview(doc, s, &logger)
	}

	select {}
}

func bindCart(doc js.Value, s settings, client *http.Client, logger *zerolog.Logger) {
	var breaker *resilience.Breaker
	if s.CartSync.Breaker {
		breaker = resilience.NewBreaker(5, 0.5, 30*time.Second).WithTarget("cart_sync").WithLogger(*logger)
	}
	syncer := cartsync.New(cartsync.Config{
		BaseURL:     s.CartSyncBaseURL,
		Timeout:     s.CartSync.Timeout(),
		MaxAttempts: s.CartSync.MaxAttempts,
		Backoff:     s.CartSync.Backoff(),
		Breaker:     breaker,
		HTTPClient:  client,
		Logger:      logger,
	})
	cart.Bind(cartPage{doc: doc}, cart.Options{
		Syncer: syncer,
		TaxBps: s.TaxBps,
		Logger: logger,
	})
	logger.Debug().Msg("cart bound")
}

func bindPreview(doc js.Value, s settings, logger *zerolog.Logger) {
	page, err := newPreviewPage(doc)
	if err != nil {
		logger.Error().Err(err).Msg("product detail markup incomplete")
		return
	}
	if _, err := preview.Bind(page, preview.Options{CurrencySymbol: s.CurrencySymbol, Logger: logger}); err != nil {
		logger.Error().Err(err).Msg("bind price preview")
		return
	}
	logger.Debug().Msg("price preview bound")
}
