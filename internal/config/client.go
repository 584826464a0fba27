package config

import "time"

// ClientSettings is the subset of configuration the browser controllers need.
// previewd serves it so page and server price with the same figures.
type ClientSettings struct {
	TaxBps          int              `json:"taxBps"`
	CurrencySymbol  string           `json:"currencySymbol"`
	CartSyncBaseURL string           `json:"cartSyncBaseURL,omitempty"`
	CartSync        CartSyncSettings `json:"cartSync"`
}

// CartSyncSettings mirrors the CART_SYNC_* keys in wire-friendly units.
type CartSyncSettings struct {
	TimeoutMS   int64 `json:"timeoutMs"`
	MaxAttempts int   `json:"maxAttempts"`
	BackoffMS   int64 `json:"backoffMs"`
	Breaker     bool  `json:"breaker"`
}

// Timeout is the per-attempt sync timeout.
func (s CartSyncSettings) Timeout() time.Duration {
	return time.Duration(s.TimeoutMS) * time.Millisecond
}

// Backoff is the base delay between sync attempts.
func (s CartSyncSettings) Backoff() time.Duration {
	return time.Duration(s.BackoffMS) * time.Millisecond
}

// ClientSettings projects the configuration for the browser.
func (c *Config) ClientSettings() ClientSettings {
	return ClientSettings{
		TaxBps:          c.PricingTaxRateBPS,
		CurrencySymbol:  c.CurrencySymbol,
		CartSyncBaseURL: c.CartSyncBaseURL,
		CartSync: CartSyncSettings{
			TimeoutMS:   c.CartSyncTimeout.Milliseconds(),
			MaxAttempts: c.CartSyncMaxAttempts,
			BackoffMS:   c.CartSyncBackoff.Milliseconds(),
			Breaker:     c.CartSyncBreaker,
		},
	}
}
