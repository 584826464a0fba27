// Package cartsync tells the storefront server about quantity changes of
// persisted cart items.
package cartsync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/noah-isme/toko-storefront/internal/resilience"
)

// ErrUnexpectedBody is returned when the update response is not a JSON object.
var ErrUnexpectedBody = errors.New("cartsync: response is not a json object")

// ErrStatus is returned for non-2xx responses.
var ErrStatus = errors.New("cartsync: unexpected status")

const maxBodyBytes = 1 << 20

// Config configures a Client.
type Config struct {
	// BaseURL is prefixed to the update path. Empty means a same-origin relative path.
	BaseURL     string
	Timeout     time.Duration
	MaxAttempts int
	Backoff     time.Duration
	// Breaker is optional.
	Breaker *resilience.Breaker
	// HTTPClient overrides the default instrumented client.
	HTTPClient *http.Client
	Logger     *zerolog.Logger
	Metrics    *Metrics
	// OnFailure is called after a failed asynchronous sync. The page is not told.
	OnFailure func(rowID string, qty int, err error)
}

// Client issues GET {base}/update-cart-qty/{rowID}/{qty}/ requests.
type Client struct {
	base      string
	http      resilience.HTTPClient
	logger    *zerolog.Logger
	metrics   *Metrics
	onFailure func(rowID string, qty int, err error)
	inflight  sync.WaitGroup
}

var nopLogger = zerolog.Nop()

// New constructs a Client.
func New(cfg Config) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	logger := cfg.Logger
	if logger == nil {
		logger = &nopLogger
	}
	return &Client{
		base: strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		http: resilience.HTTPClient{
			Client:      httpClient,
			Breaker:     cfg.Breaker,
			Target:      "cart_sync",
			MaxAttempts: cfg.MaxAttempts,
			BaseBackoff: cfg.Backoff,
			Jitter:      0.2,
			Timeout:     timeout,
		},
		logger:    logger,
		metrics:   cfg.Metrics,
		onFailure: cfg.OnFailure,
	}
}

// Path is the update path for rowID and qty.
func Path(rowID string, qty int) string {
	return "/update-cart-qty/" + url.PathEscape(rowID) + "/" + strconv.Itoa(qty) + "/"
}

// Update sends qty for rowID and returns the decoded response object.
func (c *Client) Update(ctx context.Context, rowID string, qty int) (map[string]any, error) {
	resp, err := c.http.Get(ctx, c.base+Path(rowID, qty))
	if err != nil {
		return nil, fmt.Errorf("update cart qty: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
		return nil, fmt.Errorf("%w: %s", ErrStatus, resp.Status)
	}
	var data map[string]any
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBodyBytes)).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnexpectedBody, err)
	}
	if data == nil {
		return nil, ErrUnexpectedBody
	}
	return data, nil
}

// SyncQuantity runs Update in the background and only logs the outcome.
// It never blocks and never reports back to the caller.
func (c *Client) SyncQuantity(ctx context.Context, rowID string, qty int) {
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		data, err := c.Update(context.WithoutCancel(ctx), rowID, qty)
		if err != nil {
			c.metrics.observe(outcomeFailure)
			c.logger.Warn().Err(err).Str("row_id", rowID).Int("qty", qty).Msg("cart sync failed")
			if c.onFailure != nil {
				c.onFailure(rowID, qty, err)
			}
			return
		}
		c.metrics.observe(outcomeSuccess)
		c.logger.Info().Str("row_id", rowID).Int("qty", qty).Interface("data", data).Msg("updated cart")
	}()
}

// Wait blocks until every sync started so far has finished.
func (c *Client) Wait() {
	c.inflight.Wait()
}
