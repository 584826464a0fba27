package resilience

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"
)

// HTTPClient issues idempotent requests with a per-attempt timeout, optional
// retries with exponential backoff and an optional circuit breaker.
// The zero MaxAttempts means a single attempt.
type HTTPClient struct {
	Client      *http.Client
	Breaker     *Breaker
	Target      string
	MaxAttempts int
	BaseBackoff time.Duration
	Jitter      float64
	Timeout     time.Duration
}

// StatusError reports a response the server answered with a 5xx status.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("resilience: upstream status %s", e.Status)
}

// Get performs a GET request against url.
func (cl HTTPClient) Get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return cl.Do(ctx, req)
}

// Do executes a bodiless request. Transport errors and 5xx responses are
// retried up to MaxAttempts; 4xx responses are returned to the caller as is.
func (cl HTTPClient) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if cl.Client == nil {
		return nil, errors.New("resilience: http client not configured")
	}
	if req.Body != nil && req.Body != http.NoBody {
		return nil, errors.New("resilience: request bodies are not replayable")
	}
	attempts := cl.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if cl.Breaker != nil && !cl.Breaker.Allow(ctx) {
			cl.record("rejected")
			lastErr = ErrOpenCircuit
			break
		}
		resp, err := cl.doOnce(ctx, req)
		switch {
		case err == nil && resp.StatusCode < http.StatusInternalServerError:
			cl.report(ctx, true)
			cl.record("success")
			return resp, nil
		case err == nil:
			lastErr = &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
			_ = resp.Body.Close()
		default:
			lastErr = err
		}
		cl.report(ctx, false)
		cl.record("failure")
		if attempt == attempts || ctx.Err() != nil {
			break
		}
		timer := time.NewTimer(Backoff(cl.BaseBackoff, attempt, cl.Jitter))
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	return nil, lastErr
}

func (cl HTTPClient) doOnce(ctx context.Context, req *http.Request) (*http.Response, error) {
	if cl.Timeout <= 0 {
		return cl.Client.Do(req.Clone(ctx))
	}
	callCtx, cancel := context.WithTimeout(ctx, cl.Timeout)
	resp, err := cl.Client.Do(req.Clone(callCtx))
	if err != nil {
		cancel()
		return nil, err
	}
	resp.Body = cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

func (cl HTTPClient) report(ctx context.Context, ok bool) {
	if cl.Breaker != nil {
		cl.Breaker.Report(ctx, ok)
	}
}

func (cl HTTPClient) record(result string) {
	target := cl.Target
	if target == "" {
		target = "default"
	}
	RequestAttempts.WithLabelValues(target, result).Inc()
}

// Backoff returns an exponential backoff duration for the provided attempt.
// Jitter is expressed as a fraction (e.g. 0.2 == 20%).
func Backoff(base time.Duration, attempt int, jitterPct float64) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if base <= 0 {
		base = 100 * time.Millisecond
	}
	d := base * time.Duration(1<<uint(attempt-1))
	if jitterPct <= 0 {
		return d
	}
	delta := (rand.Float64()*2 - 1) * float64(d) * jitterPct
	return d + time.Duration(delta)
}
