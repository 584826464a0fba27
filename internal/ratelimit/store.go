package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"

	limiter "github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

// StoreLimiter adapts a ulule limiter store to Allower. The in-process memory
// store suits a single previewd instance.
type StoreLimiter struct {
	Store limiter.Store

	mu    sync.Mutex
	rates map[string]*limiter.Limiter
}

// NewMemoryLimiter returns a StoreLimiter over a fresh in-memory store.
func NewMemoryLimiter(prefix string) *StoreLimiter {
	return &StoreLimiter{Store: memory.NewStoreWithOptions(limiter.StoreOptions{
		Prefix:          prefix,
		CleanUpInterval: time.Minute,
	})}
}

// Allow consumes one token of the fixed window identified by key.
func (l *StoreLimiter) Allow(ctx context.Context, key string, window time.Duration, limit int) (Decision, error) {
	if l.Store == nil || limit <= 0 || window <= 0 {
		return Decision{Allowed: true, Remaining: limit, Reset: time.Now().Add(window)}, nil
	}
	lim, id := l.limiterFor(window, limit)
	res, err := lim.Get(ctx, id+":"+key)
	if err != nil {
		return Decision{Reset: time.Now().Add(window)}, fmt.Errorf("ratelimit store: %w", err)
	}
	return Decision{
		Allowed:   !res.Reached,
		Remaining: int(res.Remaining),
		Reset:     time.Unix(res.Reset, 0),
	}, nil
}

// limiterFor returns the limiter for one rate and the id namespacing its keys.
func (l *StoreLimiter) limiterFor(window time.Duration, limit int) (*limiter.Limiter, string) {
	id := fmt.Sprintf("%d/%s", limit, window)
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.rates == nil {
		l.rates = make(map[string]*limiter.Limiter)
	}
	lim, ok := l.rates[id]
	if !ok {
		lim = limiter.New(l.Store, limiter.Rate{Period: window, Limit: int64(limit)})
		l.rates[id] = lim
	}
	return lim, id
}
