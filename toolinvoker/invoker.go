package toolinvoker

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// EndpointConfig tunes retry, circuit-breaker, and cache behavior for one
// endpoint. Zero values fall back to the spec's documented defaults.
type EndpointConfig struct {
	Retry             RetryConfig
	BreakerThreshold  int
	BreakerResetAfter time.Duration
	CacheTTL          time.Duration
}

// DefaultEndpointConfig returns the spec's defaults: 3 retries, breaker
// threshold 5, breaker reset 60s, no caching.
func DefaultEndpointConfig() EndpointConfig {
	return EndpointConfig{
		Retry:             DefaultRetryConfig(),
		BreakerThreshold:  5,
		BreakerResetAfter: 60 * time.Second,
	}
}

// Invoker owns one circuit breaker per endpoint and a shared cache across
// all endpoints it serves.
type Invoker struct {
	mu       sync.Mutex
	breakers map[string]*Breaker
	cache    *Cache
}

// New constructs an empty Invoker.
func New() *Invoker {
	return &Invoker{breakers: make(map[string]*Breaker), cache: NewCache()}
}

func (inv *Invoker) breakerFor(endpoint string, cfg EndpointConfig) *Breaker {
	inv.mu.Lock()
	defer inv.mu.Unlock()

	b, ok := inv.breakers[endpoint]
	if !ok {
		b = NewBreaker(cfg.BreakerThreshold, cfg.BreakerResetAfter)
		inv.breakers[endpoint] = b
	}
	return b
}

// Invoke runs call under endpoint's retry, circuit breaker, and cache
// policy. args is used only to build the cache key, not passed to call.
func Invoke[T any](ctx context.Context, inv *Invoker, endpoint string, args any, cfg EndpointConfig, call func(ctx context.Context) (T, error)) (T, error) {
	var zero T

	key := Key(endpoint, args)
	if cfg.CacheTTL > 0 {
		if cached, ok := inv.cache.Get(key); ok {
			if value, ok := cached.(T); ok {
				return value, nil
			}
		}
	}

	breaker := inv.breakerFor(endpoint, cfg)
	if !breaker.Allow() {
		return zero, fmt.Errorf("%w: %q", ErrCircuitOpen, endpoint)
	}

	value, err := retryCall(ctx, cfg.Retry, call)
	if err != nil {
		breaker.RecordFailure()
		return zero, err
	}
	breaker.RecordSuccess()

	if cfg.CacheTTL > 0 {
		inv.cache.Set(key, value, cfg.CacheTTL)
	}

	return value, nil
}

// InvokeWithFallback runs primary through Invoke; on failure it invokes
// secondary (tracked under endpoint+":fallback" so it gets its own breaker)
// and, if both returned partial data, merges them via merge rather than
// discarding the primary's partial result. merge may be nil, in which case
// the fallback's result replaces the primary's entirely.
func InvokeWithFallback[T any](ctx context.Context, inv *Invoker, endpoint string, args any, cfg EndpointConfig, primary, secondary func(ctx context.Context) (T, error), merge func(primary, fallback T) T) (T, error) {
	primaryValue, primaryErr := Invoke(ctx, inv, endpoint, args, cfg, primary)
	if primaryErr == nil {
		return primaryValue, nil
	}

	if secondary == nil {
		return primaryValue, primaryErr
	}

	fallbackValue, fallbackErr := Invoke(ctx, inv, endpoint+":fallback", args, cfg, secondary)
	if fallbackErr != nil {
		return primaryValue, primaryErr
	}

	if merge != nil {
		return merge(primaryValue, fallbackValue), nil
	}
	return fallbackValue, nil
}
