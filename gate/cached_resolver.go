package gate

import (
	"context"
	"sync"
	"time"
)

// Resolver loads a value by key.
type Resolver[K comparable, V any] interface {
	Resolve(ctx context.Context, key K) (V, error)
}

// ResolverFunc adapts a function to Resolver.
type ResolverFunc[K comparable, V any] func(ctx context.Context, key K) (V, error)

func (f ResolverFunc[K, V]) Resolve(ctx context.Context, key K) (V, error) { return f(ctx, key) }

// CachedResolver wraps a Resolver with a TTL cache so lookups made on every
// request (session principal, profile) do not hit the database each time.
// Errors are never cached.
type CachedResolver[K comparable, V any] struct {
	inner Resolver[K, V]
	ttl   time.Duration
	now   func() time.Time

	mu    sync.RWMutex
	cache map[K]cacheEntry[V]
}

type cacheEntry[V any] struct {
	value     V
	expiresAt time.Time
}

// NewCachedResolver caches values returned by inner for ttl.
func NewCachedResolver[K comparable, V any](inner Resolver[K, V], ttl time.Duration) *CachedResolver[K, V] {
	return &CachedResolver[K, V]{
		inner: inner,
		ttl:   ttl,
		now:   time.Now,
		cache: make(map[K]cacheEntry[V]),
	}
}

// Resolve returns the cached value for key or loads it from the inner resolver.
func (r *CachedResolver[K, V]) Resolve(ctx context.Context, key K) (V, error) {
	r.mu.RLock()
	entry, ok := r.cache[key]
	r.mu.RUnlock()
	if ok && r.now().Before(entry.expiresAt) {
		return entry.value, nil
	}

	value, err := r.inner.Resolve(ctx, key)
	if err != nil {
		var zero V
		return zero, err
	}

	r.mu.Lock()
	r.cache[key] = cacheEntry[V]{value: value, expiresAt: r.now().Add(r.ttl)}
	r.mu.Unlock()
	return value, nil
}
