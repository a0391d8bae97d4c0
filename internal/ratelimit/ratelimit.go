// Package ratelimit throttles failed logins per email.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/psycare/psycare/internal/config"
)

// Limiter counts failures for a key inside a fixed window.
type Limiter interface {
	// Blocked reports whether key reached the failure limit.
	Blocked(ctx context.Context, key string) (bool, error)
	// Fail records one failure for key.
	Fail(ctx context.Context, key string) error
	// Reset forgets key, typically after a successful login.
	Reset(ctx context.Context, key string) error
}

// LoginKey is the throttle key for an email.
func LoginKey(email string) string { return "login:" + email }

// New returns a Redis limiter when enabled, otherwise an in-memory one.
func New(login config.LoginConfig, rc config.RedisConfig) Limiter {
	if rc.Enabled {
		client := redis.NewClient(&redis.Options{Addr: rc.Addr, Password: rc.Password, DB: rc.DB})
		return NewRedisLimiter(client, login.MaxAttempts, login.Window())
	}
	return NewMemoryLimiter(login.MaxAttempts, login.Window())
}

type window struct {
	count   int
	expires time.Time
}

// MemoryLimiter keeps counters in process memory.
type MemoryLimiter struct {
	max    int
	window time.Duration
	now    func() time.Time

	mu        sync.Mutex
	entries   map[string]window
	nextSweep time.Time
}

func NewMemoryLimiter(max int, win time.Duration) *MemoryLimiter {
	return &MemoryLimiter{max: max, window: win, now: time.Now, entries: make(map[string]window)}
}

func (m *MemoryLimiter) Blocked(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	w, ok := m.current(key)
	return ok && w.count >= m.max, nil
}

func (m *MemoryLimiter) Fail(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sweep()
	w, ok := m.current(key)
	if !ok {
		w = window{expires: m.now().Add(m.window)}
	}
	w.count++
	m.entries[key] = w
	return nil
}

func (m *MemoryLimiter) Reset(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)
	return nil
}

// sweep drops every expired window, at most once per window length, so keys
// that are never looked up again do not accumulate. Callers hold mu.
func (m *MemoryLimiter) sweep() {
	now := m.now()
	if now.Before(m.nextSweep) {
		return
	}
	for k, w := range m.entries {
		if !now.Before(w.expires) {
			delete(m.entries, k)
		}
	}
	m.nextSweep = now.Add(m.window)
}

// current returns the live window for key, dropping an expired one.
// Callers hold mu.
func (m *MemoryLimiter) current(key string) (window, bool) {
	w, ok := m.entries[key]
	if !ok {
		return window{}, false
	}
	if !m.now().Before(w.expires) {
		delete(m.entries, key)
		return window{}, false
	}
	return w, true
}

// RedisLimiter shares counters across instances. The window starts at the
// first failure and expires with the key.
type RedisLimiter struct {
	client *redis.Client
	max    int
	window time.Duration
}

func NewRedisLimiter(client *redis.Client, max int, window time.Duration) *RedisLimiter {
	return &RedisLimiter{client: client, max: max, window: window}
}

func (r *RedisLimiter) Blocked(ctx context.Context, key string) (bool, error) {
	n, err := r.client.Get(ctx, key).Int()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return n >= r.max, nil
}

func (r *RedisLimiter) Fail(ctx context.Context, key string) error {
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return err
	}
	if n == 1 {
		return r.client.Expire(ctx, key, r.window).Err()
	}
	return nil
}

func (r *RedisLimiter) Reset(ctx context.Context, key string) error {
	return r.client.Del(ctx, key).Err()
}

// Close releases the Redis connection pool.
func (r *RedisLimiter) Close() error { return r.client.Close() }
