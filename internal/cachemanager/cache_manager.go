// Package cachemanager provides a typed TTL cache.
package cachemanager

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/mskrss/background-pingu/internal/logging"
)

const (
	// DefaultExpiration is the TTL used when a caller has no preference.
	DefaultExpiration = 10 * time.Minute
	// DefaultCleanupInterval is how often expired items are purged.
	DefaultCleanupInterval = 20 * time.Minute
)

// CacheManager is a typed key/value cache with per-item expiration.
type CacheManager[K comparable, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
}

// InMemoryCacheManager implements CacheManager on top of go-cache.
type InMemoryCacheManager[K comparable, V any] struct {
	name  string
	cache *gocache.Cache
}

// Compile-time check that InMemoryCacheManager implements CacheManager.
var _ CacheManager[string, string] = (*InMemoryCacheManager[string, string])(nil)

// NewInMemoryCacheManager creates a named in-memory cache.
func NewInMemoryCacheManager[K comparable, V any](name string, defaultExpiration, cleanupInterval time.Duration) *InMemoryCacheManager[K, V] {
	return &InMemoryCacheManager[K, V]{
		name:  name,
		cache: gocache.New(defaultExpiration, cleanupInterval),
	}
}

func cacheKey[K comparable](key K) string {
	return fmt.Sprint(key)
}

// Get returns the value for key. A stored value of the wrong type is a miss.
func (m *InMemoryCacheManager[K, V]) Get(_ context.Context, key K) (V, bool) {
	var zero V
	raw, ok := m.cache.Get(cacheKey(key))
	if !ok {
		return zero, false
	}
	v, ok := raw.(V)
	if !ok {
		logging.Warn("cache value has unexpected type", "cache", m.name, "key", cacheKey(key))
		return zero, false
	}
	return v, true
}

// GetWithRefresh returns the value for key and extends its lifetime to ttl.
func (m *InMemoryCacheManager[K, V]) GetWithRefresh(ctx context.Context, key K, ttl time.Duration) (V, bool) {
	v, ok := m.Get(ctx, key)
	if ok {
		m.cache.Set(cacheKey(key), v, ttl)
	}
	return v, ok
}

// Set stores value under key for ttl.
func (m *InMemoryCacheManager[K, V]) Set(_ context.Context, key K, value V, ttl time.Duration) {
	m.cache.Set(cacheKey(key), value, ttl)
}
