package cachemanager

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/zjrosen/shortcuts/internal/log"
)

const DefaultExpiration = time.Minute
const DefaultCleanupInterval = 10 * time.Second

// EvictFunc is called when an entry leaves the cache, either by expiry or by
// an explicit Delete. It runs on the goroutine that removed the entry, which
// for expiry is the cache janitor.
type EvictFunc[K ~string, V any] func(key K, value V)

// NewInMemoryCacheManager initializes the in-memory cache with a default cleanup interval
func NewInMemoryCacheManager[K ~string, V any](useCase string, defaultExpiration, cleanupInterval time.Duration) *InMemoryCacheManager[K, V] {
	return &InMemoryCacheManager[K, V]{
		useCase: useCase,
		cache:   gocache.New(defaultExpiration, cleanupInterval),
	}
}

// InMemoryCacheManager is the concrete implementation of the CacheManager interface
type InMemoryCacheManager[K ~string, V any] struct {
	useCase string
	cache   *gocache.Cache
}

// OnEvict registers fn for every removal. Must be called before the cache is used.
func (c *InMemoryCacheManager[K, V]) OnEvict(fn EvictFunc[K, V]) {
	c.cache.OnEvicted(func(key string, value interface{}) {
		v, ok := value.(V)
		if !ok {
			log.Error(log.CatCache, "wrong type assertion on eviction", "cache", c.useCase, "key", key)
			return
		}
		log.Debug(log.CatCache, "cache eviction", "cache", c.useCase, "key", key)
		fn(K(key), v)
	})
}

// Get retrieves an item from the cache by its key
func (c *InMemoryCacheManager[K, V]) Get(ctx context.Context, key K) (V, bool) {
	var zeroValue V
	value, found := c.cache.Get(string(key))
	if !found {
		return zeroValue, false
	}

	// Type assertion check to ensure the type is correct
	v, ok := value.(V)
	if !ok {
		log.Error(log.CatCache, "wrong type assertion when getting value", "cache", c.useCase, "key", key)
		return zeroValue, false
	}

	log.Debug(log.CatCache, "cache hit", "cache", c.useCase, "key", key)
	return v, true
}

// Set sets a value in the cache with a key and TTL
func (c *InMemoryCacheManager[K, V]) Set(ctx context.Context, key K, value V, ttl time.Duration) {
	c.cache.Set(string(key), value, ttl)
}

// Delete removes values by key. Registered eviction callbacks fire for each
// key that was present.
func (c *InMemoryCacheManager[K, V]) Delete(ctx context.Context, keys ...K) error {
	if len(keys) == 0 {
		return nil
	}

	for _, key := range keys {
		c.cache.Delete(string(key))
	}
	return nil
}

// Items returns the unexpired entries.
func (c *InMemoryCacheManager[K, V]) Items(ctx context.Context) map[K]V {
	items := c.cache.Items()
	out := make(map[K]V, len(items))
	for k, item := range items {
		v, ok := item.Object.(V)
		if !ok {
			continue
		}
		out[K(k)] = v
	}
	return out
}

// Count returns the number of entries, including expired ones not yet cleaned up.
func (c *InMemoryCacheManager[K, V]) Count() int {
	return c.cache.ItemCount()
}

// Flush drops every entry without running eviction callbacks.
func (c *InMemoryCacheManager[K, V]) Flush(ctx context.Context) error {
	c.cache.Flush()
	return nil
}
