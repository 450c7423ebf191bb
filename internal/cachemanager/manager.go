package cachemanager

import (
	"context"
	"time"
)

// CacheManager is a TTL keyed store.
type CacheManager[K ~string, V any] interface {
	Get(ctx context.Context, key K) (V, bool)
	Set(ctx context.Context, key K, value V, ttl time.Duration)
	Delete(ctx context.Context, keys ...K) error
	Items(ctx context.Context) map[K]V
	Flush(ctx context.Context) error
}
