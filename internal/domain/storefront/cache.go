package storefront

import (
	"context"
	"time"
)

// CatalogCache is the port for cached catalog data. A miss is reported as
// (nil, nil); errors are reserved for the cache itself failing, so callers
// can always fall through to the platform.
type CatalogCache interface {
	// GetStore retrieves the cached store catalog
	GetStore(ctx context.Context) (*StoreCatalog, error)
	// SetStore stores the store catalog with the given TTL
	SetStore(ctx context.Context, catalog *StoreCatalog, ttl time.Duration) error

	// GetProduct retrieves a cached product by the lookup key it was stored
	// under (ID or slug, lowercased)
	GetProduct(ctx context.Context, key string) (*Product, error)
	// SetProduct stores a product under the given lookup key
	SetProduct(ctx context.Context, key string, product *Product, ttl time.Duration) error

	// InvalidateAll drops every cached entry
	InvalidateAll(ctx context.Context) error

	// GetCacheStats returns statistics about cache hits and misses
	GetCacheStats(ctx context.Context) CacheStats

	// Close releases any resources held by the cache
	Close() error
}

// CacheStats holds cache performance statistics
type CacheStats struct {
	L1Hits       int64   `json:"l1_hits"`
	L1Misses     int64   `json:"l1_misses"`
	L2Hits       int64   `json:"l2_hits"`
	L2Misses     int64   `json:"l2_misses"`
	TotalHits    int64   `json:"total_hits"`
	TotalMisses  int64   `json:"total_misses"`
	HitRatio     float64 `json:"hit_ratio"`
	CacheEntries int64   `json:"cache_entries"`
}

// CacheConfig holds configuration for the catalog cache
type CacheConfig struct {
	// StoreTTL is the time-to-live for the cached store catalog (default: 5m)
	StoreTTL time.Duration
	// ProductTTL is the time-to-live for cached products (default: 15m)
	ProductTTL time.Duration
	// L1TTL is the time-to-live for L1 (local) entries when a Redis tier
	// backs the cache (default: 30s)
	L1TTL time.Duration
}

// DefaultCacheConfig returns the default cache configuration
func DefaultCacheConfig() CacheConfig {
	return CacheConfig{
		StoreTTL:   5 * time.Minute,
		ProductTTL: 15 * time.Minute,
		L1TTL:      30 * time.Second,
	}
}
