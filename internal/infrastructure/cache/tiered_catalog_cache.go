package cache

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/storefront"
)

// TieredCatalogCache implements a two-tier caching strategy
// L1: Local in-memory cache (fast, but local to instance)
// L2: Redis cache (slower, but shared across instances)
// Reads fall through L1 to L2 and repopulate L1 on an L2 hit.
type TieredCatalogCache struct {
	l1Cache *InMemoryCatalogCache
	l2Cache *RedisCatalogCache
	config  storefront.CacheConfig
	logger  *zap.Logger
}

// TieredCatalogCacheOption is a functional option for configuring the cache
type TieredCatalogCacheOption func(*TieredCatalogCache)

// WithTieredConfig sets the cache configuration
func WithTieredConfig(config storefront.CacheConfig) TieredCatalogCacheOption {
	return func(c *TieredCatalogCache) {
		c.config = config
	}
}

// WithTieredLogger sets the logger for the cache
func WithTieredLogger(logger *zap.Logger) TieredCatalogCacheOption {
	return func(c *TieredCatalogCache) {
		c.logger = logger
	}
}

// NewTieredCatalogCache creates a new tiered catalog cache
func NewTieredCatalogCache(l1Cache *InMemoryCatalogCache, l2Cache *RedisCatalogCache, opts ...TieredCatalogCacheOption) *TieredCatalogCache {
	cache := &TieredCatalogCache{
		l1Cache: l1Cache,
		l2Cache: l2Cache,
		config:  storefront.DefaultCacheConfig(),
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// GetStore retrieves the store catalog (L1 -> L2)
func (c *TieredCatalogCache) GetStore(ctx context.Context) (*storefront.StoreCatalog, error) {
	catalog, err := c.l1Cache.GetStore(ctx)
	if err != nil {
		c.logger.Warn("L1 cache error for store catalog", zap.Error(err))
	}
	if catalog != nil {
		return catalog, nil
	}

	catalog, err = c.l2Cache.GetStore(ctx)
	if err != nil {
		return nil, err
	}
	if catalog != nil {
		if err := c.l1Cache.SetStore(ctx, catalog, c.config.L1TTL); err != nil {
			c.logger.Warn("failed to populate L1 store catalog", zap.Error(err))
		}
	}
	return catalog, nil
}

// SetStore stores the catalog in both tiers
func (c *TieredCatalogCache) SetStore(ctx context.Context, catalog *storefront.StoreCatalog, ttl time.Duration) error {
	if err := c.l2Cache.SetStore(ctx, catalog, ttl); err != nil {
		return err
	}
	if err := c.l1Cache.SetStore(ctx, catalog, c.config.L1TTL); err != nil {
		c.logger.Warn("failed to set L1 store catalog", zap.Error(err))
	}
	return nil
}

// GetProduct retrieves a product by lookup key (L1 -> L2)
func (c *TieredCatalogCache) GetProduct(ctx context.Context, key string) (*storefront.Product, error) {
	product, err := c.l1Cache.GetProduct(ctx, key)
	if err != nil {
		c.logger.Warn("L1 cache error for product", zap.String("key", key), zap.Error(err))
	}
	if product != nil {
		return product, nil
	}

	product, err = c.l2Cache.GetProduct(ctx, key)
	if err != nil {
		return nil, err
	}
	if product != nil {
		if err := c.l1Cache.SetProduct(ctx, key, product, c.config.L1TTL); err != nil {
			c.logger.Warn("failed to populate L1 product", zap.String("key", key), zap.Error(err))
		}
	}
	return product, nil
}

// SetProduct stores a product in both tiers
func (c *TieredCatalogCache) SetProduct(ctx context.Context, key string, product *storefront.Product, ttl time.Duration) error {
	if err := c.l2Cache.SetProduct(ctx, key, product, ttl); err != nil {
		return err
	}
	if err := c.l1Cache.SetProduct(ctx, key, product, c.config.L1TTL); err != nil {
		c.logger.Warn("failed to set L1 product", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// InvalidateAll drops every cached entry in both tiers
func (c *TieredCatalogCache) InvalidateAll(ctx context.Context) error {
	if err := c.l2Cache.InvalidateAll(ctx); err != nil {
		return err
	}
	if err := c.l1Cache.InvalidateAll(ctx); err != nil {
		c.logger.Warn("failed to invalidate L1 cache", zap.Error(err))
	}
	return nil
}

// GetCacheStats merges statistics from both tiers
func (c *TieredCatalogCache) GetCacheStats(ctx context.Context) storefront.CacheStats {
	l1 := c.l1Cache.GetCacheStats(ctx)
	l2 := c.l2Cache.GetCacheStats(ctx)

	totalHits := l1.L1Hits + l2.L2Hits
	totalMisses := l2.L2Misses // Only count final misses

	var hitRatio float64
	if total := totalHits + totalMisses; total > 0 {
		hitRatio = float64(totalHits) / float64(total)
	}

	return storefront.CacheStats{
		L1Hits:       l1.L1Hits,
		L1Misses:     l1.L1Misses,
		L2Hits:       l2.L2Hits,
		L2Misses:     l2.L2Misses,
		TotalHits:    totalHits,
		TotalMisses:  totalMisses,
		HitRatio:     hitRatio,
		CacheEntries: l1.CacheEntries,
	}
}

// Close releases both tiers
func (c *TieredCatalogCache) Close() error {
	var lastErr error
	if err := c.l2Cache.Close(); err != nil {
		lastErr = err
	}
	if err := c.l1Cache.Close(); err != nil {
		lastErr = err
	}
	return lastErr
}

// Ensure TieredCatalogCache implements CatalogCache
var _ storefront.CatalogCache = (*TieredCatalogCache)(nil)
