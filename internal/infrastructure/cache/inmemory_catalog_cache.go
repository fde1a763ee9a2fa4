package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/storefront"
)

// Constants for in-memory cache configuration
const (
	defaultCleanupInterval = 30 * time.Second

	storeCacheKey    = "store"
	productKeyPrefix = "product:"
)

// InMemoryCatalogCache implements CatalogCache using in-memory storage.
// It serves as the only tier in single-instance deployments and as L1 in
// front of Redis.
type InMemoryCatalogCache struct {
	entries sync.Map // map[string]*cacheEntry[any]
	config  storefront.CacheConfig
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	// Stats for monitoring
	hits   int64
	misses int64
}

// cacheEntry wraps a cached value with expiration time
type cacheEntry struct {
	value     any
	expiresAt time.Time
}

// isExpired checks if the cache entry has expired
func (e *cacheEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryCatalogCacheOption is a functional option for configuring the cache
type InMemoryCatalogCacheOption func(*InMemoryCatalogCache)

// WithInMemoryConfig sets the cache configuration
func WithInMemoryConfig(config storefront.CacheConfig) InMemoryCatalogCacheOption {
	return func(c *InMemoryCatalogCache) {
		c.config = config
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryCatalogCacheOption {
	return func(c *InMemoryCatalogCache) {
		c.logger = logger
	}
}

// NewInMemoryCatalogCache creates a new in-memory catalog cache
func NewInMemoryCatalogCache(opts ...InMemoryCatalogCacheOption) *InMemoryCatalogCache {
	cache := &InMemoryCatalogCache{
		config: storefront.DefaultCacheConfig(),
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

// productCacheKey generates the cache key for a product lookup key
func productCacheKey(key string) string {
	return productKeyPrefix + strings.ToLower(key)
}

// GetStore retrieves the cached store catalog
func (c *InMemoryCatalogCache) GetStore(ctx context.Context) (*storefront.StoreCatalog, error) {
	if value, ok := c.entries.Load(storeCacheKey); ok {
		entry := value.(*cacheEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("cache hit for store catalog")
			return entry.value.(*storefront.StoreCatalog), nil
		}
		c.entries.Delete(storeCacheKey)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("cache miss for store catalog")
	return nil, nil
}

// SetStore stores the store catalog with the given TTL
func (c *InMemoryCatalogCache) SetStore(ctx context.Context, catalog *storefront.StoreCatalog, ttl time.Duration) error {
	if catalog == nil {
		return nil
	}
	if ttl == 0 {
		ttl = c.config.StoreTTL
	}

	c.entries.Store(storeCacheKey, &cacheEntry{
		value:     catalog,
		expiresAt: time.Now().Add(ttl),
	})
	c.logger.Debug("cached store catalog", zap.Duration("ttl", ttl))
	return nil
}

// GetProduct retrieves a cached product by lookup key
func (c *InMemoryCatalogCache) GetProduct(ctx context.Context, key string) (*storefront.Product, error) {
	cacheKey := productCacheKey(key)

	if value, ok := c.entries.Load(cacheKey); ok {
		entry := value.(*cacheEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			c.logger.Debug("cache hit for product", zap.String("key", key))
			return entry.value.(*storefront.Product), nil
		}
		c.entries.Delete(cacheKey)
	}

	atomic.AddInt64(&c.misses, 1)
	c.logger.Debug("cache miss for product", zap.String("key", key))
	return nil, nil
}

// SetProduct stores a product under the given lookup key
func (c *InMemoryCatalogCache) SetProduct(ctx context.Context, key string, product *storefront.Product, ttl time.Duration) error {
	if product == nil {
		return nil
	}
	if ttl == 0 {
		ttl = c.config.ProductTTL
	}

	c.entries.Store(productCacheKey(key), &cacheEntry{
		value:     product,
		expiresAt: time.Now().Add(ttl),
	})
	c.logger.Debug("cached product",
		zap.String("key", key),
		zap.Duration("ttl", ttl))
	return nil
}

// InvalidateAll drops every cached entry
func (c *InMemoryCatalogCache) InvalidateAll(ctx context.Context) error {
	c.entries.Range(func(key, _ any) bool {
		c.entries.Delete(key)
		return true
	})
	c.logger.Debug("invalidated catalog cache")
	return nil
}

// GetCacheStats returns statistics about cache hits and misses
func (c *InMemoryCatalogCache) GetCacheStats(ctx context.Context) storefront.CacheStats {
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)

	var hitRatio float64
	if total := hits + misses; total > 0 {
		hitRatio = float64(hits) / float64(total)
	}

	return storefront.CacheStats{
		L1Hits:       hits,
		L1Misses:     misses,
		TotalHits:    hits,
		TotalMisses:  misses,
		HitRatio:     hitRatio,
		CacheEntries: c.count(),
	}
}

// count returns the number of live entries
func (c *InMemoryCatalogCache) count() int64 {
	var n int64
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryCatalogCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// cleanupExpired periodically removes expired entries
func (c *InMemoryCatalogCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.entries.Range(func(key, value any) bool {
				if value.(*cacheEntry).isExpired() {
					c.entries.Delete(key)
				}
				return true
			})
		}
	}
}

// Ensure InMemoryCatalogCache implements CatalogCache
var _ storefront.CatalogCache = (*InMemoryCatalogCache)(nil)
