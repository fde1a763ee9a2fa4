package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/storefront"
)

// Redis key layout for catalog data
const (
	redisStoreKey         = "storefront:catalog:store"
	redisProductKeyPrefix = "storefront:catalog:product:"
)

// RedisCatalogCache implements CatalogCache backed by Redis. Entries are
// stored as JSON so multiple instances can share one warm cache.
type RedisCatalogCache struct {
	client *redis.Client
	config storefront.CacheConfig
	logger *zap.Logger

	// Stats for monitoring
	hits   int64
	misses int64
}

// RedisCatalogCacheOption is a functional option for configuring the cache
type RedisCatalogCacheOption func(*RedisCatalogCache)

// WithRedisConfig sets the cache configuration
func WithRedisConfig(config storefront.CacheConfig) RedisCatalogCacheOption {
	return func(c *RedisCatalogCache) {
		c.config = config
	}
}

// WithRedisLogger sets the logger for the cache
func WithRedisLogger(logger *zap.Logger) RedisCatalogCacheOption {
	return func(c *RedisCatalogCache) {
		c.logger = logger
	}
}

// NewRedisCatalogCache creates a new Redis-backed catalog cache
func NewRedisCatalogCache(client *redis.Client, opts ...RedisCatalogCacheOption) *RedisCatalogCache {
	cache := &RedisCatalogCache{
		client: client,
		config: storefront.DefaultCacheConfig(),
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

func redisProductKey(key string) string {
	return redisProductKeyPrefix + strings.ToLower(key)
}

// GetStore retrieves the cached store catalog
func (c *RedisCatalogCache) GetStore(ctx context.Context) (*storefront.StoreCatalog, error) {
	var catalog storefront.StoreCatalog
	ok, err := c.get(ctx, redisStoreKey, &catalog)
	if err != nil || !ok {
		return nil, err
	}
	return &catalog, nil
}

// SetStore stores the store catalog with the given TTL
func (c *RedisCatalogCache) SetStore(ctx context.Context, catalog *storefront.StoreCatalog, ttl time.Duration) error {
	if catalog == nil {
		return nil
	}
	if ttl == 0 {
		ttl = c.config.StoreTTL
	}
	return c.set(ctx, redisStoreKey, catalog, ttl)
}

// GetProduct retrieves a cached product by lookup key
func (c *RedisCatalogCache) GetProduct(ctx context.Context, key string) (*storefront.Product, error) {
	var product storefront.Product
	ok, err := c.get(ctx, redisProductKey(key), &product)
	if err != nil || !ok {
		return nil, err
	}
	return &product, nil
}

// SetProduct stores a product under the given lookup key
func (c *RedisCatalogCache) SetProduct(ctx context.Context, key string, product *storefront.Product, ttl time.Duration) error {
	if product == nil {
		return nil
	}
	if ttl == 0 {
		ttl = c.config.ProductTTL
	}
	return c.set(ctx, redisProductKey(key), product, ttl)
}

// InvalidateAll drops every catalog key this cache owns
func (c *RedisCatalogCache) InvalidateAll(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, "storefront:catalog:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis catalog cache: scan failed: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis catalog cache: delete failed: %w", err)
	}
	c.logger.Debug("invalidated redis catalog cache", zap.Int("keys", len(keys)))
	return nil
}

// GetCacheStats returns statistics about cache hits and misses
func (c *RedisCatalogCache) GetCacheStats(ctx context.Context) storefront.CacheStats {
	hits := atomic.LoadInt64(&c.hits)
	misses := atomic.LoadInt64(&c.misses)

	var hitRatio float64
	if total := hits + misses; total > 0 {
		hitRatio = float64(hits) / float64(total)
	}

	return storefront.CacheStats{
		L2Hits:      hits,
		L2Misses:    misses,
		TotalHits:   hits,
		TotalMisses: misses,
		HitRatio:    hitRatio,
	}
}

// Close releases the underlying Redis connection
func (c *RedisCatalogCache) Close() error {
	return c.client.Close()
}

func (c *RedisCatalogCache) get(ctx context.Context, key string, dest any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		atomic.AddInt64(&c.misses, 1)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis catalog cache: get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dest); err != nil {
		// A corrupt entry is treated as a miss so the caller refetches
		c.logger.Warn("dropping corrupt cache entry",
			zap.String("key", key),
			zap.Error(err))
		c.client.Del(ctx, key)
		atomic.AddInt64(&c.misses, 1)
		return false, nil
	}
	atomic.AddInt64(&c.hits, 1)
	return true, nil
}

func (c *RedisCatalogCache) set(ctx context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("redis catalog cache: marshal %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis catalog cache: set %s: %w", key, err)
	}
	return nil
}

// Ensure RedisCatalogCache implements CatalogCache
var _ storefront.CatalogCache = (*RedisCatalogCache)(nil)
