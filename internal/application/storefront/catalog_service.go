package storefront

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/storefront"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

// CatalogService serves store and product data through the catalog cache.
// Cache misses collapse concurrent fetches onto one platform request, and a
// product lookup that the platform cannot answer directly falls back to
// scanning the full catalog.
type CatalogService struct {
	platform storefront.CommercePlatform
	cache    storefront.CatalogCache
	config   storefront.CacheConfig
	logger   *zap.Logger
	metrics  *telemetry.Metrics

	fetchGroup  singleflight.Group
	bannerGroup singleflight.Group
}

// CatalogServiceOption is a functional option for configuring the service
type CatalogServiceOption func(*CatalogService)

// WithCatalogConfig sets the cache TTL configuration
func WithCatalogConfig(config storefront.CacheConfig) CatalogServiceOption {
	return func(s *CatalogService) {
		s.config = config
	}
}

// WithCatalogMetrics sets the metrics recorder
func WithCatalogMetrics(m *telemetry.Metrics) CatalogServiceOption {
	return func(s *CatalogService) {
		s.metrics = m
	}
}

// NewCatalogService creates a new catalog service
func NewCatalogService(platform storefront.CommercePlatform, cache storefront.CatalogCache, logger *zap.Logger, opts ...CatalogServiceOption) *CatalogService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &CatalogService{
		platform: platform,
		cache:    cache,
		config:   storefront.DefaultCacheConfig(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetStore returns the store catalog, from cache when fresh
func (s *CatalogService) GetStore(ctx context.Context) (*storefront.StoreCatalog, error) {
	if err := s.platform.Connect(ctx); err != nil {
		return nil, err
	}

	if catalog, err := s.cache.GetStore(ctx); err == nil && catalog != nil {
		s.recordCacheHit(ctx, "store", true)
		return catalog, nil
	} else if err != nil {
		s.logger.Warn("store cache read failed", zap.Error(err))
	}
	s.recordCacheHit(ctx, "store", false)

	v, err, _ := s.fetchGroup.Do("store", func() (any, error) {
		return s.fetchStore(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*storefront.StoreCatalog), nil
}

// GetProduct returns one product by ID or slug. The platform's direct lookup
// is tried first; when it is unsupported, fails, or misses, the full catalog
// is scanned. Not found means both strategies came up empty.
func (s *CatalogService) GetProduct(ctx context.Context, idOrSlug string) (*storefront.Product, error) {
	idOrSlug = strings.TrimSpace(idOrSlug)
	if idOrSlug == "" {
		return nil, fmt.Errorf("%w: product identifier is required", shared.ErrInvalidInput)
	}
	if err := s.platform.Connect(ctx); err != nil {
		return nil, err
	}

	key := strings.ToLower(idOrSlug)
	if product, err := s.cache.GetProduct(ctx, key); err == nil && product != nil {
		s.recordCacheHit(ctx, "product", true)
		return product, nil
	} else if err != nil {
		s.logger.Warn("product cache read failed", zap.String("key", key), zap.Error(err))
	}
	s.recordCacheHit(ctx, "product", false)

	v, err, _ := s.fetchGroup.Do("product:"+key, func() (any, error) {
		return s.fetchProduct(ctx, idOrSlug, key)
	})
	if err != nil {
		return nil, err
	}
	return v.(*storefront.Product), nil
}

// BannerURL returns the store banner image URL. The lookup is best-effort:
// an empty string with no error means the store has no banner to show.
func (s *CatalogService) BannerURL(ctx context.Context) (string, error) {
	if err := s.platform.Connect(ctx); err != nil {
		return "", err
	}

	v, err, _ := s.bannerGroup.Do("banner", func() (any, error) {
		bannerURL, err := s.platform.GetStoreBannerURL(ctx)
		if err != nil {
			if shared.IsNotFound(err) || shared.IsUnsupported(err) {
				return "", nil
			}
			return "", err
		}
		return bannerURL, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

// Invalidate drops all cached catalog data
func (s *CatalogService) Invalidate(ctx context.Context) error {
	return s.cache.InvalidateAll(ctx)
}

// CacheStats exposes the cache statistics for diagnostics
func (s *CatalogService) CacheStats(ctx context.Context) storefront.CacheStats {
	return s.cache.GetCacheStats(ctx)
}

func (s *CatalogService) fetchStore(ctx context.Context) (*storefront.StoreCatalog, error) {
	raw, err := s.platform.GetStore(ctx)
	if err != nil {
		return nil, err
	}

	catalog := &storefront.StoreCatalog{
		StoreID:  raw.ID,
		Products: make([]storefront.Product, 0, len(raw.Products)),
	}
	for _, p := range raw.Products {
		catalog.Products = append(catalog.Products, storefront.NormalizeProduct(p))
	}

	if err := s.cache.SetStore(ctx, catalog, s.config.StoreTTL); err != nil {
		s.logger.Warn("failed to cache store catalog", zap.Error(err))
	}
	s.logger.Debug("fetched store catalog",
		zap.String("store_id", catalog.StoreID),
		zap.Int("products", len(catalog.Products)))
	return catalog, nil
}

func (s *CatalogService) fetchProduct(ctx context.Context, idOrSlug, key string) (*storefront.Product, error) {
	raw, err := s.platform.GetProduct(ctx, idOrSlug)
	if err == nil {
		product := storefront.NormalizeProduct(*raw)
		s.cacheProduct(ctx, key, &product)
		return &product, nil
	}

	s.logger.Debug("direct product lookup failed, scanning catalog",
		zap.String("id_or_slug", idOrSlug),
		zap.Error(err))

	catalog, catErr := s.GetStore(ctx)
	if catErr != nil {
		// Surface the original failure when the fallback also broke down
		return nil, fmt.Errorf("%w: catalog fallback failed: %v", shared.ErrFetchFailed, catErr)
	}
	if product := catalog.FindProduct(idOrSlug); product != nil {
		s.cacheProduct(ctx, key, product)
		return product, nil
	}
	return nil, fmt.Errorf("%w: product %q", shared.ErrNotFound, idOrSlug)
}

func (s *CatalogService) cacheProduct(ctx context.Context, key string, product *storefront.Product) {
	if err := s.cache.SetProduct(ctx, key, product, s.config.ProductTTL); err != nil {
		s.logger.Warn("failed to cache product", zap.String("key", key), zap.Error(err))
	}
}

func (s *CatalogService) recordCacheHit(ctx context.Context, cache string, hit bool) {
	if s.metrics == nil {
		return
	}
	if hit {
		s.metrics.RecordCacheHit(ctx, cache)
	} else {
		s.metrics.RecordCacheMiss(ctx, cache)
	}
}
