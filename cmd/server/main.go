package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	appstorefront "github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/storefront"
	"github.com/storefront/backend/internal/infrastructure/cache"
	"github.com/storefront/backend/internal/infrastructure/commerce"
	"github.com/storefront/backend/internal/infrastructure/config"
	"github.com/storefront/backend/internal/infrastructure/event"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
	"github.com/storefront/backend/internal/interfaces/http/handler"
	"github.com/storefront/backend/internal/interfaces/http/middleware"
	"github.com/storefront/backend/internal/interfaces/http/router"
)

const maxRequestBodySize = 1 << 20 // 1 MiB, carts are small

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Storefront Backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	metrics, err := telemetry.NewMetrics()
	if err != nil {
		log.Fatal("Failed to initialize metrics", zap.Error(err))
	}

	// Event bus carries the platform lifecycle and formatter events
	eventBus := event.NewInMemoryEventBus(log)
	eventBus.Subscribe(&shared.EventHandlerFunc{
		Types: []string{storefront.EventTypePlatformReady, storefront.EventTypePlatformLoadFailed},
		Fn: func(_ context.Context, evt shared.DomainEvent) error {
			log.Info("Platform lifecycle event", zap.String("event_type", evt.EventType()))
			return nil
		},
	})

	// Commerce platform client
	commerceCfg := commerce.NewConfig(cfg.Commerce.BaseURL, cfg.Commerce.StoreID)
	commerceCfg.Timeout = cfg.Commerce.Timeout
	platform, err := commerce.NewClient(commerceCfg, eventBus,
		commerce.WithLogger(log),
		commerce.WithMetrics(metrics),
	)
	if err != nil {
		log.Fatal("Failed to create commerce client", zap.Error(err))
	}

	// Catalog cache: in-memory, with an optional shared Redis tier
	cacheCfg := storefront.DefaultCacheConfig()
	if cfg.Cache.StoreTTL > 0 {
		cacheCfg.StoreTTL = cfg.Cache.StoreTTL
	}
	if cfg.Cache.ProductTTL > 0 {
		cacheCfg.ProductTTL = cfg.Cache.ProductTTL
	}

	var catalogCache storefront.CatalogCache
	var redisClient *redis.Client
	if cfg.Cache.RedisEnabled {
		// Entries in the shared tier live for the Redis TTL; the L1 TTL
		// bounds how stale a local copy can get.
		if cfg.Cache.RedisTTL > 0 {
			cacheCfg.StoreTTL = cfg.Cache.RedisTTL
			cacheCfg.ProductTTL = cfg.Cache.RedisTTL
		}
		redisClient = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		l1 := cache.NewInMemoryCatalogCache(
			cache.WithInMemoryConfig(cacheCfg),
			cache.WithInMemoryLogger(log),
		)
		l2 := cache.NewRedisCatalogCache(redisClient,
			cache.WithRedisConfig(cacheCfg),
			cache.WithRedisLogger(log),
		)
		catalogCache = cache.NewTieredCatalogCache(l1, l2,
			cache.WithTieredConfig(cacheCfg),
			cache.WithTieredLogger(log),
		)
		log.Info("Catalog cache using Redis tier", zap.String("addr", cfg.Redis.Addr()))
	} else {
		catalogCache = cache.NewInMemoryCatalogCache(
			cache.WithInMemoryConfig(cacheCfg),
			cache.WithInMemoryLogger(log),
		)
	}
	defer func() {
		if err := catalogCache.Close(); err != nil {
			log.Error("Error closing catalog cache", zap.Error(err))
		}
	}()

	// Application services
	catalogService := appstorefront.NewCatalogService(platform, catalogCache, log,
		appstorefront.WithCatalogConfig(cacheCfg),
		appstorefront.WithCatalogMetrics(metrics),
	)
	formatterService := appstorefront.NewFormatterService(platform, eventBus, "USD", "en-US", log)
	reviewService := appstorefront.NewReviewService(platform, log,
		appstorefront.WithReviewPageSize(cfg.Reviews.PageSize),
	)
	cartService := appstorefront.NewCartService(catalogService, formatterService, log)
	gate := appstorefront.NewReadinessGate(platform, eventBus, log)

	// Prewarm the configured product slugs once the platform is up
	if len(cfg.Commerce.ProductSlugs) > 0 {
		slugs := cfg.Commerce.ProductSlugs
		gate.Subscribe(func(state storefront.ReadinessState) {
			if !state.Ready {
				return
			}
			go prewarmProducts(catalogService, slugs, cfg.Commerce.Timeout, log)
		})
	}

	// Kick off the platform handshake without blocking startup; readiness
	// is observable through the gate and the health endpoint
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Commerce.Timeout)
		defer cancel()
		if err := platform.Connect(ctx); err != nil {
			log.Error("Commerce platform handshake failed", zap.Error(err))
		}
	}()

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.Secure())
	engine.Use(middleware.CORS())
	engine.Use(middleware.BodyLimit(maxRequestBodySize))

	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(handler.NewStorefrontHandler(catalogService, reviewService, cartService, formatterService))
	r.Register(handler.NewHealthHandler(gate, catalogService))
	r.Setup()

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      engine,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			log.Error("Error closing Redis client", zap.Error(err))
		}
	}

	log.Info("Server exited gracefully")
}

// prewarmProducts fetches the pre-enumerated product list so first page
// views hit a warm cache. Failures only cost the warm start.
func prewarmProducts(catalog *appstorefront.CatalogService, slugs []string, timeout time.Duration, log *zap.Logger) {
	for _, slug := range slugs {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		if _, err := catalog.GetProduct(ctx, slug); err != nil {
			log.Debug("Product prewarm failed", zap.String("slug", slug), zap.Error(err))
		}
		cancel()
	}
	log.Info("Product cache prewarmed", zap.Int("products", len(slugs)))
}
