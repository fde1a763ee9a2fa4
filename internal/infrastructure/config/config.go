package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App      AppConfig
	Log      LogConfig
	Commerce CommerceConfig
	Cache    CacheConfig
	Redis    RedisConfig
	Reviews  ReviewsConfig
	HTTP     HTTPConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr
}

// CommerceConfig holds remote commerce platform settings
type CommerceConfig struct {
	BaseURL string
	StoreID string
	// Timeout bounds every remote call, including the initial handshake.
	// There is deliberately no retry policy: a failed call surfaces to the
	// caller, who decides whether to call again.
	Timeout time.Duration
	// ProductSlugs is the pre-enumerated product list consumed from the
	// build/configuration collaborators, carried as opaque strings
	ProductSlugs []string
}

// CacheConfig holds catalog cache settings
type CacheConfig struct {
	StoreTTL   time.Duration
	ProductTTL time.Duration
	// RedisEnabled turns on the shared Redis tier for catalog entries
	RedisEnabled bool
	RedisTTL     time.Duration
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ReviewsConfig holds review pagination settings
type ReviewsConfig struct {
	PageSize int
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with STOREFRONT_ prefix (e.g., STOREFRONT_COMMERCE_STORE_ID)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("STOREFRONT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		Commerce: CommerceConfig{
			BaseURL:      v.GetString("commerce.base_url"),
			StoreID:      v.GetString("commerce.store_id"),
			Timeout:      v.GetDuration("commerce.timeout"),
			ProductSlugs: v.GetStringSlice("commerce.product_slugs"),
		},
		Cache: CacheConfig{
			StoreTTL:     v.GetDuration("cache.store_ttl"),
			ProductTTL:   v.GetDuration("cache.product_ttl"),
			RedisEnabled: v.GetBool("cache.redis_enabled"),
			RedisTTL:     v.GetDuration("cache.redis_ttl"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Reviews: ReviewsConfig{
			PageSize: v.GetInt("reviews.page_size"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:  v.GetDuration("http.read_timeout"),
			WriteTimeout: v.GetDuration("http.write_timeout"),
			IdleTimeout:  v.GetDuration("http.idle_timeout"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "storefront-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.Commerce.Timeout == 0 {
		cfg.Commerce.Timeout = 15 * time.Second
	}
	if cfg.Cache.StoreTTL == 0 {
		cfg.Cache.StoreTTL = 5 * time.Minute
	}
	if cfg.Cache.ProductTTL == 0 {
		cfg.Cache.ProductTTL = 5 * time.Minute
	}
	if cfg.Cache.RedisTTL == 0 {
		cfg.Cache.RedisTTL = 15 * time.Minute
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Reviews.PageSize == 0 {
		cfg.Reviews.PageSize = 10
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		cfg.HTTP.WriteTimeout = 15 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Commerce.BaseURL == "" {
		return fmt.Errorf("commerce.base_url is required")
	}
	if c.Commerce.StoreID == "" {
		return fmt.Errorf("commerce.store_id is required")
	}
	if c.Reviews.PageSize < 1 || c.Reviews.PageSize > 100 {
		return fmt.Errorf("reviews.page_size must be between 1 and 100, got %d", c.Reviews.PageSize)
	}
	if c.App.Env == "production" {
		if !strings.HasPrefix(c.Commerce.BaseURL, "https://") {
			return fmt.Errorf("commerce.base_url must use https in production")
		}
		if c.Cache.RedisEnabled && c.Redis.Password == "" {
			return fmt.Errorf("redis.password is required in production when the Redis cache tier is enabled")
		}
	}
	return nil
}

// Addr returns the Redis address in host:port form
func (r *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}
