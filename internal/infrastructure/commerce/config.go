package commerce

import (
	"errors"
	"strings"
	"time"
)

// Config holds configuration for the remote commerce platform API
type Config struct {
	// BaseURL is the root URL of the platform API
	BaseURL string
	// StoreID identifies the store whose data this client serves
	StoreID string
	// Timeout is the HTTP request timeout
	Timeout time.Duration
	// UserAgent is sent with every request so platform logs can attribute traffic
	UserAgent string
}

const (
	// DefaultTimeout bounds every platform request; there is no retry layer on top
	DefaultTimeout = 15 * time.Second
	// defaultUserAgent identifies this client to the platform
	defaultUserAgent = "storefront-backend/1.0"
)

// Errors for commerce configuration
var (
	ErrConfigMissingBaseURL = errors.New("commerce: base URL is required")
	ErrConfigMissingStoreID = errors.New("commerce: store ID is required")
)

// NewConfig creates a new commerce configuration with defaults
func NewConfig(baseURL, storeID string) *Config {
	return &Config{
		BaseURL:   baseURL,
		StoreID:   storeID,
		Timeout:   DefaultTimeout,
		UserAgent: defaultUserAgent,
	}
}

// Validate validates the commerce configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ErrConfigMissingBaseURL
	}
	if c.StoreID == "" {
		return ErrConfigMissingStoreID
	}
	c.BaseURL = strings.TrimRight(c.BaseURL, "/")
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
	if c.UserAgent == "" {
		c.UserAgent = defaultUserAgent
	}
	return nil
}
