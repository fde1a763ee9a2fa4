package commerce

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/storefront"
	"github.com/storefront/backend/internal/infrastructure/telemetry"
)

// maxResponseSize limits the response body size to prevent memory exhaustion
const maxResponseSize = 10 * 1024 * 1024 // 10MB max response

// Client implements storefront.CommercePlatform against the remote platform
// HTTP API. The platform is opaque: the client never assumes a capability
// exists and maps every failure to a tagged domain error.
//
// Data access requires a completed handshake. Connect is collapsed so that
// any number of concurrent callers produce exactly one request on the wire,
// and the ready/load_failed events fire at most once per process.
type Client struct {
	config     *Config
	httpClient *http.Client
	bus        shared.EventPublisher
	logger     *zap.Logger
	metrics    *telemetry.Metrics

	connectGroup singleflight.Group

	mu            sync.RWMutex // Protects connection state and signal latches
	connected     bool
	readySignaled bool
	failSignaled  bool
}

// Option configures a Client
type Option func(*Client)

// WithLogger sets the logger used by the client
func WithLogger(logger *zap.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMetrics sets the metrics recorder used by the client
func WithMetrics(m *telemetry.Metrics) Option {
	return func(c *Client) {
		c.metrics = m
	}
}

// WithHTTPClient replaces the underlying HTTP client, mainly for tests
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a new platform client with the given configuration.
// The bus receives the lifecycle events; it must not be nil.
func NewClient(config *Config, bus shared.EventPublisher, opts ...Option) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if bus == nil {
		return nil, fmt.Errorf("commerce: event publisher is required")
	}

	c := &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		bus:    bus,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var _ storefront.CommercePlatform = (*Client)(nil)

// ---------------------------------------------------------------------------
// Handshake
// ---------------------------------------------------------------------------

// Connect performs the platform handshake. Callers arriving while an attempt
// is in flight join it instead of starting their own, so the wire sees one
// handshake regardless of caller count. A completed handshake makes later
// calls return immediately; a failed one leaves the client disconnected and
// the next call starts a fresh attempt.
func (c *Client) Connect(ctx context.Context) error {
	if c.Connected() {
		return nil
	}

	// Joined callers share the initiating caller's context.
	_, err, _ := c.connectGroup.Do("handshake", func() (any, error) {
		if c.Connected() {
			return nil, nil
		}
		return nil, c.handshake(ctx)
	})
	return err
}

// Connected reports whether the handshake has completed successfully
func (c *Client) Connected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *Client) handshake(ctx context.Context) error {
	body, err := c.doRequest(ctx, "handshake", http.MethodPost, c.storePath("handshake"), nil)
	if err != nil {
		c.signalFailure(ctx, err)
		return fmt.Errorf("%w: %v", shared.ErrLoadFailed, err)
	}

	var resp handshakeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		c.signalFailure(ctx, err)
		return fmt.Errorf("%w: failed to parse handshake response: %v", shared.ErrLoadFailed, err)
	}
	if !resp.IsSuccess() {
		err := fmt.Errorf("%w: %s", shared.ErrLoadFailed, resp.Error)
		c.signalFailure(ctx, err)
		return err
	}

	c.mu.Lock()
	c.connected = true
	signal := !c.readySignaled
	c.readySignaled = true
	c.mu.Unlock()

	c.logger.Info("commerce platform handshake completed",
		zap.String("store_id", c.config.StoreID))

	if signal {
		if pubErr := c.bus.Publish(ctx, storefront.NewPlatformReadyEvent(c.config.StoreID)); pubErr != nil {
			c.logger.Warn("failed to publish platform ready event", zap.Error(pubErr))
		}
	}
	return nil
}

// signalFailure publishes the load_failed event the first time a handshake
// attempt fails. Later failures still surface to their callers as errors.
func (c *Client) signalFailure(ctx context.Context, cause error) {
	c.mu.Lock()
	signal := !c.failSignaled
	c.failSignaled = true
	c.mu.Unlock()

	c.logger.Warn("commerce platform handshake failed",
		zap.String("store_id", c.config.StoreID),
		zap.Error(cause))

	if signal {
		if pubErr := c.bus.Publish(ctx, storefront.NewPlatformLoadFailedEvent(cause.Error())); pubErr != nil {
			c.logger.Warn("failed to publish platform load failed event", zap.Error(pubErr))
		}
	}
}

// ---------------------------------------------------------------------------
// Store Operations
// ---------------------------------------------------------------------------

// GetStore fetches the full store payload
func (c *Client) GetStore(ctx context.Context) (*storefront.RawStore, error) {
	if err := c.requireConnected(); err != nil {
		return nil, err
	}

	body, err := c.doRequest(ctx, "get_store", http.MethodGet, c.storePath(""), nil)
	if err != nil {
		return nil, err
	}

	var resp storeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse store response: %v", shared.ErrFetchFailed, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s", shared.ErrFetchFailed, resp.Error)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: store payload missing", shared.ErrFetchFailed)
	}
	return resp.Data, nil
}

// GetProduct looks a product up by ID or slug via the platform's direct
// lookup endpoint
func (c *Client) GetProduct(ctx context.Context, idOrSlug string) (*storefront.RawProduct, error) {
	if err := c.requireConnected(); err != nil {
		return nil, err
	}
	if idOrSlug == "" {
		return nil, fmt.Errorf("%w: product identifier is required", shared.ErrInvalidInput)
	}

	path := c.storePath("products/" + url.PathEscape(idOrSlug))
	body, err := c.doRequest(ctx, "get_product", http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp productResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse product response: %v", shared.ErrFetchFailed, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s", shared.ErrFetchFailed, resp.Error)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("%w: product %q", shared.ErrNotFound, idOrSlug)
	}
	return resp.Data, nil
}

// GetProductReviews fetches one page of reviews for a product. Pages are
// 1-indexed; a page past the end comes back with an empty review list. A
// non-positive pageSize leaves the platform's default page size in place.
func (c *Client) GetProductReviews(ctx context.Context, productID string, page, pageSize int) (*storefront.RawReviewPage, error) {
	if err := c.requireConnected(); err != nil {
		return nil, err
	}
	if productID == "" {
		return nil, fmt.Errorf("%w: product ID is required", shared.ErrInvalidInput)
	}
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be >= 1, got %d", shared.ErrInvalidInput, page)
	}

	path := c.storePath("products/"+url.PathEscape(productID)+"/reviews") +
		"?page=" + strconv.Itoa(page)
	if pageSize > 0 {
		path += "&perPage=" + strconv.Itoa(pageSize)
	}
	body, err := c.doRequest(ctx, "get_product_reviews", http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}

	var resp reviewsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse reviews response: %v", shared.ErrFetchFailed, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s", shared.ErrFetchFailed, resp.Error)
	}

	if c.metrics != nil {
		c.metrics.RecordReviewPage(ctx, page)
	}
	return &storefront.RawReviewPage{
		Reviews: resp.Data,
		Pages:   resp.Pages,
	}, nil
}

// GetFormatterSettings fetches the store's money formatting settings
func (c *Client) GetFormatterSettings(ctx context.Context) (*storefront.FormatterSettings, error) {
	if err := c.requireConnected(); err != nil {
		return nil, err
	}

	body, err := c.doRequest(ctx, "get_formatter_settings", http.MethodGet, c.storePath("settings/formatter"), nil)
	if err != nil {
		return nil, err
	}

	var resp settingsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: failed to parse settings response: %v", shared.ErrFetchFailed, err)
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: %s", shared.ErrFetchFailed, resp.Error)
	}
	if resp.Data == nil || resp.Data.CurrencyCode == "" {
		return nil, fmt.Errorf("%w: formatter settings missing", shared.ErrFetchFailed)
	}
	return &storefront.FormatterSettings{
		CurrencyCode: resp.Data.CurrencyCode,
		Locale:       resp.Data.Locale,
	}, nil
}

// GetStoreBannerURL fetches the store banner image URL
func (c *Client) GetStoreBannerURL(ctx context.Context) (string, error) {
	if err := c.requireConnected(); err != nil {
		return "", err
	}

	body, err := c.doRequest(ctx, "get_store_banner", http.MethodGet, c.storePath("banner"), nil)
	if err != nil {
		return "", err
	}

	var resp bannerResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("%w: failed to parse banner response: %v", shared.ErrFetchFailed, err)
	}
	if !resp.IsSuccess() {
		return "", fmt.Errorf("%w: %s", shared.ErrFetchFailed, resp.Error)
	}
	if resp.Data == nil || resp.Data.URL == "" {
		return "", fmt.Errorf("%w: store banner", shared.ErrNotFound)
	}
	return resp.Data.URL, nil
}

// ---------------------------------------------------------------------------
// HTTP plumbing
// ---------------------------------------------------------------------------

func (c *Client) requireConnected() error {
	if !c.Connected() {
		return shared.ErrPlatformNotReady
	}
	return nil
}

// storePath builds an API path under the configured store
func (c *Client) storePath(suffix string) string {
	path := "/stores/" + url.PathEscape(c.config.StoreID)
	if suffix != "" {
		path += "/" + suffix
	}
	return path
}

// doRequest performs one platform request and returns the raw body.
// HTTP status codes map to domain errors here so every caller shares the
// same taxonomy: 404 is ErrNotFound, 405/501 is ErrUnsupported, any other
// non-2xx is ErrFetchFailed.
func (c *Client) doRequest(ctx context.Context, operation, method, path string, payload any) ([]byte, error) {
	ctx, span := telemetry.Tracer().Start(ctx, "commerce."+operation,
		trace.WithAttributes(
			attribute.String("commerce.store_id", c.config.StoreID),
			attribute.String("http.method", method),
		))
	defer span.End()

	start := time.Now()
	body, err := c.roundTrip(ctx, method, path, payload)
	if c.metrics != nil {
		c.metrics.RecordPlatformCall(ctx, operation, err == nil, time.Since(start).Seconds())
	}
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	return body, nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload any) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("commerce: failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.config.BaseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("commerce: failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrFetchFailed, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: %s", shared.ErrNotFound, path)
	case resp.StatusCode == http.StatusMethodNotAllowed || resp.StatusCode == http.StatusNotImplemented:
		return nil, fmt.Errorf("%w: %s", shared.ErrUnsupported, path)
	case resp.StatusCode >= 400:
		return nil, fmt.Errorf("%w: HTTP %d", shared.ErrFetchFailed, resp.StatusCode)
	}
	return body, nil
}
