package commerce

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/storefront"
	"github.com/storefront/backend/internal/infrastructure/event"
)

// ---------------------------------------------------------------------------
// Test helpers
// ---------------------------------------------------------------------------

func newTestClient(t *testing.T, handler http.Handler) (*Client, *event.InMemoryEventBus, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	bus := event.NewInMemoryEventBus(nil)
	client, err := NewClient(NewConfig(srv.URL, "store-1"), bus)
	require.NoError(t, err)
	return client, bus, srv
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// connect completes the handshake so data operations are usable
func connect(t *testing.T, client *Client) {
	t.Helper()
	require.NoError(t, client.Connect(context.Background()))
}

// eventRecorder collects published event types in order
type eventRecorder struct {
	mu    sync.Mutex
	types []string
}

func (r *eventRecorder) Handle(_ context.Context, e shared.DomainEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.types = append(r.types, e.EventType())
	return nil
}

func (r *eventRecorder) EventTypes() []string { return nil }

func (r *eventRecorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.types...)
}

// platformMux builds a fake platform serving one store with products,
// reviews, settings and a banner
func platformMux(handshakeHits *atomic.Int64) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /stores/store-1/handshake", func(w http.ResponseWriter, r *http.Request) {
		if handshakeHits != nil {
			handshakeHits.Add(1)
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]string{"storeId": "store-1"},
		})
	})
	mux.HandleFunc("GET /stores/store-1", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"id": "store-1",
				"products": []map[string]any{
					{"id": "p1", "slug": "blue-mug", "name": "Blue Mug", "price": "12.50"},
				},
			},
		})
	})
	mux.HandleFunc("GET /stores/store-1/products/blue-mug", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]any{"id": "p1", "slug": "blue-mug", "name": "Blue Mug", "price": "12.50"},
		})
	})
	mux.HandleFunc("GET /stores/store-1/products/p1/reviews", func(w http.ResponseWriter, r *http.Request) {
		page := r.URL.Query().Get("page")
		if page == "1" {
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"pages":   2,
				"data": []map[string]any{
					{"id": "r1", "rating": 5, "reason": "Great", "comment": "Loved it"},
				},
			})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "pages": 2, "data": []any{}})
	})
	mux.HandleFunc("GET /stores/store-1/settings/formatter", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]string{"currencyCode": "EUR", "locale": "de-DE"},
		})
	})
	mux.HandleFunc("GET /stores/store-1/banner", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]string{"url": "https://cdn.example.com/banner.png"},
		})
	})
	return mux
}

// ---------------------------------------------------------------------------
// Config Tests
// ---------------------------------------------------------------------------

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr error
	}{
		{
			name:    "valid config",
			config:  &Config{BaseURL: "https://platform.example.com", StoreID: "store-1"},
			wantErr: nil,
		},
		{
			name:    "missing base URL",
			config:  &Config{StoreID: "store-1"},
			wantErr: ErrConfigMissingBaseURL,
		},
		{
			name:    "missing store ID",
			config:  &Config{BaseURL: "https://platform.example.com"},
			wantErr: ErrConfigMissingStoreID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, DefaultTimeout, tt.config.Timeout)
				assert.NotEmpty(t, tt.config.UserAgent)
			}
		})
	}
}

func TestConfig_Validate_TrimsTrailingSlash(t *testing.T) {
	config := &Config{BaseURL: "https://platform.example.com/", StoreID: "store-1"}
	require.NoError(t, config.Validate())
	assert.Equal(t, "https://platform.example.com", config.BaseURL)
}

// ---------------------------------------------------------------------------
// Handshake Tests
// ---------------------------------------------------------------------------

func TestClient_Connect(t *testing.T) {
	var hits atomic.Int64
	client, bus, _ := newTestClient(t, platformMux(&hits))

	rec := &eventRecorder{}
	bus.Subscribe(rec)

	require.False(t, client.Connected())
	require.NoError(t, client.Connect(context.Background()))
	assert.True(t, client.Connected())
	assert.Equal(t, int64(1), hits.Load())
	assert.Equal(t, []string{storefront.EventTypePlatformReady}, rec.recorded())

	// A completed handshake makes further calls no-ops
	require.NoError(t, client.Connect(context.Background()))
	assert.Equal(t, int64(1), hits.Load())
	assert.Equal(t, []string{storefront.EventTypePlatformReady}, rec.recorded())
}

func TestClient_Connect_Concurrent(t *testing.T) {
	var hits atomic.Int64
	release := make(chan struct{})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /stores/store-1/handshake", func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		<-release
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	client, _, _ := newTestClient(t, mux)

	const callers = 25
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = client.Connect(context.Background())
		}(i)
	}
	// Let the goroutines pile onto the in-flight attempt, then release it
	close(release)
	wg.Wait()

	for i := 0; i < callers; i++ {
		assert.NoError(t, errs[i])
	}
	assert.True(t, client.Connected())
	assert.Equal(t, int64(1), hits.Load(), "concurrent callers must share one handshake")
}

func TestClient_Connect_Failure(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /stores/store-1/handshake", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"success": false, "error": "store suspended"})
	})
	client, bus, _ := newTestClient(t, mux)

	rec := &eventRecorder{}
	bus.Subscribe(rec)

	err := client.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, shared.ErrLoadFailed)
	assert.False(t, client.Connected())
	assert.Equal(t, []string{storefront.EventTypePlatformLoadFailed}, rec.recorded())

	// The failure event fires at most once even when the caller retries
	err = client.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, []string{storefront.EventTypePlatformLoadFailed}, rec.recorded())
}

func TestClient_Connect_RetryAfterFailure(t *testing.T) {
	var hits atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("POST /stores/store-1/handshake", func(w http.ResponseWriter, r *http.Request) {
		if hits.Add(1) == 1 {
			writeJSON(w, http.StatusInternalServerError, map[string]any{"success": false})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true})
	})
	client, bus, _ := newTestClient(t, mux)

	rec := &eventRecorder{}
	bus.Subscribe(rec)

	require.Error(t, client.Connect(context.Background()))
	require.NoError(t, client.Connect(context.Background()))
	assert.True(t, client.Connected())
	// Each lifecycle signal still fires exactly once
	assert.Equal(t, []string{
		storefront.EventTypePlatformLoadFailed,
		storefront.EventTypePlatformReady,
	}, rec.recorded())
}

// ---------------------------------------------------------------------------
// Data Operation Tests
// ---------------------------------------------------------------------------

func TestClient_RequiresHandshake(t *testing.T) {
	client, _, _ := newTestClient(t, platformMux(nil))

	_, err := client.GetStore(context.Background())
	assert.ErrorIs(t, err, shared.ErrPlatformNotReady)

	_, err = client.GetProduct(context.Background(), "blue-mug")
	assert.ErrorIs(t, err, shared.ErrPlatformNotReady)

	_, err = client.GetProductReviews(context.Background(), "p1", 1, 10)
	assert.ErrorIs(t, err, shared.ErrPlatformNotReady)
}

func TestClient_GetStore(t *testing.T) {
	client, _, _ := newTestClient(t, platformMux(nil))
	connect(t, client)

	store, err := client.GetStore(context.Background())
	require.NoError(t, err)
	require.Len(t, store.Products, 1)
	assert.Equal(t, "blue-mug", store.Products[0].Slug)
}

func TestClient_GetProduct(t *testing.T) {
	client, _, _ := newTestClient(t, platformMux(nil))
	connect(t, client)

	product, err := client.GetProduct(context.Background(), "blue-mug")
	require.NoError(t, err)
	assert.Equal(t, "p1", product.ID)

	_, err = client.GetProduct(context.Background(), "no-such-product")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	_, err = client.GetProduct(context.Background(), "")
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestClient_GetProduct_Unsupported(t *testing.T) {
	// A platform without a direct lookup endpoint answers 501 for it
	limited, _, _ := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			writeJSON(w, http.StatusOK, map[string]any{"success": true})
			return
		}
		w.WriteHeader(http.StatusNotImplemented)
	}))
	connect(t, limited)

	_, err := limited.GetProduct(context.Background(), "blue-mug")
	assert.ErrorIs(t, err, shared.ErrUnsupported)
}

func TestClient_GetProductReviews(t *testing.T) {
	client, _, _ := newTestClient(t, platformMux(nil))
	connect(t, client)

	page, err := client.GetProductReviews(context.Background(), "p1", 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, page.Pages)
	require.Len(t, page.Reviews, 1)
	assert.Equal(t, "r1", page.Reviews[0].ID)

	// Past-the-end pages come back empty, not as errors
	page, err = client.GetProductReviews(context.Background(), "p1", 2, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Reviews)

	_, err = client.GetProductReviews(context.Background(), "p1", 0, 10)
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
}

func TestClient_GetProductReviews_PageSizeQuery(t *testing.T) {
	var lastQuery atomic.Value
	mux := http.NewServeMux()
	mux.HandleFunc("POST /stores/store-1/handshake", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"data":    map[string]string{"storeId": "store-1"},
		})
	})
	mux.HandleFunc("GET /stores/store-1/products/p1/reviews", func(w http.ResponseWriter, r *http.Request) {
		lastQuery.Store(r.URL.Query())
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "pages": 1, "data": []any{}})
	})
	client, _, _ := newTestClient(t, mux)
	connect(t, client)

	_, err := client.GetProductReviews(context.Background(), "p1", 3, 25)
	require.NoError(t, err)
	query := lastQuery.Load().(url.Values)
	assert.Equal(t, "3", query.Get("page"))
	assert.Equal(t, "25", query.Get("perPage"))

	// A non-positive page size leaves the platform default in place
	_, err = client.GetProductReviews(context.Background(), "p1", 1, 0)
	require.NoError(t, err)
	query = lastQuery.Load().(url.Values)
	assert.Equal(t, "", query.Get("perPage"))
}

func TestClient_GetFormatterSettings(t *testing.T) {
	client, _, _ := newTestClient(t, platformMux(nil))
	connect(t, client)

	settings, err := client.GetFormatterSettings(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "EUR", settings.CurrencyCode)
	assert.Equal(t, "de-DE", settings.Locale)
}

func TestClient_GetStoreBannerURL(t *testing.T) {
	client, _, _ := newTestClient(t, platformMux(nil))
	connect(t, client)

	bannerURL, err := client.GetStoreBannerURL(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/banner.png", bannerURL)
}
