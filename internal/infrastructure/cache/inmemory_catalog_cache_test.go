package cache

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/storefront"
)

func testCatalog() *storefront.StoreCatalog {
	return &storefront.StoreCatalog{
		StoreID: "store-1",
		Products: []storefront.Product{
			{ID: "p1", Slug: "blue-mug", Name: "Blue Mug", Price: decimal.RequireFromString("12.50")},
		},
	}
}

func TestInMemoryCatalogCache_StoreRoundTrip(t *testing.T) {
	c := NewInMemoryCatalogCache()
	defer c.Close()
	ctx := context.Background()

	got, err := c.GetStore(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "empty cache must miss")

	require.NoError(t, c.SetStore(ctx, testCatalog(), time.Minute))

	got, err = c.GetStore(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "store-1", got.StoreID)
}

func TestInMemoryCatalogCache_Expiry(t *testing.T) {
	c := NewInMemoryCatalogCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.SetStore(ctx, testCatalog(), 10*time.Millisecond))
	time.Sleep(20 * time.Millisecond)

	got, err := c.GetStore(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "expired entry must miss")
}

func TestInMemoryCatalogCache_ProductKeyIsCaseInsensitive(t *testing.T) {
	c := NewInMemoryCatalogCache()
	defer c.Close()
	ctx := context.Background()

	product := &storefront.Product{ID: "p1", Slug: "blue-mug", Name: "Blue Mug"}
	require.NoError(t, c.SetProduct(ctx, "Blue-Mug", product, time.Minute))

	got, err := c.GetProduct(ctx, "blue-mug")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "p1", got.ID)
}

func TestInMemoryCatalogCache_InvalidateAll(t *testing.T) {
	c := NewInMemoryCatalogCache()
	defer c.Close()
	ctx := context.Background()

	require.NoError(t, c.SetStore(ctx, testCatalog(), time.Minute))
	require.NoError(t, c.SetProduct(ctx, "p1", &storefront.Product{ID: "p1"}, time.Minute))
	require.NoError(t, c.InvalidateAll(ctx))

	store, err := c.GetStore(ctx)
	require.NoError(t, err)
	assert.Nil(t, store)

	product, err := c.GetProduct(ctx, "p1")
	require.NoError(t, err)
	assert.Nil(t, product)
}

func TestInMemoryCatalogCache_Stats(t *testing.T) {
	c := NewInMemoryCatalogCache()
	defer c.Close()
	ctx := context.Background()

	_, _ = c.GetStore(ctx) // miss
	require.NoError(t, c.SetStore(ctx, testCatalog(), time.Minute))
	_, _ = c.GetStore(ctx) // hit

	stats := c.GetCacheStats(ctx)
	assert.Equal(t, int64(1), stats.TotalHits)
	assert.Equal(t, int64(1), stats.TotalMisses)
	assert.InDelta(t, 0.5, stats.HitRatio, 0.001)
	assert.Equal(t, int64(1), stats.CacheEntries)
}
