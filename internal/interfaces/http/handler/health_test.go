package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/backend/internal/domain/storefront"
)

func TestHealth_Starting(t *testing.T) {
	env := newTestEnv(t)

	w, resp := env.request(t, "GET", "/api/v1/healthz", "")

	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, resp)
	assert.Equal(t, "starting", data["status"])

	platform := data["platform"].(map[string]any)
	assert.Equal(t, false, platform["ready"])
}

func TestHealth_Ok(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.bus.Publish(context.Background(), storefront.NewPlatformReadyEvent("store-1")))

	w, resp := env.request(t, "GET", "/api/v1/healthz", "")

	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, resp)
	assert.Equal(t, "ok", data["status"])

	platform := data["platform"].(map[string]any)
	assert.Equal(t, true, platform["ready"])
}

func TestHealth_Degraded(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.bus.Publish(context.Background(), storefront.NewPlatformLoadFailedEvent("handshake timed out")))

	w, resp := env.request(t, "GET", "/api/v1/healthz", "")

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	data := dataMap(t, resp)
	assert.Equal(t, "degraded", data["status"])

	platform := data["platform"].(map[string]any)
	assert.Equal(t, false, platform["ready"])
	assert.Contains(t, platform["error"], "handshake timed out")
}

func TestHealth_ReportsCacheStats(t *testing.T) {
	env := newTestEnv(t)
	require.NoError(t, env.bus.Publish(context.Background(), storefront.NewPlatformReadyEvent("store-1")))

	// A store read populates the catalog cache
	env.request(t, "GET", "/api/v1/store", "")
	env.request(t, "GET", "/api/v1/store", "")

	w, resp := env.request(t, "GET", "/api/v1/healthz", "")

	require.Equal(t, http.StatusOK, w.Code)
	data := dataMap(t, resp)
	cacheStats := data["cache"].(map[string]any)
	assert.GreaterOrEqual(t, cacheStats["total_hits"], float64(1))
}
