package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appstorefront "github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// HealthHandler reports service health and platform readiness
type HealthHandler struct {
	BaseHandler
	gate    *appstorefront.ReadinessGate
	catalog *appstorefront.CatalogService
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(gate *appstorefront.ReadinessGate, catalog *appstorefront.CatalogService) *HealthHandler {
	return &HealthHandler{
		gate:    gate,
		catalog: catalog,
	}
}

// RegisterRoutes registers health routes
func (h *HealthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/healthz", h.Health)
}

// Health returns 200 while the platform is reachable or still connecting,
// and 503 once the platform handshake has definitively failed
func (h *HealthHandler) Health(c *gin.Context) {
	state := h.gate.State()

	resp := dto.HealthResponse{
		Status: "starting",
		Platform: dto.PlatformHealth{
			Ready: state.Ready,
		},
		Cache: h.catalog.CacheStats(c.Request.Context()),
	}

	status := http.StatusOK
	switch {
	case state.Ready:
		resp.Status = "ok"
	case state.Err != nil:
		resp.Status = "degraded"
		resp.Platform.Error = state.Err.Error()
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, dto.NewSuccessResponse(resp))
}
