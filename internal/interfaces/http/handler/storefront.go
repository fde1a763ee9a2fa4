package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appstorefront "github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/infrastructure/logger"
	"github.com/storefront/backend/internal/interfaces/http/dto"
)

// StorefrontHandler serves the storefront read API and cart quoting
type StorefrontHandler struct {
	BaseHandler
	catalog   *appstorefront.CatalogService
	reviews   *appstorefront.ReviewService
	cart      *appstorefront.CartService
	formatter *appstorefront.FormatterService
}

// NewStorefrontHandler creates a new storefront handler
func NewStorefrontHandler(
	catalog *appstorefront.CatalogService,
	reviews *appstorefront.ReviewService,
	cart *appstorefront.CartService,
	formatter *appstorefront.FormatterService,
) *StorefrontHandler {
	return &StorefrontHandler{
		catalog:   catalog,
		reviews:   reviews,
		cart:      cart,
		formatter: formatter,
	}
}

// RegisterRoutes registers storefront routes
func (h *StorefrontHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/store", h.GetStore)
	rg.GET("/products/:idOrSlug", h.GetProduct)
	rg.GET("/products/:idOrSlug/reviews", h.GetReviews)
	rg.POST("/cart/quote", h.QuoteCart)
}

// GetStore returns the store catalog with display-formatted prices
func (h *StorefrontHandler) GetStore(c *gin.Context) {
	ctx := c.Request.Context()

	catalog, err := h.catalog.GetStore(ctx)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	// The formatter settings ride along with the first catalog read
	h.formatter.Refresh(ctx)

	// Banner is cosmetic; its absence never fails the store payload
	bannerURL, err := h.catalog.BannerURL(ctx)
	if err != nil {
		logger.GetGinLogger(c).Warn("banner lookup failed", zap.Error(err))
		bannerURL = ""
	}

	h.Success(c, dto.FromCatalog(catalog, bannerURL, h.formatter.Current()))
}

// GetProduct returns one product by ID or slug
func (h *StorefrontHandler) GetProduct(c *gin.Context) {
	ctx := c.Request.Context()

	product, err := h.catalog.GetProduct(ctx, c.Param("idOrSlug"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.formatter.Refresh(ctx)
	h.Success(c, dto.FromProduct(product, h.formatter.Current()))
}

// GetReviews returns the accumulated review feed for a product. Requesting
// page 1 (or omitting the page) starts the feed over; a higher page loads
// every page up to the requested one on top of what is already there.
func (h *StorefrontHandler) GetReviews(c *gin.Context) {
	productID := c.Param("idOrSlug")

	page := 1
	if raw := c.Query("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			h.BadRequest(c, "page must be a positive integer")
			return
		}
		page = parsed
	}

	feed, err := h.reviews.Load(c.Request.Context(), productID, page)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, dto.FromReviewFeed(feed), feed.Page, feed.TotalPages)
}

// QuoteCart normalizes and prices the posted cart lines
func (h *StorefrontHandler) QuoteCart(c *gin.Context) {
	var req dto.CartQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidJSON, "request body is not valid JSON")
		return
	}

	quote, err := h.cart.Quote(c.Request.Context(), req.Items)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.FromCartQuote(quote))
}
