package dto

import (
	appstorefront "github.com/storefront/backend/internal/application/storefront"
	"github.com/storefront/backend/internal/domain/storefront"
)

// VariantResponse is a product variant in API responses
type VariantResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Price          string `json:"price"`
	FormattedPrice string `json:"formatted_price"`
}

// ProductResponse is a product in API responses. Prices are decimal strings
// plus a display-formatted rendering in the store currency.
type ProductResponse struct {
	ID             string            `json:"id"`
	Slug           string            `json:"slug"`
	Name           string            `json:"name"`
	Description    string            `json:"description,omitempty"`
	Price          string            `json:"price"`
	FormattedPrice string            `json:"formatted_price"`
	ImageURL       string            `json:"image_url,omitempty"`
	Variants       []VariantResponse `json:"variants,omitempty"`
}

// StoreResponse is the store catalog in API responses
type StoreResponse struct {
	StoreID   string            `json:"store_id"`
	BannerURL string            `json:"banner_url,omitempty"`
	Currency  string            `json:"currency"`
	Products  []ProductResponse `json:"products"`
}

// ReviewFeedResponse is the accumulated review feed for one product
type ReviewFeedResponse struct {
	ProductID string                 `json:"product_id"`
	Reviews   []storefront.Review    `json:"reviews"`
	Stats     storefront.ReviewStats `json:"stats"`
	Loading   bool                   `json:"loading"`
}

// CartQuoteRequest is the body of a cart quote request. Items are accepted
// in the raw stored-cart shape, malformed lines included.
type CartQuoteRequest struct {
	Items []storefront.RawCartItem `json:"items"`
}

// QuoteLineResponse is one priced cart line in API responses
type QuoteLineResponse struct {
	ProductID      string `json:"product_id"`
	VariantID      string `json:"variant_id,omitempty"`
	ProductName    string `json:"product_name"`
	VariantName    string `json:"variant_name,omitempty"`
	Quantity       int    `json:"quantity"`
	UnitPrice      string `json:"unit_price"`
	LineTotal      string `json:"line_total"`
	FormattedTotal string `json:"formatted_total"`
}

// UnresolvedLineResponse is a cart line that could not be priced
type UnresolvedLineResponse struct {
	ProductID string `json:"product_id,omitempty"`
	VariantID string `json:"variant_id,omitempty"`
	Quantity  int    `json:"quantity"`
	Reason    string `json:"reason"`
}

// CartQuoteResponse is the priced cart in API responses
type CartQuoteResponse struct {
	Lines             []QuoteLineResponse      `json:"lines"`
	Unresolved        []UnresolvedLineResponse `json:"unresolved,omitempty"`
	Subtotal          string                   `json:"subtotal"`
	FormattedSubtotal string                   `json:"formatted_subtotal"`
	Currency          string                   `json:"currency"`
}

// HealthResponse reports service and platform health
type HealthResponse struct {
	Status   string                `json:"status"`
	Platform PlatformHealth        `json:"platform"`
	Cache    storefront.CacheStats `json:"cache"`
}

// PlatformHealth is the commerce platform's readiness in health responses
type PlatformHealth struct {
	Ready bool   `json:"ready"`
	Error string `json:"error,omitempty"`
}

// FromProduct converts a domain product for the API, formatting prices with
// the given formatter
func FromProduct(p *storefront.Product, formatter appstorefront.Formatter) ProductResponse {
	resp := ProductResponse{
		ID:             p.ID,
		Slug:           p.Slug,
		Name:           p.Name,
		Description:    p.Description,
		Price:          p.Price.String(),
		FormattedPrice: formatter.Format(p.Price),
		ImageURL:       p.ImageURL,
	}
	for _, v := range p.Variants {
		resp.Variants = append(resp.Variants, VariantResponse{
			ID:             v.ID,
			Name:           v.Name,
			Price:          v.Price.String(),
			FormattedPrice: formatter.Format(v.Price),
		})
	}
	return resp
}

// FromCatalog converts the store catalog for the API
func FromCatalog(catalog *storefront.StoreCatalog, bannerURL string, formatter appstorefront.Formatter) StoreResponse {
	resp := StoreResponse{
		StoreID:   catalog.StoreID,
		BannerURL: bannerURL,
		Currency:  formatter.CurrencyCode(),
		Products:  make([]ProductResponse, 0, len(catalog.Products)),
	}
	for i := range catalog.Products {
		resp.Products = append(resp.Products, FromProduct(&catalog.Products[i], formatter))
	}
	return resp
}

// FromReviewFeed converts a review feed snapshot for the API
func FromReviewFeed(feed *appstorefront.ReviewFeed) ReviewFeedResponse {
	return ReviewFeedResponse{
		ProductID: feed.ProductID,
		Reviews:   feed.Reviews,
		Stats:     feed.Stats,
		Loading:   feed.Loading,
	}
}

// FromCartQuote converts a cart quote for the API
func FromCartQuote(quote *appstorefront.CartQuote) CartQuoteResponse {
	resp := CartQuoteResponse{
		Lines:             make([]QuoteLineResponse, 0, len(quote.Lines)),
		Subtotal:          quote.Subtotal.String(),
		FormattedSubtotal: quote.FormattedSubtotal,
		Currency:          quote.Currency,
	}
	for _, line := range quote.Lines {
		resp.Lines = append(resp.Lines, QuoteLineResponse{
			ProductID:      line.Item.ProductID,
			VariantID:      line.Item.VariantID,
			ProductName:    line.ProductName,
			VariantName:    line.VariantName,
			Quantity:       line.Item.Quantity,
			UnitPrice:      line.UnitPrice.String(),
			LineTotal:      line.LineTotal.String(),
			FormattedTotal: line.FormattedTotal,
		})
	}
	for _, u := range quote.Unresolved {
		resp.Unresolved = append(resp.Unresolved, UnresolvedLineResponse{
			ProductID: u.Item.ProductID,
			VariantID: u.Item.VariantID,
			Quantity:  u.Item.Quantity,
			Reason:    u.Reason,
		})
	}
	return resp
}
