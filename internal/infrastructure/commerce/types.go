package commerce

import (
	"github.com/storefront/backend/internal/domain/storefront"
)

// apiEnvelope is the common wrapper every platform endpoint responds with
type apiEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error,omitempty"`
}

// IsSuccess returns true if the platform accepted the request
func (e *apiEnvelope) IsSuccess() bool {
	return e.Success
}

// handshakeResponse is the response of the session handshake endpoint
type handshakeResponse struct {
	apiEnvelope
	Data *handshakeData `json:"data,omitempty"`
}

type handshakeData struct {
	StoreID    string `json:"storeId"`
	APIVersion string `json:"apiVersion,omitempty"`
}

// storeResponse wraps the full store snapshot
type storeResponse struct {
	apiEnvelope
	Data *storefront.RawStore `json:"data,omitempty"`
}

// productResponse wraps a single product lookup
type productResponse struct {
	apiEnvelope
	Data *storefront.RawProduct `json:"data,omitempty"`
}

// reviewsResponse wraps one page of product reviews.
// Pages sits beside data, not inside it, matching the platform wire format.
type reviewsResponse struct {
	apiEnvelope
	Data  []storefront.RawReview `json:"data,omitempty"`
	Pages int                    `json:"pages,omitempty"`
}

// settingsResponse wraps the store formatter settings
type settingsResponse struct {
	apiEnvelope
	Data *settingsData `json:"data,omitempty"`
}

type settingsData struct {
	CurrencyCode string `json:"currencyCode"`
	Locale       string `json:"locale,omitempty"`
}

// bannerResponse wraps the store banner lookup
type bannerResponse struct {
	apiEnvelope
	Data *bannerData `json:"data,omitempty"`
}

type bannerData struct {
	URL string `json:"url"`
}
