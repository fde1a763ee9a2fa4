package storefront

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product is the canonical product representation used by the storefront,
// decoupled from whatever shape the commerce platform returns
type Product struct {
	ID          string          `json:"id"`
	Slug        string          `json:"slug"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Price       decimal.Decimal `json:"price"`
	Cost        decimal.Decimal `json:"cost"`
	ImageURL    string          `json:"image_url,omitempty"`
	Variants    []Variant       `json:"variants,omitempty"`
}

// Variant is a purchasable variation of a product
type Variant struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

// Matches reports whether the product is identified by the given key,
// comparing against both ID and slug
func (p *Product) Matches(idOrSlug string) bool {
	if idOrSlug == "" {
		return false
	}
	return strings.EqualFold(p.ID, idOrSlug) || strings.EqualFold(p.Slug, idOrSlug)
}

// DefaultVariant returns the first variant, or nil when the product has none
func (p *Product) DefaultVariant() *Variant {
	if len(p.Variants) == 0 {
		return nil
	}
	return &p.Variants[0]
}

// StoreCatalog is the full product catalog of a store
type StoreCatalog struct {
	StoreID  string    `json:"store_id"`
	Products []Product `json:"products"`
}

// FindProduct scans the catalog for a product matching the given ID or slug
func (c *StoreCatalog) FindProduct(idOrSlug string) *Product {
	for i := range c.Products {
		if c.Products[i].Matches(idOrSlug) {
			return &c.Products[i]
		}
	}
	return nil
}
