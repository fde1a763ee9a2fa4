package storefront

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Raw platform shapes
//
// The commerce platform is an untrusted, best-effort collaborator: fields may
// be missing, nested under wrapper objects, or carry the wrong JSON type.
// These types model that optionality explicitly so the normalizers below can
// be total functions instead of runtime shape probing.
// ---------------------------------------------------------------------------

// RawStore is the store payload as returned by the platform
type RawStore struct {
	ID       string       `json:"id"`
	Name     string       `json:"name"`
	Products []RawProduct `json:"products"`
}

// RawProduct is a product as returned by the platform
type RawProduct struct {
	ID          string       `json:"id"`
	Slug        string       `json:"slug"`
	Handle      string       `json:"handle"`
	Name        string       `json:"name"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Price       FlexDecimal  `json:"price"`
	Cost        FlexDecimal  `json:"cost"`
	Image       string       `json:"image"`
	ImageURL    string       `json:"imageUrl"`
	Variants    []RawVariant `json:"variants"`
}

// RawVariant is a product variant as returned by the platform
type RawVariant struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Price FlexDecimal `json:"price"`
}

// RawReview is a review as returned by the platform
type RawReview struct {
	ID          string      `json:"id"`
	Rating      FlexDecimal `json:"rating"`
	Reason      string      `json:"reason"`
	Comment     string      `json:"comment"`
	DateCreated string      `json:"dateCreated"`
	Reply       string      `json:"reply"`
}

// RawReviewPage is one page of reviews together with the total page count
type RawReviewPage struct {
	Reviews []RawReview `json:"data"`
	Pages   int         `json:"pages"`
}

// RawCartItem is a stored cart line. The productId field historically held
// either a bare product ID or a full wrapper object, so both spellings must
// decode without error.
type RawCartItem struct {
	ProductID CartItemRef `json:"productId"`
	VariantID string      `json:"variantId"`
	Quantity  FlexInt     `json:"quantity"`
}

// CartItemRef is the polymorphic productId field of a stored cart line:
// either a plain string ID or a nested wrapper carrying the whole line
type CartItemRef struct {
	ID        string
	VariantID string
	Quantity  FlexInt
}

// UnmarshalJSON accepts both a string ID and a wrapper object
func (r *CartItemRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		r.ID = id
		return nil
	}

	var wrapper struct {
		ProductID string  `json:"productId"`
		VariantID string  `json:"variantId"`
		Quantity  FlexInt `json:"quantity"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		// Unrecognized shape decodes to the zero ref rather than failing
		return nil
	}
	r.ID = wrapper.ProductID
	r.VariantID = wrapper.VariantID
	r.Quantity = wrapper.Quantity
	return nil
}

// FlexInt decodes a JSON number, numeric string, or null into an int.
// Valid reports whether a usable value was present.
type FlexInt struct {
	Value int
	Valid bool
}

// UnmarshalJSON decodes the flexible integer representations
func (f *FlexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		return nil
	}
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		f.Value = int(n)
		f.Valid = true
	}
	return nil
}

// FlexDecimal decodes a JSON number, numeric string, or null into a decimal.
// Valid reports whether a usable value was present.
type FlexDecimal struct {
	Value decimal.Decimal
	Valid bool
}

// UnmarshalJSON decodes the flexible decimal representations
func (f *FlexDecimal) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "" || s == "null" {
		return nil
	}
	s = strings.Trim(s, `"`)
	if s == "" {
		return nil
	}
	if d, err := decimal.NewFromString(s); err == nil {
		f.Value = d
		f.Valid = true
	}
	return nil
}

// Float64 returns the decimal as a float, or 0 when absent
func (f FlexDecimal) Float64() float64 {
	if !f.Valid {
		return 0
	}
	v, _ := f.Value.Float64()
	return v
}
