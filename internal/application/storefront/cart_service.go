package storefront

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/storefront"
)

// QuoteLine is one priced cart line
type QuoteLine struct {
	Item           storefront.CartLineItem `json:"item"`
	ProductName    string                  `json:"product_name"`
	VariantName    string                  `json:"variant_name,omitempty"`
	UnitPrice      decimal.Decimal         `json:"unit_price"`
	LineTotal      decimal.Decimal         `json:"line_total"`
	FormattedTotal string                  `json:"formatted_total"`
}

// UnresolvedLine is a cart line that could not be priced, kept so callers
// can surface it instead of silently dropping it
type UnresolvedLine struct {
	Item   storefront.CartLineItem `json:"item"`
	Reason string                  `json:"reason"`
}

// CartQuote is the priced result of a cart
type CartQuote struct {
	Lines             []QuoteLine      `json:"lines"`
	Unresolved        []UnresolvedLine `json:"unresolved,omitempty"`
	Subtotal          decimal.Decimal  `json:"subtotal"`
	FormattedSubtotal string           `json:"formatted_subtotal"`
	Currency          string           `json:"currency"`
}

// CartService prices carts. Incoming lines pass through cart normalization
// first, so legacy nested product references and malformed quantities price
// the same as clean ones.
type CartService struct {
	catalog   *CatalogService
	formatter *FormatterService
	logger    *zap.Logger
}

// NewCartService creates a new cart service
func NewCartService(catalog *CatalogService, formatter *FormatterService, logger *zap.Logger) *CartService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CartService{
		catalog:   catalog,
		formatter: formatter,
		logger:    logger,
	}
}

// Quote normalizes and prices the given cart lines. Lines referencing
// unknown products are reported as unresolved rather than failing the whole
// quote; only platform breakdown aborts it.
func (s *CartService) Quote(ctx context.Context, rawItems []storefront.RawCartItem) (*CartQuote, error) {
	if len(rawItems) == 0 {
		return nil, fmt.Errorf("%w: cart is empty", shared.ErrInvalidInput)
	}

	formatter := s.formatter.Current()
	quote := &CartQuote{
		Lines:    make([]QuoteLine, 0, len(rawItems)),
		Subtotal: decimal.Zero,
		Currency: formatter.CurrencyCode(),
	}

	for _, raw := range rawItems {
		item := storefront.NormalizeCartItem(raw)
		if item.ProductID == "" {
			quote.Unresolved = append(quote.Unresolved, UnresolvedLine{
				Item:   item,
				Reason: "missing product reference",
			})
			continue
		}

		product, err := s.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			if shared.IsNotFound(err) {
				quote.Unresolved = append(quote.Unresolved, UnresolvedLine{
					Item:   item,
					Reason: "product not found",
				})
				continue
			}
			return nil, err
		}

		unitPrice, variantName := resolvePrice(product, item.VariantID)
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
		quote.Lines = append(quote.Lines, QuoteLine{
			Item:           item,
			ProductName:    product.Name,
			VariantName:    variantName,
			UnitPrice:      unitPrice,
			LineTotal:      lineTotal,
			FormattedTotal: formatter.Format(lineTotal),
		})
		quote.Subtotal = quote.Subtotal.Add(lineTotal)
	}

	quote.FormattedSubtotal = formatter.Format(quote.Subtotal)

	s.logger.Debug("cart quoted",
		zap.Int("lines", len(quote.Lines)),
		zap.Int("unresolved", len(quote.Unresolved)),
		zap.String("subtotal", quote.Subtotal.String()))
	return quote, nil
}

// resolvePrice picks the price for the requested variant, falling back to
// the default variant and then the product itself
func resolvePrice(product *storefront.Product, variantID string) (decimal.Decimal, string) {
	if variantID != "" {
		for i := range product.Variants {
			if strings.EqualFold(product.Variants[i].ID, variantID) {
				return product.Variants[i].Price, product.Variants[i].Name
			}
		}
	}
	if v := product.DefaultVariant(); v != nil {
		return v.Price, v.Name
	}
	return product.Price, ""
}
