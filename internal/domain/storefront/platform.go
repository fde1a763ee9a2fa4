package storefront

import "context"

// CommercePlatform is the port to the opaque remote commerce platform.
// Every call is best-effort: a missing capability, a non-success response,
// or a transport failure surfaces as a tagged error, never as a panic.
type CommercePlatform interface {
	// Connect performs the one-time platform handshake. Concurrent callers
	// join the same in-flight attempt; a completed handshake makes Connect
	// return immediately. A failed attempt may be retried by calling again.
	Connect(ctx context.Context) error

	// Connected reports whether the handshake has completed successfully
	Connected() bool

	// GetStore fetches the full store payload
	GetStore(ctx context.Context) (*RawStore, error)

	// GetProduct looks a product up by ID or slug. Returns ErrUnsupported
	// when the platform exposes no direct lookup, ErrNotFound when the
	// lookup ran but matched nothing.
	GetProduct(ctx context.Context, idOrSlug string) (*RawProduct, error)

	// GetProductReviews fetches one page of reviews for a product. pageSize
	// is how many reviews the page carries; zero or negative leaves the
	// platform default in place.
	GetProductReviews(ctx context.Context, productID string, page, pageSize int) (*RawReviewPage, error)

	// GetFormatterSettings fetches the store's money formatting settings
	GetFormatterSettings(ctx context.Context) (*FormatterSettings, error)

	// GetStoreBannerURL fetches the store banner image URL
	GetStoreBannerURL(ctx context.Context) (string, error)
}

// FormatterSettings is the backend-configured currency/locale pair used to
// build the authoritative money formatter
type FormatterSettings struct {
	CurrencyCode string `json:"currency"`
	Locale       string `json:"locale"`
}

// ReadinessState is the observable availability of the commerce platform
type ReadinessState struct {
	Ready bool
	Err   error
}

// Resolved reports whether the state reached a terminal outcome
func (s ReadinessState) Resolved() bool {
	return s.Ready || s.Err != nil
}
