package storefront

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/storefront"
)

// defaultReviewPageSize is how many reviews each platform page carries when
// no page size is configured
const defaultReviewPageSize = 10

// ReviewFeed is a point-in-time snapshot of the loaded reviews for one
// product
type ReviewFeed struct {
	ProductID  string                 `json:"product_id"`
	Reviews    []storefront.Review    `json:"reviews"`
	Stats      storefront.ReviewStats `json:"stats"`
	Loading    bool                   `json:"loading"`
	Page       int                    `json:"page"`
	TotalPages int                    `json:"total_pages"`
}

// HasMore reports whether another page can be loaded
func (f *ReviewFeed) HasMore() bool {
	return f.Page < f.TotalPages
}

// reviewState is the mutable per-product feed. While loading is set a fetch
// owns the feed and every other Load/LoadMore for the product is a no-op
// that returns the current snapshot. seq increases with every fetch or
// Reset; a response only applies when seq is still the one it was issued
// under, so a Reset mid-flight discards the superseded result.
type reviewState struct {
	seq        uint64
	loading    bool
	reviews    []storefront.Review
	page       int
	totalPages int
}

// ReviewService loads product reviews page by page. Each product has its own
// feed; Load(page 1) starts the feed over, higher pages accumulate onto it,
// and LoadMore appends the page after the last loaded one. Calls for a
// product whose fetch is still in flight are ignored.
type ReviewService struct {
	platform storefront.CommercePlatform
	logger   *zap.Logger
	pageSize int

	mu     sync.Mutex
	states map[string]*reviewState
}

// ReviewServiceOption is a functional option for configuring the service
type ReviewServiceOption func(*ReviewService)

// WithReviewPageSize sets how many reviews each platform page carries
func WithReviewPageSize(size int) ReviewServiceOption {
	return func(s *ReviewService) {
		if size > 0 {
			s.pageSize = size
		}
	}
}

// NewReviewService creates a new review service
func NewReviewService(platform storefront.CommercePlatform, logger *zap.Logger, opts ...ReviewServiceOption) *ReviewService {
	if logger == nil {
		logger = zap.NewNop()
	}
	svc := &ReviewService{
		platform: platform,
		logger:   logger,
		pageSize: defaultReviewPageSize,
		states:   make(map[string]*reviewState),
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Load brings the product's feed to the requested page. Page 1 starts the
// feed over; a higher page accumulates every page from the last loaded one
// up to the requested page, stopping early when the feed runs out. Pages
// already loaded are not refetched. While a fetch for the product is in
// flight the call is a no-op returning the current snapshot.
func (s *ReviewService) Load(ctx context.Context, productID string, page int) (*ReviewFeed, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("%w: product ID is required", shared.ErrInvalidInput)
	}
	if page < 1 {
		return nil, fmt.Errorf("%w: page must be >= 1, got %d", shared.ErrInvalidInput, page)
	}
	if err := s.platform.Connect(ctx); err != nil {
		return nil, err
	}

	if page == 1 {
		s.mu.Lock()
		state := s.stateLocked(productID)
		if state.loading {
			feed := s.snapshotLocked(productID, state)
			s.mu.Unlock()
			return feed, nil
		}
		state.loading = true
		state.seq++
		seq := state.seq
		s.mu.Unlock()

		return s.fetchPage(ctx, productID, seq, 1, true)
	}

	for {
		s.mu.Lock()
		state := s.stateLocked(productID)
		if state.loading ||
			state.page >= page ||
			(state.page > 0 && state.page >= state.totalPages) {
			feed := s.snapshotLocked(productID, state)
			s.mu.Unlock()
			return feed, nil
		}
		next := state.page + 1
		state.loading = true
		state.seq++
		seq := state.seq
		s.mu.Unlock()

		feed, err := s.fetchPage(ctx, productID, seq, next, next == 1)
		if err != nil {
			return nil, err
		}
		if feed.Page != next {
			// Superseded by a Reset while on the wire
			return feed, nil
		}
	}
}

// LoadMore fetches the page after the last loaded one and appends it. When
// a fetch is already in flight, the feed is exhausted, or it was never
// loaded, it returns the current snapshot unchanged.
func (s *ReviewService) LoadMore(ctx context.Context, productID string) (*ReviewFeed, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return nil, fmt.Errorf("%w: product ID is required", shared.ErrInvalidInput)
	}
	if err := s.platform.Connect(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	state := s.stateLocked(productID)
	if state.loading || state.page == 0 || state.page >= state.totalPages {
		feed := s.snapshotLocked(productID, state)
		s.mu.Unlock()
		return feed, nil
	}
	state.loading = true
	state.seq++
	seq := state.seq
	page := state.page + 1
	s.mu.Unlock()

	return s.fetchPage(ctx, productID, seq, page, false)
}

// Feed returns the current snapshot for the product without fetching
func (s *ReviewService) Feed(productID string) *ReviewFeed {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked(productID, s.stateLocked(productID))
}

// Reset drops the product's feed and invalidates any fetch still in flight
func (s *ReviewService) Reset(productID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.stateLocked(productID)
	state.seq++
	state.reviews = nil
	state.page = 0
	state.totalPages = 0
}

func (s *ReviewService) fetchPage(ctx context.Context, productID string, seq uint64, page int, reset bool) (*ReviewFeed, error) {
	rawPage, err := s.platform.GetProductReviews(ctx, productID, page, s.pageSize)
	if err != nil {
		s.mu.Lock()
		s.stateLocked(productID).loading = false
		s.mu.Unlock()
		return nil, err
	}

	reviews := make([]storefront.Review, 0, len(rawPage.Reviews))
	for _, raw := range rawPage.Reviews {
		reviews = append(reviews, storefront.NormalizeReview(raw))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	state := s.stateLocked(productID)
	state.loading = false
	if state.seq != seq {
		// A Reset superseded this fetch; keep the feed as it is now
		s.logger.Debug("discarding stale review page",
			zap.String("product_id", productID),
			zap.Int("page", page))
		return s.snapshotLocked(productID, state), nil
	}

	if reset {
		state.reviews = reviews
	} else {
		state.reviews = append(state.reviews, reviews...)
	}
	state.page = page
	state.totalPages = rawPage.Pages
	return s.snapshotLocked(productID, state), nil
}

// stateLocked returns the product's state, creating it on first use.
// Callers must hold s.mu.
func (s *ReviewService) stateLocked(productID string) *reviewState {
	state, ok := s.states[productID]
	if !ok {
		state = &reviewState{}
		s.states[productID] = state
	}
	return state
}

// snapshotLocked copies the state into an immutable feed. Callers must hold
// s.mu.
func (s *ReviewService) snapshotLocked(productID string, state *reviewState) *ReviewFeed {
	reviews := make([]storefront.Review, len(state.reviews))
	copy(reviews, state.reviews)
	return &ReviewFeed{
		ProductID:  productID,
		Reviews:    reviews,
		Stats:      storefront.ComputeReviewStats(reviews),
		Loading:    state.loading,
		Page:       state.page,
		TotalPages: state.totalPages,
	}
}
