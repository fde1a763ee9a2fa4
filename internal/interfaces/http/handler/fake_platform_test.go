package handler

import (
	"context"
	"fmt"
	"sync"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/storefront"
)

// fakePlatform is an in-memory CommercePlatform for handler tests
type fakePlatform struct {
	mu         sync.Mutex
	connected  bool
	connectErr error

	store     *storefront.RawStore
	storeErr  error
	products  map[string]*storefront.RawProduct
	directErr error

	reviewPages map[int]*storefront.RawReviewPage

	settings  *storefront.FormatterSettings
	bannerURL string
}

func newFakePlatform() *fakePlatform {
	return &fakePlatform{
		products:    make(map[string]*storefront.RawProduct),
		reviewPages: make(map[int]*storefront.RawReviewPage),
	}
}

func (p *fakePlatform) Connect(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.connectErr != nil {
		return p.connectErr
	}
	p.connected = true
	return nil
}

func (p *fakePlatform) Connected() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.connected
}

func (p *fakePlatform) GetStore(ctx context.Context) (*storefront.RawStore, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.storeErr != nil {
		return nil, p.storeErr
	}
	if p.store == nil {
		return nil, shared.ErrFetchFailed
	}
	return p.store, nil
}

func (p *fakePlatform) GetProduct(ctx context.Context, idOrSlug string) (*storefront.RawProduct, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.directErr != nil {
		return nil, p.directErr
	}
	if product, ok := p.products[idOrSlug]; ok {
		return product, nil
	}
	return nil, fmt.Errorf("%w: product %q", shared.ErrNotFound, idOrSlug)
}

func (p *fakePlatform) GetProductReviews(ctx context.Context, productID string, page, pageSize int) (*storefront.RawReviewPage, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if rawPage, ok := p.reviewPages[page]; ok {
		return rawPage, nil
	}
	return &storefront.RawReviewPage{}, nil
}

func (p *fakePlatform) GetFormatterSettings(ctx context.Context) (*storefront.FormatterSettings, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.settings == nil {
		return nil, shared.ErrFetchFailed
	}
	return p.settings, nil
}

func (p *fakePlatform) GetStoreBannerURL(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.bannerURL == "" {
		return "", fmt.Errorf("%w: store banner", shared.ErrNotFound)
	}
	return p.bannerURL, nil
}

var _ storefront.CommercePlatform = (*fakePlatform)(nil)
