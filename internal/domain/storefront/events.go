package storefront

import "github.com/storefront/backend/internal/domain/shared"

// Event types published on the storefront event bus
const (
	EventTypePlatformReady      = "storefront.platform.ready"
	EventTypePlatformLoadFailed = "storefront.platform.load_failed"
	EventTypeFormatterUpdated   = "storefront.formatter.updated"
)

// PlatformReadyEvent signals that the commerce platform handshake completed.
// It is published at most once for the lifetime of the process.
type PlatformReadyEvent struct {
	shared.BaseDomainEvent
	StoreID string `json:"store_id"`
}

// NewPlatformReadyEvent creates a new PlatformReadyEvent
func NewPlatformReadyEvent(storeID string) *PlatformReadyEvent {
	return &PlatformReadyEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlatformReady, "commerce"),
		StoreID:         storeID,
	}
}

// PlatformLoadFailedEvent signals that the commerce platform handshake
// failed. It is published at most once for the lifetime of the process.
type PlatformLoadFailedEvent struct {
	shared.BaseDomainEvent
	Reason string `json:"reason"`
}

// NewPlatformLoadFailedEvent creates a new PlatformLoadFailedEvent
func NewPlatformLoadFailedEvent(reason string) *PlatformLoadFailedEvent {
	return &PlatformLoadFailedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePlatformLoadFailed, "commerce"),
		Reason:          reason,
	}
}

// FormatterUpdatedEvent signals that the authoritative money formatter
// replaced the default one
type FormatterUpdatedEvent struct {
	shared.BaseDomainEvent
	CurrencyCode string `json:"currency_code"`
}

// NewFormatterUpdatedEvent creates a new FormatterUpdatedEvent
func NewFormatterUpdatedEvent(currencyCode string) *FormatterUpdatedEvent {
	return &FormatterUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeFormatterUpdated, "formatter"),
		CurrencyCode:    currencyCode,
	}
}
