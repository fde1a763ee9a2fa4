package storefront

import (
	"context"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/storefront"
)

// Formatter renders a money amount for display
type Formatter interface {
	// Format renders the amount with the currency symbol
	Format(amount decimal.Decimal) string
	// CurrencyCode returns the ISO 4217 code the formatter renders in
	CurrencyCode() string
}

// moneyFormatter formats amounts with golang.org/x/text locale data
type moneyFormatter struct {
	unit    currency.Unit
	printer *message.Printer
}

// NewMoneyFormatter builds a locale-aware formatter for the given ISO 4217
// currency code and BCP 47 locale
func NewMoneyFormatter(currencyCode, locale string) (Formatter, error) {
	unit, err := currency.ParseISO(currencyCode)
	if err != nil {
		return nil, fmt.Errorf("formatter: invalid currency %q: %w", currencyCode, err)
	}
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("formatter: invalid locale %q: %w", locale, err)
	}
	return &moneyFormatter{
		unit:    unit,
		printer: message.NewPrinter(tag),
	}, nil
}

func (f *moneyFormatter) Format(amount decimal.Decimal) string {
	return f.printer.Sprint(currency.Symbol(f.unit.Amount(amount.InexactFloat64())))
}

func (f *moneyFormatter) CurrencyCode() string {
	return f.unit.String()
}

// codeFormatter is the fallback when no locale data is usable: it prints the
// code next to the plain amount
type codeFormatter struct {
	code string
}

func (f *codeFormatter) Format(amount decimal.Decimal) string {
	return f.code + " " + amount.StringFixed(2)
}

func (f *codeFormatter) CurrencyCode() string {
	return f.code
}

// FormatterSubscriber receives the formatter that replaced the default one
type FormatterSubscriber func(Formatter)

// FormatterService hands out a money formatter that is immediately usable.
// Callers start with a default built from static configuration; the store's
// authoritative settings are fetched from the platform at most once, and when
// they arrive the formatter is swapped and subscribers are notified in
// subscription order. A failed fetch degrades silently to the default.
type FormatterService struct {
	platform storefront.CommercePlatform
	bus      shared.EventPublisher
	logger   *zap.Logger

	fetchGroup singleflight.Group

	mu          sync.Mutex
	current     Formatter
	updated     bool
	attempted   bool
	nextID      int
	order       []int
	subscribers map[int]FormatterSubscriber
}

// NewFormatterService creates a formatter service with a default formatter
// for the given currency and locale
func NewFormatterService(platform storefront.CommercePlatform, bus shared.EventPublisher, defaultCurrency, defaultLocale string, logger *zap.Logger) *FormatterService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FormatterService{
		platform:    platform,
		bus:         bus,
		logger:      logger,
		current:     buildFormatter(defaultCurrency, defaultLocale, logger),
		subscribers: make(map[int]FormatterSubscriber),
	}
}

// buildFormatter constructs the best formatter the inputs allow
func buildFormatter(currencyCode, locale string, logger *zap.Logger) Formatter {
	if currencyCode == "" {
		currencyCode = "USD"
	}
	if locale == "" {
		locale = "en-US"
	}
	f, err := NewMoneyFormatter(currencyCode, locale)
	if err != nil {
		logger.Warn("falling back to plain money formatting", zap.Error(err))
		return &codeFormatter{code: currencyCode}
	}
	return f
}

// Current returns the formatter to use right now. It never blocks and never
// returns nil.
func (s *FormatterService) Current() Formatter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Refresh fetches the store's formatter settings from the platform. Only the
// first call performs the fetch; concurrent callers join it and later callers
// return immediately. Errors are absorbed: the default formatter stays in
// place and the platform is not asked again.
func (s *FormatterService) Refresh(ctx context.Context) {
	s.mu.Lock()
	if s.attempted {
		s.mu.Unlock()
		return
	}
	s.mu.Unlock()

	s.fetchGroup.Do("settings", func() (any, error) {
		s.mu.Lock()
		if s.attempted {
			s.mu.Unlock()
			return nil, nil
		}
		s.attempted = true
		s.mu.Unlock()

		settings, err := s.platform.GetFormatterSettings(ctx)
		if err != nil {
			s.logger.Warn("formatter settings unavailable, keeping default", zap.Error(err))
			return nil, nil
		}
		s.apply(ctx, settings)
		return nil, nil
	})
}

// Subscribe registers a callback for the authoritative formatter and returns
// a cancel function. When the swap already happened the callback fires
// synchronously and is not retained.
func (s *FormatterService) Subscribe(fn FormatterSubscriber) func() {
	if fn == nil {
		return func() {}
	}

	s.mu.Lock()
	if s.updated {
		current := s.current
		s.mu.Unlock()
		fn(current)
		return func() {}
	}

	id := s.nextID
	s.nextID++
	s.order = append(s.order, id)
	s.subscribers[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

func (s *FormatterService) apply(ctx context.Context, settings *storefront.FormatterSettings) {
	formatter := buildFormatter(settings.CurrencyCode, settings.Locale, s.logger)

	s.mu.Lock()
	s.current = formatter
	s.updated = true
	notify := make([]FormatterSubscriber, 0, len(s.subscribers))
	for _, id := range s.order {
		if fn, ok := s.subscribers[id]; ok {
			notify = append(notify, fn)
		}
	}
	s.order = nil
	s.subscribers = make(map[int]FormatterSubscriber)
	s.mu.Unlock()

	s.logger.Info("money formatter updated",
		zap.String("currency", formatter.CurrencyCode()))

	for _, fn := range notify {
		fn(formatter)
	}

	if s.bus != nil {
		if err := s.bus.Publish(ctx, storefront.NewFormatterUpdatedEvent(formatter.CurrencyCode())); err != nil {
			s.logger.Warn("failed to publish formatter updated event", zap.Error(err))
		}
	}
}
