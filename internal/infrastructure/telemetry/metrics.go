// Package telemetry provides OpenTelemetry instrumentation for the
// storefront data-access layer. Only the OTel API is used; exporter wiring
// belongs to the deployment, so without an SDK installed every instrument
// is a no-op.
package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const scopeName = "github.com/storefront/backend"

// Tracer returns the tracer for storefront spans
func Tracer() trace.Tracer {
	return otel.Tracer(scopeName)
}

// Metrics holds the storefront instruments
type Metrics struct {
	cacheHits      metric.Int64Counter
	cacheMisses    metric.Int64Counter
	platformCalls  metric.Int64Counter
	reviewPages    metric.Int64Counter
	platformTiming metric.Float64Histogram
}

// NewMetrics creates the storefront instruments on the global meter provider
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter(scopeName)

	m := &Metrics{}
	var err error

	if m.cacheHits, err = meter.Int64Counter(
		"storefront_cache_hits_total",
		metric.WithDescription("Catalog cache hits"),
	); err != nil {
		return nil, err
	}

	if m.cacheMisses, err = meter.Int64Counter(
		"storefront_cache_misses_total",
		metric.WithDescription("Catalog cache misses"),
	); err != nil {
		return nil, err
	}

	if m.platformCalls, err = meter.Int64Counter(
		"storefront_platform_calls_total",
		metric.WithDescription("Remote commerce platform calls by operation and outcome"),
	); err != nil {
		return nil, err
	}

	if m.reviewPages, err = meter.Int64Counter(
		"storefront_review_pages_total",
		metric.WithDescription("Review pages fetched"),
	); err != nil {
		return nil, err
	}

	if m.platformTiming, err = meter.Float64Histogram(
		"storefront_platform_call_duration_seconds",
		metric.WithDescription("Remote commerce platform call latency"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordCacheHit increments the cache hit counter for a cache name
func (m *Metrics) RecordCacheHit(ctx context.Context, cache string) {
	if m == nil {
		return
	}
	m.cacheHits.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", cache)))
}

// RecordCacheMiss increments the cache miss counter for a cache name
func (m *Metrics) RecordCacheMiss(ctx context.Context, cache string) {
	if m == nil {
		return
	}
	m.cacheMisses.Add(ctx, 1, metric.WithAttributes(attribute.String("cache", cache)))
}

// RecordPlatformCall records one remote call with its outcome and latency
func (m *Metrics) RecordPlatformCall(ctx context.Context, operation string, success bool, seconds float64) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("success", success),
	)
	m.platformCalls.Add(ctx, 1, attrs)
	m.platformTiming.Record(ctx, seconds, attrs)
}

// RecordReviewPage records one fetched review page
func (m *Metrics) RecordReviewPage(ctx context.Context, page int) {
	if m == nil {
		return
	}
	m.reviewPages.Add(ctx, 1, metric.WithAttributes(attribute.Int("page", page)))
}
