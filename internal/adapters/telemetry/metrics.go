package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.trai.ch/fnrepo/internal/core/ports"
	"go.trai.ch/zerr"
)

// Instrument names.
const (
	MetricCacheHits          = "fnrepo.cache.hits"
	MetricCacheMisses        = "fnrepo.cache.misses"
	MetricCacheSalvaged      = "fnrepo.cache.salvaged"
	MetricCacheEvictions     = "fnrepo.cache.evictions"
	MetricCacheInvalidations = "fnrepo.cache.invalidations"
	MetricCompileTotal       = "fnrepo.compile.total"
	MetricCompileFailures    = "fnrepo.compile.failures"
	MetricCompileDuration    = "fnrepo.compile.duration_ms"
)

var _ ports.Metrics = (*OTelMetrics)(nil)

// OTelMetrics implements ports.Metrics with OpenTelemetry instruments.
type OTelMetrics struct {
	hits            metric.Int64Counter
	misses          metric.Int64Counter
	salvaged        metric.Int64Counter
	evictions       metric.Int64Counter
	invalidations   metric.Int64Counter
	compiles        metric.Int64Counter
	compileFailures metric.Int64Counter
	compileDuration metric.Float64Histogram
}

// NewOTelMetrics creates the instruments on the global meter provider.
func NewOTelMetrics() (*OTelMetrics, error) {
	return NewOTelMetricsFrom(otel.GetMeterProvider().Meter(InstrumentationName))
}

// NewOTelMetricsFrom creates the instruments on the given meter.
func NewOTelMetricsFrom(meter metric.Meter) (*OTelMetrics, error) {
	m := &OTelMetrics{}
	var err error

	counters := []struct {
		dst  *metric.Int64Counter
		name string
		desc string
	}{
		{&m.hits, MetricCacheHits, "Resolves answered from the cache"},
		{&m.misses, MetricCacheMisses, "Resolves that required a build"},
		{&m.salvaged, MetricCacheSalvaged, "Artifacts reused from neighbouring results"},
		{&m.evictions, MetricCacheEvictions, "Results evicted by the size bound"},
		{&m.invalidations, MetricCacheInvalidations, "Cache clears caused by a registry revision change"},
		{&m.compiles, MetricCompileTotal, "Definition compilations attempted"},
		{&m.compileFailures, MetricCompileFailures, "Definition compilations that failed"},
	}
	for _, c := range counters {
		*c.dst, err = meter.Int64Counter(c.name, metric.WithDescription(c.desc))
		if err != nil {
			return nil, zerr.With(zerr.Wrap(err, "failed to create counter"), "instrument", c.name)
		}
	}

	m.compileDuration, err = meter.Float64Histogram(
		MetricCompileDuration,
		metric.WithDescription("Duration of a single definition compilation"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create histogram"), "instrument", MetricCompileDuration)
	}

	return m, nil
}

// RecordHit counts a cache hit.
func (m *OTelMetrics) RecordHit(ctx context.Context, registry string) {
	m.hits.Add(ctx, 1, metric.WithAttributes(attribute.String("registry", registry)))
}

// RecordMiss counts a cache miss.
func (m *OTelMetrics) RecordMiss(ctx context.Context, registry string) {
	m.misses.Add(ctx, 1, metric.WithAttributes(attribute.String("registry", registry)))
}

// RecordSalvaged counts artifacts reused from neighbouring results.
func (m *OTelMetrics) RecordSalvaged(ctx context.Context, registry string, n int) {
	if n <= 0 {
		return
	}
	m.salvaged.Add(ctx, int64(n), metric.WithAttributes(attribute.String("registry", registry)))
}

// RecordCompile records one compilation and its outcome.
func (m *OTelMetrics) RecordCompile(ctx context.Context, definitionID string, d time.Duration, err error) {
	attrs := metric.WithAttributes(attribute.String("definition", definitionID))
	m.compiles.Add(ctx, 1, attrs)
	m.compileDuration.Record(ctx, float64(d)/float64(time.Millisecond), attrs)
	if err != nil {
		m.compileFailures.Add(ctx, 1, attrs)
	}
}

// RecordEviction counts evicted results.
func (m *OTelMetrics) RecordEviction(ctx context.Context, n int) {
	if n <= 0 {
		return
	}
	m.evictions.Add(ctx, int64(n))
}

// RecordInvalidation counts a revision-driven cache clear.
func (m *OTelMetrics) RecordInvalidation(ctx context.Context) {
	m.invalidations.Add(ctx, 1)
}
