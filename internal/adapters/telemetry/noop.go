package telemetry

import (
	"context"
	"time"

	"go.trai.ch/fnrepo/internal/core/ports"
)

var (
	_ ports.Tracer  = (*NoOpTracer)(nil)
	_ ports.Span    = (*NoOpSpan)(nil)
	_ ports.Metrics = (*NoOpMetrics)(nil)
)

// NoOpTracer is a no-op implementation of ports.Tracer.
type NoOpTracer struct{}

// NewNoOpTracer creates a new NoOpTracer.
func NewNoOpTracer() *NoOpTracer {
	return &NoOpTracer{}
}

// Start creates a new no-op span.
func (t *NoOpTracer) Start(ctx context.Context, _ string, _ ...ports.SpanOption) (context.Context, ports.Span) {
	return ctx, &NoOpSpan{}
}

// EmitPlan does nothing.
func (t *NoOpTracer) EmitPlan(_ context.Context, _ []string) {}

// NoOpSpan is a no-op implementation of ports.Span.
type NoOpSpan struct{}

// End does nothing.
func (s *NoOpSpan) End() {}

// RecordError does nothing.
func (s *NoOpSpan) RecordError(_ error) {}

// SetAttribute does nothing.
func (s *NoOpSpan) SetAttribute(_ string, _ any) {}

// NoOpMetrics discards every measurement.
type NoOpMetrics struct{}

// NewNoOpMetrics creates a new NoOpMetrics.
func NewNoOpMetrics() *NoOpMetrics {
	return &NoOpMetrics{}
}

// RecordHit does nothing.
func (m *NoOpMetrics) RecordHit(_ context.Context, _ string) {}

// RecordMiss does nothing.
func (m *NoOpMetrics) RecordMiss(_ context.Context, _ string) {}

// RecordSalvaged does nothing.
func (m *NoOpMetrics) RecordSalvaged(_ context.Context, _ string, _ int) {}

// RecordCompile does nothing.
func (m *NoOpMetrics) RecordCompile(_ context.Context, _ string, _ time.Duration, _ error) {}

// RecordEviction does nothing.
func (m *NoOpMetrics) RecordEviction(_ context.Context, _ int) {}

// RecordInvalidation does nothing.
func (m *NoOpMetrics) RecordInvalidation(_ context.Context) {}
