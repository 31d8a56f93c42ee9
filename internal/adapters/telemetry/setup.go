package telemetry

import (
	"context"
	"errors"
	"io"
	"slices"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.trai.ch/fnrepo/internal/adapters/telemetry/progrock"
	"go.trai.ch/fnrepo/internal/core/domain"
	"go.trai.ch/fnrepo/internal/core/ports"
	"go.trai.ch/zerr"
)

// Exporter selects where spans and measurements go.
type Exporter string

const (
	// ExporterNone discards all telemetry.
	ExporterNone Exporter = "none"
	// ExporterStdout writes spans and metrics as JSON.
	ExporterStdout Exporter = "stdout"
	// ExporterLog reports finished spans through the logger.
	ExporterLog Exporter = "log"
	// ExporterProgress records spans as vertices on a progress tape.
	ExporterProgress Exporter = "progress"
)

// Exporters lists the accepted exporter names.
var Exporters = []Exporter{ExporterNone, ExporterStdout, ExporterLog, ExporterProgress}

// ParseExporter validates an exporter name. An empty name selects ExporterNone.
func ParseExporter(name string) (Exporter, error) {
	if name == "" {
		return ExporterNone, nil
	}
	e := Exporter(name)
	if !slices.Contains(Exporters, e) {
		return "", zerr.With(zerr.Wrap(domain.ErrUnknownExporter, "unsupported telemetry exporter"), "exporter", name)
	}
	return e, nil
}

// Settings configures Setup.
type Settings struct {
	Exporter Exporter
	// Writer receives stdout exporter output.
	Writer io.Writer
	// Logger receives span reports for ExporterLog.
	Logger  ports.Logger
	Version string
}

// Providers holds the tracer and metrics of one run.
type Providers struct {
	Tracer   ports.Tracer
	Metrics  ports.Metrics
	shutdown []func(context.Context) error
}

// Shutdown flushes and stops every provider.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs error
	for _, fn := range slices.Backward(p.shutdown) {
		errs = errors.Join(errs, fn(ctx))
	}
	return errs
}

// Setup builds the tracer and metrics for the given settings.
// The global OpenTelemetry providers are left untouched.
func Setup(settings Settings) (*Providers, error) {
	p := &Providers{
		Tracer:  NewNoOpTracer(),
		Metrics: NewNoOpMetrics(),
	}

	res := resource.NewWithAttributes(
		"",
		attribute.String("service.name", "fnrepo"),
		attribute.String("service.version", settings.Version),
	)

	switch settings.Exporter {
	case ExporterNone, "":
	case ExporterStdout:
		traceExp, err := stdouttrace.New(stdouttrace.WithWriter(settings.Writer))
		if err != nil {
			return nil, zerr.Wrap(err, "failed to create trace exporter")
		}
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithBatcher(traceExp),
			sdktrace.WithResource(res),
		)
		p.shutdown = append(p.shutdown, tp.Shutdown)
		p.Tracer = NewOTelTracerFrom(tp, InstrumentationName)

		metricExp, err := stdoutmetric.New(stdoutmetric.WithWriter(settings.Writer))
		if err != nil {
			return nil, errors.Join(zerr.Wrap(err, "failed to create metric exporter"), p.Shutdown(context.Background()))
		}
		mp := sdkmetric.NewMeterProvider(
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp)),
			sdkmetric.WithResource(res),
		)
		p.shutdown = append(p.shutdown, mp.Shutdown)
		metrics, err := NewOTelMetricsFrom(mp.Meter(InstrumentationName))
		if err != nil {
			return nil, errors.Join(err, p.Shutdown(context.Background()))
		}
		p.Metrics = metrics
	case ExporterLog:
		tp := sdktrace.NewTracerProvider(
			sdktrace.WithSpanProcessor(NewLogBridge(settings.Logger)),
			sdktrace.WithResource(res),
		)
		p.shutdown = append(p.shutdown, tp.Shutdown)
		p.Tracer = NewOTelTracerFrom(tp, InstrumentationName)
	case ExporterProgress:
		rec := progrock.New()
		p.shutdown = append(p.shutdown, func(context.Context) error { return rec.Close() })
		p.Tracer = rec
	default:
		return nil, zerr.With(zerr.Wrap(domain.ErrUnknownExporter, "unsupported telemetry exporter"), "exporter", string(settings.Exporter))
	}

	return p, nil
}
