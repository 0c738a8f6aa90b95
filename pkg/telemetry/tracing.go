package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.uber.org/zap"
)

// Config holds tracing settings.
type Config struct {
	Endpoint       string  // OTLP/HTTP collector URL; empty disables tracing
	SampleRatio    float64 // fraction of root spans to sample
	ServiceName    string
	ServiceVersion string
}

// Shutdown flushes pending spans and releases the exporter.
type Shutdown func(context.Context) error

// Replaced in tests.
var (
	newExporter = func(ctx context.Context, endpoint string) (sdktrace.SpanExporter, error) {
		return otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	}
	newResource = func(ctx context.Context, cfg Config) (*resource.Resource, error) {
		return resource.New(ctx, resource.WithAttributes(
			semconv.ServiceName(cfg.ServiceName),
			semconv.ServiceVersion(cfg.ServiceVersion),
		))
	}
)

// Setup initialises OpenTelemetry tracing and registers the global provider
// and W3C trace-context propagator.
//
// Tracing is opt-in: with an empty endpoint Setup registers nothing and
// returns a no-op shutdown.
func Setup(ctx context.Context, cfg Config, log *zap.Logger) (Shutdown, error) {
	noop := func(context.Context) error { return nil }

	if cfg.Endpoint == "" {
		log.Info("tracing disabled")
		return noop, nil
	}

	exporter, err := newExporter(ctx, cfg.Endpoint)
	if err != nil {
		return noop, fmt.Errorf("failed to create trace exporter: %w", err)
	}

	res, err := newResource(ctx, cfg)
	if err != nil {
		err = fmt.Errorf("failed to create trace resource: %w", err)
		if shutdownErr := exporter.Shutdown(ctx); shutdownErr != nil {
			err = errors.Join(err, fmt.Errorf("failed to shut down trace exporter: %w", shutdownErr))
		}
		return noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(cfg.SampleRatio))),
	)

	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Info("tracing enabled",
		zap.String("endpoint", cfg.Endpoint),
		zap.Float64("sample_ratio", cfg.SampleRatio),
	)

	return tp.Shutdown, nil
}
