// Package telemetry wires up the process-wide logger, tracer provider and
// meter provider every kgraph command shares: structured logging via
// log/slog, tracing and metrics via OpenTelemetry with stdout exporters
// (swap-in points for a real collector are the two provider constructors
// below), and a Prometheus registry for the HTTP /metrics endpoint.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	promhttp "github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

// Options configures Setup.
type Options struct {
	// ServiceName is recorded on every span and metric as a resource
	// attribute.
	ServiceName string

	// TraceWriter receives human-readable span output. A nil TraceWriter
	// means io.Discard; pass os.Stderr to see spans on the console.
	TraceWriter io.Writer

	// LogLevel controls the slog.Logger installed as the default logger.
	LogLevel slog.Level
}

// Shutdown flushes and stops the installed providers. Callers should defer
// Shutdown(context.Background()) immediately after Setup succeeds.
type Shutdown func(ctx context.Context) error

// Setup installs a process-wide slog logger and OpenTelemetry tracer/meter
// providers, and returns an http.Handler serving Prometheus-formatted
// metrics plus a Shutdown func.
func Setup(opts Options) (http.Handler, Shutdown, error) {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: opts.LogLevel}))
	slog.SetDefault(logger)

	res, err := resource.Merge(resource.Default(), resource.NewSchemaless(
		semconv.ServiceName(opts.ServiceName),
	))
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: building resource: %w", err)
	}

	traceWriter := opts.TraceWriter
	if traceWriter == nil {
		traceWriter = io.Discard
	}
	traceExporter, err := stdouttrace.New(stdouttrace.WithWriter(traceWriter))
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: building trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	registry := prometheus.NewRegistry()
	promExporter, err := otelprom.New(otelprom.WithRegisterer(registry))
	if err != nil {
		return nil, nil, fmt.Errorf("telemetry: building prometheus exporter: %w", err)
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(promExporter),
		sdkmetric.WithResource(res),
	)
	otel.SetMeterProvider(mp)

	shutdown := func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			return fmt.Errorf("telemetry: shutting down tracer provider: %w", err)
		}
		if err := mp.Shutdown(ctx); err != nil {
			return fmt.Errorf("telemetry: shutting down meter provider: %w", err)
		}
		return nil
	}

	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{}), shutdown, nil
}
