// Package tracing wires the parallel driver's otel.Tracer spans
// (src/parallel/driver.go) to an actual OTLP exporter: read an endpoint,
// build an OTLP/HTTP exporter, register it on a batching TracerProvider,
// return a shutdown func. Without calling Init, otel.Tracer(...) calls
// elsewhere in this repository are harmless no-ops; this package is what
// gives them somewhere to send spans.
package tracing

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Shutdown flushes any buffered spans and releases the exporter's
// connection. Callers should defer it from main.
type Shutdown func(context.Context) error

// Init dials endpoint (e.g. "otel-collector:4318") over OTLP/HTTP and
// registers the resulting exporter as the global TracerProvider, so every
// otel.Tracer("...").Start(...) call already made throughout this
// repository (parallel.Driver's map/reduce spans) starts actually
// exporting. An empty endpoint disables tracing and returns a no-op
// Shutdown, keeping Init safe to call unconditionally from cmd/sketchd.
func Init(ctx context.Context, endpoint string, insecure bool) (Shutdown, error) {
	if endpoint == "" {
		return func(context.Context) error { return nil }, nil
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(endpoint)}
	if insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}

	client := otlptracehttp.NewClient(opts...)
	exporter, err := otlptrace.New(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("tracing: failed to create OTLP exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
	)
	otel.SetTracerProvider(provider)

	return func(shutdownCtx context.Context) error {
		return provider.Shutdown(shutdownCtx)
	}, nil
}
