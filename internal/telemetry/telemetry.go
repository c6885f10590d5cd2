// Package telemetry wires optional OTLP trace export for tool runs. With no
// endpoint configured it hands back a noop tracer and the run never touches
// the network.
package telemetry

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/tickbin/tickbin/internal/config"
)

// Init builds the tracer for one tool run and returns it with a shutdown
// function that flushes pending spans. The OTLP/HTTP exporter honors the
// standard proxy environment variables through net/http.
func Init(ctx context.Context, cfg *config.TelemetryConfig) (trace.Tracer, func(context.Context) error, error) {
	endpoint := cfg.Endpoint()
	if endpoint == "" {
		shutdown := func(context.Context) error { return nil }
		return noop.NewTracerProvider().Tracer(cfg.ServiceName), shutdown, nil
	}

	log.Printf("Exporting traces to %s", endpoint)

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(endpoint),
		otlptracehttp.WithInsecure(),
		otlptracehttp.WithTimeout(10*time.Second),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("creating OTLP trace exporter: %w", err)
	}

	opts := []resource.Option{
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	}
	if attrs := cfg.ResourceAttributeList(); len(attrs) > 0 {
		opts = append(opts, resource.WithAttributes(attrs...))
	}
	res, err := resource.New(ctx, opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("creating resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)

	return tp.Tracer(cfg.ServiceName), tp.Shutdown, nil
}
