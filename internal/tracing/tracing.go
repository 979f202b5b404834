// Package tracing installs the OpenTelemetry tracer provider used with
// --trace-file. Without it, spans go to the global no-op provider.
package tracing

import (
	"context"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ServiceName is reported as service.name on every span.
const ServiceName = "picalc"

// Config describes the exporter.
type Config struct {
	ServiceVersion string
	RunID          string
	// Writer receives one JSON document per finished span.
	Writer io.Writer
}

// NewProvider builds a provider exporting every span synchronously to
// cfg.Writer.
func NewProvider(cfg Config) (*sdktrace.TracerProvider, error) {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(cfg.Writer))
	if err != nil {
		return nil, fmt.Errorf("creating span exporter: %w", err)
	}
	res := resource.NewSchemaless(
		attribute.String("service.name", ServiceName),
		attribute.String("service.version", cfg.ServiceVersion),
		attribute.String("picalc.run_id", cfg.RunID),
	)
	return sdktrace.NewTracerProvider(
		sdktrace.WithSyncer(exporter),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
		sdktrace.WithResource(res),
	), nil
}

// Initialize installs a provider from cfg as the global one and returns
// its shutdown function, which flushes pending spans. Call it at most once
// per process: tracers obtained earlier keep delegating to the first
// provider installed.
func Initialize(cfg Config) (func(context.Context) error, error) {
	tp, err := NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	otel.SetTracerProvider(tp)
	return tp.Shutdown, nil
}
