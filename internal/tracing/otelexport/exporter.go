// Package otelexport exports match spans to an OpenTelemetry collector
// over OTLP/HTTP. It implements tracing.SpanExporter.
package otelexport

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/nextlevelbuilder/skillmatch/internal/tracing"
)

// Config configures the OTLP exporter.
type Config struct {
	Endpoint    string // e.g. "localhost:4318"
	Insecure    bool
	ServiceName string // default "skillmatch"
}

// Exporter converts MatchSpan values into OTel spans.
type Exporter struct {
	provider *sdktrace.TracerProvider
	tracer   trace.Tracer
}

// New creates an OTLP/HTTP exporter.
func New(ctx context.Context, cfg Config) (*Exporter, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("OTLP endpoint is required")
	}
	serviceName := cfg.ServiceName
	if serviceName == "" {
		serviceName = "skillmatch"
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("otel resource: %w", err)
	}

	opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.Endpoint)}
	if cfg.Insecure {
		opts = append(opts, otlptracehttp.WithInsecure())
	}
	exp, err := otlptracehttp.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("otlp exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)

	return &Exporter{
		provider: provider,
		tracer:   provider.Tracer("skillmatch/matcher"),
	}, nil
}

// ExportSpans converts and submits a batch of match spans.
func (e *Exporter) ExportSpans(ctx context.Context, spans []tracing.MatchSpan) {
	for _, s := range spans {
		_, span := e.tracer.Start(ctx, "skill_match",
			trace.WithTimestamp(s.StartedAt),
			trace.WithAttributes(
				attribute.String("match.id", s.ID.String()),
				attribute.String("match.strategy", s.Strategy),
				attribute.String("match.reason", s.Reason),
				attribute.Bool("match.matched", s.Matched),
				attribute.Int("match.candidates", s.Candidates),
				attribute.Float64("match.threshold", s.Threshold),
				attribute.StringSlice("match.skills", s.Skills),
				attribute.String("match.query_preview", s.Query),
			),
		)
		span.End(trace.WithTimestamp(s.StartedAt.Add(s.Duration)))
	}
}

// Shutdown flushes and stops the provider.
func (e *Exporter) Shutdown(ctx context.Context) error {
	return e.provider.Shutdown(ctx)
}
