// Package telemetry installs the OpenTelemetry trace pipeline for a command.
package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"

	"github.com/bankcap/banketl/internal/model"
)

// OtlpConfig points the exporter at a collector. The gRPC endpoint wins when
// both are set.
type OtlpConfig struct {
	GrpcEndpoint string            `yaml:"grpc_endpoint,omitempty"`
	HttpEndpoint string            `yaml:"http_endpoint,omitempty"`
	Headers      map[string]string `yaml:"headers,omitempty"`
}

// Config is the telemetry block of banketl.yaml.
type Config struct {
	ServiceName string     `yaml:"service_name"`
	Otlp        OtlpConfig `yaml:"otlp"`
}

// Enabled reports whether an exporter endpoint is configured.
func (c Config) Enabled() bool {
	return c.Otlp.GrpcEndpoint != "" || c.Otlp.HttpEndpoint != ""
}

// Telemetry owns the installed provider. The zero value is a no-op.
type Telemetry struct {
	TracerProvider *trace.TracerProvider
}

// Shutdown flushes pending spans and stops the exporter.
func (t Telemetry) Shutdown(ctx context.Context) error {
	if t.TracerProvider == nil {
		return nil
	}
	if err := t.TracerProvider.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down tracer provider: %w", err)
	}
	return nil
}

// Setup installs a batching tracer provider exporting over OTLP as the global
// provider. With no endpoint configured nothing is installed and spans stay
// no-ops.
func Setup(ctx context.Context, cfg Config) (Telemetry, error) {
	if !cfg.Enabled() {
		return Telemetry{}, nil
	}

	r, err := newResource(cfg.ServiceName)
	if err != nil {
		return Telemetry{}, fmt.Errorf("building resource: %w: %w", model.ErrConfig, err)
	}

	exporter, err := newExporter(ctx, cfg.Otlp)
	if err != nil {
		return Telemetry{}, fmt.Errorf("creating trace exporter: %w: %w", model.ErrConfig, err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
		trace.WithResource(r),
	)
	otel.SetTracerProvider(tp)
	return Telemetry{TracerProvider: tp}, nil
}

func newResource(serviceName string) (*resource.Resource, error) {
	return resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
		),
	)
}

func newExporter(ctx context.Context, c OtlpConfig) (trace.SpanExporter, error) {
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if c.GrpcEndpoint != "" {
		return otlptracegrpc.New(
			ctx,
			otlptracegrpc.WithEndpointURL(c.GrpcEndpoint),
			otlptracegrpc.WithHeaders(c.Headers),
		)
	}
	return otlptracehttp.New(
		ctx,
		otlptracehttp.WithEndpointURL(c.HttpEndpoint),
		otlptracehttp.WithHeaders(c.Headers),
	)
}
