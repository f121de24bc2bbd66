// Package exporters builds the OpenTelemetry span exporters and metric
// readers selectable by name from configuration.
//
// The "stdout" exporters write to the supplied writer rather than os.Stdout,
// since the CLI's standard output carries the resolved credential.
package exporters

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

var (
	// ErrUnknownExporter is returned for an exporter name with no constructor.
	ErrUnknownExporter = errors.New("unknown exporter")

	// ErrMissingEndpoint is returned when a network exporter has no endpoint
	// in the environment.
	ErrMissingEndpoint = errors.New("endpoint not configured")
)

// firstEnv returns the first non-empty value among keys.
func firstEnv(keys ...string) (string, error) {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v, nil
		}
	}
	return "", fmt.Errorf("%w: set %s", ErrMissingEndpoint, keys[0])
}

// NewTracingExporter returns the span exporter called name: stdout, otlp,
// jaeger or none. A nil w means os.Stderr.
func NewTracingExporter(ctx context.Context, name string, w io.Writer) (sdktrace.SpanExporter, error) {
	if w == nil {
		w = os.Stderr
	}

	switch name {
	case "stdout":
		return stdouttrace.New(stdouttrace.WithWriter(w))
	case "none", "":
		return stdouttrace.New(stdouttrace.WithWriter(io.Discard))
	case "otlp":
		if _, err := firstEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"); err != nil {
			return nil, fmt.Errorf("otlp traces: %w", err)
		}
		return otlptracegrpc.New(ctx)
	case "jaeger":
		// Jaeger ingests OTLP natively.
		endpoint, err := firstEnv("OTEL_EXPORTER_JAEGER_ENDPOINT")
		if err != nil {
			return nil, fmt.Errorf("jaeger: %w", err)
		}
		return otlptracegrpc.New(ctx, otlptracegrpc.WithEndpointURL(endpoint))
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, name)
	}
}

// NewMetricsReader returns the metric reader called name: stdout, otlp,
// prometheus or none. A nil w means os.Stderr.
func NewMetricsReader(ctx context.Context, name string, w io.Writer) (sdkmetric.Reader, error) {
	if w == nil {
		w = os.Stderr
	}

	var (
		exp sdkmetric.Exporter
		err error
	)
	switch name {
	case "stdout":
		exp, err = stdoutmetric.New(stdoutmetric.WithWriter(w))
	case "none", "":
		exp, err = stdoutmetric.New(stdoutmetric.WithWriter(io.Discard))
	case "otlp":
		if _, err := firstEnv("OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_METRICS_ENDPOINT"); err != nil {
			return nil, fmt.Errorf("otlp metrics: %w", err)
		}
		exp, err = otlpmetricgrpc.New(ctx)
	case "prometheus":
		// Pull-based: the exporter is itself the reader.
		reader, err := prometheus.New()
		if err != nil {
			return nil, fmt.Errorf("prometheus: %w", err)
		}
		return reader, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, name)
	}
	if err != nil {
		return nil, fmt.Errorf("%s metrics exporter: %w", name, err)
	}
	return sdkmetric.NewPeriodicReader(exp), nil
}
