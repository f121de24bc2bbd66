package observe

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel"
)

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr error
	}{
		{
			name: "valid",
			cfg: Config{
				ServiceName: "artifacts-cred",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1.0},
				Metrics:     MetricsConfig{Enabled: true, Exporter: "prometheus"},
				Logging:     LoggingConfig{Enabled: true, Level: "warn", Format: "json"},
			},
		},
		{
			name:    "missing service name",
			cfg:     Config{},
			wantErr: ErrMissingServiceName,
		},
		{
			name: "unknown tracing exporter",
			cfg: Config{
				ServiceName: "artifacts-cred",
				Tracing:     TracingConfig{Enabled: true, Exporter: "zipkin"},
			},
			wantErr: ErrInvalidTracingExporter,
		},
		{
			name: "sample pct above range",
			cfg: Config{
				ServiceName: "artifacts-cred",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1.5},
			},
			wantErr: ErrInvalidSamplePct,
		},
		{
			name: "sample pct negative",
			cfg: Config{
				ServiceName: "artifacts-cred",
				Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: -0.1},
			},
			wantErr: ErrInvalidSamplePct,
		},
		{
			name: "unknown metrics exporter",
			cfg: Config{
				ServiceName: "artifacts-cred",
				Metrics:     MetricsConfig{Enabled: true, Exporter: "statsd"},
			},
			wantErr: ErrInvalidMetricsExporter,
		},
		{
			name: "unknown log level",
			cfg: Config{
				ServiceName: "artifacts-cred",
				Logging:     LoggingConfig{Enabled: true, Level: "trace"},
			},
			wantErr: ErrInvalidLogLevel,
		},
		{
			name: "unknown log format",
			cfg: Config{
				ServiceName: "artifacts-cred",
				Logging:     LoggingConfig{Enabled: true, Level: "info", Format: "logfmt"},
			},
			wantErr: ErrInvalidLogFormat,
		},
		{
			name: "disabled subsystems are not validated",
			cfg: Config{
				ServiceName: "artifacts-cred",
				Tracing:     TracingConfig{Enabled: false, Exporter: "zipkin"},
				Logging:     LoggingConfig{Enabled: false, Level: "trace"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Fatalf("Validate() error = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewObserver_DisabledIsNoop(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{ServiceName: "artifacts-cred"})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	if obs.Tracer() == nil || obs.Meter() == nil || obs.Logger() == nil {
		t.Fatal("expected non-nil noop primitives")
	}
	if err := obs.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}
}

func TestNewObserver_InvalidConfig(t *testing.T) {
	if _, err := NewObserver(context.Background(), Config{}); !errors.Is(err, ErrMissingServiceName) {
		t.Fatalf("NewObserver() error = %v, want ErrMissingServiceName", err)
	}
}

// Stdout-style exporters and logs must land on the configured writer.
func TestNewObserver_WritesToConfiguredWriter(t *testing.T) {
	var buf bytes.Buffer
	obs, err := NewObserver(context.Background(), Config{
		ServiceName: "artifacts-cred",
		Version:     "test",
		Tracing:     TracingConfig{Enabled: true, Exporter: "stdout", SamplePct: 1.0},
		Logging:     LoggingConfig{Enabled: true, Level: "info", Format: "json"},
		Writer:      &buf,
	})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}

	ctx, span := obs.Tracer().Start(context.Background(), "feedcred.test")
	obs.Logger().Info(ctx, "hello")
	span.End()

	if err := obs.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown() error = %v", err)
	}

	out := buf.String()
	if !bytes.Contains([]byte(out), []byte(`"msg":"hello"`)) {
		t.Errorf("log line missing from writer: %s", out)
	}
	if !bytes.Contains([]byte(out), []byte("feedcred.test")) {
		t.Errorf("span missing from writer: %s", out)
	}
}

func TestObserver_ShutdownIsIdempotent(t *testing.T) {
	obs, err := NewObserver(context.Background(), Config{
		ServiceName: "artifacts-cred",
		Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 0.5},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "none"},
	})
	if err != nil {
		t.Fatalf("NewObserver() error = %v", err)
	}
	for i := 0; i < 2; i++ {
		if err := obs.Shutdown(context.Background()); err != nil {
			t.Fatalf("Shutdown() #%d error = %v", i+1, err)
		}
	}
}

func TestNewObserver_MetricsFailureLeavesGlobalsAlone(t *testing.T) {
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
	t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")

	before := otel.GetTracerProvider()
	_, err := NewObserver(context.Background(), Config{
		ServiceName: "artifacts-cred",
		Tracing:     TracingConfig{Enabled: true, Exporter: "none", SamplePct: 1.0},
		Metrics:     MetricsConfig{Enabled: true, Exporter: "otlp"},
		Writer:      &bytes.Buffer{},
	})
	if err == nil {
		t.Fatal("expected metrics setup error without an OTLP endpoint")
	}
	if otel.GetTracerProvider() != before {
		t.Error("tracer provider was installed globally although setup failed")
	}
}
