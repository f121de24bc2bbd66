package observe

import (
	"bytes"
	"context"
	"errors"
	"testing"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestMiddleware(t *testing.T, logBuf *bytes.Buffer) (*Middleware, *tracetest.SpanRecorder, *sdkmetric.ManualReader) {
	t.Helper()

	spanRecorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spanRecorder))

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := newMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("newMetrics() error = %v", err)
	}

	logger := NopLogger()
	if logBuf != nil {
		logger = NewLoggerWithWriter("debug", "json", logBuf)
	}

	return NewMiddleware(newTracer(tp.Tracer("test")), metrics, logger), spanRecorder, reader
}

func findMetric(rm metricdata.ResourceMetrics, name string) *metricdata.Metrics {
	for _, sm := range rm.ScopeMetrics {
		for i := range sm.Metrics {
			if sm.Metrics[i].Name == name {
				return &sm.Metrics[i]
			}
		}
	}
	return nil
}

func counterValue(t *testing.T, reader *sdkmetric.ManualReader, name string) int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	m := findMetric(rm, name)
	if m == nil {
		return 0
	}
	sum, ok := m.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("%s is %T, want Sum[int64]", name, m.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	return total
}

func TestMiddleware_SuccessPath(t *testing.T) {
	var logs bytes.Buffer
	mw, spans, reader := newTestMiddleware(t, &logs)

	called := false
	err := mw.Do(context.Background(), OpMeta{Name: OpProbe, Host: "pkgs.dev.azure.com"}, func(ctx context.Context) error {
		called = true
		return nil
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}
	if !called {
		t.Fatal("wrapped function was not called")
	}

	ended := spans.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	if ended[0].Name() != "feedcred.probe" {
		t.Errorf("span name = %q, want feedcred.probe", ended[0].Name())
	}

	if got := counterValue(t, reader, "feedcred.op.total"); got != 1 {
		t.Errorf("feedcred.op.total = %d, want 1", got)
	}
	if got := counterValue(t, reader, "feedcred.op.errors"); got != 0 {
		t.Errorf("feedcred.op.errors = %d, want 0", got)
	}
	if !bytes.Contains(logs.Bytes(), []byte("operation completed")) {
		t.Errorf("missing completion log: %s", logs.String())
	}
}

func TestMiddleware_ErrorPath(t *testing.T) {
	mw, spans, reader := newTestMiddleware(t, nil)
	boom := errors.New("helper exploded")

	err := mw.Do(context.Background(), OpMeta{Name: OpHelper, Retry: true}, func(ctx context.Context) error {
		return boom
	})
	if err != boom {
		t.Fatalf("Do() error = %v, want %v unchanged", err, boom)
	}

	ended := spans.Ended()
	if len(ended) != 1 {
		t.Fatalf("expected 1 span, got %d", len(ended))
	}
	var opError, retry bool
	for _, attr := range ended[0].Attributes() {
		switch string(attr.Key) {
		case "op.error":
			opError = attr.Value.AsBool()
		case "op.retry":
			retry = attr.Value.AsBool()
		}
	}
	if !opError {
		t.Error("expected op.error=true on failed operation")
	}
	if !retry {
		t.Error("expected op.retry=true for retry invocation")
	}
	if got := counterValue(t, reader, "feedcred.op.errors"); got != 1 {
		t.Errorf("feedcred.op.errors = %d, want 1", got)
	}
}

func TestMiddleware_PropagatesSpanContext(t *testing.T) {
	mw, spans, _ := newTestMiddleware(t, nil)

	err := mw.Do(context.Background(), OpMeta{Name: OpResolve}, func(ctx context.Context) error {
		return mw.Do(ctx, OpMeta{Name: OpProbe}, func(context.Context) error { return nil })
	})
	if err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	ended := spans.Ended()
	if len(ended) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(ended))
	}
	child, parent := ended[0], ended[1]
	if child.Parent().SpanID() != parent.SpanContext().SpanID() {
		t.Error("probe span is not a child of resolve span")
	}
}

func TestMiddlewareFromObserver_Nil(t *testing.T) {
	if _, err := MiddlewareFromObserver(nil); !errors.Is(err, ErrNilObserver) {
		t.Fatalf("MiddlewareFromObserver(nil) error = %v, want ErrNilObserver", err)
	}
}
