package observe

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNopMiddleware_RunsFunction(t *testing.T) {
	mw := NopMiddleware()
	want := errors.New("x")
	if err := mw.Do(context.Background(), OpMeta{Name: OpProbe}, func(context.Context) error { return want }); err != want {
		t.Fatalf("Do() error = %v, want %v", err, want)
	}
	if mw.Logger() == nil {
		t.Fatal("expected non-nil logger")
	}
}

func TestLoggerContract_NopNeverPanics(t *testing.T) {
	logger := NopLogger().WithOperation(OpMeta{Name: "noop"}).With(F("k", "v"))
	ctx := context.Background()
	logger.Debug(ctx, "d")
	logger.Info(ctx, "i")
	logger.Warn(ctx, "w")
	logger.Error(ctx, "e", F("password", "p"))
}

func TestMetricsContract_NoPanic(t *testing.T) {
	metrics := &noopMetrics{}
	metrics.RecordOperation(context.Background(), OpMeta{Name: OpHelper}, time.Millisecond, errors.New("boom"))
}

func TestOpMeta_SpanName(t *testing.T) {
	if got := (OpMeta{Name: OpHelper}).SpanName(); got != "feedcred.helper.invoke" {
		t.Errorf("SpanName() = %q", got)
	}
}
