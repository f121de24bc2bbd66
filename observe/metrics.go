package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records per-operation counters and latency.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: implementations must not panic.
type Metrics interface {
	RecordOperation(ctx context.Context, meta OpMeta, duration time.Duration, err error)
}

type metricsImpl struct {
	calls    metric.Int64Counter
	failures metric.Int64Counter
	latency  metric.Float64Histogram
}

// Probes and helper runs are seconds to minutes; interactive logins can
// take several minutes.
var latencyBucketsMS = []float64{5, 25, 100, 250, 1000, 2500, 10000, 30000, 120000, 600000}

func newMetrics(meter metric.Meter) (*metricsImpl, error) {
	var (
		m   metricsImpl
		err error
	)
	if m.calls, err = meter.Int64Counter("feedcred.op.total",
		metric.WithDescription("Probe, helper and resolve operations started"),
		metric.WithUnit("{call}"),
	); err != nil {
		return nil, err
	}
	if m.failures, err = meter.Int64Counter("feedcred.op.errors",
		metric.WithDescription("Operations that returned an error"),
		metric.WithUnit("{error}"),
	); err != nil {
		return nil, err
	}
	if m.latency, err = meter.Float64Histogram("feedcred.op.duration_ms",
		metric.WithDescription("Operation wall time"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(latencyBucketsMS...),
	); err != nil {
		return nil, err
	}
	return &m, nil
}

// RecordOperation records one finished operation.
func (m *metricsImpl) RecordOperation(ctx context.Context, meta OpMeta, duration time.Duration, err error) {
	attrs := make([]attribute.KeyValue, 0, 3)
	attrs = append(attrs, attribute.String("op.name", meta.Name))
	if meta.Host != "" {
		attrs = append(attrs, attribute.String("op.host", meta.Host))
	}
	if meta.Retry {
		attrs = append(attrs, attribute.Bool("op.retry", true))
	}
	set := metric.WithAttributes(attrs...)

	m.calls.Add(ctx, 1, set)
	if err != nil {
		m.failures.Add(ctx, 1, set)
	}
	m.latency.Record(ctx, float64(duration)/float64(time.Millisecond), set)
}

type noopMetrics struct{}

func (*noopMetrics) RecordOperation(context.Context, OpMeta, time.Duration, error) {}
