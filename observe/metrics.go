package observe

import (
	"context"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics records dispatch metrics for API calls.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Context: must return quickly; recording never blocks a call.
// - Errors: implementations must not panic.
type Metrics interface {
	// RecordCall records one dispatched request with its final status code,
	// duration, and error outcome.
	RecordCall(ctx context.Context, meta CallMeta, status int, duration time.Duration, err error)

	// RecordTokenRefresh records one token refresh attempt.
	RecordTokenRefresh(ctx context.Context, err error)
}

// metricsImpl is the concrete implementation of Metrics.
type metricsImpl struct {
	meter        metric.Meter
	totalCount   metric.Int64Counter
	errorCount   metric.Int64Counter
	durationHist metric.Float64Histogram
	refreshCount metric.Int64Counter
}

// NewMetrics creates a Metrics instance recording through the given meter.
func NewMetrics(meter metric.Meter) (Metrics, error) {
	totalCount, err := meter.Int64Counter(
		"api.call.total",
		metric.WithDescription("Total number of dispatched API calls"),
		metric.WithUnit("{call}"),
	)
	if err != nil {
		return nil, err
	}

	errorCount, err := meter.Int64Counter(
		"api.call.errors",
		metric.WithDescription("Total number of failed API calls"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	durationHist, err := meter.Float64Histogram(
		"api.call.duration_ms",
		metric.WithDescription("API call duration in milliseconds"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	refreshCount, err := meter.Int64Counter(
		"api.token.refresh.total",
		metric.WithDescription("Total number of token refresh attempts"),
		metric.WithUnit("{refresh}"),
	)
	if err != nil {
		return nil, err
	}

	return &metricsImpl{
		meter:        meter,
		totalCount:   totalCount,
		errorCount:   errorCount,
		durationHist: durationHist,
		refreshCount: refreshCount,
	}, nil
}

// RecordCall records metrics for one dispatched request.
func (m *metricsImpl) RecordCall(ctx context.Context, meta CallMeta, status int, duration time.Duration, err error) {
	attrs := []attribute.KeyValue{
		attribute.String("api.resource", meta.Resource),
		attribute.String("api.method", meta.Method),
	}
	if meta.Operation != "" {
		attrs = append(attrs, attribute.String("api.operation", meta.Operation))
	}
	if status > 0 {
		attrs = append(attrs, attribute.String("api.status", strconv.Itoa(status)))
	}

	opt := metric.WithAttributes(attrs...)

	// Always increment total counter
	m.totalCount.Add(ctx, 1, opt)

	// Increment error counter on failure
	if err != nil {
		m.errorCount.Add(ctx, 1, opt)
	}

	// Record duration in milliseconds
	durationMs := float64(duration.Milliseconds())
	m.durationHist.Record(ctx, durationMs, opt)
}

// RecordTokenRefresh records one refresh attempt, tagged by outcome.
func (m *metricsImpl) RecordTokenRefresh(ctx context.Context, err error) {
	opt := metric.WithAttributes(attribute.Bool("refresh.error", err != nil))
	m.refreshCount.Add(ctx, 1, opt)
}

// nopMetrics is a metrics implementation that does nothing.
type nopMetrics struct{}

// NewNopMetrics returns a Metrics that discards everything.
func NewNopMetrics() Metrics {
	return nopMetrics{}
}

func (nopMetrics) RecordCall(ctx context.Context, meta CallMeta, status int, duration time.Duration, err error) {
}

func (nopMetrics) RecordTokenRefresh(ctx context.Context, err error) {}
