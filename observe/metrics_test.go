package observe

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (Metrics, *sdkmetric.ManualReader) {
	t.Helper()
	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	m, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() error = %v", err)
	}
	return m, reader
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

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()
	var rm metricdata.ResourceMetrics
	if err := reader.Collect(context.Background(), &rm); err != nil {
		t.Fatalf("failed to collect metrics: %v", err)
	}
	return rm
}

// TestMetrics_TotalCounterIncrements verifies api.call.total is incremented.
func TestMetrics_TotalCounterIncrements(t *testing.T) {
	m, reader := newTestMetrics(t)

	meta := CallMeta{Operation: "openShift", Resource: "Command", Method: "POST"}
	m.RecordCall(context.Background(), meta, 200, 100*time.Millisecond, nil)

	rm := collect(t, reader)
	found := findMetric(rm, "api.call.total")
	if found == nil {
		t.Fatal("api.call.total metric not found")
	}

	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", found.Data)
	}
	if len(sum.DataPoints) == 0 {
		t.Fatal("no data points")
	}
	if sum.DataPoints[0].Value != 1 {
		t.Errorf("expected count 1, got %d", sum.DataPoints[0].Value)
	}
}

// TestMetrics_ErrorCounterOnSuccess verifies the error counter is NOT
// incremented on success.
func TestMetrics_ErrorCounterOnSuccess(t *testing.T) {
	m, reader := newTestMetrics(t)

	meta := CallMeta{Resource: "StateSystem", Method: "GET"}
	m.RecordCall(context.Background(), meta, 200, time.Millisecond, nil)

	rm := collect(t, reader)
	if found := findMetric(rm, "api.call.errors"); found != nil {
		sum, ok := found.Data.(metricdata.Sum[int64])
		if ok && len(sum.DataPoints) > 0 && sum.DataPoints[0].Value != 0 {
			t.Errorf("error count = %d, want 0", sum.DataPoints[0].Value)
		}
	}
}

// TestMetrics_ErrorCounterOnFailure verifies the error counter increments
// when a call fails.
func TestMetrics_ErrorCounterOnFailure(t *testing.T) {
	m, reader := newTestMetrics(t)

	meta := CallMeta{Resource: "Command", Method: "POST"}
	m.RecordCall(context.Background(), meta, 500, time.Millisecond, errors.New("server fault"))

	rm := collect(t, reader)
	found := findMetric(rm, "api.call.errors")
	if found == nil {
		t.Fatal("api.call.errors metric not found")
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", found.Data)
	}
	if sum.DataPoints[0].Value != 1 {
		t.Errorf("error count = %d, want 1", sum.DataPoints[0].Value)
	}
}

// TestMetrics_DurationHistogramRecords verifies duration is recorded.
func TestMetrics_DurationHistogramRecords(t *testing.T) {
	m, reader := newTestMetrics(t)

	meta := CallMeta{Resource: "StateSystem", Method: "GET"}
	m.RecordCall(context.Background(), meta, 200, 250*time.Millisecond, nil)

	rm := collect(t, reader)
	found := findMetric(rm, "api.call.duration_ms")
	if found == nil {
		t.Fatal("api.call.duration_ms metric not found")
	}
	hist, ok := found.Data.(metricdata.Histogram[float64])
	if !ok {
		t.Fatalf("expected Histogram[float64], got %T", found.Data)
	}
	if len(hist.DataPoints) == 0 {
		t.Fatal("no data points")
	}
	if hist.DataPoints[0].Sum != 250 {
		t.Errorf("duration sum = %f, want 250", hist.DataPoints[0].Sum)
	}
}

// TestMetrics_TokenRefreshCounter verifies refresh attempts are counted.
func TestMetrics_TokenRefreshCounter(t *testing.T) {
	m, reader := newTestMetrics(t)

	m.RecordTokenRefresh(context.Background(), nil)
	m.RecordTokenRefresh(context.Background(), errors.New("issuing failed"))

	rm := collect(t, reader)
	found := findMetric(rm, "api.token.refresh.total")
	if found == nil {
		t.Fatal("api.token.refresh.total metric not found")
	}
	sum, ok := found.Data.(metricdata.Sum[int64])
	if !ok {
		t.Fatalf("expected Sum[int64], got %T", found.Data)
	}
	var total int64
	for _, dp := range sum.DataPoints {
		total += dp.Value
	}
	if total != 2 {
		t.Errorf("refresh count = %d, want 2", total)
	}
}

func TestNopMetrics_Discards(t *testing.T) {
	m := NewNopMetrics()
	m.RecordCall(context.Background(), CallMeta{}, 0, 0, nil)
	m.RecordTokenRefresh(context.Background(), nil)
}
