package observe

import (
	"context"
	"errors"
	"testing"
)

func TestNewTracingExporter(t *testing.T) {
	tests := []struct {
		name     string
		exporter string
		wantErr  error
	}{
		{"stdout", "stdout", nil},
		{"none", "none", nil},
		{"empty", "", nil},
		{"otlp without endpoint", "otlp", ErrEndpointNotConfigured},
		{"unknown", "zipkin", ErrInvalidTracingExporter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
			t.Setenv("OTEL_EXPORTER_OTLP_TRACES_ENDPOINT", "")
			exp, err := NewTracingExporter(context.Background(), tt.exporter)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewTracingExporter(%q) error = %v, want %v", tt.exporter, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTracingExporter(%q) error = %v", tt.exporter, err)
			}
			if exp == nil {
				t.Error("exporter is nil")
			}
		})
	}
}

func TestNewMetricsReader(t *testing.T) {
	tests := []struct {
		name     string
		exporter string
		wantErr  error
	}{
		{"stdout", "stdout", nil},
		{"none", "none", nil},
		{"empty", "", nil},
		{"otlp without endpoint", "otlp", ErrEndpointNotConfigured},
		{"unknown", "statsd", ErrInvalidMetricsExporter},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "")
			t.Setenv("OTEL_EXPORTER_OTLP_METRICS_ENDPOINT", "")
			reader, err := NewMetricsReader(context.Background(), tt.exporter)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("NewMetricsReader(%q) error = %v, want %v", tt.exporter, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewMetricsReader(%q) error = %v", tt.exporter, err)
			}
			if reader == nil {
				t.Error("reader is nil")
			}
			_ = reader.Shutdown(context.Background())
		})
	}
}
