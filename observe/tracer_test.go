package observe

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func newTestTracer(t *testing.T) (Tracer, *tracetest.SpanRecorder) {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	return NewTracer(tp.Tracer("test")), recorder
}

func TestCallMeta_SpanName(t *testing.T) {
	tests := []struct {
		name string
		meta CallMeta
		want string
	}{
		{"operation", CallMeta{Operation: "openShift", Resource: "Command", Method: "POST"}, "api.call.openShift"},
		{"no operation", CallMeta{Resource: "Token", Method: "GET"}, "api.call.GET.Token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.meta.SpanName(); got != tt.want {
				t.Errorf("SpanName() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTracer_SpanAttributes(t *testing.T) {
	tr, recorder := newTestTracer(t)

	_, span := tr.StartSpan(context.Background(), CallMeta{
		Operation: "printCheck",
		Resource:  "Command",
		Method:    "POST",
	})
	tr.EndSpan(span, 200, nil)

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}

	got := spans[0]
	if got.Name() != "api.call.printCheck" {
		t.Errorf("span name = %q, want api.call.printCheck", got.Name())
	}
	if got.Status().Code != codes.Ok {
		t.Errorf("span status = %v, want Ok", got.Status().Code)
	}

	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range got.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	if attrs["api.resource"].AsString() != "Command" {
		t.Errorf("api.resource = %v", attrs["api.resource"])
	}
	if attrs["api.status_code"].AsInt64() != 200 {
		t.Errorf("api.status_code = %v", attrs["api.status_code"])
	}
}

func TestTracer_EndSpanRecordsError(t *testing.T) {
	tr, recorder := newTestTracer(t)

	_, span := tr.StartSpan(context.Background(), CallMeta{Resource: "Command", Method: "POST"})
	tr.EndSpan(span, 500, errors.New("server fault"))

	spans := recorder.Ended()
	if len(spans) != 1 {
		t.Fatalf("got %d spans, want 1", len(spans))
	}
	if spans[0].Status().Code != codes.Error {
		t.Errorf("span status = %v, want Error", spans[0].Status().Code)
	}
	if len(spans[0].Events()) == 0 {
		t.Error("no error event recorded")
	}
}

func TestNopTracer_DoesNotPanic(t *testing.T) {
	tr := NewNopTracer()
	_, span := tr.StartSpan(context.Background(), CallMeta{Resource: "Token", Method: "GET"})
	tr.EndSpan(span, 0, errors.New("ignored"))
}
