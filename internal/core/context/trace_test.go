package context

import (
	"context"
	"testing"
)

func TestTraceCarrier(t *testing.T) {
	ctx := context.Background()

	if GetTrace(ctx) != nil {
		t.Fatal("expected nil carrier on a bare context")
	}
	if got := GetRequestID(ctx); got != "" {
		t.Fatalf("expected empty request ID, got %q", got)
	}
	if got := GetTraceID(ctx); got != "" {
		t.Fatalf("expected empty trace ID, got %q", got)
	}

	ctx = WithTrace(ctx, &TraceContext{
		TraceID:   "4bf92f3577b34da6a3ce929d0e0e4736",
		SpanID:    "00f067aa0ba902b7",
		RequestID: "req-42",
	})

	if got := GetTraceID(ctx); got != "4bf92f3577b34da6a3ce929d0e0e4736" {
		t.Fatalf("trace ID mismatch: %q", got)
	}
	if got := GetRequestID(ctx); got != "req-42" {
		t.Fatalf("request ID mismatch: %q", got)
	}
}
