package mq

import (
	"context"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

func TestHeaderCarrierPropagatesTraceContext(t *testing.T) {
	prop := propagation.TraceContext{}
	tid, _ := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	sid, _ := trace.SpanIDFromHex("00f067aa0ba902b7")
	sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: tid, SpanID: sid, TraceFlags: trace.FlagsSampled})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	headers := amqp.Table{}
	prop.Inject(ctx, HeaderCarrier(headers))
	if _, ok := headers["traceparent"]; !ok {
		t.Fatalf("traceparent not injected: %v", headers)
	}

	got := trace.SpanContextFromContext(prop.Extract(context.Background(), HeaderCarrier(headers)))
	if got.TraceID() != tid {
		t.Fatalf("trace id = %s", got.TraceID())
	}
}

func TestHeaderCarrierIgnoresNonString(t *testing.T) {
	h := HeaderCarrier(amqp.Table{"x-retry": int32(3)})
	if h.Get("x-retry") != "" {
		t.Fatal("non-string header should read as empty")
	}
	if len(h.Keys()) != 1 {
		t.Fatalf("keys = %v", h.Keys())
	}
}
