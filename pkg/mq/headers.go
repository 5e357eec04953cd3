package mq

import amqp "github.com/rabbitmq/amqp091-go"

// HeaderCarrier adapts amqp headers to an otel TextMapCarrier.
type HeaderCarrier amqp.Table

func (h HeaderCarrier) Get(key string) string {
	v, _ := h[key].(string)
	return v
}

func (h HeaderCarrier) Set(key, value string) { h[key] = value }

func (h HeaderCarrier) Keys() []string {
	out := make([]string, 0, len(h))
	for k := range h {
		out = append(out, k)
	}
	return out
}
