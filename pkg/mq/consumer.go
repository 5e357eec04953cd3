package mq

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
)

type ConsumerConfig struct {
	Exchanges []string
	Queue     string
	Bindings  []string
	Prefetch  int
	// dead-letter exchange/queue; both empty disables dead-lettering
	DLX string
	DLQ string
	Tag string
}

type Consumer struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	cfg  ConsumerConfig
}

// NewConsumer declares the queue, binds it on every exchange for every key and
// sets up the dead-letter pair when configured.
func NewConsumer(url string, cfg ConsumerConfig) (*Consumer, error) {
	if len(cfg.Exchanges) == 0 || cfg.Queue == "" {
		return nil, fmt.Errorf("consumer needs at least one exchange and a queue")
	}
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	fail := func(step string, err error) (*Consumer, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", step, err)
	}

	args := amqp.Table{}
	if cfg.DLX != "" {
		args["x-dead-letter-exchange"] = cfg.DLX
		if err := ch.ExchangeDeclare(cfg.DLX, "topic", true, false, false, false, nil); err != nil {
			return fail("declare dlx", err)
		}
		if cfg.DLQ != "" {
			if _, err := ch.QueueDeclare(cfg.DLQ, true, false, false, false, nil); err != nil {
				return fail("declare dlq", err)
			}
			if err := ch.QueueBind(cfg.DLQ, "#", cfg.DLX, false, nil); err != nil {
				return fail("bind dlq", err)
			}
		}
	}
	q, err := ch.QueueDeclare(cfg.Queue, true, false, false, false, args)
	if err != nil {
		return fail("declare queue", err)
	}
	for _, ex := range cfg.Exchanges {
		if err := ch.ExchangeDeclare(ex, "topic", true, false, false, false, nil); err != nil {
			return fail("declare exchange "+ex, err)
		}
		for _, rk := range cfg.Bindings {
			if err := ch.QueueBind(q.Name, rk, ex, false, nil); err != nil {
				return fail(fmt.Sprintf("bind %s on %s", rk, ex), err)
			}
		}
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 8
	}
	if err := ch.Qos(cfg.Prefetch, 0, false); err != nil {
		return fail("set qos", err)
	}
	cfg.Queue = q.Name
	return &Consumer{conn: conn, ch: ch, cfg: cfg}, nil
}

func (c *Consumer) Deliveries(ctx context.Context) (<-chan amqp.Delivery, error) {
	return c.ch.ConsumeWithContext(ctx, c.cfg.Queue, c.cfg.Tag, false, false, false, false, nil)
}

// NotifyClose reports when the broker drops the connection.
func (c *Consumer) NotifyClose() <-chan *amqp.Error {
	return c.conn.NotifyClose(make(chan *amqp.Error, 1))
}

func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// ContextFrom restores the publisher's trace context from delivery headers.
func ContextFrom(ctx context.Context, d amqp.Delivery) context.Context {
	if d.Headers == nil {
		return ctx
	}
	return otel.GetTextMapPropagator().Extract(ctx, HeaderCarrier(d.Headers))
}
