package worker

import (
	"context"
	"errors"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/pkg/mq"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/notification-service/internal/events"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/notification-service/internal/ledger"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/notification-service/internal/notifier"
)

var tracer = otel.Tracer("plantnet/notification-service/worker")

type outcome int

const (
	ack outcome = iota
	requeue
	deadLetter
)

func (o outcome) String() string {
	switch o {
	case ack:
		return "ack"
	case requeue:
		return "requeue"
	default:
		return "dead-letter"
	}
}

type Worker struct {
	notifier notifier.Notifier
	ledger   ledger.Ledger
}

func New(n notifier.Notifier, l ledger.Ledger) *Worker {
	return &Worker{notifier: n, ledger: l}
}

// Run handles deliveries until ctx ends or the channel closes.
func (w *Worker) Run(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			switch w.handleDelivery(ctx, d) {
			case ack:
				_ = d.Ack(false)
			case requeue:
				_ = d.Nack(false, true)
			case deadLetter:
				_ = d.Nack(false, false)
			}
		}
	}
}

// handleDelivery sends the mails for one event. A failed send is retried once
// through a requeue; a second failure, or a body that cannot be parsed, goes
// to the dead-letter queue.
func (w *Worker) handleDelivery(ctx context.Context, d amqp.Delivery) outcome {
	ctx, span := tracer.Start(mq.ContextFrom(ctx, d), "notify "+d.RoutingKey, trace.WithSpanKind(trace.SpanKindConsumer))
	defer span.End()

	env, err := events.DecodeEnvelope(d.Body)
	if err != nil {
		log.Printf("[notify] key=%s bad body: %v -> dead-letter", d.RoutingKey, err)
		return deadLetter
	}
	span.SetAttributes(attribute.String("event.id", env.ID))

	msgs, err := notifier.Render(d.RoutingKey, env.Data)
	if errors.Is(err, notifier.ErrUnknownEvent) {
		log.Printf("[notify] skip unknown key=%s", d.RoutingKey)
		return ack
	}
	if err != nil {
		log.Printf("[notify] key=%s id=%s render: %v -> dead-letter", d.RoutingKey, env.ID, err)
		return deadLetter
	}

	first, err := w.ledger.Claim(ctx, env.ID, d.RoutingKey)
	if err != nil {
		log.Printf("[notify] ledger claim %s: %v", env.ID, err)
		return w.retry(d)
	}
	if !first {
		log.Printf("[notify] duplicate id=%s key=%s, skipped", env.ID, d.RoutingKey)
		return ack
	}

	for _, m := range msgs {
		if err := w.notifier.Notify(ctx, m); err != nil {
			log.Printf("[notify] key=%s id=%s to=%s: %v", d.RoutingKey, env.ID, m.To, err)
			if rerr := w.ledger.Release(ctx, env.ID); rerr != nil {
				log.Printf("[notify] ledger release %s: %v", env.ID, rerr)
			}
			return w.retry(d)
		}
	}
	return ack
}

func (w *Worker) retry(d amqp.Delivery) outcome {
	if d.Redelivered {
		return deadLetter
	}
	return requeue
}
