package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/pkg/mq"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/notification-service/internal/events"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/notification-service/internal/ledger"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/notification-service/internal/notifier"
)

type inbox struct {
	sent []notifier.Message
	err  error
}

func (i *inbox) Notify(_ context.Context, m notifier.Message) error {
	if i.err != nil {
		return i.err
	}
	i.sent = append(i.sent, m)
	return nil
}

func delivery(t *testing.T, id, key string, data any) amqp.Delivery {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatal(err)
	}
	body, err := json.Marshal(mq.Envelope{ID: id, Event: key, Version: 1, Data: raw})
	if err != nil {
		t.Fatal(err)
	}
	return amqp.Delivery{RoutingKey: key, Body: body, MessageId: id}
}

var placed = events.OrderPlaced{
	OrderID:   "o1",
	PlantName: "Monstera",
	Quantity:  2,
	Price:     40,
	Customer:  events.Party{Email: "cora@example.com", Name: "Cora"},
	Seller:    events.Party{Email: "sami@example.com"},
}

func TestOrderPlacedMailsBothParties(t *testing.T) {
	box := &inbox{}
	w := New(box, ledger.NewMemory())

	got := w.handleDelivery(context.Background(), delivery(t, "ev-1", events.RKOrderPlaced, placed))
	if got != ack {
		t.Fatalf("outcome = %s", got)
	}
	if len(box.sent) != 2 || box.sent[0].To != "cora@example.com" || box.sent[1].To != "sami@example.com" {
		t.Fatalf("sent = %+v", box.sent)
	}
}

func TestRedeliveredEventIsNotMailedTwice(t *testing.T) {
	box := &inbox{}
	w := New(box, ledger.NewMemory())
	d := delivery(t, "ev-1", events.RKOrderPlaced, placed)

	w.handleDelivery(context.Background(), d)
	d.Redelivered = true
	if got := w.handleDelivery(context.Background(), d); got != ack {
		t.Fatalf("duplicate outcome = %s", got)
	}
	if len(box.sent) != 2 {
		t.Fatalf("sent %d mails, want 2", len(box.sent))
	}
}

func TestSendFailureRetriesOnceThenDeadLetters(t *testing.T) {
	box := &inbox{err: errors.New("smtp down")}
	w := New(box, ledger.NewMemory())
	d := delivery(t, "ev-2", events.RKOrderCancelled, events.OrderCancelled{OrderID: "o2", Customer: events.Party{Email: "cora@example.com"}})

	if got := w.handleDelivery(context.Background(), d); got != requeue {
		t.Fatalf("first failure = %s", got)
	}
	d.Redelivered = true
	if got := w.handleDelivery(context.Background(), d); got != deadLetter {
		t.Fatalf("second failure = %s", got)
	}

	// the failed attempts released their claim, so a fixed mailer still sends
	box.err = nil
	if got := w.handleDelivery(context.Background(), d); got != ack || len(box.sent) != 1 {
		t.Fatalf("after recovery: %s, sent %d", got, len(box.sent))
	}
}

func TestBadAndUnknownDeliveries(t *testing.T) {
	w := New(&inbox{}, ledger.NewMemory())
	ctx := context.Background()

	if got := w.handleDelivery(ctx, amqp.Delivery{RoutingKey: events.RKOrderPlaced, Body: []byte("{")}); got != deadLetter {
		t.Fatalf("garbage body = %s", got)
	}
	if got := w.handleDelivery(ctx, delivery(t, "", events.RKOrderPlaced, placed)); got != deadLetter {
		t.Fatalf("missing id = %s", got)
	}
	if got := w.handleDelivery(ctx, delivery(t, "ev-3", "order.refunded", placed)); got != ack {
		t.Fatalf("unknown key = %s", got)
	}
	if got := w.handleDelivery(ctx, delivery(t, "ev-4", events.RKUserRoleChanged, "not an object")); got != deadLetter {
		t.Fatalf("bad payload = %s", got)
	}
}
