package mq

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

type fakeChannel struct {
	mu     sync.Mutex
	sent   []amqp.Publishing
	err    error
	closed bool
}

func (c *fakeChannel) PublishWithContext(_ context.Context, _, _ string, _, _ bool, msg amqp.Publishing) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, msg)
	return nil
}

func (c *fakeChannel) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

// broker hands out a new fake channel per dial.
type broker struct {
	dials    int
	down     bool
	channels []*fakeChannel
	notify   []chan *amqp.Error
}

func (b *broker) dial() (*link, error) {
	b.dials++
	if b.down {
		return nil, errors.New("connection refused")
	}
	ch := &fakeChannel{}
	closed := make(chan *amqp.Error, 1)
	b.channels = append(b.channels, ch)
	b.notify = append(b.notify, closed)
	l := &link{ch: ch}
	l.watch(closed, nil)
	return l, nil
}

func (b *broker) last() *fakeChannel { return b.channels[len(b.channels)-1] }

func TestPublishEventEnvelope(t *testing.T) {
	b := &broker{}
	p := newPublisher("marketplace.exchange", b.dial)

	id, err := p.PublishEvent(context.Background(), "order.placed", map[string]string{"order_id": "o1"})
	if err != nil {
		t.Fatal(err)
	}
	msg := b.last().sent[0]
	var env Envelope
	if err := json.Unmarshal(msg.Body, &env); err != nil {
		t.Fatal(err)
	}
	if env.ID != id || msg.MessageId != id || env.Event != "order.placed" || msg.DeliveryMode != amqp.Persistent {
		t.Fatalf("envelope = %+v, message id %q", env, msg.MessageId)
	}
}

func TestPublisherRedialsAfterBrokerClose(t *testing.T) {
	b := &broker{}
	p := newPublisher("x", b.dial)
	ctx := context.Background()

	if _, err := p.PublishEvent(ctx, "k", 1); err != nil {
		t.Fatal(err)
	}
	first := b.last()
	b.notify[0] <- &amqp.Error{Code: amqp.ConnectionForced, Reason: "broker restart"}

	deadline := time.Now().Add(time.Second)
	for !p.cur.dead.Load() {
		if time.Now().After(deadline) {
			t.Fatal("link never marked dead")
		}
		time.Sleep(time.Millisecond)
	}
	if _, err := p.PublishEvent(ctx, "k", 2); err != nil {
		t.Fatalf("publish after close: %v", err)
	}
	if b.dials != 2 || !first.closed || len(b.last().sent) != 1 {
		t.Fatalf("dials=%d first closed=%v", b.dials, first.closed)
	}
}

func TestPublisherRetriesOnceOnClosedChannel(t *testing.T) {
	b := &broker{}
	p := newPublisher("x", b.dial)
	ctx := context.Background()

	if _, err := p.PublishEvent(ctx, "k", 1); err != nil {
		t.Fatal(err)
	}
	b.last().err = amqp.ErrClosed
	if _, err := p.PublishEvent(ctx, "k", 2); err != nil {
		t.Fatalf("publish on closed channel: %v", err)
	}
	if b.dials != 2 || len(b.last().sent) != 1 {
		t.Fatalf("dials=%d", b.dials)
	}

	b.last().err = errors.New("precondition failed")
	if _, err := p.PublishEvent(ctx, "k", 3); err == nil || b.dials != 2 {
		t.Fatalf("other errors must not redial: %v, dials=%d", err, b.dials)
	}
}

func TestPublisherBacksOffWhileBrokerIsDown(t *testing.T) {
	b := &broker{down: true}
	p := newPublisher("x", b.dial)
	p.redialEvery = time.Hour
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := p.PublishEvent(ctx, "k", i); err == nil {
			t.Fatal("publish succeeded with broker down")
		}
	}
	if b.dials != 1 {
		t.Fatalf("dials = %d, want 1", b.dials)
	}

	b.down = false
	p.redialEvery = 0
	if _, err := p.PublishEvent(ctx, "k", 4); err != nil {
		t.Fatalf("after recovery: %v", err)
	}
}
