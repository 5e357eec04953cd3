package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.opentelemetry.io/otel"
)

// Envelope wraps every payload published on the exchange.
type Envelope struct {
	ID         string          `json:"id"`
	Event      string          `json:"event"`
	Version    int             `json:"version"`
	OccurredAt time.Time       `json:"occurred_at"`
	Data       json.RawMessage `json:"data"`
}

// channel is the part of *amqp.Channel the publisher uses.
type channel interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// link is one connection plus its publishing channel. It is marked dead as
// soon as the broker closes either of them.
type link struct {
	conn interface{ Close() error }
	ch   channel
	dead atomic.Bool
}

func (l *link) watch(connClosed, chClosed <-chan *amqp.Error) {
	go func() {
		var e *amqp.Error
		var ok bool
		select {
		case e, ok = <-connClosed:
		case e, ok = <-chClosed:
		}
		l.dead.Store(true)
		if ok && e != nil {
			log.Printf("[mq] publisher link closed: %v", e)
		}
	}()
}

func (l *link) close() {
	_ = l.ch.Close()
	if l.conn != nil {
		_ = l.conn.Close()
	}
}

// Publisher reopens its connection lazily: the first publish after the
// broker dropped the link dials again, at most once per redialEvery.
type Publisher struct {
	mu          sync.Mutex
	exchange    string
	dial        func() (*link, error)
	cur         *link
	lastDialErr time.Time
	redialEvery time.Duration
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	p := newPublisher(exchange, func() (*link, error) { return dialLink(url, exchange) })
	l, err := p.dial()
	if err != nil {
		return nil, err
	}
	p.cur = l
	return p, nil
}

func newPublisher(exchange string, dial func() (*link, error)) *Publisher {
	return &Publisher{exchange: exchange, dial: dial, redialEvery: 2 * time.Second}
}

func dialLink(url, exchange string) (*link, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	l := &link{conn: conn, ch: ch}
	l.watch(conn.NotifyClose(make(chan *amqp.Error, 1)), ch.NotifyClose(make(chan *amqp.Error, 1)))
	return l, nil
}

// live returns a usable link, dialing when the current one is gone.
// Callers hold p.mu.
func (p *Publisher) live() (*link, error) {
	if p.cur != nil && !p.cur.dead.Load() {
		return p.cur, nil
	}
	if p.cur != nil {
		p.cur.close()
		p.cur = nil
	}
	if !p.lastDialErr.IsZero() && time.Since(p.lastDialErr) < p.redialEvery {
		return nil, fmt.Errorf("rabbitmq unavailable, next dial in %s", p.redialEvery-time.Since(p.lastDialErr))
	}
	l, err := p.dial()
	if err != nil {
		p.lastDialErr = time.Now()
		return nil, err
	}
	p.lastDialErr = time.Time{}
	log.Printf("[mq] publisher reconnected to exchange %s", p.exchange)
	p.cur = l
	return l, nil
}

// PublishEvent wraps data in an Envelope keyed by a fresh id and publishes it
// persistently under key. Trace context travels in the message headers.
func (p *Publisher) PublishEvent(ctx context.Context, key string, data any) (string, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return "", err
	}
	env := Envelope{
		ID:         uuid.NewString(),
		Event:      key,
		Version:    1,
		OccurredAt: time.Now().UTC(),
		Data:       raw,
	}
	b, err := json.Marshal(env)
	if err != nil {
		return "", err
	}
	headers := amqp.Table{}
	otel.GetTextMapPropagator().Inject(ctx, HeaderCarrier(headers))

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    env.ID,
		Timestamp:    env.OccurredAt,
		Headers:      headers,
		Body:         b,
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// a link closed under us is only noticed on use; retry once on a fresh one
	for attempt := 0; ; attempt++ {
		l, err := p.live()
		if err != nil {
			return "", fmt.Errorf("publish %s: %w", key, err)
		}
		err = l.ch.PublishWithContext(ctx, p.exchange, key, false, false, msg)
		if err == nil {
			return env.ID, nil
		}
		if attempt > 0 || !errors.Is(err, amqp.ErrClosed) {
			return "", fmt.Errorf("publish %s: %w", key, err)
		}
		l.dead.Store(true)
	}
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cur == nil {
		return nil
	}
	_ = p.cur.ch.Close()
	var err error
	if p.cur.conn != nil {
		err = p.cur.conn.Close()
	}
	p.cur = nil
	return err
}
