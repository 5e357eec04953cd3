package events

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"
)

type Publisher interface {
	PublishEvent(ctx context.Context, key string, data any) (string, error)
}

// Dispatcher publishes events off the request path. Failures are logged and
// never reach the caller.
type Dispatcher struct {
	pub     Publisher
	timeout time.Duration
	wg      sync.WaitGroup
}

// NewDispatcher accepts a nil publisher; events are then only logged.
func NewDispatcher(pub Publisher, timeout time.Duration) *Dispatcher {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Dispatcher{pub: pub, timeout: timeout}
}

// Dispatch must be called after the state change it describes is stored.
// ctx only contributes its trace span; its cancellation is ignored.
func (d *Dispatcher) Dispatch(ctx context.Context, key string, data any) {
	if d.pub == nil {
		log.Printf("[events] %s (no broker configured)", key)
		return
	}
	span := trace.SpanContextFromContext(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		bg := trace.ContextWithSpanContext(context.Background(), span)
		pctx, cancel := context.WithTimeout(bg, d.timeout)
		defer cancel()
		if _, err := d.pub.PublishEvent(pctx, key, data); err != nil {
			log.Printf("[events] publish %s failed: %v", key, err)
		}
	}()
}

// Wait blocks until in-flight publishes finish.
func (d *Dispatcher) Wait() { d.wg.Wait() }
