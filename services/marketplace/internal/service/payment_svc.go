package service

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/access"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/events"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/payment"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/repository"
)

type PaymentSvc struct {
	plants    repository.PlantStore
	gate      *access.Gate
	processor payment.Processor
	idem      payment.IdempotencyStore // optional
	events    EventSink
	currency  string
	timeout   time.Duration
}

func NewPaymentSvc(plants repository.PlantStore, gate *access.Gate, p payment.Processor, idem payment.IdempotencyStore, sink EventSink, currency string, timeout time.Duration) *PaymentSvc {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &PaymentSvc{plants: plants, gate: gate, processor: p, idem: idem, events: sinkOrNop(sink), currency: currency, timeout: timeout}
}

// CreateIntent charges quantity * plant price. A non-empty key makes retries
// of the same request return the first intent.
func (s *PaymentSvc) CreateIntent(ctx context.Context, id access.Identity, plantID string, quantity int, key string) (*payment.Intent, error) {
	ctx, span := tracer.Start(ctx, "payment.create_intent")
	defer span.End()

	u, err := s.gate.Authorize(ctx, id)
	if err != nil {
		return nil, err
	}
	if quantity < 1 {
		return nil, invalid("quantity must be at least 1")
	}
	pid, err := parseID(plantID)
	if err != nil {
		return nil, err
	}
	plant, err := s.plants.ByID(ctx, pid)
	if err != nil {
		return nil, err
	}
	amount := payment.MinorUnits(plant.Price, quantity)
	if amount <= 0 {
		return nil, invalid("nothing to charge")
	}

	fingerprint := fmt.Sprintf("%s:%d:%d", pid.Hex(), quantity, amount)
	scoped := ""
	if key != "" {
		scoped = u.Email + ":" + key
		if s.idem != nil {
			rec, err := s.idem.Get(ctx, scoped)
			if err != nil {
				log.Printf("[payments] idempotency lookup: %v", err)
			} else if rec != nil {
				if rec.Fingerprint != fingerprint {
					return nil, conflict("idempotency key reused for a different request")
				}
				return &rec.Intent, nil
			}
		}
	}

	pctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	in, err := s.processor.CreateIntent(pctx, payment.IntentRequest{
		Amount:         amount,
		Currency:       s.currency,
		Description:    plant.Name,
		IdempotencyKey: scoped,
		Metadata: map[string]string{
			"plant_id": pid.Hex(),
			"quantity": strconv.Itoa(quantity),
			"customer": u.Email,
		},
	})
	if err != nil {
		return nil, err
	}
	if scoped != "" && s.idem != nil {
		if err := s.idem.Put(ctx, scoped, payment.Record{Fingerprint: fingerprint, Intent: *in}); err != nil {
			log.Printf("[payments] idempotency store: %v", err)
		}
	}
	return in, nil
}

// Confirm verifies a processor callback and announces the payment outcome.
// It returns nil for callbacks that do not settle a payment.
func (s *PaymentSvc) Confirm(ctx context.Context, payload []byte, h http.Header) (*payment.Confirmation, error) {
	ctx, span := tracer.Start(ctx, "payment.confirm")
	defer span.End()

	v, ok := s.processor.(payment.WebhookVerifier)
	if !ok {
		return nil, invalid("%s does not send webhooks", s.processor.Name())
	}
	vctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	c, err := v.VerifyWebhook(vctx, payload, h)
	if err != nil || c == nil {
		return nil, err
	}
	key := events.RKPaymentFailed
	if c.Succeeded {
		key = events.RKPaymentSucceeded
	}
	s.events.Dispatch(ctx, key, events.PaymentSettled{
		IntentID: c.IntentID,
		PlantID:  c.PlantID,
		Quantity: c.Quantity,
		Amount:   c.Amount,
		Currency: c.Currency,
		Customer: c.Customer,
		Reason:   c.Reason,
	})
	return c, nil
}
