package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/payment"
)

type fakeProcessor struct {
	calls []payment.IntentRequest
	err   error
}

func (p *fakeProcessor) Name() string { return "fake" }

func (p *fakeProcessor) CreateIntent(ctx context.Context, req payment.IntentRequest) (*payment.Intent, error) {
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("processor called without deadline")
	}
	p.calls = append(p.calls, req)
	if p.err != nil {
		return nil, p.err
	}
	id := fmt.Sprintf("pi_%d", len(p.calls))
	return &payment.Intent{ID: id, ClientSecret: id + "_secret", Amount: req.Amount, Currency: req.Currency}, nil
}

type verifyingProcessor struct {
	fakeProcessor
	confirm *payment.Confirmation
	err     error
}

func (p *verifyingProcessor) VerifyWebhook(_ context.Context, _ []byte, _ http.Header) (*payment.Confirmation, error) {
	return p.confirm, p.err
}

type memIdempotency map[string]payment.Record

func (m memIdempotency) Get(_ context.Context, key string) (*payment.Record, error) {
	if r, ok := m[key]; ok {
		return &r, nil
	}
	return nil, nil
}

func (m memIdempotency) Put(_ context.Context, key string, rec payment.Record) error {
	if _, ok := m[key]; !ok {
		m[key] = rec
	}
	return nil
}

func TestCreateIntentAmountInMinorUnits(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	p := f.plant(seller, 10.00, 5)
	proc := &fakeProcessor{}
	svc := NewPaymentSvc(f.store.Plants, f.gate, proc, nil, nil, "usd", time.Second)

	in, err := svc.CreateIntent(f.ctx, customer, p.ID.Hex(), 2, "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(proc.calls) != 1 || proc.calls[0].Amount != 2000 || proc.calls[0].Currency != "usd" {
		t.Fatalf("processor calls = %+v", proc.calls)
	}
	if in.ClientSecret == "" {
		t.Fatal("empty client secret")
	}
}

func TestCreateIntentErrors(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	p := f.plant(seller, 10, 5)
	free := f.plant(seller, 0, 5)
	proc := &fakeProcessor{}
	svc := NewPaymentSvc(f.store.Plants, f.gate, proc, nil, nil, "usd", time.Second)

	if _, err := svc.CreateIntent(f.ctx, customer, "65a000000000000000000000", 1, ""); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing plant: %v", err)
	}
	if _, err := svc.CreateIntent(f.ctx, customer, p.ID.Hex(), 0, ""); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("zero quantity: %v", err)
	}
	if _, err := svc.CreateIntent(f.ctx, customer, free.ID.Hex(), 1, ""); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("free plant: %v", err)
	}
	proc.err = fmt.Errorf("%w: declined", payment.ErrProcessor)
	if _, err := svc.CreateIntent(f.ctx, customer, p.ID.Hex(), 1, ""); !errors.Is(err, payment.ErrProcessor) {
		t.Fatalf("processor failure: %v", err)
	}
}

func TestCreateIntentIdempotencyKey(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	p := f.plant(seller, 4.5, 5)
	proc := &fakeProcessor{}
	svc := NewPaymentSvc(f.store.Plants, f.gate, proc, memIdempotency{}, nil, "usd", time.Second)

	first, err := svc.CreateIntent(f.ctx, customer, p.ID.Hex(), 2, "checkout-1")
	if err != nil {
		t.Fatal(err)
	}
	retry, err := svc.CreateIntent(f.ctx, customer, p.ID.Hex(), 2, "checkout-1")
	if err != nil {
		t.Fatal(err)
	}
	if retry.ID != first.ID || len(proc.calls) != 1 {
		t.Fatalf("retry created a new intent: %s vs %s (%d calls)", retry.ID, first.ID, len(proc.calls))
	}
	if proc.calls[0].IdempotencyKey != customer.Email+":checkout-1" {
		t.Fatalf("key = %q", proc.calls[0].IdempotencyKey)
	}
	if _, err := svc.CreateIntent(f.ctx, customer, p.ID.Hex(), 3, "checkout-1"); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("reused key: %v", err)
	}
	if _, err := svc.CreateIntent(f.ctx, seller2, p.ID.Hex(), 2, "checkout-1"); err != nil {
		t.Fatalf("other user with same key: %v", err)
	}
	if len(proc.calls) != 2 {
		t.Fatalf("calls = %d", len(proc.calls))
	}
}

func TestConfirmAnnouncesOutcome(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	proc := &verifyingProcessor{confirm: &payment.Confirmation{IntentID: "pi_1", Succeeded: true, Amount: 2000}}
	svc := NewPaymentSvc(f.store.Plants, f.gate, proc, nil, f.sink, "usd", time.Second)

	c, err := svc.Confirm(f.ctx, []byte("{}"), http.Header{})
	if err != nil || c.IntentID != "pi_1" {
		t.Fatalf("confirm: %+v, %v", c, err)
	}
	proc.confirm = &payment.Confirmation{IntentID: "pi_2", Reason: "card declined"}
	if _, err := svc.Confirm(f.ctx, []byte("{}"), http.Header{}); err != nil {
		t.Fatal(err)
	}
	proc.confirm = nil
	if c, err := svc.Confirm(f.ctx, []byte("{}"), http.Header{}); c != nil || err != nil {
		t.Fatalf("ignored event: %+v, %v", c, err)
	}
	if f.sink.seen("payment.succeeded") != 1 || f.sink.seen("payment.failed") != 1 {
		t.Fatalf("events = %v", f.sink.keys)
	}

	proc.err = payment.ErrSignature
	if _, err := svc.Confirm(f.ctx, []byte("{}"), http.Header{}); !errors.Is(err, payment.ErrSignature) {
		t.Fatalf("bad signature: %v", err)
	}
}

func TestConfirmWithoutWebhookSupport(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	svc := NewPaymentSvc(f.store.Plants, f.gate, &fakeProcessor{}, nil, f.sink, "usd", time.Second)
	if _, err := svc.Confirm(f.ctx, nil, http.Header{}); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("err = %v", err)
	}
}
