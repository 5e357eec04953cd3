package payment

import (
	"bytes"
	"context"
	"errors"
	"testing"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/form"
)

func TestMinorUnits(t *testing.T) {
	cases := []struct {
		price float64
		qty   int
		want  int64
	}{
		{10.00, 2, 2000},
		{19.99, 3, 5997},
		{0.1, 3, 30},
		{12.345, 1, 1235},
		{7, 0, 0},
	}
	for _, c := range cases {
		if got := MinorUnits(c.price, c.qty); got != c.want {
			t.Errorf("MinorUnits(%v, %d) = %d, want %d", c.price, c.qty, got, c.want)
		}
	}
}

// fakeBackend captures the payment intent params instead of calling Stripe.
type fakeBackend struct {
	params *stripe.PaymentIntentParams
	err    error
}

func (f *fakeBackend) Call(method, path, key string, params stripe.ParamsContainer, v stripe.LastResponseSetter) error {
	f.params = params.(*stripe.PaymentIntentParams)
	if f.err != nil {
		return f.err
	}
	pi := v.(*stripe.PaymentIntent)
	pi.ID = "pi_123"
	pi.ClientSecret = "pi_123_secret_abc"
	pi.Amount = *f.params.Amount
	pi.Currency = stripe.Currency(*f.params.Currency)
	return nil
}

func (f *fakeBackend) CallStreaming(method, path, key string, params stripe.ParamsContainer, v stripe.StreamingLastResponseSetter) error {
	return errors.New("not implemented")
}

func (f *fakeBackend) CallRaw(method, path, key string, body *form.Values, params *stripe.Params, v stripe.LastResponseSetter) error {
	return errors.New("not implemented")
}

func (f *fakeBackend) CallMultipart(method, path, key, boundary string, body *bytes.Buffer, params *stripe.Params, v stripe.LastResponseSetter) error {
	return errors.New("not implemented")
}

func (f *fakeBackend) SetMaxNetworkRetries(int64) {}

func TestStripeCreateIntent(t *testing.T) {
	b := &fakeBackend{}
	p := NewStripeWithBackend("sk_test", b)
	in, err := p.CreateIntent(context.Background(), IntentRequest{
		Amount:         2000,
		Currency:       "usd",
		IdempotencyKey: "key-1",
		Metadata:       map[string]string{"plant_id": "p1"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if in.ClientSecret != "pi_123_secret_abc" || in.Amount != 2000 {
		t.Fatalf("intent = %+v", in)
	}
	if *b.params.Amount != 2000 || *b.params.Currency != "usd" {
		t.Fatalf("params amount=%d currency=%s", *b.params.Amount, *b.params.Currency)
	}
	if b.params.IdempotencyKey == nil || *b.params.IdempotencyKey != "key-1" {
		t.Fatal("idempotency key not forwarded")
	}
	if b.params.Metadata["plant_id"] != "p1" {
		t.Fatalf("metadata = %v", b.params.Metadata)
	}
	if b.params.Context == nil {
		t.Fatal("context not attached")
	}
}

func TestStripeErrorsWrapProcessorError(t *testing.T) {
	b := &fakeBackend{err: &stripe.Error{Code: stripe.ErrorCodeAmountTooSmall, Msg: "too small"}}
	_, err := NewStripeWithBackend("sk_test", b).CreateIntent(context.Background(), IntentRequest{Amount: 1, Currency: "usd"})
	if !errors.Is(err, ErrProcessor) {
		t.Fatalf("want ErrProcessor, got %v", err)
	}
}
