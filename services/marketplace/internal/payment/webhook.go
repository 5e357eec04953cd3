package payment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/omise/omise-go"
	"github.com/omise/omise-go/operations"
	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
)

var ErrSignature = errors.New("webhook could not be verified")

// Confirmation is the settled outcome of a payment created by CreateIntent.
type Confirmation struct {
	EventID   string
	IntentID  string
	Succeeded bool
	Amount    int64
	Currency  string
	Customer  string
	PlantID   string
	Quantity  int
	Reason    string
}

// WebhookVerifier authenticates a processor callback. Events that do not
// settle a payment yield (nil, nil).
type WebhookVerifier interface {
	VerifyWebhook(ctx context.Context, payload []byte, h http.Header) (*Confirmation, error)
}

// WithWebhookSecret sets the signing secret Stripe uses for this endpoint.
func (s *StripeProcessor) WithWebhookSecret(secret string) *StripeProcessor {
	s.webhookSecret = secret
	return s
}

func (s *StripeProcessor) VerifyWebhook(_ context.Context, payload []byte, h http.Header) (*Confirmation, error) {
	if s.webhookSecret == "" {
		return nil, fmt.Errorf("%w: no webhook secret configured", ErrSignature)
	}
	ev, err := webhook.ConstructEventWithOptions(payload, h.Get("Stripe-Signature"), s.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSignature, err)
	}
	var ok bool
	switch ev.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		ok = true
	case stripe.EventTypePaymentIntentPaymentFailed:
	default:
		return nil, nil
	}
	if ev.Data == nil {
		return nil, fmt.Errorf("%w: event %s has no data", ErrSignature, ev.ID)
	}
	var pi stripe.PaymentIntent
	if err := json.Unmarshal(ev.Data.Raw, &pi); err != nil {
		return nil, fmt.Errorf("decode payment intent: %w", err)
	}
	c := &Confirmation{
		EventID:   ev.ID,
		IntentID:  pi.ID,
		Succeeded: ok,
		Amount:    pi.Amount,
		Currency:  string(pi.Currency),
		Customer:  pi.Metadata["customer"],
		PlantID:   pi.Metadata["plant_id"],
	}
	c.Quantity, _ = strconv.Atoi(pi.Metadata["quantity"])
	if pi.LastPaymentError != nil {
		c.Reason = pi.LastPaymentError.Msg
	}
	return c, nil
}

// VerifyWebhook trusts nothing in the callback body except the event id and
// re-reads the event from Omise.
func (o *OmiseProcessor) VerifyWebhook(ctx context.Context, payload []byte, _ http.Header) (*Confirmation, error) {
	var inc struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(payload, &inc); err != nil || inc.ID == "" {
		return nil, fmt.Errorf("%w: malformed callback", ErrSignature)
	}

	ev := &omise.Event{}
	err := o.call(ctx, func() error {
		return o.client.Do(ev, &operations.RetrieveEvent{EventID: inc.ID})
	})
	var apiErr *omise.Error
	if errors.As(err, &apiErr) {
		return nil, fmt.Errorf("%w: event %s: %s", ErrSignature, inc.ID, apiErr.Message)
	}
	if err != nil {
		return nil, err
	}
	if ev.Key != "charge.complete" {
		return nil, nil
	}
	ch, ok := ev.Data.(*omise.Charge)
	if !ok {
		return nil, fmt.Errorf("%w: event %s carries %T, not a charge", ErrSignature, inc.ID, ev.Data)
	}

	c := &Confirmation{
		EventID:   ev.ID,
		IntentID:  ch.ID,
		Succeeded: ch.Status == omise.ChargeSuccessful,
		Amount:    ch.Amount,
		Currency:  ch.Currency,
	}
	c.Customer, _ = ch.Metadata["customer"].(string)
	c.PlantID, _ = ch.Metadata["plant_id"].(string)
	if q, ok := ch.Metadata["quantity"].(string); ok {
		c.Quantity, _ = strconv.Atoi(q)
	}
	if ch.FailureMessage != nil {
		c.Reason = *ch.FailureMessage
	} else if ch.FailureCode != nil {
		c.Reason = *ch.FailureCode
	}
	return c, nil
}
