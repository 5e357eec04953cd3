package payment

import (
	"context"
	"fmt"

	stripe "github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/paymentintent"
)

type StripeProcessor struct {
	pi            paymentintent.Client
	webhookSecret string
}

func NewStripe(secretKey string) *StripeProcessor {
	return NewStripeWithBackend(secretKey, stripe.GetBackend(stripe.APIBackend))
}

func NewStripeWithBackend(secretKey string, b stripe.Backend) *StripeProcessor {
	return &StripeProcessor{pi: paymentintent.Client{B: b, Key: secretKey}}
}

func (s *StripeProcessor) Name() string { return "stripe" }

func (s *StripeProcessor) CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(req.Amount),
		Currency:           stripe.String(req.Currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	if req.Description != "" {
		params.Description = stripe.String(req.Description)
	}
	params.Context = ctx
	if req.IdempotencyKey != "" {
		params.SetIdempotencyKey(req.IdempotencyKey)
	}
	for k, v := range req.Metadata {
		params.AddMetadata(k, v)
	}
	pi, err := s.pi.New(params)
	if err != nil {
		if se, ok := err.(*stripe.Error); ok {
			return nil, fmt.Errorf("%w: stripe %s: %s", ErrProcessor, se.Code, se.Msg)
		}
		return nil, fmt.Errorf("%w: %v", ErrProcessor, err)
	}
	return &Intent{ID: pi.ID, ClientSecret: pi.ClientSecret, Amount: pi.Amount, Currency: string(pi.Currency)}, nil
}
