package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var ErrProcessor = errors.New("payment processor error")

type IntentRequest struct {
	Amount         int64 // minor units
	Currency       string
	Description    string
	IdempotencyKey string
	Metadata       map[string]string
}

type Intent struct {
	ID           string `json:"id"`
	ClientSecret string `json:"clientSecret"`
	Amount       int64  `json:"amount"`
	Currency     string `json:"currency"`
}

type Processor interface {
	Name() string
	CreateIntent(ctx context.Context, req IntentRequest) (*Intent, error)
}

// MinorUnits returns quantity*price in cents, rounded half away from zero.
func MinorUnits(price float64, quantity int) int64 {
	return decimal.NewFromFloat(price).
		Mul(decimal.NewFromInt(int64(quantity))).
		Shift(2).
		Round(0).
		IntPart()
}
