package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/pkg/mq"
)

// Routing keys published by the marketplace.
const (
	RKOrderPlaced        = "order.placed"
	RKOrderStatusChanged = "order.status_changed"
	RKOrderCancelled     = "order.cancelled"

	RKUserRoleRequested = "user.role_requested"
	RKUserRoleChanged   = "user.role_changed"

	RKPaymentSucceeded = "payment.succeeded"
	RKPaymentFailed    = "payment.failed"
)

type Party struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type OrderPlaced struct {
	OrderID   string    `json:"order_id"`
	PlantID   string    `json:"plant_id"`
	PlantName string    `json:"plant_name"`
	Quantity  int       `json:"quantity"`
	Price     float64   `json:"price"`
	Address   string    `json:"address,omitempty"`
	Customer  Party     `json:"customer"`
	Seller    Party     `json:"seller"`
	PlacedAt  time.Time `json:"placed_at"`
}

type OrderStatusChanged struct {
	OrderID  string `json:"order_id"`
	From     string `json:"from"`
	To       string `json:"to"`
	Customer Party  `json:"customer"`
	Seller   Party  `json:"seller"`
}

type OrderCancelled struct {
	OrderID       string `json:"order_id"`
	PlantID       string `json:"plant_id"`
	Quantity      int    `json:"quantity"`
	StockReserved bool   `json:"stock_reserved"`
	Restocked     bool   `json:"restocked"`
	Customer      Party  `json:"customer"`
	Seller        Party  `json:"seller"`
}

type UserRole struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

// PaymentSettled carries the amount in the currency's minor unit.
type PaymentSettled struct {
	IntentID string `json:"intent_id"`
	PlantID  string `json:"plant_id,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Customer string `json:"customer"`
	Reason   string `json:"reason,omitempty"`
}

// DecodeEnvelope parses a delivery body. Bodies without an envelope id are
// rejected since they cannot be deduplicated.
func DecodeEnvelope(b []byte) (mq.Envelope, error) {
	var env mq.Envelope
	if err := json.Unmarshal(b, &env); err != nil {
		return env, fmt.Errorf("decode envelope: %w", err)
	}
	if env.ID == "" {
		return env, fmt.Errorf("envelope without id")
	}
	return env, nil
}

func Decode[T any](b []byte) (T, error) {
	var t T
	if err := json.Unmarshal(b, &t); err != nil {
		var zero T
		return zero, fmt.Errorf("decode payload failed: %w", err)
	}
	return t, nil
}
