package events

import (
	"time"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
)

const (
	RKOrderPlaced        = "order.placed"
	RKOrderStatusChanged = "order.status_changed"
	RKOrderCancelled     = "order.cancelled"

	RKUserRoleRequested = "user.role_requested"
	RKUserRoleChanged   = "user.role_changed"

	RKPaymentSucceeded = "payment.succeeded"
	RKPaymentFailed    = "payment.failed"
)

type OrderPlaced struct {
	OrderID   string        `json:"order_id"`
	PlantID   string        `json:"plant_id"`
	PlantName string        `json:"plant_name"`
	Quantity  int           `json:"quantity"`
	Price     float64       `json:"price"`
	Address   string        `json:"address,omitempty"`
	Customer  domain.Person `json:"customer"`
	Seller    domain.Person `json:"seller"`
	PlacedAt  time.Time     `json:"placed_at"`
}

type OrderStatusChanged struct {
	OrderID  string        `json:"order_id"`
	From     string        `json:"from"`
	To       string        `json:"to"`
	Customer domain.Person `json:"customer"`
	Seller   domain.Person `json:"seller"`
}

type OrderCancelled struct {
	OrderID       string        `json:"order_id"`
	PlantID       string        `json:"plant_id"`
	Quantity      int           `json:"quantity"`
	StockReserved bool          `json:"stock_reserved"`
	Restocked     bool          `json:"restocked"`
	Customer      domain.Person `json:"customer"`
	Seller        domain.Person `json:"seller"`
}

type UserRole struct {
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

type PaymentSettled struct {
	IntentID string `json:"intent_id"`
	PlantID  string `json:"plant_id,omitempty"`
	Quantity int    `json:"quantity,omitempty"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	Customer string `json:"customer"`
	Reason   string `json:"reason,omitempty"`
}
