package notifier

import (
	"errors"
	"fmt"
	"strings"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/notification-service/internal/events"
)

// ErrUnknownEvent is returned by Render for routing keys it has no template for.
var ErrUnknownEvent = errors.New("no template for event")

// Render turns one event into the mails it causes. Order events mail both the
// customer and the seller.
func Render(key string, data []byte) ([]Message, error) {
	switch key {
	case events.RKOrderPlaced:
		ev, err := events.Decode[events.OrderPlaced](data)
		if err != nil {
			return nil, err
		}
		return both(ev.Customer, ev.Seller,
			Message{
				Subject: "Your PlantNet order is placed",
				Body: fmt.Sprintf("Hi %s,\n\nWe received your order %s for %d x %s (total %.2f).\nShipping to: %s\n",
					name(ev.Customer), ev.OrderID, ev.Quantity, ev.PlantName, ev.Price, orDash(ev.Address)),
			},
			Message{
				Subject: "New order for " + ev.PlantName,
				Body: fmt.Sprintf("Hi %s,\n\n%s ordered %d x %s (order %s). Please start processing it.\n",
					name(ev.Seller), ev.Customer.Email, ev.Quantity, ev.PlantName, ev.OrderID),
			}), nil

	case events.RKOrderStatusChanged:
		ev, err := events.Decode[events.OrderStatusChanged](data)
		if err != nil {
			return nil, err
		}
		return both(ev.Customer, ev.Seller,
			Message{
				Subject: fmt.Sprintf("Order %s is %s", ev.OrderID, ev.To),
				Body:    fmt.Sprintf("Hi %s,\n\nYour order %s moved from %s to %s.\n", name(ev.Customer), ev.OrderID, ev.From, ev.To),
			},
			Message{
				Subject: fmt.Sprintf("Order %s updated", ev.OrderID),
				Body:    fmt.Sprintf("Order %s is now %s.\n", ev.OrderID, ev.To),
			}), nil

	case events.RKOrderCancelled:
		ev, err := events.Decode[events.OrderCancelled](data)
		if err != nil {
			return nil, err
		}
		seller := fmt.Sprintf("Order %s from %s was cancelled.", ev.OrderID, ev.Customer.Email)
		if ev.Restocked {
			seller += fmt.Sprintf(" %d item(s) went back into stock.", ev.Quantity)
		} else if !ev.StockReserved {
			seller += " Stock was not held for this order, so the plant quantity is unchanged."
		}
		return both(ev.Customer, ev.Seller,
			Message{
				Subject: "Your PlantNet order was cancelled",
				Body:    fmt.Sprintf("Hi %s,\n\nOrder %s has been cancelled.\n", name(ev.Customer), ev.OrderID),
			},
			Message{Subject: "Order cancelled", Body: seller + "\n"}), nil

	case events.RKUserRoleRequested:
		ev, err := events.Decode[events.UserRole](data)
		if err != nil {
			return nil, err
		}
		return []Message{{
			To:      ev.Email,
			Subject: "We got your seller request",
			Body:    "Thanks for applying to sell on PlantNet. An admin will review your request soon.\n",
		}}, nil

	case events.RKUserRoleChanged:
		ev, err := events.Decode[events.UserRole](data)
		if err != nil {
			return nil, err
		}
		return []Message{{
			To:      ev.Email,
			Subject: "Your PlantNet role changed",
			Body:    fmt.Sprintf("Your account is now a %s account.\n", ev.Role),
		}}, nil

	case events.RKPaymentSucceeded, events.RKPaymentFailed:
		ev, err := events.Decode[events.PaymentSettled](data)
		if err != nil {
			return nil, err
		}
		if ev.Customer == "" {
			return nil, nil
		}
		amount := fmt.Sprintf("%d.%02d %s", ev.Amount/100, ev.Amount%100, strings.ToUpper(ev.Currency))
		if key == events.RKPaymentSucceeded {
			return []Message{{
				To:      ev.Customer,
				Subject: "Payment received",
				Body:    fmt.Sprintf("We received your payment of %s (ref %s).\n", amount, ev.IntentID),
			}}, nil
		}
		return []Message{{
			To:      ev.Customer,
			Subject: "Payment failed",
			Body:    fmt.Sprintf("Your payment of %s did not go through: %s.\n", amount, orDash(ev.Reason)),
		}}, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownEvent, key)
}

// both addresses the first message to the customer and the second to the
// seller, dropping any party without an email.
func both(customer, seller events.Party, toCustomer, toSeller Message) []Message {
	var out []Message
	if customer.Email != "" {
		toCustomer.To = customer.Email
		out = append(out, toCustomer)
	}
	if seller.Email != "" {
		toSeller.To = seller.Email
		out = append(out, toSeller)
	}
	return out
}

func name(p events.Party) string {
	if n := strings.TrimSpace(p.Name); n != "" {
		return n
	}
	return p.Email
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
