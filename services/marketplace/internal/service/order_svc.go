package service

import (
	"context"
	"errors"
	"log"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/access"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/events"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/repository"
)

type OrderOptions struct {
	// ReserveStock takes the quantity from the plant while placing the order
	// instead of leaving it to a separate adjust call.
	ReserveStock bool
	// StockFloor refuses quantity changes that would go below zero.
	StockFloor bool
}

type PlaceOrderInput struct {
	PlantID  string        `json:"plantId"`
	Quantity int           `json:"quantity"`
	Price    float64       `json:"price"`
	Address  string        `json:"address"`
	Customer domain.Person `json:"customer"`
	Seller   domain.Person `json:"seller"`
}

type ReviewInput struct {
	PlantID string `json:"plantId"`
	OrderID string `json:"orderId"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

type OrderSvc struct {
	orders  repository.OrderStore
	plants  repository.PlantStore
	reviews repository.ReviewStore
	gate    *access.Gate
	events  EventSink
	opts    OrderOptions
}

func NewOrderSvc(store *repository.Store, gate *access.Gate, sink EventSink, opts OrderOptions) *OrderSvc {
	return &OrderSvc{
		orders:  store.Orders,
		plants:  store.Plants,
		reviews: store.Reviews,
		gate:    gate,
		events:  sinkOrNop(sink),
		opts:    opts,
	}
}

func (s *OrderSvc) Place(ctx context.Context, id access.Identity, in PlaceOrderInput) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "order.place")
	defer span.End()

	u, err := s.gate.Authorize(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Quantity < 1 {
		return nil, invalid("quantity must be at least 1")
	}
	if in.Price < 0 {
		return nil, invalid("price must not be negative")
	}
	pid, err := parseID(in.PlantID)
	if err != nil {
		return nil, err
	}
	plant, err := s.plants.ByID(ctx, pid)
	if err != nil {
		return nil, err
	}

	customer := person(u)
	if in.Customer.Email != "" && in.Customer.Email != u.Email {
		return nil, forbidden("orders can only be placed for yourself")
	}
	if in.Customer.Name != "" {
		customer.Name = in.Customer.Name
	}
	if in.Customer.Image != "" {
		customer.Image = in.Customer.Image
	}
	if in.Seller.Email != "" && in.Seller.Email != plant.Seller.Email {
		return nil, invalid("seller does not match the plant")
	}
	price := in.Price
	if price == 0 {
		price = decimal.NewFromFloat(plant.Price).Mul(decimal.NewFromInt(int64(in.Quantity))).Round(2).InexactFloat64()
	}

	ts := now()
	o := &domain.Order{
		PlantID:   pid,
		Customer:  customer,
		Seller:    domain.Person{Email: plant.Seller.Email, Name: plant.Seller.Name},
		Quantity:  in.Quantity,
		Price:     price,
		Address:   in.Address,
		Status:    domain.OrderPending,
		CreatedAt: ts,
		UpdatedAt: ts,
	}

	if s.opts.ReserveStock {
		if _, err := s.plants.AdjustQuantity(ctx, pid, -in.Quantity, true); err != nil {
			if errors.Is(err, domain.ErrConflict) {
				return nil, conflict("not enough stock")
			}
			return nil, err
		}
		o.StockReserved = true
	}
	if err := s.orders.Insert(ctx, o); err != nil {
		if o.StockReserved {
			s.restock(ctx, pid, in.Quantity)
		}
		return nil, err
	}
	span.SetAttributes(attribute.String("order.id", o.ID.Hex()), attribute.Int("order.quantity", o.Quantity))

	s.events.Dispatch(ctx, events.RKOrderPlaced, events.OrderPlaced{
		OrderID:   o.ID.Hex(),
		PlantID:   pid.Hex(),
		PlantName: plant.Name,
		Quantity:  o.Quantity,
		Price:     o.Price,
		Address:   o.Address,
		Customer:  o.Customer,
		Seller:    o.Seller,
		PlacedAt:  o.CreatedAt,
	})
	return o, nil
}

// AdjustQuantity applies +delta for increase and -delta otherwise.
func (s *OrderSvc) AdjustQuantity(ctx context.Context, id access.Identity, plantID string, delta int, dir domain.Direction) (*domain.Plant, error) {
	if _, err := s.gate.Authorize(ctx, id); err != nil {
		return nil, err
	}
	if delta <= 0 {
		return nil, invalid("quantityToUpdate must be positive")
	}
	pid, err := parseID(plantID)
	if err != nil {
		return nil, err
	}
	p, err := s.plants.AdjustQuantity(ctx, pid, dir.Signed(delta), s.opts.StockFloor)
	if errors.Is(err, domain.ErrConflict) {
		return nil, conflict("not enough stock")
	}
	return p, err
}

func (s *OrderSvc) TransitionStatus(ctx context.Context, id access.Identity, orderID string, to domain.OrderStatus) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "order.transition", trace.WithAttributes(attribute.String("order.status", string(to))))
	defer span.End()

	seller, err := s.gate.Authorize(ctx, id, domain.RoleSeller)
	if err != nil {
		return nil, err
	}
	if !to.Valid() {
		return nil, invalid("unknown status %q", to)
	}
	oid, err := parseID(orderID)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.ByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if o.Seller.Email != seller.Email {
		return nil, forbidden("order belongs to another seller")
	}
	if !domain.CanTransition(o.Status, to) {
		return nil, conflict(string(o.Status) + " -> " + string(to) + " is not allowed")
	}
	updated, err := s.orders.UpdateStatus(ctx, oid, o.Status, to)
	if errors.Is(err, domain.ErrConflict) {
		return nil, conflict("order changed concurrently")
	}
	if err != nil {
		return nil, err
	}
	if to == domain.OrderCancelled && o.StockReserved {
		s.restock(ctx, o.PlantID, o.Quantity)
	}
	s.events.Dispatch(ctx, events.RKOrderStatusChanged, events.OrderStatusChanged{
		OrderID:  oid.Hex(),
		From:     string(o.Status),
		To:       string(to),
		Customer: o.Customer,
		Seller:   o.Seller,
	})
	return updated, nil
}

// Cancel removes an undelivered order. Only stock taken at placement is put
// back; without reservation the client restores it with an increase call.
// Orders already cancelled by the seller were restocked then.
func (s *OrderSvc) Cancel(ctx context.Context, id access.Identity, orderID string) (*domain.Order, error) {
	ctx, span := tracer.Start(ctx, "order.cancel")
	defer span.End()

	u, err := s.gate.Authorize(ctx, id)
	if err != nil {
		return nil, err
	}
	oid, err := parseID(orderID)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.ByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if o.Customer.Email != u.Email && o.Seller.Email != u.Email && u.Role != domain.RoleAdmin {
		return nil, forbidden("not your order")
	}
	if o.Status == domain.OrderDelivered {
		return nil, conflict("Cannot cancel once the product is delivered!")
	}
	removed, err := s.orders.DeleteUnlessDelivered(ctx, oid)
	if errors.Is(err, domain.ErrConflict) {
		return nil, conflict("Cannot cancel once the product is delivered!")
	}
	if err != nil {
		return nil, err
	}
	restocked := removed.StockReserved && removed.Status != domain.OrderCancelled
	if restocked {
		s.restock(ctx, removed.PlantID, removed.Quantity)
	}
	s.events.Dispatch(ctx, events.RKOrderCancelled, events.OrderCancelled{
		OrderID:       oid.Hex(),
		PlantID:       removed.PlantID.Hex(),
		Quantity:      removed.Quantity,
		StockReserved: removed.StockReserved,
		Restocked:     restocked,
		Customer:      removed.Customer,
		Seller:        removed.Seller,
	})
	return removed, nil
}

func (s *OrderSvc) AttachReview(ctx context.Context, id access.Identity, in ReviewInput) (*domain.Review, error) {
	u, err := s.gate.Authorize(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Rating < 1 || in.Rating > 5 {
		return nil, invalid("rating must be between 1 and 5")
	}
	oid, err := parseID(in.OrderID)
	if err != nil {
		return nil, err
	}
	pid, err := parseID(in.PlantID)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.ByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if o.Customer.Email != u.Email {
		return nil, forbidden("only the customer who placed the order can review it")
	}
	if o.PlantID != pid {
		return nil, invalid("plant does not match the order")
	}
	if o.Status != domain.OrderDelivered {
		return nil, conflict("order is not delivered yet")
	}
	if o.Review {
		return nil, conflict("order already reviewed")
	}
	if err := s.orders.MarkReviewed(ctx, oid); err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, conflict("order already reviewed")
		}
		return nil, err
	}
	r := &domain.Review{
		PlantID:   pid,
		OrderID:   oid,
		Rating:    in.Rating,
		Comment:   in.Comment,
		UserEmail: u.Email,
		UserName:  u.Name,
		UserImage: u.Image,
		CreatedAt: now(),
	}
	if err := s.reviews.Insert(ctx, r); err != nil {
		if uerr := s.orders.UnmarkReviewed(ctx, oid); uerr != nil {
			log.Printf("[orders] unmark review on %s: %v", oid.Hex(), uerr)
		}
		if errors.Is(err, domain.ErrConflict) {
			return nil, conflict("order already reviewed")
		}
		return nil, err
	}
	return r, nil
}

func (s *OrderSvc) Reviews(ctx context.Context, plantID string) ([]domain.Review, error) {
	pid, err := parseID(plantID)
	if err != nil {
		return nil, err
	}
	return s.reviews.ListByPlant(ctx, pid)
}

func (s *OrderSvc) Get(ctx context.Context, id access.Identity, orderID string) (*domain.Order, error) {
	u, err := s.gate.Authorize(ctx, id)
	if err != nil {
		return nil, err
	}
	oid, err := parseID(orderID)
	if err != nil {
		return nil, err
	}
	o, err := s.orders.ByID(ctx, oid)
	if err != nil {
		return nil, err
	}
	if o.Customer.Email != u.Email && o.Seller.Email != u.Email && u.Role != domain.RoleAdmin {
		return nil, forbidden("not your order")
	}
	return o, nil
}

func (s *OrderSvc) ListForCustomer(ctx context.Context, id access.Identity, email string) ([]domain.OrderView, error) {
	u, err := s.gate.Authorize(ctx, id)
	if err != nil {
		return nil, err
	}
	if email != u.Email && u.Role != domain.RoleAdmin {
		return nil, forbidden("cannot read another customer's orders")
	}
	return s.orders.ListViews(ctx, repository.OrderQuery{CustomerEmail: email})
}

func (s *OrderSvc) ListForSeller(ctx context.Context, id access.Identity, email string) ([]domain.OrderView, error) {
	seller, err := s.gate.Authorize(ctx, id, domain.RoleSeller)
	if err != nil {
		return nil, err
	}
	if email != seller.Email {
		return nil, forbidden("cannot read another seller's orders")
	}
	return s.orders.ListViews(ctx, repository.OrderQuery{SellerEmail: email})
}

// restock is best effort; the order change it follows is already stored.
func (s *OrderSvc) restock(ctx context.Context, pid primitive.ObjectID, qty int) {
	if _, err := s.plants.AdjustQuantity(ctx, pid, qty, false); err != nil {
		log.Printf("[orders] restock plant=%s qty=%d failed: %v", pid.Hex(), qty, err)
	}
}
