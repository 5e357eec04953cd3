package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderDelivered  OrderStatus = "delivered"
	OrderCancelled  OrderStatus = "cancelled"
)

var transitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderProcessing, OrderCancelled},
	OrderProcessing: {OrderDelivered, OrderCancelled},
}

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderPending, OrderProcessing, OrderDelivered, OrderCancelled:
		return true
	}
	return false
}

// CanTransition reports whether from -> to is allowed. Delivered and
// cancelled are terminal.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

type Order struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	PlantID  primitive.ObjectID `bson:"plantId" json:"plantId"`
	Customer Person             `bson:"customer" json:"customer"`
	Seller   Person             `bson:"seller" json:"seller"`
	Quantity int                `bson:"quantity" json:"quantity"`
	// total price of the order in major units
	Price   float64     `bson:"price" json:"price"`
	Address string      `bson:"address,omitempty" json:"address,omitempty"`
	Status  OrderStatus `bson:"status" json:"status"`
	Review  bool        `bson:"review" json:"review"`
	// set when stock was taken at placement time
	StockReserved bool      `bson:"stockReserved" json:"stockReserved"`
	CreatedAt     time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt     time.Time `bson:"updatedAt" json:"updatedAt"`
}

// OrderView is an order joined with the plant it refers to.
type OrderView struct {
	Order    `bson:",inline"`
	Name     string `bson:"name" json:"name"`
	Image    string `bson:"image" json:"image"`
	Category string `bson:"category" json:"category"`
}

type Review struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	PlantID   primitive.ObjectID `bson:"plantId" json:"plantId"`
	OrderID   primitive.ObjectID `bson:"orderId" json:"orderId"`
	Rating    int                `bson:"rating" json:"rating"`
	Comment   string             `bson:"comment" json:"comment"`
	UserEmail string             `bson:"userEmail" json:"userEmail"`
	UserName  string             `bson:"userName,omitempty" json:"userName,omitempty"`
	UserImage string             `bson:"userImage,omitempty" json:"userImage,omitempty"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}

type Contact struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name      string             `bson:"name" json:"name"`
	Email     string             `bson:"email" json:"email"`
	Subject   string             `bson:"subject,omitempty" json:"subject,omitempty"`
	Message   string             `bson:"message" json:"message"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
