package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type Plant struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	Name        string             `bson:"name" json:"name"`
	Category    string             `bson:"category" json:"category"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Image       string             `bson:"image,omitempty" json:"image,omitempty"`
	Price       float64            `bson:"price" json:"price"`
	Quantity    int                `bson:"quantity" json:"quantity"`
	Seller      Person             `bson:"seller" json:"seller"`
	CreatedAt   time.Time          `bson:"createdAt" json:"createdAt"`
}

type PlantFilter struct {
	Category string
	Query    string // case-insensitive name match
	Seller   string
	Page     int // zero based
	PageSize int
}

// PlantPatch carries the seller-editable fields; nil leaves a field alone.
type PlantPatch struct {
	Name        *string  `json:"name"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Image       *string  `json:"image"`
	Price       *float64 `json:"price"`
	Quantity    *int     `json:"quantity"`
}

type Direction string

const (
	Increase Direction = "increase"
	Decrease Direction = "decrease"
)

// Signed returns +delta for increase and -delta for anything else.
func (d Direction) Signed(delta int) int {
	if d == Increase {
		return delta
	}
	return -delta
}
