package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/repository"
)

const (
	colUsers    = "users"
	colPlants   = "plants"
	colOrders   = "orders"
	colReviews  = "reviews"
	colContacts = "contacts"
)

// base bounds every call with the configured store timeout.
type base struct {
	col     *mongo.Collection
	timeout time.Duration
}

func (b base) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if b.timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, b.timeout)
}

// missingOr tells a failed conditional write apart: ErrConflict when the
// document exists in another state, ErrNotFound when it is gone.
func (b base) missingOr(ctx context.Context, filter bson.M) error {
	n, err := b.col.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return domain.ErrConflict
}

func notFound(err error) error {
	if errors.Is(err, mongo.ErrNoDocuments) {
		return domain.ErrNotFound
	}
	return err
}

// Open wires the PlantNet collections of client into a repository.Store.
// The client is disconnected by Store.Close.
func Open(ctx context.Context, client *mongo.Client, dbName string, timeout time.Duration) (*repository.Store, error) {
	db := client.Database(dbName)
	if err := ensureIndexes(ctx, db); err != nil {
		return nil, err
	}
	mk := func(name string) base { return base{col: db.Collection(name), timeout: timeout} }
	return &repository.Store{
		Users:    &userRepo{mk(colUsers)},
		Plants:   &plantRepo{mk(colPlants)},
		Orders:   &orderRepo{base: mk(colOrders), plants: colPlants},
		Reviews:  &reviewRepo{mk(colReviews)},
		Contacts: &contactRepo{mk(colContacts)},
		Close:    client.Disconnect,
	}, nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database) error {
	specs := map[string][]mongo.IndexModel{
		colUsers: {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		},
		colPlants: {
			{Keys: bson.D{{Key: "seller.email", Value: 1}}},
			{Keys: bson.D{{Key: "category", Value: 1}}},
		},
		colOrders: {
			{Keys: bson.D{{Key: "customer.email", Value: 1}, {Key: "createdAt", Value: -1}}},
			{Keys: bson.D{{Key: "seller.email", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		colReviews: {
			{Keys: bson.D{{Key: "orderId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "plantId", Value: 1}}},
		},
	}
	for name, models := range specs {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("indexes on %s: %w", name, err)
		}
	}
	return nil
}
