package mongostore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
)

type reviewRepo struct{ base }

func (r *reviewRepo) Insert(ctx context.Context, rv *domain.Review) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	if rv.ID.IsZero() {
		rv.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, rv)
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrConflict
	}
	return err
}

func (r *reviewRepo) ListByPlant(ctx context.Context, plantID primitive.ObjectID) ([]domain.Review, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	cur, err := r.col.Find(ctx, bson.M{"plantId": plantID},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := []domain.Review{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

type contactRepo struct{ base }

func (r *contactRepo) Insert(ctx context.Context, c *domain.Contact) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, c)
	return err
}

func (r *contactRepo) List(ctx context.Context) ([]domain.Contact, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	cur, err := r.col.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := []domain.Contact{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
