package mongostore

import (
	"context"
	"regexp"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
)

type plantRepo struct{ base }

func (r *plantRepo) Insert(ctx context.Context, p *domain.Plant) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, p)
	return err
}

func (r *plantRepo) ByID(ctx context.Context, id primitive.ObjectID) (*domain.Plant, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	var p domain.Plant
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *plantRepo) List(ctx context.Context, f domain.PlantFilter) ([]domain.Plant, int64, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Seller != "" {
		filter["seller.email"] = f.Seller
	}
	if f.Query != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(f.Query), Options: "i"}
	}
	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if f.PageSize > 0 {
		opts.SetLimit(int64(f.PageSize)).SetSkip(int64(f.Page * f.PageSize))
	}
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	out := []domain.Plant{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (r *plantRepo) Update(ctx context.Context, id primitive.ObjectID, patch domain.PlantPatch) (*domain.Plant, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	set := bson.M{}
	if patch.Name != nil {
		set["name"] = *patch.Name
	}
	if patch.Category != nil {
		set["category"] = *patch.Category
	}
	if patch.Description != nil {
		set["description"] = *patch.Description
	}
	if patch.Image != nil {
		set["image"] = *patch.Image
	}
	if patch.Price != nil {
		set["price"] = *patch.Price
	}
	if patch.Quantity != nil {
		set["quantity"] = *patch.Quantity
	}
	if len(set) == 0 {
		return r.ByID(ctx, id)
	}
	var p domain.Plant
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&p)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (r *plantRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *plantRepo) AdjustQuantity(ctx context.Context, id primitive.ObjectID, delta int, floor bool) (*domain.Plant, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	filter := bson.M{"_id": id}
	if floor && delta < 0 {
		filter["quantity"] = bson.M{"$gte": -delta}
	}
	var p domain.Plant
	err := r.col.FindOneAndUpdate(ctx, filter, bson.M{"$inc": bson.M{"quantity": delta}},
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, r.missingOr(ctx, bson.M{"_id": id})
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *plantRepo) Count(ctx context.Context, seller string) (int64, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	filter := bson.M{}
	if seller != "" {
		filter["seller.email"] = seller
	}
	return r.col.CountDocuments(ctx, filter)
}
