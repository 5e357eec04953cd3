package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/repository"
)

type orderRepo struct {
	base
	plants string
}

func (r *orderRepo) Insert(ctx context.Context, o *domain.Order) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	_, err := r.col.InsertOne(ctx, o)
	return err
}

func (r *orderRepo) ByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	var o domain.Order
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&o); err != nil {
		return nil, notFound(err)
	}
	return &o, nil
}

// ListViews joins each order with its plant so the dashboard can show
// name, image and category without a second round trip.
func (r *orderRepo) ListViews(ctx context.Context, q repository.OrderQuery) ([]domain.OrderView, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	match := bson.M{}
	if q.CustomerEmail != "" {
		match["customer.email"] = q.CustomerEmail
	}
	if q.SellerEmail != "" {
		match["seller.email"] = q.SellerEmail
	}
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$lookup", Value: bson.M{
			"from":         r.plants,
			"localField":   "plantId",
			"foreignField": "_id",
			"as":           "plant",
		}}},
		{{Key: "$unwind", Value: bson.M{"path": "$plant", "preserveNullAndEmptyArrays": true}}},
		{{Key: "$addFields", Value: bson.M{
			"name":     "$plant.name",
			"image":    "$plant.image",
			"category": "$plant.category",
		}}},
		{{Key: "$project", Value: bson.M{"plant": 0}}},
		{{Key: "$sort", Value: bson.D{{Key: "createdAt", Value: -1}}}},
	}
	cur, err := r.col.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	out := []domain.OrderView{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.OrderStatus) (*domain.Order, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now().UTC()}}
	var o domain.Order
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id, "status": from}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return nil, r.missingOr(ctx, bson.M{"_id": id})
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) DeleteUnlessDelivered(ctx context.Context, id primitive.ObjectID) (*domain.Order, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	filter := bson.M{"_id": id, "status": bson.M{"$ne": domain.OrderDelivered}}
	var o domain.Order
	err := r.col.FindOneAndDelete(ctx, filter).Decode(&o)
	if err == mongo.ErrNoDocuments {
		return nil, r.missingOr(ctx, bson.M{"_id": id})
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) MarkReviewed(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	filter := bson.M{"_id": id, "status": domain.OrderDelivered, "review": false}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": bson.M{"review": true}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return r.missingOr(ctx, bson.M{"_id": id})
	}
	return nil
}

func (r *orderRepo) UnmarkReviewed(ctx context.Context, id primitive.ObjectID) error {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	_, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"review": false}})
	return err
}

func revenueMatch(seller string) bson.M {
	m := bson.M{"status": bson.M{"$ne": domain.OrderCancelled}}
	if seller != "" {
		m["seller.email"] = seller
	}
	return m
}

func (r *orderRepo) Totals(ctx context.Context, seller string) (domain.OrderTotals, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: revenueMatch(seller)}},
		{{Key: "$group", Value: bson.M{
			"_id":          nil,
			"totalOrders":  bson.M{"$sum": 1},
			"totalRevenue": bson.M{"$sum": "$price"},
		}}},
	})
	if err != nil {
		return domain.OrderTotals{}, err
	}
	var rows []domain.OrderTotals
	if err := cur.All(ctx, &rows); err != nil {
		return domain.OrderTotals{}, err
	}
	if len(rows) == 0 {
		return domain.OrderTotals{}, nil
	}
	return rows[0], nil
}

func (r *orderRepo) Daily(ctx context.Context, seller string) ([]domain.DailyPoint, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: revenueMatch(seller)}},
		{{Key: "$group", Value: bson.M{
			"_id":      bson.M{"$dateToString": bson.M{"format": "%Y-%m-%d", "date": "$createdAt"}},
			"quantity": bson.M{"$sum": "$quantity"},
			"price":    bson.M{"$sum": "$price"},
			"order":    bson.M{"$sum": 1},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	})
	if err != nil {
		return nil, err
	}
	out := []domain.DailyPoint{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
