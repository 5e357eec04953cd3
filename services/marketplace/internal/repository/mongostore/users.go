package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
)

type userRepo struct{ base }

func (r *userRepo) UpsertOnSignIn(ctx context.Context, u *domain.User) (*domain.User, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()

	now := time.Now().UTC()
	role := u.Role
	if role == "" {
		role = domain.RoleCustomer
	}
	update := bson.M{
		"$setOnInsert": bson.M{
			"name":      u.Name,
			"image":     u.Image,
			"role":      role,
			"createdAt": now,
		},
		"$set": bson.M{"lastLoginAt": now},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	var out domain.User
	if err := r.col.FindOneAndUpdate(ctx, bson.M{"email": u.Email}, update, opts).Decode(&out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *userRepo) ByEmail(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	var u domain.User
	if err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u); err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *userRepo) ListExcept(ctx context.Context, email string) ([]domain.User, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	cur, err := r.col.Find(ctx, bson.M{"email": bson.M{"$ne": email}},
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	out := []domain.User{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userRepo) MarkRequested(ctx context.Context, email string) (*domain.User, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	filter := bson.M{"email": email, "status": bson.M{"$ne": domain.StatusRequested}}
	update := bson.M{"$set": bson.M{"status": domain.StatusRequested}}
	var u domain.User
	err := r.col.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, r.missingOr(ctx, bson.M{"email": email})
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) SetRole(ctx context.Context, email string, role domain.Role, status domain.UserStatus) (*domain.User, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	update := bson.M{"$set": bson.M{"role": role, "status": status}}
	var u domain.User
	err := r.col.FindOneAndUpdate(ctx, bson.M{"email": email}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After)).Decode(&u)
	if err != nil {
		return nil, notFound(err)
	}
	return &u, nil
}

func (r *userRepo) CountByRole(ctx context.Context) (map[domain.Role]int64, error) {
	ctx, cancel := r.ctx(ctx)
	defer cancel()
	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$group", Value: bson.M{"_id": "$role", "count": bson.M{"$sum": 1}}}},
	})
	if err != nil {
		return nil, err
	}
	var rows []struct {
		Role  domain.Role `bson:"_id"`
		Count int64       `bson:"count"`
	}
	if err := cur.All(ctx, &rows); err != nil {
		return nil, err
	}
	out := make(map[domain.Role]int64, len(rows))
	for _, row := range rows {
		out[row.Role] = row.Count
	}
	return out, nil
}
