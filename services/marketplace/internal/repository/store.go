package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
)

// Implementations return domain.ErrNotFound for missing documents and
// domain.ErrConflict when a conditional write finds the document in the
// wrong state.

type UserStore interface {
	// UpsertOnSignIn inserts u when its email is unknown, otherwise bumps
	// lastLoginAt and returns the stored user untouched.
	UpsertOnSignIn(ctx context.Context, u *domain.User) (*domain.User, error)
	ByEmail(ctx context.Context, email string) (*domain.User, error)
	ListExcept(ctx context.Context, email string) ([]domain.User, error)
	// MarkRequested sets status Requested unless it already is.
	MarkRequested(ctx context.Context, email string) (*domain.User, error)
	SetRole(ctx context.Context, email string, role domain.Role, status domain.UserStatus) (*domain.User, error)
	CountByRole(ctx context.Context) (map[domain.Role]int64, error)
}

type PlantStore interface {
	Insert(ctx context.Context, p *domain.Plant) error
	ByID(ctx context.Context, id primitive.ObjectID) (*domain.Plant, error)
	List(ctx context.Context, f domain.PlantFilter) ([]domain.Plant, int64, error)
	Update(ctx context.Context, id primitive.ObjectID, patch domain.PlantPatch) (*domain.Plant, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	// AdjustQuantity adds delta atomically. With floor set, a change that
	// would leave the quantity negative is refused with ErrConflict.
	AdjustQuantity(ctx context.Context, id primitive.ObjectID, delta int, floor bool) (*domain.Plant, error)
	Count(ctx context.Context, seller string) (int64, error)
}

type OrderQuery struct {
	CustomerEmail string
	SellerEmail   string
}

type OrderStore interface {
	Insert(ctx context.Context, o *domain.Order) error
	ByID(ctx context.Context, id primitive.ObjectID) (*domain.Order, error)
	ListViews(ctx context.Context, q OrderQuery) ([]domain.OrderView, error)
	// UpdateStatus moves the order to `to` only while it is still in `from`.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from, to domain.OrderStatus) (*domain.Order, error)
	// DeleteUnlessDelivered removes the order and returns what was removed.
	DeleteUnlessDelivered(ctx context.Context, id primitive.ObjectID) (*domain.Order, error)
	// MarkReviewed flips review false -> true while the order is delivered.
	MarkReviewed(ctx context.Context, id primitive.ObjectID) error
	UnmarkReviewed(ctx context.Context, id primitive.ObjectID) error
	Totals(ctx context.Context, seller string) (domain.OrderTotals, error)
	Daily(ctx context.Context, seller string) ([]domain.DailyPoint, error)
}

type ReviewStore interface {
	Insert(ctx context.Context, r *domain.Review) error
	ListByPlant(ctx context.Context, plantID primitive.ObjectID) ([]domain.Review, error)
}

type ContactStore interface {
	Insert(ctx context.Context, c *domain.Contact) error
	List(ctx context.Context) ([]domain.Contact, error)
}

// Store bundles the collections one process works against.
type Store struct {
	Users    UserStore
	Plants   PlantStore
	Orders   OrderStore
	Reviews  ReviewStore
	Contacts ContactStore
	// Close releases the underlying connection.
	Close func(ctx context.Context) error
}
