package service

import (
	"context"
	"sync"
	"testing"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/access"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/repository"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/repository/memstore"
)

var (
	customer = access.Identity{Email: "cora@example.com"}
	seller   = access.Identity{Email: "sami@example.com"}
	seller2  = access.Identity{Email: "otto@example.com"}
	admin    = access.Identity{Email: "ada@example.com"}
)

type sinkRecorder struct {
	mu   sync.Mutex
	keys []string
}

func (r *sinkRecorder) Dispatch(_ context.Context, key string, _ any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.keys = append(r.keys, key)
}

func (r *sinkRecorder) seen(key string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, k := range r.keys {
		if k == key {
			n++
		}
	}
	return n
}

type fixture struct {
	t      *testing.T
	ctx    context.Context
	store  *repository.Store
	gate   *access.Gate
	sink   *sinkRecorder
	orders *OrderSvc
	plants *PlantSvc
	users  *UserSvc
	stats  *StatsSvc
}

func newFixture(t *testing.T, opts OrderOptions) *fixture {
	t.Helper()
	store := memstore.New()
	gate := access.NewGate(store.Users)
	sink := &sinkRecorder{}
	f := &fixture{
		t:      t,
		ctx:    context.Background(),
		store:  store,
		gate:   gate,
		sink:   sink,
		orders: NewOrderSvc(store, gate, sink, opts),
		plants: NewPlantSvc(store.Plants, gate),
		users:  NewUserSvc(store.Users, gate, sink),
		stats:  NewStatsSvc(store, gate),
	}
	f.user(customer, domain.RoleCustomer)
	f.user(seller, domain.RoleSeller)
	f.user(seller2, domain.RoleSeller)
	f.user(admin, domain.RoleAdmin)
	return f
}

func (f *fixture) user(id access.Identity, role domain.Role) {
	f.t.Helper()
	if _, err := f.store.Users.UpsertOnSignIn(f.ctx, &domain.User{Email: id.Email, Name: id.Email}); err != nil {
		f.t.Fatalf("seed user: %v", err)
	}
	if _, err := f.store.Users.SetRole(f.ctx, id.Email, role, domain.StatusVerified); err != nil {
		f.t.Fatalf("seed role: %v", err)
	}
}

func (f *fixture) plant(owner access.Identity, price float64, qty int) *domain.Plant {
	f.t.Helper()
	p, err := f.plants.Create(f.ctx, owner, PlantInput{Name: "Monstera", Category: "Indoor", Price: price, Quantity: qty})
	if err != nil {
		f.t.Fatalf("create plant: %v", err)
	}
	return p
}

func (f *fixture) quantity(p *domain.Plant) int {
	f.t.Helper()
	cur, err := f.store.Plants.ByID(f.ctx, p.ID)
	if err != nil {
		f.t.Fatalf("load plant: %v", err)
	}
	return cur.Quantity
}

func (f *fixture) place(p *domain.Plant, qty int) *domain.Order {
	f.t.Helper()
	o, err := f.orders.Place(f.ctx, customer, PlaceOrderInput{PlantID: p.ID.Hex(), Quantity: qty})
	if err != nil {
		f.t.Fatalf("place: %v", err)
	}
	return o
}

func (f *fixture) advance(o *domain.Order, to ...domain.OrderStatus) {
	f.t.Helper()
	for _, st := range to {
		if _, err := f.orders.TransitionStatus(f.ctx, seller, o.ID.Hex(), st); err != nil {
			f.t.Fatalf("transition to %s: %v", st, err)
		}
	}
}
