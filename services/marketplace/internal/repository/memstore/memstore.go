// Package memstore keeps every collection in process memory. It backs the
// service tests and STORE_DRIVER=memory for local runs; nothing survives a
// restart.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/repository"
)

// db guards all collections with one lock so conditional writes behave
// like single-document atomic updates.
type db struct {
	mu       sync.Mutex
	users    map[string]*domain.User
	plants   map[primitive.ObjectID]*domain.Plant
	orders   map[primitive.ObjectID]*domain.Order
	reviews  []domain.Review
	contacts []domain.Contact
	now      func() time.Time
}

func New() *repository.Store {
	d := &db{
		users:  map[string]*domain.User{},
		plants: map[primitive.ObjectID]*domain.Plant{},
		orders: map[primitive.ObjectID]*domain.Order{},
		now:    func() time.Time { return time.Now().UTC() },
	}
	return &repository.Store{
		Users:    users{d},
		Plants:   plants{d},
		Orders:   orders{d},
		Reviews:  reviews{d},
		Contacts: contacts{d},
		Close:    func(context.Context) error { return nil },
	}
}

// ---------- users ----------

type users struct{ *db }

func (s users) UpsertOnSignIn(_ context.Context, u *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if cur, ok := s.users[u.Email]; ok {
		cur.LastLoginAt = now
		cp := *cur
		return &cp, nil
	}
	nu := *u
	if nu.ID.IsZero() {
		nu.ID = primitive.NewObjectID()
	}
	if nu.Role == "" {
		nu.Role = domain.RoleCustomer
	}
	nu.CreatedAt, nu.LastLoginAt = now, now
	s.users[u.Email] = &nu
	cp := nu
	return &cp, nil
}

func (s users) ByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (s users) ListExcept(_ context.Context, email string) ([]domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.User{}
	for k, u := range s.users {
		if k != email {
			out = append(out, *u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s users) MarkRequested(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if u.Status == domain.StatusRequested {
		return nil, domain.ErrConflict
	}
	u.Status = domain.StatusRequested
	cp := *u
	return &cp, nil
}

func (s users) SetRole(_ context.Context, email string, role domain.Role, status domain.UserStatus) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[email]
	if !ok {
		return nil, domain.ErrNotFound
	}
	u.Role, u.Status = role, status
	cp := *u
	return &cp, nil
}

func (s users) CountByRole(context.Context) (map[domain.Role]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[domain.Role]int64{}
	for _, u := range s.users {
		out[u.Role]++
	}
	return out, nil
}

// ---------- plants ----------

type plants struct{ *db }

func (s plants) Insert(_ context.Context, p *domain.Plant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	cp := *p
	s.plants[p.ID] = &cp
	return nil
}

func (s plants) ByID(_ context.Context, id primitive.ObjectID) (*domain.Plant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s plants) List(_ context.Context, f domain.PlantFilter) ([]domain.Plant, int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := strings.ToLower(f.Query)
	all := []domain.Plant{}
	for _, p := range s.plants {
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Seller != "" && p.Seller.Email != f.Seller {
			continue
		}
		if q != "" && !strings.Contains(strings.ToLower(p.Name), q) {
			continue
		}
		all = append(all, *p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if f.PageSize > 0 {
		from := f.Page * f.PageSize
		if from > len(all) {
			from = len(all)
		}
		to := from + f.PageSize
		if to > len(all) {
			to = len(all)
		}
		all = all[from:to]
	}
	return all, total, nil
}

func (s plants) Update(_ context.Context, id primitive.ObjectID, patch domain.PlantPatch) (*domain.Plant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Image != nil {
		p.Image = *patch.Image
	}
	if patch.Price != nil {
		p.Price = *patch.Price
	}
	if patch.Quantity != nil {
		p.Quantity = *patch.Quantity
	}
	cp := *p
	return &cp, nil
}

func (s plants) Delete(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.plants[id]; !ok {
		return domain.ErrNotFound
	}
	delete(s.plants, id)
	return nil
}

func (s plants) AdjustQuantity(_ context.Context, id primitive.ObjectID, delta int, floor bool) (*domain.Plant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.plants[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if floor && p.Quantity+delta < 0 {
		return nil, domain.ErrConflict
	}
	p.Quantity += delta
	cp := *p
	return &cp, nil
}

func (s plants) Count(_ context.Context, seller string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, p := range s.plants {
		if seller == "" || p.Seller.Email == seller {
			n++
		}
	}
	return n, nil
}

// ---------- orders ----------

type orders struct{ *db }

func (s orders) Insert(_ context.Context, o *domain.Order) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o.ID.IsZero() {
		o.ID = primitive.NewObjectID()
	}
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s orders) ByID(_ context.Context, id primitive.ObjectID) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *o
	return &cp, nil
}

func (s orders) ListViews(_ context.Context, q repository.OrderQuery) ([]domain.OrderView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.OrderView{}
	for _, o := range s.orders {
		if q.CustomerEmail != "" && o.Customer.Email != q.CustomerEmail {
			continue
		}
		if q.SellerEmail != "" && o.Seller.Email != q.SellerEmail {
			continue
		}
		v := domain.OrderView{Order: *o}
		if p, ok := s.plants[o.PlantID]; ok {
			v.Name, v.Image, v.Category = p.Name, p.Image, p.Category
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s orders) UpdateStatus(_ context.Context, id primitive.ObjectID, from, to domain.OrderStatus) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if o.Status != from {
		return nil, domain.ErrConflict
	}
	o.Status = to
	o.UpdatedAt = s.now()
	cp := *o
	return &cp, nil
}

func (s orders) DeleteUnlessDelivered(_ context.Context, id primitive.ObjectID) (*domain.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	if o.Status == domain.OrderDelivered {
		return nil, domain.ErrConflict
	}
	delete(s.orders, id)
	return o, nil
}

func (s orders) MarkReviewed(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return domain.ErrNotFound
	}
	if o.Status != domain.OrderDelivered || o.Review {
		return domain.ErrConflict
	}
	o.Review = true
	return nil
}

func (s orders) UnmarkReviewed(_ context.Context, id primitive.ObjectID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if o, ok := s.orders[id]; ok {
		o.Review = false
	}
	return nil
}

func (s orders) counted(seller string) []*domain.Order {
	var out []*domain.Order
	for _, o := range s.orders {
		if o.Status == domain.OrderCancelled {
			continue
		}
		if seller != "" && o.Seller.Email != seller {
			continue
		}
		out = append(out, o)
	}
	return out
}

func (s orders) Totals(_ context.Context, seller string) (domain.OrderTotals, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var t domain.OrderTotals
	for _, o := range s.counted(seller) {
		t.TotalOrders++
		t.TotalRevenue += o.Price
	}
	return t, nil
}

func (s orders) Daily(_ context.Context, seller string) ([]domain.DailyPoint, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	byDay := map[string]*domain.DailyPoint{}
	for _, o := range s.counted(seller) {
		day := o.CreatedAt.UTC().Format("2006-01-02")
		p, ok := byDay[day]
		if !ok {
			p = &domain.DailyPoint{Date: day}
			byDay[day] = p
		}
		p.Quantity += o.Quantity
		p.Price += o.Price
		p.Order++
	}
	out := make([]domain.DailyPoint, 0, len(byDay))
	for _, p := range byDay {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

// ---------- reviews / contacts ----------

type reviews struct{ *db }

func (s reviews) Insert(_ context.Context, r *domain.Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, cur := range s.reviews {
		if cur.OrderID == r.OrderID {
			return domain.ErrConflict
		}
	}
	if r.ID.IsZero() {
		r.ID = primitive.NewObjectID()
	}
	s.reviews = append(s.reviews, *r)
	return nil
}

func (s reviews) ListByPlant(_ context.Context, plantID primitive.ObjectID) ([]domain.Review, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []domain.Review{}
	for i := len(s.reviews) - 1; i >= 0; i-- {
		if s.reviews[i].PlantID == plantID {
			out = append(out, s.reviews[i])
		}
	}
	return out, nil
}

type contacts struct{ *db }

func (s contacts) Insert(_ context.Context, c *domain.Contact) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.ID.IsZero() {
		c.ID = primitive.NewObjectID()
	}
	s.contacts = append(s.contacts, *c)
	return nil
}

func (s contacts) List(context.Context) ([]domain.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.Contact, 0, len(s.contacts))
	for i := len(s.contacts) - 1; i >= 0; i-- {
		out = append(out, s.contacts[i])
	}
	return out, nil
}
