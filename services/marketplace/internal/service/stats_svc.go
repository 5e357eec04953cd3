package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/access"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/repository"
)

type StatsSvc struct {
	users  repository.UserStore
	plants repository.PlantStore
	orders repository.OrderStore
	gate   *access.Gate
}

func NewStatsSvc(store *repository.Store, gate *access.Gate) *StatsSvc {
	return &StatsSvc{users: store.Users, plants: store.Plants, orders: store.Orders, gate: gate}
}

func (s *StatsSvc) Admin(ctx context.Context, id access.Identity) (*domain.Stats, error) {
	if _, err := s.gate.Authorize(ctx, id, domain.RoleAdmin); err != nil {
		return nil, err
	}
	byRole, err := s.users.CountByRole(ctx)
	if err != nil {
		return nil, err
	}
	st, err := s.collect(ctx, "")
	if err != nil {
		return nil, err
	}
	st.UsersByRole = byRole
	for _, n := range byRole {
		st.TotalUsers += n
	}
	return st, nil
}

func (s *StatsSvc) Seller(ctx context.Context, id access.Identity) (*domain.Stats, error) {
	seller, err := s.gate.Authorize(ctx, id, domain.RoleSeller)
	if err != nil {
		return nil, err
	}
	return s.collect(ctx, seller.Email)
}

// collect gathers plant and order metrics, optionally for one seller.
// Cancelled orders do not count.
func (s *StatsSvc) collect(ctx context.Context, seller string) (*domain.Stats, error) {
	plants, err := s.plants.Count(ctx, seller)
	if err != nil {
		return nil, err
	}
	totals, err := s.orders.Totals(ctx, seller)
	if err != nil {
		return nil, err
	}
	daily, err := s.orders.Daily(ctx, seller)
	if err != nil {
		return nil, err
	}
	revenue := decimal.NewFromFloat(totals.TotalRevenue).Round(2)
	avg := decimal.Zero
	if totals.TotalOrders > 0 {
		avg = revenue.Div(decimal.NewFromInt(totals.TotalOrders)).Round(2)
	}
	return &domain.Stats{
		TotalPlants:  plants,
		TotalOrders:  totals.TotalOrders,
		TotalRevenue: revenue.InexactFloat64(),
		AverageOrder: avg.InexactFloat64(),
		ChartData:    daily,
	}, nil
}
