package service

import (
	"testing"
	"time"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
)

func TestAdminStatsRevenue(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	p := f.plant(seller, 10, 50)
	day := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	for i, price := range []float64{10, 20, 5} {
		o := &domain.Order{
			PlantID:   p.ID,
			Customer:  domain.Person{Email: customer.Email},
			Seller:    domain.Person{Email: seller.Email},
			Quantity:  i + 1,
			Price:     price,
			Status:    domain.OrderPending,
			CreatedAt: day.Add(time.Duration(i) * 24 * time.Hour),
		}
		if err := f.store.Orders.Insert(f.ctx, o); err != nil {
			t.Fatal(err)
		}
	}

	st, err := f.stats.Admin(f.ctx, admin)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalRevenue != 35 || st.TotalOrders != 3 {
		t.Fatalf("revenue=%v orders=%d", st.TotalRevenue, st.TotalOrders)
	}
	if st.AverageOrder != 11.67 {
		t.Fatalf("average = %v", st.AverageOrder)
	}
	if st.TotalUsers != 4 || st.UsersByRole[domain.RoleSeller] != 2 {
		t.Fatalf("users = %d %v", st.TotalUsers, st.UsersByRole)
	}
	if st.TotalPlants != 1 {
		t.Fatalf("plants = %d", st.TotalPlants)
	}
	if len(st.ChartData) != 3 || st.ChartData[0].Date != "2026-03-14" || st.ChartData[2].Quantity != 3 {
		t.Fatalf("chart = %+v", st.ChartData)
	}
}

func TestSellerStatsExcludeCancelledAndForeignOrders(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	mine := f.plant(seller, 10, 50)
	theirs := f.plant(seller2, 4, 50)

	f.place(mine, 2)
	cancelled := f.place(mine, 1)
	f.advance(cancelled, domain.OrderCancelled)
	if _, err := f.orders.Place(f.ctx, customer, PlaceOrderInput{PlantID: theirs.ID.Hex(), Quantity: 1}); err != nil {
		t.Fatal(err)
	}

	st, err := f.stats.Seller(f.ctx, seller)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.TotalOrders != 1 || st.TotalRevenue != 20 || st.TotalPlants != 1 {
		t.Fatalf("seller stats = %+v", st)
	}
	if st.TotalUsers != 0 || st.UsersByRole != nil {
		t.Fatal("seller stats must not expose user counts")
	}
}

func TestStatsEmpty(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	st, err := f.stats.Admin(f.ctx, admin)
	if err != nil {
		t.Fatal(err)
	}
	if st.TotalOrders != 0 || st.AverageOrder != 0 || len(st.ChartData) != 0 {
		t.Fatalf("stats = %+v", st)
	}
}
