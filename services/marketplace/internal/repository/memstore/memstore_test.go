package memstore

import (
	"context"
	"errors"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
)

func TestAdjustQuantityFloor(t *testing.T) {
	ctx := context.Background()
	s := New()
	p := &domain.Plant{Name: "Fern", Quantity: 2}
	if err := s.Plants.Insert(ctx, p); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Plants.AdjustQuantity(ctx, p.ID, -3, true); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("floor: %v", err)
	}
	got, err := s.Plants.AdjustQuantity(ctx, p.ID, -3, false)
	if err != nil || got.Quantity != -1 {
		t.Fatalf("backorder: %+v, %v", got, err)
	}
	if _, err := s.Plants.AdjustQuantity(ctx, primitive.NewObjectID(), 1, false); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing plant: %v", err)
	}
}

func TestUpdateStatusIsConditional(t *testing.T) {
	ctx := context.Background()
	s := New()
	o := &domain.Order{Status: domain.OrderPending}
	if err := s.Orders.Insert(ctx, o); err != nil {
		t.Fatal(err)
	}

	if _, err := s.Orders.UpdateStatus(ctx, o.ID, domain.OrderPending, domain.OrderProcessing); err != nil {
		t.Fatal(err)
	}
	// a second writer that read the old status loses
	if _, err := s.Orders.UpdateStatus(ctx, o.ID, domain.OrderPending, domain.OrderCancelled); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("stale from: %v", err)
	}
	cur, _ := s.Orders.ByID(ctx, o.ID)
	if cur.Status != domain.OrderProcessing {
		t.Fatalf("status = %s", cur.Status)
	}
}

func TestDeleteAndReviewMarks(t *testing.T) {
	ctx := context.Background()
	s := New()
	open := &domain.Order{Status: domain.OrderPending}
	done := &domain.Order{Status: domain.OrderDelivered}
	for _, o := range []*domain.Order{open, done} {
		if err := s.Orders.Insert(ctx, o); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := s.Orders.DeleteUnlessDelivered(ctx, done.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("delete delivered: %v", err)
	}
	if err := s.Orders.MarkReviewed(ctx, open.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("review pending order: %v", err)
	}
	if err := s.Orders.MarkReviewed(ctx, done.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.Orders.MarkReviewed(ctx, done.ID); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("second review: %v", err)
	}
	if err := s.Orders.UnmarkReviewed(ctx, done.ID); err != nil {
		t.Fatal(err)
	}
	if err := s.Orders.MarkReviewed(ctx, done.ID); err != nil {
		t.Fatalf("after unmark: %v", err)
	}

	removed, err := s.Orders.DeleteUnlessDelivered(ctx, open.ID)
	if err != nil || removed.ID != open.ID {
		t.Fatalf("delete: %+v, %v", removed, err)
	}
	if _, err := s.Orders.ByID(ctx, open.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("still there: %v", err)
	}
}

func TestOneReviewPerOrder(t *testing.T) {
	ctx := context.Background()
	s := New()
	oid := primitive.NewObjectID()
	if err := s.Reviews.Insert(ctx, &domain.Review{OrderID: oid, Rating: 5}); err != nil {
		t.Fatal(err)
	}
	if err := s.Reviews.Insert(ctx, &domain.Review{OrderID: oid, Rating: 1}); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("duplicate: %v", err)
	}
}
