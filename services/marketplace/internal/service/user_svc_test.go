package service

import (
	"errors"
	"testing"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/access"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/events"
)

func TestSaveOnSignIn(t *testing.T) {
	f := newFixture(t, OrderOptions{})

	u, err := f.users.SaveOnSignIn(f.ctx, " Ivy@Example.com ", "Ivy", "ivy.png")
	if err != nil {
		t.Fatalf("first sign-in: %v", err)
	}
	if u.Email != "ivy@example.com" || u.Role != domain.RoleCustomer {
		t.Fatalf("user = %+v", u)
	}
	again, err := f.users.SaveOnSignIn(f.ctx, "ivy@example.com", "Other Name", "")
	if err != nil {
		t.Fatalf("second sign-in: %v", err)
	}
	if again.ID != u.ID || again.Name != "Ivy" {
		t.Fatalf("existing user overwritten: %+v", again)
	}

	// an existing seller keeps the role on sign-in
	s, err := f.users.SaveOnSignIn(f.ctx, seller.Email, "", "")
	if err != nil || s.Role != domain.RoleSeller {
		t.Fatalf("seller sign-in = %+v, %v", s, err)
	}
	if _, err := f.users.SaveOnSignIn(f.ctx, "not-an-email", "", ""); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("bad email: %v", err)
	}
}

func TestNormalizeEmailWantsBareAddress(t *testing.T) {
	if got, err := normalizeEmail("  Bob@Example.COM "); err != nil || got != "bob@example.com" {
		t.Fatalf("bare address = %q, %v", got, err)
	}
	for _, in := range []string{"Bob <Bob@Example.com>", "<bob@example.com>", "bob@example.com, eve@example.com", ""} {
		if got, err := normalizeEmail(in); !errors.Is(err, domain.ErrInvalid) {
			t.Errorf("normalizeEmail(%q) = %q, %v", in, got, err)
		}
	}

	f := newFixture(t, OrderOptions{})
	if _, err := f.users.SaveOnSignIn(f.ctx, "Bob <bob@example.com>", "Bob", ""); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("sign-in with display name: %v", err)
	}
	if _, err := f.store.Users.ByEmail(f.ctx, "bob <bob@example.com>"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("display-name key stored: %v", err)
	}
}

func TestRequestSellerThenPromote(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	newbie := access.Identity{Email: "nia@example.com"}
	if _, err := f.users.SaveOnSignIn(f.ctx, newbie.Email, "Nia", ""); err != nil {
		t.Fatal(err)
	}

	u, err := f.users.RequestSeller(f.ctx, newbie)
	if err != nil || u.Status != domain.StatusRequested {
		t.Fatalf("request = %+v, %v", u, err)
	}
	if _, err := f.users.RequestSeller(f.ctx, newbie); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("second request: want invalid, got %v", err)
	}
	if _, err := f.users.RequestSeller(f.ctx, seller); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("seller request: %v", err)
	}

	u, err = f.users.UpdateRole(f.ctx, admin, newbie.Email, domain.RoleSeller)
	if err != nil {
		t.Fatalf("promote: %v", err)
	}
	if u.Role != domain.RoleSeller || u.Status != domain.StatusVerified {
		t.Fatalf("promoted = %+v", u)
	}
	role, err := f.users.Role(f.ctx, newbie.Email)
	if err != nil || role != domain.RoleSeller {
		t.Fatalf("role = %s, %v", role, err)
	}
	if _, err := f.users.UpdateRole(f.ctx, admin, newbie.Email, "overlord"); !errors.Is(err, domain.ErrInvalid) {
		t.Fatalf("bad role: %v", err)
	}
	if f.sink.seen(events.RKUserRoleRequested) != 1 || f.sink.seen(events.RKUserRoleChanged) != 1 {
		t.Fatalf("events = %v", f.sink.keys)
	}
}

func TestAdminListsOtherUsers(t *testing.T) {
	f := newFixture(t, OrderOptions{})
	list, err := f.users.List(f.ctx, admin)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("users = %d, want 3", len(list))
	}
	for _, u := range list {
		if u.Email == admin.Email {
			t.Fatal("admin listed itself")
		}
	}
}
