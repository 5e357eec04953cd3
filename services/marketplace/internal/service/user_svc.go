package service

import (
	"context"
	"errors"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/access"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/events"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/repository"
)

type UserSvc struct {
	users  repository.UserStore
	gate   *access.Gate
	events EventSink
}

func NewUserSvc(users repository.UserStore, gate *access.Gate, sink EventSink) *UserSvc {
	return &UserSvc{users: users, gate: gate, events: sinkOrNop(sink)}
}

// SaveOnSignIn creates the user as a customer on first sign-in; known users
// keep their stored profile and role.
func (s *UserSvc) SaveOnSignIn(ctx context.Context, email, name, image string) (*domain.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}
	return s.users.UpsertOnSignIn(ctx, &domain.User{Email: email, Name: name, Image: image, Role: domain.RoleCustomer})
}

func (s *UserSvc) Role(ctx context.Context, email string) (domain.Role, error) {
	u, err := s.users.ByEmail(ctx, email)
	if err != nil {
		return "", err
	}
	return u.Role, nil
}

// RequestSeller records that the caller asked to become a seller.
func (s *UserSvc) RequestSeller(ctx context.Context, id access.Identity) (*domain.User, error) {
	u, err := s.gate.Authorize(ctx, id)
	if err != nil {
		return nil, err
	}
	if u.Role != domain.RoleCustomer {
		return nil, invalid("already a %s", u.Role)
	}
	out, err := s.users.MarkRequested(ctx, u.Email)
	if errors.Is(err, domain.ErrConflict) {
		return nil, invalid("You have already request, wait for some time.")
	}
	if err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, events.RKUserRoleRequested, events.UserRole{Email: out.Email, Role: string(domain.RoleSeller)})
	return out, nil
}

func (s *UserSvc) List(ctx context.Context, id access.Identity) ([]domain.User, error) {
	admin, err := s.gate.Authorize(ctx, id, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	return s.users.ListExcept(ctx, admin.Email)
}

func (s *UserSvc) UpdateRole(ctx context.Context, id access.Identity, email string, role domain.Role) (*domain.User, error) {
	if _, err := s.gate.Authorize(ctx, id, domain.RoleAdmin); err != nil {
		return nil, err
	}
	if !role.Valid() {
		return nil, invalid("unknown role %q", role)
	}
	u, err := s.users.SetRole(ctx, email, role, domain.StatusVerified)
	if err != nil {
		return nil, err
	}
	s.events.Dispatch(ctx, events.RKUserRoleChanged, events.UserRole{Email: u.Email, Role: string(u.Role)})
	return u, nil
}
