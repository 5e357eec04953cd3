package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
)

// Identity is what a verified session token proves about the caller.
type Identity struct {
	Email string
}

type UserLookup interface {
	ByEmail(ctx context.Context, email string) (*domain.User, error)
}

// Gate resolves the caller's role from the user store on every call.
type Gate struct {
	users UserLookup
}

func NewGate(users UserLookup) *Gate {
	return &Gate{users: users}
}

// Authorize returns the stored user when its role is one of roles. An empty
// roles list only requires the user to exist.
func (g *Gate) Authorize(ctx context.Context, id Identity, roles ...domain.Role) (*domain.User, error) {
	if id.Email == "" {
		return nil, domain.ErrUnauthorized
	}
	u, err := g.users.ByEmail(ctx, id.Email)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, denyMessage(roles))
	}
	if err != nil {
		return nil, err
	}
	if len(roles) == 0 {
		return u, nil
	}
	for _, r := range roles {
		if u.Role == r {
			return u, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrForbidden, denyMessage(roles))
}

func denyMessage(roles []domain.Role) string {
	if len(roles) == 1 {
		return fmt.Sprintf("%s only action", roles[0])
	}
	if len(roles) == 0 {
		return "unknown user"
	}
	return fmt.Sprintf("requires one of %v", roles)
}
