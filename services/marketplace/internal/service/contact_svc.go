package service

import (
	"context"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/access"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/repository"
)

type ContactSvc struct {
	contacts repository.ContactStore
	gate     *access.Gate
}

func NewContactSvc(contacts repository.ContactStore, gate *access.Gate) *ContactSvc {
	return &ContactSvc{contacts: contacts, gate: gate}
}

func (s *ContactSvc) Submit(ctx context.Context, c domain.Contact) (*domain.Contact, error) {
	email, err := normalizeEmail(c.Email)
	if err != nil {
		return nil, err
	}
	c.Name = strings.TrimSpace(c.Name)
	c.Message = strings.TrimSpace(c.Message)
	if c.Name == "" || c.Message == "" {
		return nil, invalid("name and message are required")
	}
	c.Email = email
	c.ID = primitive.NilObjectID
	c.CreatedAt = now()
	if err := s.contacts.Insert(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ContactSvc) List(ctx context.Context, id access.Identity) ([]domain.Contact, error) {
	if _, err := s.gate.Authorize(ctx, id, domain.RoleAdmin); err != nil {
		return nil, err
	}
	return s.contacts.List(ctx)
}
