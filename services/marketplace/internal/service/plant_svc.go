package service

import (
	"context"
	"strings"

	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/access"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/domain"
	"github.com/codewithsiham1/tree-plantnet-server-side-project/services/marketplace/internal/repository"
)

type PlantInput struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
	Quantity    int     `json:"quantity"`
}

type PlantSvc struct {
	plants repository.PlantStore
	gate   *access.Gate
}

func NewPlantSvc(plants repository.PlantStore, gate *access.Gate) *PlantSvc {
	return &PlantSvc{plants: plants, gate: gate}
}

func (s *PlantSvc) Create(ctx context.Context, id access.Identity, in PlantInput) (*domain.Plant, error) {
	seller, err := s.gate.Authorize(ctx, id, domain.RoleSeller)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, invalid("name is required")
	}
	if in.Price < 0 || in.Quantity < 0 {
		return nil, invalid("price and quantity must not be negative")
	}
	p := &domain.Plant{
		Name:        in.Name,
		Category:    in.Category,
		Description: in.Description,
		Image:       in.Image,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Seller:      person(seller),
		CreatedAt:   now(),
	}
	if err := s.plants.Insert(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *PlantSvc) Get(ctx context.Context, plantID string) (*domain.Plant, error) {
	pid, err := parseID(plantID)
	if err != nil {
		return nil, err
	}
	return s.plants.ByID(ctx, pid)
}

func (s *PlantSvc) List(ctx context.Context, f domain.PlantFilter) ([]domain.Plant, int64, error) {
	if f.PageSize > 100 {
		f.PageSize = 100
	}
	if f.Page < 0 {
		f.Page = 0
	}
	return s.plants.List(ctx, f)
}

func (s *PlantSvc) ListBySeller(ctx context.Context, id access.Identity) ([]domain.Plant, error) {
	seller, err := s.gate.Authorize(ctx, id, domain.RoleSeller)
	if err != nil {
		return nil, err
	}
	out, _, err := s.plants.List(ctx, domain.PlantFilter{Seller: seller.Email})
	return out, err
}

func (s *PlantSvc) Update(ctx context.Context, id access.Identity, plantID string, patch domain.PlantPatch) (*domain.Plant, error) {
	p, err := s.owned(ctx, id, plantID)
	if err != nil {
		return nil, err
	}
	if (patch.Price != nil && *patch.Price < 0) || (patch.Quantity != nil && *patch.Quantity < 0) {
		return nil, invalid("price and quantity must not be negative")
	}
	if patch.Name != nil && strings.TrimSpace(*patch.Name) == "" {
		return nil, invalid("name must not be empty")
	}
	return s.plants.Update(ctx, p.ID, patch)
}

func (s *PlantSvc) Delete(ctx context.Context, id access.Identity, plantID string) error {
	p, err := s.owned(ctx, id, plantID)
	if err != nil {
		return err
	}
	return s.plants.Delete(ctx, p.ID)
}

// owned loads the plant after checking the caller is a seller who owns it.
func (s *PlantSvc) owned(ctx context.Context, id access.Identity, plantID string) (*domain.Plant, error) {
	seller, err := s.gate.Authorize(ctx, id, domain.RoleSeller)
	if err != nil {
		return nil, err
	}
	pid, err := parseID(plantID)
	if err != nil {
		return nil, err
	}
	p, err := s.plants.ByID(ctx, pid)
	if err != nil {
		return nil, err
	}
	if p.Seller.Email != seller.Email {
		return nil, forbidden("plant belongs to another seller")
	}
	return p, nil
}
