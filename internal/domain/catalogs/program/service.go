package program

import (
	"context"

	"lmis/internal/domain"
)

// Service provides business logic for the Program catalog.
type Service struct {
	*domain.CatalogService[*Program]
	repo Repository
}

// NewService creates a Program service.
func NewService(repo Repository) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService[*Program](repo, "program"),
		repo:           repo,
	}
}

// ListChildren retrieves sub-programs of the given parent code.
func (s *Service) ListChildren(ctx context.Context, parentCode string) ([]*Program, error) {
	return s.repo.ListChildren(ctx, parentCode)
}
