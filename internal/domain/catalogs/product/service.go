package product

import (
	"context"

	"lmis/internal/domain"
)

// Service provides business logic for the Product catalog.
type Service struct {
	*domain.CatalogService[*Product]
	repo Repository
}

// NewService creates a Product service.
func NewService(repo Repository) *Service {
	return &Service{
		CatalogService: domain.NewCatalogService[*Product](repo, "product"),
		repo:           repo,
	}
}

// ListReportable retrieves the products eligible for a new requisition.
func (s *Service) ListReportable(ctx context.Context, programCode string) ([]*Product, error) {
	return s.repo.ListReportable(ctx, programCode)
}

// ResolveCodes maps product codes to entities, keyed by code. Codes that
// resolve to nothing are simply absent from the result; the caller decides
// whether that is an error.
func (s *Service) ResolveCodes(ctx context.Context, codes []string) (map[string]*Product, error) {
	products, err := s.repo.ListByCodes(ctx, codes)
	if err != nil {
		return nil, err
	}
	byCode := make(map[string]*Product, len(products))
	for _, p := range products {
		byCode[p.Code] = p
	}
	return byCode, nil
}
