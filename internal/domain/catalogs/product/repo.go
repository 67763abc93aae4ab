package product

import (
	"context"

	"lmis/internal/domain"
)

// Repository defines the interface for Product persistence.
type Repository interface {
	domain.CatalogRepository[*Product]

	// ListByCodes retrieves products matching the given codes.
	ListByCodes(ctx context.Context, codes []string) ([]*Product, error)

	// ListReportable retrieves active, non-archived products for a program.
	ListReportable(ctx context.Context, programCode string) ([]*Product, error)
}
