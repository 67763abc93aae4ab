package program

import (
	"context"

	"lmis/internal/domain"
)

// Repository defines the interface for Program persistence.
type Repository interface {
	domain.CatalogRepository[*Program]

	// ListChildren retrieves sub-programs of the given parent code.
	ListChildren(ctx context.Context, parentCode string) ([]*Program, error)
}
