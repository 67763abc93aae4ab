package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"lmis/internal/domain/catalogs/product"
	"lmis/internal/infrastructure/storage/postgres"
)

// Compile-time check.
var _ product.Repository = (*ProductRepo)(nil)

// ProductRepo implements product.Repository.
type ProductRepo struct {
	*BaseCatalogRepo[*product.Product]
}

// NewProductRepo creates the products repository.
func NewProductRepo(txManager *postgres.TxManager) *ProductRepo {
	return &ProductRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"products",
			postgres.ExtractDBColumns[*product.Product](),
			func() *product.Product { return &product.Product{} },
		),
	}
}

// ListByCodes retrieves products matching the given codes.
func (r *ProductRepo) ListByCodes(ctx context.Context, codes []string) ([]*product.Product, error) {
	if len(codes) == 0 {
		return nil, nil
	}

	sql, args, err := r.Builder().
		Select(postgres.ExtractDBColumns[*product.Product]()...).
		From("products").
		Where(squirrel.Eq{"code": codes}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []*product.Product
	if err := pgxscan.Select(ctx, r.Querier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("list products by codes: %w", err)
	}
	return products, nil
}

// ListReportable retrieves active, non-archived products for a program.
func (r *ProductRepo) ListReportable(ctx context.Context, programCode string) ([]*product.Product, error) {
	sql, args, err := r.Builder().
		Select(postgres.ExtractDBColumns[*product.Product]()...).
		From("products").
		Where(squirrel.Eq{
			"program_code": programCode,
			"active":       true,
			"archived":     false,
		}).
		OrderBy("code ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var products []*product.Product
	if err := pgxscan.Select(ctx, r.Querier(ctx), &products, sql, args...); err != nil {
		return nil, fmt.Errorf("list reportable products: %w", err)
	}
	return products, nil
}
