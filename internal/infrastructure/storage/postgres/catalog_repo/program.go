package catalog_repo

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"lmis/internal/domain/catalogs/program"
	"lmis/internal/infrastructure/storage/postgres"
)

// Compile-time check.
var _ program.Repository = (*ProgramRepo)(nil)

// ProgramRepo implements program.Repository.
type ProgramRepo struct {
	*BaseCatalogRepo[*program.Program]
}

// NewProgramRepo creates the programs repository.
func NewProgramRepo(txManager *postgres.TxManager) *ProgramRepo {
	return &ProgramRepo{
		BaseCatalogRepo: NewBaseCatalogRepo(
			txManager,
			"programs",
			postgres.ExtractDBColumns[*program.Program](),
			func() *program.Program { return &program.Program{} },
		),
	}
}

// ListChildren retrieves sub-programs of the given parent code.
func (r *ProgramRepo) ListChildren(ctx context.Context, parentCode string) ([]*program.Program, error) {
	sql, args, err := r.Builder().
		Select(postgres.ExtractDBColumns[*program.Program]()...).
		From("programs").
		Where(squirrel.Eq{"parent_code": parentCode}).
		OrderBy("code ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var programs []*program.Program
	if err := pgxscan.Select(ctx, r.Querier(ctx), &programs, sql, args...); err != nil {
		return nil, fmt.Errorf("list child programs: %w", err)
	}
	return programs, nil
}
