// Package requisition_repo provides the PostgreSQL implementation of the
// requisition repository.
package requisition_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"lmis/internal/core/apperror"
	"lmis/internal/core/entity"
	"lmis/internal/core/id"
	"lmis/internal/domain/catalogs/product"
	"lmis/internal/domain/requisition"
	"lmis/internal/domain/stock"
	"lmis/internal/infrastructure/storage/postgres"
)

const (
	formsTable    = "rnr_forms"
	itemsTable    = "rnr_form_items"
	regimensTable = "rnr_regimen_items"
	baseInfoTable = "rnr_base_info_items"
)

// Compile-time checks.
var (
	_ requisition.Repository    = (*FormRepo)(nil)
	_ stock.HistoricalItemStore = (*FormRepo)(nil)
)

// FormRepo implements requisition.Repository. It also serves the stock
// classifier's history queries, since the consumption history lives in
// requisition line items.
type FormRepo struct {
	txManager *postgres.TxManager

	formCols     []string
	itemCols     []string
	regimenCols  []string
	baseInfoCols []string
	productCols  []string
}

// NewFormRepo creates the requisition repository.
func NewFormRepo(txManager *postgres.TxManager) *FormRepo {
	return &FormRepo{
		txManager:    txManager,
		formCols:     postgres.ExtractDBColumns[*requisition.RnRForm](),
		itemCols:     postgres.ExtractDBColumns[*requisition.RnrFormItem](),
		regimenCols:  postgres.ExtractDBColumns[*requisition.RegimenItem](),
		baseInfoCols: postgres.ExtractDBColumns[*requisition.BaseInfoItem](),
		productCols:  postgres.ExtractDBColumns[*product.Product](),
	}
}

func (r *FormRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *FormRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// Create inserts a form with all child items in one transaction.
func (r *FormRepo) Create(ctx context.Context, form *requisition.RnRForm) error {
	return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := r.insertRow(ctx, formsTable, r.formCols, postgres.StructToMap(form)); err != nil {
			return fmt.Errorf("insert form: %w", err)
		}
		return r.insertChildren(ctx, form)
	})
}

func (r *FormRepo) insertChildren(ctx context.Context, form *requisition.RnRForm) error {
	for _, item := range form.Items {
		if id.IsNil(item.ID) {
			item.Base = entity.NewBase()
		}
		item.FormID = form.ID
		if err := r.insertRow(ctx, itemsTable, r.itemCols, postgres.StructToMap(item)); err != nil {
			return fmt.Errorf("insert form item: %w", err)
		}
	}
	for _, item := range form.RegimenItems {
		if id.IsNil(item.ID) {
			item.Base = entity.NewBase()
		}
		item.FormID = form.ID
		if err := r.insertRow(ctx, regimensTable, r.regimenCols, postgres.StructToMap(item)); err != nil {
			return fmt.Errorf("insert regimen item: %w", err)
		}
	}
	for _, item := range form.BaseInfoItems {
		if id.IsNil(item.ID) {
			item.Base = entity.NewBase()
		}
		item.FormID = form.ID
		if err := r.insertRow(ctx, baseInfoTable, r.baseInfoCols, postgres.StructToMap(item)); err != nil {
			return fmt.Errorf("insert base info item: %w", err)
		}
	}
	return nil
}

func (r *FormRepo) insertRow(ctx context.Context, table string, cols []string, data map[string]any) error {
	filtered := make(map[string]any, len(cols))
	for _, col := range cols {
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}
	sql, args, err := r.builder().Insert(table).SetMap(filtered).ToSql()
	if err != nil {
		return fmt.Errorf("build insert: %w", err)
	}
	_, err = r.querier(ctx).Exec(ctx, sql, args...)
	return err
}

// Get retrieves a form with children and resolved product references.
func (r *FormRepo) Get(ctx context.Context, formID id.ID) (*requisition.RnRForm, error) {
	form := &requisition.RnRForm{}

	sql, args, err := r.builder().
		Select(r.formCols...).
		From(formsTable).
		Where(squirrel.Eq{"id": formID}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.querier(ctx), form, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("rnr_form", formID.String())
		}
		return nil, fmt.Errorf("get form: %w", err)
	}

	if err := r.loadChildren(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

func (r *FormRepo) loadChildren(ctx context.Context, form *requisition.RnRForm) error {
	itemsSQL, args, err := r.builder().
		Select(r.itemCols...).
		From(itemsTable).
		Where(squirrel.Eq{"form_id": form.ID}).
		OrderBy("product_code ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("build items query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &form.Items, itemsSQL, args...); err != nil {
		return fmt.Errorf("load form items: %w", err)
	}
	if err := r.resolveProducts(ctx, form.Items); err != nil {
		return err
	}

	regimensSQL, args, err := r.builder().
		Select(r.regimenCols...).
		From(regimensTable).
		Where(squirrel.Eq{"form_id": form.ID}).
		OrderBy("code ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("build regimens query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &form.RegimenItems, regimensSQL, args...); err != nil {
		return fmt.Errorf("load regimen items: %w", err)
	}

	baseInfoSQL, args, err := r.builder().
		Select(r.baseInfoCols...).
		From(baseInfoTable).
		Where(squirrel.Eq{"form_id": form.ID}).
		OrderBy("name ASC").
		ToSql()
	if err != nil {
		return fmt.Errorf("build base info query: %w", err)
	}
	if err := pgxscan.Select(ctx, r.querier(ctx), &form.BaseInfoItems, baseInfoSQL, args...); err != nil {
		return fmt.Errorf("load base info items: %w", err)
	}
	return nil
}

func (r *FormRepo) resolveProducts(ctx context.Context, items []*requisition.RnrFormItem) error {
	if len(items) == 0 {
		return nil
	}
	ids := make([]id.ID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}

	sql, args, err := r.builder().
		Select(r.productCols...).
		From("products").
		Where(squirrel.Eq{"id": ids}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build products query: %w", err)
	}

	var products []*product.Product
	if err := pgxscan.Select(ctx, r.querier(ctx), &products, sql, args...); err != nil {
		return fmt.Errorf("resolve products: %w", err)
	}

	byID := make(map[id.ID]*product.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	for _, item := range items {
		item.Product = byID[item.ProductID]
	}
	return nil
}

// Update persists form fields and replaces child items.
func (r *FormRepo) Update(ctx context.Context, form *requisition.RnRForm) error {
	return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		data := postgres.StructToMap(form)
		version, _ := data["version"].(int)

		filtered := make(map[string]any, len(r.formCols))
		for _, col := range r.formCols {
			if col == "id" || col == "version" {
				continue
			}
			if val, ok := data[col]; ok {
				filtered[col] = val
			}
		}

		sql, args, err := r.builder().
			Update(formsTable).
			SetMap(filtered).
			Set("version", squirrel.Expr("version + 1")).
			Where(squirrel.Eq{"id": form.ID}).
			Where(squirrel.Eq{"version": version}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build update: %w", err)
		}

		result, err := r.querier(ctx).Exec(ctx, sql, args...)
		if err != nil {
			return fmt.Errorf("update form: %w", err)
		}
		if result.RowsAffected() == 0 {
			return apperror.NewConcurrentModification("rnr_form", form.ID)
		}
		form.SetVersion(version + 1)

		if err := r.deleteChildren(ctx, form.ID); err != nil {
			return err
		}
		return r.insertChildren(ctx, form)
	})
}

// Delete removes a form with its children.
func (r *FormRepo) Delete(ctx context.Context, formID id.ID) error {
	return r.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		if err := r.deleteChildren(ctx, formID); err != nil {
			return err
		}
		sql, args, err := r.builder().
			Delete(formsTable).
			Where(squirrel.Eq{"id": formID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build delete: %w", err)
		}
		_, err = r.querier(ctx).Exec(ctx, sql, args...)
		return err
	})
}

func (r *FormRepo) deleteChildren(ctx context.Context, formID id.ID) error {
	for _, table := range []string{itemsTable, regimensTable, baseInfoTable} {
		sql, args, err := r.builder().
			Delete(table).
			Where(squirrel.Eq{"form_id": formID}).
			ToSql()
		if err != nil {
			return fmt.Errorf("build delete children: %w", err)
		}
		if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
			return fmt.Errorf("delete from %s: %w", table, err)
		}
	}
	return nil
}

// GetDraftByProgram retrieves the open draft for a program, if any.
func (r *FormRepo) GetDraftByProgram(ctx context.Context, programCode string) (*requisition.RnRForm, error) {
	form := &requisition.RnRForm{}

	sql, args, err := r.builder().
		Select(r.formCols...).
		From(formsTable).
		Where(squirrel.Eq{"program_code": programCode}).
		Where(squirrel.Eq{"status": []requisition.Status{
			requisition.StatusDraft,
			requisition.StatusDraftMissed,
		}}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.querier(ctx), form, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("rnr_form", programCode)
		}
		return nil, fmt.Errorf("get draft: %w", err)
	}

	if err := r.loadChildren(ctx, form); err != nil {
		return nil, err
	}
	return form, nil
}

// ListByProgram retrieves all forms for a program, newest period first.
// Children are not loaded; list views only need the headers.
func (r *FormRepo) ListByProgram(ctx context.Context, programCode string) ([]*requisition.RnRForm, error) {
	sql, args, err := r.builder().
		Select(r.formCols...).
		From(formsTable).
		Where(squirrel.Eq{"program_code": programCode}).
		OrderBy("period_begin DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var forms []*requisition.RnRForm
	if err := pgxscan.Select(ctx, r.querier(ctx), &forms, sql, args...); err != nil {
		return nil, fmt.Errorf("list forms: %w", err)
	}
	return forms, nil
}

// ListUnsynced retrieves authorized forms not yet pushed upstream, with
// children loaded for serialization.
func (r *FormRepo) ListUnsynced(ctx context.Context) ([]*requisition.RnRForm, error) {
	sql, args, err := r.builder().
		Select(r.formCols...).
		From(formsTable).
		Where(squirrel.Eq{
			"status": requisition.StatusAuthorized,
			"synced": false,
		}).
		OrderBy("period_begin ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var forms []*requisition.RnRForm
	if err := pgxscan.Select(ctx, r.querier(ctx), &forms, sql, args...); err != nil {
		return nil, fmt.Errorf("list unsynced forms: %w", err)
	}
	for _, form := range forms {
		if err := r.loadChildren(ctx, form); err != nil {
			return nil, err
		}
	}
	return forms, nil
}

// ExistsAuthorizedForPeriod checks whether another authorized form covers
// the same program and period begin.
func (r *FormRepo) ExistsAuthorizedForPeriod(ctx context.Context, programCode string, periodBegin time.Time, excludeID id.ID) (bool, error) {
	sql, args, err := r.builder().
		Select("1").
		From(formsTable).
		Where(squirrel.Eq{
			"program_code": programCode,
			"period_begin": periodBegin,
			"status":       requisition.StatusAuthorized,
		}).
		Where(squirrel.NotEq{"id": excludeID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}

	var one int
	if err := pgxscan.Get(ctx, r.querier(ctx), &one, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("check authorized period: %w", err)
	}
	return true, nil
}

// MarkSynced flags a form as pushed upstream.
func (r *FormRepo) MarkSynced(ctx context.Context, formID id.ID) error {
	sql, args, err := r.builder().
		Update(formsTable).
		Set("synced", true).
		Where(squirrel.Eq{"id": formID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	_, err = r.querier(ctx).Exec(ctx, sql, args...)
	return err
}

// ListRecentNonZeroInventory implements stock.HistoricalItemStore: the
// most recent requisition lines for a product whose closing inventory was
// non-zero. Line IDs are UUIDv7, so id-descending is newest-first.
func (r *FormRepo) ListRecentNonZeroInventory(ctx context.Context, productID id.ID, limit int) ([]stock.LineSample, error) {
	sql, args, err := r.builder().
		Select("issued", "inventory").
		From(itemsTable).
		Where(squirrel.Eq{"product_id": productID}).
		Where(squirrel.NotEq{"inventory": 0}).
		OrderBy("id DESC").
		Limit(uint64(limit)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var samples []stock.LineSample
	if err := pgxscan.Select(ctx, r.querier(ctx), &samples, sql, args...); err != nil {
		return nil, fmt.Errorf("list history samples: %w", err)
	}
	return samples, nil
}
