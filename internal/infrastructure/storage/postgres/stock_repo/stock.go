// Package stock_repo provides the PostgreSQL implementation of the stock
// repository.
package stock_repo

import (
	"context"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"

	"lmis/internal/core/apperror"
	"lmis/internal/core/entity"
	"lmis/internal/core/id"
	"lmis/internal/domain/stock"
	"lmis/internal/infrastructure/storage/postgres"
)

const (
	cardsTable     = "stock_cards"
	movementsTable = "stock_movement_items"
)

// Compile-time check.
var _ stock.Repository = (*StockRepo)(nil)

// StockRepo implements stock.Repository.
type StockRepo struct {
	txManager    *postgres.TxManager
	cardCols     []string
	movementCols []string
}

// NewStockRepo creates the stock repository.
func NewStockRepo(txManager *postgres.TxManager) *StockRepo {
	return &StockRepo{
		txManager:    txManager,
		cardCols:     postgres.ExtractDBColumns[*stock.StockCard](),
		movementCols: postgres.ExtractDBColumns[*stock.StockMovementItem](),
	}
}

func (r *StockRepo) builder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

func (r *StockRepo) querier(ctx context.Context) postgres.Querier {
	return r.txManager.GetQuerier(ctx)
}

// CreateCard inserts a new stock card.
func (r *StockRepo) CreateCard(ctx context.Context, card *stock.StockCard) error {
	return r.insertRow(ctx, cardsTable, r.cardCols, postgres.StructToMap(card))
}

func (r *StockRepo) insertRow(ctx context.Context, table string, cols []string, data map[string]any) error {
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
	if _, err := r.querier(ctx).Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

// GetCard retrieves a stock card by ID.
func (r *StockRepo) GetCard(ctx context.Context, cardID id.ID) (*stock.StockCard, error) {
	return r.getCard(ctx, squirrel.Eq{"id": cardID}, cardID.String())
}

// GetCardByProduct retrieves the card for a product, if any.
func (r *StockRepo) GetCardByProduct(ctx context.Context, productID id.ID) (*stock.StockCard, error) {
	return r.getCard(ctx, squirrel.Eq{"product_id": productID}, productID.String())
}

func (r *StockRepo) getCard(ctx context.Context, pred squirrel.Eq, key string) (*stock.StockCard, error) {
	card := &stock.StockCard{}
	sql, args, err := r.builder().
		Select(r.cardCols...).
		From(cardsTable).
		Where(pred).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	if err := pgxscan.Get(ctx, r.querier(ctx), card, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return nil, apperror.NewNotFound("stock_card", key)
		}
		return nil, fmt.Errorf("get stock card: %w", err)
	}
	return card, nil
}

// ListCards retrieves all cards at the facility.
func (r *StockRepo) ListCards(ctx context.Context) ([]*stock.StockCard, error) {
	sql, args, err := r.builder().
		Select(r.cardCols...).
		From(cardsTable).
		OrderBy("product_code ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var cards []*stock.StockCard
	if err := pgxscan.Select(ctx, r.querier(ctx), &cards, sql, args...); err != nil {
		return nil, fmt.Errorf("list stock cards: %w", err)
	}
	return cards, nil
}

// UpdateCard persists balance, expire dates and consumption changes with
// optimistic locking.
func (r *StockRepo) UpdateCard(ctx context.Context, card *stock.StockCard) error {
	data := postgres.StructToMap(card)
	version, _ := data["version"].(int)

	filtered := make(map[string]any, len(r.cardCols))
	for _, col := range r.cardCols {
		if col == "id" || col == "version" {
			continue
		}
		if val, ok := data[col]; ok {
			filtered[col] = val
		}
	}

	sql, args, err := r.builder().
		Update(cardsTable).
		SetMap(filtered).
		Set("version", squirrel.Expr("version + 1")).
		Where(squirrel.Eq{"id": card.ID}).
		Where(squirrel.Eq{"version": version}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}

	result, err := r.querier(ctx).Exec(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("update stock card: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperror.NewConcurrentModification("stock_card", card.ID)
	}
	card.SetVersion(version + 1)
	return nil
}

// CreateMovement appends a movement to a card's journal.
func (r *StockRepo) CreateMovement(ctx context.Context, movement *stock.StockMovementItem) error {
	if id.IsNil(movement.ID) {
		movement.Document = entity.NewDocument()
	}
	return r.insertRow(ctx, movementsTable, r.movementCols, postgres.StructToMap(movement))
}

// ListMovements retrieves a card's movements within [from, to], in
// chronological order.
func (r *StockRepo) ListMovements(ctx context.Context, cardID id.ID, from, to time.Time) ([]*stock.StockMovementItem, error) {
	sql, args, err := r.builder().
		Select(r.movementCols...).
		From(movementsTable).
		Where(squirrel.Eq{"stock_card_id": cardID}).
		Where(squirrel.GtOrEq{"movement_date": from}).
		Where(squirrel.LtOrEq{"movement_date": to}).
		OrderBy("movement_date ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []*stock.StockMovementItem
	if err := pgxscan.Select(ctx, r.querier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("list movements: %w", err)
	}
	return movements, nil
}

// GetBalanceAt returns the card's balance as of the given date, taken
// from the last movement snapshot at or before it. No movements means a
// zero balance.
func (r *StockRepo) GetBalanceAt(ctx context.Context, cardID id.ID, at time.Time) (int64, error) {
	sql, args, err := r.builder().
		Select("stock_on_hand").
		From(movementsTable).
		Where(squirrel.Eq{"stock_card_id": cardID}).
		Where(squirrel.LtOrEq{"movement_date": at}).
		OrderBy("movement_date DESC", "id DESC").
		Limit(1).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}

	var balance int64
	if err := pgxscan.Get(ctx, r.querier(ctx), &balance, sql, args...); err != nil {
		if pgxscan.NotFound(err) {
			return 0, nil
		}
		return 0, fmt.Errorf("get balance: %w", err)
	}
	return balance, nil
}

// ListUnsyncedMovements retrieves movements not yet pushed upstream.
func (r *StockRepo) ListUnsyncedMovements(ctx context.Context, limit int) ([]*stock.StockMovementItem, error) {
	q := r.builder().
		Select(r.movementCols...).
		From(movementsTable).
		Where(squirrel.Eq{"synced": false}).
		OrderBy("movement_date ASC", "id ASC")
	if limit > 0 {
		q = q.Limit(uint64(limit))
	}

	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var movements []*stock.StockMovementItem
	if err := pgxscan.Select(ctx, r.querier(ctx), &movements, sql, args...); err != nil {
		return nil, fmt.Errorf("list unsynced movements: %w", err)
	}
	return movements, nil
}

// MarkMovementsSynced flags movements as pushed.
func (r *StockRepo) MarkMovementsSynced(ctx context.Context, movementIDs []id.ID) error {
	if len(movementIDs) == 0 {
		return nil
	}
	sql, args, err := r.builder().
		Update(movementsTable).
		Set("synced", true).
		Where(squirrel.Eq{"id": movementIDs}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update: %w", err)
	}
	_, err = r.querier(ctx).Exec(ctx, sql, args...)
	return err
}
