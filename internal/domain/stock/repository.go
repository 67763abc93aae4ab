package stock

import (
	"context"
	"time"

	"lmis/internal/core/id"
)

// Repository defines persistence for stock cards and their movements.
type Repository interface {
	// Card operations

	// CreateCard inserts a new stock card
	CreateCard(ctx context.Context, card *StockCard) error

	// GetCard retrieves a stock card by ID
	GetCard(ctx context.Context, cardID id.ID) (*StockCard, error)

	// GetCardByProduct retrieves the card for a product, if any
	GetCardByProduct(ctx context.Context, productID id.ID) (*StockCard, error)

	// ListCards retrieves all cards at the facility
	ListCards(ctx context.Context) ([]*StockCard, error)

	// UpdateCard persists balance, expire dates and consumption changes
	UpdateCard(ctx context.Context, card *StockCard) error

	// Movement operations

	// CreateMovement appends a movement to a card's journal
	CreateMovement(ctx context.Context, movement *StockMovementItem) error

	// ListMovements retrieves a card's movements within [from, to],
	// chronological order
	ListMovements(ctx context.Context, cardID id.ID, from, to time.Time) ([]*StockMovementItem, error)

	// GetBalanceAt returns the card's balance as of the given date, taken
	// from the last movement snapshot at or before it
	GetBalanceAt(ctx context.Context, cardID id.ID, at time.Time) (int64, error)

	// ListUnsyncedMovements retrieves movements not yet pushed upstream
	ListUnsyncedMovements(ctx context.Context, limit int) ([]*StockMovementItem, error)

	// MarkMovementsSynced flags movements as pushed
	MarkMovementsSynced(ctx context.Context, movementIDs []id.ID) error
}
