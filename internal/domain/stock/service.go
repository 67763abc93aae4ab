package stock

import (
	"context"
	"fmt"

	"lmis/internal/core/apperror"
	"lmis/internal/core/id"
	"lmis/internal/core/period"
	"lmis/internal/core/tx"
	"lmis/pkg/logger"
)

// Service provides business operations for stock cards and movements.
type Service struct {
	repo       Repository
	txManager  tx.Manager
	classifier *Classifier
}

// NewService creates a stock service.
func NewService(repo Repository, txManager tx.Manager, classifier *Classifier) *Service {
	return &Service{
		repo:       repo,
		txManager:  txManager,
		classifier: classifier,
	}
}

// GetCard retrieves a stock card by ID.
func (s *Service) GetCard(ctx context.Context, cardID id.ID) (*StockCard, error) {
	return s.repo.GetCard(ctx, cardID)
}

// GetCardByProduct retrieves the stock card for a product.
func (s *Service) GetCardByProduct(ctx context.Context, productID id.ID) (*StockCard, error) {
	return s.repo.GetCardByProduct(ctx, productID)
}

// ListCards retrieves all stock cards at the facility.
func (s *Service) ListCards(ctx context.Context) ([]*StockCard, error) {
	return s.repo.ListCards(ctx)
}

// CreateCard registers a stock card for a product not yet tracked.
func (s *Service) CreateCard(ctx context.Context, card *StockCard) error {
	if err := card.Validate(ctx); err != nil {
		return err
	}
	existing, err := s.repo.GetCardByProduct(ctx, card.ProductID)
	if err != nil && !apperror.IsNotFound(err) {
		return fmt.Errorf("check existing card: %w", err)
	}
	if existing != nil {
		return apperror.NewDuplicate("stock card", "product", card.ProductCode)
	}
	return s.repo.CreateCard(ctx, card)
}

// RecordMovement appends a movement to a card's journal and rolls the
// card balance forward, in one transaction.
//
// For inventory counts the snapshot is authoritative and replaces the
// balance; for all other types the snapshot must agree with the card's
// balance plus the signed quantity.
func (s *Service) RecordMovement(ctx context.Context, cardID id.ID, movement *StockMovementItem) error {
	if err := movement.Validate(ctx); err != nil {
		return err
	}

	return s.txManager.RunInTransaction(ctx, func(ctx context.Context) error {
		card, err := s.repo.GetCard(ctx, cardID)
		if err != nil {
			return fmt.Errorf("get stock card: %w", err)
		}

		expected := expectedBalance(card.StockOnHand, movement)
		if movement.StockOnHand != expected {
			return apperror.NewValidation("stock on hand snapshot does not match card balance").
				WithDetail("expected", expected).
				WithDetail("got", movement.StockOnHand)
		}

		movement.StockCardID = card.ID
		if err := s.repo.CreateMovement(ctx, movement); err != nil {
			return fmt.Errorf("create movement: %w", err)
		}

		card.StockOnHand = movement.StockOnHand
		card.Touch()
		if err := s.repo.UpdateCard(ctx, card); err != nil {
			return fmt.Errorf("update stock card: %w", err)
		}

		logger.Info(ctx, "stock movement recorded",
			"card_id", card.ID,
			"product_code", card.ProductCode,
			"type", movement.MovementType,
			"quantity", movement.Quantity,
			"stock_on_hand", movement.StockOnHand,
		)
		return nil
	})
}

// expectedBalance computes the snapshot a movement must carry. Inventory
// counts set the balance outright.
func expectedBalance(current int64, m *StockMovementItem) int64 {
	switch m.MovementType {
	case MovementPhysicalInventory, MovementInitialInventory:
		return m.StockOnHand
	}
	if m.MovementType.IsNegative() {
		return current - m.Quantity
	}
	return current + m.Quantity
}

// SummarizePeriod aggregates one card's movements over a reporting period.
func (s *Service) SummarizePeriod(ctx context.Context, cardID id.ID, p period.Period) (Summary, error) {
	opening, err := s.repo.GetBalanceAt(ctx, cardID, p.Begin.AddDate(0, 0, -1))
	if err != nil {
		return Summary{}, fmt.Errorf("opening balance: %w", err)
	}

	movements, err := s.repo.ListMovements(ctx, cardID, p.Begin, p.End)
	if err != nil {
		return Summary{}, fmt.Errorf("list movements: %w", err)
	}

	items := make([]StockMovementItem, len(movements))
	for i, m := range movements {
		items[i] = *m
	}
	return Reconcile(opening, items), nil
}

// CardStatus pairs a stock card with its classified level.
type CardStatus struct {
	Card  *StockCard `json:"card"`
	Level Level      `json:"level"`
}

// ListCardStatuses classifies every card at the facility.
func (s *Service) ListCardStatuses(ctx context.Context) ([]CardStatus, error) {
	cards, err := s.repo.ListCards(ctx)
	if err != nil {
		return nil, err
	}
	statuses := make([]CardStatus, 0, len(cards))
	for _, card := range cards {
		level, err := s.classifier.Classify(ctx, card)
		if err != nil {
			return nil, fmt.Errorf("classify %s: %w", card.ProductCode, err)
		}
		statuses = append(statuses, CardStatus{Card: card, Level: level})
	}
	return statuses, nil
}
