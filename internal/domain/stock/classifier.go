package stock

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"lmis/internal/core/id"
)

// Level is the stock-level classification used for alerting.
type Level string

const (
	LevelNormal   Level = "NORMAL"
	LevelLowStock Level = "LOW_STOCK"
	LevelStockOut Level = "STOCK_OUT"
)

// historySampleSize bounds the low-stock threshold to the most recent
// reporting periods.
const historySampleSize = 3

// lowStockFraction is the share of mean monthly issuance below which a
// product counts as low.
var lowStockFraction = decimal.NewFromFloat(0.05)

// LineSample is one historical requisition line used for threshold
// estimation. Only lines with a non-zero closing inventory qualify.
type LineSample struct {
	Issued    int64
	Inventory int64
}

// HistoricalItemStore supplies recent requisition lines for a product,
// newest first, excluding lines whose closing inventory was zero.
type HistoricalItemStore interface {
	ListRecentNonZeroInventory(ctx context.Context, productID id.ID, limit int) ([]LineSample, error)
}

// ClassifyLevel applies the three-way rule: above the threshold is normal,
// at or below it but positive is low, zero or negative is stocked out.
func ClassifyLevel(stockOnHand, threshold int64) Level {
	switch {
	case stockOnHand > threshold:
		return LevelNormal
	case stockOnHand > 0:
		return LevelLowStock
	default:
		return LevelStockOut
	}
}

// LowStockThreshold derives the alert threshold from historical issuance:
// the ceiling of 5% of the mean issued quantity over the supplied samples.
// No history means no meaningful baseline and the threshold collapses to
// zero, so only a full stock-out is flagged.
func LowStockThreshold(samples []LineSample) int64 {
	if len(samples) == 0 {
		return 0
	}
	var sum int64
	for _, s := range samples {
		sum += s.Issued
	}
	mean := decimal.NewFromInt(sum).Div(decimal.NewFromInt(int64(len(samples))))
	return mean.Mul(lowStockFraction).Ceil().IntPart()
}

// Classifier annotates stock cards with a stock level derived from
// requisition history.
type Classifier struct {
	history HistoricalItemStore
}

// NewClassifier creates a Classifier over the given history store.
func NewClassifier(history HistoricalItemStore) *Classifier {
	return &Classifier{history: history}
}

// Classify computes the stock level for a card.
func (c *Classifier) Classify(ctx context.Context, card *StockCard) (Level, error) {
	samples, err := c.history.ListRecentNonZeroInventory(ctx, card.ProductID, historySampleSize)
	if err != nil {
		return "", fmt.Errorf("list requisition history: %w", err)
	}
	return ClassifyLevel(card.StockOnHand, LowStockThreshold(samples)), nil
}
