package stock

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lmis/internal/core/id"
)

func TestClassifyLevel(t *testing.T) {
	tests := []struct {
		name      string
		soh       int64
		threshold int64
		want      Level
	}{
		{"above threshold is normal", 10, 3, LevelNormal},
		{"at threshold is low", 3, 3, LevelLowStock},
		{"below threshold but positive is low", 1, 3, LevelLowStock},
		{"zero is stock out", 0, 3, LevelStockOut},
		{"zero threshold and positive stock is normal", 1, 0, LevelNormal},
		{"zero threshold and zero stock is stock out", 0, 0, LevelStockOut},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyLevel(tt.soh, tt.threshold))
		})
	}
}

func TestLowStockThreshold(t *testing.T) {
	// ceil(0.05 * mean(issued))
	samples := []LineSample{
		{Issued: 100, Inventory: 20},
		{Issued: 200, Inventory: 30},
		{Issued: 300, Inventory: 10},
	}
	assert.Equal(t, int64(10), LowStockThreshold(samples), "ceil(0.05*200)")

	assert.Equal(t, int64(1), LowStockThreshold([]LineSample{{Issued: 1, Inventory: 5}}),
		"ceil(0.05*1) rounds up")

	assert.Equal(t, int64(0), LowStockThreshold(nil), "no history collapses to zero")

	assert.Equal(t, int64(0), LowStockThreshold([]LineSample{{Issued: 0, Inventory: 5}}))
}

type stubHistory struct {
	samples []LineSample
	limit   int
}

func (s *stubHistory) ListRecentNonZeroInventory(_ context.Context, _ id.ID, limit int) ([]LineSample, error) {
	s.limit = limit
	return s.samples, nil
}

func TestClassifier_Classify(t *testing.T) {
	history := &stubHistory{samples: []LineSample{
		{Issued: 60, Inventory: 12},
		{Issued: 40, Inventory: 9},
	}}
	c := NewClassifier(history)

	card := NewStockCard(id.New(), "08S01")
	card.StockOnHand = 2 // threshold ceil(0.05*50)=3

	level, err := c.Classify(context.Background(), card)
	require.NoError(t, err)
	assert.Equal(t, LevelLowStock, level)
	assert.Equal(t, historySampleSize, history.limit)

	card.StockOnHand = 4
	level, err = c.Classify(context.Background(), card)
	require.NoError(t, err)
	assert.Equal(t, LevelNormal, level)

	card.StockOnHand = 0
	level, err = c.Classify(context.Background(), card)
	require.NoError(t, err)
	assert.Equal(t, LevelStockOut, level)
}
