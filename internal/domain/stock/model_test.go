package stock

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"lmis/internal/core/id"
)

func TestStockCard_ExpireDates(t *testing.T) {
	card := NewStockCard(id.New(), "08S01")
	card.ExpireDates = "2016-03-31,2016-01-31,2016-02-29"

	dates := card.ExpireDateList()
	assert.Len(t, dates, 3)
	assert.Equal(t, time.Date(2016, time.January, 31, 0, 0, 0, 0, time.UTC), dates[0])

	assert.Equal(t, time.Date(2016, time.January, 31, 0, 0, 0, 0, time.UTC), card.EarliestExpireDate())

	card.ExpireDates = ""
	assert.Empty(t, card.ExpireDateList())
	assert.True(t, card.EarliestExpireDate().IsZero())

	// malformed entries are skipped
	card.ExpireDates = "garbage,2016-05-31"
	assert.Len(t, card.ExpireDateList(), 1)
}

func TestStockCard_SetExpireDates(t *testing.T) {
	card := NewStockCard(id.New(), "08S01")
	card.SetExpireDates([]time.Time{
		time.Date(2016, time.March, 31, 0, 0, 0, 0, time.UTC),
		time.Date(2016, time.January, 31, 0, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, "2016-01-31,2016-03-31", card.ExpireDates)
}

func TestStockCard_CMM(t *testing.T) {
	card := NewStockCard(id.New(), "08S01")
	assert.Equal(t, int64(-1), card.CMM(), "unknown consumption stays -1")

	card.AvgMonthlyConsumption = decimal.NewFromFloat(11.3)
	assert.Equal(t, int64(12), card.CMM())

	card.AvgMonthlyConsumption = decimal.NewFromInt(8)
	assert.Equal(t, int64(8), card.CMM())
}

func TestStockCard_IsOverStock(t *testing.T) {
	card := NewStockCard(id.New(), "08S01")
	card.StockOnHand = 1000
	assert.False(t, card.IsOverStock(), "unknown consumption is never over stock")

	card.AvgMonthlyConsumption = decimal.NewFromFloat(10.4) // limit ceil(20.8)=21
	card.StockOnHand = 21
	assert.False(t, card.IsOverStock())
	card.StockOnHand = 22
	assert.True(t, card.IsOverStock())
}

func TestMovementType(t *testing.T) {
	assert.True(t, MovementIssue.IsNegative())
	assert.True(t, MovementNegativeAdjust.IsNegative())
	assert.False(t, MovementReceive.IsNegative())
	assert.False(t, MovementPhysicalInventory.IsNegative())

	assert.True(t, MovementReceive.Valid())
	assert.False(t, MovementType("BOGUS").Valid())
}
