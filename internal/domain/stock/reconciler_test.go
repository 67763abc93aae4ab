package stock

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func movement(t MovementType, qty, soh int64) StockMovementItem {
	return StockMovementItem{
		MovementType: t,
		Quantity:     qty,
		StockOnHand:  soh,
	}
}

func TestReconcile_EmptyPeriod(t *testing.T) {
	s := Reconcile(40, nil)

	assert.Equal(t, int64(0), s.Received)
	assert.Equal(t, int64(0), s.Issued)
	assert.Equal(t, int64(0), s.Adjustment)
	assert.Equal(t, int64(40), s.Inventory)
	assert.Equal(t, int64(40), s.InitialAmount)
	assert.Equal(t, int64(0), s.CalculatedOrderQuantity)
}

func TestReconcile_Totals(t *testing.T) {
	movements := []StockMovementItem{
		movement(MovementReceive, 100, 140),
		movement(MovementIssue, 30, 110),
		movement(MovementIssue, 20, 90),
		movement(MovementPositiveAdjust, 5, 95),
		movement(MovementNegativeAdjust, 15, 80),
	}

	s := Reconcile(40, movements)

	assert.Equal(t, int64(100), s.Received)
	assert.Equal(t, int64(50), s.Issued)
	assert.Equal(t, int64(-10), s.Adjustment)
	assert.Equal(t, int64(80), s.Inventory, "inventory comes from the last snapshot")
	assert.Equal(t, int64(40), s.InitialAmount, "first receive reversed: 140-100")
	assert.Equal(t, int64(20), s.CalculatedOrderQuantity, "50*2-80")
}

func TestReconcile_InitialAmountFromNegativeFirstMovement(t *testing.T) {
	movements := []StockMovementItem{
		movement(MovementIssue, 25, 75),
		movement(MovementReceive, 10, 85),
	}

	s := Reconcile(0, movements)

	// issue reversed: 75+25
	assert.Equal(t, int64(100), s.InitialAmount)

	s = Reconcile(0, []StockMovementItem{movement(MovementNegativeAdjust, 5, 45)})
	assert.Equal(t, int64(50), s.InitialAmount)
}

func TestReconcile_OrderQuantityNeverNegative(t *testing.T) {
	movements := []StockMovementItem{
		movement(MovementIssue, 10, 200),
	}
	s := Reconcile(210, movements)

	assert.Equal(t, int64(0), s.CalculatedOrderQuantity, "10*2-200 floors at zero")
}

func TestReconcile_InventorySnapshotIgnoresArithmetic(t *testing.T) {
	// physical counts contribute nothing to totals but their snapshot
	// still closes the period
	movements := []StockMovementItem{
		movement(MovementReceive, 50, 90),
		movement(MovementPhysicalInventory, 0, 87),
	}
	s := Reconcile(40, movements)

	assert.Equal(t, int64(50), s.Received)
	assert.Equal(t, int64(87), s.Inventory)
}
