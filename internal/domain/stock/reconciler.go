package stock

// Summary holds the per-product aggregation of one reporting period's
// movements, in requisition line-item shape.
type Summary struct {
	// InitialAmount is the opening balance at period begin
	InitialAmount int64

	// Received is the sum of RECEIVE quantities
	Received int64

	// Issued is the sum of ISSUE quantities
	Issued int64

	// Adjustment is positive adjustments minus negative adjustments
	Adjustment int64

	// Inventory is the on-hand balance at period close, taken from the
	// last movement's snapshot
	Inventory int64

	// CalculatedOrderQuantity = max(0, Issued*2 - Inventory)
	CalculatedOrderQuantity int64
}

// Reconcile aggregates a period's movements for one product. Movements must
// be in chronological order; each carries its own post-movement balance
// snapshot, so the closing inventory is read rather than recomputed.
//
// With no movements the period is a passthrough: totals are zero and the
// opening balance carries forward unchanged.
func Reconcile(opening int64, movements []StockMovementItem) Summary {
	s := Summary{
		InitialAmount: opening,
		Inventory:     opening,
	}

	for _, m := range movements {
		switch m.MovementType {
		case MovementReceive:
			s.Received += m.Quantity
		case MovementIssue:
			s.Issued += m.Quantity
		case MovementPositiveAdjust:
			s.Adjustment += m.Quantity
		case MovementNegativeAdjust:
			s.Adjustment -= m.Quantity
		}
	}

	if len(movements) > 0 {
		s.Inventory = movements[len(movements)-1].StockOnHand
		s.InitialAmount = initialAmount(movements[0])
	}

	s.CalculatedOrderQuantity = orderQuantity(s.Issued, s.Inventory)
	return s
}

// initialAmount reverses the first movement to recover the balance the
// period opened with.
func initialAmount(first StockMovementItem) int64 {
	if first.MovementType.IsNegative() {
		return first.StockOnHand + first.Quantity
	}
	return first.StockOnHand - first.Quantity
}

// orderQuantity approximates a two-period safety stock against the current
// issuance rate, never negative.
func orderQuantity(issued, inventory int64) int64 {
	q := issued*2 - inventory
	if q < 0 {
		return 0
	}
	return q
}
