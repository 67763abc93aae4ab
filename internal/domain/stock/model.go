// Package stock provides stock cards, the movement journal, and the
// aggregation and classification rules built on them.
package stock

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"lmis/internal/core/apperror"
	"lmis/internal/core/entity"
	"lmis/internal/core/id"
)

// MovementType categorizes a stock movement.
type MovementType string

const (
	MovementReceive           MovementType = "RECEIVE"
	MovementIssue             MovementType = "ISSUE"
	MovementPositiveAdjust    MovementType = "POSITIVE_ADJUST"
	MovementNegativeAdjust    MovementType = "NEGATIVE_ADJUST"
	MovementPhysicalInventory MovementType = "PHYSICAL_INVENTORY"
	MovementInitialInventory  MovementType = "INITIAL_INVENTORY"
)

// IsNegative reports whether the movement reduces stock on hand.
func (t MovementType) IsNegative() bool {
	return t == MovementIssue || t == MovementNegativeAdjust
}

// Valid reports whether t is a known movement type.
func (t MovementType) Valid() bool {
	switch t {
	case MovementReceive, MovementIssue, MovementPositiveAdjust,
		MovementNegativeAdjust, MovementPhysicalInventory, MovementInitialInventory:
		return true
	}
	return false
}

// ExpireDateDivider separates expire dates in StockCard.ExpireDates.
const ExpireDateDivider = ","

// ExpireDateLayout is the storage and wire format for expire dates.
const ExpireDateLayout = "2006-01-02"

// StockMovementItem is one entry in a stock card's movement journal.
// StockOnHand is the balance snapshot after this movement was applied.
type StockMovementItem struct {
	entity.Document

	StockCardID  id.ID        `db:"stock_card_id" json:"stockCardId"`
	MovementType MovementType `db:"movement_type" json:"movementType"`

	// MovementDate is the business date of the movement (not the record time)
	MovementDate time.Time `db:"movement_date" json:"movementDate"`

	// Quantity is always non-negative; direction comes from MovementType
	Quantity int64 `db:"quantity" json:"quantity"`

	// StockOnHand after applying this movement
	StockOnHand int64 `db:"stock_on_hand" json:"stockOnHand"`

	// DocumentNumber references the paper voucher, optional
	DocumentNumber string `db:"document_number" json:"documentNumber,omitempty"`

	Reason string `db:"reason" json:"reason,omitempty"`

	// Synced marks movements already pushed to the central server
	Synced bool `db:"synced" json:"synced"`
}

// Validate implements entity.Validatable.
func (m *StockMovementItem) Validate(ctx context.Context) error {
	if !m.MovementType.Valid() {
		return apperror.NewValidation("invalid movement type").
			WithDetail("field", "movementType").
			WithDetail("value", string(m.MovementType))
	}
	if m.Quantity < 0 {
		return apperror.NewValidation("quantity cannot be negative").
			WithDetail("field", "quantity")
	}
	if m.StockOnHand < 0 {
		return apperror.NewValidation("stock on hand cannot be negative").
			WithDetail("field", "stockOnHand")
	}
	return nil
}

// StockCard tracks one product's balance at the facility.
type StockCard struct {
	entity.Document

	ProductID   id.ID  `db:"product_id" json:"productId"`
	ProductCode string `db:"product_code" json:"productCode"`

	StockOnHand int64 `db:"stock_on_hand" json:"stockOnHand"`

	// ExpireDates holds comma-joined expire dates of open lots, e.g.
	// "2016-01-31,2016-03-31"
	ExpireDates string `db:"expire_dates" json:"expireDates,omitempty"`

	// AvgMonthlyConsumption is -1 until enough history exists to compute it
	AvgMonthlyConsumption decimal.Decimal `db:"avg_monthly_consumption" json:"avgMonthlyConsumption"`
}

// UnknownAvgMonthlyConsumption is the sentinel for cards without history.
var UnknownAvgMonthlyConsumption = decimal.NewFromInt(-1)

// NewStockCard creates a stock card for a product with zero balance.
func NewStockCard(productID id.ID, productCode string) *StockCard {
	return &StockCard{
		Document:              entity.NewDocument(),
		ProductID:             productID,
		ProductCode:           productCode,
		AvgMonthlyConsumption: UnknownAvgMonthlyConsumption,
	}
}

// Validate implements entity.Validatable.
func (c *StockCard) Validate(ctx context.Context) error {
	if id.IsNil(c.ProductID) {
		return apperror.NewValidation("product is required").
			WithDetail("field", "productId")
	}
	if c.StockOnHand < 0 {
		return apperror.NewValidation("stock on hand cannot be negative").
			WithDetail("field", "stockOnHand")
	}
	return nil
}

// ExpireDateList splits ExpireDates into sorted individual dates.
// Unparseable entries are skipped.
func (c *StockCard) ExpireDateList() []time.Time {
	if c.ExpireDates == "" {
		return nil
	}
	var dates []time.Time
	for _, raw := range strings.Split(c.ExpireDates, ExpireDateDivider) {
		d, err := time.Parse(ExpireDateLayout, strings.TrimSpace(raw))
		if err != nil {
			continue
		}
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	return dates
}

// EarliestExpireDate returns the soonest expire date, or zero time when none.
func (c *StockCard) EarliestExpireDate() time.Time {
	dates := c.ExpireDateList()
	if len(dates) == 0 {
		return time.Time{}
	}
	return dates[0]
}

// SetExpireDates joins the given dates back into the stored representation,
// earliest first.
func (c *StockCard) SetExpireDates(dates []time.Time) {
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })
	parts := make([]string, 0, len(dates))
	for _, d := range dates {
		parts = append(parts, d.Format(ExpireDateLayout))
	}
	c.ExpireDates = strings.Join(parts, ExpireDateDivider)
}

// CMM returns the ceiling of the average monthly consumption, or -1 when
// consumption is unknown.
func (c *StockCard) CMM() int64 {
	if c.AvgMonthlyConsumption.IsNegative() {
		return -1
	}
	return c.AvgMonthlyConsumption.Ceil().IntPart()
}

// IsOverStock reports whether stock on hand exceeds two months of
// consumption. Cards with unknown consumption are never over stock.
func (c *StockCard) IsOverStock() bool {
	if c.AvgMonthlyConsumption.IsNegative() {
		return false
	}
	limit := c.AvgMonthlyConsumption.Mul(decimal.NewFromInt(2)).Ceil().IntPart()
	return c.StockOnHand > limit
}
