package dto

import (
	"time"

	"lmis/internal/core/apperror"
	"lmis/internal/core/id"
	"lmis/internal/core/period"
	"lmis/internal/domain/stock"
)

// CreateCardRequest for POST /stock-cards.
type CreateCardRequest struct {
	ProductCode string `json:"productCode" binding:"required"`
}

// RecordMovementRequest for POST /stock-cards/:id/movements.
type RecordMovementRequest struct {
	MovementType   string `json:"movementType" binding:"required"`
	MovementDate   string `json:"movementDate" binding:"required"`
	Quantity       int64  `json:"quantity" binding:"min=0"`
	StockOnHand    int64  `json:"stockOnHand" binding:"min=0"`
	DocumentNumber string `json:"documentNumber"`
	Reason         string `json:"reason"`
}

// ToMovement converts the request to a domain movement.
func (r RecordMovementRequest) ToMovement(cardID id.ID) (*stock.StockMovementItem, error) {
	movementType := stock.MovementType(r.MovementType)
	if !movementType.Valid() {
		return nil, apperror.NewValidation("invalid movement type").
			WithDetail("field", "movementType").
			WithDetail("value", r.MovementType)
	}
	movementDate, err := time.Parse(period.DateLayout, r.MovementDate)
	if err != nil {
		return nil, apperror.NewValidation("invalid movement date").
			WithDetail("field", "movementDate").
			WithDetail("value", r.MovementDate)
	}
	return &stock.StockMovementItem{
		StockCardID:    cardID,
		MovementType:   movementType,
		MovementDate:   movementDate,
		Quantity:       r.Quantity,
		StockOnHand:    r.StockOnHand,
		DocumentNumber: r.DocumentNumber,
		Reason:         r.Reason,
	}, nil
}

// CardResponse is the public view of a stock card.
type CardResponse struct {
	ID                    string `json:"id"`
	ProductCode           string `json:"productCode"`
	StockOnHand           int64  `json:"stockOnHand"`
	ExpireDates           string `json:"expireDates,omitempty"`
	AvgMonthlyConsumption string `json:"avgMonthlyConsumption"`
	Version               int    `json:"version"`
}

// FromCard creates CardResponse from a domain card.
func FromCard(c *stock.StockCard) CardResponse {
	return CardResponse{
		ID:                    c.ID.String(),
		ProductCode:           c.ProductCode,
		StockOnHand:           c.StockOnHand,
		ExpireDates:           c.ExpireDates,
		AvgMonthlyConsumption: c.AvgMonthlyConsumption.String(),
		Version:               c.Version,
	}
}

// CardStatusResponse pairs a card with its classified stock level.
type CardStatusResponse struct {
	Card  CardResponse `json:"card"`
	Level stock.Level  `json:"level"`
}

// FromCardStatus creates CardStatusResponse from a domain status.
func FromCardStatus(s stock.CardStatus) CardStatusResponse {
	return CardStatusResponse{
		Card:  FromCard(s.Card),
		Level: s.Level,
	}
}

// SummaryResponse is a reconciled period summary for one card.
type SummaryResponse struct {
	PeriodBegin             string `json:"periodBegin"`
	PeriodEnd               string `json:"periodEnd"`
	InitialAmount           int64  `json:"initialAmount"`
	Received                int64  `json:"received"`
	Issued                  int64  `json:"issued"`
	Adjustment              int64  `json:"adjustment"`
	Inventory               int64  `json:"inventory"`
	CalculatedOrderQuantity int64  `json:"calculatedOrderQuantity"`
}

// FromSummary creates SummaryResponse from a domain summary.
func FromSummary(p period.Period, s stock.Summary) SummaryResponse {
	return SummaryResponse{
		PeriodBegin:             p.Begin.Format(period.DateLayout),
		PeriodEnd:               p.End.Format(period.DateLayout),
		InitialAmount:           s.InitialAmount,
		Received:                s.Received,
		Issued:                  s.Issued,
		Adjustment:              s.Adjustment,
		Inventory:               s.Inventory,
		CalculatedOrderQuantity: s.CalculatedOrderQuantity,
	}
}

// MovementResponse is one journal entry of a stock card.
type MovementResponse struct {
	ID             string `json:"id"`
	MovementType   string `json:"movementType"`
	MovementDate   string `json:"movementDate"`
	Quantity       int64  `json:"quantity"`
	StockOnHand    int64  `json:"stockOnHand"`
	DocumentNumber string `json:"documentNumber,omitempty"`
	Reason         string `json:"reason,omitempty"`
	Synced         bool   `json:"synced"`
}

// FromMovement creates MovementResponse from a domain movement.
func FromMovement(m *stock.StockMovementItem) MovementResponse {
	return MovementResponse{
		ID:             m.ID.String(),
		MovementType:   string(m.MovementType),
		MovementDate:   m.MovementDate.Format(period.DateLayout),
		Quantity:       m.Quantity,
		StockOnHand:    m.StockOnHand,
		DocumentNumber: m.DocumentNumber,
		Reason:         m.Reason,
		Synced:         m.Synced,
	}
}
