package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"lmis/internal/core/apperror"
	"lmis/internal/core/id"
	"lmis/internal/core/period"
	"lmis/internal/domain/catalogs/product"
	"lmis/internal/domain/stock"
	"lmis/internal/infrastructure/http/v1/dto"
)

// StockHandler handles stock card endpoints.
type StockHandler struct {
	*BaseHandler
	service  *stock.Service
	repo     stock.Repository
	products *product.Service
}

// NewStockHandler creates a stock handler.
func NewStockHandler(base *BaseHandler, service *stock.Service, repo stock.Repository, products *product.Service) *StockHandler {
	return &StockHandler{
		BaseHandler: base,
		service:     service,
		repo:        repo,
		products:    products,
	}
}

// List handles GET /stock-cards
// Returns every card with its classified stock level.
func (h *StockHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	statuses, err := h.service.ListCardStatuses(ctx)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.CardStatusResponse, len(statuses))
	for i, s := range statuses {
		items[i] = dto.FromCardStatus(s)
	}

	h.OK(c, gin.H{"items": items})
}

// Get handles GET /stock-cards/:id
func (h *StockHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	cardID, ok := h.parseID(c)
	if !ok {
		return
	}

	card, err := h.service.GetCard(ctx, cardID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromCard(card))
}

// Create handles POST /stock-cards
func (h *StockHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateCardRequest
	if !h.BindJSON(c, &req) {
		return
	}

	prod, err := h.products.GetByCode(ctx, req.ProductCode)
	if err != nil {
		h.Error(c, err)
		return
	}

	card := stock.NewStockCard(prod.ID, prod.Code)
	if err := h.service.CreateCard(ctx, card); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromCard(card))
}

// RecordMovement handles POST /stock-cards/:id/movements
func (h *StockHandler) RecordMovement(c *gin.Context) {
	ctx := c.Request.Context()

	cardID, ok := h.parseID(c)
	if !ok {
		return
	}

	var req dto.RecordMovementRequest
	if !h.BindJSON(c, &req) {
		return
	}

	movement, err := req.ToMovement(cardID)
	if err != nil {
		h.Error(c, err)
		return
	}

	if err := h.service.RecordMovement(ctx, cardID, movement); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromMovement(movement))
}

// ListMovements handles GET /stock-cards/:id/movements?from=...&to=...
func (h *StockHandler) ListMovements(c *gin.Context) {
	ctx := c.Request.Context()

	cardID, ok := h.parseID(c)
	if !ok {
		return
	}

	from, ok := h.parseDateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := h.parseDateQuery(c, "to")
	if !ok {
		return
	}

	movements, err := h.repo.ListMovements(ctx, cardID, from, to)
	if err != nil {
		h.Error(c, err)
		return
	}

	items := make([]dto.MovementResponse, len(movements))
	for i, m := range movements {
		items[i] = dto.FromMovement(m)
	}

	h.OK(c, gin.H{"items": items})
}

// PeriodSummary handles GET /stock-cards/:id/summary?date=...
// Reconciles the card's movements over the period containing the date,
// defaulting to the current period.
func (h *StockHandler) PeriodSummary(c *gin.Context) {
	ctx := c.Request.Context()

	cardID, ok := h.parseID(c)
	if !ok {
		return
	}

	reference := time.Now()
	if dateStr := c.Query("date"); dateStr != "" {
		parsed, err := time.Parse(period.DateLayout, dateStr)
		if err != nil {
			h.Error(c, apperror.NewValidation("invalid date").
				WithDetail("value", dateStr))
			return
		}
		reference = parsed
	}

	p := period.Containing(reference)
	summary, err := h.service.SummarizePeriod(ctx, cardID, p)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromSummary(p, summary))
}

func (h *StockHandler) parseID(c *gin.Context) (id.ID, bool) {
	cardID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid card id").
			WithDetail("value", c.Param("id")))
		return id.Nil(), false
	}
	return cardID, true
}

func (h *StockHandler) parseDateQuery(c *gin.Context, key string) (time.Time, bool) {
	value := c.Query(key)
	if value == "" {
		h.Error(c, apperror.NewValidation(key+" is required"))
		return time.Time{}, false
	}
	parsed, err := time.Parse(period.DateLayout, value)
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid "+key+" date").
			WithDetail("value", value))
		return time.Time{}, false
	}
	return parsed, true
}
