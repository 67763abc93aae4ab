package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"lmis/internal/core/apperror"
	"lmis/internal/core/id"
	"lmis/internal/domain/requisition"
	"lmis/internal/infrastructure/http/v1/dto"
)

// RequisitionHandler handles requisition form endpoints.
type RequisitionHandler struct {
	*BaseHandler
	service *requisition.Service
}

// NewRequisitionHandler creates a requisition handler.
func NewRequisitionHandler(base *BaseHandler, service *requisition.Service) *RequisitionHandler {
	return &RequisitionHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /requisitions?programCode=...
func (h *RequisitionHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	programCode := c.Query("programCode")
	if programCode == "" {
		h.Error(c, apperror.NewValidation("programCode is required"))
		return
	}

	forms, err := h.service.ListByProgram(ctx, programCode)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": dto.FromForms(forms)})
}

// Get handles GET /requisitions/:id
func (h *RequisitionHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	formID, ok := h.parseID(c)
	if !ok {
		return
	}

	form, err := h.service.Get(ctx, formID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromForm(form))
}

// GetDraft handles GET /requisitions/draft?programCode=...
func (h *RequisitionHandler) GetDraft(c *gin.Context) {
	ctx := c.Request.Context()

	programCode := c.Query("programCode")
	if programCode == "" {
		h.Error(c, apperror.NewValidation("programCode is required"))
		return
	}

	form, err := h.service.GetDraft(ctx, programCode)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromForm(form))
}

// CreateDraft handles POST /requisitions
func (h *RequisitionHandler) CreateDraft(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateDraftRequest
	if !h.BindJSON(c, &req) {
		return
	}

	referenceDate, err := req.ParseReferenceDate(time.Now())
	if err != nil {
		h.Error(c, err)
		return
	}

	form, err := h.service.CreateDraft(ctx, req.ProgramCode, referenceDate)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromForm(form))
}

// CreateEmergency handles POST /requisitions/emergency
func (h *RequisitionHandler) CreateEmergency(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateEmergencyRequest
	if !h.BindJSON(c, &req) {
		return
	}

	p, err := req.ParsePeriod()
	if err != nil {
		h.Error(c, err)
		return
	}

	form, err := h.service.CreateEmergency(ctx, req.ProgramCode, p)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, dto.FromForm(form))
}

// Submit handles POST /requisitions/:id/submit
func (h *RequisitionHandler) Submit(c *gin.Context) {
	ctx := c.Request.Context()

	formID, ok := h.parseID(c)
	if !ok {
		return
	}

	form, err := h.service.Submit(ctx, formID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromForm(form))
}

// Authorize handles POST /requisitions/:id/authorize
func (h *RequisitionHandler) Authorize(c *gin.Context) {
	ctx := c.Request.Context()

	formID, ok := h.parseID(c)
	if !ok {
		return
	}

	form, err := h.service.Authorize(ctx, formID)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.FromForm(form))
}

// Delete handles DELETE /requisitions/:id
func (h *RequisitionHandler) Delete(c *gin.Context) {
	ctx := c.Request.Context()

	formID, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteDraft(ctx, formID); err != nil {
		h.Error(c, err)
		return
	}

	h.NoContent(c)
}

func (h *RequisitionHandler) parseID(c *gin.Context) (id.ID, bool) {
	formID, err := id.Parse(c.Param("id"))
	if err != nil {
		h.Error(c, apperror.NewValidation("invalid form id").
			WithDetail("value", c.Param("id")))
		return id.Nil(), false
	}
	return formID, true
}
