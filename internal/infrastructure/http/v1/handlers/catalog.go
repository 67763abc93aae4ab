package handlers

import (
	"github.com/gin-gonic/gin"

	"lmis/internal/domain/catalogs/product"
	"lmis/internal/domain/catalogs/program"
	"lmis/internal/infrastructure/http/v1/dto"
)

// ProductHandler handles product catalog endpoints.
type ProductHandler struct {
	*BaseHandler
	service *product.Service
}

// NewProductHandler creates a product handler.
func NewProductHandler(base *BaseHandler, service *product.Service) *ProductHandler {
	return &ProductHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /catalog/products
func (h *ProductHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}
	filter := query.ToFilter()

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// ListReportable handles GET /catalog/products/reportable
func (h *ProductHandler) ListReportable(c *gin.Context) {
	ctx := c.Request.Context()

	products, err := h.service.ListReportable(ctx, c.Query("programCode"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": products})
}

// Get handles GET /catalog/products/:code
func (h *ProductHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	found, err := h.service.GetByCode(ctx, c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, found)
}

// Create handles POST /catalog/products
func (h *ProductHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateProductRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item := req.ToProduct()
	if err := h.service.Create(ctx, item); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, item)
}

// ProgramHandler handles program catalog endpoints.
type ProgramHandler struct {
	*BaseHandler
	service *program.Service
}

// NewProgramHandler creates a program handler.
func NewProgramHandler(base *BaseHandler, service *program.Service) *ProgramHandler {
	return &ProgramHandler{
		BaseHandler: base,
		service:     service,
	}
}

// List handles GET /catalog/programs
func (h *ProgramHandler) List(c *gin.Context) {
	ctx := c.Request.Context()

	var query dto.ListQuery
	if !h.BindQuery(c, &query) {
		return
	}
	filter := query.ToFilter()

	result, err := h.service.List(ctx, filter)
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, dto.ListResponse{
		Items:      result.Items,
		TotalCount: result.TotalCount,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
}

// Get handles GET /catalog/programs/:code
func (h *ProgramHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()

	found, err := h.service.GetByCode(ctx, c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, found)
}

// ListChildren handles GET /catalog/programs/:code/children
func (h *ProgramHandler) ListChildren(c *gin.Context) {
	ctx := c.Request.Context()

	children, err := h.service.ListChildren(ctx, c.Param("code"))
	if err != nil {
		h.Error(c, err)
		return
	}

	h.OK(c, gin.H{"items": children})
}

// Create handles POST /catalog/programs
func (h *ProgramHandler) Create(c *gin.Context) {
	ctx := c.Request.Context()

	var req dto.CreateProgramRequest
	if !h.BindJSON(c, &req) {
		return
	}

	item := req.ToProgram()
	if err := h.service.Create(ctx, item); err != nil {
		h.Error(c, err)
		return
	}

	h.Created(c, item)
}
