package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	taxapp "github.com/invoicing/backend/internal/application/tax"
	"github.com/invoicing/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
)

// TaxRuleHandler handles tax rule API endpoints
type TaxRuleHandler struct {
	BaseHandler
	ruleService *taxapp.RuleService
}

// NewTaxRuleHandler creates a new TaxRuleHandler
func NewTaxRuleHandler(ruleService *taxapp.RuleService) *TaxRuleHandler {
	return &TaxRuleHandler{ruleService: ruleService}
}

// CreateTaxRuleRequest represents a request to create a tax rule
type CreateTaxRuleRequest struct {
	Province   string  `json:"province" binding:"required,min=1,max=50"`
	Percentage float64 `json:"percentage" binding:"gte=0,lte=100"`
	Active     *bool   `json:"active"`
}

// UpdateTaxRuleRequest represents a request to update a tax rule. Omitted
// fields are left untouched.
type UpdateTaxRuleRequest struct {
	Percentage *float64 `json:"percentage" binding:"omitempty,gte=0,lte=100"`
	Active     *bool    `json:"active"`
}

// Create creates a new tax rule
func (h *TaxRuleHandler) Create(c *gin.Context) {
	var req CreateTaxRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	rule, err := h.ruleService.Create(c.Request.Context(), taxapp.CreateRuleRequest{
		Province:   req.Province,
		Percentage: decimal.NewFromFloat(req.Percentage),
		Active:     req.Active,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, rule)
}

// GetByID retrieves a tax rule
func (h *TaxRuleHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tax rule ID")
		return
	}

	rule, err := h.ruleService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rule)
}

// List returns all tax rules ordered by province
func (h *TaxRuleHandler) List(c *gin.Context) {
	rules, err := h.ruleService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rules)
}

// Update applies a partial update to a tax rule
func (h *TaxRuleHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tax rule ID")
		return
	}

	var req UpdateTaxRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := taxapp.UpdateRuleRequest{Active: req.Active}
	if req.Percentage != nil {
		d := decimal.NewFromFloat(*req.Percentage)
		appReq.Percentage = &d
	}

	rule, err := h.ruleService.Update(c.Request.Context(), id, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, rule)
}

// Delete removes a tax rule
func (h *TaxRuleHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tax rule ID")
		return
	}

	if err := h.ruleService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers tax rule routes
func (h *TaxRuleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rules := rg.Group("/taxes")
	{
		rules.GET("", h.List)
		rules.GET("/:id", h.GetByID)
		rules.POST("", middleware.RequireWriteAccess(), h.Create)
		rules.PUT("/:id", middleware.RequireWriteAccess(), h.Update)
		rules.DELETE("/:id", middleware.RequireDeleteAccess(), h.Delete)
	}
}
