package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	partnerapp "github.com/invoicing/backend/internal/application/partner"
	"github.com/invoicing/backend/internal/interfaces/http/middleware"
)

// BranchHandler handles branch API endpoints
type BranchHandler struct {
	BaseHandler
	branchService *partnerapp.BranchService
}

// NewBranchHandler creates a new BranchHandler
func NewBranchHandler(branchService *partnerapp.BranchService) *BranchHandler {
	return &BranchHandler{branchService: branchService}
}

// UpdateBranchRequest represents a request to update a branch. Empty fields
// are left untouched.
type UpdateBranchRequest struct {
	Name     string `json:"name" binding:"omitempty,min=1,max=200"`
	City     string `json:"city" binding:"omitempty,max=100"`
	Province string `json:"province" binding:"omitempty,min=1,max=50"`
}

// GetByID retrieves a branch
func (h *BranchHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	branch, err := h.branchService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, branch)
}

// List returns all branches across clients
func (h *BranchHandler) List(c *gin.Context) {
	branches, err := h.branchService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, branches)
}

// Update applies a partial update to a branch
func (h *BranchHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	var req UpdateBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	branch, err := h.branchService.Update(c.Request.Context(), id, partnerapp.UpdateBranchRequest{
		Name:     req.Name,
		City:     req.City,
		Province: req.Province,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, branch)
}

// Delete removes a branch unless invoices still reference it
func (h *BranchHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	if err := h.branchService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers branch routes
func (h *BranchHandler) RegisterRoutes(rg *gin.RouterGroup) {
	branches := rg.Group("/branches")
	{
		branches.GET("", h.List)
		branches.GET("/:id", h.GetByID)
		branches.PUT("/:id", middleware.RequireWriteAccess(), h.Update)
		branches.DELETE("/:id", middleware.RequireDeleteAccess(), h.Delete)
	}
}
