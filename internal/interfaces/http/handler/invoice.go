package handler

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	billingapp "github.com/invoicing/backend/internal/application/billing"
	"github.com/invoicing/backend/internal/domain/billing"
	"github.com/invoicing/backend/internal/interfaces/http/dto"
	"github.com/invoicing/backend/internal/interfaces/http/middleware"
	"github.com/shopspring/decimal"
)

// InvoiceHandler handles invoice API endpoints
type InvoiceHandler struct {
	BaseHandler
	invoiceService *billingapp.InvoiceService
	statusService  *billingapp.InvoiceStatusService
}

// NewInvoiceHandler creates a new InvoiceHandler
func NewInvoiceHandler(invoiceService *billingapp.InvoiceService, statusService *billingapp.InvoiceStatusService) *InvoiceHandler {
	return &InvoiceHandler{
		invoiceService: invoiceService,
		statusService:  statusService,
	}
}

// InvoiceItemRequest represents one line item in an invoice request
type InvoiceItemRequest struct {
	Description string  `json:"description" binding:"required,min=1,max=500"`
	Quantity    float64 `json:"quantity" binding:"required,gt=0"`
	UnitPrice   float64 `json:"unit_price" binding:"gte=0"`
}

// CreateInvoiceRequest represents a request to create a new invoice
type CreateInvoiceRequest struct {
	ClientID  string               `json:"client_id" binding:"required,uuid"`
	BranchID  string               `json:"branch_id" binding:"required,uuid"`
	TaxRuleID *string              `json:"tax_rule_id" binding:"omitempty,uuid"`
	Date      *time.Time           `json:"date"`
	DueDate   *time.Time           `json:"due_date"`
	Items     []InvoiceItemRequest `json:"items" binding:"required,min=1,dive"`
	Notes     string               `json:"notes" binding:"max=2000"`
}

// UpdateInvoiceRequest represents a request to update an invoice. Omitted
// fields are left untouched; a non-nil items array replaces all line items.
type UpdateInvoiceRequest struct {
	ClientID  *string              `json:"client_id" binding:"omitempty,uuid"`
	BranchID  *string              `json:"branch_id" binding:"omitempty,uuid"`
	TaxRuleID *string              `json:"tax_rule_id" binding:"omitempty,uuid"`
	DueDate   *time.Time           `json:"due_date"`
	Items     []InvoiceItemRequest `json:"items" binding:"omitempty,min=1,dive"`
	Notes     *string              `json:"notes" binding:"omitempty,max=2000"`
}

// UpdateInvoiceStatusRequest represents a request to change an invoice status
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason" binding:"max=500"`
}

// StatusChangeReasonRequest carries the optional reason for mark-paid and
// mark-unpaid operations
type StatusChangeReasonRequest struct {
	Reason string `json:"reason" binding:"max=500"`
}

// SetDueSoonThresholdRequest represents a request to change the due-soon window
type SetDueSoonThresholdRequest struct {
	Days int `json:"days" binding:"required,min=1,max=365"`
}

type listInvoicesQuery struct {
	dto.ListRequest
	StartDate *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate   *time.Time `form:"end_date" time_format:"2006-01-02"`
}

func (q *listInvoicesQuery) toFilter() billingapp.ListInvoicesFilter {
	defaults := dto.DefaultListRequest()
	if q.Page == 0 {
		q.Page = defaults.Page
	}
	if q.PageSize == 0 {
		q.PageSize = defaults.PageSize
	}
	return billingapp.ListInvoicesFilter{
		Page:      q.Page,
		PageSize:  q.PageSize,
		Search:    q.Search,
		StartDate: q.StartDate,
		EndDate:   q.EndDate,
		OrderBy:   q.OrderBy,
		OrderDir:  q.OrderDir,
	}
}

func toItemInputs(items []InvoiceItemRequest) []billingapp.InvoiceItemInput {
	out := make([]billingapp.InvoiceItemInput, len(items))
	for i, item := range items {
		out[i] = billingapp.InvoiceItemInput{
			Description: item.Description,
			Quantity:    decimal.NewFromFloat(item.Quantity),
			UnitPrice:   decimal.NewFromFloat(item.UnitPrice),
		}
	}
	return out
}

func parseOptionalUUID(s *string) *uuid.UUID {
	if s == nil {
		return nil
	}
	id, err := uuid.Parse(*s)
	if err != nil {
		return nil
	}
	return &id
}

// Create creates a new invoice with its line items
func (h *InvoiceHandler) Create(c *gin.Context) {
	var req CreateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	clientID, _ := uuid.Parse(req.ClientID)
	branchID, _ := uuid.Parse(req.BranchID)

	invoice, err := h.invoiceService.Create(c.Request.Context(), billingapp.CreateInvoiceRequest{
		ClientID:  clientID,
		BranchID:  branchID,
		TaxRuleID: parseOptionalUUID(req.TaxRuleID),
		Date:      req.Date,
		DueDate:   req.DueDate,
		Items:     toItemInputs(req.Items),
		Notes:     req.Notes,
	}, actorID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, invoice)
}

// GetByID retrieves an invoice with items, related records and status history
func (h *InvoiceHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	invoice, err := h.invoiceService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Update applies a partial update to an invoice
func (h *InvoiceHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req UpdateInvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	appReq := billingapp.UpdateInvoiceRequest{
		ClientID:  parseOptionalUUID(req.ClientID),
		BranchID:  parseOptionalUUID(req.BranchID),
		TaxRuleID: parseOptionalUUID(req.TaxRuleID),
		DueDate:   req.DueDate,
		Notes:     req.Notes,
	}
	if req.Items != nil {
		appReq.Items = toItemInputs(req.Items)
	}

	invoice, err := h.invoiceService.Update(c.Request.Context(), id, appReq)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// Delete removes an invoice along with its items and status history
func (h *InvoiceHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	if err := h.invoiceService.Remove(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// List returns a paginated invoice list with optional search and date range
func (h *InvoiceHandler) List(c *gin.Context) {
	var query listInvoicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.invoiceService.List(c.Request.Context(), query.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListByClient returns the paginated invoices of one client
func (h *InvoiceHandler) ListByClient(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	var query listInvoicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.invoiceService.ListByClient(c.Request.Context(), clientID, query.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListByBranch returns the paginated invoices of one branch
func (h *InvoiceHandler) ListByBranch(c *gin.Context) {
	branchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid branch ID")
		return
	}

	var query listInvoicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.invoiceService.ListByBranch(c.Request.Context(), branchID, query.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ListByStatus returns the paginated invoices currently in the given status
func (h *InvoiceHandler) ListByStatus(c *gin.Context) {
	status := billing.InvoiceStatus(strings.ToUpper(c.Param("status")))
	if !status.IsValid() {
		h.BadRequest(c, "Invalid invoice status")
		return
	}

	var query listInvoicesQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.statusService.GetInvoicesByStatus(c.Request.Context(), status, query.toFilter())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// UpdateStatus changes an invoice status and records the transition
func (h *InvoiceHandler) UpdateStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req UpdateInvoiceStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	status := billing.InvoiceStatus(strings.ToUpper(req.Status))
	if !status.IsValid() {
		h.BadRequest(c, "Invalid invoice status")
		return
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	invoice, err := h.statusService.UpdateStatus(c.Request.Context(), id, status, &actorID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// MarkAsPaid transitions an invoice to the paid status
func (h *InvoiceHandler) MarkAsPaid(c *gin.Context) {
	h.markStatus(c, h.statusService.MarkAsPaid)
}

// MarkAsUnpaid resets an invoice to the unpaid status
func (h *InvoiceHandler) MarkAsUnpaid(c *gin.Context) {
	h.markStatus(c, h.statusService.MarkAsUnpaid)
}

func (h *InvoiceHandler) markStatus(c *gin.Context, op func(ctx context.Context, invoiceID uuid.UUID, actorID *uuid.UUID, reason string) (*billingapp.InvoiceResponse, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	var req StatusChangeReasonRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.BadRequest(c, err.Error())
			return
		}
	}

	actorID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	invoice, err := op(c.Request.Context(), id, &actorID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoice)
}

// GetStatusHistory returns the status transitions of an invoice, newest first
func (h *InvoiceHandler) GetStatusHistory(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid invoice ID")
		return
	}

	history, err := h.statusService.GetInvoiceStatusHistory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, history)
}

// GetStats returns invoice counts grouped by status
func (h *InvoiceHandler) GetStats(c *gin.Context) {
	stats, err := h.statusService.GetStatusStats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, stats)
}

// GetUrgent returns overdue and due-soon invoices ordered by urgency
func (h *InvoiceHandler) GetUrgent(c *gin.Context) {
	invoices, err := h.statusService.GetUrgentInvoices(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, invoices)
}

// RunStatusUpdate triggers a synchronous due-date sweep over open invoices
func (h *InvoiceHandler) RunStatusUpdate(c *gin.Context) {
	result, err := h.statusService.RunAutomatedStatusUpdate(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetDueSoonThreshold returns the configured due-soon window in days
func (h *InvoiceHandler) GetDueSoonThreshold(c *gin.Context) {
	days := h.statusService.GetDueSoonThreshold(c.Request.Context())
	h.Success(c, gin.H{"days": days})
}

// SetDueSoonThreshold updates the due-soon window
func (h *InvoiceHandler) SetDueSoonThreshold(c *gin.Context) {
	var req SetDueSoonThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	if err := h.statusService.SetDueSoonThreshold(c.Request.Context(), req.Days); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"days": req.Days})
}

// RegisterRoutes registers invoice routes
func (h *InvoiceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	invoices := rg.Group("/invoices")
	{
		invoices.GET("", h.List)
		invoices.POST("", middleware.RequireWriteAccess(), h.Create)
		invoices.GET("/client/:id", h.ListByClient)
		invoices.GET("/branch/:id", h.ListByBranch)
		invoices.GET("/status/stats", h.GetStats)
		invoices.GET("/status/urgent", h.GetUrgent)
		invoices.GET("/status/:status", h.ListByStatus)
		invoices.POST("/status/update-all", middleware.RequireWriteAccess(), h.RunStatusUpdate)
		invoices.GET("/config/due-soon-threshold", h.GetDueSoonThreshold)
		invoices.PUT("/config/due-soon-threshold", middleware.RequireAdmin(), h.SetDueSoonThreshold)
		invoices.GET("/:id", h.GetByID)
		invoices.PUT("/:id", middleware.RequireWriteAccess(), h.Update)
		invoices.DELETE("/:id", middleware.RequireDeleteAccess(), h.Delete)
		invoices.GET("/:id/status-history", h.GetStatusHistory)
		invoices.PUT("/:id/status", middleware.RequireWriteAccess(), h.UpdateStatus)
		invoices.PUT("/:id/mark-paid", middleware.RequireWriteAccess(), h.MarkAsPaid)
		invoices.PUT("/:id/mark-unpaid", middleware.RequireWriteAccess(), h.MarkAsUnpaid)
	}
}
