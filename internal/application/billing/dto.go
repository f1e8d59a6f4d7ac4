package billing

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/billing"
	"github.com/invoicing/backend/internal/domain/identity"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/shopspring/decimal"
)

// InvoiceItemInput is a line item in a create/update request
type InvoiceItemInput struct {
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
}

// CreateInvoiceRequest is the request to create an invoice
type CreateInvoiceRequest struct {
	ClientID  uuid.UUID
	BranchID  uuid.UUID
	TaxRuleID *uuid.UUID
	Date      *time.Time
	DueDate   *time.Time
	Items     []InvoiceItemInput
	Notes     string
}

// UpdateInvoiceRequest is the patch applied by Update. Nil fields are left
// untouched; a non-nil Items slice replaces the item set wholesale.
type UpdateInvoiceRequest struct {
	ClientID  *uuid.UUID
	BranchID  *uuid.UUID
	TaxRuleID *uuid.UUID
	DueDate   *time.Time
	Items     []InvoiceItemInput
	Notes     *string
}

// ListInvoicesFilter carries pagination and search options
type ListInvoicesFilter struct {
	Page      int
	PageSize  int
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
	OrderBy   string
	OrderDir  string
}

// InvoiceItemResponse is a line item in responses
type InvoiceItemResponse struct {
	ID          string          `json:"id"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Total       decimal.Decimal `json:"total"`
}

// ClientSummary is the client info attached to invoice responses
type ClientSummary struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Type    string `json:"type"`
	Contact string `json:"contact"`
}

// BranchSummary is the branch info attached to invoice responses
type BranchSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	City     string `json:"city"`
	Province string `json:"province"`
}

// UserSummary is the creator info attached to invoice responses
type UserSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// StatusHistoryResponse is one status history entry in responses
type StatusHistoryResponse struct {
	ID        string    `json:"id"`
	Status    string    `json:"status"`
	ChangedBy *string   `json:"changed_by,omitempty"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

// InvoiceResponse is the full invoice representation with related records
// eagerly attached
type InvoiceResponse struct {
	ID            string                  `json:"id"`
	InvoiceNumber string                  `json:"invoice_number"`
	Date          time.Time               `json:"date"`
	DueDate       *time.Time              `json:"due_date,omitempty"`
	Subtotal      decimal.Decimal         `json:"subtotal"`
	TaxAmount     decimal.Decimal         `json:"tax_amount"`
	TotalAmount   decimal.Decimal         `json:"total_amount"`
	Status        string                  `json:"status"`
	Notes         string                  `json:"notes,omitempty"`
	Client        *ClientSummary          `json:"client,omitempty"`
	Branch        *BranchSummary          `json:"branch,omitempty"`
	CreatedBy     *UserSummary            `json:"created_by,omitempty"`
	Items         []InvoiceItemResponse   `json:"items"`
	StatusHistory []StatusHistoryResponse `json:"status_history,omitempty"`
	CreatedAt     time.Time               `json:"created_at"`
	UpdatedAt     time.Time               `json:"updated_at"`
}

// InvoiceListItemResponse is the lighter list representation
type InvoiceListItemResponse struct {
	ID            string          `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	Date          time.Time       `json:"date"`
	DueDate       *time.Time      `json:"due_date,omitempty"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxAmount     decimal.Decimal `json:"tax_amount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Status        string          `json:"status"`
	ClientID      string          `json:"client_id"`
	BranchID      string          `json:"branch_id"`
	ItemCount     int             `json:"item_count"`
	CreatedAt     time.Time       `json:"created_at"`
}

// StatusStatsResponse is the per-status invoice count. All four keys are
// always present.
type StatusStatsResponse struct {
	Unpaid  int64 `json:"UNPAID"`
	Paid    int64 `json:"PAID"`
	DueSoon int64 `json:"DUE_SOON"`
	Overdue int64 `json:"OVERDUE"`
}

// SweepResult reports the outcome of an automated status update pass
type SweepResult struct {
	Checked     int       `json:"checked"`
	Updated     int       `json:"updated"`
	Failed      int       `json:"failed"`
	ProcessedAt time.Time `json:"processed_at"`
}

func toClientSummary(c *partner.Client) *ClientSummary {
	if c == nil {
		return nil
	}
	return &ClientSummary{
		ID:      c.ID.String(),
		Name:    c.Name,
		Type:    string(c.Type),
		Contact: c.Contact,
	}
}

func toBranchSummary(b *partner.Branch) *BranchSummary {
	if b == nil {
		return nil
	}
	return &BranchSummary{
		ID:       b.ID.String(),
		Name:     b.Name,
		City:     b.City,
		Province: b.Province,
	}
}

func toUserSummary(u *identity.User) *UserSummary {
	if u == nil {
		return nil
	}
	return &UserSummary{
		ID:    u.ID.String(),
		Name:  u.Name,
		Email: u.Email,
		Role:  string(u.Role),
	}
}

// ToStatusHistoryResponses converts history entries, preserving order
func ToStatusHistoryResponses(entries []billing.StatusHistoryEntry) []StatusHistoryResponse {
	out := make([]StatusHistoryResponse, len(entries))
	for i, e := range entries {
		out[i] = StatusHistoryResponse{
			ID:        e.ID.String(),
			Status:    string(e.Status),
			Reason:    e.Reason,
			CreatedAt: e.CreatedAt,
		}
		if e.ChangedByID != nil {
			s := e.ChangedByID.String()
			out[i].ChangedBy = &s
		}
	}
	return out
}

// ToInvoiceResponse builds the full invoice representation
func ToInvoiceResponse(inv *billing.Invoice, client *partner.Client, branch *partner.Branch, creator *identity.User, history []billing.StatusHistoryEntry) InvoiceResponse {
	items := make([]InvoiceItemResponse, len(inv.Items))
	for i, item := range inv.Items {
		items[i] = InvoiceItemResponse{
			ID:          item.ID.String(),
			Description: item.Description,
			Quantity:    item.Quantity,
			UnitPrice:   item.UnitPrice,
			Total:       item.Total,
		}
	}

	return InvoiceResponse{
		ID:            inv.ID.String(),
		InvoiceNumber: inv.InvoiceNumber,
		Date:          inv.Date,
		DueDate:       inv.DueDate,
		Subtotal:      inv.Subtotal,
		TaxAmount:     inv.TaxAmount,
		TotalAmount:   inv.TotalAmount,
		Status:        string(inv.Status),
		Notes:         inv.Notes,
		Client:        toClientSummary(client),
		Branch:        toBranchSummary(branch),
		CreatedBy:     toUserSummary(creator),
		Items:         items,
		StatusHistory: ToStatusHistoryResponses(history),
		CreatedAt:     inv.CreatedAt,
		UpdatedAt:     inv.UpdatedAt,
	}
}

// ToInvoiceListItemResponses converts invoices to list items
func ToInvoiceListItemResponses(invoices []billing.Invoice) []InvoiceListItemResponse {
	out := make([]InvoiceListItemResponse, len(invoices))
	for i := range invoices {
		inv := &invoices[i]
		out[i] = InvoiceListItemResponse{
			ID:            inv.ID.String(),
			InvoiceNumber: inv.InvoiceNumber,
			Date:          inv.Date,
			DueDate:       inv.DueDate,
			Subtotal:      inv.Subtotal,
			TaxAmount:     inv.TaxAmount,
			TotalAmount:   inv.TotalAmount,
			Status:        string(inv.Status),
			ClientID:      inv.ClientID.String(),
			BranchID:      inv.BranchID.String(),
			ItemCount:     inv.ItemCount(),
			CreatedAt:     inv.CreatedAt,
		}
	}
	return out
}
