package billing

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// InvoiceStatus represents the payment status of an invoice
type InvoiceStatus string

const (
	StatusUnpaid  InvoiceStatus = "UNPAID"
	StatusPaid    InvoiceStatus = "PAID"
	StatusDueSoon InvoiceStatus = "DUE_SOON"
	StatusOverdue InvoiceStatus = "OVERDUE"
)

// IsValid checks if the status is a valid InvoiceStatus
func (s InvoiceStatus) IsValid() bool {
	switch s {
	case StatusUnpaid, StatusPaid, StatusDueSoon, StatusOverdue:
		return true
	}
	return false
}

// String returns the string representation of InvoiceStatus
func (s InvoiceStatus) String() string {
	return string(s)
}

// DefaultChangeReason returns the reason recorded in status history when the
// caller does not supply one.
func (s InvoiceStatus) DefaultChangeReason() string {
	switch s {
	case StatusPaid:
		return "Payment received"
	case StatusUnpaid:
		return "Status reset to unpaid"
	case StatusDueSoon:
		return "Automatically marked as due soon based on due date"
	case StatusOverdue:
		return "Automatically marked as overdue - past due date"
	}
	return "Status updated"
}

// AllStatuses returns every valid invoice status
func AllStatuses() []InvoiceStatus {
	return []InvoiceStatus{StatusUnpaid, StatusPaid, StatusDueSoon, StatusOverdue}
}

// InvoiceItem represents a line item on an invoice
type InvoiceItem struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	Description string
	Quantity    decimal.Decimal
	UnitPrice   decimal.Decimal
	Total       decimal.Decimal // Quantity * UnitPrice
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewInvoiceItem creates a new invoice line item
func NewInvoiceItem(invoiceID uuid.UUID, description string, quantity, unitPrice decimal.Decimal) (*InvoiceItem, error) {
	if description == "" {
		return nil, shared.NewDomainError("INVALID_DESCRIPTION", "Item description cannot be empty")
	}
	if quantity.LessThanOrEqual(decimal.Zero) {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be positive")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PRICE", "Unit price cannot be negative")
	}

	now := time.Now()
	return &InvoiceItem{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		Description: description,
		Quantity:    quantity,
		UnitPrice:   unitPrice,
		Total:       quantity.Mul(unitPrice),
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Totals holds the computed monetary amounts of an invoice
type Totals struct {
	Subtotal    decimal.Decimal
	TaxAmount   decimal.Decimal
	TotalAmount decimal.Decimal
}

// LineInput is a (quantity, unit price) pair used for totals computation
type LineInput struct {
	Quantity  decimal.Decimal
	UnitPrice decimal.Decimal
}

// CalculateTotals computes subtotal, tax and total for a set of line inputs and
// a tax percentage. Subtotal = sum of quantity*unitPrice, tax = subtotal*pct/100,
// total = subtotal + tax.
func CalculateTotals(lines []LineInput, percentage decimal.Decimal) Totals {
	subtotal := decimal.Zero
	for _, l := range lines {
		subtotal = subtotal.Add(l.Quantity.Mul(l.UnitPrice))
	}
	taxAmount := subtotal.Mul(percentage).Div(decimal.NewFromInt(100))
	return Totals{
		Subtotal:    subtotal,
		TaxAmount:   taxAmount,
		TotalAmount: subtotal.Add(taxAmount),
	}
}

// Invoice represents an invoice aggregate root.
// Status is owned by the status engine; item and total mutations go through the
// lifecycle service.
type Invoice struct {
	shared.BaseAggregateRoot
	InvoiceNumber string
	Date          time.Time
	DueDate       *time.Time
	Subtotal      decimal.Decimal
	TaxAmount     decimal.Decimal
	TotalAmount   decimal.Decimal
	Status        InvoiceStatus
	Notes         string
	ClientID      uuid.UUID
	BranchID      uuid.UUID
	CreatedByID   uuid.UUID
	Items         []InvoiceItem
}

// NewInvoice creates a new invoice in UNPAID status
func NewInvoice(invoiceNumber string, date time.Time, dueDate *time.Time, clientID, branchID, createdByID uuid.UUID) (*Invoice, error) {
	if invoiceNumber == "" {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot be empty")
	}
	if len(invoiceNumber) > 50 {
		return nil, shared.NewDomainError("INVALID_INVOICE_NUMBER", "Invoice number cannot exceed 50 characters")
	}
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	if branchID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_BRANCH", "Branch ID cannot be empty")
	}

	return &Invoice{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		InvoiceNumber:     invoiceNumber,
		Date:              date,
		DueDate:           dueDate,
		Subtotal:          decimal.Zero,
		TaxAmount:         decimal.Zero,
		TotalAmount:       decimal.Zero,
		Status:            StatusUnpaid,
		ClientID:          clientID,
		BranchID:          branchID,
		CreatedByID:       createdByID,
		Items:             make([]InvoiceItem, 0),
	}, nil
}

// SetItems replaces the entire item set and recomputes the amounts using the
// given tax percentage. Item replacement is wholesale, not incremental.
func (inv *Invoice) SetItems(lines []LineInput, descriptions []string, taxPercentage decimal.Decimal) error {
	if len(lines) != len(descriptions) {
		return shared.NewDomainError("INVALID_ITEMS", "Item lines and descriptions must match")
	}

	items := make([]InvoiceItem, 0, len(lines))
	for i, line := range lines {
		item, err := NewInvoiceItem(inv.ID, descriptions[i], line.Quantity, line.UnitPrice)
		if err != nil {
			return err
		}
		items = append(items, *item)
	}

	inv.Items = items
	inv.ApplyTotals(CalculateTotals(lines, taxPercentage))
	return nil
}

// ApplyTotals sets the monetary fields from a computed Totals
func (inv *Invoice) ApplyTotals(t Totals) {
	inv.Subtotal = t.Subtotal
	inv.TaxAmount = t.TaxAmount
	inv.TotalAmount = t.TotalAmount
	inv.UpdatedAt = time.Now()
}

// ChangeStatus sets the invoice status. The caller is responsible for the
// accompanying history entry; equal-status writes must be filtered out before
// this is called.
func (inv *Invoice) ChangeStatus(status InvoiceStatus) error {
	if !status.IsValid() {
		return shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown invoice status: %s", status))
	}
	inv.Status = status
	inv.UpdatedAt = time.Now()
	return nil
}

// SetNotes sets the free-text notes
func (inv *Invoice) SetNotes(notes string) {
	inv.Notes = notes
	inv.UpdatedAt = time.Now()
}

// LineInputs returns the (quantity, unit price) pairs of the current items
func (inv *Invoice) LineInputs() []LineInput {
	lines := make([]LineInput, len(inv.Items))
	for i, item := range inv.Items {
		lines[i] = LineInput{Quantity: item.Quantity, UnitPrice: item.UnitPrice}
	}
	return lines
}

// ItemCount returns the number of line items
func (inv *Invoice) ItemCount() int {
	return len(inv.Items)
}

// IsPaid returns true if the invoice is paid
func (inv *Invoice) IsPaid() bool {
	return inv.Status == StatusPaid
}

// IsUrgent returns true if the invoice is due soon or overdue
func (inv *Invoice) IsUrgent() bool {
	return inv.Status == StatusDueSoon || inv.Status == StatusOverdue
}
