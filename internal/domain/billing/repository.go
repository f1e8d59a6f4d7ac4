package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/shared"
)

// InvoiceRepository defines the interface for invoice persistence
type InvoiceRepository interface {
	// FindByID finds an invoice by ID with its items preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*Invoice, error)

	// FindByNumber finds an invoice by invoice number
	FindByNumber(ctx context.Context, invoiceNumber string) (*Invoice, error)

	// FindAll finds invoices with filtering and pagination
	FindAll(ctx context.Context, filter shared.Filter) ([]Invoice, error)

	// FindByClient finds invoices for a client
	FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	// FindByBranch finds invoices for a branch
	FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]Invoice, error)

	// FindByStatus finds invoices by status, newest created first
	FindByStatus(ctx context.Context, status InvoiceStatus, filter shared.Filter) ([]Invoice, error)

	// FindSweepCandidates finds invoices whose status is in the given set and
	// which have a non-null due date
	FindSweepCandidates(ctx context.Context, statuses []InvoiceStatus) ([]Invoice, error)

	// FindUrgent finds DUE_SOON and OVERDUE invoices, OVERDUE first, then by
	// ascending due date
	FindUrgent(ctx context.Context) ([]Invoice, error)

	// Create persists a new invoice, its items and the seed history entry in
	// one transaction
	Create(ctx context.Context, invoice *Invoice, seed *StatusHistoryEntry) error

	// Update persists invoice fields and replaces its item set wholesale in
	// one transaction
	Update(ctx context.Context, invoice *Invoice) error

	// UpdateStatus sets the invoice status and appends the history entry in
	// one transaction
	UpdateStatus(ctx context.Context, invoiceID uuid.UUID, status InvoiceStatus, entry *StatusHistoryEntry) error

	// Delete removes history entries, items and the invoice in dependency
	// order within one transaction
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts invoices matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)

	// CountByStatus counts invoices per status value
	CountByStatus(ctx context.Context) (map[InvoiceStatus]int64, error)

	// CountByClient counts invoices for a client
	CountByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) (int64, error)

	// CountByBranch counts invoices for a branch
	CountByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (int64, error)
}

// StatusHistoryRepository defines the interface for status history persistence
type StatusHistoryRepository interface {
	// FindByInvoice returns the full history of an invoice, newest first
	FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]StatusHistoryEntry, error)

	// FindRecentByInvoice returns up to limit entries, newest first
	FindRecentByInvoice(ctx context.Context, invoiceID uuid.UUID, limit int) ([]StatusHistoryEntry, error)
}
