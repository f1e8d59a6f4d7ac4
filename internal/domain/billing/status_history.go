package billing

import (
	"time"

	"github.com/google/uuid"
)

// StatusHistoryEntry is an append-only record of a single invoice status
// change. A nil ChangedByID marks a system-initiated change (the automated
// sweep). Entries are never mutated or deleted once written, except by
// cascading invoice removal.
type StatusHistoryEntry struct {
	ID          uuid.UUID
	InvoiceID   uuid.UUID
	Status      InvoiceStatus
	ChangedByID *uuid.UUID
	Reason      string
	CreatedAt   time.Time
}

// NewStatusHistoryEntry creates a history entry for a status change.
// An empty reason is replaced by the status's default change reason.
func NewStatusHistoryEntry(invoiceID uuid.UUID, status InvoiceStatus, changedBy *uuid.UUID, reason string) *StatusHistoryEntry {
	if reason == "" {
		reason = status.DefaultChangeReason()
	}
	return &StatusHistoryEntry{
		ID:          uuid.New(),
		InvoiceID:   invoiceID,
		Status:      status,
		ChangedByID: changedBy,
		Reason:      reason,
		CreatedAt:   time.Now(),
	}
}

// IsSystemInitiated returns true when the change was made by the automated
// sweep rather than a user.
func (e *StatusHistoryEntry) IsSystemInitiated() bool {
	return e.ChangedByID == nil
}
