package billing

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/billing"
	"github.com/invoicing/backend/internal/domain/identity"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/system"
	"go.uber.org/zap"
)

// ErrSweepInProgress is returned when an automated status update is requested
// while a previous run has not finished yet.
var ErrSweepInProgress = shared.NewDomainError("SWEEP_IN_PROGRESS", "Automated status update already in progress")

// InvoiceStatusService owns all invoice status transitions and the automated
// due date sweep
type InvoiceStatusService struct {
	invoiceRepo billing.InvoiceRepository
	historyRepo billing.StatusHistoryRepository
	clientRepo  partner.ClientRepository
	branchRepo  partner.BranchRepository
	userRepo    identity.UserRepository
	configRepo  system.ConfigRepository
	logger      *zap.Logger
	now         func() time.Time

	// guards RunAutomatedStatusUpdate against overlapping runs
	sweepMu sync.Mutex
}

// NewInvoiceStatusService creates a new InvoiceStatusService
func NewInvoiceStatusService(
	invoiceRepo billing.InvoiceRepository,
	historyRepo billing.StatusHistoryRepository,
	clientRepo partner.ClientRepository,
	branchRepo partner.BranchRepository,
	userRepo identity.UserRepository,
	configRepo system.ConfigRepository,
	logger *zap.Logger,
) *InvoiceStatusService {
	return &InvoiceStatusService{
		invoiceRepo: invoiceRepo,
		historyRepo: historyRepo,
		clientRepo:  clientRepo,
		branchRepo:  branchRepo,
		userRepo:    userRepo,
		configRepo:  configRepo,
		logger:      logger,
		now:         time.Now,
	}
}

// SetClock overrides the time source, used by tests
func (s *InvoiceStatusService) SetClock(now func() time.Time) {
	s.now = now
}

// UpdateStatus sets an invoice status and appends exactly one history entry
// in the same transaction. Setting the status an invoice already has is a
// no-op: nothing is written and no history entry is created. An empty reason
// falls back to the default reason for the target status.
func (s *InvoiceStatusService) UpdateStatus(ctx context.Context, invoiceID uuid.UUID, status billing.InvoiceStatus, actorID *uuid.UUID, reason string) (*InvoiceResponse, error) {
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown invoice status: %s", status))
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, invoiceID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
		}
		return nil, err
	}

	if invoice.Status == status {
		return s.populate(ctx, invoice), nil
	}

	entry := billing.NewStatusHistoryEntry(invoiceID, status, actorID, reason)
	if err := s.invoiceRepo.UpdateStatus(ctx, invoiceID, status, entry); err != nil {
		return nil, err
	}
	if err := invoice.ChangeStatus(status); err != nil {
		return nil, err
	}

	return s.populate(ctx, invoice), nil
}

// MarkAsPaid marks an invoice as paid
func (s *InvoiceStatusService) MarkAsPaid(ctx context.Context, invoiceID uuid.UUID, actorID *uuid.UUID, reason string) (*InvoiceResponse, error) {
	return s.UpdateStatus(ctx, invoiceID, billing.StatusPaid, actorID, reason)
}

// MarkAsUnpaid resets an invoice to unpaid, recording a reversal reason when
// none is given
func (s *InvoiceStatusService) MarkAsUnpaid(ctx context.Context, invoiceID uuid.UUID, actorID *uuid.UUID, reason string) (*InvoiceResponse, error) {
	if reason == "" {
		reason = "Payment reversed or cancelled"
	}
	return s.UpdateStatus(ctx, invoiceID, billing.StatusUnpaid, actorID, reason)
}

// GetDueSoonThreshold returns the configured DUE_SOON window in days. A
// missing, unparseable or non-positive stored value falls back to the
// default.
func (s *InvoiceStatusService) GetDueSoonThreshold(ctx context.Context) int {
	entry, err := s.configRepo.Get(ctx, system.ConfigKeyDueSoonThreshold)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("failed to load due soon threshold, using default",
				zap.Int("default_days", system.DefaultDueSoonThresholdDays),
				zap.Error(err))
		}
		return system.DefaultDueSoonThresholdDays
	}

	days, err := strconv.Atoi(entry.Value)
	if err != nil || days <= 0 {
		return system.DefaultDueSoonThresholdDays
	}
	return days
}

// SetDueSoonThreshold stores the DUE_SOON window in days
func (s *InvoiceStatusService) SetDueSoonThreshold(ctx context.Context, days int) error {
	if days <= 0 {
		return shared.NewDomainError("INVALID_INPUT", "Threshold must be a positive number of days")
	}

	entry, err := s.configRepo.Get(ctx, system.ConfigKeyDueSoonThreshold)
	if err != nil {
		if !errors.Is(err, shared.ErrNotFound) {
			return err
		}
		entry, err = system.NewConfigEntry(
			system.ConfigKeyDueSoonThreshold,
			strconv.Itoa(days),
			"Days before the due date at which unpaid invoices are marked as due soon",
		)
		if err != nil {
			return err
		}
	} else {
		entry.SetValue(strconv.Itoa(days))
	}

	return s.configRepo.Upsert(ctx, entry)
}

// RunAutomatedStatusUpdate sweeps unpaid and due-soon invoices and advances
// their status based on the due date. Invoices past their due date become
// OVERDUE; unpaid invoices whose due date falls within the configured
// threshold become DUE_SOON. Paid invoices and invoices without a due date
// are never touched. Failures on individual invoices are logged and do not
// abort the sweep. Only one sweep runs at a time.
func (s *InvoiceStatusService) RunAutomatedStatusUpdate(ctx context.Context) (*SweepResult, error) {
	if !s.sweepMu.TryLock() {
		return nil, ErrSweepInProgress
	}
	defer s.sweepMu.Unlock()

	now := s.now()
	threshold := s.GetDueSoonThreshold(ctx)
	cutoff := now.AddDate(0, 0, threshold)

	candidates, err := s.invoiceRepo.FindSweepCandidates(ctx, []billing.InvoiceStatus{billing.StatusUnpaid, billing.StatusDueSoon})
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Checked: len(candidates), ProcessedAt: now}
	for i := range candidates {
		invoice := &candidates[i]
		target, reason, ok := sweepTransition(invoice, now, cutoff)
		if !ok {
			continue
		}

		entry := billing.NewStatusHistoryEntry(invoice.ID, target, nil, reason)
		if err := s.invoiceRepo.UpdateStatus(ctx, invoice.ID, target, entry); err != nil {
			result.Failed++
			s.logger.Warn("failed to update invoice status during sweep",
				zap.String("invoice_id", invoice.ID.String()),
				zap.String("invoice_number", invoice.InvoiceNumber),
				zap.String("target_status", target.String()),
				zap.Error(err))
			continue
		}
		result.Updated++
	}

	s.logger.Info("automated invoice status update finished",
		zap.Int("checked", result.Checked),
		zap.Int("updated", result.Updated),
		zap.Int("failed", result.Failed),
		zap.Int("threshold_days", threshold))

	return result, nil
}

// sweepTransition decides the target status for one sweep candidate. The
// overdue check wins over the due-soon check.
func sweepTransition(invoice *billing.Invoice, now, cutoff time.Time) (billing.InvoiceStatus, string, bool) {
	if invoice.DueDate == nil {
		return "", "", false
	}
	due := *invoice.DueDate

	if due.Before(now) && invoice.Status != billing.StatusOverdue {
		reason := fmt.Sprintf("Automatically marked as overdue - due date was %s", due.Format("2006-01-02"))
		return billing.StatusOverdue, reason, true
	}
	if invoice.Status == billing.StatusUnpaid && !due.Before(now) && !due.After(cutoff) {
		reason := fmt.Sprintf("Automatically marked as due soon - due date is %s", due.Format("2006-01-02"))
		return billing.StatusDueSoon, reason, true
	}
	return "", "", false
}

// GetStatusStats returns the invoice count per status. Every status is
// present in the result, zero when no invoices carry it.
func (s *InvoiceStatusService) GetStatusStats(ctx context.Context) (*StatusStatsResponse, error) {
	counts, err := s.invoiceRepo.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	return &StatusStatsResponse{
		Unpaid:  counts[billing.StatusUnpaid],
		Paid:    counts[billing.StatusPaid],
		DueSoon: counts[billing.StatusDueSoon],
		Overdue: counts[billing.StatusOverdue],
	}, nil
}

// GetUrgentInvoices returns DUE_SOON and OVERDUE invoices, overdue first,
// then by ascending due date
func (s *InvoiceStatusService) GetUrgentInvoices(ctx context.Context) ([]InvoiceListItemResponse, error) {
	invoices, err := s.invoiceRepo.FindUrgent(ctx)
	if err != nil {
		return nil, err
	}
	return ToInvoiceListItemResponses(invoices), nil
}

// GetInvoicesByStatus returns the invoices carrying a status, newest first
func (s *InvoiceStatusService) GetInvoicesByStatus(ctx context.Context, status billing.InvoiceStatus, filter ListInvoicesFilter) (*shared.Paginated[InvoiceListItemResponse], error) {
	if !status.IsValid() {
		return nil, shared.NewDomainError("INVALID_STATUS", fmt.Sprintf("Unknown invoice status: %s", status))
	}

	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	f.Filters["status"] = status.String()

	invoices, err := s.invoiceRepo.FindByStatus(ctx, status, f)
	if err != nil {
		return nil, err
	}
	total, err := s.invoiceRepo.Count(ctx, f)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToInvoiceListItemResponses(invoices), total, f.Page, f.PageSize)
	return &page, nil
}

// GetInvoiceStatusHistory returns the full status history of an invoice,
// newest first
func (s *InvoiceStatusService) GetInvoiceStatusHistory(ctx context.Context, invoiceID uuid.UUID) ([]StatusHistoryResponse, error) {
	if _, err := s.invoiceRepo.FindByID(ctx, invoiceID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
		}
		return nil, err
	}

	entries, err := s.historyRepo.FindByInvoice(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	return ToStatusHistoryResponses(entries), nil
}

// populate assembles the full invoice response. Related records that cannot
// be loaded are left nil rather than failing the whole request.
func (s *InvoiceStatusService) populate(ctx context.Context, invoice *billing.Invoice) *InvoiceResponse {
	client, _ := s.clientRepo.FindByID(ctx, invoice.ClientID)
	branch, _ := s.branchRepo.FindByID(ctx, invoice.BranchID)
	creator, _ := s.userRepo.FindByID(ctx, invoice.CreatedByID)
	history, _ := s.historyRepo.FindRecentByInvoice(ctx, invoice.ID, recentHistoryLimit)

	response := ToInvoiceResponse(invoice, client, branch, creator, history)
	return &response
}
