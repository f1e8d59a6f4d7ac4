package billing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/billing"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/system"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type statusServiceMocks struct {
	invoiceRepo *MockInvoiceRepository
	historyRepo *MockStatusHistoryRepository
	clientRepo  *MockClientRepository
	branchRepo  *MockBranchRepository
	userRepo    *MockUserRepository
	configRepo  *MockConfigRepository
}

func newStatusService() (*InvoiceStatusService, *statusServiceMocks) {
	m := &statusServiceMocks{
		invoiceRepo: new(MockInvoiceRepository),
		historyRepo: new(MockStatusHistoryRepository),
		clientRepo:  new(MockClientRepository),
		branchRepo:  new(MockBranchRepository),
		userRepo:    new(MockUserRepository),
		configRepo:  new(MockConfigRepository),
	}
	svc := NewInvoiceStatusService(
		m.invoiceRepo, m.historyRepo, m.clientRepo, m.branchRepo, m.userRepo, m.configRepo,
		zap.NewNop(),
	)
	return svc, m
}

// allowPopulate stubs out the related-record lookups done when assembling a
// full invoice response
func (m *statusServiceMocks) allowPopulate() {
	m.clientRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound).Maybe()
	m.branchRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound).Maybe()
	m.userRepo.On("FindByID", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound).Maybe()
	m.historyRepo.On("FindRecentByInvoice", mock.Anything, mock.Anything, recentHistoryLimit).
		Return([]billing.StatusHistoryEntry{}, nil).Maybe()
}

func newTestInvoice(t *testing.T, status billing.InvoiceStatus, dueDate *time.Time) *billing.Invoice {
	t.Helper()
	invoice, err := billing.NewInvoice("INV-TEST-001", time.Now(), dueDate, uuid.New(), uuid.New(), uuid.New())
	require.NoError(t, err)
	require.NoError(t, invoice.ChangeStatus(status))
	return invoice
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func TestUpdateStatus_TransitionAppendsHistory(t *testing.T) {
	svc, m := newStatusService()
	m.allowPopulate()

	invoice := newTestInvoice(t, billing.StatusUnpaid, nil)
	actorID := uuid.New()

	m.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	m.invoiceRepo.On("UpdateStatus", mock.Anything, invoice.ID, billing.StatusPaid,
		mock.MatchedBy(func(e *billing.StatusHistoryEntry) bool {
			return e.InvoiceID == invoice.ID &&
				e.Status == billing.StatusPaid &&
				e.ChangedByID != nil && *e.ChangedByID == actorID &&
				e.Reason == "Payment received"
		})).Return(nil)

	resp, err := svc.UpdateStatus(context.Background(), invoice.ID, billing.StatusPaid, &actorID, "")
	require.NoError(t, err)
	assert.Equal(t, "PAID", resp.Status)
	m.invoiceRepo.AssertExpectations(t)
}

func TestUpdateStatus_SameStatusIsNoOp(t *testing.T) {
	svc, m := newStatusService()
	m.allowPopulate()

	invoice := newTestInvoice(t, billing.StatusPaid, nil)
	m.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)

	resp, err := svc.UpdateStatus(context.Background(), invoice.ID, billing.StatusPaid, nil, "")
	require.NoError(t, err)
	assert.Equal(t, "PAID", resp.Status)

	// No status write, no history entry
	m.invoiceRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateStatus_InvalidStatus(t *testing.T) {
	svc, _ := newStatusService()

	_, err := svc.UpdateStatus(context.Background(), uuid.New(), billing.InvoiceStatus("SHIPPED"), nil, "")
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATUS", domainErr.Code)
}

func TestUpdateStatus_InvoiceNotFound(t *testing.T) {
	svc, m := newStatusService()

	id := uuid.New()
	m.invoiceRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := svc.UpdateStatus(context.Background(), id, billing.StatusPaid, nil, "")
	require.Error(t, err)
	assert.Equal(t, "Invoice not found", err.Error())
}

func TestUpdateStatus_ExplicitReasonPreserved(t *testing.T) {
	svc, m := newStatusService()
	m.allowPopulate()

	invoice := newTestInvoice(t, billing.StatusUnpaid, nil)
	m.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	m.invoiceRepo.On("UpdateStatus", mock.Anything, invoice.ID, billing.StatusPaid,
		mock.MatchedBy(func(e *billing.StatusHistoryEntry) bool {
			return e.Reason == "Wire transfer 2024-0117"
		})).Return(nil)

	_, err := svc.UpdateStatus(context.Background(), invoice.ID, billing.StatusPaid, nil, "Wire transfer 2024-0117")
	require.NoError(t, err)
	m.invoiceRepo.AssertExpectations(t)
}

func TestMarkAsUnpaid_DefaultReason(t *testing.T) {
	svc, m := newStatusService()
	m.allowPopulate()

	invoice := newTestInvoice(t, billing.StatusPaid, nil)
	m.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	m.invoiceRepo.On("UpdateStatus", mock.Anything, invoice.ID, billing.StatusUnpaid,
		mock.MatchedBy(func(e *billing.StatusHistoryEntry) bool {
			return e.Reason == "Payment reversed or cancelled"
		})).Return(nil)

	_, err := svc.MarkAsUnpaid(context.Background(), invoice.ID, nil, "")
	require.NoError(t, err)
	m.invoiceRepo.AssertExpectations(t)
}

func TestGetDueSoonThreshold(t *testing.T) {
	tests := []struct {
		name     string
		entry    *system.ConfigEntry
		getErr   error
		expected int
	}{
		{
			name:     "missing config falls back to default",
			getErr:   shared.ErrNotFound,
			expected: 7,
		},
		{
			name:     "unparseable value falls back to default",
			entry:    &system.ConfigEntry{Key: system.ConfigKeyDueSoonThreshold, Value: "soon"},
			expected: 7,
		},
		{
			name:     "non-positive value falls back to default",
			entry:    &system.ConfigEntry{Key: system.ConfigKeyDueSoonThreshold, Value: "-3"},
			expected: 7,
		},
		{
			name:     "stored value wins",
			entry:    &system.ConfigEntry{Key: system.ConfigKeyDueSoonThreshold, Value: "14"},
			expected: 14,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newStatusService()
			if tt.entry != nil {
				m.configRepo.On("Get", mock.Anything, system.ConfigKeyDueSoonThreshold).Return(tt.entry, nil)
			} else {
				m.configRepo.On("Get", mock.Anything, system.ConfigKeyDueSoonThreshold).Return(nil, tt.getErr)
			}

			assert.Equal(t, tt.expected, svc.GetDueSoonThreshold(context.Background()))
		})
	}
}

func TestSetDueSoonThreshold(t *testing.T) {
	t.Run("rejects non-positive days", func(t *testing.T) {
		svc, _ := newStatusService()
		err := svc.SetDueSoonThreshold(context.Background(), 0)
		require.Error(t, err)

		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_INPUT", domainErr.Code)
	})

	t.Run("creates entry when absent", func(t *testing.T) {
		svc, m := newStatusService()
		m.configRepo.On("Get", mock.Anything, system.ConfigKeyDueSoonThreshold).Return(nil, shared.ErrNotFound)
		m.configRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(e *system.ConfigEntry) bool {
			return e.Key == system.ConfigKeyDueSoonThreshold && e.Value == "10"
		})).Return(nil)

		require.NoError(t, svc.SetDueSoonThreshold(context.Background(), 10))
		m.configRepo.AssertExpectations(t)
	})

	t.Run("updates existing entry", func(t *testing.T) {
		svc, m := newStatusService()
		existing := &system.ConfigEntry{Key: system.ConfigKeyDueSoonThreshold, Value: "7"}
		m.configRepo.On("Get", mock.Anything, system.ConfigKeyDueSoonThreshold).Return(existing, nil)
		m.configRepo.On("Upsert", mock.Anything, mock.MatchedBy(func(e *system.ConfigEntry) bool {
			return e.Value == "21"
		})).Return(nil)

		require.NoError(t, svc.SetDueSoonThreshold(context.Background(), 21))
		m.configRepo.AssertExpectations(t)
	})
}

func TestRunAutomatedStatusUpdate_Transitions(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		status     billing.InvoiceStatus
		dueDate    *time.Time
		wantStatus billing.InvoiceStatus
		wantChange bool
	}{
		{
			name:       "unpaid due within threshold becomes due soon",
			status:     billing.StatusUnpaid,
			dueDate:    timePtr(now.AddDate(0, 0, 5)),
			wantStatus: billing.StatusDueSoon,
			wantChange: true,
		},
		{
			name:       "unpaid past due becomes overdue",
			status:     billing.StatusUnpaid,
			dueDate:    timePtr(now.AddDate(0, 0, -1)),
			wantStatus: billing.StatusOverdue,
			wantChange: true,
		},
		{
			name:       "due soon past due becomes overdue",
			status:     billing.StatusDueSoon,
			dueDate:    timePtr(now.AddDate(0, 0, -1)),
			wantStatus: billing.StatusOverdue,
			wantChange: true,
		},
		{
			name:       "unpaid due beyond threshold is untouched",
			status:     billing.StatusUnpaid,
			dueDate:    timePtr(now.AddDate(0, 0, 10)),
			wantChange: false,
		},
		{
			name:       "due soon within window stays due soon",
			status:     billing.StatusDueSoon,
			dueDate:    timePtr(now.AddDate(0, 0, 3)),
			wantChange: false,
		},
		{
			name:       "unpaid due exactly at cutoff becomes due soon",
			status:     billing.StatusUnpaid,
			dueDate:    timePtr(now.AddDate(0, 0, 7)),
			wantStatus: billing.StatusDueSoon,
			wantChange: true,
		},
		{
			name:       "candidate without due date is skipped",
			status:     billing.StatusUnpaid,
			dueDate:    nil,
			wantChange: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newStatusService()
			svc.SetClock(func() time.Time { return now })

			invoice := newTestInvoice(t, tt.status, tt.dueDate)

			m.configRepo.On("Get", mock.Anything, system.ConfigKeyDueSoonThreshold).Return(nil, shared.ErrNotFound)
			m.invoiceRepo.On("FindSweepCandidates", mock.Anything,
				[]billing.InvoiceStatus{billing.StatusUnpaid, billing.StatusDueSoon}).
				Return([]billing.Invoice{*invoice}, nil)
			if tt.wantChange {
				m.invoiceRepo.On("UpdateStatus", mock.Anything, invoice.ID, tt.wantStatus,
					mock.MatchedBy(func(e *billing.StatusHistoryEntry) bool {
						return e.ChangedByID == nil && e.Status == tt.wantStatus
					})).Return(nil)
			}

			result, err := svc.RunAutomatedStatusUpdate(context.Background())
			require.NoError(t, err)
			assert.Equal(t, 1, result.Checked)
			if tt.wantChange {
				assert.Equal(t, 1, result.Updated)
			} else {
				assert.Equal(t, 0, result.Updated)
				m.invoiceRepo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
			}
			assert.Equal(t, 0, result.Failed)
		})
	}
}

func TestRunAutomatedStatusUpdate_Idempotent(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	svc, m := newStatusService()
	svc.SetClock(func() time.Time { return now })

	dueSoon := newTestInvoice(t, billing.StatusUnpaid, timePtr(now.AddDate(0, 0, 5)))
	overdue := newTestInvoice(t, billing.StatusUnpaid, timePtr(now.AddDate(0, 0, -2)))

	m.configRepo.On("Get", mock.Anything, system.ConfigKeyDueSoonThreshold).Return(nil, shared.ErrNotFound)
	m.invoiceRepo.On("FindSweepCandidates", mock.Anything, mock.Anything).
		Return([]billing.Invoice{*dueSoon, *overdue}, nil).Once()
	m.invoiceRepo.On("UpdateStatus", mock.Anything, dueSoon.ID, billing.StatusDueSoon, mock.Anything).Return(nil).Once()
	m.invoiceRepo.On("UpdateStatus", mock.Anything, overdue.ID, billing.StatusOverdue, mock.Anything).Return(nil).Once()

	result, err := svc.RunAutomatedStatusUpdate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Updated)

	// Second sweep over the advanced states writes nothing. The overdue
	// invoice is no longer a candidate at all.
	require.NoError(t, dueSoon.ChangeStatus(billing.StatusDueSoon))
	m.invoiceRepo.On("FindSweepCandidates", mock.Anything, mock.Anything).
		Return([]billing.Invoice{*dueSoon}, nil).Once()

	result, err = svc.RunAutomatedStatusUpdate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.Updated)
	m.invoiceRepo.AssertExpectations(t)
}

func TestRunAutomatedStatusUpdate_BestEffort(t *testing.T) {
	now := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)

	svc, m := newStatusService()
	svc.SetClock(func() time.Time { return now })

	failing := newTestInvoice(t, billing.StatusUnpaid, timePtr(now.AddDate(0, 0, -1)))
	healthy := newTestInvoice(t, billing.StatusUnpaid, timePtr(now.AddDate(0, 0, 2)))

	m.configRepo.On("Get", mock.Anything, system.ConfigKeyDueSoonThreshold).Return(nil, shared.ErrNotFound)
	m.invoiceRepo.On("FindSweepCandidates", mock.Anything, mock.Anything).
		Return([]billing.Invoice{*failing, *healthy}, nil)
	m.invoiceRepo.On("UpdateStatus", mock.Anything, failing.ID, billing.StatusOverdue, mock.Anything).
		Return(errors.New("connection reset"))
	m.invoiceRepo.On("UpdateStatus", mock.Anything, healthy.ID, billing.StatusDueSoon, mock.Anything).
		Return(nil)

	result, err := svc.RunAutomatedStatusUpdate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.Checked)
	assert.Equal(t, 1, result.Updated)
	assert.Equal(t, 1, result.Failed)
}

func TestRunAutomatedStatusUpdate_SingleFlight(t *testing.T) {
	svc, _ := newStatusService()

	// Simulate a sweep already holding the guard
	require.True(t, svc.sweepMu.TryLock())
	defer svc.sweepMu.Unlock()

	_, err := svc.RunAutomatedStatusUpdate(context.Background())
	require.ErrorIs(t, err, ErrSweepInProgress)
}

func TestGetStatusStats_ZeroFilled(t *testing.T) {
	svc, m := newStatusService()
	m.invoiceRepo.On("CountByStatus", mock.Anything).Return(map[billing.InvoiceStatus]int64{
		billing.StatusUnpaid: 3,
		billing.StatusPaid:   12,
	}, nil)

	stats, err := svc.GetStatusStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.Unpaid)
	assert.Equal(t, int64(12), stats.Paid)
	assert.Equal(t, int64(0), stats.DueSoon)
	assert.Equal(t, int64(0), stats.Overdue)
}

func TestGetUrgentInvoices(t *testing.T) {
	svc, m := newStatusService()

	overdue := newTestInvoice(t, billing.StatusOverdue, timePtr(time.Now().AddDate(0, 0, -3)))
	dueSoon := newTestInvoice(t, billing.StatusDueSoon, timePtr(time.Now().AddDate(0, 0, 2)))
	m.invoiceRepo.On("FindUrgent", mock.Anything).Return([]billing.Invoice{*overdue, *dueSoon}, nil)

	urgent, err := svc.GetUrgentInvoices(context.Background())
	require.NoError(t, err)
	require.Len(t, urgent, 2)
	assert.Equal(t, "OVERDUE", urgent[0].Status)
	assert.Equal(t, "DUE_SOON", urgent[1].Status)
}

func TestGetInvoiceStatusHistory(t *testing.T) {
	svc, m := newStatusService()

	invoice := newTestInvoice(t, billing.StatusPaid, nil)
	actorID := uuid.New()
	entries := []billing.StatusHistoryEntry{
		*billing.NewStatusHistoryEntry(invoice.ID, billing.StatusPaid, &actorID, ""),
		*billing.NewStatusHistoryEntry(invoice.ID, billing.StatusUnpaid, &actorID, "Invoice created"),
	}

	m.invoiceRepo.On("FindByID", mock.Anything, invoice.ID).Return(invoice, nil)
	m.historyRepo.On("FindByInvoice", mock.Anything, invoice.ID).Return(entries, nil)

	history, err := svc.GetInvoiceStatusHistory(context.Background(), invoice.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "PAID", history[0].Status)
	assert.Equal(t, "Payment received", history[0].Reason)
	assert.Equal(t, "Invoice created", history[1].Reason)
}

func TestGetInvoiceStatusHistory_NotFound(t *testing.T) {
	svc, m := newStatusService()

	id := uuid.New()
	m.invoiceRepo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	_, err := svc.GetInvoiceStatusHistory(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, "Invoice not found", err.Error())
}
