package billing

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/billing"
	"github.com/invoicing/backend/internal/domain/identity"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/system"
	"github.com/invoicing/backend/internal/domain/tax"
	"github.com/stretchr/testify/mock"
)

// MockInvoiceRepository is a mock implementation of billing.InvoiceRepository
type MockInvoiceRepository struct {
	mock.Mock
}

func (m *MockInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	args := m.Called(ctx, invoiceNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, clientID, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, branchID, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindByStatus(ctx context.Context, status billing.InvoiceStatus, filter shared.Filter) ([]billing.Invoice, error) {
	args := m.Called(ctx, status, filter)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindSweepCandidates(ctx context.Context, statuses []billing.InvoiceStatus) ([]billing.Invoice, error) {
	args := m.Called(ctx, statuses)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) FindUrgent(ctx context.Context) ([]billing.Invoice, error) {
	args := m.Called(ctx)
	return args.Get(0).([]billing.Invoice), args.Error(1)
}

func (m *MockInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice, seed *billing.StatusHistoryEntry) error {
	args := m.Called(ctx, invoice, seed)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Update(ctx context.Context, invoice *billing.Invoice) error {
	args := m.Called(ctx, invoice)
	return args.Error(0)
}

func (m *MockInvoiceRepository) UpdateStatus(ctx context.Context, invoiceID uuid.UUID, status billing.InvoiceStatus, entry *billing.StatusHistoryEntry) error {
	args := m.Called(ctx, invoiceID, status, entry)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) CountByStatus(ctx context.Context) (map[billing.InvoiceStatus]int64, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[billing.InvoiceStatus]int64), args.Error(1)
}

func (m *MockInvoiceRepository) CountByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, clientID, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockInvoiceRepository) CountByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, branchID, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockStatusHistoryRepository is a mock implementation of billing.StatusHistoryRepository
type MockStatusHistoryRepository struct {
	mock.Mock
}

func (m *MockStatusHistoryRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.StatusHistoryEntry, error) {
	args := m.Called(ctx, invoiceID)
	return args.Get(0).([]billing.StatusHistoryEntry), args.Error(1)
}

func (m *MockStatusHistoryRepository) FindRecentByInvoice(ctx context.Context, invoiceID uuid.UUID, limit int) ([]billing.StatusHistoryEntry, error) {
	args := m.Called(ctx, invoiceID, limit)
	return args.Get(0).([]billing.StatusHistoryEntry), args.Error(1)
}

// MockClientRepository is a mock implementation of partner.ClientRepository
type MockClientRepository struct {
	mock.Mock
}

func (m *MockClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Client), args.Error(1)
}

func (m *MockClientRepository) FindAll(ctx context.Context) ([]partner.Client, error) {
	args := m.Called(ctx)
	return args.Get(0).([]partner.Client), args.Error(1)
}

func (m *MockClientRepository) FindByNameAndType(ctx context.Context, name string, clientType partner.ClientType, excludeID *uuid.UUID) (*partner.Client, error) {
	args := m.Called(ctx, name, clientType, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Client), args.Error(1)
}

func (m *MockClientRepository) Save(ctx context.Context, client *partner.Client) error {
	args := m.Called(ctx, client)
	return args.Error(0)
}

func (m *MockClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockBranchRepository is a mock implementation of partner.BranchRepository
type MockBranchRepository struct {
	mock.Mock
}

func (m *MockBranchRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Branch, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Branch), args.Error(1)
}

func (m *MockBranchRepository) FindByIDForClient(ctx context.Context, clientID, id uuid.UUID) (*partner.Branch, error) {
	args := m.Called(ctx, clientID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Branch), args.Error(1)
}

func (m *MockBranchRepository) FindAll(ctx context.Context) ([]partner.Branch, error) {
	args := m.Called(ctx)
	return args.Get(0).([]partner.Branch), args.Error(1)
}

func (m *MockBranchRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]partner.Branch, error) {
	args := m.Called(ctx, clientID)
	return args.Get(0).([]partner.Branch), args.Error(1)
}

func (m *MockBranchRepository) FindByNameForClient(ctx context.Context, clientID uuid.UUID, name string, excludeID *uuid.UUID) (*partner.Branch, error) {
	args := m.Called(ctx, clientID, name, excludeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*partner.Branch), args.Error(1)
}

func (m *MockBranchRepository) Save(ctx context.Context, branch *partner.Branch) error {
	args := m.Called(ctx, branch)
	return args.Error(0)
}

func (m *MockBranchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTaxRuleRepository is a mock implementation of tax.RuleRepository
type MockTaxRuleRepository struct {
	mock.Mock
}

func (m *MockTaxRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*tax.Rule, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tax.Rule), args.Error(1)
}

func (m *MockTaxRuleRepository) FindByProvince(ctx context.Context, province string) (*tax.Rule, error) {
	args := m.Called(ctx, province)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tax.Rule), args.Error(1)
}

func (m *MockTaxRuleRepository) FindAll(ctx context.Context) ([]tax.Rule, error) {
	args := m.Called(ctx)
	return args.Get(0).([]tax.Rule), args.Error(1)
}

func (m *MockTaxRuleRepository) Save(ctx context.Context, rule *tax.Rule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

func (m *MockTaxRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context) ([]identity.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockConfigRepository is a mock implementation of system.ConfigRepository
type MockConfigRepository struct {
	mock.Mock
}

func (m *MockConfigRepository) Get(ctx context.Context, key string) (*system.ConfigEntry, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*system.ConfigEntry), args.Error(1)
}

func (m *MockConfigRepository) Upsert(ctx context.Context, entry *system.ConfigEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}
