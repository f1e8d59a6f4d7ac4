package billing

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/billing"
	"github.com/invoicing/backend/internal/domain/identity"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/tax"
)

const recentHistoryLimit = 10

// InvoiceService handles invoice lifecycle operations
type InvoiceService struct {
	invoiceRepo billing.InvoiceRepository
	historyRepo billing.StatusHistoryRepository
	clientRepo  partner.ClientRepository
	branchRepo  partner.BranchRepository
	taxRepo     tax.RuleRepository
	userRepo    identity.UserRepository
	now         func() time.Time
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(
	invoiceRepo billing.InvoiceRepository,
	historyRepo billing.StatusHistoryRepository,
	clientRepo partner.ClientRepository,
	branchRepo partner.BranchRepository,
	taxRepo tax.RuleRepository,
	userRepo identity.UserRepository,
) *InvoiceService {
	return &InvoiceService{
		invoiceRepo: invoiceRepo,
		historyRepo: historyRepo,
		clientRepo:  clientRepo,
		branchRepo:  branchRepo,
		taxRepo:     taxRepo,
		userRepo:    userRepo,
		now:         time.Now,
	}
}

// SetClock overrides the time source, used by tests
func (s *InvoiceService) SetClock(now func() time.Time) {
	s.now = now
}

// Create creates a new invoice with its items and the seed UNPAID history
// entry in a single transaction
func (s *InvoiceService) Create(ctx context.Context, req CreateInvoiceRequest, actorID uuid.UUID) (*InvoiceResponse, error) {
	// Validate client
	if _, err := s.clientRepo.FindByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Client not found")
		}
		return nil, err
	}

	// Validate branch belongs to the client
	branch, err := s.branchRepo.FindByIDForClient(ctx, req.ClientID, req.BranchID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Branch not found for this client")
		}
		return nil, err
	}

	// Resolve the tax rule, explicit ID first, branch province otherwise
	rule, err := s.resolveTaxRule(ctx, req.TaxRuleID, branch.Province)
	if err != nil {
		return nil, err
	}

	date := s.now()
	if req.Date != nil {
		date = *req.Date
	}

	invoiceNumber := billing.GenerateInvoiceNumber(s.now())
	invoice, err := billing.NewInvoice(invoiceNumber, date, req.DueDate, req.ClientID, req.BranchID, actorID)
	if err != nil {
		return nil, err
	}

	lines, descriptions := splitItemInputs(req.Items)
	if err := invoice.SetItems(lines, descriptions, rule.Percentage); err != nil {
		return nil, err
	}
	if req.Notes != "" {
		invoice.SetNotes(req.Notes)
	}

	seed := billing.NewStatusHistoryEntry(invoice.ID, billing.StatusUnpaid, &actorID, "Invoice created")
	if err := s.invoiceRepo.Create(ctx, invoice, seed); err != nil {
		return nil, err
	}

	return s.populate(ctx, invoice), nil
}

// GetByID retrieves an invoice with its related records
func (s *InvoiceService) GetByID(ctx context.Context, id uuid.UUID) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
		}
		return nil, err
	}
	return s.populate(ctx, invoice), nil
}

// Update applies a patch to an invoice. A non-nil Items slice replaces the
// item set wholesale and recomputes the subtotal; if either Items or
// TaxRuleID is present the tax rule is re-resolved and tax and total are
// recomputed. Otherwise the stored amounts are left untouched. Status and
// history are never modified here.
func (s *InvoiceService) Update(ctx context.Context, id uuid.UUID, req UpdateInvoiceRequest) (*InvoiceResponse, error) {
	invoice, err := s.invoiceRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Invoice not found")
		}
		return nil, err
	}

	clientID := invoice.ClientID
	if req.ClientID != nil {
		if _, err := s.clientRepo.FindByID(ctx, *req.ClientID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("NOT_FOUND", "Client not found")
			}
			return nil, err
		}
		clientID = *req.ClientID
	}

	branchID := invoice.BranchID
	if req.BranchID != nil {
		branchID = *req.BranchID
	}

	// Re-validate the client/branch pairing whenever either side changed
	if req.ClientID != nil || req.BranchID != nil {
		if _, err := s.branchRepo.FindByIDForClient(ctx, clientID, branchID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("NOT_FOUND", "Branch not found for this client")
			}
			return nil, err
		}
	}

	invoice.ClientID = clientID
	invoice.BranchID = branchID
	if req.DueDate != nil {
		invoice.DueDate = req.DueDate
	}
	if req.Notes != nil {
		invoice.SetNotes(*req.Notes)
	}

	if req.Items != nil || req.TaxRuleID != nil {
		branch, err := s.branchRepo.FindByIDForClient(ctx, clientID, branchID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("NOT_FOUND", "Branch not found for this client")
			}
			return nil, err
		}
		rule, err := s.resolveTaxRule(ctx, req.TaxRuleID, branch.Province)
		if err != nil {
			return nil, err
		}

		if req.Items != nil {
			lines, descriptions := splitItemInputs(req.Items)
			if err := invoice.SetItems(lines, descriptions, rule.Percentage); err != nil {
				return nil, err
			}
		} else {
			invoice.ApplyTotals(billing.CalculateTotals(invoice.LineInputs(), rule.Percentage))
		}
	}

	if err := s.invoiceRepo.Update(ctx, invoice); err != nil {
		return nil, err
	}
	invoice.IncrementVersion()

	return s.populate(ctx, invoice), nil
}

// Remove deletes an invoice, cascading over its status history and items
func (s *InvoiceService) Remove(ctx context.Context, id uuid.UUID) error {
	if _, err := s.invoiceRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND", "Invoice not found")
		}
		return err
	}
	if err := s.invoiceRepo.Delete(ctx, id); err != nil {
		return shared.ErrDeletionBlocked
	}
	return nil
}

// List retrieves invoices with pagination, search and date range filtering
func (s *InvoiceService) List(ctx context.Context, filter ListInvoicesFilter) (*shared.Paginated[InvoiceListItemResponse], error) {
	f := s.toSharedFilter(filter)

	invoices, err := s.invoiceRepo.FindAll(ctx, f)
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

// ListByClient retrieves the invoices of a client
func (s *InvoiceService) ListByClient(ctx context.Context, clientID uuid.UUID, filter ListInvoicesFilter) (*shared.Paginated[InvoiceListItemResponse], error) {
	if _, err := s.clientRepo.FindByID(ctx, clientID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Client not found")
		}
		return nil, err
	}

	f := s.toSharedFilter(filter)
	invoices, err := s.invoiceRepo.FindByClient(ctx, clientID, f)
	if err != nil {
		return nil, err
	}
	total, err := s.invoiceRepo.CountByClient(ctx, clientID, f)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToInvoiceListItemResponses(invoices), total, f.Page, f.PageSize)
	return &page, nil
}

// ListByBranch retrieves the invoices of a branch
func (s *InvoiceService) ListByBranch(ctx context.Context, branchID uuid.UUID, filter ListInvoicesFilter) (*shared.Paginated[InvoiceListItemResponse], error) {
	if _, err := s.branchRepo.FindByID(ctx, branchID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Branch not found")
		}
		return nil, err
	}

	f := s.toSharedFilter(filter)
	invoices, err := s.invoiceRepo.FindByBranch(ctx, branchID, f)
	if err != nil {
		return nil, err
	}
	total, err := s.invoiceRepo.CountByBranch(ctx, branchID, f)
	if err != nil {
		return nil, err
	}

	page := shared.NewPaginated(ToInvoiceListItemResponses(invoices), total, f.Page, f.PageSize)
	return &page, nil
}

// resolveTaxRule resolves the applicable tax rule. An explicit rule ID takes
// precedence; otherwise the active rule for the branch province applies.
func (s *InvoiceService) resolveTaxRule(ctx context.Context, ruleID *uuid.UUID, province string) (*tax.Rule, error) {
	if ruleID != nil {
		rule, err := s.taxRepo.FindByID(ctx, *ruleID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.NewDomainError("NOT_FOUND", "Tax rule not found")
			}
			return nil, err
		}
		return rule, nil
	}

	rule, err := s.taxRepo.FindByProvince(ctx, province)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", fmt.Sprintf("Tax rule not found for province: %s", province))
		}
		return nil, err
	}
	return rule, nil
}

// populate assembles the full invoice response. Related records that cannot
// be loaded are left nil rather than failing the whole request.
func (s *InvoiceService) populate(ctx context.Context, invoice *billing.Invoice) *InvoiceResponse {
	client, _ := s.clientRepo.FindByID(ctx, invoice.ClientID)
	branch, _ := s.branchRepo.FindByID(ctx, invoice.BranchID)
	creator, _ := s.userRepo.FindByID(ctx, invoice.CreatedByID)
	history, _ := s.historyRepo.FindRecentByInvoice(ctx, invoice.ID, recentHistoryLimit)

	response := ToInvoiceResponse(invoice, client, branch, creator, history)
	return &response
}

func (s *InvoiceService) toSharedFilter(filter ListInvoicesFilter) shared.Filter {
	f := shared.DefaultFilter()
	if filter.Page > 0 {
		f.Page = filter.Page
	}
	if filter.PageSize > 0 {
		f.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		f.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		f.OrderDir = filter.OrderDir
	}
	f.Search = filter.Search
	if filter.StartDate != nil {
		f.Filters["start_date"] = *filter.StartDate
	}
	if filter.EndDate != nil {
		f.Filters["end_date"] = *filter.EndDate
	}
	return f
}

func splitItemInputs(items []InvoiceItemInput) ([]billing.LineInput, []string) {
	lines := make([]billing.LineInput, len(items))
	descriptions := make([]string, len(items))
	for i, item := range items {
		lines[i] = billing.LineInput{Quantity: item.Quantity, UnitPrice: item.UnitPrice}
		descriptions[i] = item.Description
	}
	return lines, descriptions
}
