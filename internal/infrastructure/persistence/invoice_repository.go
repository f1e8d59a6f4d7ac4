package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/billing"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormInvoiceRepository implements InvoiceRepository using GORM
type GormInvoiceRepository struct {
	db *gorm.DB
}

// NewGormInvoiceRepository creates a new GormInvoiceRepository
func NewGormInvoiceRepository(db *gorm.DB) *GormInvoiceRepository {
	return &GormInvoiceRepository{db: db}
}

// FindByID finds an invoice by ID with its items preloaded
func (r *GormInvoiceRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByNumber finds an invoice by invoice number
func (r *GormInvoiceRepository) FindByNumber(ctx context.Context, invoiceNumber string) (*billing.Invoice, error) {
	var model models.InvoiceModel
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&model, "invoice_number = ?", invoiceNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds invoices with filtering and pagination
func (r *GormInvoiceRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.Invoice, error) {
	query := r.applyFilter(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter)
	return r.findInvoices(query)
}

// FindByClient finds invoices for a client
func (r *GormInvoiceRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
			Where("client_id = ?", clientID),
		filter,
	)
	return r.findInvoices(query)
}

// FindByBranch finds invoices for a branch
func (r *GormInvoiceRepository) FindByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) ([]billing.Invoice, error) {
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
			Where("branch_id = ?", branchID),
		filter,
	)
	return r.findInvoices(query)
}

// FindByStatus finds invoices by status, newest created first
func (r *GormInvoiceRepository) FindByStatus(ctx context.Context, status billing.InvoiceStatus, filter shared.Filter) ([]billing.Invoice, error) {
	query := r.applyFilter(
		r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
			Where("status = ?", status.String()),
		filter,
	)
	return r.findInvoices(query)
}

// FindSweepCandidates finds invoices whose status is in the given set and
// which have a non-null due date
func (r *GormInvoiceRepository) FindSweepCandidates(ctx context.Context, statuses []billing.InvoiceStatus) ([]billing.Invoice, error) {
	values := make([]string, len(statuses))
	for i, s := range statuses {
		values[i] = s.String()
	}

	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("status IN ? AND due_date IS NOT NULL", values).
		Order("due_date ASC")
	return r.findInvoices(query)
}

// FindUrgent finds DUE_SOON and OVERDUE invoices, OVERDUE first, then by
// ascending due date
func (r *GormInvoiceRepository) FindUrgent(ctx context.Context) ([]billing.Invoice, error) {
	query := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Where("status IN ?", []string{
			billing.StatusOverdue.String(),
			billing.StatusDueSoon.String(),
		}).
		Order("CASE WHEN status = 'OVERDUE' THEN 0 ELSE 1 END, due_date ASC")
	return r.findInvoices(query)
}

// Create persists a new invoice, its items and the seed history entry in one
// transaction
func (r *GormInvoiceRepository) Create(ctx context.Context, invoice *billing.Invoice, seed *billing.StatusHistoryEntry) error {
	var model models.InvoiceModel
	model.FromDomain(invoice)

	var seedModel models.InvoiceStatusHistoryModel
	seedModel.FromDomain(seed)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&model).Error; err != nil {
			return err
		}
		return tx.Create(&seedModel).Error
	})
}

// Update persists invoice fields and replaces its item set wholesale in one
// transaction. The row is only written when the stored version matches the
// invoice's version; the write bumps the version by one.
func (r *GormInvoiceRepository) Update(ctx context.Context, invoice *billing.Invoice) error {
	var model models.InvoiceModel
	model.FromDomain(invoice)
	items := model.Items
	model.Items = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.InvoiceModel{}).
			Where("id = ? AND version = ?", model.ID, model.Version).
			Updates(map[string]interface{}{
				"invoice_number": model.InvoiceNumber,
				"date":           model.Date,
				"due_date":       model.DueDate,
				"subtotal":       model.Subtotal,
				"tax_amount":     model.TaxAmount,
				"total_amount":   model.TotalAmount,
				"status":         model.Status,
				"notes":          model.Notes,
				"client_id":      model.ClientID,
				"branch_id":      model.BranchID,
				"version":        model.Version + 1,
				"updated_at":     time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&models.InvoiceModel{}).
				Where("id = ?", model.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return shared.ErrNotFound
			}
			return shared.ErrVersionConflict
		}

		if err := tx.Where("invoice_id = ?", model.ID).
			Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Create(&items).Error
	})
}

// UpdateStatus sets the invoice status and appends the history entry in one
// transaction
func (r *GormInvoiceRepository) UpdateStatus(ctx context.Context, invoiceID uuid.UUID, status billing.InvoiceStatus, entry *billing.StatusHistoryEntry) error {
	var entryModel models.InvoiceStatusHistoryModel
	entryModel.FromDomain(entry)

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&models.InvoiceModel{}).
			Where("id = ?", invoiceID).
			Updates(map[string]interface{}{
				"status":     status.String(),
				"updated_at": time.Now(),
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return tx.Create(&entryModel).Error
	})
}

// Delete removes history entries, items and the invoice in dependency order
// within one transaction
func (r *GormInvoiceRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("invoice_id = ?", id).
			Delete(&models.InvoiceStatusHistoryModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", id).
			Delete(&models.InvoiceItemModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.InvoiceModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Count counts invoices matching the filter
func (r *GormInvoiceRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(r.db.WithContext(ctx).Model(&models.InvoiceModel{}), filter)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByStatus counts invoices per status value
func (r *GormInvoiceRepository) CountByStatus(ctx context.Context) (map[billing.InvoiceStatus]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}

	counts := make(map[billing.InvoiceStatus]int64, len(billing.AllStatuses()))
	for _, status := range billing.AllStatuses() {
		counts[status] = 0
	}
	for _, row := range rows {
		counts[billing.InvoiceStatus(row.Status)] = row.Count
	}
	return counts, nil
}

// CountByClient counts invoices for a client
func (r *GormInvoiceRepository) CountByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
			Where("client_id = ?", clientID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// CountByBranch counts invoices for a branch
func (r *GormInvoiceRepository) CountByBranch(ctx context.Context, branchID uuid.UUID, filter shared.Filter) (int64, error) {
	var count int64
	query := r.applyFilterWithoutPagination(
		r.db.WithContext(ctx).Model(&models.InvoiceModel{}).
			Where("branch_id = ?", branchID),
		filter,
	)

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormInvoiceRepository) findInvoices(query *gorm.DB) ([]billing.Invoice, error) {
	var rows []models.InvoiceModel
	if err := query.Preload("Items").Find(&rows).Error; err != nil {
		return nil, err
	}

	invoices := make([]billing.Invoice, len(rows))
	for i := range rows {
		invoices[i] = *rows[i].ToDomain()
	}
	return invoices, nil
}

// applyFilter applies filter options to the query
func (r *GormInvoiceRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = r.applyFilterWithoutPagination(query, filter)

	if filter.Page > 0 && filter.PageSize > 0 {
		offset := (filter.Page - 1) * filter.PageSize
		query = query.Offset(offset).Limit(filter.PageSize)
	}

	orderBy := ValidateSortField(filter.OrderBy, InvoiceSortFields, "created_at")
	orderDir := ValidateSortOrder(filter.OrderDir)
	return query.Order(orderBy + " " + orderDir)
}

// applyFilterWithoutPagination applies filter options without pagination
func (r *GormInvoiceRepository) applyFilterWithoutPagination(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + strings.ToLower(filter.Search) + "%"
		// Search spans the invoice itself plus the client, branch and item
		// rows it references.
		query = query.Where(
			"LOWER(invoice_number) LIKE ?"+
				" OR LOWER(notes) LIKE ?"+
				" OR EXISTS (SELECT 1 FROM clients WHERE clients.id = invoices.client_id AND LOWER(clients.name) LIKE ?)"+
				" OR EXISTS (SELECT 1 FROM branches WHERE branches.id = invoices.branch_id AND LOWER(branches.name) LIKE ?)"+
				" OR EXISTS (SELECT 1 FROM invoice_items WHERE invoice_items.invoice_id = invoices.id AND LOWER(invoice_items.description) LIKE ?)",
			searchPattern, searchPattern, searchPattern, searchPattern, searchPattern)
	}

	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "client_id":
			query = query.Where("client_id = ?", value)
		case "branch_id":
			query = query.Where("branch_id = ?", value)
		case "start_date":
			query = query.Where("date >= ?", value)
		case "end_date":
			query = query.Where("date <= ?", value)
		}
	}

	return query
}

// Ensure GormInvoiceRepository implements InvoiceRepository
var _ billing.InvoiceRepository = (*GormInvoiceRepository)(nil)
