package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/billing"
	"github.com/invoicing/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormStatusHistoryRepository implements StatusHistoryRepository using GORM.
// History rows are written by GormInvoiceRepository inside invoice
// transactions; this repository only reads.
type GormStatusHistoryRepository struct {
	db *gorm.DB
}

// NewGormStatusHistoryRepository creates a new GormStatusHistoryRepository
func NewGormStatusHistoryRepository(db *gorm.DB) *GormStatusHistoryRepository {
	return &GormStatusHistoryRepository{db: db}
}

// FindByInvoice returns the full history of an invoice, newest first
func (r *GormStatusHistoryRepository) FindByInvoice(ctx context.Context, invoiceID uuid.UUID) ([]billing.StatusHistoryEntry, error) {
	var rows []models.InvoiceStatusHistoryModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toHistoryEntries(rows), nil
}

// FindRecentByInvoice returns up to limit entries, newest first
func (r *GormStatusHistoryRepository) FindRecentByInvoice(ctx context.Context, invoiceID uuid.UUID, limit int) ([]billing.StatusHistoryEntry, error) {
	var rows []models.InvoiceStatusHistoryModel
	if err := r.db.WithContext(ctx).
		Where("invoice_id = ?", invoiceID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toHistoryEntries(rows), nil
}

func toHistoryEntries(rows []models.InvoiceStatusHistoryModel) []billing.StatusHistoryEntry {
	entries := make([]billing.StatusHistoryEntry, len(rows))
	for i := range rows {
		entries[i] = *rows[i].ToDomain()
	}
	return entries
}

// Ensure GormStatusHistoryRepository implements StatusHistoryRepository
var _ billing.StatusHistoryRepository = (*GormStatusHistoryRepository)(nil)
