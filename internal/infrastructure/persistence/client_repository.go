package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormClientRepository implements ClientRepository using GORM
type GormClientRepository struct {
	db *gorm.DB
}

// NewGormClientRepository creates a new GormClientRepository
func NewGormClientRepository(db *gorm.DB) *GormClientRepository {
	return &GormClientRepository{db: db}
}

// FindByID finds a client by ID with branches preloaded
func (r *GormClientRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	var model models.ClientModel
	if err := r.db.WithContext(ctx).
		Preload("Branches").
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all clients with branches preloaded
func (r *GormClientRepository) FindAll(ctx context.Context) ([]partner.Client, error) {
	var rows []models.ClientModel
	if err := r.db.WithContext(ctx).
		Preload("Branches").
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	clients := make([]partner.Client, len(rows))
	for i := range rows {
		clients[i] = *rows[i].ToDomain()
	}
	return clients, nil
}

// FindByNameAndType finds a client with the exact name and type, optionally
// excluding an ID
func (r *GormClientRepository) FindByNameAndType(ctx context.Context, name string, clientType partner.ClientType, excludeID *uuid.UUID) (*partner.Client, error) {
	query := r.db.WithContext(ctx).
		Where("name = ? AND type = ?", name, string(clientType))
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var model models.ClientModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a client
func (r *GormClientRepository) Save(ctx context.Context, client *partner.Client) error {
	var model models.ClientModel
	model.FromDomain(client)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete removes a client and all of its branches
func (r *GormClientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoiceCount int64
		if err := tx.Model(&models.InvoiceModel{}).
			Where("client_id = ?", id).
			Count(&invoiceCount).Error; err != nil {
			return err
		}
		if invoiceCount > 0 {
			return shared.ErrDeletionBlocked
		}

		if err := tx.Where("client_id = ?", id).
			Delete(&models.BranchModel{}).Error; err != nil {
			return err
		}

		result := tx.Delete(&models.ClientModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Ensure GormClientRepository implements ClientRepository
var _ partner.ClientRepository = (*GormClientRepository)(nil)
