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

// GormBranchRepository implements BranchRepository using GORM
type GormBranchRepository struct {
	db *gorm.DB
}

// NewGormBranchRepository creates a new GormBranchRepository
func NewGormBranchRepository(db *gorm.DB) *GormBranchRepository {
	return &GormBranchRepository{db: db}
}

// FindByID finds a branch by ID
func (r *GormBranchRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Branch, error) {
	var model models.BranchModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByIDForClient finds a branch scoped to a client
func (r *GormBranchRepository) FindByIDForClient(ctx context.Context, clientID, id uuid.UUID) (*partner.Branch, error) {
	var model models.BranchModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ? AND id = ?", clientID, id).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all branches
func (r *GormBranchRepository) FindAll(ctx context.Context) ([]partner.Branch, error) {
	var rows []models.BranchModel
	if err := r.db.WithContext(ctx).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toBranches(rows), nil
}

// FindByClient returns the branches of a client
func (r *GormBranchRepository) FindByClient(ctx context.Context, clientID uuid.UUID) ([]partner.Branch, error) {
	var rows []models.BranchModel
	if err := r.db.WithContext(ctx).
		Where("client_id = ?", clientID).
		Order("name ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return toBranches(rows), nil
}

// FindByNameForClient finds a branch with the exact name under a client,
// optionally excluding an ID
func (r *GormBranchRepository) FindByNameForClient(ctx context.Context, clientID uuid.UUID, name string, excludeID *uuid.UUID) (*partner.Branch, error) {
	query := r.db.WithContext(ctx).
		Where("client_id = ? AND name = ?", clientID, name)
	if excludeID != nil {
		query = query.Where("id <> ?", *excludeID)
	}

	var model models.BranchModel
	if err := query.First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Save creates or updates a branch
func (r *GormBranchRepository) Save(ctx context.Context, branch *partner.Branch) error {
	var model models.BranchModel
	model.FromDomain(branch)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete removes a branch
func (r *GormBranchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoiceCount int64
		if err := tx.Model(&models.InvoiceModel{}).
			Where("branch_id = ?", id).
			Count(&invoiceCount).Error; err != nil {
			return err
		}
		if invoiceCount > 0 {
			return shared.ErrDeletionBlocked
		}

		result := tx.Delete(&models.BranchModel{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

func toBranches(rows []models.BranchModel) []partner.Branch {
	branches := make([]partner.Branch, len(rows))
	for i := range rows {
		branches[i] = *rows[i].ToDomain()
	}
	return branches
}

// Ensure GormBranchRepository implements BranchRepository
var _ partner.BranchRepository = (*GormBranchRepository)(nil)
