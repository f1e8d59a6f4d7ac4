package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/tax"
	"github.com/invoicing/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormTaxRuleRepository implements RuleRepository using GORM
type GormTaxRuleRepository struct {
	db *gorm.DB
}

// NewGormTaxRuleRepository creates a new GormTaxRuleRepository
func NewGormTaxRuleRepository(db *gorm.DB) *GormTaxRuleRepository {
	return &GormTaxRuleRepository{db: db}
}

// FindByID finds a tax rule by ID
func (r *GormTaxRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*tax.Rule, error) {
	var model models.TaxRuleModel
	if err := r.db.WithContext(ctx).First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByProvince finds the active tax rule for a province
func (r *GormTaxRuleRepository) FindByProvince(ctx context.Context, province string) (*tax.Rule, error) {
	var model models.TaxRuleModel
	if err := r.db.WithContext(ctx).
		Where("province = ? AND active = ?", province, true).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll returns all tax rules
func (r *GormTaxRuleRepository) FindAll(ctx context.Context) ([]tax.Rule, error) {
	var rows []models.TaxRuleModel
	if err := r.db.WithContext(ctx).
		Order("province ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}

	rules := make([]tax.Rule, len(rows))
	for i := range rows {
		rules[i] = *rows[i].ToDomain()
	}
	return rules, nil
}

// Save creates or updates a tax rule
func (r *GormTaxRuleRepository) Save(ctx context.Context, rule *tax.Rule) error {
	var model models.TaxRuleModel
	model.FromDomain(rule)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete removes a tax rule
func (r *GormTaxRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.TaxRuleModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Ensure GormTaxRuleRepository implements RuleRepository
var _ tax.RuleRepository = (*GormTaxRuleRepository)(nil)
