package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/system"
	"github.com/invoicing/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormSystemConfigRepository implements ConfigRepository using GORM
type GormSystemConfigRepository struct {
	db *gorm.DB
}

// NewGormSystemConfigRepository creates a new GormSystemConfigRepository
func NewGormSystemConfigRepository(db *gorm.DB) *GormSystemConfigRepository {
	return &GormSystemConfigRepository{db: db}
}

// Get returns the entry for a key, or shared.ErrNotFound
func (r *GormSystemConfigRepository) Get(ctx context.Context, key string) (*system.ConfigEntry, error) {
	var model models.SystemConfigModel
	if err := r.db.WithContext(ctx).
		Where("key = ?", key).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// Upsert creates the entry or updates its value
func (r *GormSystemConfigRepository) Upsert(ctx context.Context, entry *system.ConfigEntry) error {
	var model models.SystemConfigModel
	model.FromDomain(entry)

	return r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"value":      model.Value,
				"updated_at": time.Now(),
			}),
		}).
		Create(&model).Error
}

// Ensure GormSystemConfigRepository implements ConfigRepository
var _ system.ConfigRepository = (*GormSystemConfigRepository)(nil)
