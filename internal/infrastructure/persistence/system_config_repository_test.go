package persistence

import (
	"context"
	"testing"

	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/system"
	"github.com/invoicing/backend/internal/infrastructure/persistence/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupConfigTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.SystemConfigModel{})
	require.NoError(t, err)

	return db
}

func TestGormSystemConfigRepository(t *testing.T) {
	db := setupConfigTestDB(t)
	repo := NewGormSystemConfigRepository(db)
	ctx := context.Background()

	t.Run("returns ErrNotFound for missing key", func(t *testing.T) {
		_, err := repo.Get(ctx, system.ConfigKeyDueSoonThreshold)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("upsert creates a new entry", func(t *testing.T) {
		entry, err := system.NewConfigEntry(system.ConfigKeyDueSoonThreshold, "10", "Days before due date")
		require.NoError(t, err)

		require.NoError(t, repo.Upsert(ctx, entry))

		found, err := repo.Get(ctx, system.ConfigKeyDueSoonThreshold)
		require.NoError(t, err)
		assert.Equal(t, "10", found.Value)
		assert.Equal(t, "Days before due date", found.Description)
	})

	t.Run("upsert updates the value for an existing key", func(t *testing.T) {
		entry, err := system.NewConfigEntry(system.ConfigKeyDueSoonThreshold, "21", "")
		require.NoError(t, err)

		require.NoError(t, repo.Upsert(ctx, entry))

		found, err := repo.Get(ctx, system.ConfigKeyDueSoonThreshold)
		require.NoError(t, err)
		assert.Equal(t, "21", found.Value)

		var count int64
		require.NoError(t, db.Model(&models.SystemConfigModel{}).Count(&count).Error)
		assert.Equal(t, int64(1), count)
	})
}
