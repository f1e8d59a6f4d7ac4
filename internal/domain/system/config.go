package system

import (
	"context"
	"strings"
	"time"

	"github.com/invoicing/backend/internal/domain/shared"
)

// ConfigKeyDueSoonThreshold holds the number of days before the due date at
// which an unpaid invoice is marked DUE_SOON.
const ConfigKeyDueSoonThreshold = "DUE_SOON_THRESHOLD_DAYS"

// DefaultDueSoonThresholdDays is used when the config row is absent or
// unparseable.
const DefaultDueSoonThresholdDays = 7

// ConfigEntry is a generic key-value system setting
type ConfigEntry struct {
	shared.BaseEntity
	Key         string
	Value       string
	Description string
}

// NewConfigEntry creates a new config entry
func NewConfigEntry(key, value, description string) (*ConfigEntry, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, shared.NewDomainError("INVALID_KEY", "Config key cannot be empty")
	}
	return &ConfigEntry{
		BaseEntity:  shared.NewBaseEntity(),
		Key:         key,
		Value:       value,
		Description: description,
	}, nil
}

// SetValue updates the stored value
func (e *ConfigEntry) SetValue(value string) {
	e.Value = value
	e.UpdatedAt = time.Now()
}

// ConfigRepository defines the interface for system config persistence
type ConfigRepository interface {
	// Get returns the entry for a key, or shared.ErrNotFound
	Get(ctx context.Context, key string) (*ConfigEntry, error)

	// Upsert creates the entry or updates its value
	Upsert(ctx context.Context, entry *ConfigEntry) error
}
