package models

import (
	"github.com/invoicing/backend/internal/domain/system"
)

// SystemConfigModel is the persistence model for key-value system settings
type SystemConfigModel struct {
	BaseModel
	Key         string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Value       string `gorm:"type:varchar(500);not null"`
	Description string `gorm:"type:varchar(500)"`
}

// TableName returns the table name for SystemConfigModel
func (SystemConfigModel) TableName() string {
	return "system_configs"
}

// ToDomain converts SystemConfigModel to domain ConfigEntry
func (m *SystemConfigModel) ToDomain() *system.ConfigEntry {
	return &system.ConfigEntry{
		BaseEntity:  m.BaseModel.ToDomain(),
		Key:         m.Key,
		Value:       m.Value,
		Description: m.Description,
	}
}

// FromDomain populates SystemConfigModel from domain ConfigEntry
func (m *SystemConfigModel) FromDomain(e *system.ConfigEntry) {
	m.FromDomainBaseEntity(e.BaseEntity)
	m.Key = e.Key
	m.Value = e.Value
	m.Description = e.Description
}
