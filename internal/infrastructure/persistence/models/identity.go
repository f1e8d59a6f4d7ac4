package models

import (
	"github.com/invoicing/backend/internal/domain/identity"
)

// UserModel is the persistence model for user accounts
type UserModel struct {
	AggregateModel
	Name         string `gorm:"type:varchar(200);not null"`
	Email        string `gorm:"type:varchar(200);not null;uniqueIndex"`
	PasswordHash string `gorm:"type:varchar(100);not null"`
	Role         string `gorm:"type:varchar(20);not null"`
}

// TableName returns the table name for UserModel
func (UserModel) TableName() string {
	return "users"
}

// ToDomain converts UserModel to domain User
func (m *UserModel) ToDomain() *identity.User {
	return &identity.User{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		PasswordHash:      m.PasswordHash,
		Role:              identity.Role(m.Role),
	}
}

// FromDomain populates UserModel from domain User
func (m *UserModel) FromDomain(u *identity.User) {
	m.FromDomainAggregateRoot(u.BaseAggregateRoot)
	m.Name = u.Name
	m.Email = u.Email
	m.PasswordHash = u.PasswordHash
	m.Role = string(u.Role)
}
