package models

import (
	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/partner"
)

// ClientModel is the persistence model for clients and vendors
type ClientModel struct {
	AggregateModel
	Name     string        `gorm:"type:varchar(200);not null;uniqueIndex:idx_clients_name_type"`
	Type     string        `gorm:"type:varchar(20);not null;uniqueIndex:idx_clients_name_type"`
	Contact  string        `gorm:"type:varchar(200);not null"`
	Branches []BranchModel `gorm:"foreignKey:ClientID"`
}

// TableName returns the table name for ClientModel
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts ClientModel to domain Client
func (m *ClientModel) ToDomain() *partner.Client {
	branches := make([]partner.Branch, len(m.Branches))
	for i, b := range m.Branches {
		branches[i] = *b.ToDomain()
	}
	return &partner.Client{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Type:              partner.ClientType(m.Type),
		Contact:           m.Contact,
		Branches:          branches,
	}
}

// FromDomain populates ClientModel from domain Client
func (m *ClientModel) FromDomain(c *partner.Client) {
	m.FromDomainAggregateRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Type = string(c.Type)
	m.Contact = c.Contact
}

// BranchModel is the persistence model for client branches
type BranchModel struct {
	AggregateModel
	Name     string    `gorm:"type:varchar(200);not null;uniqueIndex:idx_branches_client_name"`
	City     string    `gorm:"type:varchar(100);not null"`
	Province string    `gorm:"type:varchar(50);not null;index"`
	ClientID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_branches_client_name"`
}

// TableName returns the table name for BranchModel
func (BranchModel) TableName() string {
	return "branches"
}

// ToDomain converts BranchModel to domain Branch
func (m *BranchModel) ToDomain() *partner.Branch {
	return &partner.Branch{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		City:              m.City,
		Province:          m.Province,
		ClientID:          m.ClientID,
	}
}

// FromDomain populates BranchModel from domain Branch
func (m *BranchModel) FromDomain(b *partner.Branch) {
	m.FromDomainAggregateRoot(b.BaseAggregateRoot)
	m.Name = b.Name
	m.City = b.City
	m.Province = b.Province
	m.ClientID = b.ClientID
}
