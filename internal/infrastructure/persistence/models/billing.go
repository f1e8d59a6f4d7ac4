package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/billing"
	"github.com/shopspring/decimal"
)

// InvoiceModel is the persistence model for invoices
type InvoiceModel struct {
	AggregateModel
	InvoiceNumber string             `gorm:"type:varchar(50);not null;uniqueIndex"`
	Date          time.Time          `gorm:"not null;index"`
	DueDate       *time.Time         `gorm:"index"`
	Subtotal      decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	TaxAmount     decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	TotalAmount   decimal.Decimal    `gorm:"type:decimal(18,4);not null"`
	Status        string             `gorm:"type:varchar(20);not null;index"`
	Notes         string             `gorm:"type:text"`
	ClientID      uuid.UUID          `gorm:"type:uuid;not null;index"`
	BranchID      uuid.UUID          `gorm:"type:uuid;not null;index"`
	CreatedByID   uuid.UUID          `gorm:"type:uuid;not null"`
	Items         []InvoiceItemModel `gorm:"foreignKey:InvoiceID"`
}

// TableName returns the table name for InvoiceModel
func (InvoiceModel) TableName() string {
	return "invoices"
}

// ToDomain converts InvoiceModel to domain Invoice
func (m *InvoiceModel) ToDomain() *billing.Invoice {
	items := make([]billing.InvoiceItem, len(m.Items))
	for i, item := range m.Items {
		items[i] = *item.ToDomain()
	}
	return &billing.Invoice{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		InvoiceNumber:     m.InvoiceNumber,
		Date:              m.Date,
		DueDate:           m.DueDate,
		Subtotal:          m.Subtotal,
		TaxAmount:         m.TaxAmount,
		TotalAmount:       m.TotalAmount,
		Status:            billing.InvoiceStatus(m.Status),
		Notes:             m.Notes,
		ClientID:          m.ClientID,
		BranchID:          m.BranchID,
		CreatedByID:       m.CreatedByID,
		Items:             items,
	}
}

// FromDomain populates InvoiceModel from domain Invoice
func (m *InvoiceModel) FromDomain(inv *billing.Invoice) {
	m.FromDomainAggregateRoot(inv.BaseAggregateRoot)
	m.InvoiceNumber = inv.InvoiceNumber
	m.Date = inv.Date
	m.DueDate = inv.DueDate
	m.Subtotal = inv.Subtotal
	m.TaxAmount = inv.TaxAmount
	m.TotalAmount = inv.TotalAmount
	m.Status = inv.Status.String()
	m.Notes = inv.Notes
	m.ClientID = inv.ClientID
	m.BranchID = inv.BranchID
	m.CreatedByID = inv.CreatedByID
	m.Items = make([]InvoiceItemModel, len(inv.Items))
	for i := range inv.Items {
		m.Items[i].FromDomain(&inv.Items[i])
	}
}

// InvoiceItemModel is the persistence model for invoice line items
type InvoiceItemModel struct {
	BaseModel
	InvoiceID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	Description string          `gorm:"type:varchar(500);not null"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	Total       decimal.Decimal `gorm:"type:decimal(18,4);not null"`
}

// TableName returns the table name for InvoiceItemModel
func (InvoiceItemModel) TableName() string {
	return "invoice_items"
}

// ToDomain converts InvoiceItemModel to domain InvoiceItem
func (m *InvoiceItemModel) ToDomain() *billing.InvoiceItem {
	return &billing.InvoiceItem{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		Description: m.Description,
		Quantity:    m.Quantity,
		UnitPrice:   m.UnitPrice,
		Total:       m.Total,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

// FromDomain populates InvoiceItemModel from domain InvoiceItem
func (m *InvoiceItemModel) FromDomain(item *billing.InvoiceItem) {
	m.ID = item.ID
	m.InvoiceID = item.InvoiceID
	m.Description = item.Description
	m.Quantity = item.Quantity
	m.UnitPrice = item.UnitPrice
	m.Total = item.Total
	m.CreatedAt = item.CreatedAt
	m.UpdatedAt = item.UpdatedAt
}

// InvoiceStatusHistoryModel is the persistence model for invoice status
// history entries. Rows are append-only.
type InvoiceStatusHistoryModel struct {
	ID          uuid.UUID  `gorm:"type:uuid;primary_key"`
	InvoiceID   uuid.UUID  `gorm:"type:uuid;not null;index"`
	Status      string     `gorm:"type:varchar(20);not null"`
	ChangedByID *uuid.UUID `gorm:"type:uuid"`
	Reason      string     `gorm:"type:varchar(500);not null"`
	CreatedAt   time.Time  `gorm:"not null;index"`
}

// TableName returns the table name for InvoiceStatusHistoryModel
func (InvoiceStatusHistoryModel) TableName() string {
	return "invoice_status_history"
}

// ToDomain converts InvoiceStatusHistoryModel to domain StatusHistoryEntry
func (m *InvoiceStatusHistoryModel) ToDomain() *billing.StatusHistoryEntry {
	return &billing.StatusHistoryEntry{
		ID:          m.ID,
		InvoiceID:   m.InvoiceID,
		Status:      billing.InvoiceStatus(m.Status),
		ChangedByID: m.ChangedByID,
		Reason:      m.Reason,
		CreatedAt:   m.CreatedAt,
	}
}

// FromDomain populates InvoiceStatusHistoryModel from domain StatusHistoryEntry
func (m *InvoiceStatusHistoryModel) FromDomain(entry *billing.StatusHistoryEntry) {
	m.ID = entry.ID
	m.InvoiceID = entry.InvoiceID
	m.Status = entry.Status.String()
	m.ChangedByID = entry.ChangedByID
	m.Reason = entry.Reason
	m.CreatedAt = entry.CreatedAt
}
