package models

import (
	"github.com/invoicing/backend/internal/domain/tax"
	"github.com/shopspring/decimal"
)

// TaxRuleModel is the persistence model for tax rules
type TaxRuleModel struct {
	AggregateModel
	Province   string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Percentage decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Active     bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for TaxRuleModel
func (TaxRuleModel) TableName() string {
	return "tax_rules"
}

// ToDomain converts TaxRuleModel to domain Rule
func (m *TaxRuleModel) ToDomain() *tax.Rule {
	return &tax.Rule{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Province:          m.Province,
		Percentage:        m.Percentage,
		Active:            m.Active,
	}
}

// FromDomain populates TaxRuleModel from domain Rule
func (m *TaxRuleModel) FromDomain(r *tax.Rule) {
	m.FromDomainAggregateRoot(r.BaseAggregateRoot)
	m.Province = r.Province
	m.Percentage = r.Percentage
	m.Active = r.Active
}
