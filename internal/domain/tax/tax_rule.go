package tax

import (
	"strings"
	"time"

	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// Rule maps a jurisdiction (province) to a tax percentage.
// Provinces are unique; invoices resolve their rule either explicitly by ID or
// implicitly through the branch's province.
type Rule struct {
	shared.BaseAggregateRoot
	Province   string
	Percentage decimal.Decimal
	Active     bool
}

// NewRule creates a new tax rule
func NewRule(province string, percentage decimal.Decimal, active bool) (*Rule, error) {
	province = strings.TrimSpace(province)
	if province == "" {
		return nil, shared.NewDomainError("INVALID_PROVINCE", "Province cannot be empty")
	}
	if err := validatePercentage(percentage); err != nil {
		return nil, err
	}

	return &Rule{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Province:          province,
		Percentage:        percentage,
		Active:            active,
	}, nil
}

// SetPercentage sets the tax percentage
func (r *Rule) SetPercentage(percentage decimal.Decimal) error {
	if err := validatePercentage(percentage); err != nil {
		return err
	}
	r.Percentage = percentage
	r.UpdatedAt = time.Now()
	return nil
}

// SetActive toggles the active flag
func (r *Rule) SetActive(active bool) {
	r.Active = active
	r.UpdatedAt = time.Now()
}

func validatePercentage(percentage decimal.Decimal) error {
	if percentage.IsNegative() || percentage.GreaterThan(oneHundred) {
		return shared.NewDomainError("INVALID_PERCENTAGE", "Tax percentage must be between 0 and 100")
	}
	return nil
}
