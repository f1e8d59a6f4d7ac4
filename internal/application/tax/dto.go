package tax

import (
	"time"

	"github.com/invoicing/backend/internal/domain/tax"
	"github.com/shopspring/decimal"
)

// CreateRuleRequest is the request to create a tax rule
type CreateRuleRequest struct {
	Province   string
	Percentage decimal.Decimal
	Active     *bool
}

// UpdateRuleRequest is the patch applied to a tax rule. Nil fields are left
// untouched.
type UpdateRuleRequest struct {
	Percentage *decimal.Decimal
	Active     *bool
}

// RuleResponse is the tax rule representation
type RuleResponse struct {
	ID         string          `json:"id"`
	Province   string          `json:"province"`
	Percentage decimal.Decimal `json:"percentage"`
	Active     bool            `json:"active"`
	CreatedAt  time.Time       `json:"created_at"`
	UpdatedAt  time.Time       `json:"updated_at"`
}

// ToRuleResponse converts a rule entity to its response form
func ToRuleResponse(r *tax.Rule) RuleResponse {
	return RuleResponse{
		ID:         r.ID.String(),
		Province:   r.Province,
		Percentage: r.Percentage,
		Active:     r.Active,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
}

// ToRuleResponses converts a slice of rules
func ToRuleResponses(rules []tax.Rule) []RuleResponse {
	out := make([]RuleResponse, len(rules))
	for i := range rules {
		out[i] = ToRuleResponse(&rules[i])
	}
	return out
}
