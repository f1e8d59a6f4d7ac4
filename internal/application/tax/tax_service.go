package tax

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/domain/tax"
)

// RuleService handles tax rule management
type RuleService struct {
	ruleRepo tax.RuleRepository
}

// NewRuleService creates a new RuleService
func NewRuleService(ruleRepo tax.RuleRepository) *RuleService {
	return &RuleService{ruleRepo: ruleRepo}
}

// Create creates a new tax rule. Provinces are unique.
func (s *RuleService) Create(ctx context.Context, req CreateRuleRequest) (*RuleResponse, error) {
	province := strings.TrimSpace(req.Province)
	if _, err := s.ruleRepo.FindByProvince(ctx, province); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A tax rule for this province already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	rule, err := tax.NewRule(province, req.Percentage, active)
	if err != nil {
		return nil, err
	}

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}

	resp := ToRuleResponse(rule)
	return &resp, nil
}

// GetByID retrieves a tax rule
func (s *RuleService) GetByID(ctx context.Context, id uuid.UUID) (*RuleResponse, error) {
	rule, err := s.findRule(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToRuleResponse(rule)
	return &resp, nil
}

// List retrieves all tax rules
func (s *RuleService) List(ctx context.Context) ([]RuleResponse, error) {
	rules, err := s.ruleRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToRuleResponses(rules), nil
}

// Update applies a patch to a tax rule
func (s *RuleService) Update(ctx context.Context, id uuid.UUID, req UpdateRuleRequest) (*RuleResponse, error) {
	rule, err := s.findRule(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Percentage != nil {
		if err := rule.SetPercentage(*req.Percentage); err != nil {
			return nil, err
		}
	}
	if req.Active != nil {
		rule.SetActive(*req.Active)
	}

	if err := s.ruleRepo.Save(ctx, rule); err != nil {
		return nil, err
	}

	resp := ToRuleResponse(rule)
	return &resp, nil
}

// Delete removes a tax rule
func (s *RuleService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findRule(ctx, id); err != nil {
		return err
	}
	if err := s.ruleRepo.Delete(ctx, id); err != nil {
		return shared.ErrDeletionBlocked
	}
	return nil
}

func (s *RuleService) findRule(ctx context.Context, id uuid.UUID) (*tax.Rule, error) {
	rule, err := s.ruleRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Tax rule not found")
		}
		return nil, err
	}
	return rule, nil
}
