package tax

import (
	"context"

	"github.com/google/uuid"
)

// RuleRepository defines the interface for tax rule persistence
type RuleRepository interface {
	// FindByID finds a tax rule by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Rule, error)

	// FindByProvince finds the active tax rule for a province
	FindByProvince(ctx context.Context, province string) (*Rule, error)

	// FindAll returns all tax rules
	FindAll(ctx context.Context) ([]Rule, error)

	// Save creates or updates a tax rule
	Save(ctx context.Context, rule *Rule) error

	// Delete removes a tax rule
	Delete(ctx context.Context, id uuid.UUID) error
}
