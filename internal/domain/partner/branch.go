package partner

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/shared"
)

// Branch represents a physical branch of a client. Its province determines the
// tax rule applied to invoices issued against it.
type Branch struct {
	shared.BaseAggregateRoot
	Name     string
	City     string
	Province string
	ClientID uuid.UUID
}

// NewBranch creates a new branch for a client
func NewBranch(clientID uuid.UUID, name, city, province string) (*Branch, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_CLIENT", "Client ID cannot be empty")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Branch name cannot be empty")
	}
	if strings.TrimSpace(city) == "" {
		return nil, shared.NewDomainError("INVALID_CITY", "Branch city cannot be empty")
	}
	province = strings.TrimSpace(province)
	if province == "" {
		return nil, shared.NewDomainError("INVALID_PROVINCE", "Branch province cannot be empty")
	}

	return &Branch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		City:              city,
		Province:          province,
		ClientID:          clientID,
	}, nil
}

// BelongsTo returns true if the branch belongs to the given client
func (b *Branch) BelongsTo(clientID uuid.UUID) bool {
	return b.ClientID == clientID
}

// Update applies non-empty fields to the branch
func (b *Branch) Update(name, city, province string) error {
	if name != "" {
		b.Name = strings.TrimSpace(name)
	}
	if city != "" {
		b.City = city
	}
	if province != "" {
		b.Province = strings.TrimSpace(province)
	}
	if b.Name == "" || b.Province == "" {
		return shared.NewDomainError("INVALID_INPUT", "Branch name and province cannot be empty")
	}
	b.UpdatedAt = time.Now()
	return nil
}
