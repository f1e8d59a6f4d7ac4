package shared

import (
	"time"

	"github.com/google/uuid"
)

// BaseEntity carries the identity and timestamp fields every domain entity
// embeds. IDs are generated application-side so entities are addressable
// before they are persisted.
type BaseEntity struct {
	ID        uuid.UUID
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewBaseEntity returns a BaseEntity with a fresh ID and both timestamps
// set to the same instant.
func NewBaseEntity() BaseEntity {
	now := time.Now()
	return BaseEntity{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
}
