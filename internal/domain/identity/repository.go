package identity

import (
	"context"

	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by email (lowercased)
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindAll returns all users
	FindAll(ctx context.Context) ([]User, error)

	// Save creates or updates a user
	Save(ctx context.Context, user *User) error

	// Delete removes a user
	Delete(ctx context.Context, id uuid.UUID) error
}
