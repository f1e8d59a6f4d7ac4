package partner

import (
	"context"

	"github.com/google/uuid"
)

// ClientRepository defines the interface for client persistence
type ClientRepository interface {
	// FindByID finds a client by ID with branches preloaded
	FindByID(ctx context.Context, id uuid.UUID) (*Client, error)

	// FindAll returns all clients with branches preloaded
	FindAll(ctx context.Context) ([]Client, error)

	// FindByNameAndType finds a client with the exact name and type,
	// optionally excluding an ID (for update conflict checks)
	FindByNameAndType(ctx context.Context, name string, clientType ClientType, excludeID *uuid.UUID) (*Client, error)

	// Save creates or updates a client
	Save(ctx context.Context, client *Client) error

	// Delete removes a client and all of its branches
	Delete(ctx context.Context, id uuid.UUID) error
}

// BranchRepository defines the interface for branch persistence
type BranchRepository interface {
	// FindByID finds a branch by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Branch, error)

	// FindByIDForClient finds a branch scoped to a client
	FindByIDForClient(ctx context.Context, clientID, id uuid.UUID) (*Branch, error)

	// FindAll returns all branches
	FindAll(ctx context.Context) ([]Branch, error)

	// FindByClient returns the branches of a client
	FindByClient(ctx context.Context, clientID uuid.UUID) ([]Branch, error)

	// FindByNameForClient finds a branch with the exact name under a client,
	// optionally excluding an ID (for update conflict checks)
	FindByNameForClient(ctx context.Context, clientID uuid.UUID, name string, excludeID *uuid.UUID) (*Branch, error)

	// Save creates or updates a branch
	Save(ctx context.Context, branch *Branch) error

	// Delete removes a branch
	Delete(ctx context.Context, id uuid.UUID) error
}
