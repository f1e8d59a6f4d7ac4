package partner

import (
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/partner"
)

// CreateClientRequest is the request to create a client
type CreateClientRequest struct {
	Name    string
	Type    string
	Contact string
}

// UpdateClientRequest is the patch applied to a client. Nil fields are left
// untouched.
type UpdateClientRequest struct {
	Name    *string
	Type    *string
	Contact *string
}

// CreateBranchRequest is the request to create a branch
type CreateBranchRequest struct {
	ClientID uuid.UUID
	Name     string
	City     string
	Province string
}

// UpdateBranchRequest is the patch applied to a branch. Empty fields are left
// untouched.
type UpdateBranchRequest struct {
	Name     string
	City     string
	Province string
}

// BranchResponse is the branch representation
type BranchResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	City      string    `json:"city"`
	Province  string    `json:"province"`
	ClientID  string    `json:"client_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ClientResponse is the client representation with its branches
type ClientResponse struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Type      string           `json:"type"`
	Contact   string           `json:"contact"`
	Branches  []BranchResponse `json:"branches"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}

// ToBranchResponse converts a branch entity to its response form
func ToBranchResponse(b *partner.Branch) BranchResponse {
	return BranchResponse{
		ID:        b.ID.String(),
		Name:      b.Name,
		City:      b.City,
		Province:  b.Province,
		ClientID:  b.ClientID.String(),
		CreatedAt: b.CreatedAt,
		UpdatedAt: b.UpdatedAt,
	}
}

// ToBranchResponses converts a slice of branches
func ToBranchResponses(branches []partner.Branch) []BranchResponse {
	out := make([]BranchResponse, len(branches))
	for i := range branches {
		out[i] = ToBranchResponse(&branches[i])
	}
	return out
}

// ToClientResponse converts a client entity to its response form
func ToClientResponse(c *partner.Client) ClientResponse {
	return ClientResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Type:      string(c.Type),
		Contact:   c.Contact,
		Branches:  ToBranchResponses(c.Branches),
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
}

// ToClientResponses converts a slice of clients
func ToClientResponses(clients []partner.Client) []ClientResponse {
	out := make([]ClientResponse, len(clients))
	for i := range clients {
		out[i] = ToClientResponse(&clients[i])
	}
	return out
}
