package partner

import (
	"strings"
	"time"

	"github.com/invoicing/backend/internal/domain/shared"
)

// ClientType distinguishes billable clients from vendors
type ClientType string

const (
	ClientTypeClient ClientType = "CLIENT"
	ClientTypeVendor ClientType = "VENDOR"
)

// IsValid checks if the type is a valid ClientType
func (t ClientType) IsValid() bool {
	return t == ClientTypeClient || t == ClientTypeVendor
}

// Client represents a client or vendor aggregate root.
// (Name, Type) pairs are unique; branches belong to exactly one client.
type Client struct {
	shared.BaseAggregateRoot
	Name     string
	Type     ClientType
	Contact  string
	Branches []Branch
}

// NewClient creates a new client
func NewClient(name string, clientType ClientType, contact string) (*Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Client name cannot exceed 200 characters")
	}
	if !clientType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TYPE", "Client type must be CLIENT or VENDOR")
	}
	if strings.TrimSpace(contact) == "" {
		return nil, shared.NewDomainError("INVALID_CONTACT", "Client contact cannot be empty")
	}

	return &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Type:              clientType,
		Contact:           contact,
		Branches:          make([]Branch, 0),
	}, nil
}

// Rename sets the client name
func (c *Client) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Client name cannot be empty")
	}
	c.Name = name
	c.UpdatedAt = time.Now()
	return nil
}

// SetContact sets the contact info
func (c *Client) SetContact(contact string) error {
	if strings.TrimSpace(contact) == "" {
		return shared.NewDomainError("INVALID_CONTACT", "Client contact cannot be empty")
	}
	c.Contact = contact
	c.UpdatedAt = time.Now()
	return nil
}

// SetType sets the client type
func (c *Client) SetType(clientType ClientType) error {
	if !clientType.IsValid() {
		return shared.NewDomainError("INVALID_TYPE", "Client type must be CLIENT or VENDOR")
	}
	c.Type = clientType
	c.UpdatedAt = time.Now()
	return nil
}
