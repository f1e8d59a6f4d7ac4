package partner

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared"
)

// ClientService handles client management
type ClientService struct {
	clientRepo partner.ClientRepository
	branchRepo partner.BranchRepository
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo partner.ClientRepository, branchRepo partner.BranchRepository) *ClientService {
	return &ClientService{
		clientRepo: clientRepo,
		branchRepo: branchRepo,
	}
}

// Create creates a new client. (Name, Type) pairs must be unique.
func (s *ClientService) Create(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	client, err := partner.NewClient(req.Name, partner.ClientType(req.Type), req.Contact)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNameTypeAvailable(ctx, client.Name, client.Type, nil); err != nil {
		return nil, err
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	resp := ToClientResponse(client)
	return &resp, nil
}

// GetByID retrieves a client with its branches
func (s *ClientService) GetByID(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.findClient(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToClientResponse(client)
	return &resp, nil
}

// List retrieves all clients with their branches
func (s *ClientService) List(ctx context.Context) ([]ClientResponse, error) {
	clients, err := s.clientRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToClientResponses(clients), nil
}

// Update applies a patch to a client
func (s *ClientService) Update(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.findClient(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if err := client.Rename(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Type != nil {
		if err := client.SetType(partner.ClientType(*req.Type)); err != nil {
			return nil, err
		}
	}
	if req.Contact != nil {
		if err := client.SetContact(*req.Contact); err != nil {
			return nil, err
		}
	}

	if req.Name != nil || req.Type != nil {
		if err := s.ensureNameTypeAvailable(ctx, client.Name, client.Type, &client.ID); err != nil {
			return nil, err
		}
	}

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}

	resp := ToClientResponse(client)
	return &resp, nil
}

// Delete removes a client and all of its branches
func (s *ClientService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findClient(ctx, id); err != nil {
		return err
	}
	if err := s.clientRepo.Delete(ctx, id); err != nil {
		return shared.ErrDeletionBlocked
	}
	return nil
}

// ListBranches retrieves the branches of a client
func (s *ClientService) ListBranches(ctx context.Context, clientID uuid.UUID) ([]BranchResponse, error) {
	if _, err := s.findClient(ctx, clientID); err != nil {
		return nil, err
	}
	branches, err := s.branchRepo.FindByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	return ToBranchResponses(branches), nil
}

func (s *ClientService) findClient(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Client not found")
		}
		return nil, err
	}
	return client, nil
}

func (s *ClientService) ensureNameTypeAvailable(ctx context.Context, name string, clientType partner.ClientType, excludeID *uuid.UUID) error {
	_, err := s.clientRepo.FindByNameAndType(ctx, name, clientType, excludeID)
	if err == nil {
		return shared.NewDomainError("ALREADY_EXISTS", "A client with this name and type already exists")
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	return nil
}
