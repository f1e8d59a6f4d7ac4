package partner

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/partner"
	"github.com/invoicing/backend/internal/domain/shared"
)

// BranchService handles branch management
type BranchService struct {
	branchRepo partner.BranchRepository
	clientRepo partner.ClientRepository
}

// NewBranchService creates a new BranchService
func NewBranchService(branchRepo partner.BranchRepository, clientRepo partner.ClientRepository) *BranchService {
	return &BranchService{
		branchRepo: branchRepo,
		clientRepo: clientRepo,
	}
}

// Create creates a new branch under a client. Branch names are unique per
// client.
func (s *BranchService) Create(ctx context.Context, req CreateBranchRequest) (*BranchResponse, error) {
	if _, err := s.clientRepo.FindByID(ctx, req.ClientID); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Client not found")
		}
		return nil, err
	}

	branch, err := partner.NewBranch(req.ClientID, req.Name, req.City, req.Province)
	if err != nil {
		return nil, err
	}

	if err := s.ensureNameAvailable(ctx, branch.ClientID, branch.Name, nil); err != nil {
		return nil, err
	}

	if err := s.branchRepo.Save(ctx, branch); err != nil {
		return nil, err
	}

	resp := ToBranchResponse(branch)
	return &resp, nil
}

// GetByID retrieves a branch
func (s *BranchService) GetByID(ctx context.Context, id uuid.UUID) (*BranchResponse, error) {
	branch, err := s.findBranch(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToBranchResponse(branch)
	return &resp, nil
}

// List retrieves all branches
func (s *BranchService) List(ctx context.Context) ([]BranchResponse, error) {
	branches, err := s.branchRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToBranchResponses(branches), nil
}

// Update applies a patch to a branch
func (s *BranchService) Update(ctx context.Context, id uuid.UUID, req UpdateBranchRequest) (*BranchResponse, error) {
	branch, err := s.findBranch(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != "" && req.Name != branch.Name {
		if err := s.ensureNameAvailable(ctx, branch.ClientID, req.Name, &branch.ID); err != nil {
			return nil, err
		}
	}
	if err := branch.Update(req.Name, req.City, req.Province); err != nil {
		return nil, err
	}

	if err := s.branchRepo.Save(ctx, branch); err != nil {
		return nil, err
	}

	resp := ToBranchResponse(branch)
	return &resp, nil
}

// Delete removes a branch
func (s *BranchService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findBranch(ctx, id); err != nil {
		return err
	}
	if err := s.branchRepo.Delete(ctx, id); err != nil {
		return shared.ErrDeletionBlocked
	}
	return nil
}

func (s *BranchService) findBranch(ctx context.Context, id uuid.UUID) (*partner.Branch, error) {
	branch, err := s.branchRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "Branch not found")
		}
		return nil, err
	}
	return branch, nil
}

func (s *BranchService) ensureNameAvailable(ctx context.Context, clientID uuid.UUID, name string, excludeID *uuid.UUID) error {
	_, err := s.branchRepo.FindByNameForClient(ctx, clientID, name, excludeID)
	if err == nil {
		return shared.NewDomainError("ALREADY_EXISTS", "A branch with this name already exists for this client")
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return err
	}
	return nil
}
