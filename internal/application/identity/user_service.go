package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/identity"
	"github.com/invoicing/backend/internal/domain/shared"
)

// UserService handles user account management
type UserService struct {
	userRepo identity.UserRepository
}

// NewUserService creates a new UserService
func NewUserService(userRepo identity.UserRepository) *UserService {
	return &UserService{userRepo: userRepo}
}

// Create creates a new user account
func (s *UserService) Create(ctx context.Context, req CreateUserRequest) (*UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	user, err := identity.NewUser(req.Name, req.Email, req.Password, identity.Role(req.Role))
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// GetByID retrieves a user by ID
func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "User not found")
		}
		return nil, err
	}
	resp := ToUserResponse(user)
	return &resp, nil
}

// List retrieves all users
func (s *UserService) List(ctx context.Context) ([]UserResponse, error) {
	users, err := s.userRepo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return ToUserResponses(users), nil
}

// Update applies a patch to a user account
func (s *UserService) Update(ctx context.Context, id uuid.UUID, req UpdateUserRequest) (*UserResponse, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, shared.NewDomainError("NOT_FOUND", "User not found")
		}
		return nil, err
	}

	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		if email != user.Email {
			if _, err := s.userRepo.FindByEmail(ctx, email); err == nil {
				return nil, shared.NewDomainError("ALREADY_EXISTS", "A user with this email already exists")
			} else if !errors.Is(err, shared.ErrNotFound) {
				return nil, err
			}
			if err := user.SetEmail(email); err != nil {
				return nil, err
			}
		}
	}
	if req.Name != nil {
		if err := user.SetName(*req.Name); err != nil {
			return nil, err
		}
	}
	if req.Role != nil {
		if err := user.SetRole(identity.Role(*req.Role)); err != nil {
			return nil, err
		}
	}
	if req.Password != nil {
		if err := user.ChangePassword(*req.Password); err != nil {
			return nil, err
		}
	}

	if err := s.userRepo.Save(ctx, user); err != nil {
		return nil, err
	}

	resp := ToUserResponse(user)
	return &resp, nil
}

// Delete removes a user account
func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.userRepo.FindByID(ctx, id); err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return shared.NewDomainError("NOT_FOUND", "User not found")
		}
		return err
	}
	return s.userRepo.Delete(ctx, id)
}
