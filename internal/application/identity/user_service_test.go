package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/identity"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*identity.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindAll(ctx context.Context) ([]identity.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]identity.User), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestCreateUser(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	repo.On("FindByEmail", mock.Anything, "jane@example.com").Return(nil, shared.ErrNotFound)
	repo.On("Save", mock.Anything, mock.MatchedBy(func(u *identity.User) bool {
		return u.Email == "jane@example.com" && u.Role == identity.RoleEmployee && u.PasswordHash != "secret-password"
	})).Return(nil)

	resp, err := svc.Create(context.Background(), CreateUserRequest{
		Name:     "Jane",
		Email:    "Jane@Example.com",
		Password: "secret-password",
		Role:     "EMPLOYEE",
	})

	require.NoError(t, err)
	assert.Equal(t, "jane@example.com", resp.Email)
	assert.Equal(t, "EMPLOYEE", resp.Role)
	repo.AssertExpectations(t)
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	existing, err := identity.NewUser("Jane", "jane@example.com", "password123", identity.RoleAdmin)
	require.NoError(t, err)
	repo.On("FindByEmail", mock.Anything, "jane@example.com").Return(existing, nil)

	_, err = svc.Create(context.Background(), CreateUserRequest{
		Name:     "Other Jane",
		Email:    "jane@example.com",
		Password: "password123",
		Role:     "VIEWER",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestCreateUser_InvalidRole(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	repo.On("FindByEmail", mock.Anything, mock.Anything).Return(nil, shared.ErrNotFound)

	_, err := svc.Create(context.Background(), CreateUserRequest{
		Name:     "Jane",
		Email:    "jane@example.com",
		Password: "password123",
		Role:     "SUPERUSER",
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_ROLE", domainErr.Code)
}

func TestUpdateUser_RehashesPassword(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	user, err := identity.NewUser("Jane", "jane@example.com", "oldpassword", identity.RoleEmployee)
	require.NoError(t, err)
	oldHash := user.PasswordHash

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("Save", mock.Anything, user).Return(nil)

	newPassword := "newpassword99"
	_, err = svc.Update(context.Background(), user.ID, UpdateUserRequest{Password: &newPassword})
	require.NoError(t, err)

	assert.NotEqual(t, oldHash, user.PasswordHash)
	assert.True(t, user.VerifyPassword("newpassword99"))
}

func TestUpdateUser_EmailConflict(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	user, err := identity.NewUser("Jane", "jane@example.com", "password123", identity.RoleEmployee)
	require.NoError(t, err)
	other, err := identity.NewUser("Taken", "taken@example.com", "password123", identity.RoleViewer)
	require.NoError(t, err)

	repo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	repo.On("FindByEmail", mock.Anything, "taken@example.com").Return(other, nil)

	email := "taken@example.com"
	_, err = svc.Update(context.Background(), user.ID, UpdateUserRequest{Email: &email})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "ALREADY_EXISTS", domainErr.Code)
}

func TestDeleteUser_NotFound(t *testing.T) {
	repo := new(MockUserRepository)
	svc := NewUserService(repo)

	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(nil, shared.ErrNotFound)

	err := svc.Delete(context.Background(), id)
	require.Error(t, err)
	assert.Equal(t, "User not found", err.Error())
}
