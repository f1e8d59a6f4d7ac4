package identity

import (
	"context"
	"testing"
	"time"

	"github.com/invoicing/backend/internal/domain/identity"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/infrastructure/auth"
	"github.com/invoicing/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newAuthService(repo *MockUserRepository) *AuthService {
	jwtService := auth.NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-for-unit-tests-only",
		AccessTokenExpiration: time.Hour,
		Issuer:                "invoicing-test",
	})
	return NewAuthService(repo, jwtService, zap.NewNop())
}

func TestLogin(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newAuthService(repo)

	user, err := identity.NewUser("Jane", "jane@example.com", "correct-password", identity.RoleAdmin)
	require.NoError(t, err)
	repo.On("FindByEmail", mock.Anything, "jane@example.com").Return(user, nil)

	result, err := svc.Login(context.Background(), LoginRequest{
		Email:    " Jane@Example.com ",
		Password: "correct-password",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, result.AccessToken.Token)
	assert.Equal(t, "Bearer", result.AccessToken.TokenType)
	assert.Equal(t, "jane@example.com", result.User.Email)
	assert.Equal(t, "ADMIN", result.User.Role)
}

func TestLogin_WrongPassword(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newAuthService(repo)

	user, err := identity.NewUser("Jane", "jane@example.com", "correct-password", identity.RoleAdmin)
	require.NoError(t, err)
	repo.On("FindByEmail", mock.Anything, "jane@example.com").Return(user, nil)

	_, err = svc.Login(context.Background(), LoginRequest{
		Email:    "jane@example.com",
		Password: "wrong-password",
	})

	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_CREDENTIALS", domainErr.Code)
}

func TestLogin_UnknownEmail(t *testing.T) {
	repo := new(MockUserRepository)
	svc := newAuthService(repo)

	repo.On("FindByEmail", mock.Anything, "nobody@example.com").Return(nil, shared.ErrNotFound)

	_, err := svc.Login(context.Background(), LoginRequest{
		Email:    "nobody@example.com",
		Password: "whatever123",
	})

	require.Error(t, err)
	// Same error as a wrong password, no account enumeration
	assert.Equal(t, "Invalid email or password", err.Error())
}
