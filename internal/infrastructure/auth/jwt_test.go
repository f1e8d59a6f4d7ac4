package auth

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/invoicing/backend/internal/domain/identity"
	"github.com/invoicing/backend/internal/infrastructure/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(expiration time.Duration) *JWTService {
	return NewJWTService(config.JWTConfig{
		Secret:                "test-secret-key-for-unit-tests-only",
		AccessTokenExpiration: expiration,
		Issuer:                "invoicing-test",
	})
}

func TestGenerateAndValidateAccessToken(t *testing.T) {
	svc := newTestService(time.Hour)
	userID := uuid.New()

	token, err := svc.GenerateAccessToken(userID, "admin@example.com", identity.RoleAdmin)
	require.NoError(t, err)
	require.NotEmpty(t, token.Token)
	assert.Equal(t, "Bearer", token.TokenType)
	assert.WithinDuration(t, time.Now().Add(time.Hour), token.ExpiresAt, 5*time.Second)

	claims, err := svc.ValidateToken(token.Token)
	require.NoError(t, err)
	assert.Equal(t, userID.String(), claims.UserID)
	assert.Equal(t, "admin@example.com", claims.Email)
	assert.Equal(t, "ADMIN", claims.Role)
	assert.Equal(t, "invoicing-test", claims.Issuer)

	subject, err := claims.SubjectID()
	require.NoError(t, err)
	assert.Equal(t, userID, subject)
}

func TestValidateToken_Expired(t *testing.T) {
	svc := newTestService(-time.Minute)

	token, err := svc.GenerateAccessToken(uuid.New(), "user@example.com", identity.RoleViewer)
	require.NoError(t, err)

	_, err = svc.ValidateToken(token.Token)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	svc := newTestService(time.Hour)
	other := NewJWTService(config.JWTConfig{
		Secret:                "a-completely-different-secret-value",
		AccessTokenExpiration: time.Hour,
		Issuer:                "invoicing-test",
	})

	token, err := svc.GenerateAccessToken(uuid.New(), "user@example.com", identity.RoleEmployee)
	require.NoError(t, err)

	_, err = other.ValidateToken(token.Token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := newTestService(time.Hour)

	_, err := svc.ValidateToken("not.a.token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_UnknownRole(t *testing.T) {
	svc := newTestService(time.Hour)

	token, err := svc.GenerateAccessToken(uuid.New(), "user@example.com", identity.Role("SUPERUSER"))
	require.NoError(t, err)

	_, err = svc.ValidateToken(token.Token)
	assert.ErrorIs(t, err, ErrInvalidClaims)
}
