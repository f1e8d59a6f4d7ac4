package identity

import (
	"context"
	"strings"

	"github.com/invoicing/backend/internal/domain/identity"
	"github.com/invoicing/backend/internal/domain/shared"
	"github.com/invoicing/backend/internal/infrastructure/auth"
	"go.uber.org/zap"
)

// AuthService handles authentication
type AuthService struct {
	userRepo   identity.UserRepository
	jwtService *auth.JWTService
	logger     *zap.Logger
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo identity.UserRepository, jwtService *auth.JWTService, logger *zap.Logger) *AuthService {
	return &AuthService{
		userRepo:   userRepo,
		jwtService: jwtService,
		logger:     logger,
	}
}

// Login verifies credentials and issues an access token. Unknown emails and
// wrong passwords produce the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*LoginResult, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		s.logger.Warn("login attempt for unknown email", zap.String("email", email))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	if !user.VerifyPassword(req.Password) {
		s.logger.Warn("invalid password attempt", zap.String("email", email))
		return nil, shared.NewDomainError("INVALID_CREDENTIALS", "Invalid email or password")
	}

	token, err := s.jwtService.GenerateAccessToken(user.ID, user.Email, user.Role)
	if err != nil {
		s.logger.Error("failed to generate access token", zap.Error(err))
		return nil, shared.NewDomainError("INTERNAL_ERROR", "Failed to generate authentication token")
	}

	s.logger.Info("user logged in",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return &LoginResult{
		AccessToken: token,
		User:        ToUserResponse(user),
	}, nil
}
