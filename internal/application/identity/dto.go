package identity

import (
	"time"

	"github.com/invoicing/backend/internal/domain/identity"
	"github.com/invoicing/backend/internal/infrastructure/auth"
)

// LoginRequest carries login credentials
type LoginRequest struct {
	Email    string
	Password string
}

// LoginResult is a successful login outcome
type LoginResult struct {
	AccessToken *auth.AccessToken `json:"access_token"`
	User        UserResponse      `json:"user"`
}

// CreateUserRequest is the request to create a user
type CreateUserRequest struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// UpdateUserRequest is the patch applied to a user. Nil fields are left
// untouched; a non-nil Password triggers a rehash.
type UpdateUserRequest struct {
	Name     *string
	Email    *string
	Password *string
	Role     *string
}

// UserResponse is the user representation without the password hash
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ToUserResponse converts a user entity to its response form
func ToUserResponse(u *identity.User) UserResponse {
	return UserResponse{
		ID:        u.ID.String(),
		Name:      u.Name,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ToUserResponses converts a slice of users
func ToUserResponses(users []identity.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out
}
