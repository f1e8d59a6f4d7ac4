package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/invoicing/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// Role represents the access level of a user
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleEmployee Role = "EMPLOYEE"
	RoleViewer   Role = "VIEWER"
)

// IsValid checks if the role is a valid Role
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleEmployee, RoleViewer:
		return true
	}
	return false
}

// CanWrite returns true if the role may create or modify records
func (r Role) CanWrite() bool {
	return r == RoleAdmin || r == RoleEmployee
}

// CanDelete returns true if the role may delete records
func (r Role) CanDelete() bool {
	return r == RoleAdmin
}

const bcryptCost = 12

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User represents a back-office user account
type User struct {
	shared.BaseAggregateRoot
	Name         string
	Email        string
	PasswordHash string
	Role         Role
}

// NewUser creates a new user with a hashed password
func NewUser(name, email, password string, role Role) (*User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "User name cannot be empty")
	}
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return nil, shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
	}
	if len(password) < 8 {
		return nil, shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be ADMIN, EMPLOYEE or VIEWER")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}

	return &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		PasswordHash:      string(hash),
		Role:              role,
	}, nil
}

// VerifyPassword checks a plaintext password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangePassword replaces the password hash
func (u *User) ChangePassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_ERROR", "Failed to hash password")
	}
	u.PasswordHash = string(hash)
	u.UpdatedAt = time.Now()
	return nil
}

// SetEmail sets the user's email
func (u *User) SetEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if !emailRegex.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Invalid email address")
	}
	u.Email = email
	u.UpdatedAt = time.Now()
	return nil
}

// SetRole sets the user's role
func (u *User) SetRole(role Role) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be ADMIN, EMPLOYEE or VIEWER")
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	return nil
}

// SetName sets the user's display name
func (u *User) SetName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "User name cannot be empty")
	}
	u.Name = name
	u.UpdatedAt = time.Now()
	return nil
}
