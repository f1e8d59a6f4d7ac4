package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/invoicing/backend/internal/application/identity"
	"github.com/invoicing/backend/internal/interfaces/http/middleware"
)

// UserHandler handles user management API endpoints
type UserHandler struct {
	BaseHandler
	userService *identityapp.UserService
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userService *identityapp.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// CreateUserRequest represents a request to create a user account
type CreateUserRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=200"`
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Role     string `json:"role" binding:"required,oneof=ADMIN EMPLOYEE VIEWER"`
}

// UpdateUserRequest represents a request to update a user account. Omitted
// fields are left untouched; a password triggers a rehash.
type UpdateUserRequest struct {
	Name     *string `json:"name" binding:"omitempty,min=1,max=200"`
	Email    *string `json:"email" binding:"omitempty,email,max=200"`
	Password *string `json:"password" binding:"omitempty,min=8,max=128"`
	Role     *string `json:"role" binding:"omitempty,oneof=ADMIN EMPLOYEE VIEWER"`
}

// Create creates a new user account
func (h *UserHandler) Create(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Create(c.Request.Context(), identityapp.CreateUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, user)
}

// GetByID retrieves a user account
func (h *UserHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// List returns all user accounts
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, users)
}

// Update applies a partial update to a user account
func (h *UserHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	var req UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	user, err := h.userService.Update(c.Request.Context(), id, identityapp.UpdateUserRequest{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// Delete removes a user account
func (h *UserHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid user ID")
		return
	}

	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// RegisterRoutes registers user management routes. All of them require the
// admin role.
func (h *UserHandler) RegisterRoutes(rg *gin.RouterGroup) {
	users := rg.Group("/users", middleware.RequireAdmin())
	{
		users.GET("", h.List)
		users.GET("/:id", h.GetByID)
		users.POST("", h.Create)
		users.PUT("/:id", h.Update)
		users.DELETE("/:id", h.Delete)
	}
}
