package handler

import (
	"github.com/gin-gonic/gin"
	identityapp "github.com/invoicing/backend/internal/application/identity"
)

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	BaseHandler
	authService *identityapp.AuthService
	userService *identityapp.UserService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *identityapp.AuthService, userService *identityapp.UserService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		userService: userService,
	}
}

// LoginRequest represents the request body for user login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email,max=200"`
	Password string `json:"password" binding:"required,min=1,max=128"`
}

// Login authenticates a user and returns a signed access token
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	result, err := h.authService.Login(c.Request.Context(), identityapp.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, result)
}

// GetCurrentUser returns the authenticated user's profile
func (h *AuthHandler) GetCurrentUser(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	user, err := h.userService.GetByID(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, user)
}

// RegisterRoutes registers authentication routes
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/login", h.Login)
		auth.GET("/me", h.GetCurrentUser)
	}
}
