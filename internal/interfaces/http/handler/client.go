package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	partnerapp "github.com/invoicing/backend/internal/application/partner"
	"github.com/invoicing/backend/internal/interfaces/http/middleware"
)

// ClientHandler handles client API endpoints
type ClientHandler struct {
	BaseHandler
	clientService *partnerapp.ClientService
	branchService *partnerapp.BranchService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *partnerapp.ClientService, branchService *partnerapp.BranchService) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
		branchService: branchService,
	}
}

// CreateClientRequest represents a request to create a new client
type CreateClientRequest struct {
	Name    string `json:"name" binding:"required,min=1,max=200"`
	Type    string `json:"type" binding:"required,oneof=CLIENT VENDOR"`
	Contact string `json:"contact" binding:"max=200"`
}

// UpdateClientRequest represents a request to update a client. Omitted fields
// are left untouched.
type UpdateClientRequest struct {
	Name    *string `json:"name" binding:"omitempty,min=1,max=200"`
	Type    *string `json:"type" binding:"omitempty,oneof=CLIENT VENDOR"`
	Contact *string `json:"contact" binding:"omitempty,max=200"`
}

// CreateClientBranchRequest represents a request to add a branch to a client
type CreateClientBranchRequest struct {
	Name     string `json:"name" binding:"required,min=1,max=200"`
	City     string `json:"city" binding:"max=100"`
	Province string `json:"province" binding:"required,min=1,max=50"`
}

// Create creates a new client
func (h *ClientHandler) Create(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	client, err := h.clientService.Create(c.Request.Context(), partnerapp.CreateClientRequest{
		Name:    req.Name,
		Type:    req.Type,
		Contact: req.Contact,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, client)
}

// GetByID retrieves a client with its branches
func (h *ClientHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	client, err := h.clientService.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// List returns all clients ordered by name
func (h *ClientHandler) List(c *gin.Context) {
	clients, err := h.clientService.List(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, clients)
}

// Update applies a partial update to a client
func (h *ClientHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	client, err := h.clientService.Update(c.Request.Context(), id, partnerapp.UpdateClientRequest{
		Name:    req.Name,
		Type:    req.Type,
		Contact: req.Contact,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, client)
}

// Delete removes a client unless invoices still reference it
func (h *ClientHandler) Delete(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	if err := h.clientService.Delete(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// ListBranches returns the branches of one client
func (h *ClientHandler) ListBranches(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	branches, err := h.clientService.ListBranches(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, branches)
}

// CreateBranch adds a branch to a client
func (h *ClientHandler) CreateBranch(c *gin.Context) {
	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid client ID")
		return
	}

	var req CreateClientBranchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	branch, err := h.branchService.Create(c.Request.Context(), partnerapp.CreateBranchRequest{
		ClientID: clientID,
		Name:     req.Name,
		City:     req.City,
		Province: req.Province,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, branch)
}

// RegisterRoutes registers client routes
func (h *ClientHandler) RegisterRoutes(rg *gin.RouterGroup) {
	clients := rg.Group("/clients")
	{
		clients.GET("", h.List)
		clients.GET("/:id", h.GetByID)
		clients.GET("/:id/branches", h.ListBranches)
		clients.POST("", middleware.RequireWriteAccess(), h.Create)
		clients.POST("/:id/branches", middleware.RequireWriteAccess(), h.CreateBranch)
		clients.PUT("/:id", middleware.RequireWriteAccess(), h.Update)
		clients.DELETE("/:id", middleware.RequireDeleteAccess(), h.Delete)
	}
}
