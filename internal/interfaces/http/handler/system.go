package handler

import (
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/invoicing/backend/internal/infrastructure/persistence"
	"github.com/invoicing/backend/internal/infrastructure/scheduler"
	"github.com/invoicing/backend/internal/interfaces/http/dto"
	"github.com/invoicing/backend/internal/interfaces/http/middleware"
)

// SystemHandler handles health and system status endpoints
type SystemHandler struct {
	BaseHandler
	db        *persistence.Database
	sweeper   *scheduler.StatusSweeper
	startTime time.Time
}

// NewSystemHandler creates a new SystemHandler. The sweeper may be nil when
// the automated status sweep is disabled.
func NewSystemHandler(db *persistence.Database, sweeper *scheduler.StatusSweeper) *SystemHandler {
	return &SystemHandler{
		db:        db,
		sweeper:   sweeper,
		startTime: time.Now(),
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Database  string `json:"database"`
	GoVersion string `json:"go_version"`
	Uptime    string `json:"uptime"`
}

// Health reports service and database health
func (h *SystemHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:    "ok",
		Database:  "ok",
		GoVersion: runtime.Version(),
		Uptime:    time.Since(h.startTime).Round(time.Second).String(),
	}

	if err := h.db.Ping(); err != nil {
		resp.Status = "degraded"
		resp.Database = "unreachable"
		c.JSON(http.StatusServiceUnavailable, dto.NewSuccessResponse(resp))
		return
	}

	h.Success(c, resp)
}

// GetSweeperStatus reports the automated status sweep state
func (h *SystemHandler) GetSweeperStatus(c *gin.Context) {
	if h.sweeper == nil {
		h.Success(c, gin.H{"enabled": false})
		return
	}

	h.Success(c, h.sweeper.GetStatus())
}

// GetDatabaseStats reports connection pool statistics
func (h *SystemHandler) GetDatabaseStats(c *gin.Context) {
	stats, err := h.db.Stats()
	if err != nil {
		h.InternalError(c, "Failed to read database stats")
		return
	}

	h.Success(c, stats)
}

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)

	system := rg.Group("/system", middleware.RequireAdmin())
	{
		system.GET("/sweeper", h.GetSweeperStatus)
		system.GET("/db", h.GetDatabaseStats)
	}
}
