package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/isometry-app/isometry"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	client *isometry.Client
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(client *isometry.Client) *HealthHandler {
	return &HealthHandler{client: client}
}

// HealthCheck handles GET /health
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// ReadinessCheck handles GET /ready: the store must answer a count query.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if _, err := h.client.Store().CountNodes(c.Request.Context(), false); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
