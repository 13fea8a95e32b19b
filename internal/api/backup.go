package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sidj/calorie-meter/internal/service"
)

// BackupHandler serves snapshot export and import for the backup UI.
type BackupHandler struct {
	backup *service.BackupService
}

// NewBackupHandler creates a new BackupHandler instance.
func NewBackupHandler(backup *service.BackupService) *BackupHandler {
	return &BackupHandler{backup: backup}
}

// RegisterRoutes mounts the backup routes on the router group.
func (h *BackupHandler) RegisterRoutes(router *gin.RouterGroup) {
	backup := router.Group("/backup")
	{
		backup.GET("/export", h.Export)
		backup.POST("/import", h.Import)
	}
}

func (h *BackupHandler) Export(c *gin.Context) {
	bundle, err := h.backup.Export(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, bundle)
}

func (h *BackupHandler) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	if err := h.backup.Import(c.Request.Context(), &req.Bundle, req.Replace); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"imported": true})
}
