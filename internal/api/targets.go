package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sidj/calorie-meter/internal/service"
)

// TargetsHandler serves the daily targets.
type TargetsHandler struct {
	targets *service.TargetsService
}

// NewTargetsHandler creates a new TargetsHandler instance.
func NewTargetsHandler(targets *service.TargetsService) *TargetsHandler {
	return &TargetsHandler{targets: targets}
}

// RegisterRoutes mounts the targets routes on the router group.
func (h *TargetsHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/targets", h.Get)
	router.PUT("/targets", h.Save)
}

func (h *TargetsHandler) Get(c *gin.Context) {
	targets, err := h.targets.Get(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, targets)
}

func (h *TargetsHandler) Save(c *gin.Context) {
	var req TargetsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	targets, err := h.targets.Save(c.Request.Context(), service.SaveTargetsInput{
		ProteinG: req.ProteinG,
		CarbsG:   req.CarbsG,
		FatG:     req.FatG,
		FiberG:   req.FiberG,
		Calories: req.Calories,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, targets)
}
