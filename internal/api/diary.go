package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/sidj/calorie-meter/internal/service"
)

// DiaryHandler serves diary entry logging and day views.
type DiaryHandler struct {
	diary *service.DiaryService
}

// NewDiaryHandler creates a new DiaryHandler instance.
func NewDiaryHandler(diary *service.DiaryService) *DiaryHandler {
	return &DiaryHandler{diary: diary}
}

// RegisterRoutes mounts the diary routes on the router group.
func (h *DiaryHandler) RegisterRoutes(router *gin.RouterGroup) {
	diary := router.Group("/diary")
	{
		diary.POST("/entries", h.AddEntry)
		diary.PATCH("/entries/:id", h.UpdateWeight)
		diary.DELETE("/entries/:id", h.DeleteEntry)
		diary.GET("/days/:day", h.Day)
		diary.GET("/today", h.Today)
	}
}

func (h *DiaryHandler) AddEntry(c *gin.Context) {
	var req EntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	loggedAt := time.Now()
	if req.LoggedAtUTC != nil {
		loggedAt = time.UnixMilli(*req.LoggedAtUTC)
	}
	entry, err := h.diary.AddEntryFromRecipe(c.Request.Context(), req.ProfileID, req.RecipeID, req.Grams, loggedAt)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toEntryResponse(entry))
}

func (h *DiaryHandler) UpdateWeight(c *gin.Context) {
	var req EntryWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	entry, err := h.diary.UpdateEntryWeight(c.Request.Context(), c.Param("id"), req.Grams)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toEntryResponse(entry))
}

func (h *DiaryHandler) DeleteEntry(c *gin.Context) {
	removed, err := h.diary.DeleteEntry(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"removed": removed})
}

// Day returns one diary day's entries with totals. The read itself
// repairs stale entries, so the response always reflects current
// boundary settings.
func (h *DiaryHandler) Day(c *gin.Context) {
	day := c.Param("day")
	entries, err := h.diary.ListByDay(c.Request.Context(), c.Query("profile_id"), day)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDayResponse(day, entries))
}

func (h *DiaryHandler) Today(c *gin.Context) {
	day, entries, err := h.diary.Today(c.Request.Context(), c.Query("profile_id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toDayResponse(day, entries))
}
