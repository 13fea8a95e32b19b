package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sidj/calorie-meter/internal/models"
	"github.com/sidj/calorie-meter/internal/service"
)

// RecipeHandler serves recipe CRUD and search.
type RecipeHandler struct {
	recipes *service.RecipeService
}

// NewRecipeHandler creates a new RecipeHandler instance.
func NewRecipeHandler(recipes *service.RecipeService) *RecipeHandler {
	return &RecipeHandler{recipes: recipes}
}

// RegisterRoutes mounts the recipe routes on the router group.
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	recipes := router.Group("/recipes")
	{
		recipes.GET("", h.List)
		recipes.GET("/:id", h.Get)
		recipes.POST("", h.Create)
		recipes.PUT("/:id", h.Update)
	}
}

// List returns recent recipes, or a name search when ?q= is present.
func (h *RecipeHandler) List(c *gin.Context) {
	profileID := c.Query("profile_id")

	var err error
	var recipes []RecipeResponse
	if query, ok := c.GetQuery("q"); ok {
		found, searchErr := h.recipes.Search(c.Request.Context(), profileID, query)
		err = searchErr
		recipes = toRecipeResponses(found)
	} else {
		found, listErr := h.recipes.List(c.Request.Context(), profileID)
		err = listErr
		recipes = toRecipeResponses(found)
	}
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

func (h *RecipeHandler) Get(c *gin.Context) {
	recipe, err := h.recipes.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(recipe))
}

func (h *RecipeHandler) Create(c *gin.Context) {
	var req RecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	recipe, err := h.recipes.Create(c.Request.Context(), c.Query("profile_id"), service.CreateRecipeInput{
		Name:         req.Name,
		TotalWeightG: req.TotalWeightG,
		Calories:     req.Calories,
		ProteinG:     req.ProteinG,
		CarbsG:       req.CarbsG,
		FatG:         req.FatG,
		FiberG:       req.FiberG,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toRecipeResponse(recipe))
}

func (h *RecipeHandler) Update(c *gin.Context) {
	var req RecipeUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}
	recipe, err := h.recipes.Update(c.Request.Context(), c.Param("id"), service.UpdateRecipeInput{
		Name:         req.Name,
		TotalWeightG: req.TotalWeightG,
		Calories:     req.Calories,
		ProteinG:     req.ProteinG,
		CarbsG:       req.CarbsG,
		FatG:         req.FatG,
		FiberG:       req.FiberG,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toRecipeResponse(recipe))
}

func toRecipeResponses(recipes []models.Recipe) []RecipeResponse {
	out := make([]RecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, toRecipeResponse(&recipes[i]))
	}
	return out
}
