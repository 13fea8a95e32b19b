package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidj/calorie-meter/config"
	"github.com/sidj/calorie-meter/internal/api"
	"github.com/sidj/calorie-meter/internal/blob"
	"github.com/sidj/calorie-meter/internal/database"
	"github.com/sidj/calorie-meter/internal/service"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	cfg := &config.Config{
		DataDir:         dir,
		DayBoundaryHour: 2,
		Timezone:        "UTC",
		ProfileName:     "default",
	}
	fileStore, err := blob.NewFileStore(filepath.Join(dir, "calorie-meter.db"))
	require.NoError(t, err)
	store := database.New(cfg, blob.NewStack(fileStore))
	require.NoError(t, store.Open(context.Background()))
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	router := gin.New()
	v1 := router.Group("/api/v1")
	api.NewRecipeHandler(service.NewRecipeService(store)).RegisterRoutes(v1)
	api.NewDiaryHandler(service.NewDiaryService(store)).RegisterRoutes(v1)
	api.NewTargetsHandler(service.NewTargetsService(store)).RegisterRoutes(v1)
	api.NewBackupHandler(service.NewBackupService(store)).RegisterRoutes(v1)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRecipeCreateAndGet(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/recipes", api.RecipeRequest{
		Name: "Dal Tadka", TotalWeightG: 1000, Calories: 2000, ProteinG: 100.5,
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var created api.RecipeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, 100.5, created.ProteinG)
	assert.Equal(t, 1, created.Version)

	w = doJSON(t, router, http.MethodGet, "/api/v1/recipes/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var fetched api.RecipeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &fetched))
	assert.Equal(t, created, fetched)
}

func TestRecipeValidationMapsTo400(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/recipes", api.RecipeRequest{
		Name: "", TotalWeightG: 100,
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRecipeNotFoundMapsTo404(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/recipes/nope", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRecipeListAndSearchOrders(t *testing.T) {
	router := newTestRouter(t)

	for _, name := range []string{"Bhindi Fry", "Aloo Paratha"} {
		w := doJSON(t, router, http.MethodPost, "/api/v1/recipes", api.RecipeRequest{
			Name: name, TotalWeightG: 100, Calories: 100,
		})
		require.Equal(t, http.StatusCreated, w.Code)
		time.Sleep(2 * time.Millisecond)
	}

	var listing struct {
		Recipes []api.RecipeResponse `json:"recipes"`
	}

	// List: most recently touched first.
	w := doJSON(t, router, http.MethodGet, "/api/v1/recipes", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Recipes, 2)
	assert.Equal(t, "Aloo Paratha", listing.Recipes[0].Name)

	// Search: alphabetical.
	w = doJSON(t, router, http.MethodGet, "/api/v1/recipes?q=a", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &listing))
	require.Len(t, listing.Recipes, 2)
	assert.Equal(t, "Aloo Paratha", listing.Recipes[0].Name)
	assert.Equal(t, "Bhindi Fry", listing.Recipes[1].Name)
}

func TestDiaryEntryLifecycle(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/recipes", api.RecipeRequest{
		Name: "Khichdi", TotalWeightG: 1000, Calories: 2000, ProteinG: 100,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var recipe api.RecipeResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &recipe))

	loggedAt := time.Date(2024, 5, 20, 13, 0, 0, 0, time.UTC).UnixMilli()
	w = doJSON(t, router, http.MethodPost, "/api/v1/diary/entries", api.EntryRequest{
		RecipeID: recipe.ID, Grams: 250, LoggedAtUTC: &loggedAt,
	})
	require.Equal(t, http.StatusCreated, w.Code)
	var entry api.EntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &entry))
	assert.Equal(t, 500, entry.Calories)
	assert.Equal(t, 25.0, entry.ProteinG)
	assert.Equal(t, "2024-05-20", entry.DiaryDayLocal)

	// Day view carries the totals.
	w = doJSON(t, router, http.MethodGet, "/api/v1/diary/days/2024-05-20", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var day api.DayResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &day))
	require.Len(t, day.Entries, 1)
	assert.Equal(t, 500, day.Totals.Calories)
	assert.Equal(t, 25.0, day.Totals.ProteinG)

	// Reweigh.
	w = doJSON(t, router, http.MethodPatch, "/api/v1/diary/entries/"+entry.ID, api.EntryWeightRequest{Grams: 500})
	require.Equal(t, http.StatusOK, w.Code)
	var reweighed api.EntryResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reweighed))
	assert.Equal(t, 1000, reweighed.Calories)

	// Delete twice: second call reports nothing removed.
	w = doJSON(t, router, http.MethodDelete, "/api/v1/diary/entries/"+entry.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"removed": true}`, w.Body.String())
	w = doJSON(t, router, http.MethodDelete, "/api/v1/diary/entries/"+entry.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"removed": false}`, w.Body.String())
}

func TestDiaryEntryUnknownRecipe(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/diary/entries", api.EntryRequest{
		RecipeID: "missing", Grams: 100,
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestTargetsRoundtrip(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/targets", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var defaults service.Targets
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &defaults))
	assert.Equal(t, 1660, defaults.Calories)

	w = doJSON(t, router, http.MethodPut, "/api/v1/targets", api.TargetsRequest{
		ProteinG: 150, CarbsG: 200, FatG: 70, FiberG: 30,
	})
	require.Equal(t, http.StatusOK, w.Code)
	var saved service.Targets
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &saved))
	assert.Equal(t, 2030, saved.Calories)
	assert.Equal(t, 150.0, saved.ProteinG)
}

func TestBackupExportAndMergeRejected(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/backup/export", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var bundle service.Bundle
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &bundle))
	assert.Equal(t, 1, bundle.Version)
	assert.Len(t, bundle.Profiles, 1)

	w = doJSON(t, router, http.MethodPost, "/api/v1/backup/import", api.ImportRequest{
		Replace: false, Bundle: bundle,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}
