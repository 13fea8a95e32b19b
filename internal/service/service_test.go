package service_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sidj/calorie-meter/config"
	"github.com/sidj/calorie-meter/internal/blob"
	"github.com/sidj/calorie-meter/internal/database"
	"github.com/sidj/calorie-meter/internal/models"
	"github.com/sidj/calorie-meter/internal/service"
)

// newTestStore opens a store over a temp-dir file backend, seeded with
// a 02:00 UTC day boundary.
func newTestStore(t *testing.T) *database.Store {
	t.Helper()
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
	return store
}

func defaultProfile(t *testing.T, store *database.Store) models.Profile {
	t.Helper()
	db, err := store.DB(context.Background())
	require.NoError(t, err)
	var profile models.Profile
	require.NoError(t, db.First(&profile).Error)
	return profile
}

func mustCreateRecipe(t *testing.T, recipes *service.RecipeService, in service.CreateRecipeInput) *models.Recipe {
	t.Helper()
	recipe, err := recipes.Create(context.Background(), "", in)
	require.NoError(t, err)
	return recipe
}
