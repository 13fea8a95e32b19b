package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidj/calorie-meter/internal/service"
)

func TestExportImportReplaceRoundtrip(t *testing.T) {
	source := newTestStore(t)
	recipes := service.NewRecipeService(source)
	diary := service.NewDiaryService(source)
	targets := service.NewTargetsService(source)
	ctx := context.Background()

	recipe := mustCreateRecipe(t, recipes, service.CreateRecipeInput{
		Name: "Sambar", TotalWeightG: 600, Calories: 540, ProteinG: 24,
	})
	entry, err := diary.AddEntryFromRecipe(ctx, "", recipe.ID, 200, time.Date(2024, 5, 20, 12, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	_, err = targets.Save(ctx, service.SaveTargetsInput{ProteinG: 130, CarbsG: 170, FatG: 55, FiberG: 28})
	require.NoError(t, err)

	bundle, err := service.NewBackupService(source).Export(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, bundle.Version)
	require.Len(t, bundle.Profiles, 1)
	require.Len(t, bundle.Recipes, 1)
	require.Len(t, bundle.Entries, 1)

	// Restore into a completely separate installation.
	dest := newTestStore(t)
	require.NoError(t, service.NewBackupService(dest).Import(ctx, bundle, true))

	restoredRecipe, err := service.NewRecipeService(dest).GetByID(ctx, recipe.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sambar", restoredRecipe.Name)
	assert.Equal(t, int64(24000), restoredRecipe.ProteinMg)

	restoredEntries, err := service.NewDiaryService(dest).ListByDay(ctx, "", entry.DiaryDayLocal)
	require.NoError(t, err)
	require.Len(t, restoredEntries, 1)
	assert.Equal(t, entry.ID, restoredEntries[0].ID)
	assert.Equal(t, entry.Calories, restoredEntries[0].Calories)

	restoredTargets, err := service.NewTargetsService(dest).Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, 130.0, restoredTargets.ProteinG)
	assert.Equal(t, 28.0, restoredTargets.FiberG)
}

func TestImportReplacesExistingState(t *testing.T) {
	store := newTestStore(t)
	recipes := service.NewRecipeService(store)
	backup := service.NewBackupService(store)
	ctx := context.Background()

	mustCreateRecipe(t, recipes, service.CreateRecipeInput{Name: "Old", TotalWeightG: 100, Calories: 100})
	bundle, err := backup.Export(ctx)
	require.NoError(t, err)

	mustCreateRecipe(t, recipes, service.CreateRecipeInput{Name: "Added After Export", TotalWeightG: 100, Calories: 100})

	require.NoError(t, backup.Import(ctx, bundle, true))

	list, err := recipes.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Old", list[0].Name)
}

func TestImportMergeUnsupported(t *testing.T) {
	store := newTestStore(t)
	backup := service.NewBackupService(store)

	err := backup.Import(context.Background(), &service.Bundle{Version: 1}, false)
	assert.ErrorIs(t, err, service.ErrUnsupported)
}

func TestImportNilBundle(t *testing.T) {
	store := newTestStore(t)
	backup := service.NewBackupService(store)

	err := backup.Import(context.Background(), nil, true)
	assert.ErrorIs(t, err, service.ErrInvalidArgument)
}
