package service_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sidj/calorie-meter/internal/service"
)

func TestCreateRecipeStoresMilligrams(t *testing.T) {
	store := newTestStore(t)
	recipes := service.NewRecipeService(store)

	recipe := mustCreateRecipe(t, recipes, service.CreateRecipeInput{
		Name:         "Dal Tadka",
		TotalWeightG: 1000,
		Calories:     2000,
		ProteinG:     100,
		CarbsG:       250.5,
		FatG:         60,
		FiberG:       30,
	})

	assert.NotEmpty(t, recipe.ID)
	assert.Equal(t, 1, recipe.Version)
	assert.Equal(t, recipe.CreatedAt, recipe.UpdatedAt)
	assert.Equal(t, defaultProfile(t, store).ID, recipe.ProfileID)
	assert.Equal(t, int64(100000), recipe.ProteinMg)
	assert.Equal(t, int64(250500), recipe.CarbsMg)
	assert.Equal(t, int64(60000), recipe.FatMg)
	assert.Equal(t, int64(30000), recipe.FiberMg)
}

func TestCreateRecipeValidation(t *testing.T) {
	store := newTestStore(t)
	recipes := service.NewRecipeService(store)
	ctx := context.Background()

	cases := []struct {
		name string
		in   service.CreateRecipeInput
	}{
		{"empty name", service.CreateRecipeInput{Name: "  ", TotalWeightG: 100}},
		{"zero weight", service.CreateRecipeInput{Name: "x", TotalWeightG: 0}},
		{"negative weight", service.CreateRecipeInput{Name: "x", TotalWeightG: -5}},
		{"negative calories", service.CreateRecipeInput{Name: "x", TotalWeightG: 100, Calories: -1}},
		{"negative macro", service.CreateRecipeInput{Name: "x", TotalWeightG: 100, ProteinG: -0.1}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := recipes.Create(ctx, "", tc.in)
			assert.ErrorIs(t, err, service.ErrInvalidArgument)
		})
	}
}

func TestUpdateRecipeMergesOnlyProvidedFields(t *testing.T) {
	store := newTestStore(t)
	recipes := service.NewRecipeService(store)
	ctx := context.Background()

	recipe := mustCreateRecipe(t, recipes, service.CreateRecipeInput{
		Name: "Poha", TotalWeightG: 400, Calories: 600, ProteinG: 12, CarbsG: 110, FatG: 14,
	})

	newCalories := 650
	updated, err := recipes.Update(ctx, recipe.ID, service.UpdateRecipeInput{Calories: &newCalories})
	require.NoError(t, err)

	assert.Equal(t, 650, updated.Calories)
	assert.Equal(t, "Poha", updated.Name)
	assert.Equal(t, 400, updated.TotalWeightG)
	assert.Equal(t, int64(12000), updated.ProteinMg)
	assert.Equal(t, 2, updated.Version)
	assert.Equal(t, recipe.CreatedAt, updated.CreatedAt)
	assert.GreaterOrEqual(t, updated.UpdatedAt, recipe.UpdatedAt)
	assert.Equal(t, recipe.ID, updated.ID)
	assert.Equal(t, recipe.ProfileID, updated.ProfileID)
}

func TestUpdateRecipeNotFound(t *testing.T) {
	store := newTestStore(t)
	recipes := service.NewRecipeService(store)

	name := "renamed"
	_, err := recipes.Update(context.Background(), "missing-id", service.UpdateRecipeInput{Name: &name})
	assert.ErrorIs(t, err, service.ErrNotFound)
}

func TestListRecipesOrdersByRecency(t *testing.T) {
	store := newTestStore(t)
	recipes := service.NewRecipeService(store)
	ctx := context.Background()

	first := mustCreateRecipe(t, recipes, service.CreateRecipeInput{Name: "Aloo Gobi", TotalWeightG: 500, Calories: 700})
	second := mustCreateRecipe(t, recipes, service.CreateRecipeInput{Name: "Zucchini Bake", TotalWeightG: 300, Calories: 400})

	// Touching the older recipe moves it back to the front.
	time.Sleep(2 * time.Millisecond)
	newCalories := 710
	_, err := recipes.Update(ctx, first.ID, service.UpdateRecipeInput{Calories: &newCalories})
	require.NoError(t, err)

	list, err := recipes.List(ctx, "")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)
}

func TestSearchRecipesIsAlphabeticalAndCaseInsensitive(t *testing.T) {
	store := newTestStore(t)
	recipes := service.NewRecipeService(store)
	ctx := context.Background()

	for _, name := range []string{"Paneer Tikka", "chicken curry", "Chana Masala", "paneer bhurji"} {
		mustCreateRecipe(t, recipes, service.CreateRecipeInput{Name: name, TotalWeightG: 100, Calories: 100})
	}

	found, err := recipes.Search(ctx, "", "PANEER")
	require.NoError(t, err)
	require.Len(t, found, 2)
	// Alphabetical, unlike List's recency order.
	assert.Equal(t, "paneer bhurji", found[0].Name)
	assert.Equal(t, "Paneer Tikka", found[1].Name)

	found, err = recipes.Search(ctx, "", "an")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Chana Masala", found[0].Name)
	assert.Equal(t, "chicken curry", found[1].Name)
}

func TestSearchRecipesCapsResults(t *testing.T) {
	store := newTestStore(t)
	recipes := service.NewRecipeService(store)

	for i := 0; i < 55; i++ {
		mustCreateRecipe(t, recipes, service.CreateRecipeInput{
			Name: fmt.Sprintf("Meal %02d", i), TotalWeightG: 100, Calories: 100,
		})
	}

	found, err := recipes.Search(context.Background(), "", "meal")
	require.NoError(t, err)
	assert.Len(t, found, 50)
}

func TestGetByIDAbsent(t *testing.T) {
	store := newTestStore(t)
	recipes := service.NewRecipeService(store)

	_, err := recipes.GetByID(context.Background(), "nope")
	assert.ErrorIs(t, err, service.ErrNotFound)
}
