package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sidj/calorie-meter/internal/database"
	"github.com/sidj/calorie-meter/internal/models"
)

const (
	listRecipesLimit   = 200
	searchRecipesLimit = 50
)

// RecipeService handles recipe CRUD and search.
type RecipeService struct {
	store *database.Store
}

// NewRecipeService creates a new RecipeService instance.
func NewRecipeService(store *database.Store) *RecipeService {
	return &RecipeService{store: store}
}

// CreateRecipeInput carries creation fields. Macros are grams; they are
// stored as integer milligrams.
type CreateRecipeInput struct {
	Name         string
	TotalWeightG int
	Calories     int
	ProteinG     float64
	CarbsG       float64
	FatG         float64
	FiberG       float64
}

// UpdateRecipeInput patches a recipe; nil fields are left untouched.
type UpdateRecipeInput struct {
	Name         *string
	TotalWeightG *int
	Calories     *int
	ProteinG     *float64
	CarbsG       *float64
	FatG         *float64
	FiberG       *float64
}

// Create validates and stores a new recipe, returning it with id,
// version 1 and both timestamps set.
func (s *RecipeService) Create(ctx context.Context, profileID string, in CreateRecipeInput) (*models.Recipe, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: recipe name is required", ErrInvalidArgument)
	}
	if in.TotalWeightG <= 0 {
		return nil, fmt.Errorf("%w: total weight must be positive", ErrInvalidArgument)
	}
	if in.Calories < 0 {
		return nil, fmt.Errorf("%w: calories must not be negative", ErrInvalidArgument)
	}
	if in.ProteinG < 0 || in.CarbsG < 0 || in.FatG < 0 || in.FiberG < 0 {
		return nil, fmt.Errorf("%w: macros must not be negative", ErrInvalidArgument)
	}

	db, err := s.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	profileID, err = resolveProfileID(db, profileID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UnixMilli()
	recipe := models.Recipe{
		ID:           uuid.NewString(),
		ProfileID:    profileID,
		Name:         in.Name,
		TotalWeightG: in.TotalWeightG,
		Calories:     in.Calories,
		ProteinMg:    milligrams(in.ProteinG),
		CarbsMg:      milligrams(in.CarbsG),
		FatMg:        milligrams(in.FatG),
		FiberMg:      milligrams(in.FiberG),
		Version:      1,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := db.Create(&recipe).Error; err != nil {
		return nil, fmt.Errorf("create recipe: %w", err)
	}
	s.store.Persist(ctx)
	return &recipe, nil
}

// Update merges the provided fields into an existing recipe and bumps
// updated_at and version. Id, profile and created_at never change.
// Diary entries created from the old definition keep their snapshot.
func (s *RecipeService) Update(ctx context.Context, id string, in UpdateRecipeInput) (*models.Recipe, error) {
	db, err := s.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	var recipe models.Recipe
	if err := db.First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("load recipe: %w", err)
	}

	if in.Name != nil {
		name := strings.TrimSpace(*in.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: recipe name is required", ErrInvalidArgument)
		}
		recipe.Name = name
	}
	if in.TotalWeightG != nil {
		if *in.TotalWeightG <= 0 {
			return nil, fmt.Errorf("%w: total weight must be positive", ErrInvalidArgument)
		}
		recipe.TotalWeightG = *in.TotalWeightG
	}
	if in.Calories != nil {
		if *in.Calories < 0 {
			return nil, fmt.Errorf("%w: calories must not be negative", ErrInvalidArgument)
		}
		recipe.Calories = *in.Calories
	}
	for _, m := range []struct {
		g  *float64
		mg *int64
	}{
		{in.ProteinG, &recipe.ProteinMg},
		{in.CarbsG, &recipe.CarbsMg},
		{in.FatG, &recipe.FatMg},
		{in.FiberG, &recipe.FiberMg},
	} {
		if m.g == nil {
			continue
		}
		if *m.g < 0 {
			return nil, fmt.Errorf("%w: macros must not be negative", ErrInvalidArgument)
		}
		*m.mg = milligrams(*m.g)
	}

	recipe.Version++
	recipe.UpdatedAt = time.Now().UnixMilli()
	if err := db.Save(&recipe).Error; err != nil {
		return nil, fmt.Errorf("update recipe: %w", err)
	}
	s.store.Persist(ctx)
	return &recipe, nil
}

// GetByID retrieves a recipe by id.
func (s *RecipeService) GetByID(ctx context.Context, id string) (*models.Recipe, error) {
	db, err := s.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	var recipe models.Recipe
	if err := db.First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("load recipe: %w", err)
	}
	return &recipe, nil
}

// List returns the profile's recipes, most recently updated first,
// capped at 200 rows. Browse favours recency.
func (s *RecipeService) List(ctx context.Context, profileID string) ([]models.Recipe, error) {
	db, err := s.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	profileID, err = resolveProfileID(db, profileID)
	if err != nil {
		return nil, err
	}
	var recipes []models.Recipe
	if err := db.
		Where("profile_id = ?", profileID).
		Order("updated_at DESC").
		Limit(listRecipesLimit).
		Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("list recipes: %w", err)
	}
	return recipes, nil
}

// Search returns recipes whose name contains the query
// (case-insensitive), alphabetically, capped at 50 rows. Search favours
// predictable alphabetical scanning, unlike List.
func (s *RecipeService) Search(ctx context.Context, profileID, query string) ([]models.Recipe, error) {
	db, err := s.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	profileID, err = resolveProfileID(db, profileID)
	if err != nil {
		return nil, err
	}
	like := "%" + strings.ToLower(strings.TrimSpace(query)) + "%"
	var recipes []models.Recipe
	if err := db.
		Where("profile_id = ? AND LOWER(name) LIKE ?", profileID, like).
		Order("name COLLATE NOCASE ASC").
		Limit(searchRecipesLimit).
		Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("search recipes: %w", err)
	}
	return recipes, nil
}
