package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/sidj/calorie-meter/internal/clock"
	"github.com/sidj/calorie-meter/internal/database"
	"github.com/sidj/calorie-meter/internal/models"
)

// DiaryService creates, lists and edits diary entries.
type DiaryService struct {
	store *database.Store
}

// NewDiaryService creates a new DiaryService instance.
func NewDiaryService(store *database.Store) *DiaryService {
	return &DiaryService{store: store}
}

// Totals is a day's accumulated nutrition, in display units.
type Totals struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
}

// AddEntryFromRecipe logs an eaten weight of a recipe. The entry's macro
// fields are the recipe's totals scaled by eatenGrams over the recipe's
// total weight, each rounded independently to the nearest integer, and
// the recipe name is frozen into the label at creation time.
func (s *DiaryService) AddEntryFromRecipe(ctx context.Context, profileID, recipeID string, eatenGrams float64, loggedAt time.Time) (*models.DiaryEntry, error) {
	db, err := s.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	var recipe models.Recipe
	if err := db.First(&recipe, "id = ?", recipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe %s: %w", recipeID, ErrNotFound)
		}
		return nil, fmt.Errorf("load recipe: %w", err)
	}
	if err := validateWeight(eatenGrams); err != nil {
		return nil, err
	}

	profileID, err = resolveProfileID(db, profileID)
	if err != nil {
		return nil, err
	}
	setting, err := s.store.Settings(ctx)
	if err != nil {
		return nil, err
	}

	scale := eatenGrams / float64(recipe.TotalWeightG)
	label := recipe.Name
	entry := models.DiaryEntry{
		ID:            uuid.NewString(),
		ProfileID:     profileID,
		LoggedAtUTC:   loggedAt.UnixMilli(),
		RecipeID:      &recipe.ID,
		Label:         &label,
		AmountWeightG: &eatenGrams,
		Calories:      scaledCalories(recipe.Calories, scale),
		ProteinMg:     scaledMg(recipe.ProteinMg, scale),
		CarbsMg:       scaledMg(recipe.CarbsMg, scale),
		FatMg:         scaledMg(recipe.FatMg, scale),
		FiberMg:       scaledMg(recipe.FiberMg, scale),
		DiaryDayLocal: clock.DiaryDay(loggedAt.UnixMilli(), setting.DayBoundaryHour, location(setting.Timezone)),
		CreatedAt:     time.Now().UnixMilli(),
	}
	if err := db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("create diary entry: %w", err)
	}
	s.store.Persist(ctx)
	return &entry, nil
}

// ListByDay returns the given diary day's entries, most recently created
// first. This is a self-healing read: before filtering it walks every
// stored entry of the profile, backfills empty labels from the source
// recipe and recomputes diary_day_local from logged_at_utc with the
// current boundary settings, persisting any repairs before returning.
// The repair pass is a fixed point: a second read performs no further
// mutation.
func (s *DiaryService) ListByDay(ctx context.Context, profileID, day string) ([]models.DiaryEntry, error) {
	db, err := s.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	profileID, err = resolveProfileID(db, profileID)
	if err != nil {
		return nil, err
	}
	setting, err := s.store.Settings(ctx)
	if err != nil {
		return nil, err
	}
	loc := location(setting.Timezone)

	var entries []models.DiaryEntry
	if err := db.
		Where("profile_id = ?", profileID).
		Order("created_at DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list diary entries: %w", err)
	}

	repaired := false
	for i := range entries {
		if s.repairEntry(db, &entries[i], setting.DayBoundaryHour, loc) {
			if err := db.Save(&entries[i]).Error; err != nil {
				return nil, fmt.Errorf("persist repaired entry %s: %w", entries[i].ID, err)
			}
			repaired = true
		}
	}
	if repaired {
		s.store.Persist(ctx)
	}

	result := make([]models.DiaryEntry, 0, len(entries))
	for _, e := range entries {
		if e.DiaryDayLocal == day {
			result = append(result, e)
		}
	}
	return result, nil
}

// repairEntry fixes stale denormalized fields in place and reports
// whether anything changed.
func (s *DiaryService) repairEntry(db *gorm.DB, e *models.DiaryEntry, boundaryHour int, loc *time.Location) bool {
	changed := false

	if (e.Label == nil || *e.Label == "") && e.RecipeID != nil {
		var recipe models.Recipe
		if err := db.First(&recipe, "id = ?", *e.RecipeID).Error; err == nil {
			label := recipe.Name
			e.Label = &label
			changed = true
		}
	}

	if expected := clock.DiaryDay(e.LoggedAtUTC, boundaryHour, loc); e.DiaryDayLocal != expected {
		e.DiaryDayLocal = expected
		changed = true
	}

	return changed
}

// Today returns the current diary day for the stored boundary settings
// together with its (repaired) entries.
func (s *DiaryService) Today(ctx context.Context, profileID string) (string, []models.DiaryEntry, error) {
	setting, err := s.store.Settings(ctx)
	if err != nil {
		return "", nil, err
	}
	day := clock.Today(setting.DayBoundaryHour, location(setting.Timezone))
	entries, err := s.ListByDay(ctx, profileID, day)
	if err != nil {
		return "", nil, err
	}
	return day, entries, nil
}

// UpdateEntryWeight rescales an entry to a new eaten weight using the
// source recipe's CURRENT totals, not the snapshot frozen at creation.
// Editing grams on an old entry therefore uses today's recipe
// definition. logged_at_utc and diary_day_local never change here.
func (s *DiaryService) UpdateEntryWeight(ctx context.Context, id string, newGrams float64) (*models.DiaryEntry, error) {
	if err := validateWeight(newGrams); err != nil {
		return nil, err
	}
	db, err := s.store.DB(ctx)
	if err != nil {
		return nil, err
	}

	var entry models.DiaryEntry
	if err := db.First(&entry, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("diary entry %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("load diary entry: %w", err)
	}
	if entry.RecipeID == nil {
		return nil, fmt.Errorf("%w: entry was not created from a recipe", ErrUnsupported)
	}

	var recipe models.Recipe
	if err := db.First(&recipe, "id = ?", *entry.RecipeID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe %s: %w", *entry.RecipeID, ErrNotFound)
		}
		return nil, fmt.Errorf("load recipe: %w", err)
	}

	scale := newGrams / float64(recipe.TotalWeightG)
	entry.AmountWeightG = &newGrams
	entry.Calories = scaledCalories(recipe.Calories, scale)
	entry.ProteinMg = scaledMg(recipe.ProteinMg, scale)
	entry.CarbsMg = scaledMg(recipe.CarbsMg, scale)
	entry.FatMg = scaledMg(recipe.FatMg, scale)
	entry.FiberMg = scaledMg(recipe.FiberMg, scale)

	if err := db.Save(&entry).Error; err != nil {
		return nil, fmt.Errorf("update diary entry: %w", err)
	}
	s.store.Persist(ctx)
	return &entry, nil
}

// DeleteEntry removes an entry and reports whether a record was actually
// removed. Deleting an absent id is not an error.
func (s *DiaryService) DeleteEntry(ctx context.Context, id string) (bool, error) {
	db, err := s.store.DB(ctx)
	if err != nil {
		return false, err
	}
	res := db.Delete(&models.DiaryEntry{}, "id = ?", id)
	if res.Error != nil {
		return false, fmt.Errorf("delete diary entry: %w", res.Error)
	}
	removed := res.RowsAffected > 0
	if removed {
		s.store.Persist(ctx)
	}
	return removed, nil
}

// SumTotals accumulates the stored per-entry snapshots. It never
// re-derives values from recipes; milligrams convert to grams only here
// at the boundary.
func SumTotals(entries []models.DiaryEntry) Totals {
	var calories int
	var proteinMg, carbsMg, fatMg, fiberMg int64
	for _, e := range entries {
		calories += e.Calories
		proteinMg += e.ProteinMg
		carbsMg += e.CarbsMg
		fatMg += e.FatMg
		fiberMg += e.FiberMg
	}
	return Totals{
		Calories: calories,
		ProteinG: grams(proteinMg),
		CarbsG:   grams(carbsMg),
		FatG:     grams(fatMg),
		FiberG:   grams(fiberMg),
	}
}

func validateWeight(g float64) error {
	if math.IsNaN(g) || math.IsInf(g, 0) || g <= 0 {
		return fmt.Errorf("%w: weight must be a positive number of grams", ErrInvalidArgument)
	}
	return nil
}
