package service

import (
	"context"
	"fmt"
	"math"

	"github.com/sidj/calorie-meter/internal/database"
	"github.com/sidj/calorie-meter/internal/models"
)

// Targets are the daily goals the home screen tracks against.
type Targets struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
}

// Hard defaults used until the user saves their own targets.
var defaultTargets = Targets{
	ProteinG: 120,
	CarbsG:   160,
	FatG:     60,
	FiberG:   25,
}

// CaloriesFromMacros derives calories with the 4/4/9 rule, rounded to
// the nearest integer.
func CaloriesFromMacros(proteinG, carbsG, fatG float64) int {
	return int(math.Round(4*proteinG + 4*carbsG + 9*fatG))
}

// TargetsService stores the per-installation daily targets on the
// app_setting singleton.
type TargetsService struct {
	store *database.Store
}

// NewTargetsService creates a new TargetsService instance.
func NewTargetsService(store *database.Store) *TargetsService {
	return &TargetsService{store: store}
}

// Get returns the stored targets merged over the hard defaults. When no
// calorie target is stored it is derived from the merged macros and the
// backfilled value is persisted.
func (s *TargetsService) Get(ctx context.Context) (Targets, error) {
	setting, err := s.store.Settings(ctx)
	if err != nil {
		return Targets{}, err
	}

	t := defaultTargets
	if setting.TargetProteinG != nil {
		t.ProteinG = *setting.TargetProteinG
	}
	if setting.TargetCarbsG != nil {
		t.CarbsG = *setting.TargetCarbsG
	}
	if setting.TargetFatG != nil {
		t.FatG = *setting.TargetFatG
	}
	if setting.TargetFiberG != nil {
		t.FiberG = *setting.TargetFiberG
	}

	if setting.TargetCalories != nil {
		t.Calories = *setting.TargetCalories
		return t, nil
	}

	t.Calories = CaloriesFromMacros(t.ProteinG, t.CarbsG, t.FatG)
	db, err := s.store.DB(ctx)
	if err != nil {
		return Targets{}, err
	}
	if err := db.Model(&models.AppSetting{}).
		Where("id = ?", setting.ID).
		Update("target_calories", t.Calories).Error; err != nil {
		return Targets{}, fmt.Errorf("backfill calorie target: %w", err)
	}
	s.store.Persist(ctx)
	return t, nil
}

// SaveTargetsInput carries a full replacement set of targets. Calories
// is optional; when nil it is derived from the macros.
type SaveTargetsInput struct {
	ProteinG float64
	CarbsG   float64
	FatG     float64
	FiberG   float64
	Calories *int
}

// Save coerces all fields to non-negative numbers and replaces the
// stored targets wholesale.
func (s *TargetsService) Save(ctx context.Context, in SaveTargetsInput) (Targets, error) {
	t := Targets{
		ProteinG: coerceNonNegative(in.ProteinG),
		CarbsG:   coerceNonNegative(in.CarbsG),
		FatG:     coerceNonNegative(in.FatG),
		FiberG:   coerceNonNegative(in.FiberG),
	}
	if in.Calories != nil {
		t.Calories = *in.Calories
		if t.Calories < 0 {
			t.Calories = 0
		}
	} else {
		t.Calories = CaloriesFromMacros(t.ProteinG, t.CarbsG, t.FatG)
	}

	setting, err := s.store.Settings(ctx)
	if err != nil {
		return Targets{}, err
	}
	db, err := s.store.DB(ctx)
	if err != nil {
		return Targets{}, err
	}
	if err := db.Model(&models.AppSetting{}).
		Where("id = ?", setting.ID).
		Updates(map[string]any{
			"target_protein_g": t.ProteinG,
			"target_carbs_g":   t.CarbsG,
			"target_fat_g":     t.FatG,
			"target_fiber_g":   t.FiberG,
			"target_calories":  t.Calories,
		}).Error; err != nil {
		return Targets{}, fmt.Errorf("save targets: %w", err)
	}
	s.store.Persist(ctx)
	return t, nil
}

func coerceNonNegative(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return v
}
