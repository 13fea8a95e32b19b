package api

import (
	"github.com/sidj/calorie-meter/internal/models"
	"github.com/sidj/calorie-meter/internal/service"
)

// The wire types speak grams; milligram storage stays internal.

type RecipeRequest struct {
	Name         string  `json:"name"`
	TotalWeightG int     `json:"total_weight_g"`
	Calories     int     `json:"calories"`
	ProteinG     float64 `json:"protein_g"`
	CarbsG       float64 `json:"carbs_g"`
	FatG         float64 `json:"fat_g"`
	FiberG       float64 `json:"fiber_g"`
}

type RecipeUpdateRequest struct {
	Name         *string  `json:"name"`
	TotalWeightG *int     `json:"total_weight_g"`
	Calories     *int     `json:"calories"`
	ProteinG     *float64 `json:"protein_g"`
	CarbsG       *float64 `json:"carbs_g"`
	FatG         *float64 `json:"fat_g"`
	FiberG       *float64 `json:"fiber_g"`
}

type RecipeResponse struct {
	ID           string  `json:"id"`
	ProfileID    string  `json:"profile_id"`
	Name         string  `json:"name"`
	TotalWeightG int     `json:"total_weight_g"`
	Calories     int     `json:"calories"`
	ProteinG     float64 `json:"protein_g"`
	CarbsG       float64 `json:"carbs_g"`
	FatG         float64 `json:"fat_g"`
	FiberG       float64 `json:"fiber_g"`
	Version      int     `json:"version"`
	CreatedAt    int64   `json:"created_at"`
	UpdatedAt    int64   `json:"updated_at"`
}

func toRecipeResponse(r *models.Recipe) RecipeResponse {
	return RecipeResponse{
		ID:           r.ID,
		ProfileID:    r.ProfileID,
		Name:         r.Name,
		TotalWeightG: r.TotalWeightG,
		Calories:     r.Calories,
		ProteinG:     float64(r.ProteinMg) / 1000,
		CarbsG:       float64(r.CarbsMg) / 1000,
		FatG:         float64(r.FatMg) / 1000,
		FiberG:       float64(r.FiberMg) / 1000,
		Version:      r.Version,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

type EntryRequest struct {
	ProfileID string  `json:"profile_id"`
	RecipeID  string  `json:"recipe_id"`
	Grams     float64 `json:"grams"`
	// LoggedAtUTC is unix milliseconds; defaults to now.
	LoggedAtUTC *int64 `json:"logged_at_utc"`
}

type EntryWeightRequest struct {
	Grams float64 `json:"grams"`
}

type EntryResponse struct {
	ID            string   `json:"id"`
	ProfileID     string   `json:"profile_id"`
	LoggedAtUTC   int64    `json:"logged_at_utc"`
	RecipeID      *string  `json:"recipe_id,omitempty"`
	Label         *string  `json:"label,omitempty"`
	AmountWeightG *float64 `json:"amount_weight_g,omitempty"`
	Calories      int      `json:"calories"`
	ProteinG      float64  `json:"protein_g"`
	CarbsG        float64  `json:"carbs_g"`
	FatG          float64  `json:"fat_g"`
	FiberG        float64  `json:"fiber_g"`
	DiaryDayLocal string   `json:"diary_day_local"`
	CreatedAt     int64    `json:"created_at"`
}

func toEntryResponse(e *models.DiaryEntry) EntryResponse {
	return EntryResponse{
		ID:            e.ID,
		ProfileID:     e.ProfileID,
		LoggedAtUTC:   e.LoggedAtUTC,
		RecipeID:      e.RecipeID,
		Label:         e.Label,
		AmountWeightG: e.AmountWeightG,
		Calories:      e.Calories,
		ProteinG:      float64(e.ProteinMg) / 1000,
		CarbsG:        float64(e.CarbsMg) / 1000,
		FatG:          float64(e.FatMg) / 1000,
		FiberG:        float64(e.FiberMg) / 1000,
		DiaryDayLocal: e.DiaryDayLocal,
		CreatedAt:     e.CreatedAt,
	}
}

type DayResponse struct {
	Day     string         `json:"day"`
	Entries []EntryResponse `json:"entries"`
	Totals  service.Totals `json:"totals"`
}

func toDayResponse(day string, entries []models.DiaryEntry) DayResponse {
	resp := DayResponse{
		Day:     day,
		Entries: make([]EntryResponse, 0, len(entries)),
		Totals:  service.SumTotals(entries),
	}
	for i := range entries {
		resp.Entries = append(resp.Entries, toEntryResponse(&entries[i]))
	}
	return resp
}

type TargetsRequest struct {
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
	Calories *int    `json:"calories"`
}

type ImportRequest struct {
	Replace bool           `json:"replace"`
	Bundle  service.Bundle `json:"bundle"`
}
