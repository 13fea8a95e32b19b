package service

import (
	"fmt"
	"log/slog"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/sidj/calorie-meter/internal/models"
)

// milligrams converts a gram value to integer milligrams, rounded to the
// nearest milligram. All macro storage is integer mg to avoid floating
// point drift.
func milligrams(g float64) int64 {
	return int64(math.Round(g * 1000))
}

// grams converts stored milligrams back to grams at the boundary.
func grams(mg int64) float64 {
	return float64(mg) / 1000
}

// scaledMg scales a stored milligram total and rounds to the nearest
// milligram. Each field is rounded independently; no shared rounding
// error correction.
func scaledMg(mg int64, scale float64) int64 {
	return int64(math.Round(float64(mg) * scale))
}

func scaledCalories(calories int, scale float64) int {
	return int(math.Round(float64(calories) * scale))
}

// location resolves the stored timezone label, falling back to the
// system zone when the label is empty or unknown.
func location(name string) *time.Location {
	if name == "" || name == "Local" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("unknown timezone, using system zone", "timezone", name)
		return time.Local
	}
	return loc
}

// resolveProfileID falls back to the oldest (auto-created) profile when
// the caller passes an empty id.
func resolveProfileID(db *gorm.DB, profileID string) (string, error) {
	if profileID != "" {
		return profileID, nil
	}
	var profile models.Profile
	if err := db.Order("created_at ASC").First(&profile).Error; err != nil {
		return "", fmt.Errorf("load default profile: %w", err)
	}
	return profile.ID, nil
}
