// Package models defines the persisted entities. Timestamps are unix
// milliseconds and macros are integer milligrams; grams appear only at
// the service boundary.
package models

// Profile scopes all other entities. Exactly one row is auto-created on
// first use.
type Profile struct {
	ID        string `gorm:"primaryKey" json:"id"`
	Name      string `gorm:"not null" json:"name"`
	CreatedAt int64  `gorm:"column:created_at;not null" json:"created_at"`
}

func (Profile) TableName() string { return "profile" }

// AppSetting is the installation singleton: day-boundary configuration
// plus the daily targets. Target columns are nullable so unset fields
// fall through to the hard defaults.
type AppSetting struct {
	ID              int    `gorm:"primaryKey" json:"id"`
	DayBoundaryHour int    `gorm:"not null" json:"day_boundary_hour"`
	Timezone        string `gorm:"not null" json:"timezone"`

	TargetProteinG *float64 `gorm:"column:target_protein_g" json:"target_protein_g,omitempty"`
	TargetCarbsG   *float64 `gorm:"column:target_carbs_g" json:"target_carbs_g,omitempty"`
	TargetFatG     *float64 `gorm:"column:target_fat_g" json:"target_fat_g,omitempty"`
	TargetFiberG   *float64 `gorm:"column:target_fiber_g" json:"target_fiber_g,omitempty"`
	TargetCalories *int     `gorm:"column:target_calories" json:"target_calories,omitempty"`
}

func (AppSetting) TableName() string { return "app_setting" }

// Recipe is the nutrition total for one fixed weight of a prepared dish,
// not a per-100g value.
type Recipe struct {
	ID           string `gorm:"primaryKey" json:"id"`
	ProfileID    string `gorm:"not null;index:idx_recipe_profile_name,priority:1" json:"profile_id"`
	Name         string `gorm:"not null;index:idx_recipe_profile_name,priority:2" json:"name"`
	TotalWeightG int    `gorm:"column:total_weight_g;not null" json:"total_weight_g"`
	Calories     int    `gorm:"not null" json:"calories"`
	ProteinMg    int64  `gorm:"column:protein_mg;not null" json:"protein_mg"`
	CarbsMg      int64  `gorm:"column:carbs_mg;not null" json:"carbs_mg"`
	FatMg        int64  `gorm:"column:fat_mg;not null" json:"fat_mg"`
	FiberMg      int64  `gorm:"column:fiber_mg;not null;default:0" json:"fiber_mg"`
	Version      int    `gorm:"not null" json:"version"`
	CreatedAt    int64  `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt    int64  `gorm:"column:updated_at;not null" json:"updated_at"`
}

func (Recipe) TableName() string { return "recipe" }

// DiaryEntry is one logging event. The macro fields are a frozen snapshot
// scaled from the recipe at creation time; Label copies the recipe name
// so a day view needs no join. DiaryDayLocal is derived from LoggedAtUTC
// and repaired on read whenever the two disagree.
type DiaryEntry struct {
	ID            string   `gorm:"primaryKey" json:"id"`
	ProfileID     string   `gorm:"not null;index:idx_diary_day,priority:1;index:idx_diary_logged,priority:1" json:"profile_id"`
	LoggedAtUTC   int64    `gorm:"column:logged_at_utc;not null;index:idx_diary_logged,priority:2" json:"logged_at_utc"`
	RecipeID      *string  `gorm:"column:recipe_id" json:"recipe_id,omitempty"`
	Label         *string  `json:"label,omitempty"`
	AmountWeightG *float64 `gorm:"column:amount_weight_g" json:"amount_weight_g,omitempty"`
	Calories      int      `gorm:"not null" json:"calories"`
	ProteinMg     int64    `gorm:"column:protein_mg;not null" json:"protein_mg"`
	CarbsMg       int64    `gorm:"column:carbs_mg;not null" json:"carbs_mg"`
	FatMg         int64    `gorm:"column:fat_mg;not null" json:"fat_mg"`
	FiberMg       int64    `gorm:"column:fiber_mg;not null;default:0" json:"fiber_mg"`
	DiaryDayLocal string   `gorm:"column:diary_day_local;not null;index:idx_diary_day,priority:2" json:"diary_day_local"`
	CreatedAt     int64    `gorm:"column:created_at;not null" json:"created_at"`
}

func (DiaryEntry) TableName() string { return "diary_entry" }
