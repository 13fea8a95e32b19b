package config

import (
	"os"
	"path/filepath"
	"strconv"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	ListenAddr string

	// Storage configuration
	DataDir     string
	RedisURL    string
	S3Bucket    string
	AWSRegion   string
	SnapshotKey string

	// Diary defaults used when seeding a fresh database
	DayBoundaryHour int
	Timezone        string
	ProfileName     string
}

// Load reads configuration from environment variables, falling back to
// defaults suitable for a single-user local install.
func Load() *Config {
	return &Config{
		ListenAddr:      loadEnv("CALORIE_METER_ADDR", ":8080"),
		DataDir:         loadEnv("CALORIE_METER_DATA_DIR", defaultDataDir()),
		RedisURL:        loadEnv("CALORIE_METER_REDIS_URL", ""),
		S3Bucket:        loadEnv("CALORIE_METER_S3_BUCKET", ""),
		AWSRegion:       loadEnv("AWS_REGION", ""),
		SnapshotKey:     loadEnv("CALORIE_METER_SNAPSHOT_KEY", "calorie-meter-db-bytes-v1"),
		DayBoundaryHour: loadEnvAsInt("CALORIE_METER_DAY_BOUNDARY_HOUR", 2),
		Timezone:        loadEnv("CALORIE_METER_TIMEZONE", "Local"),
		ProfileName:     loadEnv("CALORIE_METER_PROFILE_NAME", "default"),
	}
}

func defaultDataDir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "calorie-meter")
}

func loadEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func loadEnvAsInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
