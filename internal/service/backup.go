package service

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/sidj/calorie-meter/internal/database"
	"github.com/sidj/calorie-meter/internal/models"
)

// Bundle is a full snapshot of the logical state: profiles, settings
// (which carry the targets), recipes and diary entries, ids included.
// An exported bundle imported in replace mode reproduces identical
// state.
type Bundle struct {
	Version    int                 `json:"version"`
	ExportedAt int64               `json:"exported_at"`
	Profiles   []models.Profile    `json:"profiles"`
	Settings   models.AppSetting   `json:"settings"`
	Recipes    []models.Recipe     `json:"recipes"`
	Entries    []models.DiaryEntry `json:"entries"`
}

// BackupService produces and consumes snapshot bundles for the backup
// surface.
type BackupService struct {
	store *database.Store
}

// NewBackupService creates a new BackupService instance.
func NewBackupService(store *database.Store) *BackupService {
	return &BackupService{store: store}
}

// Export collects every record into a bundle.
func (s *BackupService) Export(ctx context.Context) (*Bundle, error) {
	db, err := s.store.DB(ctx)
	if err != nil {
		return nil, err
	}
	setting, err := s.store.Settings(ctx)
	if err != nil {
		return nil, err
	}

	bundle := &Bundle{
		Version:    1,
		ExportedAt: time.Now().UnixMilli(),
		Settings:   *setting,
	}
	if err := db.Order("created_at ASC").Find(&bundle.Profiles).Error; err != nil {
		return nil, fmt.Errorf("export profiles: %w", err)
	}
	if err := db.Order("created_at ASC").Find(&bundle.Recipes).Error; err != nil {
		return nil, fmt.Errorf("export recipes: %w", err)
	}
	if err := db.Order("created_at ASC").Find(&bundle.Entries).Error; err != nil {
		return nil, fmt.Errorf("export diary entries: %w", err)
	}
	return bundle, nil
}

// Import restores a bundle. Only replace mode is supported: existing
// state is wiped and the bundle's records are inserted with their
// original ids. Merge semantics belong to the external backup layer.
func (s *BackupService) Import(ctx context.Context, bundle *Bundle, replace bool) error {
	if !replace {
		return fmt.Errorf("%w: merge import is not supported", ErrUnsupported)
	}
	if bundle == nil {
		return fmt.Errorf("%w: bundle is required", ErrInvalidArgument)
	}

	db, err := s.store.DB(ctx)
	if err != nil {
		return err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		for _, table := range []string{"diary_entry", "recipe", "profile", "app_setting"} {
			if err := tx.Exec("DELETE FROM " + table).Error; err != nil {
				return fmt.Errorf("clear %s: %w", table, err)
			}
		}

		settings := bundle.Settings
		if settings.ID == 0 {
			settings.ID = 1
		}
		if err := tx.Create(&settings).Error; err != nil {
			return fmt.Errorf("import settings: %w", err)
		}
		if len(bundle.Profiles) > 0 {
			if err := tx.Create(&bundle.Profiles).Error; err != nil {
				return fmt.Errorf("import profiles: %w", err)
			}
		}
		if len(bundle.Recipes) > 0 {
			if err := tx.Create(&bundle.Recipes).Error; err != nil {
				return fmt.Errorf("import recipes: %w", err)
			}
		}
		if len(bundle.Entries) > 0 {
			if err := tx.Create(&bundle.Entries).Error; err != nil {
				return fmt.Errorf("import diary entries: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.store.Persist(ctx)
	return nil
}
