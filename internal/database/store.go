// Package database owns the single embedded SQLite instance for the
// process lifetime.
//
// The working database is a plain file in the data directory's runtime
// dir. Durability comes from snapshotting: after every mutation the
// whole file is written to a priority-ordered stack of blob backends
// (local file first, then the optional key-value and object fallbacks),
// and on startup the first backend whose bytes open as a valid database
// wins. If every stored snapshot is unreadable the store falls back to a
// fresh empty database rather than refusing to serve.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/sidj/calorie-meter/config"
	"github.com/sidj/calorie-meter/internal/blob"
	"github.com/sidj/calorie-meter/internal/models"
)

// ErrStorageUnavailable reports that every snapshot backend failed and
// the session is running in-memory only.
var ErrStorageUnavailable = errors.New("storage unavailable")

// Store is the process-wide database handle.
type Store struct {
	cfg      *config.Config
	backends *blob.Stack
	workPath string

	openOnce sync.Once
	openErr  error
	db       *gorm.DB
	sqlDB    *sql.DB

	mu         sync.Mutex
	memoryOnly bool
	degraded   bool
}

// New creates a Store. Nothing is opened until Open, Warmup or the first
// repository call.
func New(cfg *config.Config, backends *blob.Stack) *Store {
	return &Store{
		cfg:      cfg,
		backends: backends,
		workPath: filepath.Join(cfg.DataDir, "runtime", "calorie-meter.db"),
	}
}

// Open initializes the database exactly once. Concurrent callers block
// on the same in-flight initialization and share its result; repeat
// calls return the cached handle's outcome immediately.
func (s *Store) Open(ctx context.Context) error {
	s.openOnce.Do(func() {
		s.openErr = s.initialize(ctx)
	})
	return s.openErr
}

// Warmup kicks off initialization in the background so a later
// user-initiated write doesn't pay the restore latency. Safe to call any
// number of times.
func (s *Store) Warmup(ctx context.Context) {
	go func() {
		if err := s.Open(ctx); err != nil {
			slog.Error("database warmup failed", "error", err)
		}
	}()
}

// DB returns the gorm handle, opening the store if needed.
func (s *Store) DB(ctx context.Context) (*gorm.DB, error) {
	if err := s.Open(ctx); err != nil {
		return nil, err
	}
	return s.db.WithContext(ctx), nil
}

// Settings returns the singleton app_setting row.
func (s *Store) Settings(ctx context.Context) (*models.AppSetting, error) {
	db, err := s.DB(ctx)
	if err != nil {
		return nil, err
	}
	var setting models.AppSetting
	if err := db.First(&setting).Error; err != nil {
		return nil, fmt.Errorf("load app settings: %w", err)
	}
	return &setting, nil
}

// Persist serializes the database and writes it to every backend.
// Failures never surface to the mutation that triggered the call: the
// in-memory state is the source of truth for the session. Once all
// backends have failed the store stops retrying until restart.
func (s *Store) Persist(ctx context.Context) {
	if err := s.Open(ctx); err != nil {
		slog.Warn("persist skipped, store not open", "error", err)
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.memoryOnly {
		return
	}
	data, err := os.ReadFile(s.workPath)
	if err != nil {
		slog.Warn("read working database", "error", err)
		return
	}
	if err := s.backends.Save(ctx, data); err != nil {
		s.memoryOnly = true
		slog.Error("every snapshot backend failed; changes are in-memory only for this session", "error", err)
	}
}

// Health reports ErrStorageUnavailable when the session has degraded to
// in-memory-only operation.
func (s *Store) Health(ctx context.Context) error {
	if err := s.Open(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	memoryOnly := s.memoryOnly
	s.mu.Unlock()
	if memoryOnly {
		return ErrStorageUnavailable
	}
	return s.sqlDB.PingContext(ctx)
}

// Degraded reports whether stored snapshots existed but none were
// usable, i.e. the session started from a fresh empty database.
func (s *Store) Degraded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.degraded
}

// Close persists one final snapshot and releases the handle.
func (s *Store) Close(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	s.Persist(ctx)
	return s.sqlDB.Close()
}

func (s *Store) initialize(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(s.workPath), 0o755); err != nil {
		return fmt.Errorf("create runtime directory: %w", err)
	}

	restored := false
	sawSnapshot := false
	for _, backend := range s.backends.Stores() {
		data, err := backend.Load(ctx)
		if errors.Is(err, blob.ErrNotFound) {
			continue
		}
		if err != nil {
			slog.Warn("snapshot load failed", "backend", backend.Name(), "error", err)
			continue
		}
		sawSnapshot = true
		if err := os.WriteFile(s.workPath, data, 0o600); err != nil {
			slog.Warn("write working database", "backend", backend.Name(), "error", err)
			continue
		}
		db, sqlDB, err := openWorking(s.workPath)
		if err != nil {
			slog.Warn("stored snapshot is not a usable database", "backend", backend.Name(), "error", err)
			continue
		}
		s.db, s.sqlDB = db, sqlDB
		slog.Info("database restored", "backend", backend.Name())
		restored = true
		break
	}

	if !restored {
		if err := os.Remove(s.workPath); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("reset working database: %w", err)
		}
		db, sqlDB, err := openWorking(s.workPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		s.db, s.sqlDB = db, sqlDB
		if sawSnapshot {
			s.mu.Lock()
			s.degraded = true
			s.mu.Unlock()
			slog.Error("all stored snapshots were unreadable, starting with a fresh empty database")
		}
	}

	if err := s.db.AutoMigrate(
		&models.Profile{},
		&models.AppSetting{},
		&models.Recipe{},
		&models.DiaryEntry{},
	); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}

	seeded, err := s.seed()
	if err != nil {
		return err
	}
	if seeded {
		// Fresh installs get a durable snapshot right away; run outside
		// Open's once-guard via the unexported path to avoid re-entry.
		s.persistLocked(ctx)
	}
	return nil
}

// persistLocked is Persist without the Open guard, for use from
// initialize where Open is already in flight.
func (s *Store) persistLocked(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(s.workPath)
	if err != nil {
		slog.Warn("read working database", "error", err)
		return
	}
	if err := s.backends.Save(ctx, data); err != nil {
		s.memoryOnly = true
		slog.Error("every snapshot backend failed; changes are in-memory only for this session", "error", err)
	}
}

// seed guarantees exactly one app_setting row and one profile row.
func (s *Store) seed() (bool, error) {
	seeded := false

	var settings int64
	if err := s.db.Model(&models.AppSetting{}).Count(&settings).Error; err != nil {
		return false, fmt.Errorf("count app settings: %w", err)
	}
	if settings == 0 {
		setting := models.AppSetting{
			ID:              1,
			DayBoundaryHour: s.cfg.DayBoundaryHour,
			Timezone:        s.cfg.Timezone,
		}
		if err := s.db.Create(&setting).Error; err != nil {
			return false, fmt.Errorf("seed app settings: %w", err)
		}
		seeded = true
	}

	var profiles int64
	if err := s.db.Model(&models.Profile{}).Count(&profiles).Error; err != nil {
		return false, fmt.Errorf("count profiles: %w", err)
	}
	if profiles == 0 {
		profile := models.Profile{
			ID:        uuid.NewString(),
			Name:      s.cfg.ProfileName,
			CreatedAt: time.Now().UnixMilli(),
		}
		if err := s.db.Create(&profile).Error; err != nil {
			return false, fmt.Errorf("seed profile: %w", err)
		}
		seeded = true
	}

	return seeded, nil
}

func openWorking(path string) (*gorm.DB, *sql.DB, error) {
	// journal_mode=MEMORY keeps the main file self-contained after each
	// committed transaction, so reading it back yields a complete
	// snapshot with no sidecar WAL.
	dsn := fmt.Sprintf("file:%s?_journal_mode=MEMORY&_busy_timeout=5000", path)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, err
	}
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	// A corrupt file only fails on first real read, not on open.
	var n int64
	if err := db.Raw("SELECT COUNT(*) FROM sqlite_master").Scan(&n).Error; err != nil {
		sqlDB.Close()
		return nil, nil, err
	}
	return db, sqlDB, nil
}
