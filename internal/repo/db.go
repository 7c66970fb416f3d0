// Package repo implements the geofence cache: schema, connection lifecycle
// and record persistence, backed by GORM over a pure-Go SQLite driver.
//
// The cache is disposable. Any schema version change drops and recreates the
// table; no data is migrated.
package repo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	sqlite "github.com/glebarez/sqlite"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"
)

var (
	// ErrDowngrade is returned by Open when the file was written by a newer schema.
	ErrDowngrade = errors.New("geofence cache: cannot downgrade schema version")
	// ErrInvalidVersion is returned by Open when the helper version is below 1.
	ErrInvalidVersion = errors.New("geofence cache: schema version must be >= 1")
)

// OpenSQLite opens (or creates) a SQLite database and applies PRAGMAs.
//
// The pool is pinned to a single connection: the cache assumes one logical
// writer, and per-connection PRAGMAs then hold for every statement.
func OpenSQLite(path string) (*gorm.DB, error) {
	// Fail early if parent directory does not exist (instead of sqlite "out of memory (14)" on Windows).
	if dir := filepath.Dir(path); dir != "." {
		if _, err := os.Stat(dir); err != nil {
			return nil, err
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
	}

	db.Exec("PRAGMA journal_mode=WAL;")
	db.Exec("PRAGMA synchronous=NORMAL;")
	db.Exec("PRAGMA busy_timeout=5000;")

	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		log.Warn().Err(err).Msg("geofence cache: tracing plugin not installed")
	}

	return db, nil
}

// DBHelper owns the geofence cache connection and its schema version, which
// is stored in PRAGMA user_version.
//
// Open is lazy and returns the same handle until Close. It is safe for
// concurrent use.
type DBHelper struct {
	Path    string
	Version int

	mu sync.Mutex
	db *gorm.DB
}

// NewDBHelper returns a helper for the cache file at path with the given
// schema version.
func NewDBHelper(path string, version int) *DBHelper {
	return &DBHelper{Path: path, Version: version}
}

// Open returns the cache handle, creating or upgrading the schema on first use.
func (h *DBHelper) Open(ctx context.Context) (*gorm.DB, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.db != nil {
		return h.db, nil
	}
	if h.Version < 1 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidVersion, h.Version)
	}

	db, err := OpenSQLite(h.Path)
	if err != nil {
		return nil, fmt.Errorf("open geofence cache %s: %w", h.Path, err)
	}
	if err := h.prepare(ctx, db); err != nil {
		closeDB(db)
		return nil, err
	}
	h.db = db
	return db, nil
}

// prepare runs OnCreate or OnUpgrade as dictated by the stored version, in a
// single transaction together with the version bump.
func (h *DBHelper) prepare(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := UserVersion(tx)
		if err != nil {
			return err
		}
		switch {
		case current == h.Version:
			return nil
		case current == 0:
			err = h.OnCreate(tx)
		case current < h.Version:
			err = h.OnUpgrade(tx, current, h.Version)
		default:
			return fmt.Errorf("%w: file at v%d, helper at v%d", ErrDowngrade, current, h.Version)
		}
		if err != nil {
			return err
		}
		return tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", h.Version)).Error
	})
}

// OnCreate creates the geofence table. It runs once, when the file is new.
func (h *DBHelper) OnCreate(db *gorm.DB) error {
	if err := db.Exec(CreateGeofenceTableStatement()).Error; err != nil {
		return fmt.Errorf("create geofence table: %w", err)
	}
	log.Info().Str("path", h.Path).Int("version", h.Version).Msg("geofence cache created")
	return nil
}

// OnUpgrade drops and recreates the geofence table regardless of the version
// pair. Every pending geofence notification is discarded.
func (h *DBHelper) OnUpgrade(db *gorm.DB, oldVersion, newVersion int) error {
	if err := db.Exec(DeleteGeofenceTableStatement()).Error; err != nil {
		return fmt.Errorf("drop geofence table: %w", err)
	}
	if err := db.Exec(CreateGeofenceTableStatement()).Error; err != nil {
		return fmt.Errorf("recreate geofence table: %w", err)
	}
	log.Warn().
		Str("path", h.Path).
		Int("old_version", oldVersion).
		Int("new_version", newVersion).
		Msg("geofence cache upgraded; pending notifications discarded")
	return nil
}

// Close releases the handle. Calling Close on a closed helper is a no-op.
func (h *DBHelper) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.db == nil {
		return nil
	}
	err := closeDB(h.db)
	h.db = nil
	return err
}

// UserVersion reads PRAGMA user_version.
func UserVersion(db *gorm.DB) (int, error) {
	var v int
	if err := db.Raw("PRAGMA user_version").Row().Scan(&v); err != nil {
		return 0, fmt.Errorf("read user_version: %w", err)
	}
	return v, nil
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
