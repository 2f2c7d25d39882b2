package store

import (
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/matheus3301/fiberglass/internal/store/migrations"
)

// ErrDirtySchema means an earlier migration stopped halfway. The kv table and
// change log may disagree, so the origin is not opened until it is repaired.
var ErrDirtySchema = errors.New("site.db schema is dirty")

// MigrateResult reports the schema version before and after Migrate.
type MigrateResult struct {
	From    uint
	Version uint
	Changed bool
}

// Migrate brings site.db up to the embedded schema.
func (db *DB) Migrate() (*MigrateResult, error) {
	source, err := iofs.New(migrations.FS, ".")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}
	driver, err := sqlite3.WithInstance(db.DB, &sqlite3.Config{})
	if err != nil {
		return nil, fmt.Errorf("migration driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return nil, fmt.Errorf("migration instance: %w", err)
	}

	from, err := schemaVersion(m)
	if err != nil {
		return nil, err
	}

	result := &MigrateResult{From: from, Version: from, Changed: true}
	if err := m.Up(); errors.Is(err, migrate.ErrNoChange) {
		result.Changed = false
	} else if err != nil {
		return nil, fmt.Errorf("migrate from version %d: %w", from, err)
	}

	if result.Version, err = schemaVersion(m); err != nil {
		return nil, err
	}
	return result, nil
}

// schemaVersion returns 0 for a database that was never migrated.
func schemaVersion(m *migrate.Migrate) (uint, error) {
	version, dirty, err := m.Version()
	if errors.Is(err, migrate.ErrNilVersion) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return version, fmt.Errorf("version %d: %w", version, ErrDirtySchema)
	}
	return version, nil
}
