package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"log/slog"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var schemaFiles embed.FS

// RunMigrations applies every pending kv_store schema step to the database
// at dbPath. An already current schema is not an error.
func RunMigrations(dbPath string) error {
	// The migrator closes the handle it is given, so it gets its own.
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open %s for schema upgrade: %w", dbPath, err)
	}
	defer db.Close()

	m, err := newMigrator(db)
	if err != nil {
		return err
	}
	defer m.Close()

	err = m.Up()
	switch {
	case errors.Is(err, migrate.ErrNoChange):
	case err != nil:
		return fmt.Errorf("upgrade kv_store schema: %w", err)
	}

	version, dirty, err := m.Version()
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		return fmt.Errorf("schema version %d is dirty", version)
	}
	slog.Debug("Schema current", "db_path", dbPath, "version", version)
	return nil
}

func newMigrator(db *sql.DB) (*migrate.Migrate, error) {
	target, err := sqlite.WithInstance(db, &sqlite.Config{})
	if err != nil {
		return nil, fmt.Errorf("bind schema target: %w", err)
	}
	steps, err := iofs.New(schemaFiles, "migrations")
	if err != nil {
		return nil, fmt.Errorf("load embedded schema steps: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", steps, "sqlite", target)
	if err != nil {
		return nil, fmt.Errorf("prepare schema upgrade: %w", err)
	}
	return m, nil
}
