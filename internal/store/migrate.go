package store

import (
	"embed"
	"errors"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// Init creates a fresh, empty backup database at path by applying the
// embedded schema migrations. It refuses to touch an existing file.
func Init(path string) error {
	if _, err := os.Stat(path); err == nil {
		return &PathConflictError{Path: path}
	} else if !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return migrateUp(path)
}

func migrateUp(path string) error {
	db, err := Open(path)
	if err != nil {
		return err
	}
	defer db.Close()

	src, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return err
	}
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return err
	}
	m, err := migrate.NewWithInstance("iofs", src, "sqlite3", driver)
	if err != nil {
		return err
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migrate %s: %w", path, err)
	}
	return nil
}
