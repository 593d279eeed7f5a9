package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed migrations/sqlite/*.sql migrations/postgres/*.sql
var migrationsFS embed.FS

// RunSQLiteMigrations brings the SQLite schema at dsn up to date.
func RunSQLiteMigrations(dsn string) error {
	return runMigrations("sqlite", dsn, "migrations/sqlite", func(db *sql.DB) (database.Driver, error) {
		return sqlite.WithInstance(db, &sqlite.Config{})
	})
}

// RunPostgresMigrations brings the Postgres schema at url up to date.
func RunPostgresMigrations(url string) error {
	return runMigrations("postgres", url, "migrations/postgres", func(db *sql.DB) (database.Driver, error) {
		return postgres.WithInstance(db, &postgres.Config{})
	})
}

func runMigrations(driverName, dsn, dir string, newDriver func(*sql.DB) (database.Driver, error)) error {
	// Separate connection for migrations; the migrate driver closes it.
	migrateDB, err := sql.Open(driverName, dsn)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := newDriver(migrateDB)
	if err != nil {
		return fmt.Errorf("create %s driver: %w", driverName, err)
	}

	d, err := iofs.New(migrationsFS, dir)
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, driverName, driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
