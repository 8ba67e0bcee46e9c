package db

import (
	"database/sql"
	"errors"
	"fmt"
	"io/fs"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepg "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	ledgerdb "github.com/ledgerbook/ledger-in-go/db"
	"github.com/ledgerbook/ledger-in-go/pkg/config"
)

// MigrationsTable is the golang-migrate bookkeeping table.
const MigrationsTable = "schema_migrations"

// EmbeddedSource returns the migrations compiled into the binary for a driver.
func EmbeddedSource(driver string) (source.Driver, error) {
	sub, err := fs.Sub(ledgerdb.Migrations, "migrations/"+driverDir(driver))
	if err != nil {
		return nil, fmt.Errorf("failed to get embedded migrations: %w", err)
	}
	d, err := iofs.New(sub, ".")
	if err != nil {
		return nil, fmt.Errorf("failed to create iofs driver: %w", err)
	}
	return d, nil
}

// NewMigrator wraps an open connection pool in a migrate instance reading
// from src. The caller owns sqlDB; closing the migrator closes it too.
func NewMigrator(sqlDB *sql.DB, driver string, src source.Driver) (*migrate.Migrate, error) {
	var (
		dbDriver database.Driver
		err      error
	)
	switch driver {
	case config.DriverPostgres, "":
		dbDriver, err = migratepg.WithInstance(sqlDB, &migratepg.Config{MigrationsTable: MigrationsTable})
	case config.DriverSQLite:
		dbDriver, err = migratesqlite.WithInstance(sqlDB, &migratesqlite.Config{MigrationsTable: MigrationsTable})
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create migrate driver: %w", err)
	}
	return migrate.NewWithInstance("iofs", src, driverDir(driver), dbDriver)
}

// Migrate applies every pending embedded migration. It does not close sqlDB.
func Migrate(sqlDB *sql.DB, driver string) error {
	src, err := EmbeddedSource(driver)
	if err != nil {
		return err
	}
	m, err := NewMigrator(sqlDB, driver, src)
	if err != nil {
		return err
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration failed: %w", err)
	}
	return nil
}

func driverDir(driver string) string {
	if driver == "" {
		return config.DriverPostgres
	}
	return driver
}
