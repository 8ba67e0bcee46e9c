//go:build !embed_migrations

package main

import (
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/file"

	"github.com/ledgerbook/ledger-in-go/pkg/config"
	"github.com/ledgerbook/ledger-in-go/pkg/db"
)

const defaultMigrationsPath = "db/migrations"

func createMigrateInstance(sqlDB *sql.DB, driver string) (*migrate.Migrate, error) {
	if driver == "" {
		driver = config.DriverPostgres
	}
	url := "file://" + defaultMigrationsPath + "/" + driver
	fmt.Printf("Running migrations from %s\n", url)

	src, err := (&file.File{}).Open(url)
	if err != nil {
		return nil, fmt.Errorf("failed to open migrations: %w", err)
	}
	return db.NewMigrator(sqlDB, driver, src)
}
