//go:build embed_migrations

package main

import (
	"database/sql"
	"fmt"

	"github.com/golang-migrate/migrate/v4"

	"github.com/ledgerbook/ledger-in-go/pkg/db"
)

func init() {
	fmt.Println("Using embedded migrations (production build)")
}

func createMigrateInstance(sqlDB *sql.DB, driver string) (*migrate.Migrate, error) {
	src, err := db.EmbeddedSource(driver)
	if err != nil {
		return nil, err
	}
	return db.NewMigrator(sqlDB, driver, src)
}
