package main

import (
	"fmt"
	"log/slog"

	"gorm.io/gorm"

	"github.com/ledgerbook/ledger-in-go/pkg/audit"
	"github.com/ledgerbook/ledger-in-go/pkg/config"
	"github.com/ledgerbook/ledger-in-go/pkg/db"
	"github.com/ledgerbook/ledger-in-go/pkg/mutation"
	"github.com/ledgerbook/ledger-in-go/pkg/password"
)

// openStore loads and validates the configuration and connects the pool.
func openStore() (*config.LedgerConfig, *gorm.DB, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}

	database, err := db.Connect(db.FromLedgerConfig(cfg))
	if err != nil {
		return nil, nil, err
	}
	return cfg, database, nil
}

// openEngine connects to the store and builds a mutation engine on it.
func openEngine() (*mutation.Engine, *gorm.DB, error) {
	cfg, database, err := openStore()
	if err != nil {
		return nil, nil, err
	}

	engine, err := mutation.New(database,
		mutation.WithHasher(password.Bcrypt{}),
		mutation.WithAuditor(audit.Default()),
		mutation.WithLogger(slog.Default()),
		mutation.WithStatementTimeout(cfg.StatementTimeout()),
	)
	if err != nil {
		_ = db.Close(database)
		return nil, nil, err
	}
	return engine, database, nil
}
