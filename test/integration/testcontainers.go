package integration

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/ledgerbook/ledger-in-go/pkg/audit"
	"github.com/ledgerbook/ledger-in-go/pkg/config"
	"github.com/ledgerbook/ledger-in-go/pkg/db"
	"github.com/ledgerbook/ledger-in-go/pkg/mutation"
	"github.com/ledgerbook/ledger-in-go/pkg/password"
)

// TestContext holds all the resources needed for integration tests
type TestContext struct {
	DB          *gorm.DB
	RawDB       *sql.DB
	Engine      *mutation.Engine
	Container   testcontainers.Container
	DatabaseURL string
}

// NewTestContext starts a PostgreSQL testcontainer, migrates it with the
// embedded migrations and builds an engine on it.
func NewTestContext(ctx context.Context) (*TestContext, error) {
	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("ledger_test"),
		tcpostgres.WithUsername("ledger"),
		tcpostgres.WithPassword("ledger"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to start postgres container: %w", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get connection string: %w", err)
	}

	database, err := db.Connect(db.Config{URL: connStr, Driver: config.DriverPostgres, MaxOpenConns: 32})
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	rawDB, err := database.DB()
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, fmt.Errorf("failed to get raw db: %w", err)
	}

	if err := db.Migrate(rawDB, config.DriverPostgres); err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	engine, err := mutation.New(database,
		mutation.WithHasher(password.Bcrypt{Cost: bcrypt.MinCost}),
		mutation.WithAuditor(audit.Discard),
		mutation.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		mutation.WithStatementTimeout(10*time.Second),
	)
	if err != nil {
		_ = pgContainer.Terminate(ctx)
		return nil, err
	}

	return &TestContext{
		DB:          database,
		RawDB:       rawDB,
		Engine:      engine,
		Container:   pgContainer,
		DatabaseURL: connStr,
	}, nil
}

// Reset removes everything but the seeded global categories.
func (tc *TestContext) Reset() error {
	for _, stmt := range []string{
		"DELETE FROM record_connects",
		"DELETE FROM records",
		"DELETE FROM books",
		"DELETE FROM connects",
		"DELETE FROM users",
	} {
		if err := tc.DB.Exec(stmt).Error; err != nil {
			return fmt.Errorf("reset: %s: %w", stmt, err)
		}
	}
	return nil
}

// Close cleans up all test resources
func (tc *TestContext) Close(ctx context.Context) {
	if tc.RawDB != nil {
		_ = tc.RawDB.Close()
	}
	if tc.Container != nil {
		_ = tc.Container.Terminate(ctx)
	}
}
