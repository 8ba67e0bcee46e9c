package db

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ledgerbook/ledger-in-go/pkg/config"
)

// Config holds database connection configuration
type Config struct {
	// URL is the database connection URL (defaults to DATABASE_URL env var)
	URL string
	// Driver is config.DriverPostgres or config.DriverSQLite
	Driver string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration

	// LogLevel "debug" turns on SQL query logging
	LogLevel string
}

// FromLedgerConfig builds a Config from the loaded ledger configuration.
func FromLedgerConfig(c *config.LedgerConfig) Config {
	return Config{
		URL:             c.DatabaseURL,
		Driver:          c.Driver,
		MaxOpenConns:    c.MaxOpenConns,
		MaxIdleConns:    c.MaxIdleConns,
		ConnMaxLifetime: c.ConnMaxLifetime(),
		LogLevel:        c.LogLevel,
	}
}

// Connect establishes the process-wide connection pool.
// If no URL is provided, it reads from DATABASE_URL environment variable.
func Connect(cfg Config) (*gorm.DB, error) {
	dbURL := cfg.URL
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	dialector, err := dialectorFor(cfg.Driver, dbURL)
	if err != nil {
		return nil, err
	}

	// Default to silent logging unless the log level is debug
	logMode := logger.Silent
	if cfg.LogLevel == "debug" {
		logMode = logger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logMode),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to access connection pool: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return db, nil
}

// Close tears down the connection pool.
func Close(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(driver, dbURL string) (gorm.Dialector, error) {
	switch driver {
	case config.DriverPostgres, "":
		return postgres.New(postgres.Config{
			DSN:                  dbURL,
			PreferSimpleProtocol: true, // disables implicit prepared statement usage
		}), nil
	case config.DriverSQLite:
		return sqlite.Open(SQLiteDSN(dbURL)), nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// SQLiteDSN adds the connection parameters the mutation engine relies on:
// immediate transactions (the write lock is taken at BEGIN), enforced foreign
// keys for cascading deletes, and a busy timeout so concurrent writers queue
// on the lock instead of failing.
func SQLiteDSN(path string) string {
	defaults := map[string]string{
		"_txlock":       "immediate",
		"_foreign_keys": "1",
		"_busy_timeout": "5000",
		"_journal_mode": "WAL",
	}

	base, query, _ := strings.Cut(path, "?")
	values, err := url.ParseQuery(query)
	if err != nil {
		values = url.Values{}
	}
	for k, v := range defaults {
		if values.Get(k) == "" {
			values.Set(k, v)
		}
	}
	if !strings.HasPrefix(base, "file:") {
		base = "file:" + base
	}
	return base + "?" + values.Encode()
}

// URL returns the database URL from environment.
// Returns empty string if DATABASE_URL is not set.
func URL() string {
	return os.Getenv("DATABASE_URL")
}
