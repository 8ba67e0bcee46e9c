// Package config provides configuration management for the ledger.
//
// Configuration is loaded from defaults, then an optional ledger.yml file,
// then environment variables; every attribute remembers which source set it.
//
// # Configuration Sources
//
//   - Environment variables (highest precedence)
//   - $LEDGER_CONFIG_PATH/ledger.yml (default /etc/ledger/ledger.yml)
//   - Built-in defaults
//
// # Key Configuration Options
//
//   - DATABASE_URL: Store connection string
//   - LEDGER_DRIVER: postgres or sqlite
//   - LEDGER_STATEMENT_TIMEOUT_MS: Upper bound for a single mutation
//   - LEDGER_LOG_LEVEL: Logging verbosity
//   - LEDGER_AUDIT_ENABLED: Emit audit lines for mutations
//   - LEDGER_AUDIT_DATABASE_URL: Also persist audit events to this PostgreSQL database
package config
