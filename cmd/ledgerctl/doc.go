// Command ledgerctl operates a multi-tenant personal-finance ledger store.
//
// Every change to books, categories, records, users, connects and book roles
// goes through the mutation engine, which checks existence, authorization,
// uniqueness and references in the same statement that writes.
//
// # Quick Start
//
//	# Create the schema
//	ledgerctl db migrate
//
//	# Register the first user
//	LEDGER_PASSWORD=... ledgerctl user register olivia
//
//	# Apply a batch of mutations as user 1
//	ledgerctl apply household.yml --as 1
//
// # Environment Variables
//
//   - DATABASE_URL: store connection string (Postgres URL or SQLite path)
//   - LEDGER_DRIVER: postgres or sqlite
//   - LEDGER_CONFIG_PATH: directory holding ledger.yml (default /etc/ledger)
//   - LEDGER_LOG_LEVEL: debug, info, warn or error
//   - LEDGER_AUDIT_ENABLED: set to false to turn off the audit trail
//   - LEDGER_AUDIT_DATABASE_URL: Postgres database the audit trail is also written to
package main
