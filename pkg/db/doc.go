// Package db provides the connection pool and migrations for the ledger store.
//
// The pool is created once at startup, shared by every mutation and closed at
// shutdown. Two dialects are supported: PostgreSQL, where the mutation engine
// runs each mutation as a single statement, and SQLite, where it falls back to
// one immediate transaction per mutation.
//
// # Connection
//
//	database, err := db.Connect(db.FromLedgerConfig(config.Get()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close(database)
//
// # Migrations
//
//	sqlDB, _ := database.DB()
//	if err := db.Migrate(sqlDB, config.DriverPostgres); err != nil {
//	    log.Fatal(err)
//	}
//
// # Environment Variables
//
//   - DATABASE_URL: connection string (required)
//   - LEDGER_DRIVER: postgres (default) or sqlite
//   - LEDGER_LOG_LEVEL: Set to "debug" for SQL query logging
package db
