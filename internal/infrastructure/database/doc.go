// Package database provides SQLite connectivity for the cloudbridge
// device cache and state history.
//
// This package manages:
//   - Database connection with WAL mode for concurrent access
//   - Embedded schema migrations, applied at startup
//   - Connection lifecycle and health checks
//
// Security Considerations:
//   - All queries use parameterised statements (no SQL injection)
//   - Database file permissions are set to 0600 (owner read/write only)
//   - Credentials are never stored here; they live in the encrypted
//     settings store
//
// Usage:
//
//	db, err := database.Open(cfg.Database)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer db.Close()
//
//	if err := db.Migrate(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Migrations are additive-only: new columns must be NULLABLE or carry
// DEFAULT values, and existing columns are never dropped or renamed.
package database
