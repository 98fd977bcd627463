package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

// MigrationsFS is set by the migrations package at init time. It holds
// the embedded .up.sql files applied by Migrate.
var MigrationsFS embed.FS

// MigrationsDir is the directory within MigrationsFS containing the
// migration files.
var MigrationsDir = "migrations"

// migration represents a single schema migration.
type migration struct {
	// Version is the numeric prefix of the filename, e.g. 20260314090000.
	Version int64

	// Name is the human-readable description from the filename.
	Name string

	// SQL is the migration body.
	SQL string
}

// Migrate applies all pending migrations in version order.
//
// Each migration runs in its own transaction; a failure stops the run
// and leaves earlier migrations applied. Applied versions are recorded
// in the schema_migrations table, created on first use.
//
// Parameters:
//   - ctx: Context for cancellation
//
// Returns:
//   - error: If any migration fails to apply
func (db *DB) Migrate(ctx context.Context) error {
	if err := db.ensureMigrationsTable(ctx); err != nil {
		return err
	}

	migrations, err := loadMigrations()
	if err != nil {
		return err
	}

	applied, err := db.appliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if applied[m.Version] {
			continue
		}
		if err := db.applyMigration(ctx, m); err != nil {
			return fmt.Errorf("applying migration %d_%s: %w", m.Version, m.Name, err)
		}
	}

	return nil
}

// ensureMigrationsTable creates the schema_migrations tracking table.
func (db *DB) ensureMigrationsTable(ctx context.Context) error {
	const query = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`
	if _, err := db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}
	return nil
}

// appliedVersions returns the set of migration versions already applied.
func (db *DB) appliedVersions(ctx context.Context) (map[int64]bool, error) {
	rows, err := db.QueryContext(ctx, "SELECT version FROM schema_migrations")
	if err != nil {
		return nil, fmt.Errorf("querying applied migrations: %w", err)
	}
	defer rows.Close() //nolint:errcheck // read-only query

	applied := make(map[int64]bool)
	for rows.Next() {
		var version int64
		if err := rows.Scan(&version); err != nil {
			return nil, fmt.Errorf("scanning migration version: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating applied migrations: %w", err)
	}
	return applied, nil
}

// applyMigration runs a single migration inside a transaction and
// records it in schema_migrations.
func (db *DB) applyMigration(ctx context.Context, m migration) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, m.SQL); err != nil {
		return fmt.Errorf("executing migration SQL: %w", err)
	}

	if _, err := tx.ExecContext(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES (?, ?)",
		m.Version, m.Name,
	); err != nil {
		return fmt.Errorf("recording migration: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing migration: %w", err)
	}
	return nil
}

// loadMigrations reads and parses all .up.sql files from the embedded
// filesystem, sorted by version.
func loadMigrations() ([]migration, error) {
	entries, err := fs.ReadDir(MigrationsFS, MigrationsDir)
	if err != nil {
		return nil, fmt.Errorf("reading migrations directory: %w", err)
	}

	var migrations []migration
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".up.sql") {
			continue
		}

		version, desc, err := parseMigrationFilename(name)
		if err != nil {
			return nil, err
		}

		body, err := fs.ReadFile(MigrationsFS, MigrationsDir+"/"+name)
		if err != nil {
			return nil, fmt.Errorf("reading migration %s: %w", name, err)
		}

		migrations = append(migrations, migration{
			Version: version,
			Name:    desc,
			SQL:     string(body),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})

	return migrations, nil
}

// parseMigrationFilename extracts the version and description from a
// migration filename of the form YYYYMMDD_HHMMSS_description.up.sql.
func parseMigrationFilename(filename string) (int64, string, error) {
	base := strings.TrimSuffix(filename, ".up.sql")

	parts := strings.SplitN(base, "_", 3)
	if len(parts) < 3 {
		return 0, "", fmt.Errorf("invalid migration filename %q: expected YYYYMMDD_HHMMSS_description.up.sql", filename)
	}

	var version int64
	if _, err := fmt.Sscanf(parts[0]+parts[1], "%d", &version); err != nil {
		return 0, "", fmt.Errorf("invalid migration version in %q: %w", filename, err)
	}

	return version, parts[2], nil
}
