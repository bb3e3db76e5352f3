package persistence

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"
	"strconv"
	"strings"

	"insightcast/internal/logger"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// Migration is one numbered schema change
type Migration struct {
	Version     int
	Description string
	SQL         string
}

// MigrationStatus reports whether a migration has been applied
type MigrationStatus struct {
	Version     int
	Description string
	Applied     bool
}

// MigrationManager applies the embedded migrations in version order and
// records them in schema_migrations
type MigrationManager struct {
	db     *PostgresDB
	source fs.FS
	log    *slog.Logger
}

// NewMigrationManager creates a manager for the embedded migrations
func NewMigrationManager(db *PostgresDB) *MigrationManager {
	return &MigrationManager{
		db:     db,
		source: migrationFiles,
		log:    logger.Get(),
	}
}

// Migrate runs all pending migrations
func (m *MigrationManager) Migrate(ctx context.Context) (int, error) {
	pending, err := m.Pending(ctx)
	if err != nil {
		return 0, err
	}

	if len(pending) == 0 {
		m.log.Info("No pending migrations")
		return 0, nil
	}

	m.log.Info("Found pending migrations", "count", len(pending))
	for _, migration := range pending {
		if err := m.applyMigration(ctx, migration); err != nil {
			return 0, fmt.Errorf("failed to apply migration %d: %w", migration.Version, err)
		}
	}

	m.log.Info("Migration completed successfully", "applied", len(pending))
	return len(pending), nil
}

// Pending returns the migrations that have not been applied yet, in order
func (m *MigrationManager) Pending(ctx context.Context) ([]Migration, error) {
	if err := m.ensureMigrationsTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get applied migrations: %w", err)
	}

	available, err := LoadMigrations(m.source, m.log)
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}

	var pending []Migration
	for _, migration := range available {
		if !applied[migration.Version] {
			pending = append(pending, migration)
		}
	}
	return pending, nil
}

// Status lists every known migration with its applied state
func (m *MigrationManager) Status(ctx context.Context) ([]MigrationStatus, error) {
	if err := m.ensureMigrationsTable(ctx); err != nil {
		return nil, fmt.Errorf("failed to create migrations table: %w", err)
	}

	applied, err := m.appliedVersions(ctx)
	if err != nil {
		return nil, err
	}

	available, err := LoadMigrations(m.source, m.log)
	if err != nil {
		return nil, err
	}

	status := make([]MigrationStatus, 0, len(available))
	for _, migration := range available {
		status = append(status, MigrationStatus{
			Version:     migration.Version,
			Description: migration.Description,
			Applied:     applied[migration.Version],
		})
	}
	return status, nil
}

func (m *MigrationManager) ensureMigrationsTable(ctx context.Context) error {
	_, err := m.db.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INT PRIMARY KEY,
			description TEXT NOT NULL,
			applied_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
		)
	`)
	return err
}

func (m *MigrationManager) appliedVersions(ctx context.Context) (map[int]bool, error) {
	rows, err := m.db.db.QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	applied := make(map[int]bool)
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			return nil, err
		}
		applied[version] = true
	}
	return applied, rows.Err()
}

// applyMigration applies a single migration in a transaction
func (m *MigrationManager) applyMigration(ctx context.Context, migration Migration) error {
	m.log.Info("Applying migration", "version", migration.Version, "description", migration.Description)

	tx, err := m.db.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, migration.SQL); err != nil {
		return fmt.Errorf("failed to execute migration SQL: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO schema_migrations (version, description)
		VALUES ($1, $2)
		ON CONFLICT (version) DO NOTHING
	`, migration.Version, migration.Description)
	if err != nil {
		return fmt.Errorf("failed to record migration: %w", err)
	}

	return tx.Commit()
}

// LoadMigrations reads NNN_description.sql files from the migrations
// directory of source, sorted by version. Misnamed files are skipped.
func LoadMigrations(source fs.FS, log *slog.Logger) ([]Migration, error) {
	entries, err := fs.ReadDir(source, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	var migrations []Migration
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}

		version, description, ok := parseMigrationName(entry.Name())
		if !ok {
			log.Warn("Skipping migration file with invalid name", "file", entry.Name())
			continue
		}

		content, err := fs.ReadFile(source, path.Join("migrations", entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("failed to read migration file %s: %w", entry.Name(), err)
		}

		migrations = append(migrations, Migration{
			Version:     version,
			Description: description,
			SQL:         string(content),
		})
	}

	sort.Slice(migrations, func(i, j int) bool {
		return migrations[i].Version < migrations[j].Version
	})
	return migrations, nil
}

// parseMigrationName splits "001_create_sections.sql" into (1, "create sections").
func parseMigrationName(name string) (int, string, bool) {
	parts := strings.SplitN(strings.TrimSuffix(name, ".sql"), "_", 2)
	if len(parts) < 2 || parts[1] == "" {
		return 0, "", false
	}
	version, err := strconv.Atoi(parts[0])
	if err != nil || version <= 0 {
		return 0, "", false
	}
	return version, strings.ReplaceAll(parts[1], "_", " "), true
}
