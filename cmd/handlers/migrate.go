package handlers

import (
	"context"
	"fmt"
	"io"

	"insightcast/internal/config"
	"insightcast/internal/logger"
	"insightcast/internal/persistence"

	"github.com/spf13/cobra"
)

// NewMigrateCmd creates the migrate command for database migrations
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the pgvector schema",
		Long: `Manage the PostgreSQL schema backing the pgvector store.

Subcommands:
  up       Apply all pending migrations
  status   Show migration status

Applied migrations are tracked in the schema_migrations table and new ones are
applied in version order.

Examples:
  insightcast migrate up
  insightcast migrate status`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateUp(cmd.Context(), cmd.OutOrStdout())
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show migration status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrateStatus(cmd.Context(), cmd.OutOrStdout())
		},
	})

	return cmd
}

func migrator(ctx context.Context) (*persistence.MigrationManager, func() error, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	db, err := openDatabase(ctx, cfg.VectorStore.ConnectionString)
	if err != nil {
		return nil, nil, err
	}
	return persistence.NewMigrationManager(db), db.Close, nil
}

func runMigrateUp(ctx context.Context, out io.Writer) error {
	logger.Info("Starting database migration")

	m, closeDB, err := migrator(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	applied, err := m.Migrate(ctx)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	if applied == 0 {
		fmt.Fprintln(out, "Schema is up to date")
		return nil
	}
	fmt.Fprintf(out, "✅ Applied %d migration(s)\n", applied)
	return nil
}

func runMigrateStatus(ctx context.Context, out io.Writer) error {
	m, closeDB, err := migrator(ctx)
	if err != nil {
		return err
	}
	defer closeDB()

	status, err := m.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get migration status: %w", err)
	}

	if len(status) == 0 {
		fmt.Fprintln(out, "No migrations found")
		return nil
	}

	fmt.Fprintln(out, titleStyle.Render("Migration Status"))
	fmt.Fprintln(out, labelStyle.Render(fmt.Sprintf("%-10s %-10s %s", "Version", "Status", "Description")))

	pending := 0
	for _, s := range status {
		state := "applied"
		if !s.Applied {
			state = "pending"
			pending++
		}
		fmt.Fprintf(out, "%-10d %-10s %s\n", s.Version, state, s.Description)
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Applied: %d | Pending: %d | Total: %d\n", len(status)-pending, pending, len(status))
	if pending > 0 {
		fmt.Fprintln(out, "\nRun 'insightcast migrate up' to apply pending migrations")
	}
	return nil
}
