package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/Veraticus/led-inventory/internal/storage"
)

func migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version.

Every other command migrates automatically; this one is useful for
checking the schema version or preparing a database ahead of time.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer func() { _ = store.Close() }()

			current, err := store.SchemaVersion(ctx)
			if err != nil {
				return err
			}

			if status, _ := cmd.Flags().GetBool("status"); status {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Schema version %d of %d\n", current, storage.ExpectedSchemaVersion)
				return nil
			}

			slog.Info("Starting database migration", "database", cfg.DatabasePath, "from", current)
			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			printSuccess(cmd.OutOrStdout(), "Database at schema version %d", storage.ExpectedSchemaVersion)
			return nil
		},
	}

	cmd.Flags().Bool("status", false, "Show current schema version without applying changes")
	return cmd
}
