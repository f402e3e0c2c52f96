package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/led-inventory/internal/api"
	"github.com/Veraticus/led-inventory/internal/common"
	"github.com/Veraticus/led-inventory/internal/storage"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the inventory HTTP API",
		Long:  `Serve the JSON API under /api/v1 until interrupted.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if addr, _ := cmd.Flags().GetString("address"); addr != "" {
				cfg.ServerAddress = addr
			}

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			opts := []api.Option{
				api.WithVersion(version),
				api.WithCommitRetry(common.RetryOptions{
					MaxAttempts:  cfg.CleanupRetries,
					InitialDelay: 100 * time.Millisecond,
					MaxDelay:     2 * time.Second,
					Multiplier:   2,
					Retryable:    storage.IsBusy,
				}),
			}
			if cfg.CleanupCheckpoint {
				manager, err := db.NewCheckpointManager()
				if err != nil {
					return err
				}
				opts = append(opts, api.WithCheckpointer(manager))
			}

			return api.NewServer(cfg.ServerAddress, db, opts...).Run(ctx)
		},
	}

	cmd.Flags().String("address", "", "Listen address (default from server.address)")
	return cmd
}
