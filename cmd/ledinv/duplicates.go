package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/led-inventory/internal/cli"
	"github.com/Veraticus/led-inventory/internal/common"
	"github.com/Veraticus/led-inventory/internal/config"
	"github.com/Veraticus/led-inventory/internal/dedup"
	"github.com/Veraticus/led-inventory/internal/storage"
	"github.com/Veraticus/led-inventory/internal/tui"
)

func duplicatesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "duplicates",
		Aliases: []string{"dups"},
		Short:   "Find and remove panels that share a product code",
		Long: `Panels sharing a product code are duplicates. Cleanup keeps the panel
with the smallest pixel area in each group (lowest ID on ties) and deletes the rest.`,
		Example: `  # How much duplication is there?
  ledinv duplicates stats

  # Show exactly what cleanup would delete
  ledinv duplicates preview

  # Delete duplicates after taking a checkpoint
  ledinv duplicates cleanup`,
	}

	cmd.AddCommand(duplicatesStatsCmd())
	cmd.AddCommand(duplicatesPreviewCmd())
	cmd.AddCommand(duplicatesCleanupCmd())
	cmd.AddCommand(duplicatesReviewCmd())

	return cmd
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderStats(w io.Writer, stats dedup.Stats) {
	_, _ = fmt.Fprintf(w, "Total records:      %d\n", stats.TotalRecords)
	_, _ = fmt.Fprintf(w, "Unique codes:       %d\n", stats.UniqueCodes)
	_, _ = fmt.Fprintf(w, "Duplicate records:  %d\n", stats.DuplicateRecordCount)
	_, _ = fmt.Fprintf(w, "Duplicate groups:   %d\n", stats.DuplicateGroupCount)
}

func renderPlan(w io.Writer, plan dedup.Plan) error {
	t := newTable(w)
	_, _ = fmt.Fprintln(t, "CODE\tKEEP\tKEEP SIZE\tDELETE\tDELETE SIZES")
	_, _ = fmt.Fprintln(t, "────\t────\t─────────\t──────\t────────────")
	for _, g := range plan.Groups {
		ids := make([]string, len(g.DeletedIDs))
		sizes := make([]string, len(g.DeletedDimensions))
		for i, id := range g.DeletedIDs {
			ids[i] = fmt.Sprint(id)
		}
		for i, d := range g.DeletedDimensions {
			sizes[i] = formatDims(d)
		}
		_, _ = fmt.Fprintf(t, "%s\t%d\t%s\t%s\t%s\n",
			g.Code, g.SurvivorID, formatDims(g.SurvivorDimensions),
			strings.Join(ids, ","), strings.Join(sizes, ","))
	}
	return t.Flush()
}

func duplicatesStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show duplication statistics",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			_, stats, err := dedup.Preview(ctx, db)
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(cmd.OutOrStdout(), stats)
			}
			renderStats(cmd.OutOrStdout(), stats)
			return nil
		},
	}

	cmd.Flags().Bool("json", false, "Output JSON")
	return cmd
}

func duplicatesPreviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show what cleanup would delete without deleting anything",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			plan, stats, err := dedup.Preview(ctx, db)
			if err != nil {
				return err
			}

			if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
				return writeJSON(out, struct {
					Plan  dedup.Plan  `json:"plan"`
					Stats dedup.Stats `json:"stats"`
				}{plan, stats})
			}

			_, _ = fmt.Fprintln(out, cli.FormatTitle("Duplicate cleanup preview"))
			renderStats(out, stats)
			if plan.Empty() {
				_, _ = fmt.Fprintln(out)
				printSuccess(out, "No duplicates found")
				return nil
			}
			_, _ = fmt.Fprintln(out)
			return renderPlan(out, plan)
		},
	}

	cmd.Flags().Bool("json", false, "Output JSON")
	return cmd
}

func duplicatesCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Delete duplicate panels",
		Long: `Delete every duplicate panel, keeping one survivor per product code.

A checkpoint is taken first unless --no-checkpoint is given or cleanup.checkpoint
is false. Groups that fail are reported and can be retried by running cleanup again.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			plan, stats, err := dedup.Preview(ctx, db)
			if err != nil {
				return err
			}
			if plan.Empty() {
				printSuccess(out, "No duplicates found")
				return nil
			}

			if err := renderPlan(out, plan); err != nil {
				return err
			}

			if yes, _ := cmd.Flags().GetBool("yes"); !yes {
				question := fmt.Sprintf("Delete %d panels in %d groups?", stats.DuplicateRecordCount, stats.DuplicateGroupCount)
				ok, err := cli.NewConfirmer(cmd.InOrStdin(), out).Confirm(ctx, question)
				if err != nil {
					return err
				}
				if !ok {
					printSubtle(out, "Cleanup cancelled.")
					return nil
				}
			}

			return commitPlan(cmd, db, cfg, plan)
		},
	}

	cmd.Flags().BoolP("yes", "y", false, "Skip the confirmation prompt")
	cmd.Flags().Bool("no-checkpoint", false, "Do not take a checkpoint before deleting")
	return cmd
}

// commitPlan checkpoints if configured, deletes every group in plan and
// reports the outcome.
func commitPlan(cmd *cobra.Command, db *storage.SQLiteStorage, cfg *config.AppConfig, plan dedup.Plan) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	noCheckpoint, _ := cmd.Flags().GetBool("no-checkpoint")
	if cfg.CleanupCheckpoint && !noCheckpoint {
		manager, err := db.NewCheckpointManager()
		if err != nil {
			return fmt.Errorf("failed to create checkpoint manager: %w", err)
		}
		tag, err := manager.AutoCheckpoint(ctx, "cleanup")
		if err != nil {
			return fmt.Errorf("failed to create checkpoint: %w", err)
		}
		_, _ = fmt.Fprintf(out, "Checkpoint %s created\n", cli.InfoStyle.Render(tag))
	}

	progress := cli.NewProgress(cmd.ErrOrStderr(), len(plan.Groups), "Deleting duplicates...")
	result, err := dedup.Commit(ctx, db, plan, dedup.CommitOptions{
		OnGroup: func(dedup.GroupPlan, error) { progress.Add(1) },
		Retry: common.RetryOptions{
			MaxAttempts:  cfg.CleanupRetries,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     2 * time.Second,
			Multiplier:   2,
			Retryable:    storage.IsBusy,
		},
	})
	progress.Finish()

	var partial *dedup.PartialCommitError
	if err != nil && !errors.As(err, &partial) {
		return err
	}

	printSuccess(out, "Deleted %d panels in %d groups", result.Deleted, len(result.Completed))
	if partial != nil {
		for _, f := range result.Failed {
			printWarning(out, "Group %s stopped at panel %d after %d deletions: %s",
				f.Group.Code, f.FailedID, len(f.DeletedIDs), f.Message)
		}
		return fmt.Errorf("%d groups failed; run cleanup again to retry: %w", len(result.Failed), err)
	}
	return nil
}

func duplicatesReviewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Pick which duplicate groups to clean up in an interactive screen",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			plan, _, err := dedup.Preview(ctx, db)
			if err != nil {
				return err
			}
			if plan.Empty() {
				printSuccess(out, "No duplicates found")
				return nil
			}

			selection, confirmed, err := tui.Review(ctx, plan,
				tui.WithInput(cmd.InOrStdin()),
				tui.WithOutput(out),
				tui.WithAltScreen(true),
			)
			if err != nil {
				return err
			}
			if !confirmed {
				printSubtle(out, "Review cancelled.")
				return nil
			}
			if selection.Empty() {
				printSubtle(out, "No groups selected.")
				return nil
			}

			return commitPlan(cmd, db, cfg, selection)
		},
	}

	cmd.Flags().Bool("no-checkpoint", false, "Do not take a checkpoint before deleting")
	return cmd
}
