package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/Veraticus/led-inventory/internal/classify"
	"github.com/Veraticus/led-inventory/internal/cli"
	"github.com/Veraticus/led-inventory/internal/model"
)

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify",
		Short: "Classify every panel by aspect ratio",
		Long: `Classify every panel against the active rules and show which stored
categories would change. Nothing is written unless --apply is given, in which
case exactly the changes shown are stored.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			report, err := classify.Run(ctx, db)
			if err != nil {
				return fmt.Errorf("classification failed: %w", err)
			}

			_, _ = fmt.Fprintln(out, cli.FormatTitle("Classification"))
			if report.ActiveRules == 0 {
				printWarning(out, "No active rules; every panel is %s", model.UndeterminedCategory)
			}
			if err := renderClassifyReport(out, report); err != nil {
				return err
			}

			apply, _ := cmd.Flags().GetBool("apply")
			if !apply || len(report.Changes) == 0 {
				if len(report.Changes) > 0 {
					printSubtle(out, "Dry run. Re-run with --apply to store these categories.")
				}
				return nil
			}

			progress := cli.NewProgress(cmd.ErrOrStderr(), len(report.Changes), "Applying categories...")
			err = classify.ApplyChanges(ctx, db, report, func(classify.CategoryChange, error) {
				progress.Add(1)
			})
			progress.Finish()

			var partial *classify.PartialApplyError
			if err != nil && !errors.As(err, &partial) {
				return fmt.Errorf("failed to apply categories: %w", err)
			}

			printSuccess(out, "Updated %d panels", report.Applied)
			if partial != nil {
				for _, f := range report.Failed {
					printWarning(out, "Panel %d (%s) not updated: %s", f.PanelID, f.Code, f.Message)
				}
				return fmt.Errorf("%d panels failed; run classify --apply again to retry: %w", len(report.Failed), err)
			}
			return nil
		},
	}

	cmd.Flags().Bool("apply", false, "Store the new categories")
	return cmd
}

func renderClassifyReport(w io.Writer, report *classify.Report) error {
	_, _ = fmt.Fprintf(w, "%d panels classified, %d changes, %d errors\n\n",
		len(report.Result.Labels), len(report.Changes), len(report.Result.Errors))

	if len(report.Changes) > 0 {
		t := newTable(w)
		_, _ = fmt.Fprintln(t, "ID\tCODE\tFROM\tTO")
		_, _ = fmt.Fprintln(t, "──\t────\t────\t──")
		for _, c := range report.Changes {
			_, _ = fmt.Fprintf(t, "%d\t%s\t%s\t%s\n", c.PanelID, c.Code, cli.FormatCategory(c.From), cli.FormatCategory(c.To))
		}
		if err := t.Flush(); err != nil {
			return err
		}
	}

	for _, e := range report.Result.Errors {
		printWarning(w, "Panel %d (%s): %s", e.PanelID, e.Code, e.Message)
	}
	return nil
}
