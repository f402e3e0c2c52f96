package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/led-inventory/internal/classify"
	"github.com/Veraticus/led-inventory/internal/cli"
	"github.com/Veraticus/led-inventory/internal/config"
	"github.com/Veraticus/led-inventory/internal/model"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "rules",
		Aliases: []string{"rule"},
		Short:   "Manage aspect-ratio classification rules",
		Long: `Manage the rules that map a panel's width/height ratio to a category.

Each rule covers the half-open range [min, max). Active rules may not overlap;
inactive rules are kept for reference and are ignored by the classifier.`,
	}

	cmd.AddCommand(rulesListCmd())
	cmd.AddCommand(rulesAddCmd())
	cmd.AddCommand(rulesEditCmd())
	cmd.AddCommand(rulesDeleteCmd())
	cmd.AddCommand(rulesSeedCmd())
	cmd.AddCommand(rulesCheckCmd())

	return cmd
}

func renderRules(w io.Writer, rules []model.ClassificationRule) error {
	t := newTable(w)
	_, _ = fmt.Fprintln(t, "ID\tLABEL\tRANGE\tACTIVE\tDESCRIPTION")
	_, _ = fmt.Fprintln(t, "──\t─────\t─────\t──────\t───────────")
	for _, r := range rules {
		_, _ = fmt.Fprintf(t, "%d\t%s\t%s\t%s\t%s\n", r.ID, r.Label, formatRange(r), cli.FormatActive(r.IsActive), r.Description)
	}
	return t.Flush()
}

// describeRuleError turns a conflict into a message naming the blocking rule.
func describeRuleError(err error) error {
	var conflict *classify.RuleConflictError
	if errors.As(err, &conflict) {
		return fmt.Errorf("%w (deactivate or narrow rule %d first)", err, conflict.Existing.ID)
	}
	return err
}

func rulesListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List classification rules",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			activeOnly, _ := cmd.Flags().GetBool("active")

			var rules []model.ClassificationRule
			if activeOnly {
				rules, err = db.ListActiveRules(ctx)
			} else {
				rules, err = db.ListRules(ctx)
			}
			if err != nil {
				return fmt.Errorf("failed to list rules: %w", err)
			}

			if len(rules) == 0 {
				printSubtle(cmd.OutOrStdout(), "No rules found. Run 'ledinv rules seed' to add the defaults.")
				return nil
			}
			return renderRules(cmd.OutOrStdout(), rules)
		},
	}

	cmd.Flags().BoolP("active", "a", false, "Show only active rules")
	return cmd
}

func rulesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a classification rule",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			rule := model.ClassificationRule{IsActive: true}
			rule.Label, _ = cmd.Flags().GetString("label")
			rule.Description, _ = cmd.Flags().GetString("description")
			rule.MinRatio, _ = cmd.Flags().GetFloat64("min")
			rule.MaxRatio, _ = cmd.Flags().GetFloat64("max")
			if inactive, _ := cmd.Flags().GetBool("inactive"); inactive {
				rule.IsActive = false
			}

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := db.CreateRule(ctx, &rule); err != nil {
				return describeRuleError(err)
			}

			printSuccess(cmd.OutOrStdout(), "Added rule %d %q %s", rule.ID, rule.Label, formatRange(rule))
			return nil
		},
	}

	cmd.Flags().StringP("label", "l", "", "Category label (required)")
	cmd.Flags().StringP("description", "d", "", "Description")
	cmd.Flags().Float64("min", 0, "Inclusive lower ratio bound")
	cmd.Flags().Float64("max", 0, "Exclusive upper ratio bound")
	cmd.Flags().Bool("inactive", false, "Create the rule inactive")
	_ = cmd.MarkFlagRequired("label")
	_ = cmd.MarkFlagRequired("max")
	return cmd
}

func rulesEditCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit <id>",
		Short: "Edit a classification rule",
		Long:  `Change any of a rule's fields. Only the flags given are updated.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "rule")
			if err != nil {
				return err
			}

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			rule, err := db.GetRule(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get rule: %w", err)
			}

			flags := cmd.Flags()
			if flags.Changed("label") {
				rule.Label, _ = flags.GetString("label")
			}
			if flags.Changed("description") {
				rule.Description, _ = flags.GetString("description")
			}
			if flags.Changed("min") {
				rule.MinRatio, _ = flags.GetFloat64("min")
			}
			if flags.Changed("max") {
				rule.MaxRatio, _ = flags.GetFloat64("max")
			}
			if flags.Changed("active") {
				rule.IsActive, _ = flags.GetBool("active")
			}

			if err := db.UpdateRule(ctx, rule); err != nil {
				return describeRuleError(err)
			}

			printSuccess(cmd.OutOrStdout(), "Updated rule %d %q %s", rule.ID, rule.Label, formatRange(*rule))
			return nil
		},
	}

	cmd.Flags().StringP("label", "l", "", "Category label")
	cmd.Flags().StringP("description", "d", "", "Description")
	cmd.Flags().Float64("min", 0, "Inclusive lower ratio bound")
	cmd.Flags().Float64("max", 0, "Exclusive upper ratio bound")
	cmd.Flags().Bool("active", true, "Whether the rule is active")
	return cmd
}

func rulesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a classification rule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "rule")
			if err != nil {
				return err
			}

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := db.DeleteRule(ctx, id); err != nil {
				return fmt.Errorf("failed to delete rule: %w", err)
			}

			printSuccess(cmd.OutOrStdout(), "Deleted rule %d", id)
			return nil
		},
	}
}

func rulesSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert the configured or built-in rule set",
		Long: `Insert the rules from classification.rules in the config file, or the
built-in Dikey/Kare/Yatay set when none are configured. Seeding is skipped when
rules already exist unless --force is given.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			rules, err := config.LoadRules(viper.GetViper())
			if err != nil {
				return err
			}

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			existing, err := db.ListRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to list rules: %w", err)
			}
			if force, _ := cmd.Flags().GetBool("force"); len(existing) > 0 && !force {
				printWarning(out, "%d rules already exist; use --force to add the seed set anyway", len(existing))
				return nil
			}

			created := 0
			for i := range rules {
				if err := db.CreateRule(ctx, &rules[i]); err != nil {
					printWarning(out, "Skipped %q: %v", rules[i].Label, describeRuleError(err))
					continue
				}
				created++
			}

			printSuccess(out, "Seeded %d of %d rules", created, len(rules))
			return nil
		},
	}

	cmd.Flags().BoolP("force", "f", false, "Seed even if rules already exist")
	return cmd
}

func rulesCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate rules or test a candidate range",
		Long: `Without flags, validate that the stored active rules do not overlap.
With --min and --max, report whether a candidate range would conflict.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			out := cmd.OutOrStdout()

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			active, err := db.ListActiveRules(ctx)
			if err != nil {
				return fmt.Errorf("failed to list rules: %w", err)
			}

			flags := cmd.Flags()
			if !flags.Changed("min") && !flags.Changed("max") {
				if err := classify.ValidateRuleSet(active); err != nil {
					return describeRuleError(err)
				}
				printSuccess(out, "%d active rules, no overlaps", len(active))
				return nil
			}

			candidate := model.ClassificationRule{Label: "candidate", IsActive: true}
			candidate.MinRatio, _ = flags.GetFloat64("min")
			candidate.MaxRatio, _ = flags.GetFloat64("max")

			if err := classify.CheckRule(candidate, active); err != nil {
				return describeRuleError(err)
			}
			printSuccess(out, "Range %s is free", formatRange(candidate))
			return nil
		},
	}

	cmd.Flags().Float64("min", 0, "Candidate lower bound")
	cmd.Flags().Float64("max", 0, "Candidate upper bound")
	return cmd
}
