package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/led-inventory/internal/model"
)

func storesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "stores",
		Aliases: []string{"store"},
		Short:   "Manage stores that hold panels",
	}

	cmd.AddCommand(storesListCmd())
	cmd.AddCommand(storesAddCmd())
	cmd.AddCommand(storesDeleteCmd())

	return cmd
}

func storesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stores",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			stores, err := db.ListStores(ctx)
			if err != nil {
				return fmt.Errorf("failed to list stores: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(stores) == 0 {
				printSubtle(out, "No stores found.")
				return nil
			}

			t := newTable(out)
			_, _ = fmt.Fprintln(t, "ID\tNAME\tCITY\tPANELS")
			_, _ = fmt.Fprintln(t, "──\t────\t────\t──────")
			for _, s := range stores {
				_, _ = fmt.Fprintf(t, "%d\t%s\t%s\t%d\n", s.ID, s.Name, s.City, s.PanelCount)
			}
			return t.Flush()
		},
	}
}

func storesAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			store := model.Store{Name: args[0]}
			store.City, _ = cmd.Flags().GetString("city")

			if err := db.CreateStore(ctx, &store); err != nil {
				return fmt.Errorf("failed to add store: %w", err)
			}

			printSuccess(cmd.OutOrStdout(), "Added store %d %q", store.ID, store.Name)
			return nil
		},
	}

	cmd.Flags().String("city", "", "City")
	return cmd
}

func storesDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a store that has no panels",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "store")
			if err != nil {
				return err
			}

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := db.DeleteStore(ctx, id); err != nil {
				return fmt.Errorf("failed to delete store: %w", err)
			}

			printSuccess(cmd.OutOrStdout(), "Deleted store %d", id)
			return nil
		},
	}
}
