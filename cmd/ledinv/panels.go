package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Veraticus/led-inventory/internal/cli"
	"github.com/Veraticus/led-inventory/internal/model"
	"github.com/Veraticus/led-inventory/internal/service"
	"github.com/Veraticus/led-inventory/internal/storage"
)

func panelsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "panels",
		Aliases: []string{"panel"},
		Short:   "Manage inventoried panels",
	}

	cmd.AddCommand(panelsListCmd())
	cmd.AddCommand(panelsAddCmd())
	cmd.AddCommand(panelsShowCmd())
	cmd.AddCommand(panelsDeleteCmd())
	cmd.AddCommand(panelsImportCmd())

	return cmd
}

func panelsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List panels",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			filter := service.PanelFilter{}
			filter.Code, _ = cmd.Flags().GetString("code")
			filter.Category, _ = cmd.Flags().GetString("category")
			filter.Limit, _ = cmd.Flags().GetInt("limit")
			if storeID, _ := cmd.Flags().GetInt64("store"); storeID > 0 {
				filter.StoreID = &storeID
			}

			panels, err := db.ListPanels(ctx, filter)
			if err != nil {
				return fmt.Errorf("failed to list panels: %w", err)
			}

			out := cmd.OutOrStdout()
			if len(panels) == 0 {
				printSubtle(out, "No panels found.")
				return nil
			}

			return renderPanels(out, panels)
		},
	}

	cmd.Flags().String("code", "", "Filter by product code")
	cmd.Flags().StringP("category", "c", "", "Filter by category")
	cmd.Flags().Int64("store", 0, "Filter by store ID")
	cmd.Flags().IntP("limit", "n", 0, "Maximum number of panels to show")
	return cmd
}

func renderPanels(w io.Writer, panels []model.Panel) error {
	t := newTable(w)
	_, _ = fmt.Fprintln(t, "ID\tCODE\tSIZE\tRATIO\tCATEGORY\tSTATUS\tLOCATION")
	_, _ = fmt.Fprintln(t, "──\t────\t────\t─────\t────────\t──────\t────────")
	for _, p := range panels {
		_, _ = fmt.Fprintf(t, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Code, formatDims(p.Dimensions), formatRatio(p.Dimensions),
			cli.FormatCategory(p.Category), cli.FormatStatus(p.Status), p.Location)
	}
	return t.Flush()
}

func panelsAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a panel",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			panel := model.Panel{}
			panel.Code, _ = cmd.Flags().GetString("code")
			panel.WidthPx, _ = cmd.Flags().GetInt("width")
			panel.HeightPx, _ = cmd.Flags().GetInt("height")
			panel.Category, _ = cmd.Flags().GetString("category")
			panel.Location, _ = cmd.Flags().GetString("location")
			panel.Notes, _ = cmd.Flags().GetString("notes")
			if storeID, _ := cmd.Flags().GetInt64("store"); storeID > 0 {
				panel.StoreID = &storeID
			}

			if strings.TrimSpace(panel.Code) == "" {
				return fmt.Errorf("--code is required")
			}

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := db.CreatePanel(ctx, &panel); err != nil {
				return fmt.Errorf("failed to add panel: %w", err)
			}

			printSuccess(cmd.OutOrStdout(), "Added panel %d (%s, %s)", panel.ID, panel.Code, formatDims(panel.Dimensions))
			return nil
		},
	}

	cmd.Flags().String("code", "", "Product code (required)")
	cmd.Flags().Int("width", 0, "Width in pixels")
	cmd.Flags().Int("height", 0, "Height in pixels")
	cmd.Flags().String("category", "", "Initial category")
	cmd.Flags().Int64("store", 0, "Store ID")
	cmd.Flags().String("location", "", "Location within the store")
	cmd.Flags().String("notes", "", "Free-form notes")
	return cmd
}

func panelsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show panel details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "panel")
			if err != nil {
				return err
			}

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			panel, err := db.GetPanel(ctx, id)
			if err != nil {
				return fmt.Errorf("failed to get panel: %w", err)
			}

			var b strings.Builder
			fmt.Fprintf(&b, "Code:      %s\n", panel.Code)
			fmt.Fprintf(&b, "Size:      %s (ratio %s)\n", formatDims(panel.Dimensions), formatRatio(panel.Dimensions))
			fmt.Fprintf(&b, "Category:  %s\n", cli.FormatCategory(panel.Category))
			fmt.Fprintf(&b, "Status:    %s\n", cli.FormatStatus(panel.Status))
			if panel.StoreID != nil {
				fmt.Fprintf(&b, "Store:     %d\n", *panel.StoreID)
			}
			if panel.Location != "" {
				fmt.Fprintf(&b, "Location:  %s\n", panel.Location)
			}
			if panel.Notes != "" {
				fmt.Fprintf(&b, "Notes:     %s\n", panel.Notes)
			}
			fmt.Fprintf(&b, "Updated:   %s", panel.UpdatedAt.Format("2006-01-02 15:04:05"))

			_, _ = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderBox(fmt.Sprintf("Panel %d", panel.ID), b.String()))
			return nil
		},
	}
}

func panelsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a panel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			id, err := parseID(args[0], "panel")
			if err != nil {
				return err
			}

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			if err := db.DeletePanel(ctx, id); err != nil {
				return fmt.Errorf("failed to delete panel: %w", err)
			}

			printSuccess(cmd.OutOrStdout(), "Deleted panel %d", id)
			return nil
		},
	}
}

// importRecord is one panel in an import file.
type importRecord struct {
	model.Dimensions `yaml:",inline"`
	Code             string `yaml:"code"`
	Category         string `yaml:"category"`
	Status           string `yaml:"status"`
	Store            string `yaml:"store"`
	Location         string `yaml:"location"`
	Notes            string `yaml:"notes"`
}

type importFile struct {
	Panels []importRecord `yaml:"panels"`
}

// parseImport decodes an import file. Unknown keys are rejected.
func parseImport(r io.Reader) ([]importRecord, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var f importFile
	if err := dec.Decode(&f); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to parse import file: %w", err)
	}

	for i, rec := range f.Panels {
		if strings.TrimSpace(rec.Code) == "" {
			return nil, fmt.Errorf("panel %d: missing code", i+1)
		}
	}
	return f.Panels, nil
}

// resolveStores maps store names to IDs, creating stores that do not exist yet.
func resolveStores(ctx context.Context, db *storage.SQLiteStorage, records []importRecord) (map[string]int64, error) {
	stores, err := db.ListStores(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stores: %w", err)
	}

	ids := make(map[string]int64, len(stores))
	for _, s := range stores {
		ids[s.Name] = s.ID
	}

	for _, rec := range records {
		name := strings.TrimSpace(rec.Store)
		if name == "" {
			continue
		}
		if _, ok := ids[name]; ok {
			continue
		}
		store := model.Store{Name: name}
		if err := db.CreateStore(ctx, &store); err != nil {
			return nil, fmt.Errorf("failed to create store %q: %w", name, err)
		}
		slog.Info("Created store during import", "store", name, "id", store.ID)
		ids[name] = store.ID
	}

	return ids, nil
}

func panelsImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Import panels from a YAML file",
		Long: `Import panels from a YAML file. All panels are inserted in one transaction.

File format:

  panels:
    - code: LED-55
      width_px: 1920
      height_px: 1080
      store: Kadikoy
      location: Vitrin`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open import file: %w", err)
			}
			defer func() { _ = f.Close() }()

			records, err := parseImport(f)
			if err != nil {
				return err
			}
			if len(records) == 0 {
				printSubtle(cmd.OutOrStdout(), "Nothing to import.")
				return nil
			}

			db, cleanup, err := getDatabase(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			storeIDs, err := resolveStores(ctx, db, records)
			if err != nil {
				return err
			}

			panels := make([]model.Panel, 0, len(records))
			for _, rec := range records {
				panel := model.Panel{
					Code:       rec.Code,
					Category:   rec.Category,
					Status:     model.PanelStatus(rec.Status),
					Location:   rec.Location,
					Notes:      rec.Notes,
					Dimensions: rec.Dimensions,
				}
				if id, ok := storeIDs[strings.TrimSpace(rec.Store)]; ok {
					panel.StoreID = &id
				}
				panels = append(panels, panel)
			}

			if err := db.CreatePanels(ctx, panels); err != nil {
				return fmt.Errorf("failed to import panels: %w", err)
			}

			printSuccess(cmd.OutOrStdout(), "Imported %d panels from %s", len(panels), args[0])
			return nil
		},
	}
}
