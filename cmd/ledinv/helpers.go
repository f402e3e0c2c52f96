package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/led-inventory/internal/cli"
	"github.com/Veraticus/led-inventory/internal/config"
	"github.com/Veraticus/led-inventory/internal/model"
	"github.com/Veraticus/led-inventory/internal/storage"
)

func loadConfig() (*config.AppConfig, error) {
	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

// getDatabase returns a migrated database connection and a cleanup function.
func getDatabase(ctx context.Context) (*storage.SQLiteStorage, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	db, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	cleanup := func() {
		if err := db.Close(); err != nil {
			slog.Error("Failed to close database", "error", err)
		}
	}

	return db, cleanup, nil
}

func parseID(arg, kind string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s ID: %s", kind, arg)
	}
	return id, nil
}

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func formatDims(d model.Dimensions) string {
	return fmt.Sprintf("%dx%d", d.WidthPx, d.HeightPx)
}

func formatRatio(d model.Dimensions) string {
	ratio, ok := d.Ratio()
	if !ok {
		return "-"
	}
	return strconv.FormatFloat(ratio, 'f', 3, 64)
}

func formatRange(r model.ClassificationRule) string {
	return fmt.Sprintf("[%g, %g)", r.MinRatio, r.MaxRatio)
}

func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatRelativeTime(t time.Time) string {
	duration := time.Since(t)

	switch {
	case duration < time.Minute:
		return "just now"
	case duration < time.Hour:
		if m := int(duration.Minutes()); m != 1 {
			return fmt.Sprintf("%d minutes ago", m)
		}
		return "1 minute ago"
	case duration < 24*time.Hour:
		if h := int(duration.Hours()); h != 1 {
			return fmt.Sprintf("%d hours ago", h)
		}
		return "1 hour ago"
	case duration < 7*24*time.Hour:
		if d := int(duration.Hours() / 24); d != 1 {
			return fmt.Sprintf("%d days ago", d)
		}
		return "yesterday"
	default:
		return t.Format("2006-01-02")
	}
}

func printSuccess(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, cli.FormatSuccess(fmt.Sprintf(format, args...)))
}

func printWarning(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintln(w, cli.FormatWarning(fmt.Sprintf(format, args...)))
}

func printSubtle(w io.Writer, text string) {
	_, _ = fmt.Fprintln(w, cli.SubtitleStyle.Render(text))
}
