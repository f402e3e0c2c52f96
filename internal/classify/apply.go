package classify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/led-inventory/internal/common"
	"github.com/Veraticus/led-inventory/internal/service"
)

// Source is what a classification run reads from.
type Source interface {
	service.PanelLister
	service.RuleLister
}

// Sink is what Apply writes to.
type Sink interface {
	Source
	service.CategoryUpdater
}

// Report summarizes a classification run over the whole inventory.
// ActiveRules of zero is a valid run: every panel is labelled Undetermined.
type Report struct {
	Result      BatchResult      `json:"result"`
	Changes     []CategoryChange `json:"changes"`
	Failed      []ItemError      `json:"failed"`
	ActiveRules int              `json:"activeRules"`
	Applied     int              `json:"applied"`
}

// PartialApplyError is returned when some category updates failed. The
// report still counts every update that was written.
type PartialApplyError struct {
	Report *Report
}

func (e *PartialApplyError) Error() string {
	return fmt.Sprintf("%s: %d of %d updates failed",
		common.ErrPartialApply, len(e.Report.Failed), len(e.Report.Changes))
}

func (e *PartialApplyError) Unwrap() error {
	return common.ErrPartialApply
}

// Run classifies a fresh snapshot against the active rules without writing anything.
func Run(ctx context.Context, src Source) (*Report, error) {
	rules, err := src.ListActiveRules(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules: %w", err)
	}

	panels, err := src.ListPanels(ctx, service.PanelFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list panels: %w", err)
	}

	result := NewClassifier(rules).ClassifyAll(panels)
	changes := Changes(panels, result)
	if changes == nil {
		changes = []CategoryChange{}
	}

	return &Report{
		Result:      result,
		Changes:     changes,
		Failed:      []ItemError{},
		ActiveRules: len(rules),
	}, nil
}

// Apply runs a classification and stores every changed label.
func Apply(ctx context.Context, sink Sink, onChange func(CategoryChange, error)) (*Report, error) {
	report, err := Run(ctx, sink)
	if err != nil {
		return nil, err
	}
	return report, ApplyChanges(ctx, sink, report, onChange)
}

// ApplyChanges writes exactly the changes in report. onChange, if set, is
// called after each attempted update. A failed update is recorded in
// report.Failed and the remaining changes still run; the returned error is a
// *PartialApplyError when any update failed. Cancellation stops the run.
func ApplyChanges(ctx context.Context, updater service.CategoryUpdater, report *Report, onChange func(CategoryChange, error)) error {
	if report.Failed == nil {
		report.Failed = []ItemError{}
	}

	for _, change := range report.Changes {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := updater.UpdatePanelCategory(ctx, change.PanelID, change.To)
		if onChange != nil {
			onChange(change, err)
		}
		if err != nil {
			slog.Warn("Failed to store category",
				"panel_id", change.PanelID,
				"code", change.Code,
				"error", err)
			report.Failed = append(report.Failed, ItemError{
				PanelID: change.PanelID,
				Code:    change.Code,
				Message: err.Error(),
				Err:     err,
			})
			continue
		}
		report.Applied++
	}

	slog.Info("Classification applied",
		"panels", len(report.Result.Labels),
		"changed", report.Applied,
		"failed", len(report.Failed),
		"errors", len(report.Result.Errors))

	if len(report.Failed) > 0 {
		return &PartialApplyError{Report: report}
	}
	return nil
}
