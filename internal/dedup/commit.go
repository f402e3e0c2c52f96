package dedup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/Veraticus/led-inventory/internal/common"
	"github.com/Veraticus/led-inventory/internal/service"
)

// GroupFailure is a group whose deletions stopped part way.
type GroupFailure struct {
	Err        error     `json:"-"`
	Message    string    `json:"error"`
	DeletedIDs []int64   `json:"deletedIds"`
	Group      GroupPlan `json:"group"`
	FailedID   int64     `json:"failedId"`
}

// CommitResult separates groups that were fully applied from those that were not.
type CommitResult struct {
	Completed []GroupPlan    `json:"completed"`
	Failed    []GroupFailure `json:"failed"`
	Deleted   int            `json:"deleted"`
}

// PartialCommitError is returned when at least one group failed. Completed
// groups stay deleted; nothing is rolled back.
type PartialCommitError struct {
	Result *CommitResult
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("%s: %d of %d groups failed",
		common.ErrPartialCommit, len(e.Result.Failed), len(e.Result.Completed)+len(e.Result.Failed))
}

func (e *PartialCommitError) Unwrap() error {
	return common.ErrPartialCommit
}

// CommitOptions tunes how a plan is applied.
type CommitOptions struct {
	// OnGroup is called after each group with its error, if any.
	OnGroup func(group GroupPlan, err error)
	Retry   common.RetryOptions
}

// Preview reads a snapshot and returns the plan and stats. It only needs a lister,
// so it cannot delete anything.
func Preview(ctx context.Context, lister service.PanelLister) (Plan, Stats, error) {
	panels, err := lister.ListPanels(ctx, service.PanelFilter{})
	if err != nil {
		return Plan{}, Stats{}, fmt.Errorf("failed to list panels: %w", err)
	}
	return PlanCleanup(panels), ComputeStats(panels), nil
}

// Commit deletes every id in the plan, group by group. A delete of an id that is
// already gone counts as success, so a partially failed commit can be retried.
func Commit(ctx context.Context, deleter service.PanelDeleter, plan Plan, opts CommitOptions) (*CommitResult, error) {
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry.MaxAttempts = 1
	}

	result := &CommitResult{
		Completed: []GroupPlan{},
		Failed:    []GroupFailure{},
	}

	for i, group := range plan.Groups {
		if err := ctx.Err(); err != nil {
			for _, pending := range plan.Groups[i:] {
				result.Failed = append(result.Failed, GroupFailure{
					Group:      pending,
					DeletedIDs: []int64{},
					Err:        err,
					Message:    err.Error(),
				})
			}
			break
		}

		deleted, failedID, err := commitGroup(ctx, deleter, group, opts.Retry)
		result.Deleted += len(deleted)

		if err != nil {
			slog.Warn("Duplicate group cleanup failed",
				"code", group.Code,
				"panel_id", failedID,
				"deleted", len(deleted),
				"error", err)
			result.Failed = append(result.Failed, GroupFailure{
				Group:      group,
				DeletedIDs: deleted,
				FailedID:   failedID,
				Err:        err,
				Message:    err.Error(),
			})
		} else {
			slog.Debug("Duplicate group cleaned",
				"code", group.Code,
				"survivor_id", group.SurvivorID,
				"deleted", len(deleted))
			result.Completed = append(result.Completed, group)
		}

		if opts.OnGroup != nil {
			opts.OnGroup(group, err)
		}
	}

	if len(result.Failed) > 0 {
		return result, &PartialCommitError{Result: result}
	}
	return result, nil
}

func commitGroup(ctx context.Context, deleter service.PanelDeleter, group GroupPlan, retry common.RetryOptions) ([]int64, int64, error) {
	deleted := make([]int64, 0, len(group.DeletedIDs))

	for _, id := range group.DeletedIDs {
		if id == group.SurvivorID {
			return deleted, id, fmt.Errorf("refusing to delete survivor %d of code %q", id, group.Code)
		}

		del := func() error {
			err := deleter.DeletePanel(ctx, id)
			if errors.Is(err, common.ErrNotFound) {
				return nil
			}
			return err
		}

		var err error
		if retry.MaxAttempts > 1 {
			err = common.WithRetry(ctx, del, retry)
		} else {
			err = del()
		}
		if err != nil {
			return deleted, id, fmt.Errorf("failed to delete panel %d: %w", id, err)
		}
		deleted = append(deleted, id)
	}

	return deleted, 0, nil
}
