package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Veraticus/led-inventory/internal/dedup"
)

func (c *Controller) initDuplicateRoutes() {
	c.Group.GET("/duplicates", c.PreviewDuplicates)
	c.Group.POST("/duplicates/cleanup", c.CleanupDuplicates)
	c.Group.GET("/stats", c.Stats)
}

// PreviewResponse is the dry-run view of a cleanup.
type PreviewResponse struct {
	Plan  dedup.Plan  `json:"plan"`
	Stats dedup.Stats `json:"stats"`
}

// CleanupResponse reports a committed cleanup.
type CleanupResponse struct {
	Result     *dedup.CommitResult `json:"result"`
	Checkpoint string              `json:"checkpoint,omitempty"`
}

// PreviewDuplicates handles GET /duplicates. Nothing is deleted.
func (c *Controller) PreviewDuplicates(ctx echo.Context) error {
	plan, stats, err := dedup.Preview(ctx.Request().Context(), c.store)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to preview duplicates", 0)
	}
	return ctx.JSON(http.StatusOK, PreviewResponse{Plan: plan, Stats: stats})
}

// Stats handles GET /stats.
func (c *Controller) Stats(ctx echo.Context) error {
	_, stats, err := dedup.Preview(ctx.Request().Context(), c.store)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to compute stats", 0)
	}
	return ctx.JSON(http.StatusOK, stats)
}

// CleanupDuplicates handles POST /duplicates/cleanup. The plan is rebuilt from a
// fresh snapshot. A partial failure answers 207 with both completed and failed groups.
func (c *Controller) CleanupDuplicates(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()

	plan, _, err := dedup.Preview(reqCtx, c.store)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to plan cleanup", 0)
	}

	resp := CleanupResponse{}
	if plan.Empty() {
		resp.Result = &dedup.CommitResult{Completed: []dedup.GroupPlan{}, Failed: []dedup.GroupFailure{}}
		return ctx.JSON(http.StatusOK, resp)
	}

	if c.checkpointer != nil {
		tag, err := c.checkpointer.AutoCheckpoint(reqCtx, "cleanup")
		if err != nil {
			return c.HandleError(ctx, err, "Failed to create checkpoint", http.StatusInternalServerError)
		}
		resp.Checkpoint = tag
	}

	result, err := dedup.Commit(reqCtx, c.store, plan, dedup.CommitOptions{Retry: c.retry})
	resp.Result = result

	var partial *dedup.PartialCommitError
	switch {
	case err == nil:
		return ctx.JSON(http.StatusOK, resp)
	case errors.As(err, &partial):
		c.logger.Warn("Cleanup partially applied",
			"completed", len(result.Completed),
			"failed", len(result.Failed),
			"checkpoint", resp.Checkpoint)
		return ctx.JSON(http.StatusMultiStatus, resp)
	default:
		return c.HandleError(ctx, err, "Cleanup failed", 0)
	}
}
