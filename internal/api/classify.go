package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Veraticus/led-inventory/internal/classify"
)

func (c *Controller) initClassifyRoutes() {
	c.Group.POST("/classify", c.Classify)
}

// Classify handles POST /classify. With ?apply=true every changed label is stored;
// when some updates fail the report is returned with 207 and lists them in failed.
func (c *Controller) Classify(ctx echo.Context) error {
	apply := false
	if raw := ctx.QueryParam("apply"); raw != "" {
		var err error
		if apply, err = strconv.ParseBool(raw); err != nil {
			return c.HandleError(ctx, err, "Invalid apply flag", http.StatusBadRequest)
		}
	}

	reqCtx := ctx.Request().Context()

	var (
		report *classify.Report
		err    error
	)
	if apply {
		report, err = classify.Apply(reqCtx, c.store, nil)
	} else {
		report, err = classify.Run(reqCtx, c.store)
	}
	var partial *classify.PartialApplyError
	switch {
	case err == nil:
		return ctx.JSON(http.StatusOK, report)
	case errors.As(err, &partial):
		c.logger.Warn("Classification partially applied",
			"applied", report.Applied,
			"failed", len(report.Failed))
		return ctx.JSON(http.StatusMultiStatus, report)
	default:
		return c.HandleError(ctx, err, "Classification failed", 0)
	}
}
