package api

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Veraticus/led-inventory/internal/classify"
	"github.com/Veraticus/led-inventory/internal/model"
)

func (c *Controller) initRuleRoutes() {
	rules := c.Group.Group("/rules")
	rules.GET("", c.ListRules)
	rules.POST("", c.CreateRule)
	rules.PUT("/:id", c.UpdateRule)
	rules.DELETE("/:id", c.DeleteRule)
}

// RuleRequest is the body accepted by POST and PUT /rules. Active defaults to true.
type RuleRequest struct {
	Active      *bool   `json:"active"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
	MinRatio    float64 `json:"minRatio"`
	MaxRatio    float64 `json:"maxRatio"`
}

func (r RuleRequest) rule(id int64) model.ClassificationRule {
	active := true
	if r.Active != nil {
		active = *r.Active
	}
	return model.ClassificationRule{
		ID:          id,
		Label:       r.Label,
		Description: r.Description,
		MinRatio:    r.MinRatio,
		MaxRatio:    r.MaxRatio,
		IsActive:    active,
	}
}

// ConflictResponse is returned with 409 when a rule overlaps an active one.
type ConflictResponse struct {
	ErrorResponse
	Conflict model.ClassificationRule `json:"conflict"`
}

// ListRules handles GET /rules.
func (c *Controller) ListRules(ctx echo.Context) error {
	rules, err := c.store.ListRules(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list rules", 0)
	}
	return ctx.JSON(http.StatusOK, rules)
}

// CreateRule handles POST /rules.
func (c *Controller) CreateRule(ctx echo.Context) error {
	var req RuleRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	rule := req.rule(0)
	if err := c.store.CreateRule(ctx.Request().Context(), &rule); err != nil {
		return c.ruleError(ctx, err, "Failed to create rule")
	}
	return ctx.JSON(http.StatusCreated, rule)
}

// UpdateRule handles PUT /rules/:id.
func (c *Controller) UpdateRule(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid rule id", http.StatusBadRequest)
	}

	var req RuleRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	rule := req.rule(id)
	if err := c.store.UpdateRule(ctx.Request().Context(), &rule); err != nil {
		return c.ruleError(ctx, err, "Failed to update rule")
	}
	return ctx.JSON(http.StatusOK, rule)
}

// DeleteRule handles DELETE /rules/:id.
func (c *Controller) DeleteRule(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid rule id", http.StatusBadRequest)
	}

	if err := c.store.DeleteRule(ctx.Request().Context(), id); err != nil {
		return c.HandleError(ctx, err, "Failed to delete rule", 0)
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (c *Controller) ruleError(ctx echo.Context, err error, message string) error {
	var conflict *classify.RuleConflictError
	if !errors.As(err, &conflict) {
		return c.HandleError(ctx, err, message, 0)
	}

	c.logger.Warn("Rule rejected by conflict gate",
		"label", conflict.Candidate.Label,
		"conflict_id", conflict.Existing.ID,
		"conflict_label", conflict.Existing.Label)

	return ctx.JSON(http.StatusConflict, ConflictResponse{
		ErrorResponse: ErrorResponse{
			Error:   err.Error(),
			Message: message,
			Code:    http.StatusConflict,
		},
		Conflict: conflict.Existing,
	})
}
