package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Veraticus/led-inventory/internal/common"
	"github.com/Veraticus/led-inventory/internal/model"
	"github.com/Veraticus/led-inventory/internal/service"
)

func (c *Controller) initPanelRoutes() {
	panels := c.Group.Group("/panels")
	panels.GET("", c.ListPanels)
	panels.POST("", c.CreatePanel)
	panels.GET("/:id", c.GetPanel)
	panels.DELETE("/:id", c.DeletePanel)
}

// PanelRequest is the body accepted by POST /panels.
type PanelRequest struct {
	StoreID  *int64 `json:"storeId"`
	Code     string `json:"code"`
	Category string `json:"category"`
	Status   string `json:"status"`
	Location string `json:"location"`
	Notes    string `json:"notes"`
	WidthPx  int    `json:"widthPx"`
	HeightPx int    `json:"heightPx"`
}

func (r PanelRequest) panel() model.Panel {
	return model.Panel{
		Code:       r.Code,
		Category:   r.Category,
		Status:     model.PanelStatus(r.Status),
		StoreID:    r.StoreID,
		Location:   r.Location,
		Notes:      r.Notes,
		Dimensions: model.Dimensions{WidthPx: r.WidthPx, HeightPx: r.HeightPx},
	}
}

// ListPanels handles GET /panels with optional code, category, store, limit and offset.
func (c *Controller) ListPanels(ctx echo.Context) error {
	filter := service.PanelFilter{
		Code:     ctx.QueryParam("code"),
		Category: ctx.QueryParam("category"),
	}

	var err error
	if filter.Limit, err = queryInt(ctx, "limit"); err != nil {
		return c.HandleError(ctx, err, "Invalid limit", http.StatusBadRequest)
	}
	if filter.Offset, err = queryInt(ctx, "offset"); err != nil {
		return c.HandleError(ctx, err, "Invalid offset", http.StatusBadRequest)
	}
	if raw := ctx.QueryParam("store"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return c.HandleError(ctx, err, "Invalid store id", http.StatusBadRequest)
		}
		filter.StoreID = &id
	}

	panels, err := c.store.ListPanels(ctx.Request().Context(), filter)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list panels", 0)
	}
	return ctx.JSON(http.StatusOK, panels)
}

// CreatePanel handles POST /panels.
func (c *Controller) CreatePanel(ctx echo.Context) error {
	var req PanelRequest
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	panel := req.panel()
	if err := c.store.CreatePanel(ctx.Request().Context(), &panel); err != nil {
		return c.HandleError(ctx, err, "Failed to create panel", 0)
	}
	return ctx.JSON(http.StatusCreated, panel)
}

// GetPanel handles GET /panels/:id.
func (c *Controller) GetPanel(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid panel id", http.StatusBadRequest)
	}

	panel, err := c.store.GetPanel(ctx.Request().Context(), id)
	if err != nil {
		return c.HandleError(ctx, err, "Failed to get panel", 0)
	}
	return ctx.JSON(http.StatusOK, panel)
}

// DeletePanel handles DELETE /panels/:id. Deleting a missing panel succeeds
// so clients can retry.
func (c *Controller) DeletePanel(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid panel id", http.StatusBadRequest)
	}

	if err := c.store.DeletePanel(ctx.Request().Context(), id); err != nil && !errors.Is(err, common.ErrNotFound) {
		return c.HandleError(ctx, err, "Failed to delete panel", 0)
	}
	return ctx.NoContent(http.StatusNoContent)
}
