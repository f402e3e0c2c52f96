package api

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Veraticus/led-inventory/internal/model"
)

func (c *Controller) initStoreRoutes() {
	stores := c.Group.Group("/stores")
	stores.GET("", c.ListStores)
	stores.POST("", c.CreateStore)
	stores.DELETE("/:id", c.DeleteStore)
}

// ListStores handles GET /stores.
func (c *Controller) ListStores(ctx echo.Context) error {
	stores, err := c.store.ListStores(ctx.Request().Context())
	if err != nil {
		return c.HandleError(ctx, err, "Failed to list stores", 0)
	}
	return ctx.JSON(http.StatusOK, stores)
}

// CreateStore handles POST /stores.
func (c *Controller) CreateStore(ctx echo.Context) error {
	var req struct {
		Name string `json:"name"`
		City string `json:"city"`
	}
	if err := ctx.Bind(&req); err != nil {
		return c.HandleError(ctx, err, "Invalid request body", http.StatusBadRequest)
	}

	store := model.Store{Name: req.Name, City: req.City}
	if err := c.store.CreateStore(ctx.Request().Context(), &store); err != nil {
		return c.HandleError(ctx, err, "Failed to create store", 0)
	}
	return ctx.JSON(http.StatusCreated, store)
}

// DeleteStore handles DELETE /stores/:id. Stores that still hold panels are kept.
func (c *Controller) DeleteStore(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return c.HandleError(ctx, err, "Invalid store id", http.StatusBadRequest)
	}

	if err := c.store.DeleteStore(ctx.Request().Context(), id); err != nil {
		return c.HandleError(ctx, err, "Failed to delete store", 0)
	}
	return ctx.NoContent(http.StatusNoContent)
}
