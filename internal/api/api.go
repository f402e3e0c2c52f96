// Package api exposes the panel inventory over HTTP using echo.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Veraticus/led-inventory/internal/common"
	"github.com/Veraticus/led-inventory/internal/service"
	"github.com/Veraticus/led-inventory/internal/storage"
)

// Checkpointer takes a database backup before a destructive operation.
type Checkpointer interface {
	AutoCheckpoint(ctx context.Context, prefix string) (string, error)
}

// Controller owns the /api/v1 route group and its dependencies.
type Controller struct {
	startTime    time.Time
	Echo         *echo.Echo
	Group        *echo.Group
	store        service.Storage
	checkpointer Checkpointer
	logger       *slog.Logger
	version      string
	retry        common.RetryOptions
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the structured logger used for requests and errors.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithVersion sets the version reported by the health endpoint.
func WithVersion(version string) Option {
	return func(c *Controller) {
		c.version = version
	}
}

// WithCheckpointer makes cleanup commits take a checkpoint first.
func WithCheckpointer(cp Checkpointer) Option {
	return func(c *Controller) {
		c.checkpointer = cp
	}
}

// WithCommitRetry retries individual deletes during a cleanup commit.
func WithCommitRetry(opts common.RetryOptions) Option {
	return func(c *Controller) {
		c.retry = opts
	}
}

// New creates a controller and registers every route on e.
func New(e *echo.Echo, store service.Storage, opts ...Option) *Controller {
	c := &Controller{
		Echo:      e,
		store:     store,
		logger:    slog.Default(),
		version:   "dev",
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With("service", "api")

	c.Group = e.Group("/api/v1")
	c.Group.Use(middleware.Recover())
	c.Group.Use(middleware.BodyLimit("1M"))
	c.Group.Use(c.LoggingMiddleware())

	c.initRoutes()
	return c
}

func (c *Controller) initRoutes() {
	c.Group.GET("/health", c.HealthCheck)

	c.initPanelRoutes()
	c.initRuleRoutes()
	c.initStoreRoutes()
	c.initClassifyRoutes()
	c.initDuplicateRoutes()
}

// LoggingMiddleware logs every request through slog.
func (c *Controller) LoggingMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			start := time.Now()
			err := next(ctx)

			req := ctx.Request()
			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.String("query", req.URL.RawQuery),
				slog.Int("status", ctx.Response().Status),
				slog.String("ip", ctx.RealIP()),
				slog.Int64("latency_ms", time.Since(start).Milliseconds()),
			}
			if err != nil {
				attrs = append(attrs, slog.Any("error", err))
			}
			c.logger.LogAttrs(req.Context(), slog.LevelInfo, "API Request", attrs...)

			return err
		}
	}
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error         string `json:"error"`
	Message       string `json:"message"`
	CorrelationID string `json:"correlationId"`
	Code          int    `json:"code"`
}

// HandleError logs err and writes it as an ErrorResponse. A zero code is
// derived from the error.
func (c *Controller) HandleError(ctx echo.Context, err error, message string, code int) error {
	if code == 0 {
		code = statusFor(err)
	}

	resp := ErrorResponse{
		Message:       message,
		Code:          code,
		CorrelationID: uuid.NewString()[:8],
	}
	if err != nil {
		resp.Error = err.Error()
	} else {
		resp.Error = message
	}

	level := slog.LevelWarn
	if code >= http.StatusInternalServerError {
		level = slog.LevelError
	}
	c.logger.Log(ctx.Request().Context(), level, "API Error",
		"correlation_id", resp.CorrelationID,
		"message", message,
		"error", resp.Error,
		"code", code,
		"path", ctx.Request().URL.Path,
		"method", ctx.Request().Method)

	return ctx.JSON(code, resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, common.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, common.ErrRuleConflict),
		errors.Is(err, common.ErrDuplicateEntry),
		errors.Is(err, common.ErrStoreInUse):
		return http.StatusConflict
	case errors.Is(err, common.ErrInvalidRule),
		errors.Is(err, common.ErrInvalidDimensions),
		errors.Is(err, storage.ErrInvalidPanel),
		errors.Is(err, storage.ErrInvalidStore),
		errors.Is(err, storage.ErrInvalidID),
		errors.Is(err, storage.ErrEmptyString),
		errors.Is(err, storage.ErrNilParameter):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// HealthCheck reports liveness and whether the database answers.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	resp := map[string]any{
		"status":  "healthy",
		"version": c.version,
		"uptime":  time.Since(c.startTime).Round(time.Second).String(),
	}

	count, err := c.store.CountPanels(ctx.Request().Context())
	if err != nil {
		resp["status"] = "degraded"
		resp["database"] = err.Error()
		return ctx.JSON(http.StatusServiceUnavailable, resp)
	}
	resp["panels"] = count

	return ctx.JSON(http.StatusOK, resp)
}

func parseID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, storage.ErrInvalidID
	}
	return id, nil
}

func queryInt(ctx echo.Context, name string) (int, error) {
	raw := ctx.QueryParam(name)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, common.NewUserError("invalid "+name, storage.ErrInvalidID)
	}
	return n, nil
}
