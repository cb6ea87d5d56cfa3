package httpapi

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"LabRateImporter/internal/domain"
	"LabRateImporter/internal/ports"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100

	pingTimeout = 2 * time.Second
)

// Handler exposes the stored catalog over HTTP.
type Handler struct {
	catalog ports.TestCatalog
	logger  *slog.Logger
}

// NewHandler creates a Handler backed by catalog.
func NewHandler(catalog ports.TestCatalog, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{catalog: catalog, logger: logger}
}

// RegisterRoutes binds the catalog and health routes to e.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)

	g := e.Group("/api/individual-tests")
	g.GET("", h.ListTests)
	g.GET("/:id", h.GetTest)
}

// NewServer returns an Echo instance with the catalog routes registered.
func NewServer(catalog ports.TestCatalog, logger *slog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	NewHandler(catalog, logger).RegisterRoutes(e)
	return e
}

// ListTests handles GET /api/individual-tests.
func (h *Handler) ListTests(c echo.Context) error {
	filter := ports.CatalogFilter{
		Category: domain.Category(c.QueryParam("category")),
		Query:    c.QueryParam("q"),
	}
	if filter.Category != "" && !filter.Category.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "unknown category "+strconv.Quote(string(filter.Category)))
	}

	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	if limit <= 0 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	offset, _ := strconv.Atoi(c.QueryParam("offset"))
	if offset < 0 {
		offset = 0
	}

	tests, total, err := h.catalog.List(c.Request().Context(), filter, limit, offset)
	if err != nil {
		h.logger.Error("list tests failed", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to list tests")
	}
	if tests == nil {
		tests = []domain.CatalogTest{}
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"data":     tests,
		"total":    total,
		"limit":    limit,
		"offset":   offset,
		"has_more": offset+limit < total,
	})
}

// GetTest handles GET /api/individual-tests/:id.
func (h *Handler) GetTest(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid test id")
	}

	test, err := h.catalog.Get(c.Request().Context(), id)
	if errors.Is(err, ports.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "test not found")
	}
	if err != nil {
		h.logger.Error("get test failed", "id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to load test")
	}
	return c.JSON(http.StatusOK, test)
}

// Health handles GET /health.
func (h *Handler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), pingTimeout)
	defer cancel()

	if err := h.catalog.Ping(ctx); err != nil {
		h.logger.Warn("health check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
