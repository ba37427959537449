package metadata

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
)

// Handlers provides HTTP handlers for TMDB lookups.
type Handlers struct {
	service *Service
}

// NewHandlers creates new metadata handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the metadata routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/search", h.Search)
	g.GET("/:type/:id", h.Get)
	g.DELETE("/cache", h.ClearCache)
}

// Search searches movies and series.
// GET /api/v1/tmdb/search?query=...&type=movie|tv|multi&year=...
func (h *Handlers) Search(c echo.Context) error {
	query := c.QueryParam("query")
	if query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query parameter is required")
	}

	var year int
	if yearStr := c.QueryParam("year"); yearStr != "" {
		if y, err := strconv.Atoi(yearStr); err == nil {
			year = y
		}
	}

	results, err := h.service.Search(c.Request().Context(), query, c.QueryParam("type"), year)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, results)
}

// Get returns title details.
// GET /api/v1/tmdb/:type/:id
func (h *Handlers) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid id")
	}

	result, err := h.service.Get(c.Request().Context(), c.Param("type"), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, result)
}

// ClearCache clears the metadata cache.
// DELETE /api/v1/tmdb/cache
func (h *Handlers) ClearCache(c echo.Context) error {
	h.service.ClearCache()
	return c.NoContent(http.StatusNoContent)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrNoProvidersConfigured):
		return echo.NewHTTPError(http.StatusServiceUnavailable, "TMDB API key is not configured")
	case errors.Is(err, ErrInvalidType):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "title not found")
	default:
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
}
