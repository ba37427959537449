package taxonomy

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	service *Service
}

func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/groups", h.GetGroups)
	g.GET("/category", h.GetCategory)
	g.POST("/refresh", h.Refresh)
}

// GetGroups returns the resolved tag groups
// GET /api/v1/taxonomy/groups?type=movie|tv
func (h *Handlers) GetGroups(c echo.Context) error {
	ct := ParseContentType(c.QueryParam("type"))
	return c.JSON(http.StatusOK, h.service.Groups(c.Request().Context(), ct))
}

// GetCategory returns the upload category id for a content type
// GET /api/v1/taxonomy/category?type=movie|tv
func (h *Handlers) GetCategory(c echo.Context) error {
	ct := ParseContentType(c.QueryParam("type"))
	id, err := h.service.CategoryID(c.Request().Context(), ct)
	if errors.Is(err, ErrCategoryNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"categoryId": id, "type": string(ct)})
}

// Refresh forces a fetch of the remote taxonomy
// POST /api/v1/taxonomy/refresh
func (h *Handlers) Refresh(c echo.Context) error {
	if err := h.service.Refresh(c.Request().Context()); err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}
