package settings

import (
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
	g.GET("", h.Get)
	g.PUT("", h.Update)
}

// Get returns the settings with API keys masked.
// GET /api/v1/settings
func (h *Handlers) Get(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Current().Masked())
}

// Update changes settings.
// PUT /api/v1/settings
func (h *Handlers) Update(c echo.Context) error {
	var req Update
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updated, err := h.service.Update(c.Request().Context(), req)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, updated.Masked())
}
