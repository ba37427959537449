package presentation

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	generator *Generator
}

func NewHandlers(generator *Generator) *Handlers {
	return &Handlers{generator: generator}
}

func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.POST("/generate", h.Generate)
	g.GET("/template", h.GetTemplate)
	g.PUT("/template", h.SaveTemplate)
}

// Generate renders a presentation
// POST /api/v1/presentation/generate
func (h *Handlers) Generate(c echo.Context) error {
	var d Data
	if err := c.Bind(&d); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.JSON(http.StatusOK, map[string]string{"bbcode": h.generator.Generate(d)})
}

// GetTemplate returns the active template
// GET /api/v1/presentation/template
func (h *Handlers) GetTemplate(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"template": h.generator.Template()})
}

type SaveTemplateRequest struct {
	Template string `json:"template" validate:"required"`
}

// SaveTemplate replaces the active template
// PUT /api/v1/presentation/template
func (h *Handlers) SaveTemplate(c echo.Context) error {
	var req SaveTemplateRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if err := h.generator.SaveTemplate(req.Template); err != nil {
		if errors.Is(err, ErrEmptyTemplate) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]bool{"success": true})
}
