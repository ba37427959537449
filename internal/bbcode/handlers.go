package bbcode

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handlers struct{}

func NewHandlers() *Handlers {
	return &Handlers{}
}

func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.POST("/preview", h.Preview)
	g.GET("/stages", h.Stages)
}

type PreviewRequest struct {
	BBCode string `json:"bbcode"`
}

type PreviewResponse struct {
	HTML string `json:"html"`
}

// Preview renders BBCode to sanitized HTML
// POST /api/v1/bbcode/preview
func (h *Handlers) Preview(c echo.Context) error {
	var req PreviewRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.JSON(http.StatusOK, PreviewResponse{HTML: Preview(req.BBCode)})
}

// Stages lists the rendering stages in order
// GET /api/v1/bbcode/stages
func (h *Handlers) Stages(c echo.Context) error {
	return c.JSON(http.StatusOK, Stages())
}
