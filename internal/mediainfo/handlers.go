package mediainfo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	service   *Service
	outputDir func() string
}

// NewHandlers creates the mediainfo handlers. outputDir resolves the
// directory NFO files are written to at request time.
func NewHandlers(service *Service, outputDir func() string) *Handlers {
	return &Handlers{service: service, outputDir: outputDir}
}

func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("/analyze", h.Analyze)
	g.GET("/raw", h.Raw)
	g.POST("/nfo", h.GenerateNFO)
}

// Analyze returns the tracks of a media file
// GET /api/v1/mediainfo/analyze?path=
func (h *Handlers) Analyze(c echo.Context) error {
	path := c.QueryParam("path")
	if path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "path is required")
	}
	info, err := h.service.Analyze(c.Request().Context(), path)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, info)
}

// Raw returns the full text report
// GET /api/v1/mediainfo/raw?path=
func (h *Handlers) Raw(c echo.Context) error {
	path := c.QueryParam("path")
	if path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "path is required")
	}
	text, err := h.service.Raw(c.Request().Context(), path)
	if err != nil {
		return httpError(err)
	}
	return c.String(http.StatusOK, text)
}

type nfoRequest struct {
	Path        string `json:"file_path"`
	ReleaseName string `json:"release_name"`
}

// GenerateNFO writes an NFO for a media file
// POST /api/v1/mediainfo/nfo
func (h *Handlers) GenerateNFO(c echo.Context) error {
	var req nfoRequest
	if err := c.Bind(&req); err != nil || req.Path == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "file_path is required")
	}
	nfo, err := h.service.GenerateNFO(c.Request().Context(), req.Path, req.ReleaseName, h.outputDir())
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, nfo)
}

func httpError(err error) error {
	switch {
	case errors.Is(err, ErrFileNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNoProbeTool), errors.Is(err, ErrMediaInfoMissing):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
