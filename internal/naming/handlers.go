package naming

import (
	"errors"
	"net/http"
	"os"

	"github.com/labstack/echo/v4"

	"github.com/butinmaker/butinmaker/internal/mediainfo"
	"github.com/butinmaker/butinmaker/internal/organizer"
)

// Linker creates hardlinks.
type Linker interface {
	Link(source, dest string) (*organizer.Result, error)
}

// Handlers provides HTTP handlers for release naming.
type Handlers struct {
	builder     *Builder
	linker      Linker
	hardlinkDir func() string
}

// NewHandlers creates new naming handlers. hardlinkDir is read per request.
func NewHandlers(builder *Builder, linker Linker, hardlinkDir func() string) *Handlers {
	return &Handlers{builder: builder, linker: linker, hardlinkDir: hardlinkDir}
}

// RegisterRoutes registers the naming routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.POST("/release-name", h.ReleaseName)
	g.POST("/hardlink", h.Hardlink)
	g.GET("/detect-episode", h.DetectEpisode)
	g.GET("/extract-title", h.ExtractTitle)
}

// ReleaseNameRequest is the body of POST /naming/release-name.
type ReleaseNameRequest struct {
	Title       string               `json:"title"`
	Year        string               `json:"year,omitempty" validate:"omitempty,numeric,len=4"`
	MediaInfo   *mediainfo.MediaInfo `json:"media_info,omitempty"`
	Options     Options              `json:"options"`
	SourceName  string               `json:"source_name,omitempty"`
	SourceIsDir bool                 `json:"source_is_dir,omitempty"`
}

// ReleaseNameResponse carries the generated name and its hardlink path.
type ReleaseNameResponse struct {
	ReleaseName  string `json:"release_name"`
	HardlinkPath string `json:"hardlink_path"`
}

// ReleaseName builds a release name.
// POST /api/v1/naming/release-name
func (h *Handlers) ReleaseName(c echo.Context) error {
	var req ReleaseNameRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	if req.Options.ContentType != "" && !req.Options.ContentType.Valid() {
		return echo.NewHTTPError(http.StatusBadRequest, "content_type must be movie or tv")
	}

	name, err := h.builder.Build(req.Title, req.Year, req.MediaInfo, req.Options)
	if err != nil {
		if errors.Is(err, ErrEmptyTitle) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	sourceName := req.SourceName
	if sourceName == "" && req.MediaInfo != nil {
		sourceName = req.MediaInfo.FileName
	}

	return c.JSON(http.StatusOK, ReleaseNameResponse{
		ReleaseName:  name,
		HardlinkPath: HardlinkPath(h.hardlinkDir(), name, sourceName, req.SourceIsDir),
	})
}

// HardlinkRequest is the body of POST /naming/hardlink.
type HardlinkRequest struct {
	Source      string `json:"source" validate:"required"`
	ReleaseName string `json:"release_name" validate:"required"`
}

// HardlinkResponse reports a link operation.
type HardlinkResponse struct {
	*organizer.Result
	Message string `json:"message"`
}

// Hardlink links a source file or directory under the hardlink directory.
// POST /api/v1/naming/hardlink
func (h *Handlers) Hardlink(c echo.Context) error {
	var req HardlinkRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	info, err := os.Stat(req.Source)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "source does not exist")
	}
	dest := HardlinkPath(h.hardlinkDir(), req.ReleaseName, req.Source, info.IsDir())

	result, err := h.linker.Link(req.Source, dest)
	if err != nil {
		return linkError(err)
	}
	return c.JSON(http.StatusOK, HardlinkResponse{Result: result, Message: result.Message()})
}

// DetectEpisode reports season and episode markers in a file name.
// GET /api/v1/naming/detect-episode?filename=...
func (h *Handlers) DetectEpisode(c echo.Context) error {
	filename := c.QueryParam("filename")
	if filename == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "filename parameter is required")
	}
	return c.JSON(http.StatusOK, DetectEpisode(filename))
}

// ExtractTitle returns the searchable title of a file name.
// GET /api/v1/naming/extract-title?filename=...
func (h *Handlers) ExtractTitle(c echo.Context) error {
	filename := c.QueryParam("filename")
	if filename == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "filename parameter is required")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"original_filename": filename,
		"extracted_title":   SearchQuery(filename),
	})
}

func linkError(err error) error {
	switch {
	case errors.Is(err, organizer.ErrSourceNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, organizer.ErrOutsideRoot):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, organizer.ErrDestinationExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, organizer.ErrCrossDevice):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
