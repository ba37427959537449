package workflow

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/butinmaker/butinmaker/internal/mediainfo"
	"github.com/butinmaker/butinmaker/internal/metadata"
	"github.com/butinmaker/butinmaker/internal/naming"
	"github.com/butinmaker/butinmaker/internal/organizer"
	"github.com/butinmaker/butinmaker/internal/taxonomy"
)

// Handlers exposes sessions over HTTP.
type Handlers struct {
	service *Service
}

// NewHandlers creates session handlers.
func NewHandlers(service *Service) *Handlers {
	return &Handlers{service: service}
}

// RegisterRoutes registers the session routes.
func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.POST("", h.Create)
	g.GET("/:id", h.Get)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/reset", h.Reset)

	g.PUT("/:id/media", h.SetMedia)
	g.PUT("/:id/title", h.SetTitle)
	g.PUT("/:id/options", h.SetOptions)
	g.PUT("/:id/content-type", h.SetContentType)
	g.PUT("/:id/release-name", h.SetReleaseName)

	g.POST("/:id/tags/auto", h.AutoSelectTags)
	g.POST("/:id/tags/toggle", h.ToggleTag)
	g.PUT("/:id/tags", h.SetTags)

	g.PUT("/:id/description", h.SetDescription)
	g.GET("/:id/preview", h.Preview)
	g.POST("/:id/presentation", h.GeneratePresentation)

	g.POST("/:id/nfo", h.GenerateNFO)
	g.POST("/:id/hardlink", h.CreateHardlink)
	g.PUT("/:id/torrent", h.SetTorrentPath)
	g.POST("/:id/upload", h.Upload)
	g.POST("/:id/upload/retry", h.RetryUpload)
}

// Create starts a session.
// POST /api/v1/sessions
func (h *Handlers) Create(c echo.Context) error {
	return c.JSON(http.StatusCreated, h.service.Create())
}

// Get returns a session.
// GET /api/v1/sessions/:id
func (h *Handlers) Get(c echo.Context) error {
	return h.respond(c)(h.service.Get(c.Param("id")))
}

// Delete drops a session.
// DELETE /api/v1/sessions/:id
func (h *Handlers) Delete(c echo.Context) error {
	if err := h.service.Delete(c.Param("id")); err != nil {
		return sessionError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// Reset clears a session for a new release.
// POST /api/v1/sessions/:id/reset
func (h *Handlers) Reset(c echo.Context) error {
	return h.respond(c)(h.service.Reset(c.Param("id")))
}

type mediaRequest struct {
	Path string `json:"path" validate:"required"`
}

// SetMedia selects and analyzes the release source.
// PUT /api/v1/sessions/:id/media
func (h *Handlers) SetMedia(c echo.Context) error {
	var req mediaRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	return h.respond(c)(h.service.SetMedia(c.Request().Context(), c.Param("id"), req.Path))
}

type titleRequest struct {
	Type   string `json:"type" validate:"required,oneof=movie tv"`
	TMDBID int    `json:"tmdb_id" validate:"required,gt=0"`
}

// SetTitle selects a TMDB title.
// PUT /api/v1/sessions/:id/title
func (h *Handlers) SetTitle(c echo.Context) error {
	var req titleRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	return h.respond(c)(h.service.SetTitle(c.Request().Context(), c.Param("id"), req.Type, req.TMDBID))
}

// SetOptions replaces the naming options.
// PUT /api/v1/sessions/:id/options
func (h *Handlers) SetOptions(c echo.Context) error {
	var opts naming.Options
	if err := c.Bind(&opts); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return h.respond(c)(h.service.SetOptions(c.Param("id"), opts))
}

type contentTypeRequest struct {
	ContentType string `json:"content_type" validate:"required,oneof=movie tv"`
}

// SetContentType switches between movie and series.
// PUT /api/v1/sessions/:id/content-type
func (h *Handlers) SetContentType(c echo.Context) error {
	var req contentTypeRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	return h.respond(c)(h.service.SetContentType(c.Param("id"), taxonomy.ContentType(req.ContentType)))
}

type releaseNameRequest struct {
	ReleaseName string `json:"release_name" validate:"required"`
}

// SetReleaseName stores a manually edited name.
// PUT /api/v1/sessions/:id/release-name
func (h *Handlers) SetReleaseName(c echo.Context) error {
	var req releaseNameRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	return h.respond(c)(h.service.SetReleaseName(c.Param("id"), req.ReleaseName))
}

// AutoSelectTags runs one-shot tag inference.
// POST /api/v1/sessions/:id/tags/auto
func (h *Handlers) AutoSelectTags(c echo.Context) error {
	return h.respond(c)(h.service.AutoSelectTags(c.Request().Context(), c.Param("id")))
}

type toggleTagRequest struct {
	TagID string `json:"tag_id" validate:"required"`
}

// ToggleTag selects or deselects a tag.
// POST /api/v1/sessions/:id/tags/toggle
func (h *Handlers) ToggleTag(c echo.Context) error {
	var req toggleTagRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	return h.respond(c)(h.service.ToggleTag(c.Param("id"), req.TagID))
}

type setTagsRequest struct {
	TagIDs []string `json:"tag_ids"`
}

// SetTags replaces the tag selection.
// PUT /api/v1/sessions/:id/tags
func (h *Handlers) SetTags(c echo.Context) error {
	var req setTagsRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return h.respond(c)(h.service.SetTags(c.Param("id"), req.TagIDs))
}

type descriptionRequest struct {
	Description string `json:"description"`
}

// SetDescription stores the BBCode presentation.
// PUT /api/v1/sessions/:id/description
func (h *Handlers) SetDescription(c echo.Context) error {
	var req descriptionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return h.respond(c)(h.service.SetDescription(c.Param("id"), req.Description))
}

// Preview returns the sanitized HTML of the presentation.
// GET /api/v1/sessions/:id/preview
func (h *Handlers) Preview(c echo.Context) error {
	html, err := h.service.Preview(c.Param("id"))
	if err != nil {
		return sessionError(err)
	}
	return c.JSON(http.StatusOK, map[string]string{"html": html})
}

// GeneratePresentation rebuilds the presentation from title and media.
// POST /api/v1/sessions/:id/presentation
func (h *Handlers) GeneratePresentation(c echo.Context) error {
	return h.respond(c)(h.service.GeneratePresentation(c.Param("id")))
}

// GenerateNFO writes the release NFO.
// POST /api/v1/sessions/:id/nfo
func (h *Handlers) GenerateNFO(c echo.Context) error {
	return h.respond(c)(h.service.GenerateNFO(c.Request().Context(), c.Param("id")))
}

// CreateHardlink links the media under its release name.
// POST /api/v1/sessions/:id/hardlink
func (h *Handlers) CreateHardlink(c echo.Context) error {
	return h.respond(c)(h.service.CreateHardlink(c.Param("id")))
}

type torrentRequest struct {
	Path string `json:"path" validate:"required"`
}

// SetTorrentPath selects the .torrent file to upload.
// PUT /api/v1/sessions/:id/torrent
func (h *Handlers) SetTorrentPath(c echo.Context) error {
	var req torrentRequest
	if err := bindValid(c, &req); err != nil {
		return err
	}
	return h.respond(c)(h.service.SetTorrentPath(c.Param("id"), req.Path))
}

// Upload sends the release to the tracker. The outcome is in
// requests.upload of the returned session.
// POST /api/v1/sessions/:id/upload
func (h *Handlers) Upload(c echo.Context) error {
	return h.respond(c)(h.service.Upload(c.Request().Context(), c.Param("id")))
}

// RetryUpload returns a failed upload to idle.
// POST /api/v1/sessions/:id/upload/retry
func (h *Handlers) RetryUpload(c echo.Context) error {
	return h.respond(c)(h.service.RetryUpload(c.Param("id")))
}

func (h *Handlers) respond(c echo.Context) func(State, error) error {
	return func(st State, err error) error {
		if err != nil {
			return sessionError(err)
		}
		return c.JSON(http.StatusOK, st)
	}
}

func bindValid(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	return c.Validate(req)
}

func sessionError(err error) error {
	switch {
	case errors.Is(err, ErrSessionNotFound),
		errors.Is(err, ErrMediaNotFound),
		errors.Is(err, metadata.ErrNotFound),
		errors.Is(err, organizer.ErrSourceNotFound),
		errors.Is(err, mediainfo.ErrFileNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrNoMedia),
		errors.Is(err, ErrNoReleaseName),
		errors.Is(err, metadata.ErrInvalidType):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrNotRetryable),
		errors.Is(err, organizer.ErrDestinationExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.Is(err, organizer.ErrOutsideRoot):
		return echo.NewHTTPError(http.StatusForbidden, err.Error())
	case errors.Is(err, ErrNoVideoInDir),
		errors.Is(err, organizer.ErrCrossDevice):
		return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, metadata.ErrNoProvidersConfigured),
		errors.Is(err, mediainfo.ErrNoProbeTool):
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
