package health

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// Handlers serves liveness and dependency checks.
type Handlers struct {
	service *Service
	version string
}

// NewHandlers creates health handlers.
func NewHandlers(service *Service, version string) *Handlers {
	return &Handlers{service: service, version: version}
}

// Liveness reports that the process is up.
// GET /health
func (h *Handlers) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": h.version})
}

// Report runs the dependency checks. The status code stays 200 so the UI
// can show warnings; Status carries the verdict.
// GET /api/v1/system/health
func (h *Handlers) Report(c echo.Context) error {
	return c.JSON(http.StatusOK, h.service.Report(c.Request().Context()))
}
