package scheduler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

type Handlers struct {
	scheduler *Scheduler
}

func NewHandlers(s *Scheduler) *Handlers {
	return &Handlers{scheduler: s}
}

func (h *Handlers) RegisterRoutes(g *echo.Group) {
	g.GET("", h.List)
	g.POST("/:id/run", h.Run)
}

// List returns the scheduled tasks.
// GET /api/v1/tasks
func (h *Handlers) List(c echo.Context) error {
	return c.JSON(http.StatusOK, h.scheduler.Tasks())
}

// Run triggers a task now.
// POST /api/v1/tasks/:id/run
func (h *Handlers) Run(c echo.Context) error {
	err := h.scheduler.RunNow(c.Param("id"))
	switch {
	case errors.Is(err, ErrTaskNotFound):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, ErrTaskRunning):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusAccepted)
}
