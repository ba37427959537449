package api

import (
	"github.com/butinmaker/butinmaker/internal/bbcode"
	"github.com/butinmaker/butinmaker/internal/config"
	"github.com/butinmaker/butinmaker/internal/health"
	"github.com/butinmaker/butinmaker/internal/mediainfo"
	"github.com/butinmaker/butinmaker/internal/metadata"
	"github.com/butinmaker/butinmaker/internal/naming"
	"github.com/butinmaker/butinmaker/internal/presentation"
	"github.com/butinmaker/butinmaker/internal/scheduler"
	"github.com/butinmaker/butinmaker/internal/settings"
	"github.com/butinmaker/butinmaker/internal/taxonomy"
	"github.com/butinmaker/butinmaker/internal/workflow"
)

// setupRoutes configures API routes.
func (s *Server) setupRoutes() {
	healthHandlers := health.NewHandlers(s.healthService, config.Version)
	s.echo.GET("/health", healthHandlers.Liveness)

	api := s.echo.Group("/api/v1", s.limiter.Middleware())
	api.GET("/system/health", healthHandlers.Report)

	mediainfo.NewHandlers(s.mediainfoService, s.settingsService.OutputDir).RegisterRoutes(api.Group("/mediainfo"))
	metadata.NewHandlers(s.metadataService).RegisterRoutes(api.Group("/tmdb"))
	naming.NewHandlers(s.namingBuilder, s.organizerService, s.settingsService.HardlinkDir).RegisterRoutes(api.Group("/naming"))
	taxonomy.NewHandlers(s.taxonomyService).RegisterRoutes(api.Group("/taxonomy"))
	bbcode.NewHandlers().RegisterRoutes(api.Group("/bbcode"))
	presentation.NewHandlers(s.presentationService).RegisterRoutes(api.Group("/presentation"))

	settings.NewHandlers(s.settingsService).RegisterRoutes(api.Group("/settings"))

	// Release sessions
	workflow.NewHandlers(s.workflowService).RegisterRoutes(api.Group("/sessions"))

	scheduler.NewHandlers(s.scheduler).RegisterRoutes(api.Group("/tasks"))
	if s.logs != nil {
		s.logs.RegisterRoutes(api.Group("/logs"))
	}
}
