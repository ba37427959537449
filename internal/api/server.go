// Package api assembles the services and serves them over HTTP.
package api

import (
	"context"
	"fmt"
	"net/http"
	"path/filepath"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"

	securemw "github.com/butinmaker/butinmaker/internal/api/middleware"
	"github.com/butinmaker/butinmaker/internal/api/ratelimit"
	"github.com/butinmaker/butinmaker/internal/config"
	"github.com/butinmaker/butinmaker/internal/crypto"
	"github.com/butinmaker/butinmaker/internal/database"
	"github.com/butinmaker/butinmaker/internal/health"
	"github.com/butinmaker/butinmaker/internal/logger"
	"github.com/butinmaker/butinmaker/internal/mediainfo"
	"github.com/butinmaker/butinmaker/internal/metadata"
	"github.com/butinmaker/butinmaker/internal/naming"
	"github.com/butinmaker/butinmaker/internal/organizer"
	"github.com/butinmaker/butinmaker/internal/presentation"
	"github.com/butinmaker/butinmaker/internal/scheduler"
	"github.com/butinmaker/butinmaker/internal/settings"
	"github.com/butinmaker/butinmaker/internal/startup"
	"github.com/butinmaker/butinmaker/internal/taxonomy"
	"github.com/butinmaker/butinmaker/internal/tracker"
	"github.com/butinmaker/butinmaker/internal/validation"
	"github.com/butinmaker/butinmaker/internal/workflow"
)

// SecretFile holds the generated encryption secret when none is configured.
const SecretFile = "secret.key"

// ShutdownTimeout bounds graceful shutdown.
const ShutdownTimeout = 10 * time.Second

const rateLimitCleanupTaskID = "ratelimit-cleanup"

// Server handles HTTP requests for the Butin Maker API.
type Server struct {
	echo   *echo.Echo
	db     *database.DB
	cfg    *config.Config
	logs   *logger.Recent
	logger zerolog.Logger

	settingsService     *settings.Service
	trackerClient       *tracker.Client
	metadataService     *metadata.Service
	mediainfoService    *mediainfo.Service
	organizerService    *organizer.Service
	taxonomyService     *taxonomy.Service
	namingBuilder       *naming.Builder
	presentationService *presentation.Generator
	workflowService     *workflow.Service
	healthService       *health.Service
	scheduler           *scheduler.Scheduler
	limiter             *ratelimit.IPLimiter
}

// NewServer creates the services on top of a migrated database and
// registers every route. logs may be nil.
func NewServer(ctx context.Context, db *database.DB, cfg *config.Config, logs *logger.Recent, log zerolog.Logger) (*Server, error) {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.New()

	s := &Server{
		echo:   e,
		db:     db,
		cfg:    cfg,
		logs:   logs,
		logger: log,
	}

	if err := s.initServices(ctx); err != nil {
		return nil, err
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s, nil
}

func (s *Server) initServices(ctx context.Context) error {
	cfg := s.cfg
	conn := s.db.Conn()

	secret := cfg.Security.Secret
	if secret == "" {
		var err error
		secret, err = crypto.LoadOrCreateSecret(filepath.Join(cfg.Paths.DataDir, SecretFile))
		if err != nil {
			return fmt.Errorf("failed to prepare encryption secret: %w", err)
		}
	}
	secrets, err := settings.OpenSecretStore(ctx, conn, secret)
	if err != nil {
		return err
	}

	s.settingsService = settings.NewService(conn, secrets, settings.Defaults(cfg), s.logger)
	if err := s.settingsService.Load(ctx); err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	s.trackerClient = tracker.NewClient(cfg.Tracker, s.logger)
	s.metadataService = metadata.NewService(cfg.TMDB, s.logger)
	s.settingsService.OnChange(func(st settings.Settings) {
		s.trackerClient.SetBaseURL(st.TrackerBaseURL)
		s.trackerClient.SetAPIKey(st.TrackerAPIKey)
		s.metadataService.SetAPIKey(st.TMDBAPIKey)
	})

	mediaCfg := mediainfo.DefaultConfig()
	mediaCfg.MediaInfoPath = cfg.MediaInfo.MediaInfoPath
	mediaCfg.FFprobePath = cfg.MediaInfo.FFprobePath
	s.mediainfoService = mediainfo.NewService(mediaCfg, s.logger)

	s.organizerService = organizer.NewService(s.settingsService.HardlinkDir, s.logger)
	s.taxonomyService = taxonomy.NewService(s.trackerClient, taxonomy.NewStore(conn), s.logger)
	s.namingBuilder = naming.NewBuilder(s.logger)
	s.presentationService = presentation.NewGenerator(cfg.Paths.DataDir, s.logger)

	s.workflowService = workflow.NewService(
		workflow.NewStore(),
		workflow.Deps{
			Media:     s.mediainfoService,
			Titles:    s.metadataService,
			Namer:     s.namingBuilder,
			Tags:      s.taxonomyService,
			Presenter: s.presentationService,
			Linker:    s.organizerService,
			Uploader:  s.trackerClient,
		},
		workflow.Paths{
			HardlinkDir: s.settingsService.HardlinkDir,
			OutputDir:   s.settingsService.OutputDir,
		},
		s.logger,
	)

	s.limiter = ratelimit.NewIPLimiter(ratelimit.DefaultRequestsPerMinute, ratelimit.DefaultBurst)

	s.scheduler, err = scheduler.New(s.logger)
	if err != nil {
		return err
	}
	if err := scheduler.RegisterDefaultTasks(s.scheduler, s.taxonomyService, s.workflowService); err != nil {
		return fmt.Errorf("failed to register tasks: %w", err)
	}
	if err := s.scheduler.Register(scheduler.Task{
		ID:          rateLimitCleanupTaskID,
		Name:        "Rate limiter cleanup",
		Description: "Forgets API clients that went quiet",
		Cron:        "*/10 * * * *",
		Func: func(context.Context) error {
			s.limiter.Cleanup(ratelimit.DefaultIdleTimeout)
			return nil
		},
	}); err != nil {
		return fmt.Errorf("failed to register tasks: %w", err)
	}

	s.healthService = health.NewService()
	s.healthService.Register("database", health.Database(conn))
	s.healthService.Register("probe", health.Configured(s.mediainfoService.IsAvailable, mediainfo.ErrNoProbeTool.Error()))
	s.healthService.Register("tracker", health.Configured(s.trackerClient.IsConfigured, "tracker API key is not configured"))
	s.healthService.Register("tmdb", health.Configured(s.metadataService.IsConfigured, "TMDB API key is not configured"))
	s.healthService.Register("hardlink_dir", health.Folder(s.settingsService.HardlinkDir))
	s.healthService.Register("output_dir", health.Folder(s.settingsService.OutputDir))

	return nil
}

// setupMiddleware configures Echo middleware.
func (s *Server) setupMiddleware() {
	s.echo.Use(middleware.Recover())
	s.echo.Use(middleware.RequestID())
	s.echo.Use(securemw.SecurityHeaders())

	s.echo.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept},
	}))

	s.echo.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogMethod:   true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			if v.Error != nil {
				s.logger.Error().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Err(v.Error).
					Msg("request error")
			} else {
				s.logger.Debug().
					Str("method", v.Method).
					Str("uri", v.URI).
					Int("status", v.Status).
					Dur("latency", v.Latency).
					Msg("request")
			}
			return nil
		},
	}))

	s.echo.Use(middleware.GzipWithConfig(middleware.GzipConfig{Level: 5}))
}

// WarmUp fetches the tracker taxonomy, retrying while the network is not
// ready. Failures leave the embedded taxonomy in use.
func (s *Server) WarmUp(ctx context.Context) {
	if !s.trackerClient.IsConfigured() {
		s.logger.Info().Msg("Tracker API key not set, skipping taxonomy warm-up")
		return
	}
	err := startup.Retry(ctx, "taxonomy warm-up", startup.DefaultBackoff(), s.logger, s.taxonomyService.Refresh)
	if err != nil {
		s.logger.Warn().Err(err).Msg("Taxonomy warm-up failed, using embedded taxonomy")
	}
}

// Start runs the scheduler and listens for HTTP requests.
func (s *Server) Start(address string) error {
	s.scheduler.Start()
	s.logger.Info().Str("address", address).Msg("starting HTTP server")
	return s.echo.Start(address)
}

// Shutdown gracefully stops the server and the scheduler.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info().Msg("shutting down HTTP server")
	if err := s.scheduler.Stop(); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to stop scheduler")
	}
	return s.echo.Shutdown(ctx)
}

// Echo returns the underlying Echo instance.
func (s *Server) Echo() *echo.Echo {
	return s.echo
}
