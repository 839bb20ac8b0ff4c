package server

import (
	"context"
	"time"

	"github.com/Rana718/seedforge/internal/engine"
	"github.com/Rana718/seedforge/internal/metrics"
	"github.com/Rana718/seedforge/internal/registry"
	"github.com/Rana718/seedforge/internal/repository"
	"github.com/Rana718/seedforge/internal/storage"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps are the collaborators a Server needs. Repo and Store are optional;
// without them the schema endpoints answer 503 and exports are never
// uploaded.
type Deps struct {
	Engine    *engine.Engine
	Repo      repository.SchemaRepository
	Store     storage.Store
	Metrics   *metrics.Metrics
	Logger    *zap.Logger
	Addr      string
	BodyLimit int
	Now       func() time.Time
}

type Server struct {
	app      *fiber.App
	engine   *engine.Engine
	repo     repository.SchemaRepository
	store    storage.Store
	registry *registry.Registry
	metrics  *metrics.Metrics
	logger   *zap.Logger
	addr     string
	now      func() time.Time
}

func New(d Deps) *Server {
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	if d.Engine == nil {
		d.Engine = engine.New(engine.WithLogger(d.Logger), engine.WithMetrics(d.Metrics))
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	app := fiber.New(fiber.Config{
		AppName:               "seedforge",
		BodyLimit:             d.BodyLimit,
		DisableStartupMessage: true,
	})

	s := &Server{
		app:      app,
		engine:   d.Engine,
		repo:     d.Repo,
		store:    d.Store,
		registry: registry.Default(),
		metrics:  d.Metrics,
		logger:   d.Logger,
		addr:     d.Addr,
		now:      d.Now,
	}
	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.app.Use(recover.New())
	s.app.Use(requestLogger(s.logger))
	if s.metrics != nil {
		s.app.Use(metricsMiddleware(s.metrics))
		s.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(s.metrics.Registry, promhttp.HandlerOpts{})))
	}

	api := s.app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/types", s.handleTypes)
	api.Post("/validate", s.handleValidate)
	api.Post("/preview", s.handlePreview)
	api.Post("/generate", s.handleGenerate)
	api.Post("/export", s.handleExport)
	api.Post("/export/spreadsheet", s.handleSpreadsheet)

	api.Get("/schemas", s.handleListSchemas)
	api.Post("/schemas", s.handleSaveSchema)
	api.Get("/schemas/:id", s.handleGetSchema)
	api.Delete("/schemas/:id", s.handleDeleteSchema)
}

// App exposes the fiber app, mainly for app.Test.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Start() error {
	s.logger.Info("server starting", zap.String("addr", s.addr))
	return s.app.Listen(s.addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
