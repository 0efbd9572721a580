package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"

	"github.com/papercomputeco/sitesmith/gateway"
	"github.com/papercomputeco/sitesmith/pkg/logger"
	"github.com/papercomputeco/sitesmith/pkg/ratelimit"
	"github.com/papercomputeco/sitesmith/pkg/templates"
)

// Server is the HTTP API server in front of the gateway.
type Server struct {
	config  Config
	gateway *gateway.Gateway
	limiter *ratelimit.Limiter
	catalog *templates.Catalog
	logger  *slog.Logger
	app     *fiber.App

	// ctx is cancelled by Shutdown.
	ctx    context.Context
	cancel context.CancelFunc
}

// NewServer creates a new API server.
// The gateway and limiter are injected so the caller owns their lifecycle.
func NewServer(config Config, gw *gateway.Gateway, limiter *ratelimit.Limiter, catalog *templates.Catalog, log *slog.Logger) (*Server, error) {
	if gw == nil {
		return nil, errors.New("api server requires a gateway")
	}
	if limiter == nil {
		limiter = ratelimit.New(nil, 0)
	}
	if catalog == nil {
		catalog = templates.Default()
	}
	if log == nil {
		log = logger.Nop()
	}

	s := &Server{
		config:  config,
		gateway: gw,
		limiter: limiter,
		catalog: catalog,
		logger:  log,
	}
	s.ctx, s.cancel = context.WithCancel(context.Background())

	s.app = fiber.New(fiber.Config{
		DisableStartupMessage: true,
		BodyLimit:             config.BodyLimit,
		ErrorHandler:          s.handleError,
	})

	s.app.Use(recover.New())
	s.app.Use(s.bindContext)
	s.app.Use(requestid.New(requestid.Config{
		Header:    fiber.HeaderXRequestID,
		Generator: uuid.NewString,
	}))
	s.app.Use(s.accessLog)
	s.app.Use(s.rateLimit)
	s.app.Use(compress.New())

	s.app.Get("/api/health", s.handleHealth)
	s.app.Get("/api/check-env", s.handleCheckEnv)
	s.app.Post("/api/test-connection", s.handleTestConnection)
	s.app.Post("/api/ask-ai", s.handleAskAI)
	s.app.Get("/api/templates", s.handleListTemplates)
	s.app.Get("/api/templates/:id", s.handleGetTemplate)

	if config.StaticDir != "" {
		s.app.Static("/", config.StaticDir, fiber.Static{
			Compress: true,
			Index:    "index.html",
		})
	}

	return s, nil
}

// App exposes the fiber app, primarily for app.Test in tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Run starts the API server on the configured address.
func (s *Server) Run() error {
	s.logger.Info("starting API server",
		"listen", s.config.ListenAddr,
		"static_dir", s.config.StaticDir,
		"rate_limit", s.limiter.Limit(),
	)
	return s.app.Listen(s.config.ListenAddr)
}

// Shutdown gracefully shuts down the API server.
// In-flight generations are cancelled first so their handlers can return.
func (s *Server) Shutdown() error {
	s.cancel()
	return s.app.Shutdown()
}
