// Package httpserver provides HTTP server and routing.
package httpserver

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"trial-catalog-service/internal/app/service"
	"trial-catalog-service/internal/transport/httpserver/handler"
	"trial-catalog-service/internal/transport/httpserver/middleware"
	"trial-catalog-service/internal/validator"
)

// ServerConfig holds server configuration.
type ServerConfig struct {
	Port      int
	BodyLimit int
	Debug     bool
}

// Services bundles the application services the server exposes.
type Services struct {
	Trials *service.TrialService
	Saved  *service.SavedTrialService
	Alerts *service.AlertService
	Sync   *service.SyncService
}

// Server wraps Fiber app with handlers.
type Server struct {
	App    *fiber.App
	Logger *zap.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	cfg ServerConfig,
	svcs Services,
	verifier middleware.TokenVerifier,
	db *gorm.DB,
	v *validator.Validator,
	logger *zap.Logger,
) *Server {
	app := fiber.New(fiber.Config{
		AppName:               "trial-catalog-service",
		BodyLimit:             cfg.BodyLimit,
		DisableStartupMessage: !cfg.Debug,
		ErrorHandler:          errorHandler(logger),
	})

	// Health check middleware MUST be registered BEFORE other middleware
	// for Kubernetes probes to work even during high load
	app.Use(middleware.NewHealthCheck(db))

	// Global middleware
	app.Use(requestid.New())
	app.Use(middleware.Recover(logger))
	app.Use(middleware.Logger(logger))
	app.Use(middleware.CORS())
	app.Use(compress.New())

	// Create handlers
	trialHandler := handler.NewTrialHandler(svcs.Trials, svcs.Saved, v, logger)
	alertHandler := handler.NewAlertHandler(svcs.Alerts, v, logger)
	adminHandler := handler.NewAdminHandler(svcs.Sync, svcs.Trials, logger)

	registerRoutes(app, verifier, trialHandler, alertHandler, adminHandler)

	return &Server{
		App:    app,
		Logger: logger,
	}
}

// registerRoutes sets up all API routes.
func registerRoutes(
	app *fiber.App,
	verifier middleware.TokenVerifier,
	trialHandler *handler.TrialHandler,
	alertHandler *handler.AlertHandler,
	adminHandler *handler.AdminHandler,
) {
	// Health checks are handled by middleware (/livez, /readyz)

	optionalAuth := middleware.OptionalAuth(verifier)
	requireAuth := middleware.RequireAuth(verifier)

	// API v1 routes
	v1 := app.Group("/api/v1")

	// Trial catalog. Browsing works anonymously; a token only adds the
	// per-viewer saved annotations.
	trials := v1.Group("/trials")
	trials.Get("/", optionalAuth, trialHandler.Search)
	trials.Get("/:id", optionalAuth, trialHandler.GetByID)
	trials.Post("/:id/save", requireAuth, trialHandler.Save)
	trials.Delete("/:id/save", requireAuth, trialHandler.Unsave)
	trials.Post("/:id/interest", requireAuth, trialHandler.ExpressInterest)

	// Viewer-scoped listings
	users := v1.Group("/users", requireAuth)
	users.Get("/me/saved-trials", trialHandler.ListSaved)

	// Alert subscriptions
	alerts := v1.Group("/alerts/trials", requireAuth)
	alerts.Post("/", alertHandler.Create)
	alerts.Get("/", alertHandler.List)
	alerts.Patch("/:id", alertHandler.Update)
	alerts.Delete("/:id", alertHandler.Delete)

	// Admin routes
	admin := v1.Group("/admin")
	admin.Post("/sync", adminHandler.SyncAll)
	admin.Post("/sync/:registry", adminHandler.SyncRegistry)
	admin.Get("/registries", adminHandler.GetRegistries)
	admin.Get("/stats", adminHandler.Stats)
}

// errorHandler returns a custom error handler that logs based on HTTP status code.
// 404s are logged at DEBUG level (expected client behavior), 4xx at WARN, 5xx at ERROR.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError

		if e, ok := err.(*fiber.Error); ok {
			code = e.Code
		}

		// Log based on status code - 404s are common and not server errors
		switch {
		case code == fiber.StatusNotFound:
			logger.Debug("resource not found",
				zap.String("path", c.Path()),
				zap.String("method", c.Method()),
			)
		case code >= 500:
			logger.Error("server error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		case code >= 400:
			logger.Warn("client error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		default:
			logger.Error("unhandled error",
				zap.Error(err),
				zap.Int("status", code),
				zap.String("path", c.Path()),
			)
		}

		return c.Status(code).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "UNHANDLED_ERROR",
		})
	}
}

// Start starts the HTTP server.
func (s *Server) Start(port int) error {
	s.Logger.Info("starting HTTP server", zap.Int("port", port))

	return s.App.Listen(fmt.Sprintf(":%d", port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	s.Logger.Info("shutting down HTTP server")

	return s.App.Shutdown()
}
