package server

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/homehelp/homehelp/internal/address"
	"github.com/homehelp/homehelp/internal/config"
	"github.com/homehelp/homehelp/internal/notification"
	"github.com/homehelp/homehelp/internal/routes"
)

// Server wraps the Fiber application and shared dependencies.
type Server struct {
	app *fiber.App
	cfg config.Config
}

// Options carries optional collaborators for New.
type Options struct {
	Email    notification.Notifier
	Geocoder address.Geocoder
}

// New instantiates the HTTP server and delegates route wiring to routes.Setup.
func New(cfg config.Config, db *pgxpool.Pool, cache *redis.Client, logger *slog.Logger, opts Options) (*Server, error) {
	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		ErrorHandler: errorHandler,
	})

	if err := routes.Setup(app, routes.Deps{
		Cfg: cfg, DB: db, Cache: cache, Logger: logger,
		Email: opts.Email, Geocoder: opts.Geocoder,
	}); err != nil {
		return nil, err
	}

	return &Server{app: app, cfg: cfg}, nil
}

// errorHandler renders every error as {"error": message}.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	message := err.Error()
	if code >= fiber.StatusInternalServerError {
		message = "internal server error"
	}
	return c.Status(code).JSON(fiber.Map{"error": message})
}

// App exposes the underlying Fiber app, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app
}

// Listen starts the HTTP server.
func (s *Server) Listen() error {
	return s.app.Listen(s.cfg.Address())
}

// Shutdown gracefully stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}
