package hosting

import (
	"fmt"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/sunclx/seiri/src/features/config"
	"github.com/sunclx/seiri/src/features/ingesting"
	"github.com/sunclx/seiri/src/features/metrics"
	"github.com/sunclx/seiri/src/features/querying"
	"github.com/sunclx/seiri/src/music"
)

// Server is the HTTP server for the application.
type Server struct {
	app  *fiber.App
	port uint32
}

// NewServer creates a new HTTP server.
func NewServer(cfg *config.Manager, catalog music.Catalog, queryService *querying.Service, ingestService *ingesting.Service) *Server {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			slog.Error("Internal Server Error", "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		},
		AppName:               "Seiri",
		DisableStartupMessage: true,
		EnablePrintRoutes:     cfg.Get().Server.PrintRoutes,
	})

	app.Use(LogAllRequestsMiddleware())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	app.Get("/api/stats", statsHandler(catalog))

	querying.RegisterRoutes(app, queryService)
	ingesting.RegisterRoutes(app, ingestService)
	metrics.RegisterRoutes(app)

	return &Server{app: app, port: cfg.Get().Server.Port}
}

func statsHandler(catalog music.Catalog) fiber.Handler {
	return func(c *fiber.Ctx) error {
		stats, err := catalog.Stats(c.Context())
		if err != nil {
			slog.Error("Failed to compute library stats", "error", err)
			return c.Status(fiber.StatusInternalServerError).SendString("stats failed")
		}
		return c.JSON(stats)
	}
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	return s.app.Listen(":" + fmt.Sprint(s.port))
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
