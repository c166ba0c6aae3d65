package ingesting

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the organizing feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	api := app.Group("/api")
	api.Post("/ingest/scan", handler.Scan)
	api.Post("/reconcile", handler.Reconcile)
	api.Post("/tracks/:id/refresh", handler.Refresh)
}
