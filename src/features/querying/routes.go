package querying

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterRoutes registers the routes for the querying feature.
func RegisterRoutes(app *fiber.App, service *Service) {
	handler := NewHandler(service)

	api := app.Group("/api")
	api.Get("/query", handler.Query)
	api.Get("/tracks/:id", handler.GetTrack)
}
