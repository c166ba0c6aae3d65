package querying

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/sunclx/seiri/src/music"
)

// Handler is the HTTP handler for the querying feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the querying feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Query runs a bang expression and returns the matching tracks as JSON.
func (h *Handler) Query(c *fiber.Ctx) error {
	expr := c.Query("q")
	tracks, err := h.service.Query(c.Context(), expr)
	if err != nil {
		var perr *ParseError
		if errors.As(err, &perr) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":  "parse error",
				"kind":   perr.Kind,
				"offset": perr.Offset,
				"detail": perr.Detail,
			})
		}
		slog.Error("Query execution failed", "expr", expr, "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("query failed")
	}
	if tracks == nil {
		tracks = []*music.Track{}
	}
	return c.JSON(fiber.Map{
		"count":  len(tracks),
		"tracks": tracks,
	})
}

// GetTrack returns a single cataloged track.
func (h *Handler) GetTrack(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid track id")
	}
	track, err := h.service.GetTrack(c.Context(), int64(id))
	if err != nil {
		if errors.Is(err, music.ErrTrackNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("track not found")
		}
		slog.Error("GetTrack failed", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("lookup failed")
	}
	return c.JSON(track)
}
