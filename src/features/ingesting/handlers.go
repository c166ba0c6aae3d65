package ingesting

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/sunclx/seiri/src/music"
)

// Handler is the HTTP handler for the organizing feature.
type Handler struct {
	service *Service
}

// NewHandler creates a new handler for the organizing feature.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Scan sweeps the staging folder and ingests everything found there.
func (h *Handler) Scan(c *fiber.Ctx) error {
	stats, err := h.service.ScanStaging(c.Context())
	if err != nil {
		slog.Error("Staging scan failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("scan failed")
	}
	return c.JSON(stats)
}

// Reconcile runs a consistency pass over the journal, the catalog and the
// library tree.
func (h *Handler) Reconcile(c *fiber.Ctx) error {
	stats, err := h.service.Reconcile(c.Context())
	if err != nil {
		slog.Error("Reconciliation failed", "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("reconcile failed")
	}
	return c.JSON(stats)
}

// Refresh re-extracts a cataloged track's tags and re-files it when its
// canonical path changed.
func (h *Handler) Refresh(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("invalid track id")
	}
	track, err := h.service.Refresh(c.Context(), int64(id))
	if err != nil {
		if errors.Is(err, music.ErrTrackNotFound) {
			return c.Status(fiber.StatusNotFound).SendString("track not found")
		}
		var rej *Rejection
		if errors.As(err, &rej) {
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  "refresh rejected",
				"reason": rej.Reason,
				"detail": rej.Detail,
			})
		}
		var cons *ConsistencyError
		if errors.As(err, &cons) {
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{
				"error":  "track file missing",
				"path":   cons.Path,
				"detail": cons.Detail,
			})
		}
		slog.Error("Refresh failed", "id", id, "error", err)
		return c.Status(fiber.StatusInternalServerError).SendString("refresh failed")
	}
	return c.JSON(track)
}
