package api

import (
	"github.com/gofiber/fiber/v3"
)

// ProbeHandler handles Kubernetes health probe endpoints.
type ProbeHandler struct {
	catalog CatalogState
}

// NewProbeHandler creates a new probe handler.
func NewProbeHandler(cat CatalogState) *ProbeHandler {
	return &ProbeHandler{catalog: cat}
}

// Liveness handles the /healthz endpoint for Kubernetes liveness probes.
// Returns 200 OK if the application is running.
func (h *ProbeHandler) Liveness(c fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status": "ok",
	})
}

// Readiness handles the /readyz endpoint. The service is ready once a catalog
// has been loaded, stale or not. It never triggers a fetch.
func (h *ProbeHandler) Readiness(c fiber.Ctx) error {
	if !h.catalog.Status().Loaded {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "error",
			"error":  "catalog not loaded",
		})
	}

	return c.JSON(fiber.Map{
		"status": "ok",
	})
}
