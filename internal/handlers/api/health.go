package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v3"

	"plangenie/internal/catalog"
	"plangenie/internal/models"
)

// CatalogState is the catalog view the health endpoints need.
type CatalogState interface {
	EnsureFresh(ctx context.Context) (*catalog.Snapshot, error)
	Status() catalog.Status
}

// HealthHandler serves GET /health, which forces a catalog freshness check.
type HealthHandler struct {
	catalog CatalogState
	started time.Time
	now     func() time.Time
}

// NewHealthHandler creates a new health handler. started is the process start time.
func NewHealthHandler(cat CatalogState, started time.Time) *HealthHandler {
	return &HealthHandler{catalog: cat, started: started, now: time.Now}
}

// Health reports catalog freshness and load latency.
func (h *HealthHandler) Health(c fiber.Ctx) error {
	start := h.now()
	resp := models.HealthResponse{Uptime: start.Sub(h.started).Seconds()}

	snap, err := h.catalog.EnsureFresh(c.Context())
	resp.LoadMs = h.now().Sub(start).Milliseconds()
	if err != nil {
		resp.Status = "unhealthy"
		resp.Error = "plan catalog unavailable"
		return c.Status(fiber.StatusServiceUnavailable).JSON(resp)
	}

	fetched := snap.FetchedAt
	resp.LastFetched = &fetched
	resp.Stale = snap.Stale
	resp.Plans = len(snap.Plans)
	resp.Status = "healthy"
	if snap.Stale {
		resp.Status = "degraded"
	}
	return c.JSON(resp)
}
