package server

import (
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"plangenie/internal/handlers/api"
)

// Handlers bundles everything RegisterRoutes mounts.
type Handlers struct {
	Query    *api.QueryHandler
	Health   *api.HealthHandler
	Plans    *api.PlansHandler
	Probe    *api.ProbeHandler
	Gatherer prometheus.Gatherer // nil disables /metrics
}

// RegisterRoutes registers all application routes.
func (s *Server) RegisterRoutes(h Handlers) {
	s.App.Get("/", func(c fiber.Ctx) error {
		return c.SendString("PlanGenie is live!")
	})

	s.App.Post("/query", h.Query.Query)
	s.App.Get("/health", h.Health.Health)
	s.App.Get("/api/plans", h.Plans.List)

	// Kubernetes probes
	s.App.Get("/healthz", h.Probe.Liveness)
	s.App.Get("/readyz", h.Probe.Readiness)

	if h.Gatherer != nil {
		s.App.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(h.Gatherer, promhttp.HandlerOpts{})))
	}

	s.App.Use(func(c fiber.Ctx) error {
		return fiber.ErrNotFound
	})
}
