package handlers

import (
	"context"
	"time"

	"balance/internal/utils"

	"github.com/gofiber/fiber/v2"
)

const readinessTimeout = 2 * time.Second

type dependency struct {
	name   string
	pinger Pinger
}

type HealthHandler struct {
	version string
	deps    []dependency
}

func NewHealthHandler(version string) *HealthHandler {
	return &HealthHandler{version: version}
}

// Check registers a dependency for the readiness probe.
func (h *HealthHandler) Check(name string, p Pinger) *HealthHandler {
	h.deps = append(h.deps, dependency{name: name, pinger: p})
	return h
}

// Liveness handles GET /health.
func (h *HealthHandler) Liveness(c *fiber.Ctx) error {
	return utils.Success(c, fiber.Map{
		"status":  "ok",
		"version": h.version,
	})
}

// Readiness handles GET /ready and answers 503 if any dependency fails.
func (h *HealthHandler) Readiness(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	ready := true
	services := fiber.Map{}
	for _, d := range h.deps {
		if err := d.pinger.Ping(ctx); err != nil {
			ready = false
			services[d.name] = "unavailable"
			continue
		}
		services[d.name] = "connected"
	}

	body := fiber.Map{
		"status":   "ready",
		"version":  h.version,
		"services": services,
	}
	if !ready {
		body["status"] = "not_ready"
		return utils.ServiceUnavailable(c, body)
	}
	return utils.Success(c, body)
}
