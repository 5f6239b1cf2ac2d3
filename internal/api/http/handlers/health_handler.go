package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/marketplace-ledger/ledger-service/internal/observability"
)

const readinessTimeout = 2 * time.Second

// Pinger is a dependency that can report its reachability.
type Pinger interface {
	Ping(ctx context.Context) error
}

type dependency struct {
	name     string
	pinger   Pinger
	required bool
}

// HealthHandler serves probes and the counters endpoint.
type HealthHandler struct {
	serviceName  string
	version      string
	startedAt    time.Time
	dependencies []dependency
	metrics      *observability.Metrics
}

// NewHealthHandler wires the probes. Postgres gates readiness; Redis only
// backs the payment lock and is reported without failing the probe.
func NewHealthHandler(serviceName, version string, postgres, redis Pinger, metrics *observability.Metrics) *HealthHandler {
	return &HealthHandler{
		serviceName: serviceName,
		version:     version,
		startedAt:   time.Now(),
		dependencies: []dependency{
			{name: "postgres", pinger: postgres, required: true},
			{name: "redis", pinger: redis},
		},
		metrics: metrics,
	}
}

// Live GET /health/live.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":         "alive",
		"service":        h.serviceName,
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.startedAt).Seconds()),
	})
}

// Ready GET /health/ready.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), readinessTimeout)
	defer cancel()

	checks := fiber.Map{}
	ready := true
	for _, dep := range h.dependencies {
		if err := dep.pinger.Ping(ctx); err != nil {
			checks[dep.name] = err.Error()
			if dep.required {
				ready = false
			}
			continue
		}
		checks[dep.name] = "ok"
	}

	if !ready {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": fiber.Map{
				"code":    "DEPENDENCY_UNAVAILABLE",
				"message": "ledger store unavailable",
				"details": checks,
			},
		})
	}

	paymentLock := "redis"
	if checks["redis"] != "ok" {
		paymentLock = "database"
	}
	return c.JSON(fiber.Map{
		"status":       "ready",
		"dependencies": checks,
		"payment_lock": paymentLock,
	})
}

// Metrics GET /metrics.
func (h *HealthHandler) Metrics(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": h.metrics.Snapshot()})
}
