package handler

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

// Pinger reports whether the backing store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness endpoint for the booking service.
type HealthHandler struct {
	pool Pinger
}

func NewHealthHandler(pool Pinger) *HealthHandler {
	return &HealthHandler{pool: pool}
}

// Check pings the database and reports service health.
// Returns 200 with {"status": "healthy"} when the database answers,
// 503 with {"status": "unhealthy"} when it does not.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	if err := h.pool.Ping(c.Context()); err != nil {
		log.Error().Err(err).Msg("health check failed: database unreachable")
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"service": "clinic-referrals",
			"status":  "unhealthy",
			"error":   "database connection failed",
		})
	}
	return c.JSON(fiber.Map{
		"service": "clinic-referrals",
		"status":  "healthy",
	})
}
