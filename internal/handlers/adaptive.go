package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"mentora/internal/jobs"
)

// AdaptiveHandler exposes the adaptive engine's state and a manual sweep
// trigger for operators.
type AdaptiveHandler struct {
	engine *jobs.Engine
}

// NewAdaptiveHandler creates a new adaptive engine handler
func NewAdaptiveHandler(engine *jobs.Engine) *AdaptiveHandler {
	return &AdaptiveHandler{engine: engine}
}

// Status returns the engine lifecycle state and next timer targets
func (h *AdaptiveHandler) Status(c *fiber.Ctx) error {
	return c.JSON(h.engine.Status())
}

// TriggerSweep runs one sweep synchronously. kind=daily runs the
// comprehensive sweep, anything else the regular one. Returns 409 when a
// sweep of that kind is already in flight.
func (h *AdaptiveHandler) TriggerSweep(c *fiber.Ctx) error {
	var (
		report *jobs.SweepReport
		err    error
	)

	if c.Query("kind") == string(jobs.SweepDaily) {
		report, err = h.engine.RunDailySweep(c.Context())
	} else {
		report, err = h.engine.RunSweep(c.Context())
	}

	if errors.Is(err, jobs.ErrSweepInProgress) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{
			"error": "sweep already in progress",
		})
	}
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(report)
}
