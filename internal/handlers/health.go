package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"mentora/internal/database"
	"mentora/internal/jobs"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	mongoDB *database.MongoDB
	engine  *jobs.Engine
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(mongoDB *database.MongoDB, engine *jobs.Engine) *HealthHandler {
	return &HealthHandler{mongoDB: mongoDB, engine: engine}
}

// Handle responds with server health status
func (h *HealthHandler) Handle(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 2*time.Second)
	defer cancel()

	dbStatus := "ok"
	status := "healthy"
	if err := h.mongoDB.Ping(ctx); err != nil {
		dbStatus = "unreachable"
		status = "degraded"
	}

	return c.JSON(fiber.Map{
		"status":         status,
		"database":       dbStatus,
		"engine_running": h.engine.Status().Running,
		"timestamp":      time.Now().Format(time.RFC3339),
	})
}
