package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/crisisconnect/moderation/internal/database"
	"github.com/crisisconnect/moderation/internal/dto"
	"github.com/crisisconnect/moderation/internal/policy"
)

type HealthHandler struct {
	registry *policy.Registry
}

func NewHealthHandler(registry *policy.Registry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	dbStatus := "ok"
	if err := database.Ping(); err != nil {
		dbStatus = "unhealthy: " + err.Error()
	}

	return c.JSON(dto.HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		DB:        dbStatus,
		Filters:   len(h.registry.Filters()),
		Rules:     len(h.registry.Rules()),
	})
}
