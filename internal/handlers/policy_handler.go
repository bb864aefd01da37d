package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/crisisconnect/moderation/internal/dto"
	"github.com/crisisconnect/moderation/internal/policy"
)

// PolicyHandler exposes the live filter and rule configuration to admins.
// Changes made here take effect on the next pipeline evaluation.
type PolicyHandler struct {
	registry *policy.Registry
}

func NewPolicyHandler(registry *policy.Registry) *PolicyHandler {
	return &PolicyHandler{registry: registry}
}

func (h *PolicyHandler) ListFilters(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"filters": h.registry.Filters()})
}

func (h *PolicyHandler) GetFilter(c *fiber.Ctx) error {
	filter, ok := h.registry.GetFilter(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Filter not found",
		})
	}
	return c.JSON(filter)
}

func (h *PolicyHandler) UpsertFilter(c *fiber.Ctx) error {
	var filter policy.WordFilter
	if err := c.BodyParser(&filter); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if filter.ID == "" {
		filter.ID = c.Params("id")
	}

	if err := h.registry.UpsertFilter(filter); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.JSON(fiber.Map{"error": false, "message": "Filter updated successfully"})
}

func (h *PolicyHandler) DeleteFilter(c *fiber.Ctx) error {
	if !h.registry.DeleteFilter(c.Params("id")) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Filter not found",
		})
	}
	return c.JSON(fiber.Map{"error": false, "message": "Filter deleted successfully"})
}

func (h *PolicyHandler) ListRules(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"rules": h.registry.Rules()})
}

func (h *PolicyHandler) GetRule(c *fiber.Ctx) error {
	rule, ok := h.registry.GetRule(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Rule not found",
		})
	}
	return c.JSON(rule)
}

func (h *PolicyHandler) UpsertRule(c *fiber.Ctx) error {
	var rule policy.ModerationRule
	if err := c.BodyParser(&rule); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if rule.ID == "" {
		rule.ID = c.Params("id")
	}

	if err := h.registry.UpsertRule(rule); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}
	return c.JSON(fiber.Map{"error": false, "message": "Rule updated successfully"})
}

func (h *PolicyHandler) DeleteRule(c *fiber.Ctx) error {
	if !h.registry.DeleteRule(c.Params("id")) {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error: true, Message: "Rule not found",
		})
	}
	return c.JSON(fiber.Map{"error": false, "message": "Rule deleted successfully"})
}
