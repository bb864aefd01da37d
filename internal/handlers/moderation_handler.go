package handlers

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/crisisconnect/moderation/internal/dto"
	"github.com/crisisconnect/moderation/internal/middleware"
	"github.com/crisisconnect/moderation/internal/services"
	"github.com/crisisconnect/moderation/internal/store"
)

type ModerationHandler struct {
	moderationService *services.ModerationService
	reputation        *services.ReputationLedger
}

func NewModerationHandler(moderationService *services.ModerationService, reputation *services.ReputationLedger) *ModerationHandler {
	return &ModerationHandler{
		moderationService: moderationService,
		reputation:        reputation,
	}
}

func (h *ModerationHandler) SubmitContent(c *fiber.Ctx) error {
	var req dto.SubmitContentRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	item, result, err := h.moderationService.Submit(c.Context(), &req)
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to process content",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.SubmitContentResponse{
		Content: item,
		Result:  result,
	})
}

func (h *ModerationHandler) GetContent(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid content ID",
		})
	}

	item, result, err := h.moderationService.GetContent(c.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Content not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch content",
		})
	}

	return c.JSON(dto.SubmitContentResponse{Content: item, Result: result})
}

func (h *ModerationHandler) SubmitAppeal(c *fiber.Ctx) error {
	contentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid content ID",
		})
	}

	var req dto.AppealRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	appeal, err := h.moderationService.SubmitAppeal(c.Context(), contentID, req.UserID, req.Reason)
	if err != nil {
		switch {
		case errors.Is(err, store.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Content has no moderation result",
			})
		case errors.Is(err, services.ErrNotAppealable):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to submit appeal",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(appeal)
}

func (h *ModerationHandler) GetReputation(c *fiber.Ctx) error {
	userID, err := uuid.Parse(c.Params("user_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid user ID",
		})
	}

	rep, err := h.reputation.Get(c.Context(), userID)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch reputation",
		})
	}
	return c.JSON(rep)
}

func (h *ModerationHandler) ListQueue(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "50"))

	items, err := h.moderationService.Queue(c.Context(), limit)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to fetch queue",
		})
	}

	return c.JSON(dto.QueueResponse{Items: items, Total: len(items)})
}

func (h *ModerationHandler) ClaimNext(c *fiber.Ctx) error {
	moderatorID, err := middleware.ModeratorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	item, err := h.moderationService.ClaimNext(c.Context(), moderatorID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQueueEmpty):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrDailyCapReached):
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, store.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Moderator not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to claim content",
		})
	}

	return c.JSON(item)
}

func (h *ModerationHandler) Review(c *fiber.Ctx) error {
	moderatorID, err := middleware.ModeratorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	contentID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid content ID",
		})
	}

	var req dto.ManualReviewRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	result, err := h.moderationService.ManualReview(c.Context(), contentID, moderatorID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrPermissionDenied):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, store.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Content or moderator not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to apply review",
		})
	}

	return c.JSON(result)
}

func (h *ModerationHandler) ResolveAppeal(c *fiber.Ctx) error {
	moderatorID, err := middleware.ModeratorID(c)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
			Error: true, Message: "Unauthorized",
		})
	}

	appealID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid appeal ID",
		})
	}

	var req dto.ResolveAppealRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	appeal, err := h.moderationService.ResolveAppeal(c.Context(), appealID, moderatorID, &req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrValidation):
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, services.ErrPermissionDenied):
			return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
				Error: true, Message: err.Error(),
			})
		case errors.Is(err, store.ErrNotFound):
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
				Error: true, Message: "Appeal not found",
			})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
			Error: true, Message: "Failed to resolve appeal",
		})
	}

	return c.JSON(appeal)
}
