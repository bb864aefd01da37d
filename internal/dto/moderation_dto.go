package dto

import (
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/crisisconnect/moderation/internal/models"
)

type SubmitContentRequest struct {
	Type     models.ContentType `json:"type"`
	Body     string             `json:"body"`
	AuthorID uuid.UUID          `json:"author_id"`
	Language string             `json:"language,omitempty"`
	Metadata datatypes.JSON     `json:"metadata,omitempty"`
}

type SubmitContentResponse struct {
	Content *models.ContentItem      `json:"content"`
	Result  *models.ModerationResult `json:"result,omitempty"`
}

type ManualReviewRequest struct {
	Action     models.ModerationAction  `json:"action"`
	Violations []models.ViolationDetail `json:"violations,omitempty"`
	Notes      string                   `json:"notes,omitempty"`
}

type AppealRequest struct {
	UserID uuid.UUID `json:"user_id"`
	Reason string    `json:"reason"`
}

type ResolveAppealRequest struct {
	Status models.AppealStatus `json:"status"`
	Note   string              `json:"note,omitempty"`
}

type QueueResponse struct {
	Items []models.ContentItem `json:"items"`
	Total int                  `json:"total"`
}
