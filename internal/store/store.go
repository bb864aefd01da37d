// Package store abstracts persistence so the pipeline logic is
// storage-agnostic. The GORM implementation backs production; the in-memory
// implementation backs tests and isolated engine instances.
package store

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/crisisconnect/moderation/internal/models"
)

var ErrNotFound = errors.New("record not found")

type ContentStore interface {
	CreateContent(ctx context.Context, item *models.ContentItem) error
	GetContent(ctx context.Context, id uuid.UUID) (*models.ContentItem, error)
	UpdateContent(ctx context.Context, item *models.ContentItem) error
	// ListQueue returns undecided (pending/escalated) items ordered by
	// ascending priority then age, optionally restricted to content types.
	ListQueue(ctx context.Context, types []models.ContentType, limit int) ([]models.ContentItem, error)

	CreateResult(ctx context.Context, result *models.ModerationResult) error
	LatestResult(ctx context.Context, contentID uuid.UUID) (*models.ModerationResult, error)
}

type ReputationStore interface {
	GetReputation(ctx context.Context, userID uuid.UUID) (*models.UserReputation, error)
	SaveReputation(ctx context.Context, rep *models.UserReputation) error
	AppendReputationEvent(ctx context.Context, event *models.ReputationEvent) error
}

type ModeratorStore interface {
	CreateModerator(ctx context.Context, mod *models.Moderator) error
	GetModerator(ctx context.Context, id uuid.UUID) (*models.Moderator, error)
	GetModeratorByEmail(ctx context.Context, email string) (*models.Moderator, error)
	UpdateModerator(ctx context.Context, mod *models.Moderator) error
}

type AppealStore interface {
	CreateAppeal(ctx context.Context, appeal *models.Appeal) error
	GetAppeal(ctx context.Context, id uuid.UUID) (*models.Appeal, error)
	UpdateAppeal(ctx context.Context, appeal *models.Appeal) error
}

// Store is the full persistence surface consumed by the services.
type Store interface {
	ContentStore
	ReputationStore
	ModeratorStore
	AppealStore
}
