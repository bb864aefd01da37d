package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/crisisconnect/moderation/internal/models"
)

// GormStore is the PostgreSQL-backed Store.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) CreateContent(ctx context.Context, item *models.ContentItem) error {
	return s.db.WithContext(ctx).Create(item).Error
}

func (s *GormStore) GetContent(ctx context.Context, id uuid.UUID) (*models.ContentItem, error) {
	var item models.ContentItem
	if err := s.db.WithContext(ctx).First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &item, nil
}

func (s *GormStore) UpdateContent(ctx context.Context, item *models.ContentItem) error {
	return s.db.WithContext(ctx).Save(item).Error
}

func (s *GormStore) ListQueue(ctx context.Context, types []models.ContentType, limit int) ([]models.ContentItem, error) {
	var items []models.ContentItem
	query := s.db.WithContext(ctx).
		Where("status IN ?", []models.ContentStatus{models.ContentStatusPending, models.ContentStatusEscalated})
	if len(types) > 0 {
		query = query.Where("type IN ?", types)
	}
	err := query.Order("priority ASC, created_at ASC").Limit(limit).Find(&items).Error
	return items, err
}

func (s *GormStore) CreateResult(ctx context.Context, result *models.ModerationResult) error {
	return s.db.WithContext(ctx).Create(result).Error
}

func (s *GormStore) LatestResult(ctx context.Context, contentID uuid.UUID) (*models.ModerationResult, error) {
	var result models.ModerationResult
	err := s.db.WithContext(ctx).
		Where("content_id = ?", contentID).
		Order("created_at DESC").
		First(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &result, nil
}

func (s *GormStore) GetReputation(ctx context.Context, userID uuid.UUID) (*models.UserReputation, error) {
	var rep models.UserReputation
	if err := s.db.WithContext(ctx).First(&rep, "user_id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &rep, nil
}

func (s *GormStore) SaveReputation(ctx context.Context, rep *models.UserReputation) error {
	return s.db.WithContext(ctx).Save(rep).Error
}

func (s *GormStore) AppendReputationEvent(ctx context.Context, event *models.ReputationEvent) error {
	return s.db.WithContext(ctx).Create(event).Error
}

func (s *GormStore) CreateModerator(ctx context.Context, mod *models.Moderator) error {
	return s.db.WithContext(ctx).Create(mod).Error
}

func (s *GormStore) GetModerator(ctx context.Context, id uuid.UUID) (*models.Moderator, error) {
	var mod models.Moderator
	if err := s.db.WithContext(ctx).First(&mod, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &mod, nil
}

func (s *GormStore) GetModeratorByEmail(ctx context.Context, email string) (*models.Moderator, error) {
	var mod models.Moderator
	if err := s.db.WithContext(ctx).First(&mod, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &mod, nil
}

func (s *GormStore) UpdateModerator(ctx context.Context, mod *models.Moderator) error {
	return s.db.WithContext(ctx).Save(mod).Error
}

func (s *GormStore) CreateAppeal(ctx context.Context, appeal *models.Appeal) error {
	return s.db.WithContext(ctx).Create(appeal).Error
}

func (s *GormStore) GetAppeal(ctx context.Context, id uuid.UUID) (*models.Appeal, error) {
	var appeal models.Appeal
	if err := s.db.WithContext(ctx).First(&appeal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &appeal, nil
}

func (s *GormStore) UpdateAppeal(ctx context.Context, appeal *models.Appeal) error {
	return s.db.WithContext(ctx).Save(appeal).Error
}
