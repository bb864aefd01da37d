package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/crisisconnect/moderation/internal/models"
)

// MemStore is an in-memory Store used by tests.
type MemStore struct {
	mu         sync.RWMutex
	content    map[uuid.UUID]*models.ContentItem
	results    map[uuid.UUID][]*models.ModerationResult
	reputation map[uuid.UUID]*models.UserReputation
	repEvents  []*models.ReputationEvent
	moderators map[uuid.UUID]*models.Moderator
	appeals    map[uuid.UUID]*models.Appeal
}

func NewMemStore() *MemStore {
	return &MemStore{
		content:    make(map[uuid.UUID]*models.ContentItem),
		results:    make(map[uuid.UUID][]*models.ModerationResult),
		reputation: make(map[uuid.UUID]*models.UserReputation),
		moderators: make(map[uuid.UUID]*models.Moderator),
		appeals:    make(map[uuid.UUID]*models.Appeal),
	}
}

func (s *MemStore) CreateContent(ctx context.Context, item *models.ContentItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.CreatedAt.IsZero() {
		item.CreatedAt = time.Now()
	}
	cp := *item
	s.content[item.ID] = &cp
	return nil
}

func (s *MemStore) GetContent(ctx context.Context, id uuid.UUID) (*models.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.content[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *item
	return &cp, nil
}

func (s *MemStore) UpdateContent(ctx context.Context, item *models.ContentItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.content[item.ID]; !ok {
		return ErrNotFound
	}
	cp := *item
	s.content[item.ID] = &cp
	return nil
}

func (s *MemStore) ListQueue(ctx context.Context, types []models.ContentType, limit int) ([]models.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var items []models.ContentItem
	for _, item := range s.content {
		if item.Status != models.ContentStatusPending && item.Status != models.ContentStatusEscalated {
			continue
		}
		if len(types) > 0 && !containsType(types, item.Type) {
			continue
		}
		items = append(items, *item)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].Priority != items[j].Priority {
			return items[i].Priority < items[j].Priority
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func containsType(types []models.ContentType, t models.ContentType) bool {
	for _, ct := range types {
		if ct == t {
			return true
		}
	}
	return false
}

func (s *MemStore) CreateResult(ctx context.Context, result *models.ModerationResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = time.Now()
	}
	cp := *result
	s.results[result.ContentID] = append(s.results[result.ContentID], &cp)
	return nil
}

func (s *MemStore) LatestResult(ctx context.Context, contentID uuid.UUID) (*models.ModerationResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.results[contentID]
	if len(list) == 0 {
		return nil, ErrNotFound
	}
	cp := *list[len(list)-1]
	return &cp, nil
}

func (s *MemStore) GetReputation(ctx context.Context, userID uuid.UUID) (*models.UserReputation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rep, ok := s.reputation[userID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rep
	return &cp, nil
}

func (s *MemStore) SaveReputation(ctx context.Context, rep *models.UserReputation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *rep
	s.reputation[rep.UserID] = &cp
	return nil
}

func (s *MemStore) AppendReputationEvent(ctx context.Context, event *models.ReputationEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	cp := *event
	s.repEvents = append(s.repEvents, &cp)
	return nil
}

// ReputationEvents returns the append-only history for a user, oldest first.
func (s *MemStore) ReputationEvents(userID uuid.UUID) []models.ReputationEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var events []models.ReputationEvent
	for _, e := range s.repEvents {
		if e.UserID == userID {
			events = append(events, *e)
		}
	}
	return events
}

func (s *MemStore) CreateModerator(ctx context.Context, mod *models.Moderator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if mod.ID == uuid.Nil {
		mod.ID = uuid.New()
	}
	cp := *mod
	s.moderators[mod.ID] = &cp
	return nil
}

func (s *MemStore) GetModerator(ctx context.Context, id uuid.UUID) (*models.Moderator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	mod, ok := s.moderators[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *mod
	return &cp, nil
}

func (s *MemStore) GetModeratorByEmail(ctx context.Context, email string) (*models.Moderator, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, mod := range s.moderators {
		if mod.Email == email {
			cp := *mod
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemStore) UpdateModerator(ctx context.Context, mod *models.Moderator) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.moderators[mod.ID]; !ok {
		return ErrNotFound
	}
	cp := *mod
	s.moderators[mod.ID] = &cp
	return nil
}

func (s *MemStore) CreateAppeal(ctx context.Context, appeal *models.Appeal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if appeal.ID == uuid.Nil {
		appeal.ID = uuid.New()
	}
	if appeal.CreatedAt.IsZero() {
		appeal.CreatedAt = time.Now()
	}
	cp := *appeal
	s.appeals[appeal.ID] = &cp
	return nil
}

func (s *MemStore) GetAppeal(ctx context.Context, id uuid.UUID) (*models.Appeal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	appeal, ok := s.appeals[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *appeal
	return &cp, nil
}

func (s *MemStore) UpdateAppeal(ctx context.Context, appeal *models.Appeal) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.appeals[appeal.ID]; !ok {
		return ErrNotFound
	}
	cp := *appeal
	s.appeals[appeal.ID] = &cp
	return nil
}
