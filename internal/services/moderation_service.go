package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/crisisconnect/moderation/internal/dto"
	"github.com/crisisconnect/moderation/internal/engine"
	"github.com/crisisconnect/moderation/internal/models"
	"github.com/crisisconnect/moderation/internal/store"
)

var (
	ErrValidation       = errors.New("invalid submission")
	ErrPermissionDenied = errors.New("moderator lacks permission for this action")
	ErrNotAppealable    = errors.New("result is not appealable")
	ErrDailyCapReached  = errors.New("moderator daily review cap reached")
	ErrQueueEmpty       = errors.New("no queued content available")
)

// ModerationService orchestrates the decision pipeline, the stores and the
// reputation ledger. Decisions for the same content item are serialized
// through a per-item lock; unrelated items proceed concurrently.
type ModerationService struct {
	store     store.Store
	engine    *engine.Engine
	ledger    *ReputationLedger
	logger    *slog.Logger
	itemLocks keyedMutex
}

func NewModerationService(st store.Store, eng *engine.Engine, ledger *ReputationLedger, logger *slog.Logger) *ModerationService {
	return &ModerationService{
		store:  st,
		engine: eng,
		ledger: ledger,
		logger: logger,
	}
}

// Submit enqueues a content item and immediately attempts auto-moderation.
// The returned item may already be decided.
func (s *ModerationService) Submit(ctx context.Context, req *dto.SubmitContentRequest) (*models.ContentItem, *models.ModerationResult, error) {
	if !req.Type.Valid() {
		return nil, nil, fmt.Errorf("%w: unknown content type %q", ErrValidation, req.Type)
	}
	if strings.TrimSpace(req.Body) == "" {
		return nil, nil, fmt.Errorf("%w: body is required", ErrValidation)
	}
	if req.AuthorID == uuid.Nil {
		return nil, nil, fmt.Errorf("%w: author_id is required", ErrValidation)
	}

	language := req.Language
	if language == "" {
		language = "en"
	}
	metadata := req.Metadata
	if len(metadata) == 0 {
		metadata = datatypes.JSON([]byte("{}"))
	}

	level := s.ledger.Level(ctx, req.AuthorID)
	item := &models.ContentItem{
		ID:       uuid.New(),
		Type:     req.Type,
		Body:     req.Body,
		AuthorID: req.AuthorID,
		Status:   models.ContentStatusPending,
		Priority: engine.ComputePriority(req.Type, level),
		Language: language,
		Metadata: metadata,
	}
	if err := s.store.CreateContent(ctx, item); err != nil {
		return nil, nil, fmt.Errorf("failed to store content: %w", err)
	}

	result, err := s.evaluate(ctx, item)
	if err != nil {
		return nil, nil, err
	}
	return item, result, nil
}

// evaluate runs the pipeline for one item under its lock and applies all
// side effects: status transition, result persistence, reputation deltas.
func (s *ModerationService) evaluate(ctx context.Context, item *models.ContentItem) (*models.ModerationResult, error) {
	unlock := s.itemLocks.Lock(item.ID.String())
	defer unlock()

	level := s.ledger.Level(ctx, item.AuthorID)
	outcome := s.engine.Evaluate(ctx, item, level)

	result := &models.ModerationResult{
		ID:           uuid.New(),
		ContentID:    item.ID,
		Status:       outcome.Status,
		Action:       outcome.Action,
		Violations:   outcome.Violations,
		Confidence:   outcome.Confidence,
		Reason:       outcome.Reason,
		Appealable:   outcome.Appealable,
		MatchedRules: outcome.MatchedRules,
		ProcessingMs: outcome.ProcessingMs,
	}

	if outcome.Decided {
		now := time.Now()
		item.Status = outcome.Status
		item.ModeratedAt = &now
		if err := s.store.UpdateContent(ctx, item); err != nil {
			return nil, fmt.Errorf("failed to update content status: %w", err)
		}
	}
	if err := s.store.CreateResult(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to store moderation result: %w", err)
	}

	s.applyReputationDelta(ctx, item.AuthorID, outcome.Action, outcome.Reason)

	s.logger.Info("content evaluated",
		"content_id", item.ID,
		"type", item.Type,
		"status", outcome.Status,
		"violations", len(outcome.Violations),
		"latency_ms", float64(outcome.ProcessingMs),
	)
	return result, nil
}

func (s *ModerationService) applyReputationDelta(ctx context.Context, authorID uuid.UUID, action models.ModerationAction, reason string) {
	var delta float64
	switch action {
	case models.ActionReject, models.ActionBan:
		delta = RepDeltaReject
	case models.ActionApprove:
		delta = RepDeltaApprove
	default:
		return
	}
	if _, err := s.ledger.Adjust(ctx, authorID, delta, reason); err != nil {
		s.logger.Error("reputation update failed", "user_id", authorID, "error", err)
	}
}

// GetContent returns an item with its most recent result, if any.
func (s *ModerationService) GetContent(ctx context.Context, id uuid.UUID) (*models.ContentItem, *models.ModerationResult, error) {
	item, err := s.store.GetContent(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	result, err := s.store.LatestResult(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return item, nil, nil
	}
	if err != nil {
		return nil, nil, err
	}
	return item, result, nil
}

// ManualReview applies a moderator decision to a content item. The pending
// result is superseded by a fresh ModerationResult carrying the review
// sub-record; moderator statistics are updated.
func (s *ModerationService) ManualReview(ctx context.Context, contentID, moderatorID uuid.UUID, req *dto.ManualReviewRequest) (*models.ModerationResult, error) {
	mod, err := s.store.GetModerator(ctx, moderatorID)
	if err != nil {
		return nil, err
	}
	if !mod.Role.Can(req.Action) {
		return nil, fmt.Errorf("%w: role %s cannot %s", ErrPermissionDenied, mod.Role, req.Action)
	}

	unlock := s.itemLocks.Lock(contentID.String())
	defer unlock()

	item, err := s.store.GetContent(ctx, contentID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	result := &models.ModerationResult{
		ID:         uuid.New(),
		ContentID:  item.ID,
		Status:     req.Action.StatusFor(false),
		Action:     req.Action,
		Violations: req.Violations,
		Confidence: 1.0,
		Reason:     reviewReason(req),
		Appealable: req.Action.Appealable(),
		ManualReview: &models.ManualReviewResult{
			ModeratorID: moderatorID,
			Notes:       req.Notes,
			ReviewedAt:  now,
		},
	}

	item.Status = result.Status
	item.ModeratedAt = &now
	item.AssignedTo = nil
	if err := s.store.UpdateContent(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update content status: %w", err)
	}
	if err := s.store.CreateResult(ctx, result); err != nil {
		return nil, fmt.Errorf("failed to store review result: %w", err)
	}

	s.applyReputationDelta(ctx, item.AuthorID, req.Action, result.Reason)

	mod.TotalReviews++
	mod.ReviewsToday++
	mod.LastActiveAt = &now
	if err := s.store.UpdateModerator(ctx, mod); err != nil {
		s.logger.Error("failed to update moderator stats", "moderator_id", moderatorID, "error", err)
	}

	s.logger.Info("manual review applied",
		"content_id", contentID,
		"moderator_id", moderatorID,
		"action", req.Action,
	)
	return result, nil
}

func reviewReason(req *dto.ManualReviewRequest) string {
	if req.Notes != "" {
		return req.Notes
	}
	return fmt.Sprintf("Manual review: %s", req.Action)
}

// SubmitAppeal opens an appeal against the latest result for the content.
// Fails with ErrNotAppealable unless that result's action is reject or ban.
func (s *ModerationService) SubmitAppeal(ctx context.Context, contentID, userID uuid.UUID, reason string) (*models.Appeal, error) {
	if strings.TrimSpace(reason) == "" {
		return nil, fmt.Errorf("%w: appeal reason is required", ErrValidation)
	}

	latest, err := s.store.LatestResult(ctx, contentID)
	if err != nil {
		return nil, err
	}
	if !latest.Appealable {
		return nil, ErrNotAppealable
	}

	snapshot, err := json.Marshal(latest)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot result: %w", err)
	}

	appeal := &models.Appeal{
		ID:             uuid.New(),
		ContentID:      contentID,
		ResultID:       latest.ID,
		RequesterID:    userID,
		Reason:         reason,
		Status:         models.AppealPending,
		ResultSnapshot: datatypes.JSON(snapshot),
	}
	if err := s.store.CreateAppeal(ctx, appeal); err != nil {
		return nil, fmt.Errorf("failed to store appeal: %w", err)
	}

	s.logger.Info("appeal submitted", "content_id", contentID, "appeal_id", appeal.ID)
	return appeal, nil
}

// ResolveAppeal moves an appeal to a terminal state. Re-resolving an already
// resolved appeal is a no-op returning the existing state. An overturned
// appeal restores the content and refunds the rejection penalty; a partial
// overturn sends the item back to the escalation queue.
func (s *ModerationService) ResolveAppeal(ctx context.Context, appealID, moderatorID uuid.UUID, req *dto.ResolveAppealRequest) (*models.Appeal, error) {
	if !req.Status.ValidResolution() {
		return nil, fmt.Errorf("%w: invalid appeal resolution %q", ErrValidation, req.Status)
	}

	mod, err := s.store.GetModerator(ctx, moderatorID)
	if err != nil {
		return nil, err
	}
	if !mod.Role.Can(models.ActionReject) {
		return nil, fmt.Errorf("%w: role %s cannot resolve appeals", ErrPermissionDenied, mod.Role)
	}

	appeal, err := s.store.GetAppeal(ctx, appealID)
	if err != nil {
		return nil, err
	}
	if appeal.Status.Resolved() {
		return appeal, nil
	}

	unlock := s.itemLocks.Lock(appeal.ContentID.String())
	defer unlock()

	now := time.Now()
	appeal.Status = req.Status
	appeal.ResolvedBy = &moderatorID
	appeal.ResolutionNote = req.Note
	appeal.ResolvedAt = &now
	if err := s.store.UpdateAppeal(ctx, appeal); err != nil {
		return nil, fmt.Errorf("failed to update appeal: %w", err)
	}

	switch req.Status {
	case models.AppealOverturned:
		s.reverseDecision(ctx, appeal, moderatorID, models.ContentStatusApproved,
			"Appeal overturned: original decision reversed")
		if _, err := s.ledger.Adjust(ctx, appeal.RequesterID, -RepDeltaReject, "appeal overturned"); err != nil {
			s.logger.Error("reputation refund failed", "user_id", appeal.RequesterID, "error", err)
		}
	case models.AppealPartiallyOverturned:
		s.reverseDecision(ctx, appeal, moderatorID, models.ContentStatusEscalated,
			"Appeal partially overturned: queued for re-review")
	}

	s.logger.Info("appeal resolved", "appeal_id", appealID, "status", req.Status)
	return appeal, nil
}

func (s *ModerationService) reverseDecision(ctx context.Context, appeal *models.Appeal, moderatorID uuid.UUID, status models.ContentStatus, reason string) {
	item, err := s.store.GetContent(ctx, appeal.ContentID)
	if err != nil {
		s.logger.Error("appeal content lookup failed", "content_id", appeal.ContentID, "error", err)
		return
	}
	now := time.Now()
	item.Status = status
	item.ModeratedAt = &now
	if err := s.store.UpdateContent(ctx, item); err != nil {
		s.logger.Error("appeal content update failed", "content_id", appeal.ContentID, "error", err)
		return
	}
	result := &models.ModerationResult{
		ID:        uuid.New(),
		ContentID: appeal.ContentID,
		Status:    status,
		Reason:    reason,
		ManualReview: &models.ManualReviewResult{
			ModeratorID: moderatorID,
			ReviewedAt:  now,
		},
	}
	if err := s.store.CreateResult(ctx, result); err != nil {
		s.logger.Error("appeal result store failed", "content_id", appeal.ContentID, "error", err)
	}
}

// Queue lists undecided items by ascending priority.
func (s *ModerationService) Queue(ctx context.Context, limit int) ([]models.ContentItem, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	return s.store.ListQueue(ctx, nil, limit)
}

// ClaimNext assigns the most urgent unclaimed queue item matching the
// moderator's specializations, honoring the daily review cap.
func (s *ModerationService) ClaimNext(ctx context.Context, moderatorID uuid.UUID) (*models.ContentItem, error) {
	mod, err := s.store.GetModerator(ctx, moderatorID)
	if err != nil {
		return nil, err
	}
	if mod.DailyCap > 0 && mod.ReviewsToday >= mod.DailyCap {
		return nil, ErrDailyCapReached
	}

	items, err := s.store.ListQueue(ctx, mod.Specializations, 50)
	if err != nil {
		return nil, err
	}
	for i := range items {
		item := &items[i]
		if item.AssignedTo != nil && *item.AssignedTo != moderatorID {
			continue
		}

		unlock := s.itemLocks.Lock(item.ID.String())
		current, err := s.store.GetContent(ctx, item.ID)
		if err != nil || (current.AssignedTo != nil && *current.AssignedTo != moderatorID) {
			unlock()
			continue
		}
		current.AssignedTo = &moderatorID
		err = s.store.UpdateContent(ctx, current)
		unlock()
		if err != nil {
			return nil, fmt.Errorf("failed to assign content: %w", err)
		}
		return current, nil
	}
	return nil, ErrQueueEmpty
}
