package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/crisisconnect/moderation/internal/models"
	"github.com/crisisconnect/moderation/internal/store"
)

// Standard deltas applied by the pipeline after each decision.
const (
	RepDeltaReject  = -10.0
	RepDeltaApprove = 1.0
)

// ReputationLedger owns per-user trust scores. Updates for the same user are
// applied atomically under a per-user lock so reads for priority and
// auto-approval observe a consistent snapshot.
type ReputationLedger struct {
	store  store.ReputationStore
	logger *slog.Logger
	locks  keyedMutex
}

func NewReputationLedger(st store.ReputationStore, logger *slog.Logger) *ReputationLedger {
	return &ReputationLedger{store: st, logger: logger}
}

// Adjust applies a score delta, clamped to [0,100], recomputes the level,
// appends a history entry and bumps the violation or quality counter. A
// missing record is created lazily at the start score.
func (l *ReputationLedger) Adjust(ctx context.Context, userID uuid.UUID, delta float64, reason string) (*models.UserReputation, error) {
	unlock := l.locks.Lock(userID.String())
	defer unlock()

	rep, err := l.store.GetReputation(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		rep = &models.UserReputation{
			UserID: userID,
			Score:  models.ReputationStartScore,
			Level:  models.LevelForScore(models.ReputationStartScore),
		}
	} else if err != nil {
		return nil, err
	}

	rep.Score = clampScore(rep.Score + delta)
	rep.Level = models.LevelForScore(rep.Score)
	if delta < 0 {
		rep.Violations++
	} else if delta > 0 {
		rep.ContentQuality++
	}

	if err := l.store.SaveReputation(ctx, rep); err != nil {
		return nil, err
	}
	if err := l.store.AppendReputationEvent(ctx, &models.ReputationEvent{
		UserID: userID,
		Delta:  delta,
		Score:  rep.Score,
		Reason: reason,
	}); err != nil {
		l.logger.Error("failed to append reputation history", "user_id", userID, "error", err)
	}
	return rep, nil
}

// Level reads the current trust tier under the per-user lock. Absent records
// report the start-score level without being created; creation happens on
// the first Adjust.
func (l *ReputationLedger) Level(ctx context.Context, userID uuid.UUID) models.ReputationLevel {
	unlock := l.locks.Lock(userID.String())
	defer unlock()

	rep, err := l.store.GetReputation(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return models.LevelForScore(models.ReputationStartScore)
	}
	if err != nil {
		l.logger.Error("reputation read failed, assuming start level", "user_id", userID, "error", err)
		return models.LevelForScore(models.ReputationStartScore)
	}
	return rep.Level
}

// Get returns the full reputation record, or a synthetic start-score record
// when the user has no moderation history yet.
func (l *ReputationLedger) Get(ctx context.Context, userID uuid.UUID) (*models.UserReputation, error) {
	rep, err := l.store.GetReputation(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return &models.UserReputation{
			UserID: userID,
			Score:  models.ReputationStartScore,
			Level:  models.LevelForScore(models.ReputationStartScore),
		}, nil
	}
	return rep, err
}

func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
