package models

import (
	"time"

	"github.com/google/uuid"
)

type ReputationLevel string

const (
	LevelUntrusted ReputationLevel = "untrusted"
	LevelNew       ReputationLevel = "new"
	LevelRegular   ReputationLevel = "regular"
	LevelTrusted   ReputationLevel = "trusted"
	LevelVerified  ReputationLevel = "verified"
)

// LevelForScore derives the trust tier from a numeric score.
func LevelForScore(score float64) ReputationLevel {
	switch {
	case score < 20:
		return LevelUntrusted
	case score < 40:
		return LevelNew
	case score < 60:
		return LevelRegular
	case score < 80:
		return LevelTrusted
	default:
		return LevelVerified
	}
}

// ReputationStartScore is assigned when a record is lazily created on a
// user's first moderation event.
const ReputationStartScore = 50.0

// UserReputation is the per-user trust record read by priority calculation
// and auto-approval, and written after every decision.
type UserReputation struct {
	UserID         uuid.UUID       `gorm:"type:uuid;primaryKey" json:"user_id"`
	Score          float64         `gorm:"not null;default:50" json:"score"`
	Level          ReputationLevel `gorm:"size:20;not null;default:'regular'" json:"level"`
	Violations     int             `gorm:"default:0" json:"violations"`
	ContentQuality int             `gorm:"default:0" json:"content_quality"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// ReputationEvent is one append-only history entry for a score change.
type ReputationEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	Delta     float64   `gorm:"not null" json:"delta"`
	Score     float64   `gorm:"not null" json:"score"`
	Reason    string    `gorm:"size:255" json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}
