package models

import (
	"time"

	"github.com/google/uuid"
)

type ModerationAction string

const (
	ActionApprove  ModerationAction = "approve"
	ActionWarn     ModerationAction = "warn"
	ActionEscalate ModerationAction = "escalate"
	ActionReject   ModerationAction = "reject"
	ActionBan      ModerationAction = "ban"
)

// Appealable reports whether a decision with this action can be appealed.
func (a ModerationAction) Appealable() bool {
	return a == ActionReject || a == ActionBan
}

// StatusFor maps an action onto the content status it produces when applied
// automatically (auto=true) or by a moderator.
func (a ModerationAction) StatusFor(auto bool) ContentStatus {
	switch a {
	case ActionApprove, ActionWarn:
		if auto {
			return ContentStatusAutoApproved
		}
		return ContentStatusApproved
	case ActionReject, ActionBan:
		if auto {
			return ContentStatusAutoRejected
		}
		return ContentStatusRejected
	case ActionEscalate:
		return ContentStatusEscalated
	default:
		return ContentStatusPending
	}
}

// ManualReviewResult captures the human-override portion of a decision.
type ManualReviewResult struct {
	ModeratorID uuid.UUID `json:"moderator_id"`
	Notes       string    `json:"notes,omitempty"`
	ReviewedAt  time.Time `json:"reviewed_at"`
}

// ModerationResult is the immutable decision record for one content
// evaluation. Re-evaluation creates a new row, never mutates an old one.
type ModerationResult struct {
	ID           uuid.UUID           `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ContentID    uuid.UUID           `gorm:"type:uuid;not null;index" json:"content_id"`
	Status       ContentStatus       `gorm:"size:50;not null" json:"status"`
	Action       ModerationAction    `gorm:"size:20" json:"action,omitempty"`
	Violations   []ViolationDetail   `gorm:"serializer:json;type:jsonb" json:"violations"`
	Confidence   float64             `gorm:"not null;default:0" json:"confidence"`
	Reason       string              `gorm:"size:500" json:"reason"`
	Appealable   bool                `gorm:"not null;default:false" json:"appealable"`
	MatchedRules []string            `gorm:"serializer:json;type:jsonb" json:"matched_rules,omitempty"`
	ManualReview *ManualReviewResult `gorm:"serializer:json;type:jsonb" json:"manual_review,omitempty"`
	ProcessingMs int64               `json:"processing_ms"`
	CreatedAt    time.Time           `json:"created_at"`
}
