package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type AppealStatus string

const (
	AppealPending             AppealStatus = "pending"
	AppealUnderReview         AppealStatus = "under_review"
	AppealUpheld              AppealStatus = "upheld"
	AppealOverturned          AppealStatus = "overturned"
	AppealPartiallyOverturned AppealStatus = "partially_overturned"
)

// Resolved reports whether the status is terminal.
func (s AppealStatus) Resolved() bool {
	switch s {
	case AppealUpheld, AppealOverturned, AppealPartiallyOverturned:
		return true
	}
	return false
}

func (s AppealStatus) ValidResolution() bool {
	return s.Resolved()
}

// Appeal is a user challenge against an appealable moderation result. The
// original result is frozen as a JSON snapshot at submission time.
type Appeal struct {
	ID             uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ContentID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"content_id"`
	ResultID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"result_id"`
	RequesterID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"requester_id"`
	Reason         string         `gorm:"size:1000;not null" json:"reason"`
	Status         AppealStatus   `gorm:"size:30;not null;default:'pending'" json:"status"`
	ResultSnapshot datatypes.JSON `gorm:"type:jsonb" json:"result_snapshot"`
	ResolvedBy     *uuid.UUID     `gorm:"type:uuid" json:"resolved_by,omitempty"`
	ResolutionNote string         `gorm:"size:1000" json:"resolution_note,omitempty"`
	ResolvedAt     *time.Time     `json:"resolved_at,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
}
