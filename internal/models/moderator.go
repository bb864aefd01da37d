package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ModeratorRole string

const (
	RoleJunior ModeratorRole = "junior"
	RoleSenior ModeratorRole = "senior"
	RoleLead   ModeratorRole = "lead"
	RoleAdmin  ModeratorRole = "admin"
)

// rolePermissions maps each role to the actions it may take. Permission sets
// grow monotonically with seniority.
var rolePermissions = map[ModeratorRole][]ModerationAction{
	RoleJunior: {ActionApprove, ActionEscalate},
	RoleSenior: {ActionApprove, ActionEscalate, ActionWarn, ActionReject},
	RoleLead:   {ActionApprove, ActionEscalate, ActionWarn, ActionReject, ActionBan},
	RoleAdmin:  {ActionApprove, ActionEscalate, ActionWarn, ActionReject, ActionBan},
}

func (r ModeratorRole) Can(action ModerationAction) bool {
	for _, a := range rolePermissions[r] {
		if a == action {
			return true
		}
	}
	return false
}

// CanManagePolicy reports whether the role may edit word filters and rules.
func (r ModeratorRole) CanManagePolicy() bool {
	return r == RoleLead || r == RoleAdmin
}

// Moderator is a human reviewer account.
type Moderator struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Email           string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Password        string         `gorm:"not null" json:"-"`
	DisplayName     string         `gorm:"size:100" json:"display_name"`
	Role            ModeratorRole  `gorm:"size:20;not null;default:'junior'" json:"role"`
	Specializations []ContentType  `gorm:"serializer:json;type:jsonb" json:"specializations"`
	TotalReviews    int            `gorm:"default:0" json:"total_reviews"`
	AccurateReviews int            `gorm:"default:0" json:"accurate_reviews"`
	ReviewsToday    int            `gorm:"default:0" json:"reviews_today"`
	DailyCap        int            `gorm:"default:100" json:"daily_cap"`
	LastActiveAt    *time.Time     `json:"last_active_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// Accuracy returns the fraction of reviews later upheld, 0 when unreviewed.
func (m *Moderator) Accuracy() float64 {
	if m.TotalReviews == 0 {
		return 0
	}
	return float64(m.AccurateReviews) / float64(m.TotalReviews)
}

// Specializes reports whether the moderator handles the given content type.
// An empty specialization list means all types.
func (m *Moderator) Specializes(t ContentType) bool {
	if len(m.Specializations) == 0 {
		return true
	}
	for _, ct := range m.Specializations {
		if ct == t {
			return true
		}
	}
	return false
}
