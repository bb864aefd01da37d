package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type ContentType string

const (
	ContentTypeAlert                ContentType = "alert"
	ContentTypeComment              ContentType = "comment"
	ContentTypeMessage              ContentType = "message"
	ContentTypeReport               ContentType = "report"
	ContentTypeProfile              ContentType = "profile"
	ContentTypeMedia                ContentType = "media"
	ContentTypeDonationMessage      ContentType = "donation_message"
	ContentTypeVolunteerApplication ContentType = "volunteer_application"
)

// ContentTypes lists every valid submission type, used for request validation.
var ContentTypes = []ContentType{
	ContentTypeAlert,
	ContentTypeComment,
	ContentTypeMessage,
	ContentTypeReport,
	ContentTypeProfile,
	ContentTypeMedia,
	ContentTypeDonationMessage,
	ContentTypeVolunteerApplication,
}

func (t ContentType) Valid() bool {
	for _, ct := range ContentTypes {
		if t == ct {
			return true
		}
	}
	return false
}

type ContentStatus string

const (
	ContentStatusPending      ContentStatus = "pending"
	ContentStatusApproved     ContentStatus = "approved"
	ContentStatusRejected     ContentStatus = "rejected"
	ContentStatusEscalated    ContentStatus = "escalated"
	ContentStatusAutoApproved ContentStatus = "auto_approved"
	ContentStatusAutoRejected ContentStatus = "auto_rejected"
)

// ContentItem is a single piece of user-generated content flowing through
// the moderation pipeline. Items are never deleted, only status-transitioned.
type ContentItem struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Type        ContentType    `gorm:"size:50;not null;index" json:"type"`
	Body        string         `gorm:"type:text;not null" json:"body"`
	AuthorID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"author_id"`
	Status      ContentStatus  `gorm:"size:50;not null;default:'pending';index" json:"status"`
	Priority    int            `gorm:"not null;default:3;index" json:"priority"`
	Language    string         `gorm:"size:10;default:'en'" json:"language"`
	Metadata    datatypes.JSON `gorm:"type:jsonb;default:'{}'" json:"metadata"`
	AssignedTo  *uuid.UUID     `gorm:"type:uuid;index" json:"assigned_to,omitempty"`
	ModeratedAt *time.Time     `json:"moderated_at,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
