package engine

import (
	"github.com/crisisconnect/moderation/internal/models"
)

// basePriorities orders content types by urgency. Crisis alerts and abuse
// reports jump the queue; profile edits and applications can wait.
var basePriorities = map[models.ContentType]int{
	models.ContentTypeAlert:                1,
	models.ContentTypeReport:               2,
	models.ContentTypeMessage:              3,
	models.ContentTypeMedia:                3,
	models.ContentTypeComment:              4,
	models.ContentTypeDonationMessage:      4,
	models.ContentTypeProfile:              5,
	models.ContentTypeVolunteerApplication: 5,
}

// ComputePriority derives queue priority from content type and author
// reputation. Lower is more urgent. Content from untrusted authors is
// bumped up; content from trusted authors can wait longer.
func ComputePriority(t models.ContentType, level models.ReputationLevel) int {
	p, ok := basePriorities[t]
	if !ok {
		p = 4
	}
	switch level {
	case models.LevelUntrusted:
		p--
	case models.LevelTrusted, models.LevelVerified:
		p++
	}
	if p < 1 {
		p = 1
	}
	return p
}
