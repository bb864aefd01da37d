package policy

import (
	"github.com/crisisconnect/moderation/internal/models"
)

// DefaultFilters is the built-in filter bank, seeded on every load so a
// fresh deployment moderates sensibly before any policy file exists.
// Entries can be overridden by policy-file filters with the same id.
var DefaultFilters = []WordFilter{
	{
		ID:       "default-profanity",
		Category: CategoryProfanity,
		Words: []string{
			"fuck", "fucking", "shit", "bullshit", "asshole", "bastard", "bitch",
		},
		Action:     models.ActionReject,
		Severity:   models.SeverityHigh,
		ExactMatch: true,
		Enabled:    true,
	},
	{
		ID:       "default-spam",
		Category: CategorySpam,
		Words: []string{
			"free money", "click here", "limited time offer", "act now",
			"winner winner", "100% free",
		},
		Action:     models.ActionEscalate,
		Severity:   models.SeverityMedium,
		ExactMatch: false,
		Enabled:    true,
	},
	{
		ID:       "default-scam",
		Category: CategoryScam,
		Words: []string{
			"wire transfer", "western union", "nigerian prince", "advance fee",
			"crypto giveaway",
		},
		Action:     models.ActionReject,
		Severity:   models.SeverityHigh,
		ExactMatch: false,
		Enabled:    true,
	},
	{
		ID:       "default-personal-info",
		Category: CategoryPersonalInfo,
		Words: []string{
			"social security number", "ssn", "credit card number",
			"passport number", "bank account number",
		},
		Action:     models.ActionReject,
		Severity:   models.SeverityCritical,
		ExactMatch: false,
		Enabled:    true,
	},
	{
		ID:       "default-violence",
		Category: CategoryViolence,
		Words: []string{
			"kill you", "hurt you", "shoot up", "bomb threat",
		},
		Action:     models.ActionReject,
		Severity:   models.SeverityHigh,
		ExactMatch: false,
		Enabled:    true,
	},
}
