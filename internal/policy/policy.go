package policy

import (
	"github.com/crisisconnect/moderation/internal/models"
)

type FilterCategory string

const (
	CategoryProfanity    FilterCategory = "profanity"
	CategorySpam         FilterCategory = "spam"
	CategoryPersonalInfo FilterCategory = "personal_info"
	CategoryViolence     FilterCategory = "violence"
	CategoryScam         FilterCategory = "scam"
	CategoryHateSpeech   FilterCategory = "hate_speech"
)

// categoryViolations maps every filter category to the violation type it
// reports. Categories missing from this table fall back to low_quality so a
// misconfigured filter still produces a reviewable violation.
var categoryViolations = map[FilterCategory]models.ViolationType{
	CategoryProfanity:    models.ViolationExplicit,
	CategorySpam:         models.ViolationSpam,
	CategoryPersonalInfo: models.ViolationPersonalInfo,
	CategoryViolence:     models.ViolationViolence,
	CategoryScam:         models.ViolationScam,
	CategoryHateSpeech:   models.ViolationHateSpeech,
}

// ViolationType returns the violation type reported by this category.
func (c FilterCategory) ViolationType() models.ViolationType {
	if vt, ok := categoryViolations[c]; ok {
		return vt
	}
	return models.ViolationLowQuality
}

// WordFilter is one configurable lexical filter. Filters are long-lived
// configuration, mutated only through the policy admin API or config file.
type WordFilter struct {
	ID         string                  `json:"id"`
	Category   FilterCategory          `json:"category"`
	Words      []string                `json:"words"`
	Action     models.ModerationAction `json:"action"`
	Severity   models.Severity         `json:"severity"`
	ExactMatch bool                    `json:"exact_match"`
	Enabled    bool                    `json:"enabled"`
}

type ConditionField string

const (
	FieldContent  ConditionField = "content"
	FieldAuthor   ConditionField = "author"
	FieldMetadata ConditionField = "metadata"
	FieldAIScore  ConditionField = "ai_score"
)

type ConditionOperator string

const (
	OpContains    ConditionOperator = "contains"
	OpNotContains ConditionOperator = "not_contains"
	OpMatches     ConditionOperator = "matches"
	OpEquals      ConditionOperator = "equals"
	OpGreaterThan ConditionOperator = "greater_than"
	OpLessThan    ConditionOperator = "less_than"
	OpIn          ConditionOperator = "in"
	OpNotIn       ConditionOperator = "not_in"
)

// RuleCondition is one predicate of a moderation rule. All conditions of a
// rule must hold for the rule to match.
type RuleCondition struct {
	Field    ConditionField    `json:"field"`
	Operator ConditionOperator `json:"operator"`
	Value    any               `json:"value"`
}

// ModerationRule is an ordered, conditionally matched policy rule. Rules are
// evaluated strictly by ascending priority; the first matching rule with
// AutoExecute set terminates the pipeline.
type ModerationRule struct {
	ID           string                  `json:"id"`
	Name         string                  `json:"name"`
	Description  string                  `json:"description,omitempty"`
	ContentTypes []models.ContentType    `json:"content_types"`
	Conditions   []RuleCondition         `json:"conditions"`
	Action       models.ModerationAction `json:"action"`
	Severity     models.Severity         `json:"severity"`
	AutoExecute  bool                    `json:"auto_execute"`
	Priority     int                     `json:"priority"`
	Enabled      bool                    `json:"enabled"`
}

// AppliesTo reports whether the rule covers the given content type. An empty
// content type list covers everything.
func (r *ModerationRule) AppliesTo(t models.ContentType) bool {
	if len(r.ContentTypes) == 0 {
		return true
	}
	for _, ct := range r.ContentTypes {
		if ct == t {
			return true
		}
	}
	return false
}
