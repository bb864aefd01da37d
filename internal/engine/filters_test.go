package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisisconnect/moderation/internal/models"
	"github.com/crisisconnect/moderation/internal/policy"
)

func TestScanFiltersSubstringMatch(t *testing.T) {
	filters := []policy.WordFilter{{
		ID:       "scam",
		Category: policy.CategoryScam,
		Words:    []string{"wire transfer"},
		Severity: models.SeverityHigh,
		Enabled:  true,
	}}

	violations := ScanFilters(filters, "Please do a WIRE TRANSFER today")

	require.Len(t, violations, 1)
	assert.Equal(t, models.ViolationScam, violations[0].Type)
	assert.Equal(t, models.SeverityHigh, violations[0].Severity)
	assert.Equal(t, 0.9, violations[0].Confidence)
	assert.Contains(t, violations[0].Evidence, "scam")
}

func TestScanFiltersExactMatchRespectsWordBoundaries(t *testing.T) {
	filters := []policy.WordFilter{{
		ID:         "profanity",
		Category:   policy.CategoryProfanity,
		Words:      []string{"shit"},
		Severity:   models.SeverityHigh,
		ExactMatch: true,
		Enabled:    true,
	}}

	assert.Len(t, ScanFilters(filters, "that is shit"), 1)
	assert.Len(t, ScanFilters(filters, "That is SHIT!"), 1)
	// Embedded in a larger word it should not fire.
	assert.Empty(t, ScanFilters(filters, "a complete mishit of the ball"))
}

func TestScanFiltersSkipsDisabled(t *testing.T) {
	filters := []policy.WordFilter{{
		ID:       "off",
		Category: policy.CategorySpam,
		Words:    []string{"free money"},
		Severity: models.SeverityMedium,
		Enabled:  false,
	}}

	assert.Empty(t, ScanFilters(filters, "free money for all"))
}

func TestScanFiltersOneViolationPerFilter(t *testing.T) {
	filters := []policy.WordFilter{{
		ID:       "spam",
		Category: policy.CategorySpam,
		Words:    []string{"free money", "click here"},
		Severity: models.SeverityMedium,
		Enabled:  true,
	}}

	// Both words present, but a filter reports at most once.
	assert.Len(t, ScanFilters(filters, "free money, just click here"), 1)
}

func TestThresholdViolations(t *testing.T) {
	// Scores at the threshold do not fire; strictly above does.
	assert.Empty(t, ThresholdViolations(&AIAnalysisResult{Toxicity: 0.8, Spam: 0.8, Misinformation: 0.7}))

	violations := ThresholdViolations(&AIAnalysisResult{Toxicity: 0.81, Spam: 0.9, Misinformation: 0.75})
	require.Len(t, violations, 3)
	assert.Equal(t, models.ViolationHarassment, violations[0].Type)
	assert.Equal(t, models.SeverityHigh, violations[0].Severity)
	assert.Equal(t, models.ViolationSpam, violations[1].Type)
	assert.Equal(t, models.SeverityMedium, violations[1].Severity)
	assert.Equal(t, models.ViolationMisinformation, violations[2].Type)
	assert.Equal(t, models.SeverityHigh, violations[2].Severity)

	assert.Empty(t, ThresholdViolations(nil))
}
