package engine

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/crisisconnect/moderation/internal/models"
	"github.com/crisisconnect/moderation/internal/policy"
)

// Lexical matches are high-confidence but not certain, so rules and human
// review can still override them.
const lexicalMatchConfidence = 0.9

// ScanFilters runs the lexical filter bank over a content body. Pure over
// the given filter configuration: no side effects, identical input yields
// identical violations.
func ScanFilters(filters []policy.WordFilter, text string) []models.ViolationDetail {
	lower := strings.ToLower(text)
	var violations []models.ViolationDetail
	for i := range filters {
		f := &filters[i]
		if !f.Enabled {
			continue
		}
		word, matched := matchFilter(f, text, lower)
		if !matched {
			continue
		}
		violations = append(violations, models.ViolationDetail{
			Type:       f.Category.ViolationType(),
			Severity:   f.Severity,
			Confidence: lexicalMatchConfidence,
			Evidence:   fmt.Sprintf("filter %s matched %q", f.ID, word),
		})
	}
	return violations
}

func matchFilter(f *policy.WordFilter, text, lower string) (string, bool) {
	for _, word := range f.Words {
		if f.ExactMatch {
			pattern := `(?i)\b` + regexp.QuoteMeta(word) + `\b`
			re, err := regexp.Compile(pattern)
			if err != nil {
				continue
			}
			if re.MatchString(text) {
				return word, true
			}
		} else if strings.Contains(lower, strings.ToLower(word)) {
			return word, true
		}
	}
	return "", false
}

// ThresholdViolations derives violations from scorer output using the fixed
// downstream thresholds.
func ThresholdViolations(ai *AIAnalysisResult) []models.ViolationDetail {
	if ai == nil {
		return nil
	}
	var violations []models.ViolationDetail
	if ai.Toxicity > 0.8 {
		violations = append(violations, models.ViolationDetail{
			Type:       models.ViolationHarassment,
			Severity:   models.SeverityHigh,
			Confidence: ai.Toxicity,
			Evidence:   fmt.Sprintf("toxicity score %.2f", ai.Toxicity),
		})
	}
	if ai.Spam > 0.8 {
		violations = append(violations, models.ViolationDetail{
			Type:       models.ViolationSpam,
			Severity:   models.SeverityMedium,
			Confidence: ai.Spam,
			Evidence:   fmt.Sprintf("spam score %.2f", ai.Spam),
		})
	}
	if ai.Misinformation > 0.7 {
		violations = append(violations, models.ViolationDetail{
			Type:       models.ViolationMisinformation,
			Severity:   models.SeverityHigh,
			Confidence: ai.Misinformation,
			Evidence:   fmt.Sprintf("misinformation score %.2f", ai.Misinformation),
		})
	}
	return violations
}
