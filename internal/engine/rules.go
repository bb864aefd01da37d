package engine

import (
	"encoding/json"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/crisisconnect/moderation/internal/models"
	"github.com/crisisconnect/moderation/internal/policy"
)

// RuleOutcome is the result of evaluating the rule set against one item.
// Auto is the first auto-executing match in priority order, nil when none.
// Matched lists the names of every matching rule, auto-executing or not.
type RuleOutcome struct {
	Auto    *policy.ModerationRule
	Matched []string
}

// EvaluateRules checks the rule set against a content item. Rules are
// filtered to enabled rules covering the item's type, then sorted ascending
// by priority; within equal priority the original order is kept. The first
// matching rule with AutoExecute set short-circuits evaluation.
func EvaluateRules(rules []policy.ModerationRule, item *models.ContentItem, authorLevel models.ReputationLevel, ai *AIAnalysisResult) RuleOutcome {
	applicable := make([]policy.ModerationRule, 0, len(rules))
	for _, r := range rules {
		if r.Enabled && r.AppliesTo(item.Type) {
			applicable = append(applicable, r)
		}
	}
	sort.SliceStable(applicable, func(i, j int) bool {
		return applicable[i].Priority < applicable[j].Priority
	})

	var out RuleOutcome
	for i := range applicable {
		r := applicable[i]
		if !ruleMatches(&r, item, authorLevel, ai) {
			continue
		}
		out.Matched = append(out.Matched, r.Name)
		if r.AutoExecute {
			out.Auto = &r
			return out
		}
	}
	return out
}

func ruleMatches(r *policy.ModerationRule, item *models.ContentItem, authorLevel models.ReputationLevel, ai *AIAnalysisResult) bool {
	for _, cond := range r.Conditions {
		if !evalCondition(cond, item, authorLevel, ai) {
			return false
		}
	}
	return true
}

// evalCondition is total over its inputs: a malformed condition (unknown
// field or operator, mismatched value type) evaluates false instead of
// failing, so one bad rule never blocks unrelated content.
func evalCondition(cond policy.RuleCondition, item *models.ContentItem, authorLevel models.ReputationLevel, ai *AIAnalysisResult) bool {
	switch cond.Field {
	case policy.FieldContent:
		return evalString(item.Body, cond.Operator, cond.Value)
	case policy.FieldAuthor:
		return evalString(string(authorLevel), cond.Operator, cond.Value)
	case policy.FieldMetadata:
		return evalMetadata([]byte(item.Metadata), cond.Operator, cond.Value)
	case policy.FieldAIScore:
		score := 0.0
		if ai != nil {
			score = ai.RiskScore()
		}
		return evalNumber(score, cond.Operator, cond.Value)
	default:
		return false
	}
}

func evalString(subject string, op policy.ConditionOperator, value any) bool {
	switch op {
	case policy.OpContains:
		s, ok := asString(value)
		return ok && strings.Contains(strings.ToLower(subject), strings.ToLower(s))
	case policy.OpNotContains:
		s, ok := asString(value)
		return ok && !strings.Contains(strings.ToLower(subject), strings.ToLower(s))
	case policy.OpMatches:
		s, ok := asString(value)
		if !ok {
			return false
		}
		re, err := regexp.Compile(s)
		return err == nil && re.MatchString(subject)
	case policy.OpEquals:
		s, ok := asString(value)
		return ok && subject == s
	case policy.OpIn:
		list, ok := asStringSlice(value)
		return ok && containsString(list, subject)
	case policy.OpNotIn:
		list, ok := asStringSlice(value)
		return ok && !containsString(list, subject)
	default:
		return false
	}
}

func evalNumber(subject float64, op policy.ConditionOperator, value any) bool {
	n, ok := asFloat(value)
	if !ok {
		return false
	}
	switch op {
	case policy.OpGreaterThan:
		return subject > n
	case policy.OpLessThan:
		return subject < n
	case policy.OpEquals:
		return subject == n
	default:
		return false
	}
}

// evalMetadata supports equality and key containment only.
func evalMetadata(raw []byte, op policy.ConditionOperator, value any) bool {
	var meta map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &meta); err != nil {
			return false
		}
	}
	switch op {
	case policy.OpContains:
		key, ok := asString(value)
		if !ok {
			return false
		}
		_, present := meta[key]
		return present
	case policy.OpNotContains:
		key, ok := asString(value)
		if !ok {
			return false
		}
		_, present := meta[key]
		return !present
	case policy.OpEquals:
		expected, ok := value.(map[string]any)
		return ok && reflect.DeepEqual(meta, expected)
	default:
		return false
	}
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	default:
		return 0, false
	}
}

func asStringSlice(v any) ([]string, bool) {
	switch list := v.(type) {
	case []string:
		return list, true
	case []any:
		result := make([]string, 0, len(list))
		for _, item := range list {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			result = append(result, s)
		}
		return result, true
	default:
		return nil, false
	}
}

func containsString(list []string, val string) bool {
	for _, item := range list {
		if item == val {
			return true
		}
	}
	return false
}
