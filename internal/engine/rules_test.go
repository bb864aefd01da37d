package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/crisisconnect/moderation/internal/models"
	"github.com/crisisconnect/moderation/internal/policy"
)

func contentRule(id, name string, priority int, auto bool, conds ...policy.RuleCondition) policy.ModerationRule {
	return policy.ModerationRule{
		ID:          id,
		Name:        name,
		Conditions:  conds,
		Action:      models.ActionReject,
		Severity:    models.SeverityMedium,
		AutoExecute: auto,
		Priority:    priority,
		Enabled:     true,
	}
}

func TestEvaluateRulesPriorityOrder(t *testing.T) {
	contains := policy.RuleCondition{Field: policy.FieldContent, Operator: policy.OpContains, Value: "urgent"}
	rules := []policy.ModerationRule{
		contentRule("late", "Late rule", 20, true, contains),
		contentRule("early", "Early rule", 5, true, contains),
	}

	out := EvaluateRules(rules, testItem("urgent help needed"), models.LevelRegular, nil)

	require.NotNil(t, out.Auto)
	assert.Equal(t, "early", out.Auto.ID)
	assert.Equal(t, []string{"Early rule"}, out.Matched)
}

func TestEvaluateRulesNonAutoKeepsGoing(t *testing.T) {
	contains := policy.RuleCondition{Field: policy.FieldContent, Operator: policy.OpContains, Value: "urgent"}
	rules := []policy.ModerationRule{
		contentRule("observer", "Observer rule", 1, false, contains),
		contentRule("decider", "Decider rule", 2, true, contains),
	}

	out := EvaluateRules(rules, testItem("urgent help needed"), models.LevelRegular, nil)

	require.NotNil(t, out.Auto)
	assert.Equal(t, "decider", out.Auto.ID)
	assert.Equal(t, []string{"Observer rule", "Decider rule"}, out.Matched)
}

func TestEvaluateRulesSkipsDisabledAndForeignTypes(t *testing.T) {
	contains := policy.RuleCondition{Field: policy.FieldContent, Operator: policy.OpContains, Value: "urgent"}
	disabled := contentRule("off", "Disabled rule", 1, true, contains)
	disabled.Enabled = false
	scoped := contentRule("profile-only", "Profile rule", 2, true, contains)
	scoped.ContentTypes = []models.ContentType{models.ContentTypeProfile}

	out := EvaluateRules([]policy.ModerationRule{disabled, scoped}, testItem("urgent"), models.LevelRegular, nil)

	assert.Nil(t, out.Auto)
	assert.Empty(t, out.Matched)
}

func TestEvaluateRulesAllConditionsMustHold(t *testing.T) {
	rule := contentRule("both", "Both conditions", 1, true,
		policy.RuleCondition{Field: policy.FieldContent, Operator: policy.OpContains, Value: "http"},
		policy.RuleCondition{Field: policy.FieldAuthor, Operator: policy.OpIn, Value: []string{"untrusted", "new"}},
	)

	out := EvaluateRules([]policy.ModerationRule{rule}, testItem("see http://x.test"), models.LevelRegular, nil)
	assert.Nil(t, out.Auto)

	out = EvaluateRules([]policy.ModerationRule{rule}, testItem("see http://x.test"), models.LevelUntrusted, nil)
	require.NotNil(t, out.Auto)
}

func TestEvaluateRulesMalformedConditionIsFalse(t *testing.T) {
	bad := contentRule("bad", "Bad rule", 1, true,
		policy.RuleCondition{Field: "nonsense", Operator: policy.OpContains, Value: "x"},
	)
	wrongType := contentRule("wrong", "Wrong value type", 2, true,
		policy.RuleCondition{Field: policy.FieldContent, Operator: policy.OpContains, Value: 42},
	)

	out := EvaluateRules([]policy.ModerationRule{bad, wrongType}, testItem("x"), models.LevelRegular, nil)

	assert.Nil(t, out.Auto)
	assert.Empty(t, out.Matched)
}

func TestEvalConditionAIScore(t *testing.T) {
	ai := &AIAnalysisResult{Toxicity: 0.4, Spam: 0.7, Harassment: 0.2}
	item := testItem("anything")

	gt := policy.RuleCondition{Field: policy.FieldAIScore, Operator: policy.OpGreaterThan, Value: 0.6}
	assert.True(t, evalCondition(gt, item, models.LevelRegular, ai))

	lt := policy.RuleCondition{Field: policy.FieldAIScore, Operator: policy.OpLessThan, Value: 0.6}
	assert.False(t, evalCondition(lt, item, models.LevelRegular, ai))

	// No scorer result means score zero.
	assert.False(t, evalCondition(gt, item, models.LevelRegular, nil))
}

func TestEvalConditionMetadata(t *testing.T) {
	item := testItem("anything")
	item.Metadata = datatypes.JSON([]byte(`{"source":"mobile","flagged":true}`))

	hasKey := policy.RuleCondition{Field: policy.FieldMetadata, Operator: policy.OpContains, Value: "source"}
	assert.True(t, evalCondition(hasKey, item, models.LevelRegular, nil))

	missingKey := policy.RuleCondition{Field: policy.FieldMetadata, Operator: policy.OpNotContains, Value: "origin"}
	assert.True(t, evalCondition(missingKey, item, models.LevelRegular, nil))

	equals := policy.RuleCondition{
		Field:    policy.FieldMetadata,
		Operator: policy.OpEquals,
		Value:    map[string]any{"source": "mobile", "flagged": true},
	}
	assert.True(t, evalCondition(equals, item, models.LevelRegular, nil))

	// Comparison operators are not defined for metadata.
	gt := policy.RuleCondition{Field: policy.FieldMetadata, Operator: policy.OpGreaterThan, Value: 1}
	assert.False(t, evalCondition(gt, item, models.LevelRegular, nil))
}

func TestEvalStringOperators(t *testing.T) {
	assert.True(t, evalString("Hello World", policy.OpContains, "world"))
	assert.True(t, evalString("Hello World", policy.OpNotContains, "bye"))
	assert.True(t, evalString("abc123", policy.OpMatches, `^[a-z]+\d+$`))
	assert.False(t, evalString("abc123", policy.OpMatches, `[`))
	assert.True(t, evalString("regular", policy.OpEquals, "regular"))
	assert.True(t, evalString("new", policy.OpIn, []any{"untrusted", "new"}))
	assert.True(t, evalString("trusted", policy.OpNotIn, []string{"untrusted", "new"}))
	assert.False(t, evalString("x", "unknown_op", "x"))
}
