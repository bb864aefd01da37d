package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crisisconnect/moderation/internal/models"
)

func writePolicy(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "policy.json")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadFromFileSeedsDefaults(t *testing.T) {
	path := writePolicy(t, `{"filters":[],"rules":[]}`)

	reg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Len(t, reg.Filters(), len(DefaultFilters))
	_, ok := reg.GetFilter("default-profanity")
	assert.True(t, ok)
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	path := writePolicy(t, `{
		"filters": [
			{"id":"default-spam","category":"spam","words":["crypto doubler"],"severity":"high","enabled":true},
			{"id":"local-threats","category":"violence","words":["looting tonight"],"severity":"high","enabled":true}
		],
		"rules": [
			{"id":"r1","name":"Link rule","conditions":[{"field":"content","operator":"contains","value":"http"}],"action":"escalate","severity":"medium","auto_execute":true,"priority":1,"enabled":true}
		]
	}`)

	reg, err := LoadFromFile(path)
	require.NoError(t, err)

	spam, ok := reg.GetFilter("default-spam")
	require.True(t, ok)
	assert.Equal(t, []string{"crypto doubler"}, spam.Words)
	assert.Equal(t, models.SeverityHigh, spam.Severity)

	_, ok = reg.GetFilter("local-threats")
	assert.True(t, ok)
	require.Len(t, reg.Rules(), 1)

	rule, ok := reg.GetRule("r1")
	require.True(t, ok)
	assert.True(t, rule.AutoExecute)
	require.Len(t, rule.Conditions, 1)
	assert.Equal(t, FieldContent, rule.Conditions[0].Field)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	_, err = LoadFromFile(writePolicy(t, "not json"))
	assert.Error(t, err)
}

func TestReloadReplacesContents(t *testing.T) {
	path := writePolicy(t, `{"filters":[{"id":"a","category":"spam","words":["x"],"severity":"low","enabled":true}]}`)
	reg, err := LoadFromFile(path)
	require.NoError(t, err)
	_, ok := reg.GetFilter("a")
	require.True(t, ok)

	require.NoError(t, os.WriteFile(path, []byte(`{"filters":[{"id":"b","category":"spam","words":["y"],"severity":"low","enabled":true}]}`), 0o644))
	require.NoError(t, reg.Reload(path))

	_, ok = reg.GetFilter("a")
	assert.False(t, ok)
	_, ok = reg.GetFilter("b")
	assert.True(t, ok)
	// Defaults survive a reload.
	_, ok = reg.GetFilter("default-profanity")
	assert.True(t, ok)
}

func TestReloadKeepsSnapshotsComplete(t *testing.T) {
	path := writePolicy(t, `{"filters":[{"id":"local","category":"spam","words":["x"],"severity":"low","enabled":true}]}`)
	reg, err := LoadFromFile(path)
	require.NoError(t, err)
	want := len(DefaultFilters) + 1
	require.Len(t, reg.Filters(), want)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 500; i++ {
			assert.NoError(t, reg.Reload(path))
		}
	}()

	// Readers racing the reloads must always see a full configuration,
	// never a partially rebuilt one.
	for {
		if n := len(reg.Filters()); n != want {
			t.Fatalf("filter snapshot had %d entries during reload, want %d", n, want)
		}
		select {
		case <-done:
			return
		default:
		}
	}
}

func TestUpsertFilterValidation(t *testing.T) {
	reg := NewRegistry()

	assert.Error(t, reg.UpsertFilter(WordFilter{Category: CategorySpam, Words: []string{"x"}, Severity: models.SeverityLow}))
	assert.Error(t, reg.UpsertFilter(WordFilter{ID: "f", Category: CategorySpam, Severity: models.SeverityLow}))
	assert.Error(t, reg.UpsertFilter(WordFilter{ID: "f", Category: CategorySpam, Words: []string{"x"}, Severity: "extreme"}))

	require.NoError(t, reg.UpsertFilter(WordFilter{ID: "f", Category: CategorySpam, Words: []string{"x"}, Severity: models.SeverityLow, Enabled: true}))
	_, ok := reg.GetFilter("f")
	assert.True(t, ok)
}

func TestUpsertRuleValidation(t *testing.T) {
	reg := NewRegistry()
	cond := RuleCondition{Field: FieldContent, Operator: OpContains, Value: "x"}

	assert.Error(t, reg.UpsertRule(ModerationRule{Name: "n", Conditions: []RuleCondition{cond}}))
	assert.Error(t, reg.UpsertRule(ModerationRule{ID: "r", Conditions: []RuleCondition{cond}}))
	assert.Error(t, reg.UpsertRule(ModerationRule{ID: "r", Name: "n"}))

	require.NoError(t, reg.UpsertRule(ModerationRule{ID: "r", Name: "n", Conditions: []RuleCondition{cond}}))
}

func TestDeleteFilterAndRule(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.UpsertFilter(WordFilter{ID: "f", Category: CategorySpam, Words: []string{"x"}, Severity: models.SeverityLow}))
	require.NoError(t, reg.UpsertRule(ModerationRule{ID: "r", Name: "n", Conditions: []RuleCondition{{Field: FieldContent, Operator: OpContains, Value: "x"}}}))

	assert.True(t, reg.DeleteFilter("f"))
	assert.False(t, reg.DeleteFilter("f"))
	assert.True(t, reg.DeleteRule("r"))
	assert.False(t, reg.DeleteRule("r"))
}

func TestCategoryViolationFallback(t *testing.T) {
	assert.Equal(t, models.ViolationExplicit, CategoryProfanity.ViolationType())
	assert.Equal(t, models.ViolationLowQuality, FilterCategory("made-up").ViolationType())
}

func TestAppliesTo(t *testing.T) {
	all := ModerationRule{}
	assert.True(t, all.AppliesTo(models.ContentTypeAlert))

	scoped := ModerationRule{ContentTypes: []models.ContentType{models.ContentTypeComment}}
	assert.True(t, scoped.AppliesTo(models.ContentTypeComment))
	assert.False(t, scoped.AppliesTo(models.ContentTypeAlert))
}
