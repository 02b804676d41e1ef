// pkg/mapper/engine_test.go
package mapper

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/AbinashParida-NITW/schema-mapper/pkg/dictionary"
	"github.com/AbinashParida-NITW/schema-mapper/pkg/model"
	"github.com/AbinashParida-NITW/schema-mapper/pkg/schema"
)

func newEngine(t *testing.T) (*Engine, *dictionary.Dictionary) {
	t.Helper()
	store, err := dictionary.NewFileStore(filepath.Join(t.TempDir(), "rules.json"))
	require.NoError(t, err)
	dict, err := dictionary.New(store, zap.NewNop())
	require.NoError(t, err)
	engine, err := NewEngine(schema.Default(), dict, zap.NewNop())
	require.NoError(t, err)
	return engine, dict
}

func suggestionFor(t *testing.T, rules []model.MappingRule, source string) model.MappingRule {
	t.Helper()
	for _, r := range rules {
		if r.SourceColumn == source {
			return r
		}
	}
	t.Fatalf("no suggestion for %q", source)
	return model.MappingRule{}
}

func TestSuggestExactAndSynonym(t *testing.T) {
	engine, _ := newEngine(t)

	rules := engine.SuggestMappings([]string{"ORDER_ID", "Qty", "Phone #"})

	exact := suggestionFor(t, rules, "ORDER_ID")
	assert.Equal(t, "order_id", exact.TargetColumn)
	assert.Equal(t, 1.0, exact.Confidence)
	assert.Equal(t, model.TransformDirect, exact.Transformation)

	syn := suggestionFor(t, rules, "Qty")
	assert.Equal(t, "quantity", syn.TargetColumn)
	assert.Equal(t, 0.95, syn.Confidence)
	assert.Equal(t, model.TransformDirect, syn.Transformation)

	phone := suggestionFor(t, rules, "Phone #")
	assert.Equal(t, "phone", phone.TargetColumn)
}

func TestSuggestFuzzy(t *testing.T) {
	engine, _ := newEngine(t)

	rules := engine.SuggestMappings([]string{"Customr Name"})
	got := suggestionFor(t, rules, "Customr Name")

	assert.Equal(t, "customer_name", got.TargetColumn)
	assert.Equal(t, model.TransformFuzzy, got.Transformation)
	assert.GreaterOrEqual(t, got.Confidence, 0.6)
	assert.Less(t, got.Confidence, 1.0)
}

func TestSuggestUnmappedBelowThreshold(t *testing.T) {
	engine, _ := newEngine(t)

	rules := engine.SuggestMappings([]string{"zzqqxxww"})
	got := suggestionFor(t, rules, "zzqqxxww")

	assert.Equal(t, model.Unmapped, got.TargetColumn)
	assert.Less(t, got.Confidence, 0.6)
}

func TestSuggestionsSortedByConfidence(t *testing.T) {
	engine, _ := newEngine(t)

	rules := engine.SuggestMappings([]string{"zzqqxxww", "Customr Name", "order_id"})
	for i := 1; i < len(rules); i++ {
		assert.GreaterOrEqual(t, rules[i-1].Confidence, rules[i].Confidence)
	}
	assert.Equal(t, "order_id", rules[0].SourceColumn)
	assert.Equal(t, "zzqqxxww", rules[len(rules)-1].SourceColumn)
}

func TestConfirmThenLearned(t *testing.T) {
	engine, _ := newEngine(t)

	require.NoError(t, engine.Confirm([]model.MappingRule{
		{SourceColumn: "Customr Name", TargetColumn: "customer_name", Confidence: 0.9, Transformation: model.TransformFuzzy},
	}))

	rules := engine.SuggestMappings([]string{"Customr Name"})
	got := suggestionFor(t, rules, "Customr Name")

	assert.Equal(t, "customer_name", got.TargetColumn)
	assert.Equal(t, 1.0, got.Confidence)
	assert.Equal(t, model.TransformLearned, got.Transformation)
	assert.True(t, got.Learned)
}

func TestConfirmRejectsUnknownTarget(t *testing.T) {
	engine, dict := newEngine(t)

	err := engine.Confirm([]model.MappingRule{
		{SourceColumn: "Qty", TargetColumn: "quantity"},
		{SourceColumn: "Bad", TargetColumn: "not_a_field"},
	})
	require.Error(t, err)

	// Validation happens before any write: the good rule was not saved
	_, ok := dict.LookupMapping("qty")
	assert.False(t, ok)
}

func TestConfirmSkipsUnmapped(t *testing.T) {
	engine, dict := newEngine(t)

	require.NoError(t, engine.Confirm([]model.MappingRule{
		{SourceColumn: "Extra", TargetColumn: model.Unmapped},
	}))
	_, ok := dict.LookupMapping("extra")
	assert.False(t, ok)
}

func TestPromotedColumnSuggestion(t *testing.T) {
	engine, _ := newEngine(t)

	require.NoError(t, engine.PromoteExtraColumn("Loyalty Tier", ""))

	rules := engine.SuggestMappings([]string{"Loyalty Tier"})
	got := suggestionFor(t, rules, "Loyalty Tier")

	assert.Equal(t, "Loyalty Tier", got.TargetColumn)
	assert.Equal(t, 0.98, got.Confidence)
	assert.True(t, got.Learned)

	// Confirming a promoted target is allowed even though it is not canonical
	require.NoError(t, engine.Confirm([]model.MappingRule{got}))
}

func TestLevenshteinScorer(t *testing.T) {
	s := LevenshteinScorer{}
	assert.Equal(t, 1.0, s.Score("phone", "phone"))
	assert.Equal(t, 0.0, s.Score("ab", "xy"))
	assert.InDelta(t, 0.8, s.Score("phone", "phoné"), 0.01)
	assert.Greater(t, s.Score("customr name", "customer name"), 0.9)
}
