// pkg/fixer/fixer_test.go
package fixer

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

func newFixEngine(t *testing.T) (*Engine, *dictionary.Dictionary) {
	t.Helper()
	store, err := dictionary.NewFileStore(filepath.Join(t.TempDir(), "rules.json"))
	require.NoError(t, err)
	dict, err := dictionary.New(store, zap.NewNop())
	require.NoError(t, err)
	engine, err := NewEngine(schema.Default(), dict, zap.NewNop())
	require.NoError(t, err)
	return engine, dict
}

func TestDetectPhoneCountryCode(t *testing.T) {
	engine, _ := newFixEngine(t)

	ds := model.NewDataset([]string{"Phone"})
	ds.Append(model.Row{"Phone": "9876543210"})
	ds.Append(model.Row{"Phone": "+91-9876543210"})
	ds.Append(model.Row{"Phone": model.Missing})

	got := engine.Detect(ds, map[string]string{"Phone": "phone"})
	require.Len(t, got, 1)

	p := got[0]
	assert.Equal(t, model.IssuePhoneCountryCode, p.Kind)
	assert.Equal(t, 0, p.RowIndex)
	assert.Equal(t, "9876543210", p.CurrentValue)
	assert.Equal(t, "+91-9876543210", p.ProposedValue)
	assert.Equal(t, 0.9, p.Confidence)
	assert.Equal(t, model.ProposalID("Phone", 0, model.IssuePhoneCountryCode), p.ID)
}

func TestDetectPhoneFormat(t *testing.T) {
	engine, _ := newFixEngine(t)

	ds := model.NewDataset([]string{"Phone"})
	ds.Append(model.Row{"Phone": "+91 9876543210"})
	ds.Append(model.Row{"Phone": "+919876543210"})
	ds.Append(model.Row{"Phone": "+1-2025550100"}) // wrong digit count for +91

	got := engine.Detect(ds, map[string]string{"Phone": "phone"})
	require.Len(t, got, 2)

	for _, p := range got[:2] {
		assert.Equal(t, model.IssuePhoneFormat, p.Kind)
		assert.Equal(t, "+91-9876543210", p.ProposedValue)
	}
}

func TestDetectEmail(t *testing.T) {
	engine, _ := newFixEngine(t)

	ds := model.NewDataset([]string{"Email"})
	ds.Append(model.Row{"Email": "john @example.com"})
	ds.Append(model.Row{"Email": "jane example.com"})
	ds.Append(model.Row{"Email": "fine@example.com"})

	got := engine.Detect(ds, map[string]string{"Email": "email"})
	require.Len(t, got, 2)

	assert.Equal(t, "john@example.com", got[0].ProposedValue)
	assert.Equal(t, 0.95, got[0].Confidence)

	assert.Equal(t, "jane@example.com", got[1].ProposedValue)
	assert.Equal(t, 0.7, got[1].Confidence)
}

func TestDetectPostalPlaceholder(t *testing.T) {
	engine, _ := newFixEngine(t)

	ds := model.NewDataset([]string{"Pin"})
	ds.Append(model.Row{"Pin": "667002"})
	ds.Append(model.Row{"Pin": "667102"})
	ds.Append(model.Row{"Pin": "667002"})
	ds.Append(model.Row{"Pin": "667XX2"})

	got := engine.Detect(ds, map[string]string{"Pin": "postal_code"})
	require.Len(t, got, 1)

	p := got[0]
	assert.Equal(t, model.IssuePostalPlaceholder, p.Kind)
	assert.Equal(t, 3, p.RowIndex)
	// Position 3 majority is '0' (two votes to one), position 4 is '0'
	assert.Equal(t, "667002", p.ProposedValue)
}

func TestDetectPostalTieResolvesLow(t *testing.T) {
	engine, _ := newFixEngine(t)

	ds := model.NewDataset([]string{"Pin"})
	ds.Append(model.Row{"Pin": "667002"})
	ds.Append(model.Row{"Pin": "667102"})
	ds.Append(model.Row{"Pin": "667XX2"})

	got := engine.Detect(ds, map[string]string{"Pin": "postal_code"})
	require.Len(t, got, 1)
	// 0 and 1 tie at the placeholder position; the lower digit wins
	assert.Equal(t, "667002", got[0].ProposedValue)
}

func TestDetectDateSecondaryFormats(t *testing.T) {
	engine, _ := newFixEngine(t)

	ds := model.NewDataset([]string{"Ordered"})
	ds.Append(model.Row{"Ordered": "2023/04/03"})
	ds.Append(model.Row{"Ordered": "Apr 3, 2023"})
	ds.Append(model.Row{"Ordered": "2023-04-03"})
	ds.Append(model.Row{"Ordered": "sometime"})

	got := engine.Detect(ds, map[string]string{"Ordered": "order_date"})
	require.Len(t, got, 2)

	assert.Equal(t, "2023-04-03", got[0].ProposedValue)
	assert.Equal(t, model.IssueDateNotISO, got[0].Kind)
	assert.Equal(t, "2023-04-03", got[1].ProposedValue)
}

func TestDetectOrderIsColumnThenRow(t *testing.T) {
	engine, _ := newFixEngine(t)

	ds := model.NewDataset([]string{"Phone", "Email"})
	ds.Append(model.Row{"Phone": "9876543210", "Email": "a @b.com"})
	ds.Append(model.Row{"Phone": "9876543211", "Email": "c@d.com"})

	got := engine.Detect(ds, map[string]string{"Phone": "phone", "Email": "email"})
	require.Len(t, got, 3)
	assert.Equal(t, "Phone", got[0].Column)
	assert.Equal(t, 0, got[0].RowIndex)
	assert.Equal(t, "Phone", got[1].Column)
	assert.Equal(t, 1, got[1].RowIndex)
	assert.Equal(t, "Email", got[2].Column)
}

func TestDetectIDsStableAcrossPasses(t *testing.T) {
	engine, _ := newFixEngine(t)

	ds := model.NewDataset([]string{"Phone"})
	ds.Append(model.Row{"Phone": "9876543210"})

	first := engine.Detect(ds, map[string]string{"Phone": "phone"})
	second := engine.Detect(ds, map[string]string{"Phone": "phone"})
	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.Equal(t, first[0].ID, second[0].ID)
}

func TestDetectUnmappedColumnsSkipped(t *testing.T) {
	engine, _ := newFixEngine(t)

	ds := model.NewDataset([]string{"Phone"})
	ds.Append(model.Row{"Phone": "9876543210"})

	got := engine.Detect(ds, map[string]string{})
	assert.Empty(t, got)
}

func TestPromotePhoneRule(t *testing.T) {
	engine, dict := newFixEngine(t)

	proposal := model.FixProposal{
		ID:            model.ProposalID("Phone", 0, model.IssuePhoneCountryCode),
		RowIndex:      0,
		Column:        "Phone",
		Kind:          model.IssuePhoneCountryCode,
		CurrentValue:  "9876543210",
		ProposedValue: "+91-9876543210",
		Confidence:    0.9,
	}

	rule, err := engine.Promote(proposal, "phone")
	require.NoError(t, err)
	assert.Equal(t, model.RulePhone, rule.RuleType)
	assert.Equal(t, "phone", rule.TargetColumn)

	rules := dict.CleaningRules()
	require.Len(t, rules, 1)
	assert.True(t, rules[0].Learned)
}

func TestPromoteRejectsNonCanonicalTarget(t *testing.T) {
	engine, dict := newFixEngine(t)

	proposal := model.FixProposal{
		Column: "Phone",
		Kind:   model.IssuePhoneCountryCode,
	}
	_, err := engine.Promote(proposal, "not_a_field")
	require.Error(t, err)
	assert.Empty(t, dict.CleaningRules())
}
