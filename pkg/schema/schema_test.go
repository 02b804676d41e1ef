// pkg/schema/schema_test.go
package schema

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AbinashParida-NITW/schema-mapper/pkg/model"
)

func TestDefaultSchema(t *testing.T) {
	s := Default()

	assert.Len(t, s.Fields(), 24)
	assert.True(t, s.Has("order_id"))
	assert.True(t, s.Has("tax_id"))
	assert.False(t, s.Has("no_such_field"))

	assert.Equal(t, model.TypeDate, s.TypeOf("order_date"))
	assert.Equal(t, model.TypeNumeric, s.TypeOf("unit_price"))
	// Unknown (promoted extra) columns default to text
	assert.Equal(t, model.TypeText, s.TypeOf("loyalty_tier"))
}

func TestSynonymTarget(t *testing.T) {
	s := Default()

	target, ok := s.SynonymTarget("qty")
	require.True(t, ok)
	assert.Equal(t, "quantity", target)

	target, ok = s.SynonymTarget(model.NormalizeHeader("Phone #"))
	require.True(t, ok)
	assert.Equal(t, "phone", target)

	_, ok = s.SynonymTarget("nothing matches this")
	assert.False(t, ok)
}

func TestNewRejectsDuplicates(t *testing.T) {
	_, err := New([]Field{
		{Name: "a", Type: model.TypeText},
		{Name: "a", Type: model.TypeText},
	})
	require.Error(t, err)

	_, err = New(nil)
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.json")
	content := `[
		{"name": "widget_id", "type": "identifier", "synonyms": ["widget", "wid"]},
		{"name": "widget_name"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	s, err := Load(path)
	require.NoError(t, err)

	assert.True(t, s.Has("widget_id"))
	assert.Equal(t, model.TypeIdentifier, s.TypeOf("widget_id"))
	// Fields without a type default to text
	assert.Equal(t, model.TypeText, s.TypeOf("widget_name"))

	target, ok := s.SynonymTarget("wid")
	require.True(t, ok)
	assert.Equal(t, "widget_id", target)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.json"))
	require.Error(t, err)
}
