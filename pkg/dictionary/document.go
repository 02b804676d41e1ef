// pkg/dictionary/document.go
package dictionary

import (
	"encoding/json"
	"fmt"

	"github.com/AbinashParida-NITW/schema-mapper/pkg/model"
)

// CurrentVersion is written into every saved document.
const CurrentVersion = 1

// DefaultValue is a fill rule for a canonical column with no source data.
type DefaultValue struct {
	Value    string `json:"value"`
	RuleType string `json:"rule_type"`
}

// Document is the persisted learning state. Mappings are keyed by
// normalized source name; last-confirmed-wins. Unknown top-level keys from
// older or newer writers survive a load/save cycle through Extra.
type Document struct {
	Version          int
	Mappings         map[string]model.MappingRule
	CleaningRules    []model.CleaningRule
	ColumnPromotions map[string]string
	DefaultValues    map[string]DefaultValue
	UpdatedAt        string
	Extra            map[string]json.RawMessage
}

// knownKeys are the top-level document keys this version understands.
var knownKeys = map[string]bool{
	"version":           true,
	"mappings":          true,
	"cleaning_rules":    true,
	"column_promotions": true,
	"default_values":    true,
	"updated_at":        true,
}

// NewDocument returns an empty document at the current version.
func NewDocument() *Document {
	return &Document{
		Version:          CurrentVersion,
		Mappings:         make(map[string]model.MappingRule),
		ColumnPromotions: make(map[string]string),
		DefaultValues:    make(map[string]DefaultValue),
		Extra:            make(map[string]json.RawMessage),
	}
}

// MarshalJSON renders the document with unknown keys merged back in, so a
// load→save→load cycle is a no-op even across versions.
func (d *Document) MarshalJSON() ([]byte, error) {
	raw := make(map[string]json.RawMessage, len(knownKeys)+len(d.Extra))
	for k, v := range d.Extra {
		if !knownKeys[k] {
			raw[k] = v
		}
	}
	put := func(key string, v interface{}) error {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("failed to encode %s: %w", key, err)
		}
		raw[key] = b
		return nil
	}
	if err := put("version", d.Version); err != nil {
		return nil, err
	}
	if err := put("mappings", d.Mappings); err != nil {
		return nil, err
	}
	if err := put("cleaning_rules", d.CleaningRules); err != nil {
		return nil, err
	}
	if err := put("column_promotions", d.ColumnPromotions); err != nil {
		return nil, err
	}
	if err := put("default_values", d.DefaultValues); err != nil {
		return nil, err
	}
	if err := put("updated_at", d.UpdatedAt); err != nil {
		return nil, err
	}
	return json.Marshal(raw)
}

// UnmarshalJSON decodes known keys into typed fields and stashes the rest.
func (d *Document) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("corrupt learning dictionary: %w", err)
	}
	*d = *NewDocument()
	take := func(key string, dst interface{}) error {
		b, ok := raw[key]
		if !ok || string(b) == "null" {
			return nil
		}
		if err := json.Unmarshal(b, dst); err != nil {
			return fmt.Errorf("corrupt learning dictionary: bad %s: %w", key, err)
		}
		return nil
	}
	if err := take("version", &d.Version); err != nil {
		return err
	}
	if err := take("mappings", &d.Mappings); err != nil {
		return err
	}
	if err := take("cleaning_rules", &d.CleaningRules); err != nil {
		return err
	}
	if err := take("column_promotions", &d.ColumnPromotions); err != nil {
		return err
	}
	if err := take("default_values", &d.DefaultValues); err != nil {
		return err
	}
	if err := take("updated_at", &d.UpdatedAt); err != nil {
		return err
	}
	for k, v := range raw {
		if !knownKeys[k] {
			d.Extra[k] = v
		}
	}
	if d.Mappings == nil {
		d.Mappings = make(map[string]model.MappingRule)
	}
	if d.ColumnPromotions == nil {
		d.ColumnPromotions = make(map[string]string)
	}
	if d.DefaultValues == nil {
		d.DefaultValues = make(map[string]DefaultValue)
	}
	return nil
}

// Clone deep-copies the document.
func (d *Document) Clone() *Document {
	out := NewDocument()
	out.Version = d.Version
	out.UpdatedAt = d.UpdatedAt
	for k, v := range d.Mappings {
		out.Mappings[k] = v
	}
	out.CleaningRules = append([]model.CleaningRule(nil), d.CleaningRules...)
	for k, v := range d.ColumnPromotions {
		out.ColumnPromotions[k] = v
	}
	for k, v := range d.DefaultValues {
		out.DefaultValues[k] = v
	}
	for k, v := range d.Extra {
		out.Extra[k] = append(json.RawMessage(nil), v...)
	}
	return out
}
