// pkg/dictionary/dictionary.go
package dictionary

import (
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/AbinashParida-NITW/schema-mapper/pkg/model"
)

// Dictionary is the process-wide learning state shared across sessions.
// All mutations take a read-modify-write lock and persist immediately;
// concurrent writers resolve by last-write-wins on the normalized key.
type Dictionary struct {
	mu     sync.Mutex
	store  Store
	doc    *Document
	logger *zap.Logger
}

// New loads the persisted document through store. A store that cannot be
// read is a structural failure: the caller gets an error, not a silently
// empty dictionary.
func New(store Store, logger *zap.Logger) (*Dictionary, error) {
	if store == nil {
		return nil, errors.New("dictionary store cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	doc, err := store.Load()
	if err != nil {
		return nil, err
	}
	logger.Info("Loaded learning dictionary",
		zap.Int("mappings", len(doc.Mappings)),
		zap.Int("cleaning_rules", len(doc.CleaningRules)),
		zap.Int("promotions", len(doc.ColumnPromotions)))
	return &Dictionary{store: store, doc: doc, logger: logger}, nil
}

func (d *Dictionary) save() error {
	d.doc.UpdatedAt = time.Now().UTC().Format(time.RFC3339)
	return d.store.Save(d.doc)
}

// LearnMapping records a confirmed source→target mapping keyed by the
// normalized source name, overwriting any prior entry for that exact key.
func (d *Dictionary) LearnMapping(rule model.MappingRule) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	key := model.NormalizeHeader(rule.SourceColumn)
	rule.Learned = true
	rule.Transformation = model.TransformLearned
	d.doc.Mappings[key] = rule
	return d.save()
}

// LookupMapping returns the learned rule for a normalized source name.
func (d *Dictionary) LookupMapping(normalized string) (model.MappingRule, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	rule, ok := d.doc.Mappings[normalized]
	return rule, ok
}

// PromoteColumn remembers an extra source column the user chose to keep,
// so future runs retain it under keepAs.
func (d *Dictionary) PromoteColumn(source, keepAs string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if keepAs == "" {
		keepAs = source
	}
	d.doc.ColumnPromotions[model.NormalizeHeader(source)] = keepAs
	return d.save()
}

// Promotion resolves a normalized source name against remembered extras.
func (d *Dictionary) Promotion(normalized string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	target, ok := d.doc.ColumnPromotions[normalized]
	return target, ok
}

// AddCleaningRule appends a promoted cleaning rule. Duplicate
// (target, rule_type, pattern) entries are collapsed to the newest.
func (d *Dictionary) AddCleaningRule(rule model.CleaningRule) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	rule.Learned = true
	kept := d.doc.CleaningRules[:0]
	for _, r := range d.doc.CleaningRules {
		if r.TargetColumn == rule.TargetColumn && r.RuleType == rule.RuleType && r.Pattern == rule.Pattern {
			continue
		}
		kept = append(kept, r)
	}
	d.doc.CleaningRules = append(kept, rule)
	return d.save()
}

// CleaningRules returns the learned cleaning rules in promotion order.
func (d *Dictionary) CleaningRules() []model.CleaningRule {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]model.CleaningRule(nil), d.doc.CleaningRules...)
}

// SetDefaultValue stores a fill rule for a canonical column.
func (d *Dictionary) SetDefaultValue(column, value, ruleType string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.doc.DefaultValues[column] = DefaultValue{Value: value, RuleType: ruleType}
	return d.save()
}

// DefaultValues returns a copy of the stored fill rules.
func (d *Dictionary) DefaultValues() map[string]DefaultValue {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]DefaultValue, len(d.doc.DefaultValues))
	for k, v := range d.doc.DefaultValues {
		out[k] = v
	}
	return out
}

// Snapshot returns a deep copy of the current document, for inspection
// and round-trip testing.
func (d *Dictionary) Snapshot() *Document {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.doc.Clone()
}

// Close releases the underlying store.
func (d *Dictionary) Close() error {
	return d.store.Close()
}
