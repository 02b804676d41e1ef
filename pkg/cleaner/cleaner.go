// pkg/cleaner/cleaner.go
package cleaner

import (
	"errors"
	"regexp"

	"go.uber.org/zap"

	"github.com/AbinashParida-NITW/schema-mapper/pkg/model"
	"github.com/AbinashParida-NITW/schema-mapper/pkg/schema"
)

// Config provides the cleaning pipeline's tuning parameters.
type Config struct {
	// CurrencySymbols are stripped before numeric parsing of currency
	// fields.
	CurrencySymbols string
	// DateFormats is the ordered list of accepted input layouts; the
	// first successful parse wins and is emitted as ISO YYYY-MM-DD.
	DateFormats []string
	// DefaultCountry fills the country field when the value is missing.
	DefaultCountry string
	// DefaultCurrency fills the currency field when the value is missing.
	DefaultCurrency string
	// AddressPair names two address fields cross-filled from one another
	// when exactly one side is present.
	AddressPair [2]string
	// PhoneLocalLength is the expected digit count of a local phone
	// number; other lengths are flagged rather than reformatted.
	PhoneLocalLength int
	// ExtraDefaults are additional per-field fill values, typically the
	// dictionary's learned default_values.
	ExtraDefaults map[string]string
}

// DefaultConfig returns the default pipeline configuration.
func DefaultConfig() Config {
	return Config{
		CurrencySymbols: "₹$€£",
		DateFormats: []string{
			"2006-01-02",
			"02/01/2006",
			"02-Jan-2006",
			"02 Jan 2006",
		},
		DefaultCountry:   "India",
		DefaultCurrency:  "INR",
		AddressPair:      [2]string{"billing_address", "shipping_address"},
		PhoneLocalLength: 10,
	}
}

// Pipeline applies the three ordered cleaning stages to a mapped dataset.
// Every stage is idempotent and total: unparseable values degrade to the
// missing marker plus a logged issue, never an error to the caller.
type Pipeline struct {
	schema  *schema.Schema
	config  Config
	logger  *zap.Logger
	builtin map[string]model.CleaningRule
	learned map[string][]learnedRule
}

type learnedRule struct {
	rule model.CleaningRule
	re   *regexp.Regexp
}

// New creates a Pipeline with the default configuration.
func New(s *schema.Schema, learned []model.CleaningRule, logger *zap.Logger) (*Pipeline, error) {
	return NewWithConfig(s, learned, DefaultConfig(), logger)
}

// NewWithConfig creates a Pipeline with a custom configuration. Learned
// rules with patterns that do not compile are skipped with a warning so
// one bad promotion never blocks cleaning.
func NewWithConfig(s *schema.Schema, learned []model.CleaningRule, config Config, logger *zap.Logger) (*Pipeline, error) {
	if s == nil {
		return nil, errors.New("canonical schema cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	p := &Pipeline{
		schema:  s,
		config:  config,
		logger:  logger,
		builtin: builtinRules(),
		learned: make(map[string][]learnedRule),
	}
	for _, r := range learned {
		re, err := regexp.Compile(r.Pattern)
		if err != nil {
			logger.Warn("Skipping learned cleaning rule with invalid pattern",
				zap.String("target", r.TargetColumn),
				zap.String("pattern", r.Pattern),
				zap.Error(err))
			continue
		}
		p.learned[r.TargetColumn] = append(p.learned[r.TargetColumn], learnedRule{rule: r, re: re})
	}
	return p, nil
}

// builtinRules is the deterministic per-field rule set the pipeline ships
// with; promoted rules from the dictionary run after these.
func builtinRules() map[string]model.CleaningRule {
	rules := []model.CleaningRule{
		{TargetColumn: "unit_price", RuleType: model.RuleCurrency, Confidence: 0.9},
		{TargetColumn: "total_amount", RuleType: model.RuleCurrency, Confidence: 0.9},
		{TargetColumn: "shipping_fee", RuleType: model.RuleCurrency, Confidence: 0.9},
		{TargetColumn: "discount_pct", RuleType: model.RulePercentage, Confidence: 0.9},
		{TargetColumn: "tax_pct", RuleType: model.RulePercentage, Confidence: 0.9},
		{TargetColumn: "email", RuleType: model.RuleEmail, Pattern: `\s*@\s*`, Replacement: "@", Confidence: 0.95},
		{TargetColumn: "phone", RuleType: model.RulePhone, Confidence: 0.8},
		{TargetColumn: "order_date", RuleType: model.RuleDate, Confidence: 0.9},
		{TargetColumn: "postal_code", RuleType: model.RulePostal, Confidence: 0.9},
		{TargetColumn: "tax_id", RuleType: model.RuleCustom, Pattern: `[^A-Za-z0-9]`, Replacement: "", Confidence: 0.9},
	}
	out := make(map[string]model.CleaningRule, len(rules))
	for _, r := range rules {
		out[r.TargetColumn] = r
	}
	return out
}

// Clean runs the three stages over a copy of ds and returns the cleaned
// dataset plus the ordered change log. The input dataset is never mutated.
// Cleaned columns keep their source names; renaming to canonical names
// happens at export time.
func (p *Pipeline) Clean(ds *model.Dataset, mapping map[string]string) (*model.Dataset, []model.ChangeEntry, error) {
	if ds == nil {
		return nil, nil, errors.New("dataset cannot be nil")
	}
	out := ds.Clone()
	var log []model.ChangeEntry

	log = p.normalizeStage(out, log)
	log = p.transformStage(out, mapping, log)
	log = p.defaultsStage(out, mapping, log)

	p.logger.Info("Cleaning finished",
		zap.Int("rows", len(out.Rows)),
		zap.Int("changes", len(log)))
	return out, log, nil
}

// normalizeStage collapses blank-like cells to the missing marker and
// tidies whitespace in every column. Values carrying an international
// prefix are already well-formed identifiers and are left alone.
func (p *Pipeline) normalizeStage(ds *model.Dataset, log []model.ChangeEntry) []model.ChangeEntry {
	for i := range ds.Rows {
		for _, col := range ds.Columns {
			old := ds.Get(i, col)
			next, reason := normalizeCell(old)
			if next != old {
				ds.Set(i, col, next)
				log = append(log, model.ChangeEntry{
					RowIndex: i, Column: col, OldValue: old, NewValue: next,
					Stage: model.StageNormalize, Reason: reason,
				})
			}
		}
	}
	return log
}

// transformStage dispatches each mapped column through its built-in rule
// (or the expected-type fallback), then through learned rules for the
// same target.
func (p *Pipeline) transformStage(ds *model.Dataset, mapping map[string]string, log []model.ChangeEntry) []model.ChangeEntry {
	for _, col := range ds.Columns {
		target, mapped := mapping[col]
		if !mapped || target == model.Unmapped {
			continue
		}
		rule, hasRule := p.builtin[target]
		ftype := p.schema.TypeOf(target)
		for i := range ds.Rows {
			old := ds.Get(i, col)
			next, reason := old, ""
			if hasRule {
				next, reason = p.applyRule(rule, ftype, old)
			} else {
				next, reason = p.applyFallback(ftype, old)
			}
			for _, lr := range p.learned[target] {
				replaced := next
				if lr.rule.Pattern == "" {
					// Promoted rules without a pattern re-dispatch
					// through the type transform for their rule type.
					replaced, _ = p.applyRule(lr.rule, ftype, next)
				} else if !model.IsMissing(next) {
					replaced = lr.re.ReplaceAllString(next, lr.rule.Replacement)
				}
				if replaced != next {
					next, reason = replaced, "learned_rule:"+string(lr.rule.RuleType)
				}
			}
			if next != old || reason != "" {
				if next != old {
					ds.Set(i, col, next)
				}
				log = append(log, model.ChangeEntry{
					RowIndex: i, Column: col, OldValue: old, NewValue: next,
					Stage: model.StageTransform, Reason: reason,
				})
			}
		}
	}
	return log
}

// defaultsStage fills configured defaults into missing cells and
// cross-fills the address pair when exactly one side is present.
func (p *Pipeline) defaultsStage(ds *model.Dataset, mapping map[string]string, log []model.ChangeEntry) []model.ChangeEntry {
	fills := map[string]string{
		"country":  p.config.DefaultCountry,
		"currency": p.config.DefaultCurrency,
	}
	for field, value := range p.config.ExtraDefaults {
		fills[field] = value
	}

	sourceFor := make(map[string]string, len(mapping))
	for src, tgt := range mapping {
		sourceFor[tgt] = src
	}

	for _, col := range ds.Columns {
		target, mapped := mapping[col]
		if !mapped {
			continue
		}
		fill, hasFill := fills[target]
		if !hasFill || fill == "" {
			continue
		}
		for i := range ds.Rows {
			old := ds.Get(i, col)
			if !model.IsMissing(old) {
				continue
			}
			ds.Set(i, col, fill)
			log = append(log, model.ChangeEntry{
				RowIndex: i, Column: col, OldValue: old, NewValue: fill,
				Stage: model.StageDefaults, Reason: "default_fill",
			})
		}
	}

	first, second := p.config.AddressPair[0], p.config.AddressPair[1]
	srcA, okA := sourceFor[first]
	srcB, okB := sourceFor[second]
	if okA && okB {
		for i := range ds.Rows {
			a, b := ds.Get(i, srcA), ds.Get(i, srcB)
			switch {
			case model.IsMissing(a) && !model.IsMissing(b):
				ds.Set(i, srcA, b)
				log = append(log, model.ChangeEntry{
					RowIndex: i, Column: srcA, OldValue: a, NewValue: b,
					Stage: model.StageDefaults, Reason: "address_cross_fill",
				})
			case model.IsMissing(b) && !model.IsMissing(a):
				ds.Set(i, srcB, a)
				log = append(log, model.ChangeEntry{
					RowIndex: i, Column: srcB, OldValue: b, NewValue: a,
					Stage: model.StageDefaults, Reason: "address_cross_fill",
				})
			}
		}
	}
	return log
}
