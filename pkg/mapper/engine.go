// pkg/mapper/engine.go
package mapper

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/AbinashParida-NITW/schema-mapper/pkg/dictionary"
	"github.com/AbinashParida-NITW/schema-mapper/pkg/model"
	"github.com/AbinashParida-NITW/schema-mapper/pkg/schema"
)

// Config provides the mapping engine's tuning parameters. The thresholds
// have no derived correct value; they are exposed rather than hardcoded.
type Config struct {
	// FuzzyThreshold is the minimum similarity for a fuzzy suggestion.
	// Lower scores surface as unmapped, not as errors.
	FuzzyThreshold float64
	// SynonymConfidence is assigned to exact synonym matches.
	SynonymConfidence float64
	// PromotedConfidence is assigned to remembered extra columns.
	PromotedConfidence float64
}

// DefaultConfig returns the default tuning parameters.
func DefaultConfig() Config {
	return Config{
		FuzzyThreshold:     0.6,
		SynonymConfidence:  0.95,
		PromotedConfidence: 0.98,
	}
}

// Engine produces ranked mapping suggestions for input column names and
// persists the ones the caller confirms.
type Engine struct {
	schema *schema.Schema
	dict   *dictionary.Dictionary
	scorer Scorer
	config Config
	logger *zap.Logger
}

// NewEngine creates an Engine with the default scorer and configuration.
func NewEngine(s *schema.Schema, dict *dictionary.Dictionary, logger *zap.Logger) (*Engine, error) {
	return NewEngineWithConfig(s, dict, LevenshteinScorer{}, DefaultConfig(), logger)
}

// NewEngineWithConfig creates an Engine with a custom scorer and config.
func NewEngineWithConfig(s *schema.Schema, dict *dictionary.Dictionary, scorer Scorer, config Config, logger *zap.Logger) (*Engine, error) {
	if s == nil {
		return nil, errors.New("canonical schema cannot be nil")
	}
	if dict == nil {
		return nil, errors.New("learning dictionary cannot be nil")
	}
	if scorer == nil {
		return nil, errors.New("scorer cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if config.FuzzyThreshold <= 0 || config.FuzzyThreshold > 1 {
		return nil, fmt.Errorf("fuzzy threshold must be in (0, 1], got %v", config.FuzzyThreshold)
	}
	return &Engine{schema: s, dict: dict, scorer: scorer, config: config, logger: logger}, nil
}

// SuggestMappings returns one rule per input column, sorted by descending
// confidence with ties broken by input column order. The engine never
// forces two inputs onto the same target; collisions are left to manual
// review against this ranking.
func (e *Engine) SuggestMappings(inputColumns []string) []model.MappingRule {
	suggestions := make([]model.MappingRule, 0, len(inputColumns))
	for _, col := range inputColumns {
		suggestions = append(suggestions, e.suggestOne(col))
	}

	order := make(map[string]int, len(inputColumns))
	for i, col := range inputColumns {
		order[col] = i
	}
	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Confidence != suggestions[j].Confidence {
			return suggestions[i].Confidence > suggestions[j].Confidence
		}
		return order[suggestions[i].SourceColumn] < order[suggestions[j].SourceColumn]
	})

	e.logger.Info("Suggested mappings",
		zap.Int("columns", len(inputColumns)),
		zap.Int("suggestions", len(suggestions)))
	return suggestions
}

func (e *Engine) suggestOne(col string) model.MappingRule {
	normalized := model.NormalizeHeader(col)

	// Tier 1: previously confirmed mappings.
	if learned, ok := e.dict.LookupMapping(normalized); ok {
		return model.MappingRule{
			SourceColumn:   col,
			TargetColumn:   learned.TargetColumn,
			Confidence:     1.0,
			Transformation: model.TransformLearned,
			Learned:        true,
		}
	}

	// Tier 2: extra columns the user chose to keep in earlier runs.
	if keepAs, ok := e.dict.Promotion(normalized); ok {
		return model.MappingRule{
			SourceColumn:   col,
			TargetColumn:   keepAs,
			Confidence:     e.config.PromotedConfidence,
			Transformation: model.TransformLearned,
			Learned:        true,
		}
	}

	// Tier 3: exact canonical name or synonym.
	for _, f := range e.schema.Fields() {
		if model.NormalizeHeader(f.Name) == normalized {
			return model.MappingRule{
				SourceColumn:   col,
				TargetColumn:   f.Name,
				Confidence:     1.0,
				Transformation: model.TransformDirect,
			}
		}
	}
	if target, ok := e.schema.SynonymTarget(normalized); ok {
		return model.MappingRule{
			SourceColumn:   col,
			TargetColumn:   target,
			Confidence:     e.config.SynonymConfidence,
			Transformation: model.TransformDirect,
		}
	}

	// Tier 4: best similarity across every field name and synonym.
	best, bestScore := "", 0.0
	for _, f := range e.schema.Fields() {
		candidates := append([]string{f.Name}, f.Synonyms...)
		for _, cand := range candidates {
			if s := e.scorer.Score(normalized, model.NormalizeHeader(cand)); s > bestScore {
				bestScore, best = s, f.Name
			}
		}
	}
	if best != "" && bestScore >= e.config.FuzzyThreshold {
		return model.MappingRule{
			SourceColumn:   col,
			TargetColumn:   best,
			Confidence:     bestScore,
			Transformation: model.TransformFuzzy,
		}
	}
	return model.MappingRule{
		SourceColumn:   col,
		TargetColumn:   model.Unmapped,
		Confidence:     bestScore,
		Transformation: model.TransformFuzzy,
	}
}

// Confirm persists user-accepted mappings, last-confirmed-wins per
// normalized source name. Every rule is validated before any is written:
// a target that is neither canonical, unmapped, nor a remembered extra
// leaves the dictionary unchanged.
func (e *Engine) Confirm(rules []model.MappingRule) error {
	for _, r := range rules {
		if r.TargetColumn == model.Unmapped || r.TargetColumn == "" {
			continue
		}
		if !e.schema.Has(r.TargetColumn) && !e.isPromoted(r) {
			return fmt.Errorf("cannot confirm mapping %q -> %q: not a canonical field", r.SourceColumn, r.TargetColumn)
		}
	}
	for _, r := range rules {
		if r.TargetColumn == model.Unmapped || r.TargetColumn == "" {
			continue
		}
		if err := e.dict.LearnMapping(r); err != nil {
			return fmt.Errorf("failed to persist mapping for %q: %w", r.SourceColumn, err)
		}
	}
	e.logger.Info("Confirmed mappings", zap.Int("count", len(rules)))
	return nil
}

func (e *Engine) isPromoted(r model.MappingRule) bool {
	keepAs, ok := e.dict.Promotion(model.NormalizeHeader(r.SourceColumn))
	return ok && keepAs == r.TargetColumn
}

// PromoteExtraColumn remembers an unmapped source column so future runs
// keep it under keepAs (the source name itself when keepAs is empty).
func (e *Engine) PromoteExtraColumn(source, keepAs string) error {
	if source == "" {
		return errors.New("source column cannot be empty")
	}
	return e.dict.PromoteColumn(source, keepAs)
}
