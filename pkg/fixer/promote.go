// pkg/fixer/promote.go
package fixer

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"

	"github.com/AbinashParida-NITW/schema-mapper/pkg/model"
)

// Promote materializes a CleaningRule from the pattern behind a fix and
// appends it to the learning dictionary, so future pipeline runs apply it
// automatically. A target outside the canonical schema is rejected with a
// descriptive reason and the dictionary is left unchanged.
func (e *Engine) Promote(proposal model.FixProposal, target string) (model.CleaningRule, error) {
	if !e.schema.Has(target) {
		return model.CleaningRule{}, fmt.Errorf(
			"cannot promote fix %s: %q is not a canonical field", proposal.ID, target)
	}
	rule, err := e.ruleFromProposal(proposal, target)
	if err != nil {
		return model.CleaningRule{}, err
	}
	if err := e.dict.AddCleaningRule(rule); err != nil {
		return model.CleaningRule{}, fmt.Errorf("failed to persist promoted rule: %w", err)
	}
	e.logger.Info("Promoted fix to cleaning rule",
		zap.String("fix", proposal.ID),
		zap.String("target", target),
		zap.String("rule_type", string(rule.RuleType)))
	return rule, nil
}

// ruleFromProposal derives an idempotent rule: each pattern fails to match
// its own replacement, so reapplying on clean data is a no-op.
func (e *Engine) ruleFromProposal(p model.FixProposal, target string) (model.CleaningRule, error) {
	ccDigits := len(e.config.CountryCode) - 1
	switch p.Kind {
	case model.IssueEmailSpacing:
		return model.CleaningRule{
			TargetColumn: target,
			RuleType:     model.RuleEmail,
			Pattern:      `\s*@\s*`,
			Replacement:  "@",
			Confidence:   p.Confidence,
		}, nil
	case model.IssuePhoneCountryCode:
		return model.CleaningRule{
			TargetColumn: target,
			RuleType:     model.RulePhone,
			Pattern:      fmt.Sprintf(`^(\d{%d})$`, e.config.LocalPhoneLength),
			Replacement:  e.config.CountryCode + "-$1",
			Confidence:   p.Confidence,
		}, nil
	case model.IssuePhoneFormat:
		return model.CleaningRule{
			TargetColumn: target,
			RuleType:     model.RulePhone,
			Pattern:      fmt.Sprintf(`^\+(\d{%d})[ .]?(\d{%d})$`, ccDigits, e.config.LocalPhoneLength),
			Replacement:  "+$1-$2",
			Confidence:   p.Confidence,
		}, nil
	case model.IssuePostalPlaceholder:
		m := placeholder.FindStringSubmatch(p.CurrentValue)
		if m == nil {
			return model.CleaningRule{}, fmt.Errorf(
				"cannot promote fix %s: value %q no longer matches a placeholder pattern", p.ID, p.CurrentValue)
		}
		run := m[2]
		sub := p.ProposedValue[len(m[1]) : len(m[1])+len(run)]
		return model.CleaningRule{
			TargetColumn: target,
			RuleType:     model.RulePostal,
			Pattern:      regexp.QuoteMeta(run),
			Replacement:  sub,
			Confidence:   p.Confidence,
		}, nil
	case model.IssueDateNotISO:
		// An empty pattern re-dispatches through the type transform, so
		// learned date rules reuse the pipeline's parser.
		return model.CleaningRule{
			TargetColumn: target,
			RuleType:     model.RuleDate,
			Confidence:   p.Confidence,
		}, nil
	default:
		return model.CleaningRule{}, fmt.Errorf("cannot promote fix %s: unknown issue kind %q", p.ID, p.Kind)
	}
}
