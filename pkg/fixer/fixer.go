// pkg/fixer/fixer.go
package fixer

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/AbinashParida-NITW/schema-mapper/pkg/dictionary"
	"github.com/AbinashParida-NITW/schema-mapper/pkg/model"
	"github.com/AbinashParida-NITW/schema-mapper/pkg/schema"
)

// Config provides the fix engine's tuning parameters.
type Config struct {
	// CountryCode is the default international prefix proposed for local
	// phone numbers, including the leading "+".
	CountryCode string
	// LocalPhoneLength is the digit count of a plausible local number.
	LocalPhoneLength int
	// SecondaryDateFormats is the permissive layout list tried for
	// values the cleaning pipeline could not parse.
	SecondaryDateFormats []string
}

// DefaultConfig returns the default fix engine configuration.
func DefaultConfig() Config {
	return Config{
		CountryCode:      "+91",
		LocalPhoneLength: 10,
		SecondaryDateFormats: []string{
			"2/1/2006",
			"2-1-2006",
			"2.1.2006",
			"2006/01/02",
			"Jan 2, 2006",
			"2 January 2006",
			"January 2, 2006",
		},
	}
}

// Engine scans cleaned data for specific, nameable defects and proposes
// targeted repairs. Detection is deterministic: column order, then row
// order.
type Engine struct {
	schema *schema.Schema
	dict   *dictionary.Dictionary
	config Config
	logger *zap.Logger
}

// NewEngine creates an Engine with the default configuration.
func NewEngine(s *schema.Schema, dict *dictionary.Dictionary, logger *zap.Logger) (*Engine, error) {
	return NewEngineWithConfig(s, dict, DefaultConfig(), logger)
}

// NewEngineWithConfig creates an Engine with a custom configuration.
func NewEngineWithConfig(s *schema.Schema, dict *dictionary.Dictionary, config Config, logger *zap.Logger) (*Engine, error) {
	if s == nil {
		return nil, errors.New("canonical schema cannot be nil")
	}
	if dict == nil {
		return nil, errors.New("learning dictionary cannot be nil")
	}
	if logger == nil {
		return nil, errors.New("logger cannot be nil")
	}
	if !strings.HasPrefix(config.CountryCode, "+") || len(config.CountryCode) < 2 {
		return nil, fmt.Errorf("country code must start with '+', got %q", config.CountryCode)
	}
	return &Engine{schema: s, dict: dict, config: config, logger: logger}, nil
}

var (
	allDigitsRe  = regexp.MustCompile(`^[0-9]+$`)
	isoDateRe    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	emailSpaceRe = regexp.MustCompile(`\s*@\s*`)
	atSpacingRe  = regexp.MustCompile(`\s@|@\s`)
	wordDomainRe = regexp.MustCompile(`^\S+\s+\S+\.[A-Za-z]{2,}$`)
	firstSpaceRe = regexp.MustCompile(`\s+`)
	placeholder  = regexp.MustCompile(`^(\d+)([Xx]+)(\d+)$`)
)

// Detect scans every mapped column of ds and returns fix proposals in
// column-then-row order. IDs are stable across passes over the same data.
func (e *Engine) Detect(ds *model.Dataset, mapping map[string]string) []model.FixProposal {
	if ds == nil {
		return nil
	}
	var proposals []model.FixProposal
	for _, col := range ds.Columns {
		target, mapped := mapping[col]
		if !mapped {
			continue
		}
		switch target {
		case "phone":
			proposals = append(proposals, e.detectPhone(ds, col)...)
		case "email":
			proposals = append(proposals, e.detectEmail(ds, col)...)
		case "postal_code":
			proposals = append(proposals, e.detectPostal(ds, col)...)
		case "order_date":
			proposals = append(proposals, e.detectDate(ds, col)...)
		default:
			if e.schema.TypeOf(target) == model.TypeDate {
				proposals = append(proposals, e.detectDate(ds, col)...)
			}
		}
	}
	e.logger.Info("Detected targeted fixes", zap.Int("count", len(proposals)))
	return proposals
}

func (e *Engine) detectPhone(ds *model.Dataset, col string) []model.FixProposal {
	ccDigits := len(e.config.CountryCode) - 1
	wellFormed := regexp.MustCompile(fmt.Sprintf(`^\+\d{%d}-\d{%d}$`, ccDigits, e.config.LocalPhoneLength))

	var out []model.FixProposal
	for i := range ds.Rows {
		v := ds.Get(i, col)
		if model.IsMissing(v) {
			continue
		}
		if allDigitsRe.MatchString(v) && len(v) == e.config.LocalPhoneLength {
			out = append(out, model.FixProposal{
				ID:            model.ProposalID(col, i, model.IssuePhoneCountryCode),
				RowIndex:      i,
				Column:        col,
				Kind:          model.IssuePhoneCountryCode,
				CurrentValue:  v,
				ProposedValue: e.config.CountryCode + "-" + v,
				Scope:         model.ScopeRow,
				Confidence:    0.9,
				Description:   fmt.Sprintf("Add %s- prefix for local numbers", e.config.CountryCode),
			})
			continue
		}
		if strings.HasPrefix(v, "+") && !wellFormed.MatchString(v) {
			digits := strings.Map(keepDigits, v)
			if len(digits) == ccDigits+e.config.LocalPhoneLength {
				out = append(out, model.FixProposal{
					ID:            model.ProposalID(col, i, model.IssuePhoneFormat),
					RowIndex:      i,
					Column:        col,
					Kind:          model.IssuePhoneFormat,
					CurrentValue:  v,
					ProposedValue: "+" + digits[:ccDigits] + "-" + digits[ccDigits:],
					Scope:         model.ScopeRow,
					Confidence:    0.85,
					Description:   "Standardize to +CC-NNNNNNNNNN format",
				})
			}
		}
	}
	return out
}

func keepDigits(r rune) rune {
	if r >= '0' && r <= '9' {
		return r
	}
	return -1
}

func (e *Engine) detectEmail(ds *model.Dataset, col string) []model.FixProposal {
	var out []model.FixProposal
	for i := range ds.Rows {
		v := ds.Get(i, col)
		if model.IsMissing(v) {
			continue
		}
		// Stage 2 should already have collapsed @-adjacent whitespace;
		// re-check in case the value arrived through another path.
		if atSpacingRe.MatchString(v) {
			out = append(out, model.FixProposal{
				ID:            model.ProposalID(col, i, model.IssueEmailSpacing),
				RowIndex:      i,
				Column:        col,
				Kind:          model.IssueEmailSpacing,
				CurrentValue:  v,
				ProposedValue: emailSpaceRe.ReplaceAllString(v, "@"),
				Scope:         model.ScopeRow,
				Confidence:    0.95,
				Description:   "Remove whitespace around @",
			})
			continue
		}
		if !strings.Contains(v, "@") && wordDomainRe.MatchString(v) {
			out = append(out, model.FixProposal{
				ID:            model.ProposalID(col, i, model.IssueEmailSpacing),
				RowIndex:      i,
				Column:        col,
				Kind:          model.IssueEmailSpacing,
				CurrentValue:  v,
				ProposedValue: replaceFirstSpace(v, "@"),
				Scope:         model.ScopeRow,
				Confidence:    0.7,
				Description:   "Value looks like an email with the @ replaced by whitespace",
			})
		}
	}
	return out
}

func replaceFirstSpace(v, with string) string {
	loc := firstSpaceRe.FindStringIndex(v)
	if loc == nil {
		return v
	}
	return v[:loc[0]] + with + v[loc[1]:]
}

// detectPostal finds placeholder runs like 667XX2 and substitutes each
// placeholder position with the majority digit seen at that position in
// the column's well-formed values. Ties resolve to the lowest digit.
func (e *Engine) detectPostal(ds *model.Dataset, col string) []model.FixProposal {
	values := ds.Column(col)
	var out []model.FixProposal
	for i, v := range values {
		if model.IsMissing(v) {
			continue
		}
		m := placeholder.FindStringSubmatch(v)
		if m == nil {
			continue
		}
		prefix, run, suffix := m[1], m[2], m[3]
		sub := make([]byte, len(run))
		for p := 0; p < len(run); p++ {
			sub[p] = majorityDigitAt(values, i, len(prefix)+p, len(v))
		}
		out = append(out, model.FixProposal{
			ID:            model.ProposalID(col, i, model.IssuePostalPlaceholder),
			RowIndex:      i,
			Column:        col,
			Kind:          model.IssuePostalPlaceholder,
			CurrentValue:  v,
			ProposedValue: prefix + string(sub) + suffix,
			Scope:         model.ScopeRow,
			Confidence:    0.7,
			Description:   "Replace placeholder digits with the column majority",
		})
	}
	return out
}

// majorityDigitAt votes among same-length, all-digit peers of the column.
// No peers means no evidence, which resolves to '0' like a tie would.
func majorityDigitAt(values []string, skipRow, pos, length int) byte {
	var counts [10]int
	for j, peer := range values {
		if j == skipRow || len(peer) != length || !allDigitsRe.MatchString(peer) {
			continue
		}
		counts[peer[pos]-'0']++
	}
	best := 0
	for d := 1; d < 10; d++ {
		if counts[d] > counts[best] {
			best = d
		}
	}
	return byte('0' + best)
}

func (e *Engine) detectDate(ds *model.Dataset, col string) []model.FixProposal {
	var out []model.FixProposal
	for i := range ds.Rows {
		v := ds.Get(i, col)
		if model.IsMissing(v) || isoDateRe.MatchString(v) {
			continue
		}
		s := strings.TrimSpace(v)
		for _, layout := range e.config.SecondaryDateFormats {
			t, err := time.Parse(layout, s)
			if err != nil {
				continue
			}
			out = append(out, model.FixProposal{
				ID:            model.ProposalID(col, i, model.IssueDateNotISO),
				RowIndex:      i,
				Column:        col,
				Kind:          model.IssueDateNotISO,
				CurrentValue:  v,
				ProposedValue: t.Format("2006-01-02"),
				Scope:         model.ScopeRow,
				Confidence:    0.9,
				Description:   "Convert to ISO format (YYYY-MM-DD)",
			})
			break
		}
	}
	return out
}
