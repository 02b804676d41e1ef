// pkg/cleaner/transforms.go
package cleaner

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/AbinashParida-NITW/schema-mapper/pkg/model"
)

var (
	isoDateRe    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	emailSpaceRe = regexp.MustCompile(`\s*@\s*`)
	multiSpaceRe = regexp.MustCompile(`\s+`)
	nonDigitRe   = regexp.MustCompile(`[^0-9]`)
)

// blankLike are the case-insensitive spellings collapsed to the missing
// marker, plus a lone dash. Dashes inside formatted values (phones, date
// ranges) are preserved.
var blankLike = map[string]bool{
	"":     true,
	"nan":  true,
	"null": true,
	"n/a":  true,
	"none": true,
	"-":    true,
}

// normalizeCell is stage 1 for one cell. Returns the cell unchanged when
// nothing applies, so callers can detect mutation by comparison.
func normalizeCell(v string) (string, string) {
	trimmed := strings.TrimSpace(v)
	if model.IsMissing(trimmed) {
		if trimmed == v {
			return v, ""
		}
		return model.Missing, "blank_standardization"
	}
	if blankLike[strings.ToLower(trimmed)] {
		return model.Missing, "blank_standardization"
	}
	// A leading "+" marks an already well-formed identifier such as an
	// international phone number; whitespace inside it is meaningful.
	if strings.HasPrefix(trimmed, "+") {
		if trimmed == v {
			return v, ""
		}
		return trimmed, "whitespace_trim"
	}
	cleaned := strings.NewReplacer("\n", " ", "\r", " ", "\t", " ").Replace(trimmed)
	cleaned = strings.TrimSpace(multiSpaceRe.ReplaceAllString(cleaned, " "))
	if cleaned == v {
		return v, ""
	}
	return cleaned, "whitespace_collapse"
}

// applyRule is stage 2 for one cell under a built-in rule. The returned
// reason is non-empty whenever the value changed or an issue was flagged.
func (p *Pipeline) applyRule(rule model.CleaningRule, ftype model.FieldType, v string) (string, string) {
	if model.IsMissing(v) {
		return v, ""
	}
	switch rule.RuleType {
	case model.RuleCurrency:
		return p.parseCurrency(v)
	case model.RulePercentage:
		return parsePercentage(v)
	case model.RuleEmail:
		next := emailSpaceRe.ReplaceAllString(v, "@")
		if next != v {
			return next, "email_spacing"
		}
		return v, ""
	case model.RulePhone:
		return p.cleanPhone(v)
	case model.RuleDate:
		return p.parseDate(v)
	case model.RulePostal:
		// Postal codes stay text: coercing to numeric loses leading
		// zeros and placeholder patterns.
		return v, ""
	case model.RuleCustom:
		return applyCustom(rule, ftype, v)
	default:
		return v, ""
	}
}

// applyFallback handles mapped targets with no built-in rule, dispatching
// on the canonical field's expected type.
func (p *Pipeline) applyFallback(ftype model.FieldType, v string) (string, string) {
	if model.IsMissing(v) {
		return v, ""
	}
	switch ftype {
	case model.TypeNumeric:
		return parseNumeric(v)
	case model.TypeDate:
		return p.parseDate(v)
	default:
		return v, ""
	}
}

func (p *Pipeline) parseCurrency(v string) (string, string) {
	s := v
	for _, sym := range p.config.CurrencySymbols {
		s = strings.ReplaceAll(s, string(sym), "")
	}
	s = strings.NewReplacer(",", "", "\"", "", " ", "").Replace(s)
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.Missing, "parse_failure:currency"
	}
	next := strconv.FormatFloat(math.Round(f*100)/100, 'f', 2, 64)
	if next == v {
		return v, ""
	}
	return next, "currency_normalize"
}

func parsePercentage(v string) (string, string) {
	s := strings.TrimSpace(v)
	if strings.HasSuffix(s, "%") {
		f, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
		if err != nil {
			return model.Missing, "parse_failure:percentage"
		}
		return strconv.FormatFloat(f/100, 'f', -1, 64), "percentage_to_decimal"
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.Missing, "parse_failure:percentage"
	}
	next := strconv.FormatFloat(f, 'f', -1, 64)
	if next == v {
		return v, ""
	}
	return next, "numeric_normalize"
}

func parseNumeric(v string) (string, string) {
	s := strings.NewReplacer(",", "", "\"", "").Replace(strings.TrimSpace(v))
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return model.Missing, "parse_failure:numeric"
	}
	next := strconv.FormatFloat(f, 'f', -1, 64)
	if next == v {
		return v, ""
	}
	return next, "numeric_normalize"
}

func applyCustom(rule model.CleaningRule, ftype model.FieldType, v string) (string, string) {
	re, err := regexp.Compile(rule.Pattern)
	if err != nil {
		return v, ""
	}
	next := re.ReplaceAllString(v, rule.Replacement)
	if ftype == model.TypeIdentifier {
		next = strings.ToUpper(next)
	}
	if next == v {
		return v, ""
	}
	return next, "custom_rule"
}

// cleanPhone strips separators from local numbers but never reformats a
// value it cannot vouch for; unexpected lengths are flagged for the
// targeted fix engine instead.
func (p *Pipeline) cleanPhone(v string) (string, string) {
	if strings.HasPrefix(v, "+") {
		// International values are left intact; the fix engine proposes
		// +CC-NNNN... formatting when the shape is off.
		return v, ""
	}
	digits := nonDigitRe.ReplaceAllString(v, "")
	if len(digits) == p.config.PhoneLocalLength {
		if digits == v {
			return v, ""
		}
		return digits, "phone_strip_separators"
	}
	return v, "phone_unexpected_length"
}

// parseDate emits ISO dates. A value no layout accepts keeps its original
// form and is logged as ISO-invalid, since a targeted fix may still
// resolve it.
func (p *Pipeline) parseDate(v string) (string, string) {
	if isoDateRe.MatchString(v) {
		return v, ""
	}
	s := strings.TrimSpace(v)
	for _, layout := range p.config.DateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format("2006-01-02"), "date_to_iso"
		}
	}
	return v, "iso_invalid"
}
