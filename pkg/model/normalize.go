// pkg/model/normalize.go
package model

import (
	"strings"
	"unicode"
)

// NormalizeHeader reduces a source column name to the canonical lookup
// form used everywhere a header is compared or persisted: lowercase,
// separators folded to single spaces, punctuation dropped.
//
//	"Cust  Name" -> "cust name"
//	"customer_name" -> "customer name"
//	"E-Mail" -> "e mail"
func NormalizeHeader(name string) string {
	var b strings.Builder
	b.Grow(len(name))
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		case r == '_' || r == '-' || r == '/' || r == '.' || unicode.IsSpace(r):
			b.WriteRune(' ')
		default:
			// Punctuation like '#' or '%' carries no matching signal.
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// IsMissing reports whether a cell holds the canonical missing marker.
func IsMissing(value string) bool {
	return value == Missing
}
