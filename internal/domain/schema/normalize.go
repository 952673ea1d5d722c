package schema

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Pre-compiled expressions for header normalization.
var (
	headerPrefixRe    = regexp.MustCompile(`^(col_|column_|field_)`)
	headerSuffixRe    = regexp.MustCompile(`(_col|_column|_field)$`)
	headerSeparatorRe = regexp.MustCompile(`[-\s.]+`)
)

// NormalizeHeader canonicalizes a column header for matching:
// lowercase, diacritics stripped, common col_/field_ affixes removed,
// separators collapsed to underscores, and anything that is not a word
// character, an Arabic letter, or an underscore dropped.
func NormalizeHeader(header string) string {
	s := strings.ToLower(strings.TrimSpace(header))
	if s == "" {
		return s
	}

	s = StripDiacritics(s)
	s = headerPrefixRe.ReplaceAllString(s, "")
	s = headerSuffixRe.ReplaceAllString(s, "")
	s = headerSeparatorRe.ReplaceAllString(s, "_")

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '_':
			b.WriteRune(r)
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
		}
	}
	return strings.Trim(b.String(), "_")
}

// StripDiacritics removes diacritical marks from a string. It
// decomposes into NFD form and drops combining marks (unicode.Mn), so
// "Bestell-Nummer" and "Bestéll-Nummer" normalize identically.
func StripDiacritics(s string) string {
	decomposed := norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(decomposed))
	for _, r := range decomposed {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
