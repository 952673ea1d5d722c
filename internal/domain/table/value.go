package table

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// DateFormats is the ordered list of layouts tried when parsing dates.
// Order matters: ISO first, then day-first European variants, then the
// ambiguous US layout, then the remaining fallbacks.
var DateFormats = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02/01/2006",
	"02/01/2006 15:04:05",
	"02.01.2006",
	"02-01-2006",
	"01/02/2006",
	"2006/01/02",
	"2006.01.02",
}

// ParseDate tries the ordered format list and returns the first match.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range DateFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ParseDateWith parses using a single layout.
func ParseDateWith(s, layout string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(layout, s)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// arabicIndicDigits maps Arabic-Indic digits to ASCII. Exports from
// Arabic-language platforms routinely carry amounts in this script.
var arabicIndicDigits = map[rune]rune{
	'٠': '0', '١': '1', '٢': '2', '٣': '3', '٤': '4',
	'٥': '5', '٦': '6', '٧': '7', '٨': '8', '٩': '9',
}

// currencyMarkers are stripped from numeric cells before parsing.
var currencyMarkers = []string{
	"ر.س", "د.إ", "SAR", "AED", "USD", "EUR", "$", "€", "£", "¥",
}

// ParseDecimal parses a numeric cell, tolerating Arabic-Indic digits,
// currency markers, thousands separators, and surrounding whitespace.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	cleaned := CleanNumeric(s)
	if cleaned == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(cleaned)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// ParseInt parses an integer cell with the same cleanup as ParseDecimal.
// Fractional values are rejected.
func ParseInt(s string) (int64, bool) {
	d, ok := ParseDecimal(s)
	if !ok || !d.IsInteger() {
		return 0, false
	}
	return d.IntPart(), true
}

// CleanNumeric normalizes a raw cell into something a decimal parser
// accepts, or returns "" when nothing numeric remains.
func CleanNumeric(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}

	for _, marker := range currencyMarkers {
		s = strings.ReplaceAll(s, marker, "")
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if ascii, ok := arabicIndicDigits[r]; ok {
			b.WriteRune(ascii)
			continue
		}
		switch r {
		case ',', ' ', ' ', '٬':
			// thousands separators
			continue
		case '٫':
			// Arabic decimal separator
			b.WriteRune('.')
		default:
			b.WriteRune(r)
		}
	}
	return strings.TrimSpace(b.String())
}

// ParseBool recognizes the usual boolean spellings.
func ParseBool(s string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "t", "y", "1":
		return true, true
	case "false", "no", "f", "n", "0":
		return false, true
	}
	return false, false
}
