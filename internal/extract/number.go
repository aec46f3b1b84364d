// Package extract pulls monetary amounts, dates, and invoice identifiers out
// of raw section text with locale-aware, deterministic rules. Extraction
// never fails: unparseable candidates are dropped, not reported.
package extract

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var errUnparseable = errors.New("unparseable number")

// ParseNumberString parses a numeric string that may use either Turkish
// ("1.234,56") or US ("1,234.56") separator conventions.
//
// Disambiguation: when both ',' and '.' occur, whichever occurs last is the
// decimal separator. When only one occurs, it is decimal if the digit run
// after it is at most two digits, otherwise a thousands separator.
// Parenthesized or minus-prefixed values are negative.
func ParseNumberString(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errUnparseable
	}

	negative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		negative = true
		s = s[1 : len(s)-1]
	}
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "-") {
		negative = true
		s = s[1:]
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, errUnparseable
	}

	lastComma := strings.LastIndex(s, ",")
	lastDot := strings.LastIndex(s, ".")

	var cleaned string
	switch {
	case lastComma >= 0 && lastDot >= 0:
		if lastComma > lastDot {
			// Turkish: '.' thousands, ',' decimal.
			cleaned = strings.ReplaceAll(s, ".", "")
			cleaned = strings.Replace(cleaned, ",", ".", 1)
		} else {
			// US: ',' thousands, '.' decimal.
			cleaned = strings.ReplaceAll(s, ",", "")
		}
	case lastComma >= 0:
		cleaned = disambiguateSingle(s, ",", lastComma)
	case lastDot >= 0:
		cleaned = disambiguateSingle(s, ".", lastDot)
	default:
		cleaned = s
	}

	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, errUnparseable
	}
	if negative {
		v = -v
	}
	return v, nil
}

// disambiguateSingle handles a string containing only one separator kind:
// a trailing digit run of <=2 marks it decimal, otherwise thousands.
func disambiguateSingle(s, sep string, lastIdx int) string {
	tail := s[lastIdx+len(sep):]
	if len(tail) <= 2 && strings.Count(s, sep) == 1 {
		return strings.Replace(s, sep, ".", 1)
	}
	return strings.ReplaceAll(s, sep, "")
}

// round2 rounds to two decimal places, the precision every aggregate and
// dedup key uses.
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
