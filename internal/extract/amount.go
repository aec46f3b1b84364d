package extract

import (
	"fmt"
	"regexp"
	"strings"
)

// Amount is a monetary value extracted from text. Read-only once produced.
type Amount struct {
	Value      float64
	Currency   string // ISO 4217 code, empty when no currency was attached
	Raw        string
	SectionID  string
	Confidence float64 // advisory, in [0, 1]
	Context    string
}

// amountPattern is one pass of the extraction cascade: a pattern, the
// confidence it assigns, and a parser turning a regex match into a candidate.
type amountPattern struct {
	re         *regexp.Regexp
	confidence float64
	parse      func(m []string) (value string, currency string, ok bool)
}

const numberPattern = `\(?-?\d{1,3}(?:[.,]\d{3})+(?:[.,]\d{1,2})?\)?|\(?-?\d+(?:[.,]\d{1,2})?\)?`

const currencyPattern = `TRY|TL|USD|EUR|GBP|₺|\$|€|£`

// The four passes run in priority order; the dedup map keeps the first
// (highest-confidence) hit per (amount, currency) pair.
var amountPatterns = []amountPattern{
	{
		// Label-prefixed amount with optional currency: "Toplam: 1.234,56 TL".
		re: regexp.MustCompile(`(?i)(toplam|genel toplam|ara toplam|tutar|kdv|vergi|fiyat|[uü]cret|total|amount|subtotal|tax|price)\s*[:=]?\s*(` + numberPattern + `)\s*(` + currencyPattern + `)?`),
		confidence: 0.95,
		parse: func(m []string) (string, string, bool) {
			return m[2], m[3], true
		},
	},
	{
		// Currency-symbol-prefixed: "₺1.234,56", "$99.90".
		re:         regexp.MustCompile(`(₺|\$|€|£)\s*(` + numberPattern + `)`),
		confidence: 0.9,
		parse: func(m []string) (string, string, bool) {
			return m[2], m[1], true
		},
	},
	{
		// Amount suffixed by a currency code: "1.234,56 TL".
		re:         regexp.MustCompile(`(?i)(` + numberPattern + `)\s*(TRY|TL|USD|EUR|GBP|₺|€|£)\b`),
		confidence: 0.9,
		parse: func(m []string) (string, string, bool) {
			return m[1], m[2], true
		},
	},
	{
		// Bare number near domain vocabulary: "fatura bedeli 1500 olarak".
		re:         regexp.MustCompile(`(?i)(fatura|[oö]deme|tahsilat|bor[cç]|bakiye|bedel|invoice|payment|balance|fee)\D{0,20}?(` + numberPattern + `)`),
		confidence: 0.7,
		parse: func(m []string) (string, string, bool) {
			return m[2], "", true
		},
	},
}

// currencyAliases maps raw currency tokens onto ISO 4217 codes.
var currencyAliases = map[string]string{
	"tl": "TRY", "try": "TRY", "₺": "TRY",
	"usd": "USD", "$": "USD",
	"eur": "EUR", "€": "EUR",
	"gbp": "GBP", "£": "GBP",
}

// NormalizeCurrency maps a raw currency token to its ISO code. Unknown
// tokens pass through uppercased.
func NormalizeCurrency(tok string) string {
	tok = strings.TrimSpace(tok)
	if tok == "" {
		return ""
	}
	if iso, ok := currencyAliases[strings.ToLower(tok)]; ok {
		return iso
	}
	return strings.ToUpper(tok)
}

// Amounts runs the four-pass cascade over raw (not normalized) text and
// returns deduplicated candidates. A text with no monetary content yields an
// empty slice, never an error.
func Amounts(text string) []Amount {
	type key struct {
		value    float64
		currency string
	}
	seen := make(map[key]struct{})
	var out []Amount

	for _, p := range amountPatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			rawValue, rawCurrency, ok := p.parse(m)
			if !ok {
				continue
			}
			value, err := ParseNumberString(rawValue)
			if err != nil {
				continue
			}
			currency := NormalizeCurrency(rawCurrency)

			k := key{value: round2(value), currency: currency}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}

			out = append(out, Amount{
				Value:      value,
				Currency:   currency,
				Raw:        strings.TrimSpace(m[0]),
				Confidence: p.confidence,
				Context:    contextWindow(text, m[0]),
			})
		}
	}
	return out
}

// contextWindow returns up to 40 characters of surrounding text for
// provenance display.
func contextWindow(text, match string) string {
	idx := strings.Index(text, match)
	if idx < 0 {
		return ""
	}
	start := idx - 20
	if start < 0 {
		start = 0
	}
	end := idx + len(match) + 20
	if end > len(text) {
		end = len(text)
	}
	return strings.TrimSpace(text[start:end])
}

// String implements fmt.Stringer for log output.
func (a Amount) String() string {
	if a.Currency == "" {
		return fmt.Sprintf("%.2f", a.Value)
	}
	return fmt.Sprintf("%.2f %s", a.Value, a.Currency)
}
