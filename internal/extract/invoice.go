package extract

import (
	"regexp"
	"strings"
)

// InvoiceID is a document identifier extracted from text.
type InvoiceID struct {
	ID         string
	Raw        string
	Confidence float64
	Pattern    string // which cascade pass produced it
}

// Invoice ID pattern names.
const (
	PatternLabeled    = "labeled"
	PatternStructured = "structured"
	PatternYearSeq    = "year_sequence"
)

type invoicePattern struct {
	re         *regexp.Regexp
	name       string
	confidence float64
	group      int
}

// minInvoiceIDLen rejects fragments too short to be identifiers.
const minInvoiceIDLen = 4

// The three passes run in priority order; dedup by exact ID keeps the
// highest-confidence occurrence.
var invoicePatterns = []invoicePattern{
	{
		// Explicitly labeled: "Fatura No: ABC-2024-0012", "Invoice #INV001".
		re:         regexp.MustCompile(`(?i)(?:fatura\s*(?:no|numaras[iı])|belge\s*no|invoice\s*(?:no|number|id)?)\s*[:#]?\s*([A-Z0-9][A-Z0-9\-/]{2,})`),
		name:       PatternLabeled,
		confidence: 0.95,
		group:      1,
	},
	{
		// Structured prefix-number-number: "INV-2024-0012", "GIB-23-001".
		re:         regexp.MustCompile(`\b([A-Z]{2,6}-\d{2,4}-\d{1,6})\b`),
		name:       PatternStructured,
		confidence: 0.9,
		group:      1,
	},
	{
		// Bare year/sequence pair: "2024/000123".
		re:         regexp.MustCompile(`\b(20\d{2}[/-]\d{3,6})\b`),
		name:       PatternYearSeq,
		confidence: 0.75,
		group:      1,
	},
}

// InvoiceIDs extracts invoice identifiers via the three-pass cascade,
// rejecting candidates shorter than four characters and deduplicating by
// exact string. Each accepted ID claims its character span; later passes
// skip candidates inside a claimed span so a low-priority pattern never
// re-emits the tail of a higher-priority match ("ABC-2024-0012" must not
// also yield "2024-0012").
func InvoiceIDs(text string) []InvoiceID {
	seen := make(map[string]struct{})
	var claimed [][2]int
	var out []InvoiceID

	overlaps := func(start, end int) bool {
		for _, span := range claimed {
			if start < span[1] && span[0] < end {
				return true
			}
		}
		return false
	}

	for _, p := range invoicePatterns {
		for _, m := range p.re.FindAllStringSubmatchIndex(text, -1) {
			gs, ge := m[2*p.group], m[2*p.group+1]
			if gs < 0 || overlaps(gs, ge) {
				continue
			}

			id := strings.ToUpper(strings.TrimSpace(text[gs:ge]))
			id = strings.TrimRight(id, "-/")
			if len(id) < minInvoiceIDLen {
				continue
			}
			claimed = append(claimed, [2]int{gs, ge})
			if _, dup := seen[id]; dup {
				continue
			}
			seen[id] = struct{}{}

			out = append(out, InvoiceID{
				ID:         id,
				Raw:        strings.TrimSpace(text[m[0]:m[1]]),
				Confidence: p.confidence,
				Pattern:    p.name,
			})
		}
	}
	return out
}
