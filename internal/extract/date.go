package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Date is a calendar date extracted from text.
type Date struct {
	Time       time.Time
	ISO        string // canonical YYYY-MM-DD
	Raw        string
	Format     string // source format name, e.g. "DD.MM.YYYY"
	Confidence float64
}

type datePattern struct {
	re         *regexp.Regexp
	format     string
	confidence float64
	// order maps submatches to (day, month, year) indexes.
	day, month, year int
}

var datePatterns = []datePattern{
	{
		re:     regexp.MustCompile(`\b(\d{1,2})\.(\d{1,2})\.(\d{4})\b`),
		format: "DD.MM.YYYY", confidence: 0.95,
		day: 1, month: 2, year: 3,
	},
	{
		re:     regexp.MustCompile(`\b(\d{4})-(\d{1,2})-(\d{1,2})\b`),
		format: "YYYY-MM-DD", confidence: 0.95,
		day: 3, month: 2, year: 1,
	},
	{
		re:     regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})/(\d{4})\b`),
		format: "DD/MM/YYYY", confidence: 0.85,
		day: 1, month: 2, year: 3,
	},
}

// Dates extracts calendar dates in DD.MM.YYYY, YYYY-MM-DD, and DD/MM/YYYY
// forms. Candidates failing range validation (day 1-31, month 1-12) are
// dropped. Duplicated ISO dates are reported once.
func Dates(text string) []Date {
	seen := make(map[string]struct{})
	var out []Date

	for _, p := range datePatterns {
		for _, m := range p.re.FindAllStringSubmatch(text, -1) {
			day, _ := strconv.Atoi(m[p.day])
			month, _ := strconv.Atoi(m[p.month])
			year, _ := strconv.Atoi(m[p.year])
			if day < 1 || day > 31 || month < 1 || month > 12 {
				continue
			}

			iso := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
			if _, dup := seen[iso]; dup {
				continue
			}
			seen[iso] = struct{}{}

			out = append(out, Date{
				Time:       time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC),
				ISO:        iso,
				Raw:        m[0],
				Format:     p.format,
				Confidence: p.confidence,
			})
		}
	}
	return out
}
