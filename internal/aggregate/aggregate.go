// Package aggregate deduplicates extracted values and computes the
// authoritative statistics the generation step is only allowed to restate.
// All functions are pure; empty input yields a zero-valued result or nil,
// never an error.
package aggregate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/hsnnrn/hasandocai-sub002/internal/extract"
)

// Options controls amount aggregation.
type Options struct {
	Dedup          bool
	CurrencyFilter string // ISO code; empty keeps all currencies
	IncludeStats   bool   // variance, stddev, IQR outliers
}

// AmountResult is the statistical summary of a set of amounts.
type AmountResult struct {
	Count    int
	Sum      float64
	Average  float64
	Median   float64
	Min      float64
	Max      float64
	Currency string // dominant currency of the aggregated values

	// Populated only when Options.IncludeStats is set.
	Variance      float64
	StdDev        float64
	Outliers      []float64
	OutliersFound bool
}

// DateResult summarizes extracted dates.
type DateResult struct {
	Count    int
	Earliest time.Time
	Latest   time.Time
	SpanDays int
	ByFormat map[string]int
}

// InvoiceResult summarizes extracted invoice identifiers.
type InvoiceResult struct {
	Count           int
	UniqueCount     int
	Duplicates      []string
	DuplicatesFound bool
}

// FullResult combines all three aggregations with the flags gating
// downstream generation behavior.
type FullResult struct {
	Amounts  AmountResult
	Dates    *DateResult
	Invoices *InvoiceResult

	// LowConfidence is set when fewer than 3 amounts were found or the mean
	// extraction confidence is below 0.6. Generators hedge or refuse to
	// state a number when set.
	LowConfidence bool
	// DuplicatesFound mirrors the invoice aggregation's duplicate flag.
	DuplicatesFound bool
}

// minOutlierSamples is the smallest set IQR outlier detection runs on.
const minOutlierSamples = 4

// Amounts aggregates extracted amounts. Deduplication keys on
// (rounded amount, currency, section); the higher-confidence entry wins a
// collision. Empty input returns the zero AmountResult.
func Amounts(amounts []extract.Amount, opts Options) AmountResult {
	filtered := amounts
	if opts.CurrencyFilter != "" {
		filtered = nil
		for _, a := range amounts {
			if a.Currency == opts.CurrencyFilter {
				filtered = append(filtered, a)
			}
		}
	}
	if opts.Dedup {
		filtered = dedupAmounts(filtered)
	}
	if len(filtered) == 0 {
		return AmountResult{}
	}

	values := make([]float64, len(filtered))
	currencyCounts := make(map[string]int)
	var sum float64
	for i, a := range filtered {
		values[i] = a.Value
		sum += a.Value
		if a.Currency != "" {
			currencyCounts[a.Currency]++
		}
	}

	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)

	res := AmountResult{
		Count:    len(values),
		Sum:      round2(sum),
		Average:  round2(sum / float64(len(values))),
		Median:   round2(median(sorted)),
		Min:      round2(sorted[0]),
		Max:      round2(sorted[len(sorted)-1]),
		Currency: dominantCurrency(currencyCounts),
	}

	if opts.IncludeStats {
		mean := sum / float64(len(values))
		var sq float64
		for _, v := range values {
			sq += (v - mean) * (v - mean)
		}
		res.Variance = round2(sq / float64(len(values)))
		res.StdDev = round2(math.Sqrt(sq / float64(len(values))))
		res.Outliers = iqrOutliers(sorted)
		res.OutliersFound = len(res.Outliers) > 0
	}
	return res
}

// Dates aggregates extracted dates. Returns nil for empty input.
func Dates(dates []extract.Date) *DateResult {
	if len(dates) == 0 {
		return nil
	}
	res := &DateResult{
		Count:    len(dates),
		Earliest: dates[0].Time,
		Latest:   dates[0].Time,
		ByFormat: make(map[string]int),
	}
	for _, d := range dates {
		if d.Time.Before(res.Earliest) {
			res.Earliest = d.Time
		}
		if d.Time.After(res.Latest) {
			res.Latest = d.Time
		}
		res.ByFormat[d.Format]++
	}
	res.SpanDays = int(res.Latest.Sub(res.Earliest).Hours() / 24)
	return res
}

// InvoiceIDs aggregates invoice identifiers, reporting every ID that occurs
// more than once. Returns nil for empty input.
func InvoiceIDs(ids []extract.InvoiceID) *InvoiceResult {
	if len(ids) == 0 {
		return nil
	}
	counts := make(map[string]int, len(ids))
	order := make([]string, 0, len(ids))
	for _, id := range ids {
		if counts[id.ID] == 0 {
			order = append(order, id.ID)
		}
		counts[id.ID]++
	}

	res := &InvoiceResult{
		Count:       len(ids),
		UniqueCount: len(counts),
	}
	for _, id := range order {
		if counts[id] > 1 {
			res.Duplicates = append(res.Duplicates, id)
		}
	}
	res.DuplicatesFound = len(res.Duplicates) > 0
	return res
}

// All combines amount, date, and invoice aggregation and computes the
// generation-gating flags.
func All(
	amounts []extract.Amount, dates []extract.Date, ids []extract.InvoiceID,
	opts Options,
) FullResult {
	res := FullResult{
		Amounts:  Amounts(amounts, opts),
		Dates:    Dates(dates),
		Invoices: InvoiceIDs(ids),
	}

	res.LowConfidence = len(amounts) < 3 || meanConfidence(amounts) < 0.6
	if res.Invoices != nil {
		res.DuplicatesFound = res.Invoices.DuplicatesFound
	}
	return res
}

func dedupAmounts(amounts []extract.Amount) []extract.Amount {
	type key string
	best := make(map[key]extract.Amount)
	order := make([]key, 0, len(amounts))
	for _, a := range amounts {
		k := key(fmt.Sprintf("%.2f_%s_%s", round2(a.Value), a.Currency, a.SectionID))
		existing, ok := best[k]
		if !ok {
			order = append(order, k)
			best[k] = a
			continue
		}
		if a.Confidence > existing.Confidence {
			best[k] = a
		}
	}
	out := make([]extract.Amount, 0, len(order))
	for _, k := range order {
		out = append(out, best[k])
	}
	return out
}

// median expects a sorted, non-empty slice.
func median(sorted []float64) float64 {
	n := len(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// iqrOutliers expects a sorted slice. Values outside
// [q1 - 1.5*iqr, q3 + 1.5*iqr] are outliers; quartiles use the floor-index
// percentile convention.
func iqrOutliers(sorted []float64) []float64 {
	n := len(sorted)
	if n < minOutlierSamples {
		return nil
	}
	q1 := sorted[int(math.Floor(float64(n)*0.25))]
	q3 := sorted[int(math.Floor(float64(n)*0.75))]
	iqr := q3 - q1
	lower := q1 - 1.5*iqr
	upper := q3 + 1.5*iqr

	var out []float64
	for _, v := range sorted {
		if v < lower || v > upper {
			out = append(out, v)
		}
	}
	return out
}

func dominantCurrency(counts map[string]int) string {
	var dominant string
	var max int
	for c, n := range counts {
		if n > max || (n == max && c < dominant) {
			dominant = c
			max = n
		}
	}
	return dominant
}

func meanConfidence(amounts []extract.Amount) float64 {
	if len(amounts) == 0 {
		return 0
	}
	var sum float64
	for _, a := range amounts {
		sum += a.Confidence
	}
	return sum / float64(len(amounts))
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
