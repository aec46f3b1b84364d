package docai

import (
	"time"

	"github.com/hsnnrn/hasandocai-sub002/internal/aggregate"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain/result"
	"github.com/hsnnrn/hasandocai-sub002/internal/usecase/analyze"
)

// Section is one retrievable unit of a document.
type Section struct {
	ID      string
	Content string
	Page    int
}

// Document is an input document with pre-split sections.
type Document struct {
	ID       string
	Filename string
	FileType string
	Sections []Section
}

// Result is one retrieval hit.
type Result struct {
	SectionID  string
	DocumentID string
	Filename   string
	Excerpt    string
	Score      float64
	Page       int
	MatchType  string
}

// Amount is an extracted monetary value.
type Amount struct {
	Value      float64
	Currency   string
	Raw        string
	SectionID  string
	Confidence float64
	Context    string
}

// Date is an extracted calendar date.
type Date struct {
	ISO        string
	Raw        string
	Format     string
	Confidence float64
}

// InvoiceID is an extracted invoice identifier.
type InvoiceID struct {
	ID         string
	Raw        string
	Confidence float64
	Pattern    string
}

// Extraction holds everything extracted from a text or result set.
type Extraction struct {
	Amounts    []Amount
	Dates      []Date
	InvoiceIDs []InvoiceID
}

// AmountStats is the statistical summary of the extracted amounts.
// Variance, StdDev and outliers are populated only with IncludeStats.
type AmountStats struct {
	Count    int
	Sum      float64
	Average  float64
	Median   float64
	Min      float64
	Max      float64
	Currency string

	Variance      float64
	StdDev        float64
	Outliers      []float64
	OutliersFound bool
}

// DateStats summarizes the extracted dates. Nil when none were found.
type DateStats struct {
	Count    int
	Earliest time.Time
	Latest   time.Time
	SpanDays int
	ByFormat map[string]int
}

// InvoiceStats summarizes the extracted invoice IDs. Nil when none were found.
type InvoiceStats struct {
	Count           int
	UniqueCount     int
	Duplicates      []string
	DuplicatesFound bool
}

// Aggregation bundles all aggregate results with confidence flags.
type Aggregation struct {
	Amounts         AmountStats
	Dates           *DateStats
	Invoices        *InvoiceStats
	LowConfidence   bool
	DuplicatesFound bool
}

// Provenance cites one source section as evidence for the analysis.
type Provenance struct {
	SectionID  string
	DocumentID string
	Filename   string
	Page       int
	Score      float64
}

// Analysis is the combined retrieval/extraction/aggregation payload.
type Analysis struct {
	Extraction  Extraction
	Aggregation Aggregation
	Provenance  []Provenance
}

// AggregateOptions controls the Aggregate call.
type AggregateOptions struct {
	MaxRefs        int
	Dedup          bool
	CurrencyFilter string
	IncludeStats   bool
}

func docsToDomain(docs []Document) []domain.Document {
	out := make([]domain.Document, len(docs))
	for i, d := range docs {
		sections := make([]domain.Section, len(d.Sections))
		for j, s := range d.Sections {
			sections[j] = domain.Section{ID: s.ID, Content: s.Content, Page: s.Page}
		}
		out[i] = domain.Document{
			ID:       d.ID,
			Filename: d.Filename,
			FileType: d.FileType,
			Sections: sections,
		}
	}
	return out
}

func resultsFromDomain(results []result.Result) []Result {
	out := make([]Result, len(results))
	for i := range results {
		r := &results[i]
		out[i] = Result{
			SectionID:  r.SectionID(),
			DocumentID: r.DocumentID(),
			Filename:   r.Filename(),
			Excerpt:    r.Excerpt(),
			Score:      r.Score(),
			Page:       r.Page(),
			MatchType:  string(r.MatchType()),
		}
	}
	return out
}

func extractionFromDomain(ex analyze.Extraction) Extraction {
	out := Extraction{
		Amounts:    make([]Amount, len(ex.Amounts)),
		Dates:      make([]Date, len(ex.Dates)),
		InvoiceIDs: make([]InvoiceID, len(ex.InvoiceIDs)),
	}
	for i, a := range ex.Amounts {
		out.Amounts[i] = Amount{
			Value:      a.Value,
			Currency:   a.Currency,
			Raw:        a.Raw,
			SectionID:  a.SectionID,
			Confidence: a.Confidence,
			Context:    a.Context,
		}
	}
	for i, d := range ex.Dates {
		out.Dates[i] = Date{ISO: d.ISO, Raw: d.Raw, Format: d.Format, Confidence: d.Confidence}
	}
	for i, id := range ex.InvoiceIDs {
		out.InvoiceIDs[i] = InvoiceID{ID: id.ID, Raw: id.Raw, Confidence: id.Confidence, Pattern: id.Pattern}
	}
	return out
}

func aggregationFromDomain(agg aggregate.FullResult) Aggregation {
	out := Aggregation{
		Amounts: AmountStats{
			Count:         agg.Amounts.Count,
			Sum:           agg.Amounts.Sum,
			Average:       agg.Amounts.Average,
			Median:        agg.Amounts.Median,
			Min:           agg.Amounts.Min,
			Max:           agg.Amounts.Max,
			Currency:      agg.Amounts.Currency,
			Variance:      agg.Amounts.Variance,
			StdDev:        agg.Amounts.StdDev,
			Outliers:      agg.Amounts.Outliers,
			OutliersFound: agg.Amounts.OutliersFound,
		},
		LowConfidence:   agg.LowConfidence,
		DuplicatesFound: agg.DuplicatesFound,
	}
	if agg.Dates != nil {
		out.Dates = &DateStats{
			Count:    agg.Dates.Count,
			Earliest: agg.Dates.Earliest,
			Latest:   agg.Dates.Latest,
			SpanDays: agg.Dates.SpanDays,
			ByFormat: agg.Dates.ByFormat,
		}
	}
	if agg.Invoices != nil {
		out.Invoices = &InvoiceStats{
			Count:           agg.Invoices.Count,
			UniqueCount:     agg.Invoices.UniqueCount,
			Duplicates:      agg.Invoices.Duplicates,
			DuplicatesFound: agg.Invoices.DuplicatesFound,
		}
	}
	return out
}

func analysisFromDomain(a analyze.Analysis) Analysis {
	prov := make([]Provenance, len(a.Provenance))
	for i, p := range a.Provenance {
		prov[i] = Provenance{
			SectionID:  p.SectionID,
			DocumentID: p.DocumentID,
			Filename:   p.Filename,
			Page:       p.Page,
			Score:      p.Score,
		}
	}
	return Analysis{
		Extraction:  extractionFromDomain(a.Extraction),
		Aggregation: aggregationFromDomain(a.Aggregation),
		Provenance:  prov,
	}
}
