package chi

import (
	"time"

	"github.com/hsnnrn/hasandocai-sub002/internal/aggregate"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain/result"
	"github.com/hsnnrn/hasandocai-sub002/internal/usecase/analyze"
)

// Wire types for the JSON API. Domain types stay transport-agnostic; all
// field naming and optionality live here.

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error codes returned by the API.
const (
	codeBadRequest       = "bad_request"
	codeValidationFailed = "validation_failed"
	codeEmptyQuery       = "empty_query"
	codeNoDocuments      = "no_documents"
	codeRateLimited      = "rate_limited"
	codeProviderError    = "embedding_provider_error"
	codeInternal         = "internal_error"
)

type sectionRequest struct {
	ID      string `json:"id"`
	Content string `json:"content"`
	Page    int    `json:"page,omitempty"`
}

type documentRequest struct {
	ID       string           `json:"id"`
	Filename string           `json:"filename"`
	FileType string           `json:"file_type,omitempty"`
	Sections []sectionRequest `json:"sections"`
}

type upsertDocumentsRequest struct {
	Documents []documentRequest `json:"documents"`
}

type upsertDocumentsResponse struct {
	Rebuilt   bool `json:"rebuilt"`
	Documents int  `json:"documents"`
	Sections  int  `json:"sections"`
}

type queryRequest struct {
	Query    string  `json:"query"`
	MaxRefs  int     `json:"max_refs,omitempty"`
	MinScore float64 `json:"min_score,omitempty"`
	Rerank   bool    `json:"rerank,omitempty"`
}

type resultItem struct {
	SectionID  string  `json:"section_id"`
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Excerpt    string  `json:"excerpt"`
	Score      float64 `json:"score"`
	Page       int     `json:"page,omitempty"`
	MatchType  string  `json:"match_type"`
}

type queryResponse struct {
	Intent  string       `json:"intent"`
	Results []resultItem `json:"results"`
}

type extractRequest struct {
	Text string `json:"text"`
}

type amountItem struct {
	Value      float64 `json:"value"`
	Currency   string  `json:"currency,omitempty"`
	Raw        string  `json:"raw"`
	SectionID  string  `json:"section_id,omitempty"`
	Confidence float64 `json:"confidence"`
	Context    string  `json:"context,omitempty"`
}

type dateItem struct {
	ISO        string  `json:"iso"`
	Raw        string  `json:"raw"`
	Format     string  `json:"format"`
	Confidence float64 `json:"confidence"`
}

type invoiceIDItem struct {
	ID         string  `json:"id"`
	Raw        string  `json:"raw"`
	Confidence float64 `json:"confidence"`
	Pattern    string  `json:"pattern"`
}

type extractionResponse struct {
	Amounts    []amountItem    `json:"amounts"`
	Dates      []dateItem      `json:"dates"`
	InvoiceIDs []invoiceIDItem `json:"invoice_ids"`
}

type aggregateRequest struct {
	Query          string `json:"query"`
	MaxRefs        int    `json:"max_refs,omitempty"`
	Dedup          bool   `json:"dedup"`
	CurrencyFilter string `json:"currency_filter,omitempty"`
	IncludeStats   bool   `json:"include_stats"`
}

type amountAggregation struct {
	Count    int     `json:"count"`
	Sum      float64 `json:"sum"`
	Average  float64 `json:"average"`
	Median   float64 `json:"median"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	Currency string  `json:"currency,omitempty"`

	Variance      *float64  `json:"variance,omitempty"`
	StdDev        *float64  `json:"std_dev,omitempty"`
	Outliers      []float64 `json:"outliers,omitempty"`
	OutliersFound bool      `json:"outliers_found"`
}

type dateAggregation struct {
	Count    int            `json:"count"`
	Earliest string         `json:"earliest"`
	Latest   string         `json:"latest"`
	SpanDays int            `json:"span_days"`
	ByFormat map[string]int `json:"by_format,omitempty"`
}

type invoiceAggregation struct {
	Count           int      `json:"count"`
	UniqueCount     int      `json:"unique_count"`
	Duplicates      []string `json:"duplicates,omitempty"`
	DuplicatesFound bool     `json:"duplicates_found"`
}

type aggregationResponse struct {
	Amounts         amountAggregation   `json:"amounts"`
	Dates           *dateAggregation    `json:"dates,omitempty"`
	Invoices        *invoiceAggregation `json:"invoices,omitempty"`
	LowConfidence   bool                `json:"low_confidence"`
	DuplicatesFound bool                `json:"duplicates_found"`
}

type provenanceItem struct {
	SectionID  string  `json:"section_id"`
	DocumentID string  `json:"document_id"`
	Filename   string  `json:"filename"`
	Page       int     `json:"page,omitempty"`
	Score      float64 `json:"score"`
}

type analysisResponse struct {
	Extraction  extractionResponse  `json:"extraction"`
	Aggregation aggregationResponse `json:"aggregation"`
	Provenance  []provenanceItem    `json:"provenance"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}

func documentsFromRequest(req upsertDocumentsRequest) []domain.Document {
	docs := make([]domain.Document, len(req.Documents))
	for i, d := range req.Documents {
		sections := make([]domain.Section, len(d.Sections))
		for j, s := range d.Sections {
			sections[j] = domain.Section{ID: s.ID, Content: s.Content, Page: s.Page}
		}
		docs[i] = domain.Document{
			ID:       d.ID,
			Filename: d.Filename,
			FileType: d.FileType,
			Sections: sections,
		}
	}
	return docs
}

func resultsToItems(results []result.Result) []resultItem {
	items := make([]resultItem, len(results))
	for i := range results {
		r := &results[i]
		items[i] = resultItem{
			SectionID:  r.SectionID(),
			DocumentID: r.DocumentID(),
			Filename:   r.Filename(),
			Excerpt:    r.Excerpt(),
			Score:      r.Score(),
			Page:       r.Page(),
			MatchType:  string(r.MatchType()),
		}
	}
	return items
}

func extractionToResponse(ex analyze.Extraction) extractionResponse {
	resp := extractionResponse{
		Amounts:    make([]amountItem, len(ex.Amounts)),
		Dates:      make([]dateItem, len(ex.Dates)),
		InvoiceIDs: make([]invoiceIDItem, len(ex.InvoiceIDs)),
	}
	for i, a := range ex.Amounts {
		resp.Amounts[i] = amountItem{
			Value:      a.Value,
			Currency:   a.Currency,
			Raw:        a.Raw,
			SectionID:  a.SectionID,
			Confidence: a.Confidence,
			Context:    a.Context,
		}
	}
	for i, d := range ex.Dates {
		resp.Dates[i] = dateItem{
			ISO:        d.ISO,
			Raw:        d.Raw,
			Format:     d.Format,
			Confidence: d.Confidence,
		}
	}
	for i, id := range ex.InvoiceIDs {
		resp.InvoiceIDs[i] = invoiceIDItem{
			ID:         id.ID,
			Raw:        id.Raw,
			Confidence: id.Confidence,
			Pattern:    id.Pattern,
		}
	}
	return resp
}

func aggregationToResponse(agg aggregate.FullResult, includeStats bool) aggregationResponse {
	resp := aggregationResponse{
		Amounts: amountAggregation{
			Count:         agg.Amounts.Count,
			Sum:           agg.Amounts.Sum,
			Average:       agg.Amounts.Average,
			Median:        agg.Amounts.Median,
			Min:           agg.Amounts.Min,
			Max:           agg.Amounts.Max,
			Currency:      agg.Amounts.Currency,
			Outliers:      agg.Amounts.Outliers,
			OutliersFound: agg.Amounts.OutliersFound,
		},
		LowConfidence:   agg.LowConfidence,
		DuplicatesFound: agg.DuplicatesFound,
	}
	if includeStats {
		variance, stdDev := agg.Amounts.Variance, agg.Amounts.StdDev
		resp.Amounts.Variance = &variance
		resp.Amounts.StdDev = &stdDev
	}
	if agg.Dates != nil {
		resp.Dates = &dateAggregation{
			Count:    agg.Dates.Count,
			Earliest: agg.Dates.Earliest.Format(time.DateOnly),
			Latest:   agg.Dates.Latest.Format(time.DateOnly),
			SpanDays: agg.Dates.SpanDays,
			ByFormat: agg.Dates.ByFormat,
		}
	}
	if agg.Invoices != nil {
		resp.Invoices = &invoiceAggregation{
			Count:           agg.Invoices.Count,
			UniqueCount:     agg.Invoices.UniqueCount,
			Duplicates:      agg.Invoices.Duplicates,
			DuplicatesFound: agg.Invoices.DuplicatesFound,
		}
	}
	return resp
}

func analysisToResponse(a analyze.Analysis, includeStats bool) analysisResponse {
	prov := make([]provenanceItem, len(a.Provenance))
	for i, p := range a.Provenance {
		prov[i] = provenanceItem{
			SectionID:  p.SectionID,
			DocumentID: p.DocumentID,
			Filename:   p.Filename,
			Page:       p.Page,
			Score:      p.Score,
		}
	}
	return analysisResponse{
		Extraction:  extractionToResponse(a.Extraction),
		Aggregation: aggregationToResponse(a.Aggregation, includeStats),
		Provenance:  prov,
	}
}
