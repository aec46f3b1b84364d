// Package analyze turns retrieval results into the deterministic facts a
// generation model is allowed to restate: extracted values, aggregate
// statistics, and the provenance list backing them.
package analyze

import (
	"go.uber.org/zap"

	"github.com/hsnnrn/hasandocai-sub002/internal/aggregate"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain/result"
	"github.com/hsnnrn/hasandocai-sub002/internal/extract"
	"github.com/hsnnrn/hasandocai-sub002/internal/index"
)

// Extraction collects every value extracted from the analyzed sections,
// each linked back to its section for provenance.
type Extraction struct {
	Amounts    []extract.Amount
	Dates      []extract.Date
	InvoiceIDs []extract.InvoiceID
}

// Provenance cites one source section as evidence.
type Provenance struct {
	SectionID  string
	DocumentID string
	Filename   string
	Page       int
	Score      float64
}

// Analysis is the full payload handed to the external generation step. The
// numbers in Aggregation are authoritative; the generator restates them.
type Analysis struct {
	Extraction  Extraction
	Aggregation aggregate.FullResult
	Provenance  []Provenance
}

// Service runs extraction and aggregation over retrieval results.
// Stateless; extraction and aggregation are pure per-section work.
type Service struct {
	logger *zap.Logger
}

// New creates an analysis service.
func New(logger *zap.Logger) *Service {
	return &Service{logger: logger}
}

// Analyze extracts values from the full text of each result's section (the
// excerpt may be truncated) and aggregates them. Sections missing from the
// snapshot fall back to the excerpt.
func (s *Service) Analyze(
	snap *index.Snapshot, results []result.Result, opts aggregate.Options,
) Analysis {
	var ex Extraction
	provenance := make([]Provenance, 0, len(results))
	seen := make(map[string]struct{}, len(results))

	for i := range results {
		r := &results[i]
		provenance = append(provenance, Provenance{
			SectionID:  r.SectionID(),
			DocumentID: r.DocumentID(),
			Filename:   r.Filename(),
			Page:       r.Page(),
			Score:      r.Score(),
		})

		// A section can appear once per query; extract each only once.
		if _, dup := seen[r.SectionID()]; dup {
			continue
		}
		seen[r.SectionID()] = struct{}{}

		text := r.Excerpt()
		if snap != nil {
			if sec, ok := snap.SectionByID(r.SectionID()); ok {
				text = sec.Original
			}
		}

		for _, a := range extract.Amounts(text) {
			a.SectionID = r.SectionID()
			ex.Amounts = append(ex.Amounts, a)
		}
		ex.Dates = append(ex.Dates, extract.Dates(text)...)
		ex.InvoiceIDs = append(ex.InvoiceIDs, extract.InvoiceIDs(text)...)
	}

	agg := aggregate.All(ex.Amounts, ex.Dates, ex.InvoiceIDs, opts)
	if s.logger != nil {
		s.logger.Debug("Analysis complete",
			zap.Int("sections", len(seen)),
			zap.Int("amounts", len(ex.Amounts)),
			zap.Int("dates", len(ex.Dates)),
			zap.Int("invoice_ids", len(ex.InvoiceIDs)),
			zap.Bool("low_confidence", agg.LowConfidence),
		)
	}

	return Analysis{Extraction: ex, Aggregation: agg, Provenance: provenance}
}
