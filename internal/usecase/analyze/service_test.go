package analyze

import (
	"testing"

	"go.uber.org/zap"

	"github.com/hsnnrn/hasandocai-sub002/internal/aggregate"
	"github.com/hsnnrn/hasandocai-sub002/internal/bm25"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain/match"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain/result"
	"github.com/hsnnrn/hasandocai-sub002/internal/index"
)

func buildSnap(t *testing.T, content string) *index.Snapshot {
	t.Helper()
	docs := []domain.Document{{
		ID:       "d1",
		Filename: "fatura.pdf",
		Sections: []domain.Section{{ID: "s1", Content: content, Page: 2}},
	}}
	return index.Build(docs, bm25.DefaultK1, bm25.DefaultB)
}

func res(sectionID string, score float64) result.Result {
	return result.New(sectionID, "d1", "fatura.pdf", "kisaltilmis alinti", score, 2, match.Partial)
}

func TestAnalyze_UsesFullSectionText(t *testing.T) {
	// The excerpt carries no amount; the full section text does. Extraction
	// must run on the latter.
	snap := buildSnap(t, "Belge no INV-2024-001, tarih 15.03.2024, toplam tutar 1.234,56 TL")
	svc := New(zap.NewNop())

	analysis := svc.Analyze(snap, []result.Result{res("s1", 0.9)}, aggregate.Options{})

	if len(analysis.Extraction.Amounts) != 1 {
		t.Fatalf("amounts = %d, want 1", len(analysis.Extraction.Amounts))
	}
	if analysis.Extraction.Amounts[0].Value != 1234.56 {
		t.Errorf("Value = %g, want 1234.56", analysis.Extraction.Amounts[0].Value)
	}
	if analysis.Extraction.Amounts[0].SectionID != "s1" {
		t.Errorf("SectionID = %q, want s1", analysis.Extraction.Amounts[0].SectionID)
	}
	if len(analysis.Extraction.Dates) != 1 || len(analysis.Extraction.InvoiceIDs) == 0 {
		t.Errorf("dates = %d invoice ids = %d, want both extracted",
			len(analysis.Extraction.Dates), len(analysis.Extraction.InvoiceIDs))
	}
	if analysis.Aggregation.Amounts.Count != 1 {
		t.Errorf("aggregated count = %d, want 1", analysis.Aggregation.Amounts.Count)
	}
}

func TestAnalyze_NilSnapshotFallsBackToExcerpt(t *testing.T) {
	svc := New(zap.NewNop())
	r := result.New("s1", "d1", "fatura.pdf", "Toplam: 500,25 TL", 0.9, 1, match.Partial)

	analysis := svc.Analyze(nil, []result.Result{r}, aggregate.Options{})
	if len(analysis.Extraction.Amounts) != 1 {
		t.Fatalf("amounts = %d, want 1 from the excerpt", len(analysis.Extraction.Amounts))
	}
	if analysis.Extraction.Amounts[0].Value != 500.25 {
		t.Errorf("Value = %g, want 500.25", analysis.Extraction.Amounts[0].Value)
	}
}

func TestAnalyze_DuplicateSectionExtractedOnce(t *testing.T) {
	snap := buildSnap(t, "Toplam: 100,00 TL")
	svc := New(zap.NewNop())

	results := []result.Result{res("s1", 0.9), res("s1", 0.8)}
	analysis := svc.Analyze(snap, results, aggregate.Options{})

	if len(analysis.Provenance) != 2 {
		t.Errorf("provenance = %d, want one entry per result", len(analysis.Provenance))
	}
	if len(analysis.Extraction.Amounts) != 1 {
		t.Errorf("amounts = %d, want the section extracted once", len(analysis.Extraction.Amounts))
	}
}

func TestAnalyze_ProvenanceCarriesResultFields(t *testing.T) {
	snap := buildSnap(t, "icerik")
	svc := New(zap.NewNop())

	analysis := svc.Analyze(snap, []result.Result{res("s1", 0.75)}, aggregate.Options{})
	if len(analysis.Provenance) != 1 {
		t.Fatalf("provenance = %d, want 1", len(analysis.Provenance))
	}
	p := analysis.Provenance[0]
	if p.SectionID != "s1" || p.DocumentID != "d1" || p.Filename != "fatura.pdf" || p.Page != 2 || p.Score != 0.75 {
		t.Errorf("provenance = %+v", p)
	}
}

func TestAnalyze_EmptyResults(t *testing.T) {
	svc := New(zap.NewNop())
	analysis := svc.Analyze(nil, nil, aggregate.Options{})

	if len(analysis.Provenance) != 0 {
		t.Errorf("provenance = %d, want 0", len(analysis.Provenance))
	}
	if !analysis.Aggregation.LowConfidence {
		t.Error("no extracted amounts must flag low confidence")
	}
}
