package retrieve

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hsnnrn/hasandocai-sub002/internal/bm25"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain/match"
	"github.com/hsnnrn/hasandocai-sub002/internal/index"
)

// --- Mocks ---

type mockSemantic struct {
	scores map[string]float64
	err    error
	calls  int
}

func (m *mockSemantic) Score(_ context.Context, _ *index.Snapshot, _ string) (map[string]float64, error) {
	m.calls++
	return m.scores, m.err
}

// --- Helpers ---

func invoiceDoc(id, filename, content string) domain.Document {
	return domain.Document{
		ID:       id,
		Filename: filename,
		Sections: []domain.Section{{ID: id + "-s1", Content: content, Page: 1}},
	}
}

func buildSnap(t *testing.T, docs ...domain.Document) *index.Snapshot {
	t.Helper()
	return index.Build(docs, bm25.DefaultK1, bm25.DefaultB)
}

func newService() *Service {
	return New(DefaultConfig(), nil, zap.NewNop())
}

// --- Tests ---

func TestRetrieve_NilSnapshot(t *testing.T) {
	svc := newService()
	if got := svc.Retrieve(context.Background(), nil, "fatura", Options{}); got != nil {
		t.Errorf("expected nil, got %v", got)
	}
}

func TestRetrieve_ExactMatch(t *testing.T) {
	svc := newService()
	snap := buildSnap(t,
		invoiceDoc("d1", "fatura.pdf", "Fatura tutarı 1.234,56 TL olarak kesildi"),
		invoiceDoc("d2", "rapor.pdf", "Aylik faaliyet raporu ozeti"),
	)

	results := svc.Retrieve(context.Background(), snap, "fatura tutarı", Options{})
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	top := results[0]
	if top.Score() != 1.0 {
		t.Errorf("top score = %g, want 1.0", top.Score())
	}
	if top.MatchType() != match.Exact {
		t.Errorf("match = %q, want exact", top.MatchType())
	}
	if top.SectionID() != "d1-s1" {
		t.Errorf("section = %q, want d1-s1", top.SectionID())
	}
}

func TestRetrieve_FilenameOnlyMatchFloored(t *testing.T) {
	svc := newService()
	snap := buildSnap(t,
		invoiceDoc("d1", "Invoice-13TVEI4D-0002.pdf", "lorem ipsum dolor sit amet"),
		invoiceDoc("d2", "rapor.pdf", "aylik faaliyet raporu"),
	)

	// Price-intent query naming a document by its filename ID: the section
	// has neither matching content nor a price indicator, yet it must
	// survive with at least the filename floor.
	results := svc.Retrieve(context.Background(), snap, "Invoice-13TVEI4D fatura tutarı", Options{})
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].DocumentID() != "d1" {
		t.Errorf("document = %q, want d1", results[0].DocumentID())
	}
	if results[0].Score() < 0.5 {
		t.Errorf("score = %g, want >= 0.5", results[0].Score())
	}
}

func TestRetrieve_ListEnumeratesAllDocuments(t *testing.T) {
	svc := newService()
	docs := []domain.Document{
		invoiceDoc("d1", "a.pdf", "birinci belge icerigi"),
		invoiceDoc("d2", "b.pdf", "ikinci belge icerigi"),
		invoiceDoc("d3", "c.pdf", "ucuncu belge icerigi"),
		invoiceDoc("d4", "d.pdf", "dorduncu belge icerigi"),
		invoiceDoc("d5", "e.pdf", "besinci belge icerigi"),
		invoiceDoc("d6", "f.pdf", "altinci belge icerigi"),
	}
	snap := buildSnap(t, docs...)

	// Six documents beat the default MaxRefs of five: list queries are
	// uncapped, one entry per document.
	results := svc.Retrieve(context.Background(), snap, "hangi belgeler var", Options{})
	if len(results) != 6 {
		t.Fatalf("expected 6 results, got %d", len(results))
	}
	seen := make(map[string]bool)
	for _, r := range results {
		if seen[r.DocumentID()] {
			t.Errorf("document %q listed twice", r.DocumentID())
		}
		seen[r.DocumentID()] = true
		if r.MatchType() != match.Partial {
			t.Errorf("match = %q, want partial", r.MatchType())
		}
	}
}

func TestRetrieve_GenericQueryOverview(t *testing.T) {
	svc := newService()
	snap := buildSnap(t,
		invoiceDoc("d1", "a.pdf", "birinci belge"),
		invoiceDoc("d2", "b.pdf", "ikinci belge"),
	)

	results := svc.Retrieve(context.Background(), snap, "belgeler", Options{})
	if len(results) != 2 {
		t.Fatalf("expected one result per document, got %d", len(results))
	}
}

func TestRetrieve_PriceQueryCapped(t *testing.T) {
	svc := newService()
	snap := buildSnap(t,
		invoiceDoc("d1", "a.pdf", "Fatura tutar bilgisi 100,50 TL"),
		invoiceDoc("d2", "b.pdf", "Fatura tutar bilgisi 200,75 TL"),
		invoiceDoc("d3", "c.pdf", "Fatura tutar bilgisi 300,25 TL"),
		invoiceDoc("d4", "d.pdf", "Fatura tutar bilgisi 400,00 TL"),
	)

	results := svc.Retrieve(context.Background(), snap, "fatura tutar bilgisi", Options{})
	if len(results) > 2 {
		t.Errorf("price queries cap at 2 results, got %d", len(results))
	}
	if len(results) == 0 {
		t.Fatal("expected results")
	}
}

func TestRetrieve_PriceFilterDropsNonMonetarySections(t *testing.T) {
	svc := newService()
	snap := buildSnap(t,
		invoiceDoc("d1", "a.pdf", "Toplam tutar 150,00 TL olarak oder"),
		invoiceDoc("d2", "b.pdf", "Toplam tutar gelecek hafta belli olur"),
	)

	results := svc.Retrieve(context.Background(), snap, "toplam tutar", Options{})
	for _, r := range results {
		if r.DocumentID() == "d2" {
			t.Error("section without a price indicator must be filtered on price queries")
		}
	}
}

func TestRetrieve_MaxRefsCap(t *testing.T) {
	svc := newService()
	var docs []domain.Document
	for _, id := range []string{"d1", "d2", "d3", "d4", "d5", "d6", "d7"} {
		docs = append(docs, invoiceDoc(id, id+".pdf", "sozlesme maddeleri ve genel sartlar"))
	}
	snap := buildSnap(t, docs...)

	results := svc.Retrieve(context.Background(), snap, "sozlesme maddeleri", Options{MaxRefs: 3})
	if len(results) != 3 {
		t.Errorf("expected 3 results with MaxRefs=3, got %d", len(results))
	}
}

func TestRetrieve_MinScoreFilter(t *testing.T) {
	svc := newService()
	snap := buildSnap(t,
		invoiceDoc("d1", "a.pdf", "sozlesme maddeleri ve genel sartlar"),
	)

	results := svc.Retrieve(context.Background(), snap, "sozlesme maddeleri", Options{MinScore: 0.99})
	for _, r := range results {
		if r.Score() < 0.99 {
			t.Errorf("result below MinScore leaked through: %g", r.Score())
		}
	}
}

func TestRetrieve_ExcerptBounded(t *testing.T) {
	svc := newService()
	long := strings.Repeat("sozlesme maddeleri genel sartlar ", 40)
	snap := buildSnap(t, invoiceDoc("d1", "a.pdf", long))

	results := svc.Retrieve(context.Background(), snap, "sozlesme maddeleri", Options{})
	if len(results) == 0 {
		t.Fatal("expected results")
	}
	if n := len([]rune(results[0].Excerpt())); n > DefaultConfig().ExcerptLen {
		t.Errorf("excerpt length = %d runes, want <= %d", n, DefaultConfig().ExcerptLen)
	}
}

func TestRetrieve_SemanticMergeAddsMissedSections(t *testing.T) {
	snap := buildSnap(t,
		invoiceDoc("d1", "a.pdf", "teslimat kosullari ve vade bilgisi"),
		invoiceDoc("d2", "b.pdf", "tamamen farkli bir konu anlatilir"),
	)
	sem := &mockSemantic{scores: map[string]float64{"d2-s1": 0.9}}
	svc := New(DefaultConfig(), sem, zap.NewNop())

	results := svc.Retrieve(context.Background(), snap, "teslimat kosullari", Options{})

	var found bool
	for _, r := range results {
		if r.SectionID() == "d2-s1" {
			found = true
			if r.MatchType() != match.Semantic {
				t.Errorf("match = %q, want semantic", r.MatchType())
			}
		}
	}
	if !found {
		t.Error("semantic-only hit missing from results")
	}
	if sem.calls != 1 {
		t.Errorf("semantic scorer called %d times, want 1", sem.calls)
	}
}

func TestRetrieve_SemanticBelowThresholdIgnored(t *testing.T) {
	snap := buildSnap(t,
		invoiceDoc("d1", "a.pdf", "teslimat kosullari ve vade bilgisi"),
		invoiceDoc("d2", "b.pdf", "tamamen farkli bir konu anlatilir"),
	)
	sem := &mockSemantic{scores: map[string]float64{"d2-s1": 0.2}}
	svc := New(DefaultConfig(), sem, zap.NewNop())

	results := svc.Retrieve(context.Background(), snap, "teslimat kosullari", Options{})
	for _, r := range results {
		if r.SectionID() == "d2-s1" {
			t.Error("below-threshold semantic hit leaked through")
		}
	}
}

func TestRetrieve_SemanticFailureKeepsLexicalResults(t *testing.T) {
	snap := buildSnap(t,
		invoiceDoc("d1", "a.pdf", "teslimat kosullari ve vade bilgisi"),
	)
	sem := &mockSemantic{err: errors.New("provider down")}
	svc := New(DefaultConfig(), sem, zap.NewNop())

	results := svc.Retrieve(context.Background(), snap, "teslimat kosullari", Options{})
	if len(results) == 0 {
		t.Fatal("lexical results must survive a semantic side-path failure")
	}
}
