package retrieve

import (
	"math"
	"testing"

	"github.com/hsnnrn/hasandocai-sub002/internal/domain/intent"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain/match"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain/textnorm"
	"github.com/hsnnrn/hasandocai-sub002/internal/index"
)

func makeSection(content string) *index.Section {
	return &index.Section{
		SectionID:  "s1",
		DocumentID: "d1",
		Filename:   "test.pdf",
		Original:   content,
		Normalized: textnorm.Normalize(content),
		Words:      textnorm.WordSet(content),
		Trigrams:   textnorm.Trigrams(content),
	}
}

func makeQuery(query string) candidateQuery {
	q := candidateQuery{
		normalized: textnorm.Normalize(query),
		words:      textnorm.Tokenize(query),
		trigrams:   textnorm.Trigrams(query),
	}
	q.intent = intent.Detect(q.normalized)
	return q
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestScoreCandidate_ExactSubstringWinsOutright(t *testing.T) {
	cfg := DefaultConfig()
	sec := makeSection("Fatura tutarı 1.234,56 TL olarak kesildi")
	q := makeQuery("fatura tutarı")

	br := scoreCandidate(cfg, sec, q, 0, 0)
	if br.skip {
		t.Fatal("unexpected skip")
	}
	if br.final != 1.0 {
		t.Errorf("final = %g, want 1.0", br.final)
	}
	if br.match != match.Exact {
		t.Errorf("match = %q, want exact", br.match)
	}
}

func TestScoreCandidate_SkipsWeakCandidates(t *testing.T) {
	cfg := DefaultConfig()
	sec := makeSection("tamamen alakasiz icerik")
	q := makeQuery("odeme plani")

	br := scoreCandidate(cfg, sec, q, 0, 0)
	if !br.skip {
		t.Errorf("expected skip, got final=%g", br.final)
	}
}

func TestScoreCandidate_PriceBoostWithIndicator(t *testing.T) {
	cfg := DefaultConfig()
	// Half the query words match, and the section carries a decimal amount.
	sec := makeSection("tutar kaydi 123,45 uzerinden")
	q := makeQuery("tutar vergi")
	if q.intent != intent.Price {
		t.Fatalf("intent = %q, want price", q.intent)
	}

	br := scoreCandidate(cfg, sec, q, 0, 0)
	if br.skip {
		t.Fatal("unexpected skip")
	}
	if !almostEqual(br.final, 0.8) {
		t.Errorf("final = %g, want 0.5 + 0.3 price boost", br.final)
	}
}

func TestScoreCandidate_PricePenaltyWithoutIndicator(t *testing.T) {
	cfg := DefaultConfig()
	sec := makeSection("tutar konusu belirsiz kaldi")
	q := makeQuery("tutar vergi")

	br := scoreCandidate(cfg, sec, q, 0, 0)
	if br.skip {
		t.Fatal("unexpected skip")
	}
	if !almostEqual(br.final, 0.25) {
		t.Errorf("final = %g, want 0.5 * 0.5 penalty", br.final)
	}
}

func TestScoreCandidate_BM25Fusion(t *testing.T) {
	cfg := DefaultConfig()
	sec := makeSection("sozlesme metni burada yer alir")
	q := makeQuery("sozlesme madde")

	br := scoreCandidate(cfg, sec, q, 0, 5.0)
	if br.skip {
		t.Fatal("unexpected skip")
	}
	// 0.3*keyword(0.5) + 0.7*(5/10) = 0.5
	if !almostEqual(br.final, 0.5) {
		t.Errorf("final = %g, want 0.5", br.final)
	}
}

func TestScoreCandidate_FilenameFloorSurvivesPricePenalty(t *testing.T) {
	cfg := DefaultConfig()
	// No content overlap, no price indicator, strong filename match: the
	// floor must hold after the price penalty halves the score.
	sec := makeSection("lorem ipsum dolor sit amet")
	q := makeQuery("fatura tutarı")

	br := scoreCandidate(cfg, sec, q, 1.0, 0)
	if br.skip {
		t.Fatal("filename-matched section must not be skipped")
	}
	if !br.floored {
		t.Error("expected floored flag")
	}
	if br.final != cfg.FilenameFloor {
		t.Errorf("final = %g, want floor %g", br.final, cfg.FilenameFloor)
	}
}

func TestScoreCandidate_FloorDoesNotLowerStrongScores(t *testing.T) {
	cfg := DefaultConfig()
	sec := makeSection("lorem ipsum dolor sit amet")
	q := candidateQuery{
		normalized: "sozlesme metni",
		words:      []string{"sozlesme", "metni"},
		intent:     intent.General,
	}

	br := scoreCandidate(cfg, sec, q, 1.0, 0)
	// keyword 0 + filename 1.0*0.9 = 0.9, above the floor; flag still set.
	if !br.floored {
		t.Error("expected floored flag")
	}
	if !almostEqual(br.final, 0.9) {
		t.Errorf("final = %g, want 0.9", br.final)
	}
}

func TestClamp01(t *testing.T) {
	if clamp01(-0.5) != 0 || clamp01(1.5) != 1 || clamp01(0.3) != 0.3 {
		t.Error("clamp01 misbehaves")
	}
}
