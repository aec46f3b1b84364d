package retrieve

// Config holds the retriever's scoring knobs. The floor and fusion values
// are empirically tuned; they are named and overridable rather than derived.
type Config struct {
	// MaxRefs caps non-overview result lists. MinScore drops weak hits.
	MaxRefs  int
	MinScore float64

	// Fusion of keyword score with normalized BM25 when BM25 is nonzero:
	// final = KeywordWeight*keyword + BM25Weight*min(bm25/BM25Norm, 1).
	KeywordWeight float64
	BM25Weight    float64
	BM25Norm      float64

	// Filename-match handling. A match score above FilenameFloorMatch with
	// content score below FilenameFloorContent forces the result up to
	// FilenameFloor so filename-only matches are never dropped.
	FilenameBoost        float64
	FilenameFloor        float64
	FilenameFloorMatch   float64
	FilenameFloorContent float64

	// Keyword-ratio thresholds below which a candidate is skipped, lower
	// for sections of filename-matched documents.
	ThresholdDefault         float64
	ThresholdFilenameMatched float64

	// TrigramRefineMin is the keyword ratio above which trigram Jaccard
	// similarity refines the score.
	TrigramRefineMin float64

	// PartialMatchCap bounds substring matches per query word during
	// candidate generation.
	PartialMatchCap int

	// Price-intent adjustments and the price-query result cap.
	PriceBoost   float64
	PricePenalty float64
	PriceTopK    int

	// OverviewScore is assigned to list-query overview entries.
	OverviewScore float64

	// SemanticMinScore gates candidates from the embedding side path.
	SemanticMinScore float64

	// Rerank weights for excerpt keyword density, position in document, and
	// filename relevance; the remainder goes to the original score.
	RerankDensityWeight  float64
	RerankPositionWeight float64
	RerankFilenameWeight float64

	// DiversityCap limits results per document after rerank;
	// DuplicateJaccard is the excerpt word-overlap above which the later
	// result is dropped as a near-duplicate.
	DiversityCap     int
	DuplicateJaccard float64

	// ExcerptLen bounds excerpt size in runes.
	ExcerptLen int
}

// DefaultConfig returns the currently tuned configuration.
func DefaultConfig() Config {
	return Config{
		MaxRefs:                  5,
		MinScore:                 0.1,
		KeywordWeight:            0.3,
		BM25Weight:               0.7,
		BM25Norm:                 10.0,
		FilenameBoost:            0.9,
		FilenameFloor:            0.5,
		FilenameFloorMatch:       0.7,
		FilenameFloorContent:     0.3,
		ThresholdDefault:         0.15,
		ThresholdFilenameMatched: 0.05,
		TrigramRefineMin:         0.5,
		PartialMatchCap:          50,
		PriceBoost:               0.3,
		PricePenalty:             0.5,
		PriceTopK:                2,
		OverviewScore:            0.5,
		SemanticMinScore:         0.5,
		RerankDensityWeight:      0.3,
		RerankPositionWeight:     0.4,
		RerankFilenameWeight:     0.2,
		DiversityCap:             3,
		DuplicateJaccard:         0.8,
		ExcerptLen:               300,
	}
}
