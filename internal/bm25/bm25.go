// Package bm25 implements a from-scratch BM25 ranker over per-corpus term
// and document statistics.
package bm25

import (
	"math"
	"sort"

	"github.com/hsnnrn/hasandocai-sub002/internal/domain/textnorm"
)

// Default BM25 parameters (standard values).
const (
	DefaultK1 = 1.5  // term frequency saturation
	DefaultB  = 0.75 // document length normalization
)

// Corpus holds BM25 statistics for one document set. A Corpus is built in
// full (Add for every section, then Finalize) before any scoring; builders
// publish it atomically so readers never see partial statistics.
type Corpus struct {
	k1 float64
	b  float64

	termFreq  map[string]map[string]int // sectionID -> term -> frequency
	docFreq   map[string]int            // term -> number of sections containing it
	idf       map[string]float64
	docLen    map[string]int
	avgDocLen float64
	totalDocs int
	finalized bool
}

// NewCorpus creates an empty corpus. Non-positive parameters fall back to
// the defaults.
func NewCorpus(k1, b float64) *Corpus {
	if k1 <= 0 {
		k1 = DefaultK1
	}
	if b <= 0 {
		b = DefaultB
	}
	return &Corpus{
		k1:       k1,
		b:        b,
		termFreq: make(map[string]map[string]int),
		docFreq:  make(map[string]int),
		idf:      make(map[string]float64),
		docLen:   make(map[string]int),
	}
}

// Add records one section's tokens. Must not be called after Finalize.
func (c *Corpus) Add(sectionID string, tokens []string) {
	tf := make(map[string]int, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	c.termFreq[sectionID] = tf
	c.docLen[sectionID] = len(tokens)
	for t := range tf {
		c.docFreq[t]++
	}
	c.totalDocs++
}

// Finalize computes IDF and average document length in one pass. After this
// the corpus is read-only.
//
// idf(t) = ln((N - df + 0.5) / (df + 0.5) + 1), which stays positive and
// strictly non-increasing as more sections contain t.
func (c *Corpus) Finalize() {
	n := float64(c.totalDocs)
	var totalLen int
	for _, l := range c.docLen {
		totalLen += l
	}
	if c.totalDocs > 0 {
		c.avgDocLen = float64(totalLen) / n
	}
	for t, df := range c.docFreq {
		c.idf[t] = math.Log((n-float64(df)+0.5)/(float64(df)+0.5) + 1)
	}
	c.finalized = true
}

// TotalDocs returns the number of sections in the corpus.
func (c *Corpus) TotalDocs() int { return c.totalDocs }

// IDF returns the inverse document frequency of a term (0 for unseen terms).
func (c *Corpus) IDF(term string) float64 { return c.idf[term] }

// Score computes the BM25 score of a section for the given query terms and
// returns the terms that matched. Unknown sections and empty corpora score 0.
func (c *Corpus) Score(queryTerms []string, sectionID string) (float64, []string) {
	tf, ok := c.termFreq[sectionID]
	if !ok || c.totalDocs == 0 || c.avgDocLen == 0 {
		return 0, nil
	}
	docLen := float64(c.docLen[sectionID])

	var score float64
	var matched []string
	for _, term := range queryTerms {
		freq := float64(tf[term])
		if freq == 0 {
			continue
		}
		idf := c.idf[term]
		if idf == 0 {
			continue
		}
		norm := (freq * (c.k1 + 1)) / (freq + c.k1*(1-c.b+c.b*docLen/c.avgDocLen))
		score += idf * norm
		matched = append(matched, term)
	}
	return score, matched
}

// Hit is one ranked section from Search.
type Hit struct {
	SectionID string
	Score     float64
	Matched   []string
}

// Search tokenizes the query, scores every section, drops zero scores, and
// returns the top K hits sorted descending. K <= 0 means no cap.
func (c *Corpus) Search(query string, topK int) []Hit {
	terms := textnorm.Tokenize(query)
	if len(terms) == 0 {
		return nil
	}

	hits := make([]Hit, 0, 16)
	for sectionID := range c.termFreq {
		score, matched := c.Score(terms, sectionID)
		if score <= 0 {
			continue
		}
		hits = append(hits, Hit{SectionID: sectionID, Score: score, Matched: matched})
	}

	sort.Slice(hits, func(i, j int) bool {
		if hits[i].Score != hits[j].Score {
			return hits[i].Score > hits[j].Score
		}
		return hits[i].SectionID < hits[j].SectionID
	})

	if topK > 0 && len(hits) > topK {
		hits = hits[:topK]
	}
	return hits
}
