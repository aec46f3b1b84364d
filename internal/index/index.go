// Package index builds the inverted word index, the per-section normalized
// cache, and the BM25 corpus for the current document set in a single pass.
//
// A Snapshot is immutable after Build returns. Owners republish the whole
// snapshot (e.g. via atomic.Pointer) when the document-set fingerprint
// changes; queries only ever observe a fully built snapshot.
package index

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hsnnrn/hasandocai-sub002/internal/bm25"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain"
	"github.com/hsnnrn/hasandocai-sub002/internal/domain/textnorm"
)

// Section is the normalized cache entry derived from one text section.
type Section struct {
	SectionID  string
	DocumentID string
	Filename   string
	Original   string
	Normalized string
	Words      map[string]struct{}
	Trigrams   map[string]struct{}
	Page       int
}

// DocumentMeta carries per-document filename data used by filename matching.
type DocumentMeta struct {
	DocumentID    string
	Filename      string
	FilenameWords []string
	SectionIDs    []string
}

// Snapshot is the complete derived state for one document set.
type Snapshot struct {
	Fingerprint string
	Inverted    map[string]map[string]struct{} // word -> set of section IDs
	Sections    []Section
	Documents   []DocumentMeta
	Corpus      *bm25.Corpus

	bySection  map[string]*Section
	byDocument map[string]*DocumentMeta
}

// minIndexedLen matches the tokenizer floor: every indexed word is non-empty
// after normalization and longer than 2 runes.
const minIndexedLen = 3

// idToken recognizes identifier-looking filename chunks such as
// "Invoice-13TVEI4D" that must be indexed intact rather than split on
// hyphens.
var idToken = regexp.MustCompile(`^[A-Za-z]+-[A-Za-z0-9]{4,}(?:-[A-Za-z0-9]+)*$`)

// Build constructs a snapshot over the given document set. Sections with
// empty content still appear in the normalized cache (with empty word sets)
// so provenance lookups never miss.
func Build(docs []domain.Document, k1, b float64) *Snapshot {
	snap := &Snapshot{
		Fingerprint: domain.Fingerprint(docs),
		Inverted:    make(map[string]map[string]struct{}),
		Corpus:      bm25.NewCorpus(k1, b),
		bySection:   make(map[string]*Section),
		byDocument:  make(map[string]*DocumentMeta),
	}

	for _, doc := range docs {
		fnWords := FilenameWords(doc.Filename)
		meta := DocumentMeta{
			DocumentID:    doc.ID,
			Filename:      doc.Filename,
			FilenameWords: fnWords,
		}

		for _, sec := range doc.Sections {
			normalized := textnorm.Normalize(sec.Content)
			tokens := textnorm.Tokenize(sec.Content)

			entry := Section{
				SectionID:  sec.ID,
				DocumentID: doc.ID,
				Filename:   doc.Filename,
				Original:   sec.Content,
				Normalized: normalized,
				Words:      make(map[string]struct{}, len(tokens)),
				Trigrams:   textnorm.Trigrams(sec.Content),
				Page:       sec.Page,
			}
			for _, t := range tokens {
				entry.Words[t] = struct{}{}
			}

			// Filename words are merged into the posting lists of every
			// section of the document, so a filename term resolves to
			// its sections through the same index lookup as content.
			for w := range entry.Words {
				snap.addPosting(w, sec.ID)
			}
			for _, w := range fnWords {
				snap.addPosting(w, sec.ID)
			}

			snap.Corpus.Add(sec.ID, tokens)
			meta.SectionIDs = append(meta.SectionIDs, sec.ID)
			snap.Sections = append(snap.Sections, entry)
		}

		snap.Documents = append(snap.Documents, meta)
	}

	for i := range snap.Sections {
		snap.bySection[snap.Sections[i].SectionID] = &snap.Sections[i]
	}
	for i := range snap.Documents {
		snap.byDocument[snap.Documents[i].DocumentID] = &snap.Documents[i]
	}

	snap.Corpus.Finalize()
	return snap
}

func (s *Snapshot) addPosting(word, sectionID string) {
	if len([]rune(word)) < minIndexedLen {
		return
	}
	set, ok := s.Inverted[word]
	if !ok {
		set = make(map[string]struct{})
		s.Inverted[word] = set
	}
	set[sectionID] = struct{}{}
}

// SectionByID returns the normalized cache entry for a section ID.
func (s *Snapshot) SectionByID(id string) (*Section, bool) {
	sec, ok := s.bySection[id]
	return sec, ok
}

// DocumentByID returns the filename metadata for a document ID.
func (s *Snapshot) DocumentByID(id string) (*DocumentMeta, bool) {
	doc, ok := s.byDocument[id]
	return doc, ok
}

// Lookup returns the section IDs containing an exact normalized word.
func (s *Snapshot) Lookup(word string) map[string]struct{} {
	return s.Inverted[word]
}

// FilenameWords derives index-searchable words from a filename: the
// extension is stripped, the rest splits on space, hyphen, and underscore.
// Identifier-looking chunks ("Invoice-13TVEI4D") are additionally kept
// intact so exact ID queries hit the document.
func FilenameWords(filename string) []string {
	base := strings.TrimSuffix(filename, filepath.Ext(filename))
	if base == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var words []string
	add := func(w string) {
		w = textnorm.Normalize(w)
		if len([]rune(w)) < minIndexedLen {
			return
		}
		if _, ok := seen[w]; ok {
			return
		}
		seen[w] = struct{}{}
		words = append(words, w)
	}

	for _, chunk := range strings.FieldsFunc(base, func(r rune) bool {
		return r == ' ' || r == '_'
	}) {
		if idToken.MatchString(chunk) {
			add(chunk)
			// Keep the leading label searchable on its own as well.
			if head, _, ok := strings.Cut(chunk, "-"); ok {
				add(head)
			}
			continue
		}
		for _, part := range strings.Split(chunk, "-") {
			add(part)
		}
	}
	return words
}
