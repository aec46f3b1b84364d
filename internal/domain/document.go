package domain

import (
	"sort"
	"strings"
)

// Document is a plain-text document as delivered by the ingestion pipeline.
// File-format conversion happens upstream; only extracted text arrives here.
type Document struct {
	ID       string
	Filename string
	FileType string
	Sections []Section
}

// Section is one contiguous unit of extracted text (a page, a sheet, a slide).
// Immutable once ingested.
type Section struct {
	ID      string
	Content string
	Page    int
}

// Validate checks that a document can be indexed.
func (d Document) Validate() error {
	if d.ID == "" {
		return ErrInvalidDocument
	}
	for _, s := range d.Sections {
		if s.ID == "" {
			return ErrInvalidDocument
		}
	}
	return nil
}

// Fingerprint identifies a document set by its sorted, joined document IDs.
// Two sets with the same IDs produce the same fingerprint regardless of order.
func Fingerprint(docs []Document) string {
	ids := make([]string, 0, len(docs))
	for _, d := range docs {
		ids = append(ids, d.ID)
	}
	sort.Strings(ids)
	return strings.Join(ids, "|")
}
