// Package intent classifies queries into coarse answer-shape categories.
package intent

import "strings"

// Intent is the coarse classification of what a query expects back.
type Intent string

// Query intent constants.
const (
	// Price expects a monetary figure (totals, amounts, fees).
	Price Intent = "price"
	// List expects an enumeration of the available documents.
	List Intent = "list"
	// General expects free-form retrieval.
	General Intent = "general"
)

// IsValid checks if the intent is one of the supported values.
func (i Intent) IsValid() bool {
	return i == Price || i == List || i == General
}

// Keyword sets below are stored in folded form (see textnorm.Normalize):
// detection runs on the normalized query, so "tutarı" appears as "tutari".
var (
	listKeywords = []string{
		"listele", "liste", "hangi belgeler", "hangi dosyalar", "tum belgeler",
		"hepsini goster", "list", "show all", "all documents", "which documents",
	}
	priceKeywords = []string{
		"tutar", "toplam", "fiyat", "ucret", "odeme", "ne kadar", "kac tl",
		"kdv", "vergi", "bakiye", "total", "amount", "price", "cost", "sum",
	}
)

// Detect classifies a normalized query. List vocabulary wins over price
// vocabulary so "tüm faturaların tutarlarını listele" enumerates documents.
func Detect(normalizedQuery string) Intent {
	for _, kw := range listKeywords {
		if strings.Contains(normalizedQuery, kw) {
			return List
		}
	}
	for _, kw := range priceKeywords {
		if strings.Contains(normalizedQuery, kw) {
			return Price
		}
	}
	return General
}
