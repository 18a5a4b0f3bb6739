// Package vocabulary owns the in-memory tag vocabulary: an ordered sequence
// of records plus a normalized-key index over the same record instances.
// It also provides the read-only projections used for browsing (structure,
// per-subcategory listing) and interactive substring search.
package vocabulary

import "strings"

// Sentinel labels substituted for empty classification values in browsing
// projections.
const (
	UncategorizedLabel = "uncategorized"
	BasicLabel         = "basic"
)

// Record is one vocabulary entry. The JSON keys match the compact snapshot
// format the vocabulary file has always used.
type Record struct {
	Tag         string `json:"t"`
	Category    string `json:"c"`
	Subcategory string `json:"s"`
	Translation string `json:"zh"`
}

// Key returns the record's normalized lookup key.
func (r Record) Key() string {
	return NormalizeKey(r.Tag)
}

// NormalizeKey folds case and treats underscores as spaces.
func NormalizeKey(term string) string {
	return strings.ToLower(strings.ReplaceAll(term, "_", " "))
}

func displayCategory(c string) string {
	if c == "" {
		return UncategorizedLabel
	}
	return c
}

func displaySubcategory(s string) string {
	if s == "" {
		return BasicLabel
	}
	return s
}
