// Package proto defines the request and response messages carried by the
// TagService methods over pkg/rpc. The JSON tags are the wire format.
package proto

import (
	"encoding/json"
	"log/slog"
)

// RPC method names.
const (
	MethodCategorize = "TagService.Categorize"
	MethodLookup     = "TagService.Lookup"
	MethodSearch     = "TagService.Search"
)

// Item is one categorized term.
type Item struct {
	Tag         string `json:"tag"`
	Translation string `json:"trans"`
}

// Bucket is one named group of a categorization, in result order.
type Bucket struct {
	Name  string `json:"name"`
	Items []Item `json:"items"`
}

// CategorizeRequest mirrors the HTTP categorize body.
type CategorizeRequest struct {
	Tags            string       `json:"tags"`
	Deduplicate     bool         `json:"deduplicate"`
	Mapping         MappingRules `json:"mapping,omitempty"`
	Order           []string     `json:"order,omitempty"`
	DefaultCategory string       `json:"default_category,omitempty"`
}

// MappingRules is a list of [category, subcategory, target] rules. Entries
// that are not arrays of strings are dropped one by one while decoding, so
// one bad rule never rejects the rest.
type MappingRules [][]string

func (m *MappingRules) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*m = nil
		return nil
	}
	rules := make(MappingRules, 0, len(raw))
	for i, entry := range raw {
		var rule []string
		if err := json.Unmarshal(entry, &rule); err != nil {
			slog.Debug("skipping malformed mapping rule", "index", i, "error", err)
			continue
		}
		rules = append(rules, rule)
	}
	*m = rules
	return nil
}

// CategorizeResponse lists buckets as a slice so order survives any decoder.
type CategorizeResponse struct {
	Buckets []Bucket `json:"buckets"`
}

type LookupRequest struct {
	Term string `json:"term"`
}

// LookupResponse leaves the record fields empty when Found is false.
type LookupResponse struct {
	Found       bool   `json:"found"`
	Tag         string `json:"tag,omitempty"`
	Category    string `json:"cat,omitempty"`
	Subcategory string `json:"sub,omitempty"`
	Translation string `json:"trans,omitempty"`
}

type SearchRequest struct {
	Query string `json:"query"`
	Limit int32  `json:"limit"`
}

// SearchResult is a single matching record.
type SearchResult struct {
	Tag         string `json:"tag"`
	Translation string `json:"trans"`
	Category    string `json:"cat"`
	Subcategory string `json:"sub"`
}

type SearchResponse struct {
	Query   string         `json:"query"`
	Results []SearchResult `json:"results"`
}
