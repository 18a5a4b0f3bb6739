package vocabulary

import "strings"

// DefaultSearchLimit caps search results when the caller gives no limit.
const DefaultSearchLimit = 50

// Match is one search hit.
type Match struct {
	Tag         string `json:"tag"`
	Translation string `json:"trans"`
	Category    string `json:"cat"`
	Subcategory string `json:"sub"`
}

// Search does a case-insensitive substring scan over tags and translations
// and returns matches in vocabulary order, stopping at limit. Each record
// contributes at most one match.
func (s *Store) Search(query string, limit int) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []Match{}
	}
	if limit <= 0 {
		limit = DefaultSearchLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Match, 0, min(limit, 16))
	for _, r := range s.records {
		if !strings.Contains(strings.ToLower(r.Tag), q) &&
			!strings.Contains(strings.ToLower(r.Translation), q) {
			continue
		}
		out = append(out, Match{
			Tag:         r.Tag,
			Translation: r.Translation,
			Category:    r.Category,
			Subcategory: r.Subcategory,
		})
		if len(out) == limit {
			break
		}
	}
	return out
}
