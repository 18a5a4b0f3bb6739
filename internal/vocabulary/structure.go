package vocabulary

import "sort"

// Entry is a (tag, translation) pair as shown when browsing a subcategory.
type Entry struct {
	Tag         string `json:"tag"`
	Translation string `json:"trans"`
}

// Structure groups the vocabulary into category -> sorted distinct
// subcategories. Empty values are replaced by the sentinel labels so every
// record is represented. The result is rebuilt on every call.
func (s *Store) Structure() map[string][]string {
	s.mu.RLock()
	seen := make(map[string]map[string]struct{})
	for _, r := range s.records {
		cat := displayCategory(r.Category)
		subs, ok := seen[cat]
		if !ok {
			subs = make(map[string]struct{})
			seen[cat] = subs
		}
		subs[displaySubcategory(r.Subcategory)] = struct{}{}
	}
	s.mu.RUnlock()

	out := make(map[string][]string, len(seen))
	for cat, subs := range seen {
		list := make([]string, 0, len(subs))
		for sub := range subs {
			list = append(list, sub)
		}
		sort.Strings(list)
		out[cat] = list
	}
	return out
}

// TagsFor lists the records filed under (category, subcategory) in
// insertion order, comparing against the sentinel-substituted values so
// "uncategorized"/"basic" select records with empty fields. truncated
// reports that at least one more match existed beyond limit. A
// non-positive limit means no cap.
func (s *Store) TagsFor(category, subcategory string, limit int) (entries []Entry, truncated bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries = []Entry{}
	for _, r := range s.records {
		if displayCategory(r.Category) != category || displaySubcategory(r.Subcategory) != subcategory {
			continue
		}
		if limit > 0 && len(entries) == limit {
			return entries, true
		}
		entries = append(entries, Entry{Tag: r.Tag, Translation: r.Translation})
	}
	return entries, false
}
