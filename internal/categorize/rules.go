package categorize

type origin struct {
	category    string
	subcategory string
}

// Rules redirects terms from an origin (category, subcategory) to a target
// category.
type Rules map[origin]string

// ParseRules builds rules from [category, subcategory, target] entries.
// Entries with fewer than three fields are skipped; extra fields are
// ignored. A later entry for the same origin replaces an earlier one.
func ParseRules(entries [][]string) Rules {
	rules := make(Rules, len(entries))
	for _, e := range entries {
		if len(e) < 3 {
			continue
		}
		rules[origin{e[0], e[1]}] = e[2]
	}
	return rules
}

// Target returns the rule target for the origin, or "" when no rule exists.
func (r Rules) Target(category, subcategory string) string {
	return r[origin{category, subcategory}]
}
