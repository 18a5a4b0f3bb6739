package categorize

import "strings"

// Tokenize splits comma-separated input, trims each token and drops empty
// ones. Token order is preserved.
func Tokenize(input string) []string {
	parts := strings.Split(input, ",")
	tokens := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			tokens = append(tokens, t)
		}
	}
	return tokens
}

// Deduplicate keeps the first occurrence of each token compared
// case-insensitively, retaining that occurrence's spelling.
func Deduplicate(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	out := make([]string, 0, len(tokens))
	for _, t := range tokens {
		low := strings.ToLower(t)
		if _, dup := seen[low]; dup {
			continue
		}
		seen[low] = struct{}{}
		out = append(out, t)
	}
	return out
}
