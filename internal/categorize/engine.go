// Package categorize assigns input terms to output buckets using the
// vocabulary, per-request mapping rules and a configured bucket order.
package categorize

import (
	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/vocabulary"
)

// Lookuper resolves a term to its vocabulary record.
type Lookuper interface {
	Lookup(term string) (vocabulary.Record, bool)
}

// Request is one categorization call.
type Request struct {
	// Tags is the raw comma-separated input.
	Tags            string
	Deduplicate     bool
	Mapping         [][]string
	Order           []string
	DefaultCategory string
}

// Stats summarizes one run.
type Stats struct {
	Tokens  int
	Hits    int
	Misses  int
	Unknown []string
}

// Engine runs categorization against a vocabulary. It never mutates the
// vocabulary and performs no I/O.
type Engine struct {
	vocab           Lookuper
	defaultCategory string
}

// NewEngine creates an engine. defaultCategory is used when a request does
// not name one.
func NewEngine(vocab Lookuper, defaultCategory string) *Engine {
	return &Engine{vocab: vocab, defaultCategory: defaultCategory}
}

// Categorize buckets the request's tokens.
func (e *Engine) Categorize(req Request) (*Result, Stats) {
	tokens := Tokenize(req.Tags)
	if req.Deduplicate {
		tokens = Deduplicate(tokens)
	}
	rules := ParseRules(req.Mapping)
	fallback := req.DefaultCategory
	if fallback == "" {
		fallback = e.defaultCategory
	}

	res := newResult(len(req.Order) + 1)
	for _, name := range req.Order {
		res.ensure(name)
	}

	stats := Stats{Tokens: len(tokens)}
	for _, tok := range tokens {
		rec, ok := e.vocab.Lookup(tok)
		if !ok {
			stats.Misses++
			stats.Unknown = append(stats.Unknown, tok)
			res.add(fallback, Item{Tag: tok})
			continue
		}
		stats.Hits++
		res.add(resolveTarget(rules, rec, fallback), Item{Tag: tok, Translation: rec.Translation})
	}
	return res, stats
}

// resolveTarget applies, in order: a non-empty rule target, the record's
// own non-empty category, the fallback.
func resolveTarget(rules Rules, rec vocabulary.Record, fallback string) string {
	if target := rules.Target(rec.Category, rec.Subcategory); target != "" {
		return target
	}
	if rec.Category != "" {
		return rec.Category
	}
	return fallback
}
