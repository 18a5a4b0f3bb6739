package categorize

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Adithya-Monish-Kumar-K/Tag-Categorization-Service/internal/vocabulary"
)

func newVocab(records ...vocabulary.Record) *vocabulary.Store {
	s := vocabulary.NewStore(nil)
	s.Load(records)
	return s
}

func TestTokenize(t *testing.T) {
	assert.Equal(t, []string{"a", "b c", "d"}, Tokenize(" a ,, b c ,\td ,  "))
	assert.Empty(t, Tokenize(""))
	assert.Empty(t, Tokenize(" , ,"))
}

func TestDeduplicateKeepsFirstSpelling(t *testing.T) {
	assert.Equal(t, []string{"A", "B"}, Deduplicate(Tokenize("A, a, B")))
	assert.Equal(t, []string{"Long_Hair", "long hair"}, Deduplicate([]string{"Long_Hair", "long_hair", "long hair"}))
}

func TestParseRulesSkipsShortEntries(t *testing.T) {
	rules := ParseRules([][]string{
		{"Hair"},
		{"Hair", "Style"},
		{"Hair", "Style", "Look", "ignored"},
		{"Eyes", "Color", "Face"},
		{"Eyes", "Color", "Head"},
	})
	assert.Len(t, rules, 2)
	assert.Equal(t, "Look", rules.Target("Hair", "Style"))
	assert.Equal(t, "Head", rules.Target("Eyes", "Color"))
	assert.Equal(t, "", rules.Target("Hair", "Color"))
}

func TestCategorizeScenario(t *testing.T) {
	vocab := newVocab(vocabulary.Record{Tag: "long_hair", Category: "Hair", Subcategory: "Style", Translation: "长发"})
	eng := NewEngine(vocab, "misc")

	res, stats := eng.Categorize(Request{
		Tags:            "long hair, unknown_tag",
		Order:           []string{"Hair"},
		DefaultCategory: "misc",
	})

	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.JSONEq(t, `{"Hair":[{"tag":"long hair","trans":"长发"}],"misc":[{"tag":"unknown_tag","trans":""}]}`, string(out))
	assert.Equal(t, `{"Hair":[{"tag":"long hair","trans":"长发"}],"misc":[{"tag":"unknown_tag","trans":""}]}`, string(out))
	assert.Equal(t, Stats{Tokens: 2, Hits: 1, Misses: 1, Unknown: []string{"unknown_tag"}}, stats)
}

func TestEmptyRuleTargetFallsBackToOriginCategory(t *testing.T) {
	vocab := newVocab(vocabulary.Record{Tag: "sneakers", Category: "Clothing", Subcategory: "Shoes"})
	eng := NewEngine(vocab, "misc")

	res, _ := eng.Categorize(Request{
		Tags:    "sneakers",
		Mapping: [][]string{{"Clothing", "Shoes", ""}},
	})
	assert.Equal(t, []string{"Clothing"}, res.Order())
}

func TestRuleTargetWins(t *testing.T) {
	vocab := newVocab(
		vocabulary.Record{Tag: "sneakers", Category: "Clothing", Subcategory: "Shoes"},
		vocabulary.Record{Tag: "hat", Category: "Clothing", Subcategory: "Head"},
	)
	eng := NewEngine(vocab, "misc")

	res, _ := eng.Categorize(Request{
		Tags:    "sneakers, hat",
		Mapping: [][]string{{"Clothing", "Shoes", "Feet"}},
	})
	feet, ok := res.Bucket("Feet")
	require.True(t, ok)
	assert.Equal(t, []Item{{Tag: "sneakers"}}, feet)
	assert.Equal(t, []string{"Feet", "Clothing"}, res.Order())
}

func TestEmptyCategoryUsesDefault(t *testing.T) {
	vocab := newVocab(vocabulary.Record{Tag: "solo", Subcategory: "People", Translation: "单人"})

	res, stats := NewEngine(vocab, "misc").Categorize(Request{Tags: "solo"})
	items, ok := res.Bucket("misc")
	require.True(t, ok)
	assert.Equal(t, []Item{{Tag: "solo", Translation: "单人"}}, items)
	assert.Equal(t, 1, stats.Hits)

	res, _ = NewEngine(vocab, "misc").Categorize(Request{Tags: "solo", DefaultCategory: "other"})
	assert.Equal(t, []string{"other"}, res.Order())
}

func TestSeededBucketsPrecedeAdHoc(t *testing.T) {
	vocab := newVocab(
		vocabulary.Record{Tag: "a", Category: "X"},
		vocabulary.Record{Tag: "z", Category: "Z"},
	)
	res, _ := NewEngine(vocab, "misc").Categorize(Request{
		Tags:  "z, nope, a",
		Order: []string{"X", "Y", "X"},
	})

	assert.Equal(t, []string{"X", "Y", "Z", "misc"}, res.Order())
	y, ok := res.Bucket("Y")
	require.True(t, ok)
	assert.Empty(t, y)

	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Equal(t, `{"X":[{"tag":"a","trans":""}],"Y":[],"Z":[{"tag":"z","trans":""}],"misc":[{"tag":"nope","trans":""}]}`, string(out))
}

func TestCaseAndSeparatorInsensitiveLookupKeepsSpelling(t *testing.T) {
	vocab := newVocab(vocabulary.Record{Tag: "long_hair", Category: "Hair", Translation: "长发"})

	res, _ := NewEngine(vocab, "misc").Categorize(Request{Tags: "LONG_HAIR, Long Hair, long_hair"})
	items, _ := res.Bucket("Hair")
	assert.Equal(t, []Item{
		{Tag: "LONG_HAIR", Translation: "长发"},
		{Tag: "Long Hair", Translation: "长发"},
		{Tag: "long_hair", Translation: "长发"},
	}, items)

	res, _ = NewEngine(vocab, "misc").Categorize(Request{Tags: "LONG_HAIR, long_hair, Long Hair", Deduplicate: true})
	items, _ = res.Bucket("Hair")
	assert.Equal(t, []Item{
		{Tag: "LONG_HAIR", Translation: "长发"},
		{Tag: "Long Hair", Translation: "长发"},
	}, items)
}

func TestRoundTripOwnCategories(t *testing.T) {
	records := []vocabulary.Record{
		{Tag: "red", Category: "Color"},
		{Tag: "cat", Category: "Animal"},
		{Tag: "thing"},
	}
	res, _ := NewEngine(newVocab(records...), "misc").Categorize(Request{
		Tags:            "red, cat, thing, ghost",
		DefaultCategory: "misc",
	})

	for _, rec := range records {
		want := rec.Category
		if want == "" {
			want = "misc"
		}
		items, ok := res.Bucket(want)
		require.True(t, ok, rec.Tag)
		assert.Contains(t, items, Item{Tag: rec.Tag}, rec.Tag)
	}
	misc, _ := res.Bucket("misc")
	assert.Contains(t, misc, Item{Tag: "ghost"})
}

func TestEmptyVocabularyAndInput(t *testing.T) {
	eng := NewEngine(newVocab(), "misc")

	res, stats := eng.Categorize(Request{Tags: "", Order: []string{"A"}})
	assert.Equal(t, []string{"A"}, res.Order())
	assert.Zero(t, stats.Tokens)

	res, _ = eng.Categorize(Request{Tags: "x"})
	assert.Equal(t, []string{"misc"}, res.Order())
}

func TestResultUnmarshalKeepsOrder(t *testing.T) {
	var res Result
	require.NoError(t, json.Unmarshal([]byte(`{"b":[{"tag":"x","trans":"y"}],"a":[]}`), &res))
	assert.Equal(t, []string{"b", "a"}, res.Order())
	items, _ := res.Bucket("b")
	assert.Equal(t, []Item{{Tag: "x", Translation: "y"}}, items)

	assert.Error(t, json.Unmarshal([]byte(`[1]`), &res))
}

func BenchmarkCategorize(b *testing.B) {
	records := make([]vocabulary.Record, 0, 20000)
	for i := range 20000 {
		records = append(records, vocabulary.Record{
			Tag:         fmt.Sprintf("tag_%d", i),
			Category:    fmt.Sprintf("cat%d", i%40),
			Subcategory: fmt.Sprintf("sub%d", i%7),
		})
	}
	eng := NewEngine(newVocab(records...), "misc")
	terms := make([]string, 0, 200)
	for i := range 200 {
		terms = append(terms, fmt.Sprintf("Tag %d", i*97))
	}
	req := Request{
		Tags:        strings.Join(terms, ", "),
		Deduplicate: true,
		Mapping:     [][]string{{"cat1", "sub1", "one"}},
		Order:       []string{"cat0", "cat1", "cat2"},
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		eng.Categorize(req)
	}
}
