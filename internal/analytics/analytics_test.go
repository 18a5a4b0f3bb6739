package analytics

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregatorStats(t *testing.T) {
	a := NewAggregator()
	a.Record(CategorizeEvent{Type: EventCategorize, Tokens: 3, Hits: 2, Misses: 1, Unknown: []string{"Foo"}, LatencyMs: 1})
	a.Record(CategorizeEvent{Type: EventCategorize, Tokens: 1, Misses: 1, Unknown: []string{"foo"}, LatencyMs: 3})
	a.Record(CategorizeEvent{Type: EventCategorize, Tokens: 2, Misses: 2, Unknown: []string{"bar", "baz"}, LatencyMs: 2})
	a.Record(SearchEvent{Type: EventSearch, Query: "hair", Returned: 4, CacheHit: true})
	a.Record(SearchEvent{Type: EventSearch, Query: " Nothing ", Returned: 0})
	a.Record("ignored")

	s := a.Stats()
	assert.Equal(t, int64(3), s.TotalRequests)
	assert.Equal(t, int64(6), s.TotalTokens)
	assert.Equal(t, int64(2), s.Hits)
	assert.Equal(t, int64(4), s.Misses)
	assert.InDelta(t, 2.0/6.0, s.HitRate, 1e-9)
	assert.InDelta(t, 2.0, s.AvgTokensPerRequest, 1e-9)
	assert.InDelta(t, 2.0, s.AvgLatencyMs, 1e-9)
	assert.Equal(t, 2.0, s.P50LatencyMs)
	assert.Equal(t, []TermCount{{"foo", 2}, {"bar", 1}, {"baz", 1}}, s.TopUnknownTerms)
	assert.Equal(t, int64(2), s.TotalSearches)
	assert.Equal(t, int64(1), s.SearchCacheHits)
	assert.Equal(t, []TermCount{{"nothing", 1}}, s.ZeroResultQueries)
}

func TestTopUnknownTermsCapped(t *testing.T) {
	a := NewAggregator()
	var unknown []string
	for i := range 30 {
		unknown = append(unknown, string(rune('a'+i%26))+string(rune('a'+i/26)))
	}
	a.Record(CategorizeEvent{Unknown: unknown})
	assert.Len(t, a.Stats().TopUnknownTerms, topUnknownTerms)
}

func TestCollectorDeliversOnClose(t *testing.T) {
	a := NewAggregator()
	c := NewCollector(a, 16)
	c.Start(context.Background())
	for range 5 {
		c.Track(CategorizeEvent{Tokens: 1})
	}
	c.Close()
	assert.Equal(t, int64(5), a.Stats().TotalRequests)
}

func TestHandler(t *testing.T) {
	a := NewAggregator()
	a.Record(CategorizeEvent{Tokens: 2, Hits: 2})

	rec := httptest.NewRecorder()
	NewHandler(a).Stats(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var got AggregatedStats
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, int64(1), got.TotalRequests)
	assert.Equal(t, 1.0, got.HitRate)
}
