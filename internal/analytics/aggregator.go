package analytics

import (
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

const (
	maxLatencySamples = 10000
	topUnknownTerms   = 20
	topZeroQueries    = 10
)

type AggregatedStats struct {
	TotalRequests       int64       `json:"total_requests"`
	TotalTokens         int64       `json:"total_tokens"`
	Hits                int64       `json:"hits"`
	Misses              int64       `json:"misses"`
	HitRate             float64     `json:"hit_rate"`
	AvgTokensPerRequest float64     `json:"avg_tokens_per_request"`
	AvgLatencyMs        float64     `json:"avg_latency_ms"`
	P50LatencyMs        float64     `json:"p50_latency_ms"`
	P95LatencyMs        float64     `json:"p95_latency_ms"`
	P99LatencyMs        float64     `json:"p99_latency_ms"`
	TopUnknownTerms     []TermCount `json:"top_unknown_terms"`
	TotalSearches       int64       `json:"total_searches"`
	SearchCacheHits     int64       `json:"search_cache_hits"`
	ZeroResultSearches  int64       `json:"zero_result_searches"`
	ZeroResultQueries   []TermCount `json:"zero_result_queries"`
	RequestsPerMinute   float64     `json:"requests_per_minute"`
}

type TermCount struct {
	Term  string `json:"term"`
	Count int64  `json:"count"`
}

// Aggregator accumulates categorization and search statistics in memory.
type Aggregator struct {
	mu                sync.RWMutex
	totalRequests     atomic.Int64
	totalTokens       atomic.Int64
	hits              atomic.Int64
	misses            atomic.Int64
	totalSearches     atomic.Int64
	searchCacheHits   atomic.Int64
	zeroResults       atomic.Int64
	latencies         []float64
	nextLatency       int
	unknownCounts     map[string]int64
	zeroResultQueries map[string]int64
	startTime         time.Time
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:         make([]float64, 0, 1024),
		unknownCounts:     make(map[string]int64),
		zeroResultQueries: make(map[string]int64),
		startTime:         time.Now(),
	}
}

// Record folds one event into the totals. Unknown event types are ignored.
func (a *Aggregator) Record(event any) {
	switch e := event.(type) {
	case CategorizeEvent:
		a.recordCategorize(e)
	case SearchEvent:
		a.recordSearch(e)
	}
}

func (a *Aggregator) recordCategorize(e CategorizeEvent) {
	a.totalRequests.Add(1)
	a.totalTokens.Add(int64(e.Tokens))
	a.hits.Add(int64(e.Hits))
	a.misses.Add(int64(e.Misses))

	a.mu.Lock()
	if len(a.latencies) < maxLatencySamples {
		a.latencies = append(a.latencies, e.LatencyMs)
	} else {
		a.latencies[a.nextLatency] = e.LatencyMs
		a.nextLatency = (a.nextLatency + 1) % maxLatencySamples
	}
	for _, term := range e.Unknown {
		a.unknownCounts[strings.ToLower(term)]++
	}
	a.mu.Unlock()
}

func (a *Aggregator) recordSearch(e SearchEvent) {
	a.totalSearches.Add(1)
	if e.CacheHit {
		a.searchCacheHits.Add(1)
	}
	if e.Returned == 0 {
		a.zeroResults.Add(1)
		a.mu.Lock()
		a.zeroResultQueries[strings.ToLower(strings.TrimSpace(e.Query))]++
		a.mu.Unlock()
	}
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalRequests:      a.totalRequests.Load(),
		TotalTokens:        a.totalTokens.Load(),
		Hits:               a.hits.Load(),
		Misses:             a.misses.Load(),
		TotalSearches:      a.totalSearches.Load(),
		SearchCacheHits:    a.searchCacheHits.Load(),
		ZeroResultSearches: a.zeroResults.Load(),
	}
	if looked := stats.Hits + stats.Misses; looked > 0 {
		stats.HitRate = float64(stats.Hits) / float64(looked)
	}
	if stats.TotalRequests > 0 {
		stats.AvgTokensPerRequest = float64(stats.TotalTokens) / float64(stats.TotalRequests)
	}
	if len(a.latencies) > 0 {
		sorted := make([]float64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Float64s(sorted)

		var sum float64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = sum / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	stats.TopUnknownTerms = topN(a.unknownCounts, topUnknownTerms)
	stats.ZeroResultQueries = topN(a.zeroResultQueries, topZeroQueries)
	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.RequestsPerMinute = float64(stats.TotalRequests) / elapsed
	}

	return stats
}

func percentile(sorted []float64, pct int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

// topN orders by count descending, then term ascending for stable output.
func topN(counts map[string]int64, n int) []TermCount {
	result := make([]TermCount, 0, len(counts))
	for term, count := range counts {
		result = append(result, TermCount{Term: term, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Term < result[j].Term
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
