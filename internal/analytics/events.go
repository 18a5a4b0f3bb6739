package analytics

import "time"

type EventType string

const (
	EventCategorize EventType = "categorize"
	EventSearch     EventType = "search"
)

// CategorizeEvent summarizes one categorization request.
type CategorizeEvent struct {
	Type      EventType `json:"type"`
	Tokens    int       `json:"tokens"`
	Hits      int       `json:"hits"`
	Misses    int       `json:"misses"`
	Unknown   []string  `json:"unknown"`
	Buckets   int       `json:"buckets"`
	LatencyMs float64   `json:"latency_ms"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}

// SearchEvent summarizes one vocabulary search.
type SearchEvent struct {
	Type      EventType `json:"type"`
	Query     string    `json:"query"`
	Returned  int       `json:"returned"`
	CacheHit  bool      `json:"cache_hit"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}
