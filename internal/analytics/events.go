package analytics

import "time"

type EventType string

const (
	EventComparison EventType = "comparison"
	EventError      EventType = "comparison_error"
)

// ComparisonEvent is emitted for every completed ranking comparison, whether
// served from cache or computed.
type ComparisonEvent struct {
	Type         EventType `json:"type"`
	Measure      string    `json:"measure"`
	Score        float64   `json:"score"`
	SLength      int       `json:"s_length"`
	TLength      int       `json:"t_length"`
	Common       int       `json:"common"`
	Depth        int       `json:"depth,omitempty"`
	Persistence  float64   `json:"persistence,omitempty"`
	Extrapolated bool      `json:"extrapolated,omitempty"`
	CacheHit     bool      `json:"cache_hit"`
	Source       string    `json:"source,omitempty"`
	LatencyMs    int64     `json:"latency_ms"`
	Timestamp    time.Time `json:"timestamp"`
	RequestID    string    `json:"request_id"`
}

// ErrorEvent is emitted when a comparison request is rejected or fails.
type ErrorEvent struct {
	Type      EventType `json:"type"`
	Measure   string    `json:"measure"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
}
