package analytics

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/kafka"
)

// scoreBucketCount splits the score range [-1, 1] into equal buckets for the
// distribution reported by Stats.
const scoreBucketCount = 10

type AggregatedStats struct {
	TotalComparisons     int64      `json:"total_comparisons"`
	TotalErrors          int64      `json:"total_errors"`
	CacheHits            int64      `json:"cache_hits"`
	CacheMisses          int64      `json:"cache_misses"`
	AvgLatencyMs         float64    `json:"avg_latency_ms"`
	P50LatencyMs         int64      `json:"p50_latency_ms"`
	P95LatencyMs         int64      `json:"p95_latency_ms"`
	P99LatencyMs         int64      `json:"p99_latency_ms"`
	AvgScore             float64    `json:"avg_score"`
	ScoreBuckets         []int64    `json:"score_buckets"`
	ByMeasure            []KeyCount `json:"by_measure"`
	ErrorReasons         []KeyCount `json:"error_reasons"`
	ComparisonsPerMinute float64    `json:"comparisons_per_minute"`
}

type KeyCount struct {
	Key   string `json:"key"`
	Count int64  `json:"count"`
}

// Aggregator folds the comparison event stream into in-memory statistics
// served by the analytics endpoint.
type Aggregator struct {
	mu               sync.RWMutex
	totalComparisons atomic.Int64
	totalErrors      atomic.Int64
	cacheHits        atomic.Int64
	cacheMisses      atomic.Int64
	latencies        []int64
	measureCounts    map[string]int64
	errorReasons     map[string]int64
	scoreSum         float64
	scoreBuckets     [scoreBucketCount]int64
	startTime        time.Time

	logger *slog.Logger
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		latencies:     make([]int64, 0, 10000),
		measureCounts: make(map[string]int64),
		errorReasons:  make(map[string]int64),
		startTime:     time.Now(),
		logger:        slog.Default().With("component", "analytics-aggregator"),
	}
}

// HandleEvent returns a consumer handler that feeds agg. Undecodable messages
// are logged and skipped so one bad message cannot stall the consumer group.
func HandleEvent(agg *Aggregator) kafka.MessageHandler {
	return func(ctx context.Context, key []byte, value []byte) error {
		event, err := kafka.DecodeJSON[ComparisonEvent](value)
		if err != nil {
			agg.logger.Error("failed to decode comparison event", "error", err)
			return nil
		}
		if event.Type == EventError {
			errEvent, err := kafka.DecodeJSON[ErrorEvent](value)
			if err != nil {
				agg.logger.Error("failed to decode error event", "error", err)
				return nil
			}
			agg.recordError(errEvent)
			return nil
		}
		agg.recordComparison(event)
		return nil
	}
}

func (a *Aggregator) recordComparison(event ComparisonEvent) {
	a.totalComparisons.Add(1)

	if event.CacheHit {
		a.cacheHits.Add(1)
	} else {
		a.cacheMisses.Add(1)
	}

	a.mu.Lock()
	a.latencies = append(a.latencies, event.LatencyMs)
	a.measureCounts[event.Measure]++
	a.scoreSum += event.Score
	a.scoreBuckets[scoreBucket(event.Score)]++
	a.mu.Unlock()
}

func (a *Aggregator) recordError(event ErrorEvent) {
	a.totalErrors.Add(1)

	a.mu.Lock()
	a.errorReasons[event.Reason]++
	a.mu.Unlock()
}

// scoreBucket maps a score in [-1, 1] to its bucket index; out-of-range
// values are clamped into the edge buckets.
func scoreBucket(score float64) int {
	idx := int(float64(scoreBucketCount) * (score + 1) / 2)
	if idx < 0 {
		idx = 0
	}
	if idx >= scoreBucketCount {
		idx = scoreBucketCount - 1
	}
	return idx
}

func (a *Aggregator) Stats() AggregatedStats {
	a.mu.RLock()
	defer a.mu.RUnlock()

	stats := AggregatedStats{
		TotalComparisons: a.totalComparisons.Load(),
		TotalErrors:      a.totalErrors.Load(),
		CacheHits:        a.cacheHits.Load(),
		CacheMisses:      a.cacheMisses.Load(),
		ScoreBuckets:     make([]int64, scoreBucketCount),
	}
	copy(stats.ScoreBuckets, a.scoreBuckets[:])

	if len(a.latencies) > 0 {
		sorted := make([]int64, len(a.latencies))
		copy(sorted, a.latencies)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

		var sum int64
		for _, l := range sorted {
			sum += l
		}
		stats.AvgLatencyMs = float64(sum) / float64(len(sorted))
		stats.P50LatencyMs = percentile(sorted, 50)
		stats.P95LatencyMs = percentile(sorted, 95)
		stats.P99LatencyMs = percentile(sorted, 99)
	}
	if stats.TotalComparisons > 0 {
		stats.AvgScore = a.scoreSum / float64(stats.TotalComparisons)
	}
	stats.ByMeasure = topN(a.measureCounts, 10)
	stats.ErrorReasons = topN(a.errorReasons, 10)
	elapsed := time.Since(a.startTime).Minutes()
	if elapsed > 0 {
		stats.ComparisonsPerMinute = float64(stats.TotalComparisons) / elapsed
	}

	return stats
}

func percentile(sorted []int64, pct int) int64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := (pct * len(sorted)) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}

func topN(counts map[string]int64, n int) []KeyCount {
	result := make([]KeyCount, 0, len(counts))
	for key, count := range counts {
		result = append(result, KeyCount{Key: key, Count: count})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Count != result[j].Count {
			return result[i].Count > result[j].Count
		}
		return result[i].Key < result[j].Key
	})
	if len(result) > n {
		result = result[:n]
	}
	return result
}
