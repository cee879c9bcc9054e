// Package handler exposes the comparison HTTP API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/internal/evaluator"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/internal/evaluator/cache"
	apperrors "github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/tracing"
)

// SnapshotSource loads captured rankings for snapshot comparisons.
type SnapshotSource interface {
	Ranking(ctx context.Context, variant, query string) ([]string, error)
	Variants(ctx context.Context, query string) ([]string, error)
}

// Handler serves comparison requests. The cache, collector and snapshot
// source are optional: a nil dependency degrades that feature instead of
// failing startup.
type Handler struct {
	evaluator *evaluator.Evaluator
	cache     *cache.ScoreCache
	collector *analytics.Collector
	snapshots SnapshotSource
	metrics   *metrics.Metrics
	tracing   bool
	logger    *slog.Logger
}

func New(
	eval *evaluator.Evaluator,
	scoreCache *cache.ScoreCache,
	collector *analytics.Collector,
	snapshots SnapshotSource,
	m *metrics.Metrics,
	tracingEnabled bool,
) *Handler {
	return &Handler{
		evaluator: eval,
		cache:     scoreCache,
		collector: collector,
		snapshots: snapshots,
		metrics:   m,
		tracing:   tracingEnabled,
		logger:    slog.Default().With("component", "compare-handler"),
	}
}

// Compare scores two rankings submitted in the request body.
func (h *Handler) Compare(w http.ResponseWriter, r *http.Request) {
	var req evaluator.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	h.serveComparison(w, r, req, "api")
}

// CompareSnapshots scores two captured rankings for the same query.
func (h *Handler) CompareSnapshots(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		h.writeError(w, http.StatusServiceUnavailable, "snapshot store is not configured")
		return
	}
	q := r.URL.Query()
	query := q.Get("query")
	baseline := q.Get("baseline")
	candidate := q.Get("candidate")
	if query == "" || baseline == "" || candidate == "" {
		h.writeError(w, http.StatusBadRequest, "query, baseline and candidate are required")
		return
	}

	req := evaluator.Request{Measure: evaluator.Measure(q.Get("measure"))}
	if v := q.Get("depth"); v != "" {
		depth, err := strconv.Atoi(v)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "depth must be an integer")
			return
		}
		req.Depth = depth
	}
	if v := q.Get("persistence"); v != "" {
		p, err := strconv.ParseFloat(v, 64)
		if err != nil {
			h.writeError(w, http.StatusBadRequest, "persistence must be a number")
			return
		}
		req.Persistence = p
	}
	if v := q.Get("extrapolate"); v != "" {
		req.Extrapolate = v == "true" || v == "1"
	}

	ctx := r.Context()
	log := logger.FromContext(ctx)
	sDocs, err := h.snapshots.Ranking(ctx, baseline, query)
	if err != nil {
		log.Error("loading baseline snapshot failed", "variant", baseline, "query", query, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}
	tDocs, err := h.snapshots.Ranking(ctx, candidate, query)
	if err != nil {
		log.Error("loading candidate snapshot failed", "variant", candidate, "query", query, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}

	req.S = evaluator.FromStrings(sDocs)
	req.T = evaluator.FromStrings(tDocs)
	h.serveComparison(w, r, req, "snapshots")
}

// SnapshotVariants lists the variants with a captured snapshot for a query.
func (h *Handler) SnapshotVariants(w http.ResponseWriter, r *http.Request) {
	if h.snapshots == nil {
		h.writeError(w, http.StatusServiceUnavailable, "snapshot store is not configured")
		return
	}
	query := r.URL.Query().Get("query")
	if query == "" {
		h.writeError(w, http.StatusBadRequest, "query is required")
		return
	}

	variants, err := h.snapshots.Variants(r.Context(), query)
	if err != nil {
		logger.FromContext(r.Context()).Error("listing snapshot variants failed", "query", query, "error", err)
		h.writeError(w, apperrors.HTTPStatusCode(err), err.Error())
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"query":    query,
		"variants": variants,
	})
}

// serveComparison runs one comparison through cache, measure dispatch,
// metrics and analytics, then writes the result.
func (h *Handler) serveComparison(w http.ResponseWriter, r *http.Request, req evaluator.Request, source string) {
	start := time.Now()
	ctx := r.Context()
	log := logger.FromContext(ctx)

	var span *tracing.Span
	if h.tracing {
		ctx, span = tracing.StartSpan(ctx, "compare", middleware.GetRequestID(ctx))
		span.SetAttr("measure", string(req.Measure))
		span.SetAttr("source", source)
	}

	req = h.evaluator.Normalize(req)

	compute := func() (*evaluator.Result, error) {
		computeCtx := ctx
		if span != nil {
			var child *tracing.Span
			computeCtx, child = tracing.StartChildSpan(ctx, "compute")
			defer child.End()
		}
		return h.evaluator.Compare(computeCtx, req)
	}

	var (
		result   *evaluator.Result
		cacheHit bool
		err      error
	)
	if h.cache != nil {
		result, cacheHit, err = h.cache.GetOrCompute(ctx, req, compute)
	} else {
		result, err = compute()
	}
	if err != nil {
		status := apperrors.HTTPStatusCode(err)
		log.Error("comparison failed",
			"measure", req.Measure,
			"source", source,
			"status", status,
			"error", err,
		)
		h.countComparison(string(req.Measure), statusLabel(status))
		h.trackError(ctx, req, err)
		if span != nil {
			span.SetAttr("error", err.Error())
			span.End()
			span.Log()
		}
		h.writeError(w, status, err.Error())
		return
	}

	elapsed := time.Since(start)
	result.LatencyMs = elapsed.Milliseconds()

	if h.metrics != nil {
		h.metrics.ComparisonsTotal.WithLabelValues(string(result.Measure), "ok").Inc()
		h.metrics.ComparisonDuration.WithLabelValues(string(result.Measure)).Observe(elapsed.Seconds())
		h.metrics.ComparisonScore.WithLabelValues(string(result.Measure)).Observe(result.Score)
		h.metrics.ComparisonListLength.Observe(float64(result.SLength))
		h.metrics.ComparisonListLength.Observe(float64(result.TLength))
	}

	log.Info("comparison completed",
		"measure", result.Measure,
		"score", result.Score,
		"source", source,
		"cache_hit", cacheHit,
		"latency_ms", result.LatencyMs,
	)

	if h.collector != nil {
		h.collector.Track(analytics.ComparisonEvent{
			Type:         analytics.EventComparison,
			Measure:      string(result.Measure),
			Score:        result.Score,
			SLength:      result.SLength,
			TLength:      result.TLength,
			Common:       result.Common,
			Depth:        result.Depth,
			Persistence:  result.Persistence,
			Extrapolated: result.Extrapolated,
			CacheHit:     cacheHit,
			Source:       source,
			LatencyMs:    result.LatencyMs,
			Timestamp:    time.Now(),
			RequestID:    middleware.GetRequestID(ctx),
		})
	}

	if span != nil {
		span.SetAttr("score", result.Score)
		span.SetAttr("cache_hit", cacheHit)
		span.End()
		span.Log()
	}

	h.writeJSON(w, http.StatusOK, result)
}

// CacheStats reports score cache hit/miss counters.
func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "cache is not configured")
		return
	}
	hits, misses := h.cache.Stats()
	total := hits + misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	h.writeJSON(w, http.StatusOK, map[string]any{
		"hits":     hits,
		"misses":   misses,
		"hit_rate": fmt.Sprintf("%.1f%%", hitRate),
	})
}

// CacheInvalidate drops all cached comparison results.
func (h *Handler) CacheInvalidate(w http.ResponseWriter, r *http.Request) {
	if h.cache == nil {
		h.writeError(w, http.StatusServiceUnavailable, "cache is not configured")
		return
	}
	if err := h.cache.Invalidate(r.Context()); err != nil {
		logger.FromContext(r.Context()).Error("cache invalidation failed", "error", err)
		h.writeError(w, http.StatusInternalServerError, "cache invalidation failed")
		return
	}
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "invalidated"})
}

func (h *Handler) countComparison(measure, status string) {
	if h.metrics != nil {
		h.metrics.ComparisonsTotal.WithLabelValues(measure, status).Inc()
	}
}

func (h *Handler) trackError(ctx context.Context, req evaluator.Request, err error) {
	if h.collector == nil {
		return
	}
	h.collector.Track(analytics.ErrorEvent{
		Type:      analytics.EventError,
		Measure:   string(req.Measure),
		Reason:    reasonLabel(err),
		Timestamp: time.Now(),
		RequestID: middleware.GetRequestID(ctx),
	})
}

// reasonLabel folds an error into a low-cardinality label for aggregation.
func reasonLabel(err error) string {
	switch {
	case errors.Is(err, apperrors.ErrDuplicateItem):
		return "duplicate_item"
	case errors.Is(err, apperrors.ErrTypeMismatch):
		return "type_mismatch"
	case errors.Is(err, apperrors.ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, apperrors.ErrInsufficientOverlap):
		return "insufficient_overlap"
	case errors.Is(err, apperrors.ErrSnapshotNotFound):
		return "snapshot_not_found"
	case errors.Is(err, apperrors.ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, apperrors.ErrTimeout):
		return "timeout"
	}
	return "internal"
}

func statusLabel(status int) string {
	if status >= 500 {
		return "error"
	}
	return "invalid"
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
