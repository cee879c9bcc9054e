// Package evaluator orchestrates ranking comparisons. It validates requests,
// builds ranked lists from untyped input, dispatches to the requested
// similarity measure, and assembles the result with coverage diagnostics.
package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/internal/ranklist"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/internal/similarity"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/config"
	apperrors "github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/logger"
)

// Measure selects the similarity measure applied to a pair of rankings.
type Measure string

const (
	// MeasureRBO is rank-biased overlap evaluated to a fixed depth.
	MeasureRBO Measure = "rbo"
	// MeasureRBOExt is rank-biased overlap extrapolated to unseen depths,
	// defined for lists of unequal length.
	MeasureRBOExt Measure = "rbo_ext"
	// MeasureKendall is the Kendall tau rank correlation over the common
	// elements of both lists.
	MeasureKendall Measure = "kendall"
)

// ParseMeasure validates a measure name. The empty string selects MeasureRBO.
func ParseMeasure(s string) (Measure, error) {
	switch Measure(s) {
	case "":
		return MeasureRBO, nil
	case MeasureRBO, MeasureRBOExt, MeasureKendall:
		return Measure(s), nil
	}
	return "", apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest, "unknown measure %q", s)
}

// Request describes one comparison between two rankings. Items may be any
// JSON scalar; each list must be duplicate-free.
type Request struct {
	S           []any   `json:"s"`
	T           []any   `json:"t"`
	Measure     Measure `json:"measure,omitempty"`
	Depth       int     `json:"depth,omitempty"`
	Persistence float64 `json:"persistence,omitempty"`
	Extrapolate bool    `json:"extrapolate,omitempty"`
}

// Result is the outcome of a comparison.
type Result struct {
	Measure      Measure `json:"measure"`
	Score        float64 `json:"score"`
	SLength      int     `json:"s_length"`
	TLength      int     `json:"t_length"`
	Common       int     `json:"common"`
	SCoverage    float64 `json:"s_coverage"`
	TCoverage    float64 `json:"t_coverage"`
	Depth        int     `json:"depth,omitempty"`
	Persistence  float64 `json:"persistence,omitempty"`
	Extrapolated bool    `json:"extrapolated,omitempty"`
	LatencyMs    int64   `json:"latency_ms"`
}

// Evaluator applies similarity measures to pairs of rankings.
type Evaluator struct {
	cfg    config.EvaluatorConfig
	logger *slog.Logger
}

// New creates an Evaluator, filling in defaults for zero config values.
func New(cfg config.EvaluatorConfig) *Evaluator {
	if cfg.DefaultPersistence <= 0 || cfg.DefaultPersistence >= 1 {
		cfg.DefaultPersistence = similarity.DefaultPersistence
	}
	if cfg.MaxListLength <= 0 {
		cfg.MaxListLength = 10000
	}
	if cfg.ProgressDelta <= 0 {
		cfg.ProgressDelta = similarity.DefaultProgressDelta
	}
	return &Evaluator{
		cfg:    cfg,
		logger: logger.WithComponent("evaluator"),
	}
}

// Normalize fills request defaults so equivalent requests compare (and cache)
// identically: an empty measure becomes rbo, and the extrapolated measure
// picks up the configured default persistence.
func (e *Evaluator) Normalize(req Request) Request {
	if req.Measure == "" {
		req.Measure = MeasureRBO
	}
	if req.Measure == MeasureRBOExt && req.Persistence <= 0 {
		req.Persistence = e.cfg.DefaultPersistence
	}
	if req.Depth < 0 {
		req.Depth = 0
	}
	return req
}

// Compare runs one comparison and returns the scored result.
func (e *Evaluator) Compare(ctx context.Context, req Request) (*Result, error) {
	return e.compare(ctx, req, nil)
}

// CompareWithProgress behaves like Compare and additionally reports
// percentage progress at the configured granularity while the measure walks
// the rankings.
func (e *Evaluator) CompareWithProgress(ctx context.Context, req Request, fn similarity.Progress) (*Result, error) {
	return e.compare(ctx, req, fn)
}

func (e *Evaluator) compare(ctx context.Context, req Request, progress similarity.Progress) (*Result, error) {
	start := time.Now()
	log := logger.FromContext(ctx)
	req = e.Normalize(req)

	measure, err := ParseMeasure(string(req.Measure))
	if err != nil {
		return nil, err
	}
	if len(req.S) > e.cfg.MaxListLength || len(req.T) > e.cfg.MaxListLength {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, http.StatusBadRequest,
			"ranking exceeds the configured limit of %d items", e.cfg.MaxListLength)
	}

	s, err := ranklist.FromAny(req.S)
	if err != nil {
		return nil, fmt.Errorf("first ranking: %w", err)
	}
	t, err := ranklist.FromAny(req.T)
	if err != nil {
		return nil, fmt.Errorf("second ranking: %w", err)
	}

	rs := similarity.New(s, t)
	if progress != nil {
		rs.OnProgress(e.cfg.ProgressDelta, progress)
	}

	result := &Result{
		Measure: measure,
		SLength: s.Len(),
		TLength: t.Len(),
	}
	switch measure {
	case MeasureRBO:
		result.Score, err = rs.RBO(similarity.RBOParams{
			Depth:       req.Depth,
			Persistence: req.Persistence,
			Extrapolate: req.Extrapolate,
		})
		result.Depth = fixedDepth(s.Len(), t.Len(), req.Depth)
		result.Persistence = req.Persistence
		if result.Persistence == 0 {
			result.Persistence = 1
		}
		result.Extrapolated = req.Extrapolate && result.Persistence < 1
	case MeasureRBOExt:
		result.Score, err = rs.RBOExt(req.Persistence)
		result.Depth = max(s.Len(), t.Len())
		result.Persistence = req.Persistence
		result.Extrapolated = true
	case MeasureKendall:
		result.Score, err = rs.Kendall()
	}
	if err != nil {
		return nil, err
	}

	coverage := rs.Coverage()
	result.Common = coverage.Common
	result.SCoverage = coverage.SFraction
	result.TCoverage = coverage.TFraction
	result.LatencyMs = time.Since(start).Milliseconds()

	log.Debug("comparison completed",
		"measure", measure,
		"score", result.Score,
		"s_length", result.SLength,
		"t_length", result.TLength,
		"common", result.Common,
	)
	return result, nil
}

// fixedDepth mirrors the clamping applied by the fixed-depth measure.
func fixedDepth(sLen, tLen, depth int) int {
	k := min(sLen, tLen)
	if depth > 0 && depth < k {
		k = depth
	}
	return k
}

// FromStrings adapts a string ranking to the untyped item form carried by
// Request.
func FromStrings(items []string) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = item
	}
	return out
}
