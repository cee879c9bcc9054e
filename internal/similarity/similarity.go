// Package similarity implements the comparison measures between two ranked
// lists: rank-biased overlap at a fixed evaluation depth, the fully
// extrapolated rank-biased overlap, and a Kendall rank correlation restricted
// to the lists' common elements.
//
// The overlap measures are intersection based and handle non-conjoint lists
// (lists that do not share all their items) of uneven length. The Kendall
// path is correlation based and only sees the common elements; its coverage
// diagnostics report how much of each list that leaves out.
package similarity

import (
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/internal/ranklist"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/logger"
	"github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/stats"
)

const (
	// DefaultPersistence is the persistence used by RBOExt when the caller
	// passes a non-positive value.
	DefaultPersistence = 0.98

	// DefaultProgressDelta is the reporting granularity, in percent, used
	// when OnProgress is given a non-positive delta.
	DefaultProgressDelta = 10
)

// CorrelationFunc computes a rank correlation coefficient and its
// significance for two paired rank vectors of equal length.
type CorrelationFunc func(x, y []float64) (coefficient, significance float64, err error)

// Progress receives integer completion percentages while a measure walks the
// evaluation depth. It is purely observational and never affects results.
type Progress func(pct int)

// CoverageReport describes how much of each list participates in the
// common-element comparison. Advisory only.
type CoverageReport struct {
	// Common is the number of elements the two lists share.
	Common int
	// SFraction and TFraction are the shares of each list covered by the
	// common elements, in [0, 1].
	SFraction float64
	TFraction float64
}

// RankingSimilarity binds two validated ranked lists and computes similarity
// measures over them. Construct with New; the measures may be called any
// number of times and are independent of each other.
type RankingSimilarity[T comparable] struct {
	s, t *ranklist.List[T]

	correlate     CorrelationFunc
	progressFn    Progress
	progressDelta int

	logger *slog.Logger
}

// New builds a RankingSimilarity over s and t with the default Kendall
// collaborator and no progress reporting.
func New[T comparable](s, t *ranklist.List[T]) *RankingSimilarity[T] {
	return &RankingSimilarity[T]{
		s:             s,
		t:             t,
		correlate:     stats.KendallTau,
		progressDelta: DefaultProgressDelta,
		logger:        logger.WithComponent("similarity"),
	}
}

// SetCorrelation replaces the rank-correlation collaborator used by Kendall.
// A nil fn keeps the current one.
func (rs *RankingSimilarity[T]) SetCorrelation(fn CorrelationFunc) {
	if fn != nil {
		rs.correlate = fn
	}
}

// OnProgress registers fn to receive completion percentages roughly every
// deltaPct percent during the measure loops, with a final call at 100.
// deltaPct <= 0 selects DefaultProgressDelta; a nil fn disables reporting.
func (rs *RankingSimilarity[T]) OnProgress(deltaPct int, fn Progress) {
	if deltaPct <= 0 {
		deltaPct = DefaultProgressDelta
	}
	rs.progressDelta = deltaPct
	rs.progressFn = fn
}

// Coverage reports the common-element diagnostics for the bound lists.
func (rs *RankingSimilarity[T]) Coverage() CoverageReport {
	return rs.coverage(rs.commonElements())
}

func (rs *RankingSimilarity[T]) coverage(common map[T]struct{}) CoverageReport {
	report := CoverageReport{Common: len(common)}
	if n := rs.s.Len(); n > 0 {
		report.SFraction = float64(len(common)) / float64(n)
	}
	if n := rs.t.Len(); n > 0 {
		report.TFraction = float64(len(common)) / float64(n)
	}
	return report
}

func (rs *RankingSimilarity[T]) commonElements() map[T]struct{} {
	common := make(map[T]struct{})
	for i := 0; i < rs.s.Len(); i++ {
		if item := rs.s.At(i); rs.t.Contains(item) {
			common[item] = struct{}{}
		}
	}
	return common
}

func (rs *RankingSimilarity[T]) meter(total int) *progressMeter {
	if rs.progressFn == nil {
		return nil
	}
	return &progressMeter{fn: rs.progressFn, delta: rs.progressDelta, total: total}
}

// progressMeter emits completion percentages at delta-percent boundaries and
// always ends on 100 at the final depth.
type progressMeter struct {
	fn    Progress
	delta int
	total int
	old   int
}

func (m *progressMeter) tick(d int) {
	if m == nil {
		return
	}
	cur := 100 * d / m.total
	if cur >= m.old+m.delta {
		m.fn(cur)
		m.old = cur
	}
	if d == m.total-1 {
		m.fn(100)
	}
}
