package similarity

import (
	"fmt"
	"net/http"
	"sort"

	apperrors "github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/errors"
)

// Kendall computes the rank correlation between the two lists after
// restricting both to their common elements, delegating the coefficient to
// the configured collaborator (stats.KendallTau unless replaced). Only the
// coefficient is surfaced; the significance value stays internal.
//
// Correlation needs conjoint rankings, so items appearing in just one list
// are dropped first. How much that discards is available through Coverage
// and is logged at debug level; it never affects the returned value.
func (rs *RankingSimilarity[T]) Kendall() (float64, error) {
	common := rs.commonElements()
	if len(common) < 2 {
		return 0, apperrors.Newf(apperrors.ErrInsufficientOverlap, http.StatusUnprocessableEntity,
			"rank correlation needs at least 2 common elements, found %d", len(common))
	}

	report := rs.coverage(common)
	rs.logger.Debug("restricted lists to common elements",
		"common", report.Common,
		"s_fraction", report.SFraction,
		"t_fraction", report.TFraction,
	)

	// Order the common items by their rendered identity so both rank vectors
	// pair up the same way. The coefficient is invariant under any shared
	// ordering; rendering just supplies a total order for arbitrary T.
	type keyed struct {
		key  string
		item T
	}
	ordered := make([]keyed, 0, len(common))
	for item := range common {
		ordered = append(ordered, keyed{key: fmt.Sprint(item), item: item})
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].key < ordered[j].key })

	x := make([]float64, len(ordered))
	y := make([]float64, len(ordered))
	for i, entry := range ordered {
		sRank, _ := rs.s.RankOf(entry.item)
		tRank, _ := rs.t.RankOf(entry.item)
		x[i] = float64(sRank)
		y[i] = float64(tRank)
	}

	coefficient, _, err := rs.correlate(x, y)
	if err != nil {
		return 0, fmt.Errorf("computing rank correlation: %w", err)
	}
	return coefficient, nil
}
