package similarity

import (
	"math"
	"net/http"

	apperrors "github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/errors"
)

// RBOParams controls the fixed-depth rank-biased overlap. The zero value
// selects the classic defaults: full depth, unweighted overlap, no
// extrapolation.
type RBOParams struct {
	// Depth bounds the evaluation. Non-positive values, or values deeper
	// than the shorter list, clamp to the shorter list's length.
	Depth int

	// Persistence is the top-weightedness parameter p. Zero selects the
	// unweighted measure (p = 1), under which the result is the classical
	// average overlap of Fagin et al. Otherwise it must lie in (0, 1]:
	// smaller values concentrate the weight near the top of the lists.
	Persistence float64

	// Extrapolate adds the geometric tail bound A[k-1]*p^k to the result.
	// It only applies to the weighted measure; with p = 1 the plain average
	// overlap is returned unchanged.
	Extrapolate bool
}

// RBO computes rank-biased overlap at a fixed evaluation depth, following
// Eq. (4) (p = 1) and Eq. (7) (p < 1) of Webber, Moffat and Zobel, "A
// Similarity Measure for Indefinite Rankings" (TOIS 2010). The agreement at
// each depth is derived incrementally from running item sets, so a call is
// O(k) in time and space.
func (rs *RankingSimilarity[T]) RBO(params RBOParams) (float64, error) {
	p := params.Persistence
	if p == 0 {
		p = 1.0
	}
	if p < 0 || p > 1 {
		return 0, apperrors.Newf(apperrors.ErrInvalidParameter, http.StatusBadRequest,
			"persistence must be in (0, 1], got %v", p)
	}

	k := min(rs.s.Len(), rs.t.Len())
	if params.Depth > 0 && params.Depth < k {
		k = params.Depth
	}
	if k == 0 {
		return 0, apperrors.New(apperrors.ErrInvalidParameter, http.StatusBadRequest,
			"both lists need at least one ranked item")
	}

	weights := make([]float64, k)
	if p == 1 {
		for d := range weights {
			weights[d] = 1.0
		}
	} else {
		pd := 1.0
		for d := range weights {
			weights[d] = (1 - p) * pd
			pd *= p
		}
	}

	agreement := make([]float64, k)
	overlap := make([]float64, k)

	sRunning := make(map[T]struct{}, k)
	tRunning := make(map[T]struct{}, k)
	sRunning[rs.s.At(0)] = struct{}{}
	tRunning[rs.t.At(0)] = struct{}{}
	if rs.s.At(0) == rs.t.At(0) {
		agreement[0] = 1
		overlap[0] = weights[0]
	}

	meter := rs.meter(k)
	for d := 1; d < k; d++ {
		meter.tick(d)

		sd, td := rs.s.At(d), rs.t.At(d)
		inc := 0.0
		// Membership is checked against the sets BEFORE this depth's items
		// join them. For duplicate-free lists equality excludes both
		// membership cases; the two membership checks may both fire, growing
		// the overlap by two.
		if _, ok := tRunning[sd]; ok {
			inc++
		}
		if _, ok := sRunning[td]; ok {
			inc++
		}
		if sd == td {
			inc++
		}

		agreement[d] = (agreement[d-1]*float64(d) + inc) / float64(d+1)
		if p == 1 {
			overlap[d] = (overlap[d-1]*float64(d) + agreement[d]) / float64(d+1)
		} else {
			overlap[d] = overlap[d-1] + weights[d]*agreement[d]
		}

		sRunning[sd] = struct{}{}
		tRunning[td] = struct{}{}
	}

	result := overlap[k-1]
	if params.Extrapolate && p < 1 {
		result += agreement[k-1] * math.Pow(p, float64(k))
	}
	return result, nil
}
