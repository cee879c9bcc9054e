package similarity

import (
	"net/http"

	apperrors "github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/errors"
)

// RBOExt computes the fully extrapolated rank-biased overlap, Eq. (32) of
// Webber, Moffat and Zobel (TOIS 2010). It walks the long list to its full
// length, corrects for the depths where only the long list still contributes,
// and projects the final agreement onto the unseen tails, so the score is an
// estimate of the overlap of the underlying infinite rankings rather than of
// the seen prefixes only.
//
// p <= 0 selects DefaultPersistence. The measure is only defined for
// 0 < p < 1.
func (rs *RankingSimilarity[T]) RBOExt(p float64) (float64, error) {
	if p <= 0 {
		p = DefaultPersistence
	}
	if p >= 1 {
		return 0, apperrors.Newf(apperrors.ErrInvalidParameter, http.StatusBadRequest,
			"extrapolated persistence must be in (0, 1), got %v", p)
	}

	// Short and long roles. On equal lengths the second list takes the long
	// role; the recurrence is symmetric then, so the result is unaffected.
	short, long := rs.s, rs.t
	if rs.s.Len() > rs.t.Len() {
		short, long = rs.t, rs.s
	}
	s, l := short.Len(), long.Len()
	if s == 0 {
		return 0, apperrors.New(apperrors.ErrInvalidParameter, http.StatusBadRequest,
			"both lists need at least one ranked item")
	}

	overlap := make([]float64, l)   // X: common items within depth d
	agreement := make([]float64, l) // A: overlap normalised by depth
	rbo := make([]float64, l)

	shortRunning := make(map[T]struct{}, s)
	longRunning := make(map[T]struct{}, l)
	shortRunning[short.At(0)] = struct{}{}
	longRunning[long.At(0)] = struct{}{}
	if short.At(0) == long.At(0) {
		overlap[0] = 1
	}
	agreement[0] = overlap[0]
	rbo[0] = (1 - p) * agreement[0]

	// Tail estimate at depth 0, which also keeps single-element lists
	// defined when the loop below never runs.
	ext := agreement[0] * p

	meter := rs.meter(l)
	disjoint := 0.0
	pd := p // p^d
	for d := 1; d < l; d++ {
		meter.tick(d)

		if d < s {
			// Both lists still contribute at this depth.
			sd, ld := short.At(d), long.At(d)
			shortRunning[sd] = struct{}{}
			longRunning[ld] = struct{}{}

			incr := 0.0
			if sd == ld {
				incr = 1
			} else {
				if _, ok := longRunning[sd]; ok {
					incr++
				}
				if _, ok := shortRunning[ld]; ok {
					incr++
				}
			}

			overlap[d] = overlap[d-1] + incr
			// Eq. (28): agreement normalised by both running sets, which
			// also handles the final tied depth.
			agreement[d] = 2 * overlap[d] / float64(len(shortRunning)+len(longRunning))
			rbo[d] = rbo[d-1] + (1-p)*pd*agreement[d]

			ext = agreement[d] * pd * p
		} else {
			// The short list is exhausted; only the long list advances.
			ld := long.At(d)
			longRunning[ld] = struct{}{}

			incr := 0.0
			if _, ok := shortRunning[ld]; ok {
				incr = 1
			}

			overlap[d] = overlap[d-1] + incr
			agreement[d] = overlap[d] / float64(d+1)
			rbo[d] = rbo[d-1] + (1-p)*pd*agreement[d]

			lastCommon := overlap[s-1]
			disjoint += (1 - p) * pd * (lastCommon * float64(d+1-s) / float64(d+1) / float64(s))
			ext = ((overlap[d]-lastCommon)/float64(d+1) + lastCommon/float64(s)) * pd * p
		}

		pd *= p
	}

	return rbo[l-1] + disjoint + ext, nil
}
