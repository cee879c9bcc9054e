// Package stats implements the rank statistics backing the Kendall
// comparison path. It is deliberately dependency-free: the platform only
// needs the ties-adjusted Kendall coefficient together with a significance
// value, computed the same way for every service that links it.
package stats

import (
	"fmt"
	"math"
)

// KendallTau computes the ties-adjusted Kendall rank correlation (tau-b)
// between two paired samples, along with a two-sided significance value from
// the normal approximation with tie correction. The coefficient lies in
// [-1, 1]: +1 for identical orderings, -1 for exactly reversed ones.
//
// The pairwise scan is O(n^2), which is fine for the common-element vectors
// this platform feeds it (bounded by ranking length).
func KendallTau(x, y []float64) (float64, float64, error) {
	if len(x) != len(y) {
		return 0, 0, fmt.Errorf("sample length mismatch: %d vs %d", len(x), len(y))
	}
	n := len(x)
	if n < 2 {
		return 0, 0, fmt.Errorf("need at least 2 paired samples, got %d", n)
	}

	var concordant, discordant float64
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			prod := (x[i] - x[j]) * (y[i] - y[j])
			switch {
			case prod > 0:
				concordant++
			case prod < 0:
				discordant++
			}
		}
	}
	s := concordant - discordant

	nf := float64(n)
	totalPairs := nf * (nf - 1) / 2
	xTiePairs, x1, x0 := tieTerms(x)
	yTiePairs, y1, y0 := tieTerms(y)

	denom := math.Sqrt((totalPairs - xTiePairs) * (totalPairs - yTiePairs))
	if denom == 0 {
		return 0, 0, fmt.Errorf("all values tied in at least one sample")
	}
	tau := s / denom

	// Normal approximation of the null distribution of concordant-discordant,
	// with the standard tie correction.
	variance := (nf*(nf-1)*(2*nf+5) - x1 - y1) / 18
	variance += 2 * xTiePairs * yTiePairs / (nf * (nf - 1))
	if n > 2 {
		variance += x0 * y0 / (9 * nf * (nf - 1) * (nf - 2))
	}
	if variance <= 0 {
		return tau, 1, nil
	}
	z := s / math.Sqrt(variance)
	pvalue := math.Erfc(math.Abs(z) / math.Sqrt2)

	return tau, pvalue, nil
}

// tieTerms aggregates tie-group contributions for one sample: the number of
// tied pairs, sum t(t-1)(2t+5), and sum t(t-1)(t-2) over groups of size t.
func tieTerms(v []float64) (tiePairs, term1, term0 float64) {
	counts := make(map[float64]int, len(v))
	for _, value := range v {
		counts[value]++
	}
	for _, c := range counts {
		if c < 2 {
			continue
		}
		t := float64(c)
		tiePairs += t * (t - 1) / 2
		term1 += t * (t - 1) * (2*t + 5)
		term0 += t * (t - 1) * (t - 2)
	}
	return tiePairs, term1, term0
}
