package stats

import (
	"math"
	"testing"
)

const tolerance = 1e-12

func almostEqual(t *testing.T, got, want float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Fatalf("got %.15f, want %.15f", got, want)
	}
}

func TestKendallTauPerfectAgreement(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4, 5, 6, 7}
	tau, pvalue, err := KendallTau(x, x)
	if err != nil {
		t.Fatalf("KendallTau failed: %v", err)
	}
	almostEqual(t, tau, 1.0)
	if pvalue >= 0.01 {
		t.Errorf("pvalue = %f for perfect agreement over 8 samples, want < 0.01", pvalue)
	}
}

func TestKendallTauPerfectDisagreement(t *testing.T) {
	x := []float64{0, 1, 2, 3, 4}
	y := []float64{4, 3, 2, 1, 0}
	tau, _, err := KendallTau(x, y)
	if err != nil {
		t.Fatalf("KendallTau failed: %v", err)
	}
	almostEqual(t, tau, -1.0)
}

func TestKendallTauSingleSwap(t *testing.T) {
	// One adjacent transposition in four ranks: 5 concordant pairs, 1
	// discordant, no ties, so tau = 4/6.
	x := []float64{0, 1, 2, 3}
	y := []float64{0, 2, 1, 3}
	tau, _, err := KendallTau(x, y)
	if err != nil {
		t.Fatalf("KendallTau failed: %v", err)
	}
	almostEqual(t, tau, 4.0/6.0)
}

func TestKendallTauWithTies(t *testing.T) {
	// x has one tied pair: 5 concordant pairs and a tie-adjusted
	// denominator of sqrt(5*6).
	x := []float64{1, 1, 2, 3}
	y := []float64{1, 2, 3, 4}
	tau, _, err := KendallTau(x, y)
	if err != nil {
		t.Fatalf("KendallTau failed: %v", err)
	}
	almostEqual(t, tau, 5.0/math.Sqrt(30))
}

func TestKendallTauWeakCorrelation(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	y := []float64{1, 0, 3, 2}
	tau, pvalue, err := KendallTau(x, y)
	if err != nil {
		t.Fatalf("KendallTau failed: %v", err)
	}
	almostEqual(t, tau, 1.0/3.0)
	if pvalue < 0.4 {
		t.Errorf("pvalue = %f for weak correlation over 4 samples, want >= 0.4", pvalue)
	}
}

func TestKendallTauErrors(t *testing.T) {
	tests := []struct {
		name string
		x, y []float64
	}{
		{"length_mismatch", []float64{1, 2}, []float64{1, 2, 3}},
		{"too_short", []float64{1}, []float64{1}},
		{"empty", nil, nil},
		{"all_tied", []float64{2, 2, 2}, []float64{1, 2, 3}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := KendallTau(tt.x, tt.y); err == nil {
				t.Fatal("KendallTau succeeded, want error")
			}
		})
	}
}
