package similarity

import (
	"errors"
	"fmt"
	"testing"

	apperrors "github.com/Adithya-Monish-Kumar-K/Ranking-Evaluation-Platform/pkg/errors"
)

func TestKendallIdenticalLists(t *testing.T) {
	rs := newSim(t, []string{"a", "b", "c"}, []string{"a", "b", "c"})
	got, err := rs.Kendall()
	if err != nil {
		t.Fatalf("Kendall failed: %v", err)
	}
	within(t, got, 1.0, 1e-12)

	report := rs.Coverage()
	if report.Common != 3 {
		t.Fatalf("Common = %d, want 3", report.Common)
	}
	within(t, report.SFraction, 1.0, 1e-12)
	within(t, report.TFraction, 1.0, 1e-12)
}

func TestKendallExactReversal(t *testing.T) {
	for _, pair := range [][2][]string{
		{{"a", "b", "c"}, {"c", "b", "a"}},
		{{"a", "b", "c", "d"}, {"d", "c", "b", "a"}},
	} {
		rs := newSim(t, pair[0], pair[1])
		got, err := rs.Kendall()
		if err != nil {
			t.Fatalf("Kendall failed: %v", err)
		}
		within(t, got, -1.0, 1e-12)
	}
}

// TestKendallRankVectors captures what the collaborator receives: ranks of
// the common elements in each original list, paired in a consistent order.
func TestKendallRankVectors(t *testing.T) {
	rs := newSim(t, []string{"a", "b", "c", "d"}, []string{"b", "a", "d"})

	var gotX, gotY []float64
	rs.SetCorrelation(func(x, y []float64) (float64, float64, error) {
		gotX, gotY = x, y
		return 0.25, 0.5, nil
	})

	coefficient, err := rs.Kendall()
	if err != nil {
		t.Fatalf("Kendall failed: %v", err)
	}
	within(t, coefficient, 0.25, 0)

	// Common elements a, b, d in identity order; ranks 0,1,3 in the first
	// list and 1,0,2 in the second.
	wantX := []float64{0, 1, 3}
	wantY := []float64{1, 0, 2}
	if fmt.Sprint(gotX) != fmt.Sprint(wantX) {
		t.Errorf("x = %v, want %v", gotX, wantX)
	}
	if fmt.Sprint(gotY) != fmt.Sprint(wantY) {
		t.Errorf("y = %v, want %v", gotY, wantY)
	}
}

func TestKendallPartialOverlap(t *testing.T) {
	// Common elements a, b, c keep their relative order in both lists.
	rs := newSim(t, []string{"a", "b", "c", "x"}, []string{"a", "y", "b", "c"})
	got, err := rs.Kendall()
	if err != nil {
		t.Fatalf("Kendall failed: %v", err)
	}
	within(t, got, 1.0, 1e-12)
}

func TestKendallCollaboratorError(t *testing.T) {
	rs := newSim(t, []string{"a", "b", "c"}, []string{"a", "b", "c"})
	boom := errors.New("boom")
	rs.SetCorrelation(func(x, y []float64) (float64, float64, error) {
		return 0, 0, boom
	})
	_, err := rs.Kendall()
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want the collaborator's error", err)
	}
}

func TestKendallInsufficientOverlap(t *testing.T) {
	tests := []struct {
		name string
		s, u []string
	}{
		{"disjoint", []string{"a", "b"}, []string{"x", "y"}},
		{"single_common", []string{"a", "b"}, []string{"a", "c"}},
		{"empty", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newSim(t, tt.s, tt.u).Kendall()
			if !errors.Is(err, apperrors.ErrInsufficientOverlap) {
				t.Fatalf("error = %v, want ErrInsufficientOverlap", err)
			}
		})
	}
}

func TestKendallNilCollaboratorKeepsDefault(t *testing.T) {
	rs := newSim(t, []string{"a", "b", "c"}, []string{"a", "b", "c"})
	rs.SetCorrelation(nil)
	got, err := rs.Kendall()
	if err != nil {
		t.Fatalf("Kendall failed: %v", err)
	}
	within(t, got, 1.0, 1e-12)
}
