package analysis

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestRollingMedian(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		window int
		want   []float64
	}{
		{"window 3", []float64{1, 5, 3, 4, 2}, 3, []float64{3, 3, 4, 3, 3}},
		{"single spike removed", []float64{100, 100, 150, 100, 100}, 3, []float64{100, 100, 100, 100, 100}},
		{"even window widened", []float64{1, 5, 3, 4, 2}, 2, []float64{3, 3, 4, 3, 3}},
		{"window 1 is identity", []float64{7, 1, 9}, 1, []float64{7, 1, 9}},
		{"window 0 is identity", []float64{7, 1, 9}, 0, []float64{7, 1, 9}},
		{"window wider than input", []float64{4, 8, 6}, 9, []float64{6, 6, 6}},
		{"empty", []float64{}, 3, []float64{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RollingMedian(tt.values, tt.window)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("RollingMedian(%v, %d) mismatch (-want +got):\n%s", tt.values, tt.window, diff)
			}
		})
	}
}

func TestRollingMedianDoesNotMutateInput(t *testing.T) {
	values := []float64{9, 1, 8, 2, 7}
	RollingMedian(values, 3)
	if diff := cmp.Diff([]float64{9, 1, 8, 2, 7}, values); diff != "" {
		t.Errorf("input mutated (-want +got):\n%s", diff)
	}
}
