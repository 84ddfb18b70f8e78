package view

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"elevedit/internal/analysis"
)

func TestPlotAreaColumnRoundTrip(t *testing.T) {
	area := PlotArea{Left: 8, Width: 101}
	d := Domain{Min: 1000, Max: 2000}

	tests := []struct {
		distance float64
		col      int
	}{
		{1000, 8},
		{1500, 58},
		{2000, 108},
		{1010, 9},
	}
	for _, tt := range tests {
		if got := area.Column(tt.distance, d); got != tt.col {
			t.Errorf("Column(%v) = %d, want %d", tt.distance, got, tt.col)
		}
		got, ok := area.Distance(tt.col, d)
		if !ok || math.Abs(got-tt.distance) > 1e-9 {
			t.Errorf("Distance(%d) = %v, %v; want %v, true", tt.col, got, ok, tt.distance)
		}
	}

	for _, col := range []int{7, 109, -1} {
		if _, ok := area.Distance(col, d); ok {
			t.Errorf("Distance(%d) should be outside the plot area", col)
		}
	}
}

func TestPlaceRegions(t *testing.T) {
	area := PlotArea{Left: 0, Width: 101}
	d := Domain{Min: 0, Max: 1000}
	regions := []analysis.AnomalyRegion{
		{StartDistance: 100, EndDistance: 200, Severity: 2},
		{StartDistance: 1200, EndDistance: 1300, Severity: 3}, // off screen
		{StartDistance: 950, EndDistance: 1100, Severity: 4},  // clipped
	}

	got := PlaceRegions(regions, d, area)
	want := []RegionPlacement{
		{Region: regions[0], Start: 10, End: 20, Button: 15},
		{Region: regions[2], Start: 95, End: 100, Button: 97},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PlaceRegions mismatch (-want +got):\n%s", diff)
	}
}

func TestPlaceRegionsFollowsDomain(t *testing.T) {
	area := PlotArea{Left: 5, Width: 51}
	r := []analysis.AnomalyRegion{{StartDistance: 400, EndDistance: 500}}

	full := PlaceRegions(r, Domain{0, 1000}, area)
	zoomed := PlaceRegions(r, Domain{300, 600}, area)
	if len(full) != 1 || len(zoomed) != 1 {
		t.Fatalf("got %d/%d placements, want 1/1", len(full), len(zoomed))
	}
	if zw, fw := zoomed[0].End-zoomed[0].Start, full[0].End-full[0].Start; zw <= fw {
		t.Errorf("zoomed span %d should be wider than full span %d", zw, fw)
	}
}

func TestDownsample(t *testing.T) {
	points := make([]analysis.TrackPoint, 1000)
	for i := range points {
		points[i].Distance = float64(i)
	}

	idx := Downsample(points, Domain{0, 999}, 100)
	if len(idx) != 100 {
		t.Fatalf("got %d columns, want 100", len(idx))
	}
	if idx[0] != 0 || idx[99] != 999 {
		t.Errorf("endpoints = %d, %d; want 0, 999", idx[0], idx[99])
	}
	for i := 1; i < len(idx); i++ {
		if idx[i] <= idx[i-1] {
			t.Fatalf("indices not increasing at %d: %v", i, idx[i-1:i+1])
		}
	}

	few := Downsample(points, Domain{10, 14}, 100)
	if diff := cmp.Diff([]int{10, 11, 12, 13, 14}, few); diff != "" {
		t.Errorf("short window mismatch (-want +got):\n%s", diff)
	}

	if got := Downsample(points, Domain{2000, 3000}, 10); got != nil {
		t.Errorf("out of range window = %v, want nil", got)
	}
}
