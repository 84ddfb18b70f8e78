package analysis

import (
	"math"
	"testing"
	"time"
)

func TestCalculateStatsEmpty(t *testing.T) {
	stats := CalculateStats(nil, 0, 0)

	if !math.IsInf(stats.MinElevation, 1) {
		t.Errorf("MinElevation = %v, want +Inf", stats.MinElevation)
	}
	if !math.IsInf(stats.MaxElevation, -1) {
		t.Errorf("MaxElevation = %v, want -Inf", stats.MaxElevation)
	}
	if stats.TotalAscent != 0 || stats.TotalDescent != 0 {
		t.Errorf("ascent/descent = %v/%v, want 0/0", stats.TotalAscent, stats.TotalDescent)
	}
	if stats.AverageSpeed != nil || stats.MaxSpeed != nil {
		t.Errorf("speeds = %v/%v, want nil", stats.AverageSpeed, stats.MaxSpeed)
	}
}

func TestCalculateStatsTiming(t *testing.T) {
	base := time.Date(2024, 5, 4, 10, 0, 0, 0, time.UTC)
	points := []TrackPoint{
		{Elevation: 100, Distance: 0, Time: base},
		{Elevation: 100, Distance: 1000, Time: base.Add(15 * time.Minute)},
		{Elevation: 100, Distance: 3000, Time: base.Add(30 * time.Minute)},
	}

	stats := CalculateStats(points, 3000, 2)

	if stats.TotalDuration != 30*time.Minute {
		t.Errorf("TotalDuration = %v, want 30m", stats.TotalDuration)
	}
	if stats.TotalDuration.Milliseconds() != 1_800_000 {
		t.Errorf("TotalDuration ms = %d, want 1800000", stats.TotalDuration.Milliseconds())
	}
	if stats.AverageSpeed == nil || math.Abs(*stats.AverageSpeed-3000.0/1800) > 1e-9 {
		t.Errorf("AverageSpeed = %v, want %v", stats.AverageSpeed, 3000.0/1800)
	}
	if stats.MaxSpeed == nil || math.Abs(*stats.MaxSpeed-2000.0/900) > 1e-9 {
		t.Errorf("MaxSpeed = %v, want %v", stats.MaxSpeed, 2000.0/900)
	}
	if stats.TotalDistance != 3000 {
		t.Errorf("TotalDistance = %v, want 3000", stats.TotalDistance)
	}
	if stats.EditedCount != 2 {
		t.Errorf("EditedCount = %d, want 2", stats.EditedCount)
	}
}

func TestCalculateStatsSkipsUntimedPairs(t *testing.T) {
	base := time.Date(2024, 5, 4, 10, 0, 0, 0, time.UTC)
	points := []TrackPoint{
		{Distance: 0, Time: base},
		{Distance: 500}, // no timestamp
		{Distance: 1000, Time: base.Add(10 * time.Minute)},
		{Distance: 1600, Time: base.Add(20 * time.Minute)},
		{Distance: 1700, Time: base.Add(15 * time.Minute)}, // clock went backwards
	}

	stats := CalculateStats(points, 1700, 0)

	if stats.TotalDuration != 10*time.Minute {
		t.Errorf("TotalDuration = %v, want 10m", stats.TotalDuration)
	}
	if stats.AverageSpeed == nil || math.Abs(*stats.AverageSpeed-1.0) > 1e-9 {
		t.Errorf("AverageSpeed = %v, want 1", stats.AverageSpeed)
	}
}

func TestCalculateStatsNoTimestamps(t *testing.T) {
	points := elevationTrack(10, 20, 30)
	for i := range points {
		points[i].Time = time.Time{}
	}

	stats := CalculateStats(points, 200, 0)
	if stats.TotalDuration != 0 {
		t.Errorf("TotalDuration = %v, want 0", stats.TotalDuration)
	}
	if stats.AverageSpeed != nil || stats.MaxSpeed != nil {
		t.Errorf("speeds = %v/%v, want nil", stats.AverageSpeed, stats.MaxSpeed)
	}
}

func TestCalculateStatsStationaryHasNoMaxSpeed(t *testing.T) {
	base := time.Date(2024, 5, 4, 10, 0, 0, 0, time.UTC)
	points := []TrackPoint{
		{Distance: 100, Time: base},
		{Distance: 100, Time: base.Add(time.Minute)},
	}

	stats := CalculateStats(points, 100, 0)
	if stats.MaxSpeed != nil {
		t.Errorf("MaxSpeed = %v, want nil", *stats.MaxSpeed)
	}
	if stats.AverageSpeed == nil || *stats.AverageSpeed != 0 {
		t.Errorf("AverageSpeed = %v, want 0", stats.AverageSpeed)
	}
}

func TestCalculateStatsAscentDescent(t *testing.T) {
	tests := []struct {
		name        string
		ele         []float64
		wantAscent  float64
		wantDescent float64
	}{
		{"steady climb", []float64{100, 105, 110, 115, 120}, 15, 0},
		{"single spike is ignored", []float64{100, 100, 150, 100, 100}, 0, 0},
		{"small jitter is ignored", []float64{100, 101, 100, 101, 100, 101}, 0, 0},
		{"climb then descend", []float64{100, 110, 120, 130, 130, 120, 110, 100}, 25, 25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := CalculateStats(elevationTrack(tt.ele...), 0, 0)
			if math.Abs(stats.TotalAscent-tt.wantAscent) > 1e-9 {
				t.Errorf("TotalAscent = %v, want %v", stats.TotalAscent, tt.wantAscent)
			}
			if math.Abs(stats.TotalDescent-tt.wantDescent) > 1e-9 {
				t.Errorf("TotalDescent = %v, want %v", stats.TotalDescent, tt.wantDescent)
			}
		})
	}
}

func TestCalculateStatsMinMax(t *testing.T) {
	stats := CalculateStats(elevationTrack(230, 180, 410, 95), 300, 0)
	if stats.MinElevation != 95 || stats.MaxElevation != 410 {
		t.Errorf("min/max = %v/%v, want 95/410", stats.MinElevation, stats.MaxElevation)
	}
}
