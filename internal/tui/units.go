package tui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"elevedit/internal/config"
	"elevedit/internal/report"
)

const (
	metersPerMile = 1609.34
	metersPerKm   = 1000.0
)

// Units provides unit conversion and formatting based on user preferences
type Units struct {
	cfg config.DisplayConfig
}

// NewUnits creates a new Units helper with the given display config
func NewUnits(cfg config.DisplayConfig) Units {
	return Units{cfg: cfg}
}

// FormatDistance formats a distance in meters to the user's preferred unit
func (u Units) FormatDistance(meters float64) string {
	if u.IsMiles() {
		return fmt.Sprintf("%.2f mi", meters/metersPerMile)
	}
	return fmt.Sprintf("%.2f km", meters/metersPerKm)
}

// FormatElevation formats meters with thousands separators
func (u Units) FormatElevation(meters float64) string {
	return humanize.CommafWithDigits(meters, 0) + " m"
}

// FormatSpeed formats a speed in m/s, or "-" when unknown
func (u Units) FormatSpeed(mps *float64) string {
	if mps == nil {
		return "-"
	}
	if u.IsMiles() {
		return fmt.Sprintf("%.1f mph", *mps*3600/metersPerMile)
	}
	return fmt.Sprintf("%.1f km/h", *mps*3600/metersPerKm)
}

// FormatDuration formats d as h:mm:ss, or "-" for zero
func (u Units) FormatDuration(d time.Duration) string {
	if d <= 0 {
		return "-"
	}
	secs := int(d.Round(time.Second).Seconds())
	return fmt.Sprintf("%d:%02d:%02d", secs/3600, secs/60%60, secs%60)
}

// FormatCount formats n with thousands separators
func (u Units) FormatCount(n int) string {
	return humanize.Comma(int64(n))
}

// DistanceLabel returns the short unit label ("mi" or "km")
func (u Units) DistanceLabel() string {
	if u.IsMiles() {
		return "mi"
	}
	return "km"
}

// ReportUnit returns the distance unit used by exported reports
func (u Units) ReportUnit() string {
	if u.IsMiles() {
		return report.UnitMiles
	}
	return report.UnitKilometers
}

// IsMiles returns true if distance unit is miles
func (u Units) IsMiles() bool {
	return u.cfg.DistanceUnit == "mi"
}
