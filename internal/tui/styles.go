package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
)

var (
	accent  = lipgloss.Color("#7C3AED") // purple
	good    = lipgloss.Color("#10B981") // green
	caution = lipgloss.Color("#F59E0B") // amber
	bad     = lipgloss.Color("#EF4444") // red
	muted   = lipgloss.Color("#6B7280")
	bright  = lipgloss.Color("#F9FAFB")
)

// Chart series. The loaded elevations are drawn dim behind the edited profile.
var (
	originalSeriesColor = asciigraph.Gray
	profileSeriesColor  = asciigraph.Default
)

func bold(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(c)
}

func plain(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(bright).
			Background(accent).
			Padding(0, 1).
			MarginBottom(1)

	navStyle         = plain(muted).MarginBottom(1)
	navActiveStyle   = bold(accent)
	navInactiveStyle = plain(muted)

	titleStyle     = bold(accent)
	cardTitleStyle = bold(accent).MarginBottom(1)

	metricLabelStyle = plain(muted)
	metricValueStyle = bold(bright)

	// marks drawn under the chart
	anomalyStyle         = plain(bad)
	selectedAnomalyStyle = bold(caution)
	editedStyle          = plain(good)
	cursorStyle          = bold(good)
	dragStyle            = bold(caution)

	tableHeaderStyle = bold(accent).
				BorderBottom(true).
				BorderForeground(muted).
				Padding(0, 1)
	tableRowStyle      = lipgloss.NewStyle().Padding(0, 1)
	tableSelectedStyle = bold(bright).Background(accent).Padding(0, 1)

	statusStyle  = plain(muted)
	errorStyle   = plain(bad)
	successStyle = plain(good)

	helpKeyStyle     = bold(accent)
	helpDescStyle    = plain(muted)
	helpSectionStyle = bold(good)
)

// RenderMetric renders a label followed by its value
func RenderMetric(label, value string) string {
	return metricLabelStyle.Render(label+" ") + metricValueStyle.Render(value)
}

// RenderKeyHelp renders a key binding help item
func RenderKeyHelp(key, desc string) string {
	return helpKeyStyle.Render(key) + " " + helpDescStyle.Render(desc)
}

// truncateName shortens s to at most n runes, ending in "..."
func truncateName(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
