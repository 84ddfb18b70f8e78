package tui

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"elevedit/internal/service"
	"elevedit/internal/store"
	"elevedit/internal/strava"
)

// ImportModel is the Strava import screen model
type ImportModel struct {
	importer *service.ImportService
	// unavailable explains why importer is nil
	unavailable error
	units       Units

	activities []strava.Activity
	cursor     int
	input      textinput.Model
	spinner    spinner.Model

	loading   bool
	importing bool
	err       error
}

// NewImportModel creates the import screen. importer may be nil, in which
// case unavailable is shown instead.
func NewImportModel(importer *service.ImportService, unavailable error, units Units) ImportModel {
	input := textinput.New()
	input.Placeholder = "activity id"
	input.CharLimit = 20
	input.Width = 24
	input.Validate = func(s string) error {
		if s == "" {
			return nil
		}
		_, err := strconv.ParseInt(s, 10, 64)
		return err
	}

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = successStyle

	return ImportModel{
		importer:    importer,
		unavailable: unavailable,
		units:       units,
		input:       input,
		spinner:     sp,
	}
}

type activitiesLoadedMsg struct {
	activities []strava.Activity
	err        error
}

// Typing reports whether the ID field has focus, so global keys stay out of it
func (m ImportModel) Typing() bool {
	return m.input.Focused()
}

// Init initializes the import screen
func (m ImportModel) Init() tea.Cmd {
	return nil
}

// Activate fetches the latest activities the first time the screen is shown
func (m ImportModel) Activate() (ImportModel, tea.Cmd) {
	if m.importer == nil || m.loading || len(m.activities) > 0 {
		return m, nil
	}
	cmd := m.startLoad()
	return m, cmd
}

func (m *ImportModel) startLoad() tea.Cmd {
	m.loading = true
	m.err = nil
	importer := m.importer
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		activities, err := importer.RecentActivities(context.Background(), service.RecentActivitiesLimit)
		return activitiesLoadedMsg{activities: activities, err: err}
	})
}

func (m *ImportModel) startImport(id int64) tea.Cmd {
	m.importing = true
	m.err = nil
	importer := m.importer
	return tea.Batch(m.spinner.Tick, func() tea.Msg {
		track, err := importer.Import(context.Background(), id)
		return trackOpenedMsg{track: track, err: err}
	})
}

// Done clears the importing state once the app has handled the result
func (m ImportModel) Done(err error) ImportModel {
	m.importing = false
	m.err = err
	return m
}

// Update handles messages
func (m ImportModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.importer == nil {
		return m, nil
	}

	switch msg := msg.(type) {
	case activitiesLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.activities = msg.activities
		m.cursor = max(0, min(m.cursor, len(m.activities)-1))
		return m, nil

	case spinner.TickMsg:
		if !m.loading && !m.importing {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.importing {
			return m, nil
		}
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.activities)-1 {
				m.cursor++
			}
		case "r":
			if !m.loading {
				cmd := m.startLoad()
				return m, cmd
			}
		case "i", "/":
			cmd := m.input.Focus()
			return m, cmd
		case "enter":
			if m.cursor < len(m.activities) {
				cmd := m.startImport(m.activities[m.cursor].ID)
				return m, cmd
			}
		}
	}
	return m, nil
}

func (m ImportModel) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.input.Blur()
		return m, nil
	case "enter":
		id, err := strconv.ParseInt(strings.TrimSpace(m.input.Value()), 10, 64)
		if err != nil {
			m.err = fmt.Errorf("invalid activity id %q", m.input.Value())
			return m, nil
		}
		m.input.Blur()
		m.input.Reset()
		cmd := m.startImport(id)
		return m, cmd
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// View renders the import screen
func (m ImportModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("Import from Strava")
	sections = append(sections, title)

	if m.importer == nil {
		sections = append(sections, m.renderUnavailable())
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.importing {
		sections = append(sections, fmt.Sprintf("\n  %s Downloading activity streams...", m.spinner.View()))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	sections = append(sections, "  Activity id: "+m.input.View())

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
	}

	switch {
	case m.loading:
		sections = append(sections, fmt.Sprintf("\n  %s Loading recent activities...", m.spinner.View()))
	case len(m.activities) == 0:
		sections = append(sections, statusStyle.Render("\n  No activities found."))
	default:
		sections = append(sections, "", m.renderActivities())
	}

	help := statusStyle.Render("\n  enter: import  j/k: navigate  i: type an id  r: refresh")
	sections = append(sections, help)
	if short, daily, ok := m.importer.Quota(); ok {
		sections = append(sections, statusStyle.Render(fmt.Sprintf("  API requests left: %d (15 min), %s (today)", short, humanize.Comma(int64(daily)))))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ImportModel) renderActivities() string {
	rows := []string{tableHeaderStyle.Render(fmt.Sprintf("   %-10s  %-30s  %10s  %8s", "Date", "Name", "Distance", "Gain"))}
	for i, a := range m.activities {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}
		row := fmt.Sprintf("%s%-10s  %-30s  %10s  %8s",
			cursor,
			a.StartDate.Format("Jan 02"),
			truncateName(a.Name, 30),
			m.units.FormatDistance(a.Distance),
			humanize.CommafWithDigits(a.TotalElevationGain, 0)+" m",
		)
		if i == m.cursor {
			rows = append(rows, tableSelectedStyle.Render(row))
		} else {
			rows = append(rows, tableRowStyle.Render(row))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m ImportModel) renderUnavailable() string {
	var lines []string
	lines = append(lines, "")
	switch {
	case errors.Is(m.unavailable, service.ErrStravaNotConfigured):
		lines = append(lines, "  Strava credentials are not configured.")
		lines = append(lines, "  Add client_id and client_secret to ~/.elevedit/config.json,")
		lines = append(lines, "  then run 'elevedit login'.")
	case errors.Is(m.unavailable, store.ErrNoAuth):
		lines = append(lines, "  Not logged in to Strava. Run 'elevedit login' first.")
	case m.unavailable != nil:
		lines = append(lines, errorStyle.Render(fmt.Sprintf("  Strava is unavailable: %v", m.unavailable)))
	}
	return strings.Join(lines, "\n")
}
