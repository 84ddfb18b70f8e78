package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"elevedit/internal/service"
	"elevedit/internal/store"
)

// RecentModel lists previously opened tracks
type RecentModel struct {
	tracks  *service.TrackService
	units   Units
	keys    recentKeyMap
	items   []store.RecentTrack
	cursor  int
	loading bool
	err     error
}

type recentKeyMap struct {
	Up      key.Binding
	Down    key.Binding
	Open    key.Binding
	Forget  key.Binding
	Refresh key.Binding
}

// NewRecentModel creates a new recent tracks model
func NewRecentModel(tracks *service.TrackService, units Units) RecentModel {
	return RecentModel{
		tracks: tracks,
		units:  units,
		keys: recentKeyMap{
			Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("j/k", "navigate")),
			Down:    key.NewBinding(key.WithKeys("down", "j")),
			Open:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "open")),
			Forget:  key.NewBinding(key.WithKeys("d", "delete"), key.WithHelp("d", "forget")),
			Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		},
		loading: true,
	}
}

// Init loads the list
func (m RecentModel) Init() tea.Cmd {
	return m.load
}

type recentLoadedMsg struct {
	items []store.RecentTrack
	err   error
}

// openRecentMsg asks the app to reopen a recent track
type openRecentMsg struct {
	track store.RecentTrack
}

func (m RecentModel) load() tea.Msg {
	items, err := m.tracks.Recent(service.RecentTracksLimit)
	return recentLoadedMsg{items: items, err: err}
}

// Update handles messages
func (m RecentModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case recentLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.items = msg.items
		m.cursor = max(0, min(m.cursor, len(m.items)-1))

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Refresh):
			m.loading = true
			return m, m.load
		case key.Matches(msg, m.keys.Open):
			if m.cursor < len(m.items) {
				track := m.items[m.cursor]
				return m, func() tea.Msg { return openRecentMsg{track: track} }
			}
		case key.Matches(msg, m.keys.Forget):
			if m.cursor < len(m.items) {
				id := m.items[m.cursor].ID
				m.loading = true
				return m, func() tea.Msg {
					if err := m.tracks.Forget(id); err != nil {
						return recentLoadedMsg{err: err}
					}
					return m.load()
				}
			}
		}
	}
	return m, nil
}

// View renders the recent tracks list
func (m RecentModel) View() string {
	if m.loading {
		return "\n  Loading recent tracks..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.items) == 0 {
		return "\n  No recent tracks. Open one with 'elevedit ride.gpx' or press 3 to import from Strava."
	}

	var sections []string

	title := cardTitleStyle.Render(fmt.Sprintf("Recent tracks (%d)", len(m.items)))
	sections = append(sections, title)

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-30s  %10s  %8s  %-6s  %s",
		"Name", "Distance", "Points", "Source", "Opened"))
	sections = append(sections, header)

	for i, t := range m.items {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		row := fmt.Sprintf("%s%-30s  %10s  %8s  %-6s  %s",
			cursor,
			truncateName(t.Name, 30),
			m.units.FormatDistance(t.Distance),
			humanize.Comma(int64(t.PointCount)),
			t.Source,
			humanize.Time(t.OpenedAt),
		)

		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	help := statusStyle.Render("\n  enter: open  j/k: navigate  d: forget  r: refresh")
	sections = append(sections, help)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}
