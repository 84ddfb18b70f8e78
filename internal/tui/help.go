package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// HelpModel is the help screen model
type HelpModel struct {
	viewport viewport.Model
	ready    bool
}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{}
}

// Init initializes the help screen
func (m HelpModel) Init() tea.Cmd {
	return nil
}

// SetSize fits the scrollable area below the app chrome
func (m HelpModel) SetSize(width, height int) HelpModel {
	h := max(height, 3)
	if !m.ready {
		m.viewport = viewport.New(width, h)
		m.ready = true
	} else {
		m.viewport.Width = width
		m.viewport.Height = h
	}
	m.viewport.SetContent(m.renderContent())
	return m
}

// Update handles messages
func (m HelpModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.ready {
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the help screen
func (m HelpModel) View() string {
	if !m.ready {
		return m.renderContent()
	}
	return m.viewport.View()
}

type keyHelp struct {
	key  string
	desc string
}

func (m HelpModel) renderContent() string {
	var sections []string

	title := cardTitleStyle.Render("Keyboard & Mouse")
	sections = append(sections, title)

	sections = append(sections, m.renderSection("Navigation", []keyHelp{
		{"1", "Editor"},
		{"2", "Recent tracks"},
		{"3", "Import from Strava"},
		{"?", "Help (this screen)"},
		{"q", "Quit"},
		{"esc", "Back / close help"},
	}))

	editorKeys := newEditorKeyMap()
	titles := []string{"Editing", "View", "Anomalies", "Settings", "Export"}
	for i, group := range editorKeys.FullHelp() {
		sections = append(sections, m.renderSection(titles[i], bindingHelp(group)))
	}

	sections = append(sections, m.renderSection("Mouse", []keyHelp{
		{"left drag", "Move the point under the pointer"},
		{"click ✕", "Ignore an anomaly"},
		{"wheel", "Zoom in / out"},
		{"right drag", "Pan the zoomed view"},
	}))

	sections = append(sections, m.renderSection("Anomalies", []keyHelp{
		{"━━", "Suspicious elevation change; threshold t/T sets the size in meters"},
		{"·", "Edited sample"},
	}))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// bindingHelp lists the bindings that carry help text
func bindingHelp(bindings []key.Binding) []keyHelp {
	var out []keyHelp
	for _, b := range bindings {
		h := b.Help()
		if h.Key == "" {
			continue
		}
		out = append(out, keyHelp{h.Key, h.Desc})
	}
	return out
}

func (m HelpModel) renderSection(title string, keys []keyHelp) string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, helpSectionStyle.Render(title))

	for _, k := range keys {
		lines = append(lines, "  "+RenderKeyHelp(k.key, k.desc))
	}

	return strings.Join(lines, "\n")
}
