package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"elevedit/internal/config"
	"elevedit/internal/editor"
	"elevedit/internal/service"
	"elevedit/internal/view"
)

// Screen identifiers
type Screen int

const (
	ScreenEditor Screen = iota
	ScreenRecent
	ScreenImport
	ScreenHelp
)

// contentTop is the number of rows above the screen content: header and nav,
// each followed by a blank margin line
const contentTop = 4

// trackOpenedMsg is sent when a file load or Strava import finishes
type trackOpenedMsg struct {
	track *service.OpenedTrack
	err   error
}

// App is the root Bubble Tea model
type App struct {
	screen     Screen
	prevScreen Screen

	// Screen models
	editor       EditorModel
	recent       RecentModel
	importScreen ImportModel
	help         HelpModel

	// Services
	tracks   *service.TrackService
	importer *service.ImportService

	cfg         config.Config
	units       Units
	settings    editor.Settings
	viewOptions []view.Option
	startPath   string

	// Window dimensions
	width  int
	height int

	// Status message
	status string
}

// NewApp creates a new App with all dependencies. importer may be nil when
// Strava is not set up; importErr then says why.
func NewApp(cfg config.Config, tracks *service.TrackService, importer *service.ImportService, importErr error, viewOptions ...view.Option) *App {
	units := NewUnits(cfg.Display)
	defaults := editor.Settings{
		Radius:    cfg.Editor.Radius,
		Strength:  cfg.Editor.Strength,
		Threshold: cfg.Editor.Threshold,
	}
	return &App{
		screen:       ScreenEditor,
		tracks:       tracks,
		importer:     importer,
		cfg:          cfg,
		units:        units,
		settings:     tracks.LoadSettings(defaults),
		viewOptions:  viewOptions,
		recent:       NewRecentModel(tracks, units),
		importScreen: NewImportModel(importer, importErr, units),
		help:         NewHelpModel(),
	}
}

// OpenOnStart loads path as soon as the program starts
func (a *App) OpenOnStart(path string) {
	a.startPath = path
}

// Init initializes the app
func (a *App) Init() tea.Cmd {
	if a.startPath != "" {
		a.status = "Loading " + a.startPath + "..."
		return a.openFile(a.startPath)
	}
	a.screen = ScreenRecent
	return a.recent.Init()
}

func (a *App) openFile(path string) tea.Cmd {
	tracks := a.tracks
	return func() tea.Msg {
		track, err := tracks.Open(path)
		return trackOpenedMsg{track: track, err: err}
	}
}

func (a *App) importActivity(id int64) tea.Cmd {
	importer := a.importer
	return func() tea.Msg {
		track, err := importer.Import(context.Background(), id)
		return trackOpenedMsg{track: track, err: err}
	}
}

// Update handles messages
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		// Global keybindings, unless a text field has focus
		if a.screen != ScreenImport || !a.importScreen.Typing() {
			switch msg.String() {
			case "q", "ctrl+c":
				return a, tea.Sequence(a.editor.Close(), tea.Quit)
			case "1":
				return a, a.switchTo(ScreenEditor)
			case "2":
				return a, a.switchTo(ScreenRecent)
			case "3":
				return a, a.switchTo(ScreenImport)
			case "?":
				if a.screen != ScreenHelp {
					a.prevScreen = a.screen
					a.editor = a.editor.Suspend()
					a.screen = ScreenHelp
					return a, nil
				}
			case "esc":
				if a.screen == ScreenHelp {
					a.screen = a.prevScreen
					return a, nil
				}
			}
		}

	case tea.MouseMsg:
		if a.screen != ScreenEditor {
			return a, nil
		}

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.editor = a.editor.SetSize(msg.Width, msg.Height)
		a.help = a.help.SetSize(msg.Width, msg.Height-contentTop-1)
		return a, nil

	case trackOpenedMsg:
		a.importScreen = a.importScreen.Done(msg.err)
		if msg.err != nil {
			a.status = errorStyle.Render(fmt.Sprintf("Error: %v", msg.err))
			return a, nil
		}
		a.status = ""
		return a, a.startEditing(msg.track)

	case openRecentMsg:
		if id, ok := service.ParseStravaPath(msg.track.Path); ok {
			if a.importer == nil {
				a.status = errorStyle.Render("Strava import is not available; run 'elevedit login'")
				return a, nil
			}
			a.status = "Importing " + msg.track.Name + "..."
			return a, a.importActivity(id)
		}
		a.status = "Loading " + msg.track.Path + "..."
		return a, a.openFile(msg.track.Path)

	case frameMsg, gpxExportedMsg, reportExportedMsg, persistedMsg:
		// editor results arrive even while another screen is shown
		m, cmd := a.editor.Update(msg)
		a.editor = m.(EditorModel)
		return a, cmd
	}

	// Delegate to current screen
	var cmd tea.Cmd
	switch a.screen {
	case ScreenEditor:
		var m tea.Model
		m, cmd = a.editor.Update(msg)
		a.editor = m.(EditorModel)
	case ScreenRecent:
		var m tea.Model
		m, cmd = a.recent.Update(msg)
		a.recent = m.(RecentModel)
	case ScreenImport:
		var m tea.Model
		m, cmd = a.importScreen.Update(msg)
		a.importScreen = m.(ImportModel)
	case ScreenHelp:
		var m tea.Model
		m, cmd = a.help.Update(msg)
		a.help = m.(HelpModel)
	}

	return a, cmd
}

func (a *App) switchTo(screen Screen) tea.Cmd {
	if screen == a.screen {
		return nil
	}
	if a.screen == ScreenEditor {
		a.editor = a.editor.Suspend()
	}
	a.screen = screen
	a.status = ""
	switch screen {
	case ScreenRecent:
		a.recent.loading = true
		return a.recent.Init()
	case ScreenImport:
		var cmd tea.Cmd
		a.importScreen, cmd = a.importScreen.Activate()
		return cmd
	}
	return nil
}

// startEditing replaces the editor with a session on track, carrying over
// the settings of the previous one
func (a *App) startEditing(track *service.OpenedTrack) tea.Cmd {
	var cmd tea.Cmd
	if a.editor.Loaded() {
		a.settings = a.editor.Settings()
		cmd = a.editor.Close()
	}
	a.editor = NewEditorModel(a.tracks, track, a.settings, a.cfg.Editor.HistoryLimit, a.units, contentTop, a.viewOptions...)
	if a.width > 0 {
		a.editor = a.editor.SetSize(a.width, a.height)
	}
	a.screen = ScreenEditor
	a.editor.status = fmt.Sprintf("Opened %s: %s points, %d anomalies",
		track.Track.Name, a.units.FormatCount(len(track.Track.Points)), len(a.editor.session.Anomalies()))
	return cmd
}

// View renders the app
func (a *App) View() string {
	header := a.renderHeader()
	nav := a.renderNav()

	var content string
	switch a.screen {
	case ScreenEditor:
		content = a.editor.View()
	case ScreenRecent:
		content = a.recent.View()
	case ScreenImport:
		content = a.importScreen.View()
	case ScreenHelp:
		content = a.help.View()
	}

	footer := a.renderFooter()

	return lipgloss.JoinVertical(lipgloss.Left, header, nav, content, footer)
}

func (a *App) renderHeader() string {
	return headerStyle.Render("Elevation Profile Editor")
}

func (a *App) renderNav() string {
	items := []struct {
		key    string
		label  string
		screen Screen
	}{
		{"1", "Editor", ScreenEditor},
		{"2", "Recent", ScreenRecent},
		{"3", "Import", ScreenImport},
		{"?", "Help", ScreenHelp},
	}

	var nav string
	for i, item := range items {
		if i > 0 {
			nav += "  "
		}

		label := "[" + item.key + "] " + item.label
		if a.screen == item.screen {
			nav += navActiveStyle.Render(label)
		} else {
			nav += navInactiveStyle.Render(label)
		}
	}

	nav += "  " + navInactiveStyle.Render("[q] Quit")

	return navStyle.Render(nav)
}

func (a *App) renderFooter() string {
	if a.status != "" {
		return statusStyle.Render(a.status)
	}
	return ""
}
