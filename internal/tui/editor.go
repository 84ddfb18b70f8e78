package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"elevedit/internal/analysis"
	"elevedit/internal/editor"
	"elevedit/internal/report"
	"elevedit/internal/service"
	"elevedit/internal/view"
)

// Editing steps
const (
	strengthStep  = 0.1
	thresholdStep = 1.0
	fastColumns   = 10
)

// Rows of the editor around the chart
const (
	editorTitleRows  = 1
	editorFooterRows = 7 // overlay, markers, blank, two info lines, status, help
)

// frameMsg drives one animation frame of the view controller
type frameMsg struct {
	gen uint64
	at  time.Time
}

type gpxExportedMsg struct {
	path string
	err  error
}

type reportExportedMsg struct {
	paths report.Paths
	err   error
}

type persistedMsg struct {
	what string
	err  error
}

// mouseGesture is the pointer interaction in progress
type mouseGesture int

const (
	gestureNone mouseGesture = iota
	gestureDrag
	gesturePan
)

// EditorModel is the elevation editing screen
type EditorModel struct {
	tracks  *service.TrackService
	track   *service.OpenedTrack
	session *editor.Session
	view    *view.Controller
	units   Units

	keys editorKeyMap
	help help.Model

	cursor   int
	selected analysis.RegionKey

	gesture    mouseGesture
	panAnchorX int
	panAnchor  view.Domain
	dragBounds *[2]float64

	top    int // screen row where the editor starts
	width  int
	height int

	status string
	err    error
}

// NewEditorModel starts editing an opened track
func NewEditorModel(tracks *service.TrackService, track *service.OpenedTrack, settings editor.Settings, historyLimit int, units Units, top int, opts ...view.Option) EditorModel {
	session := editor.NewSession(track.Track.Points, track.Track.TotalDistance, settings, historyLimit)
	session.SetIgnored(track.Ignored)

	h := help.New()
	h.ShortSeparator = "  "

	m := EditorModel{
		tracks:  tracks,
		track:   track,
		session: session,
		view:    view.NewController(track.Track.TotalDistance, opts...),
		units:   units,
		keys:    newEditorKeyMap(),
		help:    h,
		top:     top,
		width:   80,
		height:  24,
	}
	if regions := session.Anomalies(); len(regions) > 0 {
		m.selected = regions[0].Key()
	}
	return m
}

// Loaded reports whether a track is open
func (m EditorModel) Loaded() bool {
	return m.session != nil
}

// Init initializes the editor screen
func (m EditorModel) Init() tea.Cmd {
	return nil
}

// SetSize updates the terminal dimensions
func (m EditorModel) SetSize(width, height int) EditorModel {
	m.width, m.height = width, height
	m.help.Width = width
	return m
}

// Close stops animations and persists the current settings
func (m EditorModel) Close() tea.Cmd {
	if m.session == nil {
		return nil
	}
	m.view.Close()
	return m.saveSettings()
}

// Update handles messages
func (m EditorModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.session == nil {
		return m, nil
	}

	switch msg := msg.(type) {
	case frameMsg:
		if m.view.Frame(msg.gen, msg.at) {
			return m, frameTick(msg.gen)
		}

	case gpxExportedMsg:
		m.setResult(msg.err, "Wrote "+msg.path)

	case reportExportedMsg:
		m.setResult(msg.err, fmt.Sprintf("Wrote %s and %s", msg.paths.HTML, msg.paths.PNG))

	case persistedMsg:
		if msg.err != nil {
			m.setResult(fmt.Errorf("saving %s: %w", msg.what, msg.err), "")
		}

	case tea.KeyMsg:
		next, cmd := m.handleKey(msg)
		return next.keepSelection(), cmd

	case tea.MouseMsg:
		next, cmd := m.handleMouse(msg)
		return next.keepSelection(), cmd
	}
	return m, nil
}

// keepSelection re-resolves the selected anomaly after edits changed the regions
func (m EditorModel) keepSelection() EditorModel {
	m.selectAnomaly(0)
	return m
}

func (m *EditorModel) setResult(err error, ok string) {
	m.err = err
	if err != nil {
		m.status = ""
		return
	}
	m.status = ok
}

func (m EditorModel) handleKey(msg tea.KeyMsg) (EditorModel, tea.Cmd) {
	s := m.session
	k := m.keys
	m.err = nil

	if s.Dragging() {
		layout := m.layout()
		step := max((layout.hi-layout.lo)/float64(max(layout.rows, 1)), 0.5)
		switch {
		case key.Matches(msg, k.Raise):
			s.DragBy(step)
		case key.Matches(msg, k.Lower):
			s.DragBy(-step)
		case key.Matches(msg, k.Commit), key.Matches(msg, k.Grab):
			s.EndDrag()
			m.endGesture()
			m.status = "Point moved"
		case key.Matches(msg, k.Cancel):
			s.AbandonDrag()
			m.endGesture()
			m.status = "Drag cancelled"
		case key.Matches(msg, k.Undo):
			s.Undo()
			m.endGesture()
			m.status = "Drag cancelled"
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, k.Left):
		m.moveCursor(-1)
	case key.Matches(msg, k.Right):
		m.moveCursor(1)
	case key.Matches(msg, k.FastLeft):
		m.moveCursor(-fastColumns)
	case key.Matches(msg, k.FastRight):
		m.moveCursor(fastColumns)

	case key.Matches(msg, k.Grab):
		if s.BeginDrag(m.cursor) {
			m.freezeBounds()
			m.status = "Dragging: ↑/↓ to move, enter to drop, esc to cancel"
		}
	case key.Matches(msg, k.Smooth):
		if s.Click(m.cursor) {
			m.status = "Smoothed around cursor"
		} else {
			m.status = "Nothing to smooth"
		}
	case key.Matches(msg, k.Undo):
		if s.Undo() {
			m.status = fmt.Sprintf("Undone (%d left)", s.HistoryLen())
		} else {
			m.status = "Nothing to undo"
		}
	case key.Matches(msg, k.ResetEdit):
		if s.Reset() {
			m.status = "Restored original elevations (u to undo)"
		}

	case key.Matches(msg, k.ZoomIn):
		return m, m.animate(m.view.ZoomIn())
	case key.Matches(msg, k.ZoomOut):
		return m, m.animate(m.view.ZoomOut())
	case key.Matches(msg, k.PanLeft):
		return m, m.animate(m.view.PanLeft())
	case key.Matches(msg, k.PanRight):
		return m, m.animate(m.view.PanRight())
	case key.Matches(msg, k.ResetView):
		m.view.Reset()

	case key.Matches(msg, k.NextAnomaly):
		m.selectAnomaly(1)
	case key.Matches(msg, k.PrevAnomaly):
		m.selectAnomaly(-1)
	case key.Matches(msg, k.Ignore):
		cmd := m.ignoreSelected()
		return m, cmd
	case key.Matches(msg, k.Unignore):
		if len(s.IgnoredKeys()) == 0 {
			return m, nil
		}
		s.SetIgnored(nil)
		m.status = "Restored ignored anomalies"
		return m, m.saveIgnored()
	case key.Matches(msg, k.Fix):
		if r, ok := m.selectedRegion(); ok && s.FixAnomaly(r) {
			m.status = "Anomaly fixed"
		}

	case key.Matches(msg, k.RadiusDown):
		s.SetRadius(s.Settings().Radius - 1)
		return m, m.saveSettings()
	case key.Matches(msg, k.RadiusUp):
		if s.Settings().Radius >= s.MaxRadius() {
			m.status = fmt.Sprintf("Radius is limited to %d on this track", s.MaxRadius())
			return m, nil
		}
		s.SetRadius(s.Settings().Radius + 1)
		return m, m.saveSettings()
	case key.Matches(msg, k.StrengthDown):
		s.SetStrength(s.Settings().Strength - strengthStep)
		return m, m.saveSettings()
	case key.Matches(msg, k.StrengthUp):
		s.SetStrength(s.Settings().Strength + strengthStep)
		return m, m.saveSettings()
	case key.Matches(msg, k.ThresholdDown):
		s.SetThreshold(s.Settings().Threshold - thresholdStep)
		return m, m.saveSettings()
	case key.Matches(msg, k.ThresholdUp):
		s.SetThreshold(s.Settings().Threshold + thresholdStep)
		return m, m.saveSettings()

	case key.Matches(msg, k.ExportGPX):
		m.status = "Writing GPX..."
		return m, m.exportGPX()
	case key.Matches(msg, k.ExportReport):
		m.status = "Writing report..."
		return m, m.exportReport()
	}
	return m, nil
}

func (m EditorModel) handleMouse(msg tea.MouseMsg) (EditorModel, tea.Cmd) {
	s := m.session
	layout := m.layout()

	switch msg.Action {
	case tea.MouseActionRelease:
		// releasing anywhere finishes the gesture
		if m.gesture == gestureDrag {
			s.EndDrag()
			m.status = "Point moved"
		}
		m.endGesture()
		return m, nil

	case tea.MouseActionMotion:
		switch m.gesture {
		case gestureDrag:
			s.DragTo(layout.elevationAt(msg.Y))
		case gesturePan:
			m.panTo(msg.X, layout)
		}
		return m, nil

	case tea.MouseActionPress:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			return m, m.animate(m.view.ZoomIn())
		case tea.MouseButtonWheelDown:
			return m, m.animate(m.view.ZoomOut())

		case tea.MouseButtonLeft:
			if msg.Y == m.overlayY(layout) {
				cmd := m.clickOverlay(msg.X, layout)
				return m, cmd
			}
			if !layout.contains(msg.X, msg.Y) || s.Dragging() {
				return m, nil
			}
			i := analysis.NearestIndex(s.Points(), layout.distanceAt(msg.X))
			if s.BeginDrag(i) {
				m.cursor = i
				m.gesture = gestureDrag
				m.freezeBounds()
				s.DragTo(layout.elevationAt(msg.Y))
			}

		case tea.MouseButtonRight:
			if layout.contains(msg.X, msg.Y) && !s.Dragging() {
				m.gesture = gesturePan
				m.panAnchorX = msg.X
				m.panAnchor = m.view.Visible()
			}
		}
	}
	return m, nil
}

// panTo shifts the window so the distance under the anchor follows the pointer
func (m *EditorModel) panTo(x int, layout chartLayout) {
	if layout.area.Width <= 1 {
		return
	}
	perColumn := m.panAnchor.Width() / float64(layout.area.Width-1)
	shift := float64(x-m.panAnchorX) * perColumn
	m.view.SetDomain(view.Domain{Min: m.panAnchor.Min - shift, Max: m.panAnchor.Max - shift})
}

func (m *EditorModel) clickOverlay(x int, layout chartLayout) tea.Cmd {
	for _, p := range view.PlaceRegions(m.session.Anomalies(), layout.domain, layout.area) {
		if x >= p.Button-1 && x <= p.Button+1 {
			m.selected = p.Region.Key()
			return m.ignoreSelected()
		}
		if x >= p.Start && x <= p.End {
			m.selected = p.Region.Key()
			return nil
		}
	}
	return nil
}

func (m *EditorModel) endGesture() {
	m.gesture = gestureNone
	m.dragBounds = nil
}

// freezeBounds pins the chart's elevation range while a drag is active so the
// pointer keeps mapping to the same elevations
func (m *EditorModel) freezeBounds() {
	l := m.layout()
	m.dragBounds = &[2]float64{l.lo, l.hi}
}

// moveCursor moves by whole plot columns, at least one sample, and scrolls
// the window when the cursor leaves it
func (m *EditorModel) moveCursor(columns int) {
	points := m.session.Points()
	if len(points) == 0 {
		return
	}
	layout := m.layout()
	col := layout.area.Column(points[m.cursor].Distance, layout.domain) + columns
	next := analysis.NearestIndex(points, layout.distanceAt(col))
	if next == m.cursor {
		next = m.cursor + sign(columns)
	}
	m.cursor = max(0, min(next, len(points)-1))
	m.reveal(points[m.cursor].Distance)
}

// reveal scrolls a zoomed window just enough to show dist
func (m *EditorModel) reveal(dist float64) {
	d, ok := m.view.Domain()
	if !ok || (dist >= d.Min && dist <= d.Max) {
		return
	}
	w := d.Width()
	if dist < d.Min {
		m.view.SetDomain(view.Domain{Min: dist, Max: dist + w})
	} else {
		m.view.SetDomain(view.Domain{Min: dist - w, Max: dist})
	}
}

// selectAnomaly steps the selection by delta; 0 keeps the current one when it still exists
func (m *EditorModel) selectAnomaly(delta int) {
	regions := m.session.Anomalies()
	if len(regions) == 0 {
		m.selected = analysis.RegionKey{}
		return
	}
	cur := -1
	for i, r := range regions {
		if r.Key() == m.selected {
			cur = i
			break
		}
	}
	switch {
	case cur < 0:
		// the selected region changed or vanished: pick the next one after it
		cur = 0
		for i, r := range regions {
			if r.StartDistance >= m.selected.Start {
				cur = i
				break
			}
		}
	default:
		cur = (cur + delta + len(regions)) % len(regions)
	}
	r := regions[cur]
	m.selected = r.Key()
	if delta == 0 {
		return
	}
	m.cursor = analysis.NearestIndex(m.session.Points(), (r.StartDistance+r.EndDistance)/2)
	m.reveal(r.StartDistance)
	m.reveal(r.EndDistance)
	m.status = fmt.Sprintf("Anomaly %d of %d, severity %.1f", cur+1, len(regions), r.Severity)
}

func (m EditorModel) selectedRegion() (analysis.AnomalyRegion, bool) {
	for _, r := range m.session.Anomalies() {
		if r.Key() == m.selected {
			return r, true
		}
	}
	return analysis.AnomalyRegion{}, false
}

func (m *EditorModel) ignoreSelected() tea.Cmd {
	r, ok := m.selectedRegion()
	if !ok {
		return nil
	}
	m.session.Ignore(r.Key())
	m.status = "Anomaly ignored (X restores)"
	return m.saveIgnored()
}

func (m EditorModel) animate(started bool) tea.Cmd {
	if !started {
		return nil
	}
	return frameTick(m.view.Generation())
}

func frameTick(gen uint64) tea.Cmd {
	return tea.Tick(view.FrameInterval, func(t time.Time) tea.Msg {
		return frameMsg{gen: gen, at: t}
	})
}

func (m EditorModel) saveSettings() tea.Cmd {
	tracks, settings := m.tracks, m.session.Preferences()
	return func() tea.Msg {
		return persistedMsg{what: "settings", err: tracks.SaveSettings(settings)}
	}
}

func (m EditorModel) saveIgnored() tea.Cmd {
	tracks, track, keys := m.tracks, m.track, m.session.IgnoredKeys()
	return func() tea.Msg {
		return persistedMsg{what: "ignored anomalies", err: tracks.SaveIgnored(track, keys)}
	}
}

func (m EditorModel) exportGPX() tea.Cmd {
	tracks, track := m.tracks, m.track
	points := analysis.ClonePoints(m.session.Points())
	return func() tea.Msg {
		path, err := tracks.Export(track, points)
		return gpxExportedMsg{path: path, err: err}
	}
}

func (m EditorModel) exportReport() tea.Cmd {
	base := m.track.ExportBase
	profile := report.Profile{
		Name:      m.track.Track.Name,
		Points:    analysis.ClonePoints(m.session.Points()),
		Original:  m.session.Original(),
		Anomalies: m.session.Anomalies(),
		Stats:     m.session.Stats(),
		Unit:      m.units.ReportUnit(),
	}
	return func() tea.Msg {
		paths, err := report.Export(base, profile)
		return reportExportedMsg{paths: paths, err: err}
	}
}

func (m EditorModel) chartHeight() int {
	return max(m.height-m.top-editorTitleRows-editorFooterRows-1, minChartHeight)
}

// layout renders the chart off-screen to learn its geometry
func (m EditorModel) layout() chartLayout {
	_, l := m.chart()
	return l
}

func (m EditorModel) chart() (string, chartLayout) {
	s := m.session
	chart, l := renderChart(s.Points(), s.Original(), m.view.Visible(), m.width, m.chartHeight(), m.dragBounds)
	l.top = m.top + editorTitleRows
	return chart, l
}

func (m EditorModel) overlayY(l chartLayout) int {
	return l.top + l.rows + 1
}

// View renders the editor
func (m EditorModel) View() string {
	if m.session == nil {
		return m.emptyView()
	}
	s := m.session

	chart, layout := m.chart()
	lineWidth := layout.area.Left + layout.area.Width

	selected := analysis.RegionKey{}
	if _, ok := m.selectedRegion(); ok {
		selected = m.selected
	}
	overlay := overlayRow(view.PlaceRegions(s.Anomalies(), layout.domain, layout.area), selected, lineWidth)

	cursorCol := -1
	if m.cursor < s.Len() {
		if d := s.Points()[m.cursor].Distance; d >= layout.domain.Min && d <= layout.domain.Max {
			cursorCol = layout.area.Column(d, layout.domain)
		}
	}
	markers := markerRow(s.EditedIndices(), cursorCol, s.Dragging(), s.Points(), layout, lineWidth)

	sections := []string{
		m.renderTitle(),
		chart,
		overlay,
		markers,
		"",
		m.renderCursorInfo(),
		m.renderStats(),
		m.renderStatus(),
		m.help.View(m.keys),
	}
	return strings.Join(sections, "\n")
}

func (m EditorModel) emptyView() string {
	lines := []string{
		cardTitleStyle.Render("No track loaded"),
		"  Run " + helpKeyStyle.Render("elevedit ride.gpx") + " to edit a GPX file,",
		"  or press " + helpKeyStyle.Render("2") + " for recent tracks and " + helpKeyStyle.Render("3") + " to import from Strava.",
	}
	return strings.Join(lines, "\n")
}

func (m EditorModel) renderTitle() string {
	s := m.session
	d := m.view.Visible()
	title := titleStyle.Render(truncateName(m.track.Track.Name, 40))
	window := statusStyle.Render(fmt.Sprintf("  %s to %s of %s",
		m.units.FormatDistance(d.Min), m.units.FormatDistance(d.Max), m.units.FormatDistance(s.TotalDistance())))
	return title + window
}

func (m EditorModel) renderCursorInfo() string {
	s := m.session
	set := s.Settings()
	var parts []string
	if m.cursor < s.Len() {
		p := s.Points()[m.cursor]
		parts = append(parts,
			RenderMetric("Cursor", m.units.FormatDistance(p.Distance)),
			RenderMetric("at", m.units.FormatElevation(p.Elevation)),
		)
	}
	parts = append(parts,
		RenderMetric("Radius", fmt.Sprintf("%d/%d", set.Radius, s.MaxRadius())),
		RenderMetric("Strength", fmt.Sprintf("%.1f", set.Strength)),
		RenderMetric("Threshold", fmt.Sprintf("%.0f m", set.Threshold)),
	)
	return "  " + strings.Join(parts, "   ")
}

func (m EditorModel) renderStats() string {
	s := m.session
	st := s.Stats()
	anomalies := fmt.Sprintf("%d", len(s.Anomalies()))
	if n := len(s.IgnoredKeys()); n > 0 {
		anomalies += fmt.Sprintf(" (+%d ignored)", n)
	}
	parts := []string{
		RenderMetric("Ascent", m.units.FormatElevation(st.TotalAscent)),
		RenderMetric("Descent", m.units.FormatElevation(st.TotalDescent)),
		RenderMetric("Min", m.units.FormatElevation(st.MinElevation)),
		RenderMetric("Max", m.units.FormatElevation(st.MaxElevation)),
		RenderMetric("Time", m.units.FormatDuration(st.TotalDuration)),
		RenderMetric("Avg", m.units.FormatSpeed(st.AverageSpeed)),
		RenderMetric("Edited", m.units.FormatCount(st.EditedCount)),
		RenderMetric("Anomalies", anomalies),
		RenderMetric("Undo", fmt.Sprintf("%d", s.HistoryLen())),
	}
	return "  " + strings.Join(parts, "  ")
}

func (m EditorModel) renderStatus() string {
	switch {
	case m.err != nil:
		return errorStyle.Render("  Error: " + m.err.Error())
	case m.status != "":
		return statusStyle.Render("  " + m.status)
	}
	return ""
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	}
	return 0
}

// Settings returns the editing parameters to carry into the next session
func (m EditorModel) Settings() editor.Settings {
	return m.session.Preferences()
}

// Suspend abandons an in-flight drag before the editor loses focus
func (m EditorModel) Suspend() EditorModel {
	if m.session != nil && m.session.Dragging() {
		m.session.AbandonDrag()
	}
	m.endGesture()
	return m
}
