package tui

import "github.com/charmbracelet/bubbles/key"

// editorKeyMap is the editor screen's bindings. It implements help.KeyMap.
type editorKeyMap struct {
	Left      key.Binding
	Right     key.Binding
	FastLeft  key.Binding
	FastRight key.Binding
	Grab      key.Binding
	Raise     key.Binding
	Lower     key.Binding
	Commit    key.Binding
	Cancel    key.Binding
	Smooth    key.Binding
	Undo      key.Binding
	ResetEdit key.Binding

	ZoomIn    key.Binding
	ZoomOut   key.Binding
	PanLeft   key.Binding
	PanRight  key.Binding
	ResetView key.Binding

	NextAnomaly key.Binding
	PrevAnomaly key.Binding
	Ignore      key.Binding
	Unignore    key.Binding
	Fix         key.Binding

	RadiusDown    key.Binding
	RadiusUp      key.Binding
	StrengthDown  key.Binding
	StrengthUp    key.Binding
	ThresholdDown key.Binding
	ThresholdUp   key.Binding

	ExportGPX    key.Binding
	ExportReport key.Binding
}

func newEditorKeyMap() editorKeyMap {
	return editorKeyMap{
		Left:      key.NewBinding(key.WithKeys("left"), key.WithHelp("←/→", "move cursor")),
		Right:     key.NewBinding(key.WithKeys("right")),
		FastLeft:  key.NewBinding(key.WithKeys("shift+left"), key.WithHelp("shift+←/→", "move cursor faster")),
		FastRight: key.NewBinding(key.WithKeys("shift+right")),
		Grab:      key.NewBinding(key.WithKeys(" ", "d"), key.WithHelp("space/d", "grab point")),
		Raise:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/↓", "drag up/down")),
		Lower:     key.NewBinding(key.WithKeys("down", "j")),
		Commit:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "drop point")),
		Cancel:    key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel drag")),
		Smooth:    key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "smooth at cursor")),
		Undo:      key.NewBinding(key.WithKeys("u", "ctrl+z"), key.WithHelp("u", "undo")),
		ResetEdit: key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "reset all edits")),

		ZoomIn:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "zoom")),
		ZoomOut:   key.NewBinding(key.WithKeys("-", "_")),
		PanLeft:   key.NewBinding(key.WithKeys("[", "h"), key.WithHelp("[/]", "pan")),
		PanRight:  key.NewBinding(key.WithKeys("]", "l")),
		ResetView: key.NewBinding(key.WithKeys("0"), key.WithHelp("0", "full view")),

		NextAnomaly: key.NewBinding(key.WithKeys("a", "tab"), key.WithHelp("a/A", "next/prev anomaly")),
		PrevAnomaly: key.NewBinding(key.WithKeys("A", "shift+tab")),
		Ignore:      key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "ignore anomaly")),
		Unignore:    key.NewBinding(key.WithKeys("X"), key.WithHelp("X", "restore ignored")),
		Fix:         key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "fix anomaly")),

		RadiusDown:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r/R", "radius")),
		RadiusUp:      key.NewBinding(key.WithKeys("R")),
		StrengthDown:  key.NewBinding(key.WithKeys("s"), key.WithHelp("s/S", "strength")),
		StrengthUp:    key.NewBinding(key.WithKeys("S")),
		ThresholdDown: key.NewBinding(key.WithKeys("t"), key.WithHelp("t/T", "threshold")),
		ThresholdUp:   key.NewBinding(key.WithKeys("T")),

		ExportGPX:    key.NewBinding(key.WithKeys("w"), key.WithHelp("w", "write gpx")),
		ExportReport: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "profile report")),
	}
}

// ShortHelp is the one-line footer of the editor
func (k editorKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Grab, k.Smooth, k.Undo, k.ZoomIn, k.PanLeft, k.NextAnomaly, k.Fix, k.ExportGPX}
}

// FullHelp groups every binding for the help screen
func (k editorKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Left, k.FastLeft, k.Grab, k.Raise, k.Commit, k.Cancel, k.Smooth, k.Undo, k.ResetEdit},
		{k.ZoomIn, k.PanLeft, k.ResetView},
		{k.NextAnomaly, k.Ignore, k.Unignore, k.Fix},
		{k.RadiusDown, k.StrengthDown, k.ThresholdDown},
		{k.ExportGPX, k.ExportReport},
	}
}
