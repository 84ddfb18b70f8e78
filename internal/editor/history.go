package editor

import (
	"slices"

	"elevedit/internal/analysis"
)

// DefaultHistoryLimit is the undo depth used when none is configured
const DefaultHistoryLimit = 100

// HistoryEntry is a snapshot of the editable state before one gesture
type HistoryEntry struct {
	Points        []analysis.TrackPoint
	EditedIndices []int
}

// History is a bounded undo stack. When full, pushing evicts the oldest entry.
// There is no redo: an undone state is gone once popped.
//
// History is not safe for concurrent use; callers serialize access.
type History struct {
	entries []HistoryEntry
	limit   int
}

// NewHistory creates a history holding at most limit entries.
// A non-positive limit falls back to DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Push records a deep copy of points and edited
func (h *History) Push(points []analysis.TrackPoint, edited []int) {
	if len(h.entries) >= h.limit {
		copy(h.entries, h.entries[1:])
		h.entries[len(h.entries)-1] = HistoryEntry{}
		h.entries = h.entries[:len(h.entries)-1]
	}
	h.entries = append(h.entries, HistoryEntry{
		Points:        analysis.ClonePoints(points),
		EditedIndices: slices.Clone(edited),
	})
}

// Undo pops the most recent entry. ok is false when there is nothing to undo.
func (h *History) Undo() (entry HistoryEntry, ok bool) {
	if len(h.entries) == 0 {
		return HistoryEntry{}, false
	}
	last := len(h.entries) - 1
	entry = h.entries[last]
	h.entries[last] = HistoryEntry{}
	h.entries = h.entries[:last]
	return entry, true
}

// CanUndo reports whether Undo would restore anything
func (h *History) CanUndo() bool {
	return len(h.entries) > 0
}

// Len returns the number of undoable entries
func (h *History) Len() int {
	return len(h.entries)
}

// Limit returns the maximum depth
func (h *History) Limit() int {
	return h.limit
}

// Clear drops every entry
func (h *History) Clear() {
	h.entries = nil
}
