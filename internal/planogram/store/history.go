package store

import "planogram-editor/internal/planogram/models"

// MaxHistory bounds the number of snapshots kept for undo.
const MaxHistory = 50

// history is a linear undo/redo log of immutable snapshots. Entries are never
// modified after being pushed.
type history struct {
	entries []models.Refrigerator
	index   int
}

func newHistory(initial models.Refrigerator) *history {
	return &history{entries: []models.Refrigerator{initial}, index: 0}
}

// push discards any redo tail, appends and trims the oldest entries.
func (h *history) push(snapshot models.Refrigerator) {
	h.entries = append(h.entries[:h.index+1:h.index+1], snapshot)
	if len(h.entries) > MaxHistory {
		h.entries = h.entries[len(h.entries)-MaxHistory:]
	}
	h.index = len(h.entries) - 1
}

func (h *history) current() models.Refrigerator { return h.entries[h.index] }

func (h *history) canUndo() bool { return h.index > 0 }

func (h *history) canRedo() bool { return h.index < len(h.entries)-1 }

func (h *history) undo() bool {
	if !h.canUndo() {
		return false
	}
	h.index--
	return true
}

func (h *history) redo() bool {
	if !h.canRedo() {
		return false
	}
	h.index++
	return true
}
