package overlay

// History is an undo/redo stack of collection snapshots plus a cursor over
// them. Snapshots are taken on every committed mutation, never on transient
// per-frame gesture deltas.
type History struct {
	entries []Collection
	cursor  int
}

// NewHistory starts a history whose first entry is the initial collection.
func NewHistory(initial Collection) *History {
	return &History{entries: []Collection{initial}}
}

// Push records a new snapshot after the cursor, discarding any abandoned redo
// branch ahead of it.
func (h *History) Push(c Collection) {
	h.entries = append(h.entries[:h.cursor+1], c)
	h.cursor = len(h.entries) - 1
}

// Undo steps the cursor back and returns that snapshot. It reports false when
// there is nothing to undo. Undoing never pushes a new entry.
func (h *History) Undo() (Collection, bool) {
	if !h.CanUndo() {
		return nil, false
	}
	h.cursor--
	return h.entries[h.cursor], true
}

// Redo steps the cursor forward, bounded by the entry list.
func (h *History) Redo() (Collection, bool) {
	if !h.CanRedo() {
		return nil, false
	}
	h.cursor++
	return h.entries[h.cursor], true
}

// CanUndo reports whether an earlier snapshot exists.
func (h *History) CanUndo() bool {
	return h.cursor > 0
}

// CanRedo reports whether a later snapshot exists.
func (h *History) CanRedo() bool {
	return h.cursor < len(h.entries)-1
}
