package domain

import "time"

// DefaultHistoryCap bounds how many snapshots a binder keeps. Snapshots
// store the whole slot map, so the cap also bounds storage per binder.
const DefaultHistoryCap = 50

// Snapshot is one undo entry: a full copy of the binder's slot map taken
// before a mutation, plus a label describing what produced it.
type Snapshot struct {
	Cards   map[int]CardRef `json:"cards"`
	Label   string          `json:"label,omitempty"`
	TakenAt time.Time       `json:"taken_at"`
}

// History is a linear snapshot undo log for one binder. Entries run oldest
// to newest and Cursor points at the entry representing the current state.
// Recording after undos truncates the redo tail (truncate-on-branch).
type History struct {
	BinderID string     `json:"binder_id"`
	Entries  []Snapshot `json:"entries"`
	Cursor   int        `json:"cursor"`
	Cap      int        `json:"cap,omitempty"`
}

// NewHistory creates an empty history for a binder.
func NewHistory(binderID string) *History {
	return &History{BinderID: binderID, Cursor: -1}
}

func (h *History) cap() int {
	if h.Cap <= 0 {
		return DefaultHistoryCap
	}
	return h.Cap
}

// Record appends a snapshot of the current state. Any redo tail beyond the
// cursor is discarded first; the oldest entry is evicted once the cap is
// reached.
func (h *History) Record(cards map[int]CardRef, label string) {
	// Branching from an undone state invalidates the redo tail.
	if h.Cursor < len(h.Entries)-1 {
		h.Entries = h.Entries[:h.Cursor+1]
	}

	h.Entries = append(h.Entries, Snapshot{
		Cards:   copyCards(cards),
		Label:   label,
		TakenAt: time.Now(),
	})

	if len(h.Entries) > h.cap() {
		over := len(h.Entries) - h.cap()
		h.Entries = h.Entries[over:]
	}
	h.Cursor = len(h.Entries) - 1
}

// CanUndo reports whether an earlier snapshot exists.
func (h *History) CanUndo() bool {
	return h.Cursor > 0
}

// CanRedo reports whether an undone snapshot can be restored.
func (h *History) CanRedo() bool {
	return h.Cursor >= 0 && h.Cursor < len(h.Entries)-1
}

// Undo steps the cursor back and returns the snapshot to restore.
func (h *History) Undo() (Snapshot, bool) {
	if !h.CanUndo() {
		return Snapshot{}, false
	}
	h.Cursor--
	return h.current()
}

// Redo steps the cursor forward and returns the snapshot to restore.
func (h *History) Redo() (Snapshot, bool) {
	if !h.CanRedo() {
		return Snapshot{}, false
	}
	h.Cursor++
	return h.current()
}

// Clear drops all snapshots.
func (h *History) Clear() {
	h.Entries = nil
	h.Cursor = -1
}

// Len returns the number of stored snapshots.
func (h *History) Len() int {
	return len(h.Entries)
}

func (h *History) current() (Snapshot, bool) {
	if h.Cursor < 0 || h.Cursor >= len(h.Entries) {
		return Snapshot{}, false
	}
	entry := h.Entries[h.Cursor]
	// Hand back a copy so callers can't mutate stored snapshots.
	return Snapshot{
		Cards:   copyCards(entry.Cards),
		Label:   entry.Label,
		TakenAt: entry.TakenAt,
	}, true
}

func copyCards(cards map[int]CardRef) map[int]CardRef {
	copied := make(map[int]CardRef, len(cards))
	for pos, ref := range cards {
		copied[pos] = ref
	}
	return copied
}
