package domain

import (
	"fmt"
	"maps"
)

// Grid limits. A 12x12 page is already absurd for physical binders but
// costs nothing to allow.
const (
	MinGridDim = 1
	MaxGridDim = 12

	// MaxSlots bounds the highest addressable position in a binder.
	MaxSlots = 2000
)

// SortOrder controls how clients present binder contents.
type SortOrder string

const (
	SortManual    SortOrder = "manual"
	SortByName    SortOrder = "name"
	SortByNumber  SortOrder = "number"
	SortByAddedAt SortOrder = "added"
)

// Valid reports whether the sort order is known.
func (o SortOrder) Valid() bool {
	switch o {
	case SortManual, SortByName, SortByNumber, SortByAddedAt:
		return true
	default:
		return false
	}
}

// BinderSettings holds per-binder presentation settings.
type BinderSettings struct {
	Rows      int       `json:"rows"`
	Columns   int       `json:"columns"`
	SortOrder SortOrder `json:"sort_order"`
}

// DefaultSettings is the 3x3 grid every new binder starts with.
func DefaultSettings() BinderSettings {
	return BinderSettings{Rows: 3, Columns: 3, SortOrder: SortManual}
}

// PageSize returns the number of slots per page.
func (s BinderSettings) PageSize() int {
	return s.Rows * s.Columns
}

// Validate checks grid dimensions and sort order.
func (s BinderSettings) Validate() error {
	if s.Rows < MinGridDim || s.Rows > MaxGridDim {
		return fmt.Errorf("rows must be between %d and %d", MinGridDim, MaxGridDim)
	}
	if s.Columns < MinGridDim || s.Columns > MaxGridDim {
		return fmt.Errorf("columns must be between %d and %d", MinGridDim, MaxGridDim)
	}
	if s.SortOrder != "" && !s.SortOrder.Valid() {
		return fmt.Errorf("unknown sort order %q", s.SortOrder)
	}
	return nil
}

// Binder is a user-owned collection of card slots arranged in a paged grid.
// The Cards map is sparse: absent positions are empty slots. Archiving is a
// soft delete via the embedded Syncable.
type Binder struct {
	Syncable
	OwnerID     string          `json:"owner_id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Slug        string          `json:"slug,omitempty"`
	Public      bool            `json:"public"`
	Settings    BinderSettings  `json:"settings"`
	Cards       map[int]CardRef `json:"cards"`
}

// CardAt returns the card at a position, if occupied.
func (b *Binder) CardAt(pos int) (CardRef, bool) {
	ref, ok := b.Cards[pos]
	if !ok || ref.IsEmpty() {
		return CardRef{}, false
	}
	return ref, true
}

// PlaceCard puts a card at the given position. Fails if the slot is
// occupied or the position is out of range.
func (b *Binder) PlaceCard(pos int, ref CardRef) error {
	if pos < 0 || pos >= MaxSlots {
		return fmt.Errorf("position %d out of range [0, %d)", pos, MaxSlots)
	}
	if ref.IsEmpty() {
		return fmt.Errorf("card reference is empty")
	}
	if _, occupied := b.CardAt(pos); occupied {
		return fmt.Errorf("slot %d is occupied", pos)
	}
	if b.Cards == nil {
		b.Cards = make(map[int]CardRef)
	}
	b.Cards[pos] = ref
	return nil
}

// FirstFreeSlot returns the lowest unoccupied position.
func (b *Binder) FirstFreeSlot() int {
	for pos := 0; pos < MaxSlots; pos++ {
		if _, occupied := b.CardAt(pos); !occupied {
			return pos
		}
	}
	return -1
}

// RemoveCard clears a slot. Returns the removed card and whether the slot
// was occupied. Removing an empty slot is a no-op, not an error.
func (b *Binder) RemoveCard(pos int) (CardRef, bool) {
	ref, ok := b.CardAt(pos)
	if !ok {
		return CardRef{}, false
	}
	delete(b.Cards, pos)
	return ref, true
}

// MoveCard relocates the card at from to to. When the target slot is
// occupied the two cards swap, matching drag-and-drop semantics.
func (b *Binder) MoveCard(from, to int) error {
	if from == to {
		return nil
	}
	if to < 0 || to >= MaxSlots {
		return fmt.Errorf("position %d out of range [0, %d)", to, MaxSlots)
	}
	src, ok := b.CardAt(from)
	if !ok {
		return fmt.Errorf("slot %d is empty", from)
	}
	if dst, occupied := b.CardAt(to); occupied {
		b.Cards[from] = dst
		b.Cards[to] = src
		return nil
	}
	delete(b.Cards, from)
	b.Cards[to] = src
	return nil
}

// SwapCards exchanges two slots. Unlike MoveCard both slots must be
// occupied.
func (b *Binder) SwapCards(a, c int) error {
	first, ok := b.CardAt(a)
	if !ok {
		return fmt.Errorf("slot %d is empty", a)
	}
	second, ok := b.CardAt(c)
	if !ok {
		return fmt.Errorf("slot %d is empty", c)
	}
	b.Cards[a], b.Cards[c] = second, first
	return nil
}

// ClearPage removes every card on the given page for the current grid
// size. Returns the number of cards removed.
func (b *Binder) ClearPage(page int) int {
	start, end := PageBounds(page, b.Settings.PageSize())
	removed := 0
	for pos := start; pos < end; pos++ {
		if _, ok := b.RemoveCard(pos); ok {
			removed++
		}
	}
	return removed
}

// Condense shifts all cards toward position zero, removing gaps while
// preserving relative order.
func (b *Binder) Condense() {
	if len(b.Cards) == 0 {
		return
	}
	condensed := make(map[int]CardRef, len(b.Cards))
	next := 0
	for pos := 0; pos <= b.HighestOccupied(); pos++ {
		if ref, ok := b.CardAt(pos); ok {
			condensed[next] = ref
			next++
		}
	}
	b.Cards = condensed
}

// Normalize drops empty card references. Called by the store before
// persisting so stray null slots from clients never hit disk. This is the
// map equivalent of truncating trailing empty array entries.
func (b *Binder) Normalize() {
	for pos, ref := range b.Cards {
		if ref.IsEmpty() {
			delete(b.Cards, pos)
		}
	}
}

// HighestOccupied returns the largest occupied position, or -1 for an
// empty binder.
func (b *Binder) HighestOccupied() int {
	highest := -1
	for pos, ref := range b.Cards {
		if !ref.IsEmpty() && pos > highest {
			highest = pos
		}
	}
	return highest
}

// CardCount returns the number of occupied slots.
func (b *Binder) CardCount() int {
	count := 0
	for _, ref := range b.Cards {
		if !ref.IsEmpty() {
			count++
		}
	}
	return count
}

// PageCount returns the number of pages needed to show every card. An
// empty binder still has one page.
func (b *Binder) PageCount() int {
	highest := b.HighestOccupied()
	if highest < 0 {
		return 1
	}
	return SlotToPage(highest, b.Settings.PageSize()) + 1
}

// SnapshotCards returns a copy of the slot map, used for history entries.
func (b *Binder) SnapshotCards() map[int]CardRef {
	snapshot := make(map[int]CardRef, len(b.Cards))
	maps.Copy(snapshot, b.Cards)
	return snapshot
}

// RestoreCards replaces the slot map with a history snapshot.
func (b *Binder) RestoreCards(cards map[int]CardRef) {
	restored := make(map[int]CardRef, len(cards))
	maps.Copy(restored, cards)
	b.Cards = restored
}
