package domain

import "time"

// Condition describes the physical state of a card in a slot.
type Condition string

const (
	ConditionNearMint         Condition = "nm"
	ConditionLightlyPlayed    Condition = "lp"
	ConditionModeratelyPlayed Condition = "mp"
	ConditionHeavilyPlayed    Condition = "hp"
	ConditionDamaged          Condition = "dmg"
)

// Valid reports whether the condition is one of the known grades.
// An empty condition is valid and means "not graded".
func (c Condition) Valid() bool {
	switch c {
	case "", ConditionNearMint, ConditionLightlyPlayed, ConditionModeratelyPlayed,
		ConditionHeavilyPlayed, ConditionDamaged:
		return true
	default:
		return false
	}
}

// CardRef is a denormalized pointer from a binder slot into the external
// card catalog. It carries only per-copy annotations; the full card metadata
// lives in the catalog cache and is never duplicated here.
type CardRef struct {
	CardID    string    `json:"card_id"`
	AddedAt   time.Time `json:"added_at"`
	Condition Condition `json:"condition,omitempty"`
	Notes     string    `json:"notes,omitempty"`
	Quantity  int       `json:"quantity,omitempty"` // 0 means 1
}

// IsEmpty reports whether the reference points at nothing. Empty refs can
// appear when clients send explicit null slots; the store drops them on
// persist.
func (r CardRef) IsEmpty() bool {
	return r.CardID == ""
}

// Copies returns the number of copies this slot represents.
func (r CardRef) Copies() int {
	if r.Quantity <= 0 {
		return 1
	}
	return r.Quantity
}
