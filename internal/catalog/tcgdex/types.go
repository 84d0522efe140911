package tcgdex

import (
	"strconv"
	"time"

	"github.com/binderapp/binder-server/internal/catalog"
)

// Raw API response types (internal). TCGdex returns localized full cards
// on detail endpoints and a brief id/name/image triple on listings.

type rawCard struct {
	ID          string   `json:"id"`
	LocalID     string   `json:"localId"`
	Name        string   `json:"name"`
	Category    string   `json:"category"` // "Pokemon", "Trainer", "Energy"
	Illustrator string   `json:"illustrator"`
	Rarity      string   `json:"rarity"`
	HP          int      `json:"hp"`
	Types       []string `json:"types"`
	Image       string   `json:"image"` // Base URL without extension
	Set         struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"set"`
}

type rawCardBrief struct {
	ID      string `json:"id"`
	LocalID string `json:"localId"`
	Name    string `json:"name"`
	Image   string `json:"image"`
}

type rawSet struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Logo      string `json:"logo"`
	Symbol    string `json:"symbol"`
	CardCount struct {
		Official int `json:"official"`
		Total    int `json:"total"`
	} `json:"cardCount"`
	ReleaseDate string `json:"releaseDate"` // "1999-01-09"
	Serie       struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	} `json:"serie"`
}

// toCard maps a full card onto the provider-neutral type.
func (r *rawCard) toCard() catalog.Card {
	hp := ""
	if r.HP > 0 {
		hp = strconv.Itoa(r.HP)
	}

	return catalog.Card{
		ID:         r.ID,
		Name:       r.Name,
		Supertype:  r.Category,
		HP:         hp,
		Types:      r.Types,
		Number:     r.LocalID,
		Artist:     r.Illustrator,
		Rarity:     r.Rarity,
		SetID:      r.Set.ID,
		SetName:    r.Set.Name,
		ImageSmall: imageURL(r.Image, "low"),
		ImageLarge: imageURL(r.Image, "high"),
	}
}

// toCard maps a brief listing entry. Only identity and images are known.
func (r *rawCardBrief) toCard() catalog.Card {
	return catalog.Card{
		ID:         r.ID,
		Name:       r.Name,
		Number:     r.LocalID,
		ImageSmall: imageURL(r.Image, "low"),
		ImageLarge: imageURL(r.Image, "high"),
	}
}

// toSet maps the wire format onto the provider-neutral set.
func (r *rawSet) toSet() catalog.Set {
	var released time.Time
	if r.ReleaseDate != "" {
		released, _ = time.Parse("2006-01-02", r.ReleaseDate)
	}

	return catalog.Set{
		ID:           r.ID,
		Name:         r.Name,
		Series:       r.Serie.Name,
		PrintedTotal: r.CardCount.Official,
		Total:        r.CardCount.Total,
		ReleaseDate:  released,
		SymbolURL:    r.Symbol,
		LogoURL:      r.Logo,
	}
}

// imageURL expands a TCGdex image base URL into a concrete asset URL.
// Quality is "low" or "high".
func imageURL(base, quality string) string {
	if base == "" {
		return ""
	}
	return base + "/" + quality + ".png"
}
