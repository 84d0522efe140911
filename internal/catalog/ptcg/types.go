package ptcg

import (
	"regexp"
	"time"

	"github.com/binderapp/binder-server/internal/catalog"
)

// cardIDPattern matches provider card IDs like "base1-4" or "swsh12pt5gg-GG44".
var cardIDPattern = regexp.MustCompile(`^[a-z0-9]+(\.[0-9]+)?-[A-Za-z0-9]+$`)

// ValidCardID reports whether a string looks like a card ID.
func ValidCardID(id string) bool {
	return cardIDPattern.MatchString(id)
}

// Raw API response types (internal)

type rawCard struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Supertype string    `json:"supertype"`
	Subtypes  []string  `json:"subtypes"`
	HP        string    `json:"hp"`
	Types     []string  `json:"types"`
	Number    string    `json:"number"`
	Artist    string    `json:"artist"`
	Rarity    string    `json:"rarity"`
	Set       rawSet    `json:"set"`
	Images    rawImages `json:"images"`
}

type rawSet struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Series       string `json:"series"`
	PrintedTotal int    `json:"printedTotal"`
	Total        int    `json:"total"`
	ReleaseDate  string `json:"releaseDate"` // "1999/01/09"
	Images       struct {
		Symbol string `json:"symbol"`
		Logo   string `json:"logo"`
	} `json:"images"`
}

type rawImages struct {
	Small string `json:"small"`
	Large string `json:"large"`
}

type cardResponse struct {
	Data rawCard `json:"data"`
}

type cardListResponse struct {
	Data       []rawCard `json:"data"`
	Page       int       `json:"page"`
	PageSize   int       `json:"pageSize"`
	Count      int       `json:"count"`
	TotalCount int       `json:"totalCount"`
}

type setResponse struct {
	Data rawSet `json:"data"`
}

// toCard maps the wire format onto the provider-neutral card.
func (r *rawCard) toCard() catalog.Card {
	return catalog.Card{
		ID:         r.ID,
		Name:       r.Name,
		Supertype:  r.Supertype,
		Subtypes:   r.Subtypes,
		HP:         r.HP,
		Types:      r.Types,
		Number:     r.Number,
		Artist:     r.Artist,
		Rarity:     r.Rarity,
		SetID:      r.Set.ID,
		SetName:    r.Set.Name,
		SetSeries:  r.Set.Series,
		ImageSmall: r.Images.Small,
		ImageLarge: r.Images.Large,
	}
}

// toSet maps the wire format onto the provider-neutral set.
func (r *rawSet) toSet() catalog.Set {
	var released time.Time
	if r.ReleaseDate != "" {
		released, _ = time.Parse("2006/01/02", r.ReleaseDate)
	}

	return catalog.Set{
		ID:           r.ID,
		Name:         r.Name,
		Series:       r.Series,
		PrintedTotal: r.PrintedTotal,
		Total:        r.Total,
		ReleaseDate:  released,
		SymbolURL:    r.Images.Symbol,
		LogoURL:      r.Images.Logo,
	}
}
