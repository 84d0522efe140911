// Package catalog defines provider-neutral card catalog types. Concrete
// API clients live in the ptcg and tcgdex subpackages and map their wire
// formats onto these.
package catalog

import "time"

// Provider identifies which upstream API produced a card payload.
type Provider string

const (
	// ProviderPTCG is the primary Pokemon TCG API.
	ProviderPTCG Provider = "ptcg"
	// ProviderTCGdex is the fallback API.
	ProviderTCGdex Provider = "tcgdex"
)

// Card is one catalog card. IDs are provider IDs of the form "base1-4".
type Card struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Supertype  string   `json:"supertype,omitempty"`
	Subtypes   []string `json:"subtypes,omitempty"`
	HP         string   `json:"hp,omitempty"`
	Types      []string `json:"types,omitempty"`
	Number     string   `json:"number,omitempty"`
	Artist     string   `json:"artist,omitempty"`
	Rarity     string   `json:"rarity,omitempty"`
	SetID      string   `json:"set_id,omitempty"`
	SetName    string   `json:"set_name,omitempty"`
	SetSeries  string   `json:"set_series,omitempty"`
	ImageSmall string   `json:"image_small,omitempty"`
	ImageLarge string   `json:"image_large,omitempty"`
}

// Set is one catalog expansion set.
type Set struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Series       string    `json:"series,omitempty"`
	PrintedTotal int       `json:"printed_total,omitempty"`
	Total        int       `json:"total,omitempty"`
	ReleaseDate  time.Time `json:"release_date,omitzero"`
	SymbolURL    string    `json:"symbol_url,omitempty"`
	LogoURL      string    `json:"logo_url,omitempty"`
}

// SearchParams describes a card search across providers.
type SearchParams struct {
	Name      string // Card name, matched loosely
	SetID     string // Restrict to one set
	Rarity    string
	Supertype string
	Types     []string // Energy types

	Page     int // 1-based
	PageSize int
	OrderBy  string // Provider-specific sort field, e.g. "number", "-set.releaseDate"
}

// SearchPage is one page of search results with pagination metadata.
type SearchPage struct {
	Cards      []Card `json:"cards"`
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	TotalCount int    `json:"total_count"`
}

// HasMore reports whether another page exists.
func (p *SearchPage) HasMore() bool {
	return p.Page*p.PageSize < p.TotalCount
}
