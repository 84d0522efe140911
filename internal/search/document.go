// Package search provides full-text search over binders using Bleve.
// Owners find their own binders by name, description or card notes, and
// public binders are discoverable by anyone.
package search

import (
	"strings"

	"github.com/binderapp/binder-server/internal/domain"
)

// BinderDocument is the document structure for the Bleve index.
//
// Card notes are denormalized into one field so a single query covers
// "the binder where I wrote 'traded with Sam'". The trade-off is
// reindexing the whole document on every slot edit, which is cheap at
// binder sizes.
type BinderDocument struct {
	ID          string `json:"id"`
	OwnerID     string `json:"owner_id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Slug        string `json:"slug,omitempty"`
	CardNotes   string `json:"card_notes,omitempty"` // Concatenated slot notes
	Public      bool   `json:"public"`

	CardCount int `json:"card_count"`

	// Timestamps for sorting. Unix millis.
	CreatedAt int64 `json:"created_at"`
	UpdatedAt int64 `json:"updated_at"`
}

// ToMap converts the document to a map with lowercase field names.
// Bleve by default uses Go struct field names (capitalized), but our
// mapping uses lowercase names, so we convert explicitly.
func (d *BinderDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"owner_id":   d.OwnerID,
		"name":       d.Name,
		"public":     d.Public,
		"card_count": d.CardCount,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	// Optional fields - only add if non-empty
	if d.Description != "" {
		m["description"] = d.Description
	}
	if d.Slug != "" {
		m["slug"] = d.Slug
	}
	if d.CardNotes != "" {
		m["card_notes"] = d.CardNotes
	}

	return m
}

// BinderToDocument converts a domain Binder to a BinderDocument.
func BinderToDocument(binder *domain.Binder) *BinderDocument {
	var notes []string
	for _, ref := range binder.Cards {
		if ref.Notes != "" {
			notes = append(notes, ref.Notes)
		}
	}

	return &BinderDocument{
		ID:          binder.ID,
		OwnerID:     binder.OwnerID,
		Name:        binder.Name,
		Description: binder.Description,
		Slug:        binder.Slug,
		CardNotes:   strings.Join(notes, "\n"),
		Public:      binder.Public,
		CardCount:   binder.CardCount(),
		CreatedAt:   binder.CreatedAt.UnixMilli(),
		UpdatedAt:   binder.UpdatedAt.UnixMilli(),
	}
}
