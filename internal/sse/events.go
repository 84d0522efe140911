// Package sse implements Server-Sent Events for real-time binder updates and
// event broadcasting.
package sse

import (
	"time"

	"github.com/binderapp/binder-server/internal/domain"
)

// Binder edits follow a request/response pattern, so SSE is one-way:
// the server pushes change notifications and viewers of a shared binder
// see updates without polling.

// EventType represents the type of SSE Event.
type EventType string

const (
	// EventBinderCreated represents a binder creation event.
	EventBinderCreated EventType = "binder.created"
	// EventBinderUpdated represents a binder update event.
	EventBinderUpdated EventType = "binder.updated"
	// EventBinderDeleted represents a binder deletion event.
	EventBinderDeleted EventType = "binder.deleted"
	// EventBinderCardsChanged represents a change to a binder's card slots.
	EventBinderCardsChanged EventType = "binder.cards_changed"

	// EventShareCreated represents a share link creation event.
	EventShareCreated EventType = "share.created"
	// EventShareRevoked represents a share link revocation event.
	EventShareRevoked EventType = "share.revoked"
	// EventShareViewed represents a view recorded on a share link.
	// Only sent to the share owner.
	EventShareViewed EventType = "share.viewed"

	// EventBinderLiked represents a like being added or removed.
	EventBinderLiked EventType = "binder.liked"
	// EventBinderFavorited represents a favorite being added or removed.
	EventBinderFavorited EventType = "binder.favorited"
	// EventCommentAdded represents a new comment on a binder.
	EventCommentAdded EventType = "comment.added"
	// EventCommentDeleted represents a comment removal.
	EventCommentDeleted EventType = "comment.deleted"

	// EventVaultImportStarted represents a vault import start event.
	EventVaultImportStarted EventType = "vault.import_started"
	// EventVaultImportComplete represents a vault import completion event.
	EventVaultImportComplete EventType = "vault.import_completed"

	// EventHeartbeat represents a connection keepalive event.
	EventHeartbeat EventType = "heartbeat"
)

// Event represents an SSE event to be sent to clients.
// The Data field contains the event payload as a JSON object for direct
// deserialization.
type Event struct {
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"` // Event-specific data as JSON object
	Type      EventType `json:"type"`

	// Filtering fields for multi-user support.
	// When set, events are only delivered to clients matching these criteria.
	// Empty string means "broadcast to all".
	UserID   string `json:"-"` // Filter to specific user (not sent to client)
	BinderID string `json:"-"` // Filter to viewers of a specific binder (not sent to client)
}

// BinderEventData is the data payload for binder CRUD events.
// Card slots are omitted to keep events small; clients refetch the binder
// when they need the full grid.
type BinderEventData struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Public    bool      `json:"public"`
	CardCount int       `json:"card_count"`
	PageCount int       `json:"page_count"`
	UpdatedAt time.Time `json:"updated_at,omitempty"`
}

// BinderDeletedEventData is the data payload for binder delete events.
type BinderDeletedEventData struct {
	DeletedAt time.Time `json:"deleted_at"`
	BinderID  string    `json:"binder_id"`
}

// BinderCardsEventData is the data payload for card slot change events.
type BinderCardsEventData struct {
	BinderID  string `json:"binder_id"`
	CardCount int    `json:"card_count"`
	PageCount int    `json:"page_count"`
}

// ShareEventData is the data payload for share link lifecycle events.
type ShareEventData struct {
	Code      string     `json:"code"`
	BinderID  string     `json:"binder_id"`
	ExpiresAt *time.Time `json:"expires_at,omitempty"`
}

// ShareViewedEventData is the data payload for share view events.
type ShareViewedEventData struct {
	Code       string    `json:"code"`
	BinderID   string    `json:"binder_id"`
	TotalViews int64     `json:"total_views"`
	ViewedAt   time.Time `json:"viewed_at"`
}

// ReactionEventData is the data payload for like and favorite events.
type ReactionEventData struct {
	BinderID string `json:"binder_id"`
	Active   bool   `json:"active"` // true when added, false when removed
	Count    int64  `json:"count"`  // resulting total for the binder
}

// CommentEventData is the data payload for comment events.
type CommentEventData struct {
	Comment *domain.Comment `json:"comment"`
}

// CommentDeletedEventData is the data payload for comment delete events.
type CommentDeletedEventData struct {
	CommentID string `json:"comment_id"`
	BinderID  string `json:"binder_id"`
}

// VaultImportStartedEventData is the data payload for vault import start events.
type VaultImportStartedEventData struct {
	StartedAt time.Time `json:"started_at"`
	Path      string    `json:"path"`
}

// VaultImportCompleteEventData is the data payload for vault import completion.
type VaultImportCompleteEventData struct {
	CompletedAt    time.Time `json:"completed_at"`
	Path           string    `json:"path"`
	BindersAdded   int       `json:"binders_added"`
	BindersUpdated int       `json:"binders_updated"`
}

// HeartbeatEventData is the data payload for heartbeat events.
type HeartbeatEventData struct {
	ServerTime time.Time `json:"server_time"`
}

// NewBinderCreatedEvent creates a binder.created event.
func NewBinderCreatedEvent(binder *domain.Binder) Event {
	return Event{
		Type:      EventBinderCreated,
		Data:      binderEventData(binder),
		Timestamp: time.Now(),
		UserID:    binder.OwnerID,
	}
}

// NewBinderUpdatedEvent creates a binder.updated event.
func NewBinderUpdatedEvent(binder *domain.Binder) Event {
	return Event{
		Type:      EventBinderUpdated,
		Data:      binderEventData(binder),
		Timestamp: time.Now(),
		BinderID:  binder.ID,
	}
}

// NewBinderDeletedEvent creates a binder.deleted event.
func NewBinderDeletedEvent(binderID string, deletedAt time.Time) Event {
	return Event{
		Type: EventBinderDeleted,
		Data: BinderDeletedEventData{
			BinderID:  binderID,
			DeletedAt: deletedAt,
		},
		Timestamp: time.Now(),
		BinderID:  binderID,
	}
}

// NewBinderCardsChangedEvent creates a binder.cards_changed event.
func NewBinderCardsChangedEvent(binder *domain.Binder) Event {
	return Event{
		Type: EventBinderCardsChanged,
		Data: BinderCardsEventData{
			BinderID:  binder.ID,
			CardCount: binder.CardCount(),
			PageCount: binder.PageCount(),
		},
		Timestamp: time.Now(),
		BinderID:  binder.ID,
	}
}

// NewShareCreatedEvent creates a share.created event.
func NewShareCreatedEvent(share *domain.ShareLink) Event {
	return Event{
		Type: EventShareCreated,
		Data: ShareEventData{
			Code:      share.Code,
			BinderID:  share.BinderID,
			ExpiresAt: share.ExpiresAt,
		},
		Timestamp: time.Now(),
		UserID:    share.OwnerID,
	}
}

// NewShareRevokedEvent creates a share.revoked event.
func NewShareRevokedEvent(share *domain.ShareLink) Event {
	return Event{
		Type: EventShareRevoked,
		Data: ShareEventData{
			Code:     share.Code,
			BinderID: share.BinderID,
		},
		Timestamp: time.Now(),
		BinderID:  share.BinderID,
	}
}

// NewShareViewedEvent creates a share.viewed event for the share owner.
func NewShareViewedEvent(share *domain.ShareLink, viewedAt time.Time) Event {
	return Event{
		Type: EventShareViewed,
		Data: ShareViewedEventData{
			Code:       share.Code,
			BinderID:   share.BinderID,
			TotalViews: share.Analytics.TotalViews,
			ViewedAt:   viewedAt,
		},
		Timestamp: time.Now(),
		UserID:    share.OwnerID,
	}
}

// NewBinderLikedEvent creates a binder.liked event.
func NewBinderLikedEvent(binderID string, active bool, count int64) Event {
	return Event{
		Type: EventBinderLiked,
		Data: ReactionEventData{
			BinderID: binderID,
			Active:   active,
			Count:    count,
		},
		Timestamp: time.Now(),
		BinderID:  binderID,
	}
}

// NewBinderFavoritedEvent creates a binder.favorited event.
func NewBinderFavoritedEvent(binderID string, active bool, count int64) Event {
	return Event{
		Type: EventBinderFavorited,
		Data: ReactionEventData{
			BinderID: binderID,
			Active:   active,
			Count:    count,
		},
		Timestamp: time.Now(),
		BinderID:  binderID,
	}
}

// NewCommentAddedEvent creates a comment.added event.
func NewCommentAddedEvent(comment *domain.Comment) Event {
	return Event{
		Type:      EventCommentAdded,
		Data:      CommentEventData{Comment: comment},
		Timestamp: time.Now(),
		BinderID:  comment.BinderID,
	}
}

// NewCommentDeletedEvent creates a comment.deleted event.
func NewCommentDeletedEvent(commentID, binderID string) Event {
	return Event{
		Type: EventCommentDeleted,
		Data: CommentDeletedEventData{
			CommentID: commentID,
			BinderID:  binderID,
		},
		Timestamp: time.Now(),
		BinderID:  binderID,
	}
}

// NewVaultImportStartedEvent creates a vault.import_started event.
func NewVaultImportStartedEvent(path string) Event {
	return Event{
		Type: EventVaultImportStarted,
		Data: VaultImportStartedEventData{
			Path:      path,
			StartedAt: time.Now(),
		},
		Timestamp: time.Now(),
	}
}

// NewVaultImportCompleteEvent creates a vault.import_completed event.
func NewVaultImportCompleteEvent(path string, added, updated int) Event {
	return Event{
		Type: EventVaultImportComplete,
		Data: VaultImportCompleteEventData{
			Path:           path,
			CompletedAt:    time.Now(),
			BindersAdded:   added,
			BindersUpdated: updated,
		},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent creates a heartbeat event.
func NewHeartbeatEvent() Event {
	return Event{
		Type: EventHeartbeat,
		Data: HeartbeatEventData{
			ServerTime: time.Now(),
		},
		Timestamp: time.Now(),
	}
}

func binderEventData(b *domain.Binder) BinderEventData {
	return BinderEventData{
		ID:        b.ID,
		Name:      b.Name,
		Slug:      b.Slug,
		Public:    b.Public,
		CardCount: b.CardCount(),
		PageCount: b.PageCount(),
		UpdatedAt: b.UpdatedAt,
	}
}
