package domain

import "time"

// Reaction is a (user, binder) pair used for both likes and favorites.
// The two live in separate store collections but share a shape: at most
// one reaction per user per binder, toggled on repeat.
type Reaction struct {
	UserID    string    `json:"user_id"`
	BinderID  string    `json:"binder_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ReactionKey builds the composite document key for a reaction.
func ReactionKey(userID, binderID string) string {
	return userID + ":" + binderID
}

// Comment is a user comment on a public binder. Soft-deleted comments stay
// in place so threads keep their shape.
type Comment struct {
	Syncable
	BinderID string `json:"binder_id"`
	AuthorID string `json:"author_id"`
	Body     string `json:"body"`
}

// MaxCommentLength bounds comment bodies.
const MaxCommentLength = 2000

// BinderStats is the denormalized counter document kept per binder,
// updated transactionally alongside reaction writes.
type BinderStats struct {
	BinderID  string `json:"binder_id"`
	Likes     int64  `json:"likes"`
	Favorites int64  `json:"favorites"`
	Comments  int64  `json:"comments"`
	Views     int64  `json:"views"`
}
