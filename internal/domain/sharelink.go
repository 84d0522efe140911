package domain

import "time"

// ShareCodeLength is the length of the random public identifier in a
// share URL. 12 characters of the URL-safe alphabet is plenty of entropy
// for anonymous links while staying typeable.
const ShareCodeLength = 12

// ShareAnalytics is the denormalized view-tracking sub-object on a share
// link. It is only ever updated inside store transactions.
type ShareAnalytics struct {
	TotalViews    int64            `json:"total_views"`
	UniqueViewers int64            `json:"unique_viewers"`
	LastViewedAt  *time.Time       `json:"last_viewed_at,omitempty"`
	DailyViews    map[string]int64 `json:"daily_views,omitempty"` // "2026-08-28" -> count
}

// ShareLink grants anonymous read access to one binder. The Code doubles
// as the document key.
type ShareLink struct {
	Code      string         `json:"code"`
	BinderID  string         `json:"binder_id"`
	OwnerID   string         `json:"owner_id"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt *time.Time     `json:"expires_at,omitempty"`
	RevokedAt *time.Time     `json:"revoked_at,omitempty"`
	Analytics ShareAnalytics `json:"analytics"`
}

// Expired reports whether the link has passed its expiry.
func (l *ShareLink) Expired(now time.Time) bool {
	return l.ExpiresAt != nil && now.After(*l.ExpiresAt)
}

// Revoked reports whether the owner has revoked the link.
func (l *ShareLink) Revoked() bool {
	return l.RevokedAt != nil
}

// Active reports whether the link still grants access.
func (l *ShareLink) Active(now time.Time) bool {
	return !l.Revoked() && !l.Expired(now)
}

// RecordView bumps the view counters. unique marks a viewer not seen
// within the dedup window. Callers must run this inside a store
// transaction so concurrent views don't lose counts.
func (l *ShareLink) RecordView(now time.Time, unique bool) {
	l.Analytics.TotalViews++
	if unique {
		l.Analytics.UniqueViewers++
	}
	viewedAt := now
	l.Analytics.LastViewedAt = &viewedAt
	if l.Analytics.DailyViews == nil {
		l.Analytics.DailyViews = make(map[string]int64)
	}
	l.Analytics.DailyViews[now.UTC().Format("2006-01-02")]++
}
