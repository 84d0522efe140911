package watcher

import "time"

// EventType represents the type of file system event.
type EventType int

const (
	// EventAdded is emitted when a new export file is detected (after settling)
	EventAdded EventType = iota
	// EventModified is emitted when an existing export file changes (after settling)
	EventModified
	// EventRemoved is emitted when an export file is deleted
	EventRemoved
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventModified:
		return "modified"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event represents a vault directory event.
type Event struct {
	// ModTime is the file's last modification time
	ModTime time.Time

	// Path is the file path
	Path string

	// Size is the file size in bytes
	Size int64

	// Type is the kind of event (added, modified, removed)
	Type EventType
}
