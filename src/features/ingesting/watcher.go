package ingesting

import (
	"context"
	"time"
)

// Watcher surfaces new, fully-written files in the staging area.
type Watcher interface {
	Start(ctx context.Context, watchPath string) error
	Stop()
}

// FileEventType represents the type of file system event.
type FileEventType string

const (
	FileCreated FileEventType = "created"
	FileRemoved FileEventType = "removed"
)

// FileEvent represents a stable file surfaced by the watcher.
type FileEvent struct {
	Path      string
	EventType FileEventType
	Timestamp time.Time
}

// Notifier reports ingestion outcomes to an external sink. Implementations
// must never fail ingestion; errors are theirs to log.
type Notifier interface {
	TrackIngested(track string, duplicate bool)
	TrackRejected(path string, reason string)
}
