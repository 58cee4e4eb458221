package activity

import (
	"context"
	"time"
)

// Recorder defines the write port for audit-log entries.
type Recorder interface {
	// Record persists one entry.
	Record(ctx context.Context, entry *Entry) error
}

// Reader defines the read port for audit-log entries.
type Reader interface {
	// RecentFor returns the newest entries for a learner, most recent first.
	RecentFor(ctx context.Context, learnerID string, limit int) ([]*Entry, error)

	// CountSince counts a learner's entries since the given time.
	CountSince(ctx context.Context, learnerID string, since time.Time) (int, error)
}
