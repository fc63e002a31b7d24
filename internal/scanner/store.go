package scanner

import (
	"context"
	"time"
)

// QueueStore is the durable local queue of offline scans. Implementations
// must survive process restarts; the in-memory version exists for tests.
type QueueStore interface {
	Enqueue(ctx context.Context, entry QueueEntry) (int64, error)
	// ListUnsynced returns pending and failed entries ordered by the time
	// the scans originally occurred, oldest first.
	ListUnsynced(ctx context.Context) ([]QueueEntry, error)
	// UpdateSync moves an entry to a new sync state at the given time.
	// Entries reaching synced record that time; retention counts from it,
	// not from the original scan.
	UpdateSync(ctx context.Context, id int64, status SyncStatus, retryCount int, lastRetryAt *time.Time, at time.Time) error
	// PurgeSyncedBefore garbage-collects entries that reached synced before
	// the cutoff and reports how many were removed.
	PurgeSyncedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}
