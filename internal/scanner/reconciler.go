package scanner

import (
	"context"
	"log/slog"
	"time"

	"nightgate/internal/domain/scan"
	"nightgate/internal/pkg/backoff"
	"nightgate/internal/pkg/clock"
)

const syncedRetention = 7 * 24 * time.Hour

// VerifyResponse mirrors the scan API's answer, including the server's
// recorded admission time used for first-scan-wins conflict detection.
type VerifyResponse struct {
	Success   bool
	Reason    scan.Reason
	ReEntry   bool
	ScannedAt *time.Time
}

// VerifierClient submits a queued scan through the same verification
// contract the online path uses. The reconciler owns no verification logic.
type VerifierClient interface {
	Verify(ctx context.Context, entry QueueEntry) (*VerifyResponse, error)
}

type SyncStats struct {
	Synced    int
	Conflicts int
	Failed    int
	Skipped   int
	Purged    int64
}

// Reconciler drains the offline queue when connectivity is back. Entries are
// replayed oldest-scan-first within this device's queue; other devices
// reconcile independently and conflicts resolve purely on the server's
// recorded timestamps.
type Reconciler struct {
	queue    QueueStore
	verifier VerifierClient
	policy   backoff.Policy
	clock    clock.Clock
}

func NewReconciler(queue QueueStore, verifier VerifierClient, policy backoff.Policy, clk clock.Clock) *Reconciler {
	return &Reconciler{
		queue:    queue,
		verifier: verifier,
		policy:   policy,
		clock:    clk,
	}
}

// Sync processes every due entry. One entry's failure never aborts the rest.
func (r *Reconciler) Sync(ctx context.Context) (SyncStats, error) {
	var stats SyncStats

	entries, err := r.queue.ListUnsynced(ctx)
	if err != nil {
		return stats, err
	}

	for _, entry := range entries {
		if !r.isDue(entry) {
			stats.Skipped++
			continue
		}
		r.syncEntry(ctx, entry, &stats)
	}

	purged, err := r.queue.PurgeSyncedBefore(ctx, r.clock.Now().Add(-syncedRetention))
	if err != nil {
		slog.Warn("failed to purge synced scan entries", "error", err.Error())
	}
	stats.Purged = purged

	return stats, nil
}

func (r *Reconciler) syncEntry(ctx context.Context, entry QueueEntry, stats *SyncStats) {
	resp, err := r.verifier.Verify(ctx, entry)
	if err != nil {
		// Transient: network or server failure. Back off and retry later.
		r.scheduleRetry(ctx, entry)
		stats.Failed++
		return
	}

	switch {
	case resp.Success:
		r.markStatus(ctx, entry, SyncSynced)
		stats.Synced++

	case resp.Reason == scan.ReasonAlreadyScanned && r.lostFirstScan(entry, resp):
		// Another device admitted this credential first. The earlier scan
		// owns the admission; our local "success" display stands
		// historically but the credential is conclusively consumed.
		slog.Info("offline scan lost first-scan-wins",
			"credential_id", entry.CredentialID,
			"local_scanned_at", entry.ScannedAt,
			"server_scanned_at", resp.ScannedAt)
		r.markStatus(ctx, entry, SyncConflict)
		stats.Conflicts++

	default:
		// Any other server verdict (including already_scanned where our
		// scan is the earlier one) is final for this entry; the server-side
		// audit trail carries the verdict.
		r.markStatus(ctx, entry, SyncSynced)
		stats.Synced++
	}
}

func (r *Reconciler) lostFirstScan(entry QueueEntry, resp *VerifyResponse) bool {
	return resp.ScannedAt != nil && resp.ScannedAt.Before(entry.ScannedAt)
}

func (r *Reconciler) markStatus(ctx context.Context, entry QueueEntry, status SyncStatus) {
	if err := r.queue.UpdateSync(ctx, entry.ID, status, entry.RetryCount, entry.LastRetryAt, r.clock.Now()); err != nil {
		slog.Error("failed to update queue entry", "entry_id", entry.ID, "error", err.Error())
	}
}

func (r *Reconciler) scheduleRetry(ctx context.Context, entry QueueEntry) {
	now := r.clock.Now()
	if err := r.queue.UpdateSync(ctx, entry.ID, SyncFailed, entry.RetryCount+1, &now, now); err != nil {
		slog.Error("failed to schedule queue retry", "entry_id", entry.ID, "error", err.Error())
	}
}

// isDue applies the backoff schedule to failed entries. Pending entries are
// always due.
func (r *Reconciler) isDue(entry QueueEntry) bool {
	if entry.SyncStatus != SyncFailed || entry.LastRetryAt == nil {
		return true
	}
	wait := r.policy.Delay(entry.RetryCount - 1)
	return !r.clock.Now().Before(entry.LastRetryAt.Add(wait))
}
