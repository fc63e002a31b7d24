//go:build unit

package scanner_test

import (
	"context"
	"testing"
	"time"

	"nightgate/internal/domain/scan"
	"nightgate/internal/pkg/backoff"
	"nightgate/internal/pkg/clock"
	"nightgate/internal/scanner"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type scriptedVerifier struct {
	responses map[string]*scanner.VerifyResponse
	errors    map[string]error
	calls     []scanner.QueueEntry
}

func (v *scriptedVerifier) Verify(_ context.Context, entry scanner.QueueEntry) (*scanner.VerifyResponse, error) {
	v.calls = append(v.calls, entry)
	if err, ok := v.errors[entry.Credential]; ok {
		return nil, err
	}
	if resp, ok := v.responses[entry.Credential]; ok {
		return resp, nil
	}
	return &scanner.VerifyResponse{Success: true}, nil
}

func (v *scriptedVerifier) calledCredentials() []string {
	out := make([]string, len(v.calls))
	for i, e := range v.calls {
		out[i] = e.Credential
	}
	return out
}

func testPolicy() backoff.Policy {
	return backoff.NewPolicy(time.Minute, 30*time.Minute)
}

func seedEntry(t *testing.T, q *memQueue, credential string, scannedAt time.Time) int64 {
	t.Helper()
	id, err := q.Enqueue(context.Background(), scanner.QueueEntry{
		Kind:         scanner.KindTicket,
		CredentialID: "t-" + credential,
		Credential:   credential,
		ScannedAt:    scannedAt,
		DeviceID:     "gate-1",
		SyncStatus:   scanner.SyncPending,
	})
	require.NoError(t, err)
	return id
}

func TestSyncMarksAcceptedEntriesSynced(t *testing.T) {
	now := time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC)
	queue := &memQueue{}
	idA := seedEntry(t, queue, "tkt_a.sig", now.Add(-2*time.Hour))
	idB := seedEntry(t, queue, "tkt_b.sig", now.Add(-1*time.Hour))

	verifier := &scriptedVerifier{}
	r := scanner.NewReconciler(queue, verifier, testPolicy(), clock.NewMockClock(now))

	stats, err := r.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Synced)
	assert.Equal(t, scanner.SyncSynced, queue.byID(idA).SyncStatus)
	assert.Equal(t, scanner.SyncSynced, queue.byID(idB).SyncStatus)
	// Oldest scan replays first so server-side ordering matches reality.
	assert.Equal(t, []string{"tkt_a.sig", "tkt_b.sig"}, verifier.calledCredentials())
}

// The verifier must receive the queued payload untouched; the server redoes
// its own signature check on replay.
func TestSyncReplaysStoredPayloadVerbatim(t *testing.T) {
	now := time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC)
	queue := &memQueue{}
	signed := "tkt_a.36a8deadbeef"
	seedEntry(t, queue, signed, now.Add(-time.Hour))

	verifier := &scriptedVerifier{}
	r := scanner.NewReconciler(queue, verifier, testPolicy(), clock.NewMockClock(now))

	_, err := r.Sync(context.Background())

	require.NoError(t, err)
	require.Len(t, verifier.calls, 1)
	assert.Equal(t, signed, verifier.calls[0].Credential)
	assert.Equal(t, scanner.KindTicket, verifier.calls[0].Kind)
}

func TestSyncDetectsLostFirstScan(t *testing.T) {
	now := time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC)
	localScan := now.Add(-30 * time.Minute)
	serverScan := now.Add(-45 * time.Minute)

	queue := &memQueue{}
	id := seedEntry(t, queue, "tkt_a.sig", localScan)

	verifier := &scriptedVerifier{responses: map[string]*scanner.VerifyResponse{
		"tkt_a.sig": {Success: false, Reason: scan.ReasonAlreadyScanned, ScannedAt: &serverScan},
	}}
	r := scanner.NewReconciler(queue, verifier, testPolicy(), clock.NewMockClock(now))

	stats, err := r.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Conflicts)
	assert.Equal(t, scanner.SyncConflict, queue.byID(id).SyncStatus)
}

func TestSyncAlreadyScannedByOurOwnReplayIsNotConflict(t *testing.T) {
	// Server timestamp equal to or after ours means our scan holds the
	// admission; a duplicate replay must not surface as a conflict.
	now := time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC)
	localScan := now.Add(-30 * time.Minute)
	serverScan := localScan

	queue := &memQueue{}
	id := seedEntry(t, queue, "tkt_a.sig", localScan)

	verifier := &scriptedVerifier{responses: map[string]*scanner.VerifyResponse{
		"tkt_a.sig": {Success: false, Reason: scan.ReasonAlreadyScanned, ScannedAt: &serverScan},
	}}
	r := scanner.NewReconciler(queue, verifier, testPolicy(), clock.NewMockClock(now))

	stats, err := r.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 0, stats.Conflicts)
	assert.Equal(t, 1, stats.Synced)
	assert.Equal(t, scanner.SyncSynced, queue.byID(id).SyncStatus)
}

func TestSyncTransientFailureSchedulesRetry(t *testing.T) {
	now := time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC)
	queue := &memQueue{}
	failing := seedEntry(t, queue, "tkt_down.sig", now.Add(-2*time.Hour))
	healthy := seedEntry(t, queue, "tkt_ok.sig", now.Add(-1*time.Hour))

	verifier := &scriptedVerifier{errors: map[string]error{"tkt_down.sig": assert.AnError}}
	r := scanner.NewReconciler(queue, verifier, testPolicy(), clock.NewMockClock(now))

	stats, err := r.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Synced)

	entry := queue.byID(failing)
	assert.Equal(t, scanner.SyncFailed, entry.SyncStatus)
	assert.Equal(t, 1, entry.RetryCount)
	require.NotNil(t, entry.LastRetryAt)
	assert.Equal(t, now, *entry.LastRetryAt)

	// One broken entry never blocks the rest of the queue.
	assert.Equal(t, scanner.SyncSynced, queue.byID(healthy).SyncStatus)
}

func TestSyncHonorsBackoffBeforeRetrying(t *testing.T) {
	start := time.Date(2025, 6, 2, 1, 0, 0, 0, time.UTC)
	clk := clock.NewMockClock(start)
	queue := &memQueue{}
	id := seedEntry(t, queue, "tkt_down.sig", start.Add(-time.Hour))

	verifier := &scriptedVerifier{errors: map[string]error{"tkt_down.sig": assert.AnError}}
	policy := testPolicy()
	r := scanner.NewReconciler(queue, verifier, policy, clk)

	_, err := r.Sync(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, queue.byID(id).RetryCount)
	firstCalls := len(verifier.calls)

	// Immediately after the failure the entry is inside its backoff window.
	stats, err := r.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Skipped)
	assert.Len(t, verifier.calls, firstCalls)

	// Past the window's upper bound the entry is due again.
	_, hi := policy.Bounds(0)
	clk.Advance(hi + time.Second)
	delete(verifier.errors, "tkt_down.sig")

	stats, err = r.Sync(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Synced)
	assert.Equal(t, scanner.SyncSynced, queue.byID(id).SyncStatus)
}

// Retention runs from the moment an entry reached synced, not from the scan
// itself: an old scan that only synced recently must survive the purge.
func TestSyncPurgesOnSyncedTimeNotScanTime(t *testing.T) {
	now := time.Date(2025, 6, 10, 1, 0, 0, 0, time.UTC)
	queue := &memQueue{}

	oldSync := seedEntry(t, queue, "tkt_old.sig", now.Add(-9*24*time.Hour))
	require.NoError(t, queue.UpdateSync(context.Background(), oldSync, scanner.SyncSynced, 0, nil, now.Add(-8*24*time.Hour)))

	lateSync := seedEntry(t, queue, "tkt_late.sig", now.Add(-9*24*time.Hour))
	require.NoError(t, queue.UpdateSync(context.Background(), lateSync, scanner.SyncSynced, 0, nil, now.Add(-time.Hour)))

	recent := seedEntry(t, queue, "tkt_recent.sig", now.Add(-time.Hour))
	require.NoError(t, queue.UpdateSync(context.Background(), recent, scanner.SyncSynced, 0, nil, now.Add(-time.Hour)))

	r := scanner.NewReconciler(queue, &scriptedVerifier{}, testPolicy(), clock.NewMockClock(now))

	stats, err := r.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Purged)
	assert.Equal(t, int64(0), queue.byID(oldSync).ID)
	assert.Equal(t, lateSync, queue.byID(lateSync).ID)
	assert.Equal(t, recent, queue.byID(recent).ID)
}
