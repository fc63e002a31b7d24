// Package scanner is the gate-device side of the platform: a local snapshot
// of admissible credentials, a durable queue of scans taken offline, and the
// reconciler that replays them against the server once connectivity returns.
package scanner

import (
	"context"
	"errors"
	"log/slog"

	"nightgate/internal/domain/scan"
	"nightgate/internal/pkg/clock"
	"nightgate/internal/pkg/qrtoken"
)

type Scanner struct {
	deviceID string
	cache    *Cache
	queue    QueueStore
	signer   *qrtoken.Signer
	clock    clock.Clock
}

func NewScanner(deviceID string, cache *Cache, queue QueueStore, signer *qrtoken.Signer, clk clock.Clock) *Scanner {
	return &Scanner{
		deviceID: deviceID,
		cache:    cache,
		queue:    queue,
		signer:   signer,
		clock:    clk,
	}
}

// ScanOffline decides a scan with no connectivity. Unknown credentials are
// never provisionally admitted: a token absent from the snapshot is rejected
// outright, which closes the forgery hole the online path's richer
// resolution would otherwise leave open offline.
func (s *Scanner) ScanOffline(ctx context.Context, qrPayload string) (scan.Result, error) {
	token, err := s.signer.Verify(qrPayload)
	if err != nil {
		switch {
		case errors.Is(err, qrtoken.ErrUnsigned):
			return scan.Reject(scan.ReasonUnsignedQR), nil
		case errors.Is(err, qrtoken.ErrInvalidSignature):
			return scan.Reject(scan.ReasonInvalidSignature), nil
		default:
			return scan.Reject(scan.ReasonInvalidFormat), nil
		}
	}

	cred, found := s.cache.Lookup(token)
	if !found {
		return scan.Reject(scan.ReasonOfflineUnknown), nil
	}

	now := s.clock.Now()

	if cred.Consumed() {
		if cred.ReEntryAllowed {
			// Re-entry works from the snapshot too; no queue entry because
			// re-entry consumes nothing.
			return scan.AcceptReEntry(), nil
		}
		return scan.Reject(scan.ReasonAlreadyScanned), nil
	}

	// The queue keeps the signed payload exactly as presented; the replay
	// goes through the server's own signature verification, so a stripped
	// token would be rejected as unsigned.
	entry := QueueEntry{
		Kind:         cred.Kind,
		CredentialID: cred.CredentialID,
		Credential:   qrPayload,
		ScannedAt:    now,
		DeviceID:     s.deviceID,
		SyncStatus:   SyncPending,
	}
	if _, err := s.queue.Enqueue(ctx, entry); err != nil {
		// Queue persistence failing is a device-storage fault; the guest
		// is already through the door, so record loudly and accept.
		slog.Error("failed to queue offline scan", "device_id", s.deviceID, "error", err.Error())
		return scan.Accept(), err
	}

	s.cache.MarkScannedLocally(token, now)
	return scan.Accept(), nil
}
