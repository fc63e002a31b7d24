//go:build unit

package scanner_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"nightgate/internal/domain/scan"
	"nightgate/internal/infra"
	"nightgate/internal/infra/db"
	"nightgate/internal/pkg/backoff"
	"nightgate/internal/pkg/clock"
	"nightgate/internal/pkg/qrtoken"
	"nightgate/internal/scanner"
	"nightgate/internal/usecase/commands"
	"nightgate/internal/usecase/queries"
	"nightgate/internal/usecase/shared"
	"nightgate/internal/worker/audit"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// End-to-end offline round trip against the real scan use case: the queued
// payload must clear the server's signature verification, not just match a
// token somewhere.

type replayUoW struct{}

func (replayUoW) Within(ctx context.Context, fn func(context.Context, db.DBTX) error) error {
	return fn(ctx, nil)
}

func (replayUoW) WithDB(ctx context.Context, fn func(context.Context, db.DBTX) error) error {
	return fn(ctx, nil)
}

var _ shared.UnitOfWork = replayUoW{}

type replayTicketStore struct {
	mu      sync.Mutex
	byToken map[string]*queries.TicketView
}

func (s *replayTicketStore) FindByToken(_ context.Context, _ db.DBTX, token string) (*queries.TicketView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.byToken[token]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, infra.WrapRepoErr("ticket not found", assert.AnError, infra.KindNotFound)
}

func (s *replayTicketStore) FindByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*queries.TicketView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.byToken {
		if v.ID == id {
			copied := *v
			return &copied, nil
		}
	}
	return nil, infra.WrapRepoErr("ticket not found", assert.AnError, infra.KindNotFound)
}

func (s *replayTicketStore) ClaimAdmission(_ context.Context, _ db.DBTX, id uuid.UUID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.byToken {
		if v.ID == id && v.Status == "issued" {
			v.Status = "scanned"
			scanned := at
			v.ScannedAt = &scanned
			return true, nil
		}
	}
	return false, nil
}

func (s *replayTicketStore) status(token string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byToken[token].Status
}

type replayGuestPassStore struct {
	mu      sync.Mutex
	byToken map[string]*queries.GuestPassView
}

func (s *replayGuestPassStore) FindGuestPassByToken(_ context.Context, _ db.DBTX, token string) (*queries.GuestPassView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.byToken[token]; ok {
		copied := *v
		return &copied, nil
	}
	return nil, infra.WrapRepoErr("guest pass not found", assert.AnError, infra.KindNotFound)
}

func (s *replayGuestPassStore) FindGuestPassByID(_ context.Context, _ db.DBTX, id uuid.UUID) (*queries.GuestPassView, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.byToken {
		if v.ID == id {
			copied := *v
			return &copied, nil
		}
	}
	return nil, infra.WrapRepoErr("guest pass not found", assert.AnError, infra.KindNotFound)
}

func (s *replayGuestPassStore) ClaimGuestCheckIn(_ context.Context, _ db.DBTX, id uuid.UUID, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.byToken {
		if v.ID == id && v.Status == "issued" {
			v.Status = "checked_in"
			checked := at
			v.CheckedInAt = &checked
			return true, nil
		}
	}
	return false, nil
}

func (s *replayGuestPassStore) MarkReservationCheckedIn(_ context.Context, _ db.DBTX, _ uuid.UUID) error {
	return nil
}

func (s *replayGuestPassStore) status(token string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.byToken[token].Status
}

type noopEmitter struct{}

func (noopEmitter) Emit(audit.Event) {}

// useCaseVerifier stands in for the HTTP client and drives the queued scan
// through the same ScanCommands contract the online endpoints use.
type useCaseVerifier struct {
	uc commands.ScanCommands
}

func (v useCaseVerifier) Verify(ctx context.Context, entry scanner.QueueEntry) (*scanner.VerifyResponse, error) {
	if entry.Kind == scanner.KindGuestPass {
		res, err := v.uc.CheckInGuestPass(ctx, commands.GuestPassCheckInParams{
			Credential: entry.Credential,
			Method:     scan.MethodQR,
			DeviceID:   entry.DeviceID,
		})
		if err != nil {
			return nil, err
		}
		return &scanner.VerifyResponse{
			Success:   res.Accepted,
			Reason:    res.Reason,
			ReEntry:   res.ReEntry,
			ScannedAt: res.CheckedInAt,
		}, nil
	}

	res, err := v.uc.Verify(ctx, commands.VerifyScanParams{
		Credential: entry.Credential,
		Method:     scan.MethodQR,
		DeviceID:   entry.DeviceID,
	})
	if err != nil {
		return nil, err
	}
	return &scanner.VerifyResponse{
		Success:   res.Accepted,
		Reason:    res.Reason,
		ReEntry:   res.ReEntry,
		ScannedAt: res.ScannedAt,
	}, nil
}

func TestOfflineScanReplaysThroughServerVerification(t *testing.T) {
	now := time.Date(2025, 6, 1, 23, 0, 0, 0, time.UTC)
	signer := qrtoken.NewSigner("venue-secret")
	clk := clock.NewMockClock(now)

	ticketID := uuid.New()
	passID := uuid.New()
	tickets := &replayTicketStore{byToken: map[string]*queries.TicketView{
		"tkt_door": {ID: ticketID, EventID: uuid.New(), Status: "issued", Token: "tkt_door"},
	}}
	passes := &replayGuestPassStore{byToken: map[string]*queries.GuestPassView{
		"vip_door": {ID: passID, ReservationID: uuid.New(), EventID: uuid.New(), Status: "issued", Token: "vip_door", ReservationStatus: "confirmed"},
	}}
	uc := commands.NewScanUseCase(tickets, passes, replayUoW{}, signer, noopEmitter{}, clk)

	queue := &memQueue{}
	cache := newTestCache(t,
		scanner.CachedCredential{Kind: scanner.KindTicket, CredentialID: ticketID.String(), Token: "tkt_door", Status: "issued"},
		scanner.CachedCredential{Kind: scanner.KindGuestPass, CredentialID: passID.String(), Token: "vip_door", Status: "issued"},
	)
	device := scanner.NewScanner("gate-1", cache, queue, signer, clk)

	// Doors are offline: both credentials are admitted locally and queued.
	ticketResult, err := device.ScanOffline(context.Background(), signer.Sign("tkt_door"))
	require.NoError(t, err)
	require.True(t, ticketResult.Accepted)
	passResult, err := device.ScanOffline(context.Background(), signer.Sign("vip_door"))
	require.NoError(t, err)
	require.True(t, passResult.Accepted)
	require.Len(t, queue.entries, 2)

	// Connectivity returns; the reconciler drains the queue against the
	// real verification contract including the signature check.
	r := scanner.NewReconciler(queue, useCaseVerifier{uc: uc}, backoff.NewPolicy(time.Minute, 30*time.Minute), clk)
	stats, err := r.Sync(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 2, stats.Synced)
	assert.Equal(t, 0, stats.Conflicts)
	assert.Equal(t, 0, stats.Failed)

	// The server actually consumed the admissions instead of bouncing the
	// replays as unsigned.
	assert.Equal(t, "scanned", tickets.status("tkt_door"))
	assert.Equal(t, "checked_in", passes.status("vip_door"))
	for _, e := range queue.entries {
		assert.Equal(t, scanner.SyncSynced, e.SyncStatus)
		require.NotNil(t, e.SyncedAt)
	}
}
