//go:build unit

package queries_test

import (
	"context"
	"testing"
	"time"

	"nightgate/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubScanAuditReader struct{}

func (stubScanAuditReader) ListRecent(_ context.Context, _ int32) ([]*queries.ScanAuditView, error) {
	return nil, nil
}

type stubEmailQueueReader struct{}

func (stubEmailQueueReader) ListRecent(_ context.Context, _ int32) ([]*queries.EmailJobView, error) {
	return nil, nil
}

func (stubEmailQueueReader) GetByID(_ context.Context, _ uuid.UUID) (*queries.EmailJobView, error) {
	return nil, nil
}

type stubTicketSnapshot struct {
	views []*queries.TicketView
}

func (s stubTicketSnapshot) ListActiveByEvent(_ context.Context, _ uuid.UUID) ([]*queries.TicketView, error) {
	return s.views, nil
}

type stubGuestPassSnapshot struct {
	views []*queries.GuestPassView
}

func (s stubGuestPassSnapshot) ListActiveByEvent(_ context.Context, _ uuid.UUID) ([]*queries.GuestPassView, error) {
	return s.views, nil
}

// The snapshot feed must carry every credential a gate can admit offline:
// tickets and guest passes, each with its re-entry rule resolved.
func TestEventSnapshotCombinesTicketsAndGuestPasses(t *testing.T) {
	eventID := uuid.New()
	scannedAt := time.Date(2025, 6, 1, 22, 0, 0, 0, time.UTC)
	checkedIn := "checked_in"
	pending := "pending"
	resvID := uuid.New()

	plain := &queries.TicketView{ID: uuid.New(), EventID: eventID, Status: "issued", Token: "tkt_plain"}
	vipTicket := &queries.TicketView{
		ID: uuid.New(), EventID: eventID, Status: "scanned", Token: "tkt_vip",
		ScannedAt: &scannedAt, VIPReservationID: &resvID, VIPReservationStatus: &checkedIn,
	}
	lapsedVIP := &queries.TicketView{
		ID: uuid.New(), EventID: eventID, Status: "issued", Token: "tkt_lapsed",
		VIPReservationID: &resvID, VIPReservationStatus: &pending,
	}

	pass := &queries.GuestPassView{
		ID: uuid.New(), ReservationID: resvID, EventID: eventID,
		Status: "issued", Token: "gp_a", ReservationStatus: "confirmed",
	}
	usedPass := &queries.GuestPassView{
		ID: uuid.New(), ReservationID: resvID, EventID: eventID,
		Status: "checked_in", Token: "gp_b", CheckedInAt: &scannedAt, ReservationStatus: "checked_in",
	}

	q := queries.NewInspectionQueries(
		stubScanAuditReader{},
		stubEmailQueueReader{},
		stubTicketSnapshot{views: []*queries.TicketView{plain, vipTicket, lapsedVIP}},
		stubGuestPassSnapshot{views: []*queries.GuestPassView{pass, usedPass}},
	)

	entries, err := q.EventSnapshot(context.Background(), eventID)
	require.NoError(t, err)
	require.Len(t, entries, 5)

	byToken := make(map[string]*queries.SnapshotEntryView, len(entries))
	for _, e := range entries {
		byToken[e.Token] = e
	}

	assert.Equal(t, "ticket", byToken["tkt_plain"].Kind)
	assert.False(t, byToken["tkt_plain"].ReEntryAllowed)

	assert.True(t, byToken["tkt_vip"].ReEntryAllowed)
	require.NotNil(t, byToken["tkt_vip"].ScannedAt)
	assert.True(t, byToken["tkt_vip"].ScannedAt.Equal(scannedAt))

	// A reservation that never confirmed grants no re-entry.
	assert.False(t, byToken["tkt_lapsed"].ReEntryAllowed)

	assert.Equal(t, "guest_pass", byToken["gp_a"].Kind)
	assert.Equal(t, pass.ID, byToken["gp_a"].CredentialID)
	assert.True(t, byToken["gp_a"].ReEntryAllowed)

	assert.Equal(t, "guest_pass", byToken["gp_b"].Kind)
	assert.Equal(t, "checked_in", byToken["gp_b"].Status)
	require.NotNil(t, byToken["gp_b"].ScannedAt)
	assert.True(t, byToken["gp_b"].ReEntryAllowed)
}
