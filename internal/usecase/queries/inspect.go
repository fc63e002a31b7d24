package queries

import (
	"context"

	"nightgate/internal/domain/vip"

	"github.com/google/uuid"
)

// Owner-facing read side: door audit trail, email queue health, and the
// credential snapshot feed that gate devices pull for offline operation.

type ScanAuditReader interface {
	ListRecent(ctx context.Context, limit int32) ([]*ScanAuditView, error)
}

type EmailQueueReader interface {
	ListRecent(ctx context.Context, limit int32) ([]*EmailJobView, error)
	GetByID(ctx context.Context, id uuid.UUID) (*EmailJobView, error)
}

type SnapshotReader interface {
	ListActiveByEvent(ctx context.Context, eventID uuid.UUID) ([]*TicketView, error)
}

type GuestPassSnapshotReader interface {
	ListActiveByEvent(ctx context.Context, eventID uuid.UUID) ([]*GuestPassView, error)
}

type InspectionQueries interface {
	RecentScans(ctx context.Context, limit int32) ([]*ScanAuditView, error)
	RecentEmailJobs(ctx context.Context, limit int32) ([]*EmailJobView, error)
	EmailJob(ctx context.Context, id uuid.UUID) (*EmailJobView, error)
	EventSnapshot(ctx context.Context, eventID uuid.UUID) ([]*SnapshotEntryView, error)
}

type inspectionQueriesImpl struct {
	scans       ScanAuditReader
	emails      EmailQueueReader
	tickets     SnapshotReader
	guestPasses GuestPassSnapshotReader
}

func NewInspectionQueries(scans ScanAuditReader, emails EmailQueueReader, tickets SnapshotReader, guestPasses GuestPassSnapshotReader) InspectionQueries {
	return &inspectionQueriesImpl{scans: scans, emails: emails, tickets: tickets, guestPasses: guestPasses}
}

func (q *inspectionQueriesImpl) RecentScans(ctx context.Context, limit int32) ([]*ScanAuditView, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return q.scans.ListRecent(ctx, limit)
}

func (q *inspectionQueriesImpl) RecentEmailJobs(ctx context.Context, limit int32) ([]*EmailJobView, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	return q.emails.ListRecent(ctx, limit)
}

func (q *inspectionQueriesImpl) EmailJob(ctx context.Context, id uuid.UUID) (*EmailJobView, error) {
	return q.emails.GetByID(ctx, id)
}

// EventSnapshot assembles the admissible-credential set for an event:
// tickets plus active VIP guest passes, each tagged with whether its
// linked reservation grants re-entry.
func (q *inspectionQueriesImpl) EventSnapshot(ctx context.Context, eventID uuid.UUID) ([]*SnapshotEntryView, error) {
	tickets, err := q.tickets.ListActiveByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	passes, err := q.guestPasses.ListActiveByEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}

	entries := make([]*SnapshotEntryView, 0, len(tickets)+len(passes))
	for _, t := range tickets {
		reEntry := false
		if t.VIPReservationStatus != nil {
			reEntry = vip.ReservationStatus(*t.VIPReservationStatus).AllowsReEntry()
		}
		entries = append(entries, &SnapshotEntryView{
			Kind:           "ticket",
			CredentialID:   t.ID,
			Token:          t.Token,
			Status:         t.Status,
			ScannedAt:      t.ScannedAt,
			ReEntryAllowed: reEntry,
		})
	}
	for _, p := range passes {
		entries = append(entries, &SnapshotEntryView{
			Kind:           "guest_pass",
			CredentialID:   p.ID,
			Token:          p.Token,
			Status:         p.Status,
			ScannedAt:      p.CheckedInAt,
			ReEntryAllowed: vip.ReservationStatus(p.ReservationStatus).AllowsReEntry(),
		})
	}
	return entries, nil
}
