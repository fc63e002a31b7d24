package repository

import (
	"context"
	"errors"
	"time"

	"nightgate/internal/domain/ticket"
	"nightgate/internal/infra"
	"nightgate/internal/infra/db"
	"nightgate/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const ticketSelectColumns = `
	t.id, t.event_id, t.holder_name, t.holder_email, t.status, t.token,
	t.scanned_at, t.vip_reservation_id, r.status, t.created_at, t.updated_at`

const ticketSelectBase = `
SELECT` + ticketSelectColumns + `
FROM tickets t
LEFT JOIN vip_reservations r ON r.id = t.vip_reservation_id`

type TicketRepository struct {
	db db.DBTX
}

func NewTicketRepository(pool db.DBTX) *TicketRepository {
	return &TicketRepository{db: pool}
}

func (r *TicketRepository) FindByToken(ctx context.Context, dbtx db.DBTX, token string) (*queries.TicketView, error) {
	row := dbtx.QueryRow(ctx, ticketSelectBase+` WHERE t.token = $1`, token)
	return r.scanTicketRow(row, "ticket not found by token")
}

func (r *TicketRepository) FindByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*queries.TicketView, error) {
	row := dbtx.QueryRow(ctx, ticketSelectBase+` WHERE t.id = $1`, id)
	return r.scanTicketRow(row, "ticket not found by id")
}

// ClaimAdmission performs the single-admission compare-and-swap: the
// issued→scanned transition succeeds for exactly one caller, no matter how
// many devices race it. Callers must treat claimed=false as already_scanned.
func (r *TicketRepository) ClaimAdmission(ctx context.Context, dbtx db.DBTX, id uuid.UUID, at time.Time) (bool, error) {
	tag, err := dbtx.Exec(ctx, `
		UPDATE tickets
		SET status = 'scanned', scanned_at = $2, updated_at = now()
		WHERE id = $1 AND status = 'issued'`,
		id, at,
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to claim ticket admission", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *TicketRepository) Insert(ctx context.Context, tx db.DBTX, t *ticket.Ticket) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO tickets (id, event_id, holder_name, holder_email, status, token, vip_reservation_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		t.ID(), t.EventID(), t.HolderName(), t.HolderEmail(), t.Status().String(), t.Token(), t.VIPReservationID(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("ticket already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to insert ticket", err)
	}
	return nil
}

// ListActiveByEvent feeds the gate devices' offline cache snapshot: every
// credential still allowed to appear at this event's door.
func (r *TicketRepository) ListActiveByEvent(ctx context.Context, eventID uuid.UUID) ([]*queries.TicketView, error) {
	rows, err := r.db.Query(ctx, ticketSelectBase+`
		WHERE t.event_id = $1 AND t.status IN ('issued', 'scanned')
		ORDER BY t.created_at`,
		eventID,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list active tickets", err)
	}
	defer rows.Close()

	var result []*queries.TicketView
	for rows.Next() {
		view, err := r.scanTicketValues(rows)
		if err != nil {
			return nil, infra.WrapRepoErr("failed to scan ticket row", err)
		}
		result = append(result, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate ticket rows", err)
	}
	return result, nil
}

func (r *TicketRepository) scanTicketRow(row pgx.Row, notFoundMsg string) (*queries.TicketView, error) {
	view, err := scanTicket(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr(notFoundMsg, err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to query ticket", err)
	}
	return view, nil
}

func (r *TicketRepository) scanTicketValues(rows pgx.Rows) (*queries.TicketView, error) {
	return scanTicket(rows)
}

func scanTicket(row pgx.Row) (*queries.TicketView, error) {
	var v queries.TicketView
	err := row.Scan(
		&v.ID, &v.EventID, &v.HolderName, &v.HolderEmail, &v.Status, &v.Token,
		&v.ScannedAt, &v.VIPReservationID, &v.VIPReservationStatus, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
