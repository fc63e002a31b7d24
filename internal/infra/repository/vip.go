package repository

import (
	"context"
	"errors"
	"time"

	"nightgate/internal/domain/vip"
	"nightgate/internal/infra"
	"nightgate/internal/infra/db"
	"nightgate/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const guestPassSelectBase = `
SELECT p.id, p.reservation_id, r.event_id, p.guest_name, p.status, p.token,
       p.checked_in_at, r.status
FROM vip_guest_passes p
JOIN vip_reservations r ON r.id = p.reservation_id`

type VIPRepository struct {
	db db.DBTX
}

func NewVIPRepository(pool db.DBTX) *VIPRepository {
	return &VIPRepository{db: pool}
}

func (r *VIPRepository) InsertReservation(ctx context.Context, tx db.DBTX, res *vip.Reservation) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO vip_reservations (id, event_id, purchaser_name, purchaser_email, table_name, status, guest_limit)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		res.ID(), res.EventID(), res.PurchaserName(), res.PurchaserEmail(),
		res.TableName(), res.Status().String(), res.GuestLimit(),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return infra.WrapRepoErr("vip reservation already exists", err, infra.KindDuplicateKey)
		}
		return infra.WrapRepoErr("failed to insert vip reservation", err)
	}
	return nil
}

func (r *VIPRepository) InsertGuestPass(ctx context.Context, tx db.DBTX, pass *vip.GuestPass) error {
	_, err := tx.Exec(ctx, `
		INSERT INTO vip_guest_passes (id, reservation_id, guest_name, status, token)
		VALUES ($1, $2, $3, $4, $5)`,
		pass.ID(), pass.ReservationID(), pass.GuestName(), pass.Status().String(), pass.Token(),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return infra.WrapRepoErr("guest pass references missing reservation", err, infra.KindForeignKeyViolated)
		}
		return infra.WrapRepoErr("failed to insert guest pass", err)
	}
	return nil
}

func (r *VIPRepository) FindGuestPassByToken(ctx context.Context, dbtx db.DBTX, token string) (*queries.GuestPassView, error) {
	row := dbtx.QueryRow(ctx, guestPassSelectBase+` WHERE p.token = $1`, token)
	return scanGuestPass(row, "guest pass not found by token")
}

func (r *VIPRepository) FindGuestPassByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*queries.GuestPassView, error) {
	row := dbtx.QueryRow(ctx, guestPassSelectBase+` WHERE p.id = $1`, id)
	return scanGuestPass(row, "guest pass not found by id")
}

// ClaimGuestCheckIn is the guest-pass counterpart of ClaimAdmission: only the
// first scan wins issued→checked_in; losers are re-entries, not rejections.
func (r *VIPRepository) ClaimGuestCheckIn(ctx context.Context, dbtx db.DBTX, id uuid.UUID, at time.Time) (bool, error) {
	tag, err := dbtx.Exec(ctx, `
		UPDATE vip_guest_passes
		SET status = 'checked_in', checked_in_at = $2, updated_at = now()
		WHERE id = $1 AND status = 'issued'`,
		id, at,
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to claim guest pass check-in", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkReservationCheckedIn flips confirmed→checked_in when the purchaser
// first arrives. Best-effort conditional update; racing scans are harmless.
func (r *VIPRepository) MarkReservationCheckedIn(ctx context.Context, dbtx db.DBTX, id uuid.UUID) error {
	_, err := dbtx.Exec(ctx, `
		UPDATE vip_reservations
		SET status = 'checked_in', updated_at = now()
		WHERE id = $1 AND status = 'confirmed'`,
		id,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to mark reservation checked in", err)
	}
	return nil
}

func (r *VIPRepository) FindReservationByID(ctx context.Context, dbtx db.DBTX, id uuid.UUID) (*queries.ReservationView, error) {
	var v queries.ReservationView
	err := dbtx.QueryRow(ctx, `
		SELECT id, event_id, purchaser_name, purchaser_email, table_name, status, guest_limit, created_at, updated_at
		FROM vip_reservations
		WHERE id = $1`,
		id,
	).Scan(
		&v.ID, &v.EventID, &v.PurchaserName, &v.PurchaserEmail,
		&v.TableName, &v.Status, &v.GuestLimit, &v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("vip reservation not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to query vip reservation", err)
	}
	return &v, nil
}

// ListActiveByEvent is the guest-pass side of the offline cache snapshot:
// passes on reservations that still admit guests at the door.
func (r *VIPRepository) ListActiveByEvent(ctx context.Context, eventID uuid.UUID) ([]*queries.GuestPassView, error) {
	rows, err := r.db.Query(ctx, guestPassSelectBase+`
		WHERE r.event_id = $1 AND r.status IN ('confirmed', 'checked_in')
		ORDER BY p.created_at`,
		eventID,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list active guest passes", err)
	}
	defer rows.Close()

	var result []*queries.GuestPassView
	for rows.Next() {
		view, err := scanGuestPass(rows, "guest pass not found")
		if err != nil {
			return nil, err
		}
		result = append(result, view)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate guest pass rows", err)
	}
	return result, nil
}

func scanGuestPass(row pgx.Row, notFoundMsg string) (*queries.GuestPassView, error) {
	var v queries.GuestPassView
	err := row.Scan(
		&v.ID, &v.ReservationID, &v.EventID, &v.GuestName, &v.Status, &v.Token,
		&v.CheckedInAt, &v.ReservationStatus,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr(notFoundMsg, err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to query guest pass", err)
	}
	return &v, nil
}
