package repository

import (
	"context"
	"time"

	"nightgate/internal/infra"
	"nightgate/internal/infra/db"
	"nightgate/internal/usecase/queries"

	"github.com/google/uuid"
)

// ScanAuditRecord is what the async audit writer persists. InputDigest is a
// SHA-256 of whatever the device submitted; raw credentials never hit disk.
type ScanAuditRecord struct {
	EventID     *uuid.UUID
	DeviceID    string
	Method      string
	InputDigest string
	Accepted    bool
	Reason      string
	ReEntry     bool
	ScannedAt   time.Time
}

type ScanAuditRepository struct {
	db db.DBTX
}

func NewScanAuditRepository(pool db.DBTX) *ScanAuditRepository {
	return &ScanAuditRepository{db: pool}
}

func (r *ScanAuditRepository) Insert(ctx context.Context, rec ScanAuditRecord) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO scan_audit (id, event_id, device_id, method, input_digest, accepted, reason, re_entry, scanned_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.New(), rec.EventID, rec.DeviceID, rec.Method, rec.InputDigest,
		rec.Accepted, rec.Reason, rec.ReEntry, rec.ScannedAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to insert scan audit record", err)
	}
	return nil
}

func (r *ScanAuditRepository) ListRecent(ctx context.Context, limit int32) ([]*queries.ScanAuditView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, event_id, device_id, method, input_digest, accepted, reason, re_entry, scanned_at
		FROM scan_audit
		ORDER BY scanned_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list scan audit records", err)
	}
	defer rows.Close()

	var result []*queries.ScanAuditView
	for rows.Next() {
		var v queries.ScanAuditView
		if err := rows.Scan(
			&v.ID, &v.EventID, &v.DeviceID, &v.Method, &v.InputDigest,
			&v.Accepted, &v.Reason, &v.ReEntry, &v.ScannedAt,
		); err != nil {
			return nil, infra.WrapRepoErr("failed to scan audit row", err)
		}
		result = append(result, &v)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate audit rows", err)
	}
	return result, nil
}
