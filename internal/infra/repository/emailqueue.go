package repository

import (
	"context"
	"errors"
	"time"

	"nightgate/internal/infra"
	"nightgate/internal/infra/db"
	"nightgate/internal/usecase/queries"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const emailJobColumns = `
	id, recipient, subject, body, status, attempts, max_attempts,
	next_retry_at, last_error, provider_message_id, created_at, updated_at`

type EmailQueueRepository struct {
	db db.DBTX
}

func NewEmailQueueRepository(pool db.DBTX) *EmailQueueRepository {
	return &EmailQueueRepository{db: pool}
}

func (r *EmailQueueRepository) Enqueue(ctx context.Context, tx db.DBTX, recipient, subject, body string, maxAttempts int32, runAt time.Time) (uuid.UUID, error) {
	id := uuid.New()
	_, err := tx.Exec(ctx, `
		INSERT INTO email_queue (id, recipient, subject, body, status, attempts, max_attempts, next_retry_at)
		VALUES ($1, $2, $3, $4, 'pending', 0, $5, $6)`,
		id, recipient, subject, body, maxAttempts, runAt,
	)
	if err != nil {
		return uuid.Nil, infra.WrapRepoErr("failed to enqueue email", err)
	}
	return id, nil
}

// ClaimDue claims up to limit due pending entries, oldest first. The claim is
// an optimistic per-row conditional update: a concurrent invocation that got
// there first makes the UPDATE touch zero rows and the entry is skipped, so
// no entry is ever processed twice.
func (r *EmailQueueRepository) ClaimDue(ctx context.Context, now time.Time, limit int) ([]*queries.EmailJobView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id FROM email_queue
		WHERE status = 'pending' AND next_retry_at <= $1
		ORDER BY created_at
		LIMIT $2`,
		now, limit,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list due email jobs", err)
	}

	var candidates []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			rows.Close()
			return nil, infra.WrapRepoErr("failed to scan due email job id", err)
		}
		candidates = append(candidates, id)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate due email jobs", err)
	}

	var claimed []*queries.EmailJobView
	for _, id := range candidates {
		tag, err := r.db.Exec(ctx, `
			UPDATE email_queue
			SET status = 'processing', updated_at = now()
			WHERE id = $1 AND status = 'pending'`,
			id,
		)
		if err != nil {
			return claimed, infra.WrapRepoErr("failed to claim email job", err)
		}
		if tag.RowsAffected() == 0 {
			continue // another invocation claimed it
		}

		job, err := r.GetByID(ctx, id)
		if err != nil {
			return claimed, err
		}
		claimed = append(claimed, job)
	}
	return claimed, nil
}

func (r *EmailQueueRepository) MarkSent(ctx context.Context, id uuid.UUID, providerMessageID string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE email_queue
		SET status = 'sent', provider_message_id = $2, updated_at = now()
		WHERE id = $1 AND status = 'processing'`,
		id, providerMessageID,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to mark email sent", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("email job not in processing state", nil, infra.KindConflict)
	}
	return nil
}

// ScheduleRetry releases a claimed entry back to pending with its next
// attempt time. Attempts is the new cumulative count.
func (r *EmailQueueRepository) ScheduleRetry(ctx context.Context, id uuid.UUID, attempts int32, nextRetryAt time.Time, lastError string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE email_queue
		SET status = 'pending', attempts = $2, next_retry_at = $3, last_error = $4, updated_at = now()
		WHERE id = $1 AND status = 'processing'`,
		id, attempts, nextRetryAt, lastError,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to schedule email retry", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("email job not in processing state", nil, infra.KindConflict)
	}
	return nil
}

func (r *EmailQueueRepository) MarkFailed(ctx context.Context, id uuid.UUID, attempts int32, reason string) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE email_queue
		SET status = 'failed', attempts = $2, last_error = $3, updated_at = now()
		WHERE id = $1 AND status IN ('processing', 'sent')`,
		id, attempts, reason,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to mark email failed", err)
	}
	if tag.RowsAffected() == 0 {
		return infra.WrapRepoErr("email job not in a failable state", nil, infra.KindConflict)
	}
	return nil
}

// MarkDeliveredByProviderID applies an inbound delivery confirmation.
// Conditional on 'sent' so a replayed or late webhook cannot resurrect a
// terminal entry; zero rows is not an error.
func (r *EmailQueueRepository) MarkDeliveredByProviderID(ctx context.Context, providerMessageID string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE email_queue
		SET status = 'delivered', updated_at = now()
		WHERE provider_message_id = $1 AND status = 'sent'`,
		providerMessageID,
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to mark email delivered", err)
	}
	return tag.RowsAffected() == 1, nil
}

// MarkBouncedByProviderID fails an entry on bounce or complaint. Also covers
// 'processing' because a provider bounce can race the worker's own sent
// update.
func (r *EmailQueueRepository) MarkBouncedByProviderID(ctx context.Context, providerMessageID, reason string) (bool, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE email_queue
		SET status = 'failed', last_error = $2, updated_at = now()
		WHERE provider_message_id = $1 AND status IN ('sent', 'processing')`,
		providerMessageID, reason,
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to mark email bounced", err)
	}
	return tag.RowsAffected() == 1, nil
}

// AppendProviderEvent appends to the immutable provider-event audit log,
// keyed by provider message id. Every inbound webhook event lands here
// whether or not it changed queue state.
func (r *EmailQueueRepository) AppendProviderEvent(ctx context.Context, providerMessageID, eventType string, payload []byte, receivedAt time.Time) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO email_provider_events (id, provider_message_id, event_type, payload, received_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), providerMessageID, eventType, payload, receivedAt,
	)
	if err != nil {
		return infra.WrapRepoErr("failed to append provider event", err)
	}
	return nil
}

func (r *EmailQueueRepository) GetByID(ctx context.Context, id uuid.UUID) (*queries.EmailJobView, error) {
	row := r.db.QueryRow(ctx, `SELECT`+emailJobColumns+` FROM email_queue WHERE id = $1`, id)
	return scanEmailJob(row)
}

func (r *EmailQueueRepository) ListRecent(ctx context.Context, limit int32) ([]*queries.EmailJobView, error) {
	rows, err := r.db.Query(ctx, `
		SELECT`+emailJobColumns+`
		FROM email_queue
		ORDER BY created_at DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, infra.WrapRepoErr("failed to list email jobs", err)
	}
	defer rows.Close()

	var result []*queries.EmailJobView
	for rows.Next() {
		job, err := scanEmailJob(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, job)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr("failed to iterate email jobs", err)
	}
	return result, nil
}

func scanEmailJob(row pgx.Row) (*queries.EmailJobView, error) {
	var v queries.EmailJobView
	err := row.Scan(
		&v.ID, &v.Recipient, &v.Subject, &v.Body, &v.Status, &v.Attempts,
		&v.MaxAttempts, &v.NextRetryAt, &v.LastError, &v.ProviderMessageID,
		&v.CreatedAt, &v.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, infra.WrapRepoErr("email job not found", err, infra.KindNotFound)
		}
		return nil, infra.WrapRepoErr("failed to scan email job", err)
	}
	return &v, nil
}
