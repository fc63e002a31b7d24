package repository

import (
	"context"
	"time"

	"nightgate/internal/infra"
	"nightgate/internal/infra/db"
)

// WebhookEventRepository records processed inbound payment events so a
// replayed webhook (provider retry or operator replay) never creates
// duplicate tickets or reservations.
type WebhookEventRepository struct {
	db db.DBTX
}

func NewWebhookEventRepository(pool db.DBTX) *WebhookEventRepository {
	return &WebhookEventRepository{db: pool}
}

// TryInsert returns false when the event id was already processed. Insert
// happens inside the same transaction as the ticket creation, so a crash
// between the two cannot strand a half-processed event.
func (r *WebhookEventRepository) TryInsert(ctx context.Context, tx db.DBTX, eventID, eventType string, receivedAt time.Time) (bool, error) {
	tag, err := tx.Exec(ctx, `
		INSERT INTO processed_webhook_events (event_id, event_type, received_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (event_id) DO NOTHING`,
		eventID, eventType, receivedAt,
	)
	if err != nil {
		return false, infra.WrapRepoErr("failed to record webhook event", err)
	}
	return tag.RowsAffected() == 1, nil
}
