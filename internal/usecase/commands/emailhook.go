package commands

import (
	"context"
	"log/slog"
	"time"

	"nightgate/internal/pkg/clock"
	"nightgate/internal/pkg/errs"
)

// Provider event types we act on. Anything else is audit-logged and ignored.
const (
	ProviderEventSent       = "email.sent"
	ProviderEventDelivered  = "email.delivered"
	ProviderEventDelayed    = "email.delivery_delayed"
	ProviderEventBounced    = "email.bounced"
	ProviderEventComplained = "email.complained"
)

type ProviderEventParams struct {
	MessageID string
	Type      string
	Reason    string
	Payload   []byte
}

type EmailStatusStore interface {
	MarkDeliveredByProviderID(ctx context.Context, providerMessageID string) (bool, error)
	MarkBouncedByProviderID(ctx context.Context, providerMessageID, reason string) (bool, error)
	AppendProviderEvent(ctx context.Context, providerMessageID, eventType string, payload []byte, receivedAt time.Time) error
}

type EmailWebhookCommands interface {
	HandleProviderEvent(ctx context.Context, params ProviderEventParams) error
}

type emailWebhookUseCaseImpl struct {
	store EmailStatusStore
	clock clock.Clock
}

func NewEmailWebhookUseCase(store EmailStatusStore, clk clock.Clock) EmailWebhookCommands {
	return &emailWebhookUseCaseImpl{store: store, clock: clk}
}

// HandleProviderEvent applies an inbound delivery event. State is reconciled
// by provider message id, never by arrival order: a delivered event that
// beats our own sent update simply finds no 'sent' row yet and the next
// provider retry lands it. Every event is appended to the audit log first,
// whether or not it moves queue state.
func (u *emailWebhookUseCaseImpl) HandleProviderEvent(ctx context.Context, params ProviderEventParams) error {
	if err := u.store.AppendProviderEvent(ctx, params.MessageID, params.Type, params.Payload, u.clock.Now()); err != nil {
		return errs.Mark(err, ErrStorageFailure)
	}

	switch params.Type {
	case ProviderEventDelivered:
		changed, err := u.store.MarkDeliveredByProviderID(ctx, params.MessageID)
		if err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}
		if !changed {
			slog.Debug("delivered event matched no sent entry", "provider_message_id", params.MessageID)
		}

	case ProviderEventBounced, ProviderEventComplained:
		reason := params.Reason
		if reason == "" {
			reason = params.Type
		}
		changed, err := u.store.MarkBouncedByProviderID(ctx, params.MessageID, reason)
		if err != nil {
			return errs.Mark(err, ErrStorageFailure)
		}
		if !changed {
			slog.Debug("bounce event matched no live entry", "provider_message_id", params.MessageID)
		}

	case ProviderEventSent, ProviderEventDelayed:
		// Informational; our own worker already recorded the send.

	default:
		slog.Info("unrecognized email provider event", "type", params.Type)
	}

	return nil
}
