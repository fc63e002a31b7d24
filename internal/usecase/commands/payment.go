package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"nightgate/internal/domain/ticket"
	"nightgate/internal/domain/vip"
	"nightgate/internal/infra/db"
	"nightgate/internal/pkg/clock"
	"nightgate/internal/pkg/errs"
	"nightgate/internal/pkg/qrtoken"
	"nightgate/internal/usecase/shared"

	"github.com/google/uuid"
)

var (
	ErrNothingPurchased = errs.New("checkout contains no tickets or reservation")
	ErrInvalidPurchaser = errs.New("invalid purchaser details")
)

type VIPTableParams struct {
	TableName  string
	GuestLimit int
	GuestNames []string
}

type CheckoutCompletedParams struct {
	// ProviderEventID is the payment provider's event id; replays of the
	// same id are acknowledged without creating anything.
	ProviderEventID string
	EventID         uuid.UUID
	PurchaserName   string
	PurchaserEmail  string
	GAQuantity      int
	VIPTable        *VIPTableParams
}

type CheckoutCompletedResult struct {
	Replayed      bool
	TicketIDs     []uuid.UUID
	ReservationID *uuid.UUID
	GuestPassIDs  []uuid.UUID
}

type TicketWriter interface {
	Insert(ctx context.Context, tx db.DBTX, t *ticket.Ticket) error
}

type VIPWriter interface {
	InsertReservation(ctx context.Context, tx db.DBTX, res *vip.Reservation) error
	InsertGuestPass(ctx context.Context, tx db.DBTX, pass *vip.GuestPass) error
}

type ProcessedEventStore interface {
	TryInsert(ctx context.Context, tx db.DBTX, eventID, eventType string, receivedAt time.Time) (bool, error)
}

type EmailEnqueuer interface {
	Enqueue(ctx context.Context, tx db.DBTX, recipient, subject, body string, maxAttempts int32, runAt time.Time) (uuid.UUID, error)
}

type PaymentCommands interface {
	HandleCheckoutCompleted(ctx context.Context, params CheckoutCompletedParams) (*CheckoutCompletedResult, error)
}

type paymentUseCaseImpl struct {
	tickets         TicketWriter
	vips            VIPWriter
	processedEvents ProcessedEventStore
	emails          EmailEnqueuer
	uow             shared.UnitOfWork
	signer          *qrtoken.Signer
	emailAttempts   int32
	clock           clock.Clock
}

func NewPaymentUseCase(
	tickets TicketWriter,
	vips VIPWriter,
	processedEvents ProcessedEventStore,
	emails EmailEnqueuer,
	uow shared.UnitOfWork,
	signer *qrtoken.Signer,
	emailAttempts int32,
	clk clock.Clock,
) PaymentCommands {
	return &paymentUseCaseImpl{
		tickets:         tickets,
		vips:            vips,
		processedEvents: processedEvents,
		emails:          emails,
		uow:             uow,
		signer:          signer,
		emailAttempts:   emailAttempts,
		clock:           clk,
	}
}

// HandleCheckoutCompleted creates the purchased credentials and queues the
// confirmation email in one transaction, keyed by the provider event id so a
// replayed webhook is a no-op.
func (p *paymentUseCaseImpl) HandleCheckoutCompleted(ctx context.Context, params CheckoutCompletedParams) (*CheckoutCompletedResult, error) {
	if params.PurchaserName == "" || params.PurchaserEmail == "" {
		return nil, ErrInvalidPurchaser
	}
	if params.GAQuantity <= 0 && params.VIPTable == nil {
		return nil, ErrNothingPurchased
	}

	now := p.clock.Now()
	result := &CheckoutCompletedResult{}

	err := p.uow.Within(ctx, func(ctx context.Context, tx db.DBTX) error {
		inserted, err := p.processedEvents.TryInsert(ctx, tx, params.ProviderEventID, "checkout.session.completed", now)
		if err != nil {
			return err
		}
		if !inserted {
			result.Replayed = true
			return nil
		}

		var reservation *vip.Reservation
		if params.VIPTable != nil {
			reservation, err = p.createReservation(ctx, tx, params, result)
			if err != nil {
				return err
			}
		}

		tickets, err := p.createTickets(ctx, tx, params, reservation, result)
		if err != nil {
			return err
		}

		subject, body := p.renderConfirmation(params, tickets, reservation)
		if _, err := p.emails.Enqueue(ctx, tx, params.PurchaserEmail, subject, body, p.emailAttempts, now); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, errs.Mark(err, ErrStorageFailure)
	}

	return result, nil
}

func (p *paymentUseCaseImpl) createReservation(ctx context.Context, tx db.DBTX, params CheckoutCompletedParams, result *CheckoutCompletedResult) (*vip.Reservation, error) {
	table := params.VIPTable
	reservation, err := vip.NewReservation(params.EventID, params.PurchaserName, params.PurchaserEmail, table.TableName, table.GuestLimit)
	if err != nil {
		return nil, err
	}
	if err := p.vips.InsertReservation(ctx, tx, reservation); err != nil {
		return nil, err
	}
	id := reservation.ID()
	result.ReservationID = &id

	for _, guestName := range table.GuestNames {
		pass, err := reservation.AddGuestPass(guestName)
		if err != nil {
			return nil, err
		}
		if err := p.vips.InsertGuestPass(ctx, tx, pass); err != nil {
			return nil, err
		}
		result.GuestPassIDs = append(result.GuestPassIDs, pass.ID())
	}

	return reservation, nil
}

func (p *paymentUseCaseImpl) createTickets(ctx context.Context, tx db.DBTX, params CheckoutCompletedParams, reservation *vip.Reservation, result *CheckoutCompletedResult) ([]*ticket.Ticket, error) {
	var tickets []*ticket.Ticket
	for i := 0; i < params.GAQuantity; i++ {
		t, err := ticket.NewTicket(params.EventID, params.PurchaserName, params.PurchaserEmail)
		if err != nil {
			return nil, err
		}
		// The purchaser's own ticket carries the VIP link; extra GA
		// tickets in the same checkout are plain one-admission tickets.
		if i == 0 && reservation != nil {
			t.LinkVIPReservation(reservation.ID())
		}
		if err := p.tickets.Insert(ctx, tx, t); err != nil {
			return nil, err
		}
		tickets = append(tickets, t)
		result.TicketIDs = append(result.TicketIDs, t.ID())
	}
	return tickets, nil
}

func (p *paymentUseCaseImpl) renderConfirmation(params CheckoutCompletedParams, tickets []*ticket.Ticket, reservation *vip.Reservation) (string, string) {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\nYour order is confirmed.\n\n", params.PurchaserName)

	for i, t := range tickets {
		fmt.Fprintf(&b, "Ticket %d QR code: %s\n", i+1, p.signer.Sign(t.Token()))
	}
	if reservation != nil {
		fmt.Fprintf(&b, "\nVIP table: %s (up to %d guests)\n", reservation.TableName(), reservation.GuestLimit())
		for _, pass := range reservation.GuestPasses() {
			fmt.Fprintf(&b, "Guest pass for %s: %s\n", pass.GuestName(), p.signer.Sign(pass.Token()))
		}
	}

	b.WriteString("\nSee you at the door.\n")
	return "Your tickets are confirmed", b.String()
}
