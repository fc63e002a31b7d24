//go:build unit

package commands_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"nightgate/internal/domain/ticket"
	"nightgate/internal/domain/vip"
	"nightgate/internal/infra/db"
	"nightgate/internal/pkg/clock"
	"nightgate/internal/pkg/qrtoken"
	"nightgate/internal/usecase/commands"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTicketWriter struct {
	inserted []*ticket.Ticket
}

func (w *fakeTicketWriter) Insert(_ context.Context, _ db.DBTX, t *ticket.Ticket) error {
	w.inserted = append(w.inserted, t)
	return nil
}

type fakeVIPWriter struct {
	reservations []*vip.Reservation
	passes       []*vip.GuestPass
}

func (w *fakeVIPWriter) InsertReservation(_ context.Context, _ db.DBTX, r *vip.Reservation) error {
	w.reservations = append(w.reservations, r)
	return nil
}

func (w *fakeVIPWriter) InsertGuestPass(_ context.Context, _ db.DBTX, p *vip.GuestPass) error {
	w.passes = append(w.passes, p)
	return nil
}

type fakeProcessedEvents struct {
	seen map[string]bool
}

func (s *fakeProcessedEvents) TryInsert(_ context.Context, _ db.DBTX, eventID, _ string, _ time.Time) (bool, error) {
	if s.seen == nil {
		s.seen = make(map[string]bool)
	}
	if s.seen[eventID] {
		return false, nil
	}
	s.seen[eventID] = true
	return true, nil
}

type enqueuedEmail struct {
	recipient string
	subject   string
	body      string
}

type fakeEmailEnqueuer struct {
	queued []enqueuedEmail
}

func (q *fakeEmailEnqueuer) Enqueue(_ context.Context, _ db.DBTX, recipient, subject, body string, _ int32, _ time.Time) (uuid.UUID, error) {
	q.queued = append(q.queued, enqueuedEmail{recipient: recipient, subject: subject, body: body})
	return uuid.New(), nil
}

type paymentFixture struct {
	uc      commands.PaymentCommands
	tickets *fakeTicketWriter
	vips    *fakeVIPWriter
	emails  *fakeEmailEnqueuer
	events  *fakeProcessedEvents
	signer  *qrtoken.Signer
}

func newPaymentFixture() *paymentFixture {
	f := &paymentFixture{
		tickets: &fakeTicketWriter{},
		vips:    &fakeVIPWriter{},
		emails:  &fakeEmailEnqueuer{},
		events:  &fakeProcessedEvents{},
		signer:  qrtoken.NewSigner(qrSecret),
	}
	f.uc = commands.NewPaymentUseCase(
		f.tickets,
		f.vips,
		f.events,
		f.emails,
		passthroughUoW{},
		f.signer,
		5,
		clock.NewMockClock(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)),
	)
	return f
}

func TestCheckoutCreatesTicketsAndEmail(t *testing.T) {
	f := newPaymentFixture()

	result, err := f.uc.HandleCheckoutCompleted(context.Background(), commands.CheckoutCompletedParams{
		ProviderEventID: "evt_1",
		EventID:         uuid.New(),
		PurchaserName:   "Jordan",
		PurchaserEmail:  "jordan@example.com",
		GAQuantity:      2,
	})

	require.NoError(t, err)
	assert.False(t, result.Replayed)
	assert.Len(t, result.TicketIDs, 2)
	assert.Nil(t, result.ReservationID)
	require.Len(t, f.emails.queued, 1)

	mail := f.emails.queued[0]
	assert.Equal(t, "jordan@example.com", mail.recipient)
	// The confirmation body carries the full signed QR payload per ticket.
	for _, tk := range f.tickets.inserted {
		assert.Contains(t, mail.body, f.signer.Sign(tk.Token()))
	}
}

func TestCheckoutCreatesVIPReservationWithGuestPasses(t *testing.T) {
	f := newPaymentFixture()

	result, err := f.uc.HandleCheckoutCompleted(context.Background(), commands.CheckoutCompletedParams{
		ProviderEventID: "evt_2",
		EventID:         uuid.New(),
		PurchaserName:   "Sam",
		PurchaserEmail:  "sam@example.com",
		GAQuantity:      1,
		VIPTable: &commands.VIPTableParams{
			TableName:  "Mezzanine 3",
			GuestLimit: 4,
			GuestNames: []string{"Alex", "Robin"},
		},
	})

	require.NoError(t, err)
	require.NotNil(t, result.ReservationID)
	assert.Len(t, result.GuestPassIDs, 2)
	require.Len(t, f.tickets.inserted, 1)
	// The purchaser's ticket is linked so re-entry tracks the reservation.
	require.NotNil(t, f.tickets.inserted[0].VIPReservationID())
	assert.Equal(t, *result.ReservationID, *f.tickets.inserted[0].VIPReservationID())

	mail := f.emails.queued[0]
	assert.Contains(t, mail.body, "Mezzanine 3")
	for _, pass := range f.vips.passes {
		assert.True(t, strings.Contains(mail.body, f.signer.Sign(pass.Token())))
	}
}

func TestCheckoutReplayIsNoOp(t *testing.T) {
	f := newPaymentFixture()
	params := commands.CheckoutCompletedParams{
		ProviderEventID: "evt_dup",
		EventID:         uuid.New(),
		PurchaserName:   "Casey",
		PurchaserEmail:  "casey@example.com",
		GAQuantity:      1,
	}

	first, err := f.uc.HandleCheckoutCompleted(context.Background(), params)
	require.NoError(t, err)
	assert.False(t, first.Replayed)

	replay, err := f.uc.HandleCheckoutCompleted(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, replay.Replayed)
	assert.Empty(t, replay.TicketIDs)

	// Nothing new was written and no second email was queued.
	assert.Len(t, f.tickets.inserted, 1)
	assert.Len(t, f.emails.queued, 1)
}

func TestCheckoutRejectsEmptyPurchases(t *testing.T) {
	f := newPaymentFixture()

	_, err := f.uc.HandleCheckoutCompleted(context.Background(), commands.CheckoutCompletedParams{
		ProviderEventID: "evt_3",
		EventID:         uuid.New(),
		PurchaserName:   "Riley",
		PurchaserEmail:  "riley@example.com",
		GAQuantity:      0,
	})
	assert.ErrorIs(t, err, commands.ErrNothingPurchased)

	_, err = f.uc.HandleCheckoutCompleted(context.Background(), commands.CheckoutCompletedParams{
		ProviderEventID: "evt_4",
		EventID:         uuid.New(),
		GAQuantity:      1,
	})
	assert.ErrorIs(t, err, commands.ErrInvalidPurchaser)
}
