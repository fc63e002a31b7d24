package ticket

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAlreadyScanned = errors.New("ticket already scanned")
	ErrNotAdmittable  = errors.New("ticket status does not admit")
	ErrMissingHolder  = errors.New("ticket holder is required")
)

// Ticket is one GA admission credential. The credential token is the opaque
// value embedded in the holder's QR code; the HMAC signature over it is
// computed at render time, not stored here.
type Ticket struct {
	id               uuid.UUID
	eventID          uuid.UUID
	holderName       string
	holderEmail      string
	status           Status
	token            string
	scannedAt        *time.Time
	vipReservationID *uuid.UUID
	createdAt        time.Time
	updatedAt        time.Time
}

func NewTicket(eventID uuid.UUID, holderName, holderEmail string) (*Ticket, error) {
	if holderName == "" || holderEmail == "" {
		return nil, ErrMissingHolder
	}

	return &Ticket{
		id:          uuid.New(),
		eventID:     eventID,
		holderName:  holderName,
		holderEmail: holderEmail,
		status:      StatusIssued,
		token:       newToken(),
	}, nil
}

func Reconstruct(
	id, eventID uuid.UUID,
	holderName, holderEmail string,
	status Status,
	token string,
	scannedAt *time.Time,
	vipReservationID *uuid.UUID,
	createdAt, updatedAt time.Time,
) *Ticket {
	return &Ticket{
		id:               id,
		eventID:          eventID,
		holderName:       holderName,
		holderEmail:      holderEmail,
		status:           status,
		token:            token,
		scannedAt:        scannedAt,
		vipReservationID: vipReservationID,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

// LinkVIPReservation marks the holder as the attendee of a VIP reservation,
// which switches the ticket from one-admission to re-entry semantics.
func (t *Ticket) LinkVIPReservation(reservationID uuid.UUID) {
	id := reservationID
	t.vipReservationID = &id
}

// MarkScanned applies the only legal status transition a gate can make.
// The persistent transition must still go through the store's conditional
// update; this is the in-memory mirror used by factories and tests.
func (t *Ticket) MarkScanned(at time.Time) error {
	switch t.status {
	case StatusIssued:
		t.status = StatusScanned
		scanned := at
		t.scannedAt = &scanned
		return nil
	case StatusScanned:
		return ErrAlreadyScanned
	default:
		return ErrNotAdmittable
	}
}

func (t *Ticket) IsVIPLinked() bool {
	return t.vipReservationID != nil
}

func (t *Ticket) ID() uuid.UUID               { return t.id }
func (t *Ticket) EventID() uuid.UUID          { return t.eventID }
func (t *Ticket) HolderName() string          { return t.holderName }
func (t *Ticket) HolderEmail() string         { return t.holderEmail }
func (t *Ticket) Status() Status              { return t.status }
func (t *Ticket) Token() string               { return t.token }
func (t *Ticket) ScannedAt() *time.Time       { return t.scannedAt }
func (t *Ticket) VIPReservationID() *uuid.UUID { return t.vipReservationID }
func (t *Ticket) CreatedAt() time.Time        { return t.createdAt }
func (t *Ticket) UpdatedAt() time.Time        { return t.updatedAt }

func newToken() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return "tkt_" + hex.EncodeToString(buf)
}
