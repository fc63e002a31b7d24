package vip

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrGuestLimitReached = errors.New("reservation guest limit reached")
	ErrInvalidGuestCount = errors.New("guest count must be positive")
	ErrMissingPurchaser  = errors.New("reservation purchaser is required")
)

// Reservation is a paid table booking. It owns zero or more guest passes and
// may be linked from the GA ticket bought by the same purchaser.
type Reservation struct {
	id             uuid.UUID
	eventID        uuid.UUID
	purchaserName  string
	purchaserEmail string
	tableName      string
	status         ReservationStatus
	guestLimit     int
	guestPasses    []*GuestPass
	createdAt      time.Time
	updatedAt      time.Time
}

func NewReservation(eventID uuid.UUID, purchaserName, purchaserEmail, tableName string, guestLimit int) (*Reservation, error) {
	if purchaserName == "" || purchaserEmail == "" {
		return nil, ErrMissingPurchaser
	}
	if guestLimit <= 0 {
		return nil, ErrInvalidGuestCount
	}

	return &Reservation{
		id:             uuid.New(),
		eventID:        eventID,
		purchaserName:  purchaserName,
		purchaserEmail: purchaserEmail,
		tableName:      tableName,
		status:         ReservationConfirmed,
		guestLimit:     guestLimit,
	}, nil
}

func ReconstructReservation(
	id, eventID uuid.UUID,
	purchaserName, purchaserEmail, tableName string,
	status ReservationStatus,
	guestLimit int,
	createdAt, updatedAt time.Time,
) *Reservation {
	return &Reservation{
		id:             id,
		eventID:        eventID,
		purchaserName:  purchaserName,
		purchaserEmail: purchaserEmail,
		tableName:      tableName,
		status:         status,
		guestLimit:     guestLimit,
		createdAt:      createdAt,
		updatedAt:      updatedAt,
	}
}

// AddGuestPass issues one scannable pass for an invited guest.
func (r *Reservation) AddGuestPass(guestName string) (*GuestPass, error) {
	if len(r.guestPasses) >= r.guestLimit {
		return nil, ErrGuestLimitReached
	}

	pass := &GuestPass{
		id:            uuid.New(),
		reservationID: r.id,
		guestName:     guestName,
		status:        GuestPassIssued,
		token:         newPassToken(),
	}
	r.guestPasses = append(r.guestPasses, pass)
	return pass, nil
}

func (r *Reservation) ID() uuid.UUID             { return r.id }
func (r *Reservation) EventID() uuid.UUID        { return r.eventID }
func (r *Reservation) PurchaserName() string     { return r.purchaserName }
func (r *Reservation) PurchaserEmail() string    { return r.purchaserEmail }
func (r *Reservation) TableName() string         { return r.tableName }
func (r *Reservation) Status() ReservationStatus { return r.status }
func (r *Reservation) GuestLimit() int           { return r.guestLimit }
func (r *Reservation) GuestPasses() []*GuestPass { return r.guestPasses }
func (r *Reservation) CreatedAt() time.Time      { return r.createdAt }
func (r *Reservation) UpdatedAt() time.Time      { return r.updatedAt }

// GuestPass is independently scannable. First scan checks the guest in;
// later scans of the same pass are accepted as re-entry, never rejected.
type GuestPass struct {
	id            uuid.UUID
	reservationID uuid.UUID
	guestName     string
	status        GuestPassStatus
	token         string
	checkedInAt   *time.Time
}

func ReconstructGuestPass(
	id, reservationID uuid.UUID,
	guestName string,
	status GuestPassStatus,
	token string,
	checkedInAt *time.Time,
) *GuestPass {
	return &GuestPass{
		id:            id,
		reservationID: reservationID,
		guestName:     guestName,
		status:        status,
		token:         token,
		checkedInAt:   checkedInAt,
	}
}

// CheckIn records the first admission; returns true when this scan is a
// re-entry of an already checked-in pass.
func (p *GuestPass) CheckIn(at time.Time) (reEntry bool) {
	if p.status == GuestPassCheckedIn {
		return true
	}
	p.status = GuestPassCheckedIn
	checked := at
	p.checkedInAt = &checked
	return false
}

func (p *GuestPass) ID() uuid.UUID            { return p.id }
func (p *GuestPass) ReservationID() uuid.UUID { return p.reservationID }
func (p *GuestPass) GuestName() string        { return p.guestName }
func (p *GuestPass) Status() GuestPassStatus  { return p.status }
func (p *GuestPass) Token() string            { return p.token }
func (p *GuestPass) CheckedInAt() *time.Time  { return p.checkedInAt }

func newPassToken() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return "vip_" + hex.EncodeToString(buf)
}
