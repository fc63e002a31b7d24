package queries

import (
	"time"

	"github.com/google/uuid"
)

// Read models returned by the infra layer. Flat structs; domain invariants
// live in internal/domain, not here.

type TicketView struct {
	ID                   uuid.UUID
	EventID              uuid.UUID
	HolderName           string
	HolderEmail          string
	Status               string
	Token                string
	ScannedAt            *time.Time
	VIPReservationID     *uuid.UUID
	VIPReservationStatus *string
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

type GuestPassView struct {
	ID                uuid.UUID
	ReservationID     uuid.UUID
	EventID           uuid.UUID
	GuestName         string
	Status            string
	Token             string
	CheckedInAt       *time.Time
	ReservationStatus string
}

type ReservationView struct {
	ID             uuid.UUID
	EventID        uuid.UUID
	PurchaserName  string
	PurchaserEmail string
	TableName      string
	Status         string
	GuestLimit     int32
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type EmailJobView struct {
	ID                uuid.UUID
	Recipient         string
	Subject           string
	Body              string
	Status            string
	Attempts          int32
	MaxAttempts       int32
	NextRetryAt       time.Time
	LastError         *string
	ProviderMessageID *string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// SnapshotEntryView is one admissible credential in the offline snapshot
// feed. Kind distinguishes tickets from VIP guest passes.
type SnapshotEntryView struct {
	Kind           string
	CredentialID   uuid.UUID
	Token          string
	Status         string
	ScannedAt      *time.Time
	ReEntryAllowed bool
}

type ScanAuditView struct {
	ID          uuid.UUID
	EventID     *uuid.UUID
	DeviceID    string
	Method      string
	InputDigest string
	Accepted    bool
	Reason      string
	ReEntry     bool
	ScannedAt   time.Time
}

type StaffView struct {
	ID           uuid.UUID
	Email        string
	Role         string
	PasswordHash string
	IsActive     bool
}
