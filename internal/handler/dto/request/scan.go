package request

import (
	"time"

	"github.com/google/uuid"
)

type VerifyScanRequest struct {
	Credential string `json:"credential" binding:"required"`
	Method     string `json:"method" binding:"required"`
	// ScannedAt is set on offline replays to carry the original scan time.
	// Admission time is always the server's; this field is informational.
	ScannedAt *time.Time `json:"scanned_at,omitempty"`
	// EventID pins the scan to one event's gate.
	EventID *uuid.UUID `json:"event_id,omitempty"`
}

type GuestPassCheckInRequest struct {
	Credential string `json:"credential" binding:"required"`
	Method     string `json:"method" binding:"required"`
	// ScannedAt is set on offline replays to carry the original scan time.
	ScannedAt *time.Time `json:"scanned_at,omitempty"`
	EventID   *uuid.UUID `json:"event_id,omitempty"`
}
