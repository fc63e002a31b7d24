package response

import (
	"time"

	"nightgate/internal/usecase/commands"

	"github.com/google/uuid"
)

type ScanResponse struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
	ReEntry bool   `json:"re_entry"`
	// TicketID is present whenever the credential resolved to a ticket.
	TicketID *uuid.UUID `json:"ticket_id,omitempty"`
	// ScannedAt is the admission on record. On already_scanned rejections it
	// is the earlier winning scan, which offline devices use to reconcile.
	ScannedAt *time.Time `json:"scanned_at,omitempty"`
}

type GuestPassCheckInResponse struct {
	Success     bool       `json:"success"`
	Reason      string     `json:"reason,omitempty"`
	ReEntry     bool       `json:"re_entry"`
	PassID      *uuid.UUID `json:"pass_id,omitempty"`
	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
}

func FromVerifyScanResult(r *commands.VerifyScanResult) *ScanResponse {
	return &ScanResponse{
		Success:   r.Accepted,
		Reason:    r.Reason.String(),
		ReEntry:   r.ReEntry,
		TicketID:  r.TicketID,
		ScannedAt: r.ScannedAt,
	}
}

func FromGuestPassCheckInResult(r *commands.GuestPassCheckInResult) *GuestPassCheckInResponse {
	return &GuestPassCheckInResponse{
		Success:     r.Accepted,
		Reason:      r.Reason.String(),
		ReEntry:     r.ReEntry,
		PassID:      r.PassID,
		CheckedInAt: r.CheckedInAt,
	}
}
