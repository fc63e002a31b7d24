package response

import (
	"time"

	"nightgate/internal/usecase/queries"

	"github.com/google/uuid"
)

type ScanAuditResponse struct {
	ID          uuid.UUID  `json:"id"`
	EventID     *uuid.UUID `json:"event_id,omitempty"`
	DeviceID    string     `json:"device_id"`
	Method      string     `json:"method"`
	InputDigest string     `json:"input_digest"`
	Accepted    bool       `json:"accepted"`
	Reason      string     `json:"reason,omitempty"`
	ReEntry     bool       `json:"re_entry"`
	ScannedAt   time.Time  `json:"scanned_at"`
}

type EmailJobResponse struct {
	ID                uuid.UUID `json:"id"`
	Recipient         string    `json:"recipient"`
	Subject           string    `json:"subject"`
	Status            string    `json:"status"`
	Attempts          int32     `json:"attempts"`
	MaxAttempts       int32     `json:"max_attempts"`
	NextRetryAt       time.Time `json:"next_retry_at"`
	LastError         *string   `json:"last_error,omitempty"`
	ProviderMessageID *string   `json:"provider_message_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// SnapshotEntryResponse is one credential in the offline snapshot feed gate
// devices pull before doors open. Covers tickets and VIP guest passes.
type SnapshotEntryResponse struct {
	Kind           string     `json:"kind"`
	CredentialID   uuid.UUID  `json:"credential_id"`
	Token          string     `json:"token"`
	Status         string     `json:"status"`
	ScannedAt      *time.Time `json:"scanned_at,omitempty"`
	ReEntryAllowed bool       `json:"re_entry_allowed"`
}

func FromScanAuditView(v *queries.ScanAuditView) *ScanAuditResponse {
	return &ScanAuditResponse{
		ID:          v.ID,
		EventID:     v.EventID,
		DeviceID:    v.DeviceID,
		Method:      v.Method,
		InputDigest: v.InputDigest,
		Accepted:    v.Accepted,
		Reason:      v.Reason,
		ReEntry:     v.ReEntry,
		ScannedAt:   v.ScannedAt,
	}
}

func FromEmailJobView(v *queries.EmailJobView) *EmailJobResponse {
	return &EmailJobResponse{
		ID:                v.ID,
		Recipient:         v.Recipient,
		Subject:           v.Subject,
		Status:            v.Status,
		Attempts:          v.Attempts,
		MaxAttempts:       v.MaxAttempts,
		NextRetryAt:       v.NextRetryAt,
		LastError:         v.LastError,
		ProviderMessageID: v.ProviderMessageID,
		CreatedAt:         v.CreatedAt,
		UpdatedAt:         v.UpdatedAt,
	}
}

func FromSnapshotEntry(v *queries.SnapshotEntryView) *SnapshotEntryResponse {
	return &SnapshotEntryResponse{
		Kind:           v.Kind,
		CredentialID:   v.CredentialID,
		Token:          v.Token,
		Status:         v.Status,
		ScannedAt:      v.ScannedAt,
		ReEntryAllowed: v.ReEntryAllowed,
	}
}
