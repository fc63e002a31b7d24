package scanner

import "time"

// CredentialKind tells the reconciler which server endpoint a queued scan
// replays through.
type CredentialKind string

const (
	KindTicket    CredentialKind = "ticket"
	KindGuestPass CredentialKind = "guest_pass"
)

func (k CredentialKind) String() string {
	return string(k)
}

// SyncStatus tracks an offline scan's journey back to the server.
type SyncStatus string

const (
	SyncPending  SyncStatus = "pending"
	SyncSynced   SyncStatus = "synced"
	SyncFailed   SyncStatus = "failed"
	SyncConflict SyncStatus = "conflict"
)

func (s SyncStatus) String() string {
	return string(s)
}

// QueueEntry is one scan taken without connectivity, persisted locally until
// reconciled. Entries survive process restarts. Credential holds the exact
// payload the guest presented, signature included, so the replay passes the
// server's own verification.
type QueueEntry struct {
	ID           int64          `json:"id"`
	Kind         CredentialKind `json:"kind"`
	CredentialID string         `json:"credential_id"`
	Credential   string         `json:"-"`
	ScannedAt    time.Time      `json:"scanned_at"`
	DeviceID     string         `json:"device_id"`
	SyncStatus   SyncStatus     `json:"sync_status"`
	RetryCount   int            `json:"retry_count"`
	LastRetryAt  *time.Time     `json:"last_retry_at,omitempty"`
	// SyncedAt is set when the entry reaches synced and drives retention.
	SyncedAt *time.Time `json:"synced_at,omitempty"`
}

// CachedCredential is the offline snapshot of one admissible credential,
// ticket or VIP guest pass. It is a point-in-time copy, never the system of
// record.
type CachedCredential struct {
	Kind           CredentialKind
	CredentialID   string
	Token          string
	Status         string
	ScannedAt      *time.Time
	ReEntryAllowed bool
}

// Consumed reports whether the credential has already been used once. A
// consumed state can still admit when the credential carries re-entry.
func (c CachedCredential) Consumed() bool {
	return c.Status == "scanned" || c.Status == "checked_in"
}
