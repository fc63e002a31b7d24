package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Event is one scan outcome bound for the audit trail. The credential the
// device submitted is digested before it leaves the request path so raw
// tokens are never queued or persisted.
type Event struct {
	EventID     *uuid.UUID
	DeviceID    string
	Method      string
	InputDigest string
	Accepted    bool
	Reason      string
	ReEntry     bool
	ScannedAt   time.Time
}

func DigestInput(input string) string {
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}

// Emitter accepts events without blocking and without failing the caller.
// The scan response must never wait on, or surface, audit persistence.
type Emitter interface {
	Emit(ev Event)
}
