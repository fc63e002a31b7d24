package email

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSent       Status = "sent"
	StatusDelivered  Status = "delivered"
	StatusFailed     Status = "failed"
)

func (s Status) String() string {
	return string(s)
}

// IsTerminal reports whether a queue entry may never be mutated again.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusFailed
}

// CanTransition encodes the delivery state machine:
// pending → processing → {sent | pending | failed}; sent → {delivered | failed}.
// Webhooks may also fail a stuck processing entry (bounce raced the worker).
func (s Status) CanTransition(to Status) bool {
	switch s {
	case StatusPending:
		return to == StatusProcessing
	case StatusProcessing:
		return to == StatusSent || to == StatusPending || to == StatusFailed
	case StatusSent:
		return to == StatusDelivered || to == StatusFailed
	default:
		return false
	}
}
