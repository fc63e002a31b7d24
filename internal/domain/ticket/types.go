package ticket

type Status string

const (
	StatusIssued    Status = "issued"
	StatusScanned   Status = "scanned"
	StatusCancelled Status = "cancelled"
	StatusRefunded  Status = "refunded"
	StatusVoid      Status = "void"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	switch s {
	case StatusIssued, StatusScanned, StatusCancelled, StatusRefunded, StatusVoid:
		return true
	default:
		return false
	}
}

// IsActive reports whether the ticket can still appear at a gate at all.
// Scanned stays active because VIP-linked tickets re-enter after first use.
func (s Status) IsActive() bool {
	return s == StatusIssued || s == StatusScanned
}
