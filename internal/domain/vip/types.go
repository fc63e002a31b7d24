package vip

type ReservationStatus string

const (
	ReservationPending   ReservationStatus = "pending"
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCheckedIn ReservationStatus = "checked_in"
	ReservationNoShow    ReservationStatus = "no_show"
	ReservationCancelled ReservationStatus = "cancelled"
)

func (s ReservationStatus) String() string {
	return string(s)
}

func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationPending, ReservationConfirmed, ReservationCheckedIn,
		ReservationNoShow, ReservationCancelled:
		return true
	default:
		return false
	}
}

// AllowsReEntry reports whether a ticket linked to a reservation in this
// state may re-enter after its first scan. Unlimited for the event duration.
func (s ReservationStatus) AllowsReEntry() bool {
	return s == ReservationConfirmed || s == ReservationCheckedIn
}

type GuestPassStatus string

const (
	GuestPassIssued    GuestPassStatus = "issued"
	GuestPassCheckedIn GuestPassStatus = "checked_in"
)

func (s GuestPassStatus) String() string {
	return string(s)
}
