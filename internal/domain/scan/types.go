package scan

// Reason is the closed set of rejection reasons a scan can produce. These are
// expected business outcomes, not errors: every rejection is returned to the
// scanning device and audit-logged, never raised as an exception.
type Reason string

const (
	ReasonNone             Reason = ""
	ReasonNotFound         Reason = "not_found"
	ReasonAlreadyScanned   Reason = "already_scanned"
	ReasonInvalidSignature Reason = "invalid_signature"
	ReasonUnsignedQR       Reason = "unsigned_qr"
	ReasonInvalidFormat    Reason = "invalid_format"
	ReasonWrongEvent       Reason = "wrong_event"
	ReasonOfflineUnknown   Reason = "offline_unknown"
)

func (r Reason) String() string {
	return string(r)
}

func (r Reason) IsValid() bool {
	switch r {
	case ReasonNotFound, ReasonAlreadyScanned, ReasonInvalidSignature,
		ReasonUnsignedQR, ReasonInvalidFormat, ReasonWrongEvent, ReasonOfflineUnknown:
		return true
	default:
		return false
	}
}

type Method string

const (
	MethodQR     Method = "qr"
	MethodManual Method = "manual"
	MethodNFC    Method = "nfc"
)

func (m Method) String() string {
	return string(m)
}

func (m Method) IsValid() bool {
	switch m {
	case MethodQR, MethodManual, MethodNFC:
		return true
	default:
		return false
	}
}
