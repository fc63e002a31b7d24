package scan

// Result is the verifier's complete answer to one scan. Every code path
// yields one of these; callers never see a raw error for a business rejection.
type Result struct {
	Accepted bool
	Reason   Reason
	ReEntry  bool
}

func Accept() Result {
	return Result{Accepted: true}
}

// AcceptReEntry marks an accepted scan of an already-used VIP credential
// ("welcome back").
func AcceptReEntry() Result {
	return Result{Accepted: true, ReEntry: true}
}

func Reject(reason Reason) Result {
	return Result{Accepted: false, Reason: reason}
}
