package playlist

import "fmt"

// Outcome tags what a Store operation did to the remote collection.
type Outcome string

const (
	// Applied means the write reached the collection.
	Applied Outcome = "applied"
	// Skipped means the operation was a deliberate no-op; Reason says why.
	Skipped Outcome = "skipped"
	// Denied means the collection rejected the caller.
	Denied Outcome = "denied"
	// Failed means the collection could not be reached or errored.
	Failed Outcome = "failed"
)

type Reason string

const (
	ReasonNone             Reason = ""
	ReasonUnauthenticated  Reason = "unauthenticated"
	ReasonNotFound         Reason = "not_found"
	ReasonNotOwned         Reason = "not_owned"
	ReasonDuplicate        Reason = "duplicate"
	ReasonItemAbsent       Reason = "item_absent"
	ReasonPermissionDenied Reason = "permission_denied"
	ReasonRemoteError      Reason = "remote_error"
)

type Result struct {
	Outcome Outcome `json:"outcome"`
	Reason  Reason  `json:"reason,omitempty"`
}

func applied() Result { return Result{Outcome: Applied} }
func skipped(r Reason) Result { return Result{Outcome: Skipped, Reason: r} }
func denied() Result { return Result{Outcome: Denied, Reason: ReasonPermissionDenied} }
func failed() Result { return Result{Outcome: Failed, Reason: ReasonRemoteError} }

// Settled reports whether the collection now agrees with the requested
// change, either because it was written or because nothing needed writing.
// Callers mirror a change locally only when this holds.
func (r Result) Settled() bool {
	return r.Outcome == Applied || r.Outcome == Skipped
}

func (r Result) String() string {
	if r.Reason == ReasonNone {
		return string(r.Outcome)
	}
	return fmt.Sprintf("%s (%s)", r.Outcome, r.Reason)
}
