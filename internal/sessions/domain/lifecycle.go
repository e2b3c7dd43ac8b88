package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Windows around the scheduled time inside which a session may be
// started. Outside them the start is rejected: too early, or the
// session should be marked a no-show instead.
const (
	StartWindowBefore = 30 * time.Minute
	StartWindowAfter  = 2 * time.Hour
)

// allowedTransitions is the lifecycle decision table. It is initialized
// once and never mutated. Completed, Cancelled and NoShow are terminal.
var allowedTransitions = map[Status][]Status{
	StatusPending:             {StatusConfirmed, StatusWaitingForPayment, StatusCancelled, StatusNoShow},
	StatusConfirmed:           {StatusRescheduleRequested, StatusInProgress, StatusCancelled, StatusNoShow, StatusCompleted},
	StatusRescheduleRequested: {StatusConfirmed, StatusCancelled},
	StatusInProgress:          {StatusCompleted, StatusCancelled},
	StatusWaitingForPayment:   {StatusPaymentCompleted, StatusCancelled},
	StatusPaymentCompleted:    {StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow},
	StatusCompleted:           {},
	StatusCancelled:           {},
	StatusNoShow:              {},
}

// TransitionRejection reports an attempted transition that may not be
// committed. Precondition failures are distinguished from structurally
// illegal edges but travel through the same channel.
type TransitionRejection struct {
	From               Status
	To                 Status
	Reason             string
	PreconditionFailed bool
}

func (r *TransitionRejection) Error() string {
	kind := "illegal transition"
	if r.PreconditionFailed {
		kind = "transition precondition failed"
	}
	return fmt.Sprintf("%s %s -> %s: %s", kind, r.From, r.To, r.Reason)
}

// IsValidTransition checks the decision table. Identity transitions
// are always valid no-ops.
func IsValidTransition(from, to Status) bool {
	if from == to {
		return true
	}
	for _, allowed := range allowedTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// AllowedTransitions returns the outgoing edges for a state.
func AllowedTransitions(from Status) []Status {
	edges := allowedTransitions[from]
	out := make([]Status, len(edges))
	copy(out, edges)
	return out
}

// IsTerminal reports whether the state has no outgoing edges.
func IsTerminal(s Status) bool {
	return len(allowedTransitions[s]) == 0
}

// CanBeCancelled reports whether the session can still be cancelled.
func CanBeCancelled(s Status) bool {
	return s != StatusCancelled && IsValidTransition(s, StatusCancelled)
}

// CanBeRescheduled reports whether a reschedule may be requested.
func CanBeRescheduled(s Status) bool {
	return s == StatusConfirmed || s == StatusPaymentCompleted
}

// CanStart reports whether the session can move to in-progress.
func CanStart(s Status) bool {
	return s != StatusInProgress && IsValidTransition(s, StatusInProgress)
}

// CanComplete reports whether the session can be completed.
func CanComplete(s Status) bool {
	return s != StatusCompleted && IsValidTransition(s, StatusCompleted)
}

// InitialStatus is the state a freshly scheduled session starts in:
// monetary sessions gate on payment first.
func InitialStatus(monetary, paymentCompleted bool) Status {
	if monetary && !paymentCompleted {
		return StatusWaitingForPayment
	}
	return StatusPending
}

// ValidateTransition checks the decision table and then the per-state
// preconditions against the appointment. A nil return means the caller
// may commit the new state; any problem comes back as a
// *TransitionRejection. The appointment itself is never mutated here.
func ValidateTransition(a *SessionAppointment, to Status, now time.Time) error {
	from := a.Status()
	if from == to {
		return nil
	}
	if !IsValidTransition(from, to) {
		return &TransitionRejection{From: from, To: to, Reason: "no such edge in the lifecycle table"}
	}

	reject := func(reason string) error {
		return &TransitionRejection{From: from, To: to, Reason: reason, PreconditionFailed: true}
	}

	switch to {
	case StatusInProgress:
		if now.Before(a.ScheduledAt().Add(-StartWindowBefore)) {
			return reject("too early to start; sessions may begin at most 30 minutes before the scheduled time")
		}
		if now.After(a.ScheduledAt().Add(StartWindowAfter)) {
			return reject("too late to start; mark the session as no-show instead")
		}
	case StatusRescheduleRequested:
		if a.RescheduleReason() == "" {
			return reject("a reschedule reason is required")
		}
		if a.ProposedTime() == nil {
			return reject("a proposed new date/time is required")
		}
	case StatusCancelled:
		if a.CancelledBy() == uuid.Nil {
			return reject("the cancelling user must be recorded")
		}
	case StatusNoShow:
		if len(a.NoShowUsers()) == 0 {
			return reject("the no-show user set must be recorded")
		}
	case StatusPaymentCompleted:
		if !a.PaymentCompleted() {
			return reject("payment has not been recorded on the appointment")
		}
	}
	return nil
}
