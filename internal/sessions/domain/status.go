package domain

import "fmt"

// Status is the lifecycle state of a session appointment.
type Status string

const (
	StatusPending             Status = "pending"
	StatusConfirmed           Status = "confirmed"
	StatusRescheduleRequested Status = "reschedule_requested"
	StatusInProgress          Status = "in_progress"
	StatusWaitingForPayment   Status = "waiting_for_payment"
	StatusPaymentCompleted    Status = "payment_completed"
	StatusCompleted           Status = "completed"
	StatusCancelled           Status = "cancelled"
	StatusNoShow              Status = "no_show"
)

func (s Status) String() string { return string(s) }

// AllStatuses lists every lifecycle state.
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusConfirmed,
		StatusRescheduleRequested,
		StatusInProgress,
		StatusWaitingForPayment,
		StatusPaymentCompleted,
		StatusCompleted,
		StatusCancelled,
		StatusNoShow,
	}
}

// ParseStatus converts a stored string into a Status.
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	for _, known := range AllStatuses() {
		if status == known {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown session status: %q", s)
}
