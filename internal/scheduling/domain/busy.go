package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// BookingPriority is how firmly an existing booking holds its window.
type BookingPriority int

const (
	// PriorityHold is an unconfirmed or tentative booking.
	PriorityHold BookingPriority = iota
	// PriorityConfirmed is a firm booking.
	PriorityConfirmed
	// PriorityLocked is a booking that cannot be moved (in progress,
	// paid, or externally owned).
	PriorityLocked
)

func (p BookingPriority) String() string {
	switch p {
	case PriorityHold:
		return "hold"
	case PriorityConfirmed:
		return "confirmed"
	case PriorityLocked:
		return "locked"
	default:
		return "unknown"
	}
}

// ConflictLevel maps a colliding booking's priority to overlap severity.
func (p BookingPriority) ConflictLevel() ConflictLevel {
	switch p {
	case PriorityHold:
		return ConflictMinor
	case PriorityConfirmed:
		return ConflictModerate
	default:
		return ConflictMajor
	}
}

// BusyWindow is one occupied interval on a participant's calendar.
type BusyWindow struct {
	BookingID uuid.UUID
	OwnerID   uuid.UUID
	Start     time.Time
	End       time.Time
	Priority  BookingPriority
}

// Overlaps checks the window against the half-open interval [start, end).
func (w BusyWindow) Overlaps(start, end time.Time) bool {
	return w.Start.Before(end) && start.Before(w.End)
}

// BusyWindowProvider is the external collaborator answering busy-time
// queries. Implementations live in infrastructure.
type BusyWindowProvider interface {
	BusyWindows(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]BusyWindow, error)
}
