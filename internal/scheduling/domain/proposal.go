package domain

import (
	"time"

	"github.com/google/uuid"
)

// ConflictLevel ranks how badly a candidate slot collides with an
// existing booking. Lower is better; the ordering is used for ranking.
type ConflictLevel int

const (
	ConflictNone ConflictLevel = iota
	ConflictMinor
	ConflictModerate
	ConflictMajor
)

func (l ConflictLevel) String() string {
	switch l {
	case ConflictNone:
		return "none"
	case ConflictMinor:
		return "minor"
	case ConflictModerate:
		return "moderate"
	case ConflictMajor:
		return "major"
	default:
		return "unknown"
	}
}

// ConflictInfo describes which existing booking a candidate collides
// with and why.
type ConflictInfo struct {
	BookingID    uuid.UUID
	OwnerID      uuid.UUID
	OverlapStart time.Time
	OverlapEnd   time.Time
	Priority     BookingPriority
	Reason       string
}

// ProposedAppointment is a ranked, conflict-checked slot produced by the
// scheduler. It is immutable once returned; persisting it as a durable
// appointment is the caller's job.
type ProposedAppointment struct {
	ScheduledAt   time.Time
	Duration      time.Duration
	SessionNumber int
	OrganizerID   uuid.UUID
	ParticipantID uuid.UUID
	ConflictLevel ConflictLevel
	Conflict      *ConflictInfo
	Confidence    float64
	Note          string
}

// End returns the end of the proposed window.
func (p ProposedAppointment) End() time.Time {
	return p.ScheduledAt.Add(p.Duration)
}
