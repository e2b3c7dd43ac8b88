package domain

import (
	"errors"
	"time"

	sharedDomain "github.com/felixgeelhaar/tandem/internal/shared/domain"
	"github.com/google/uuid"
)

var (
	ErrInvalidDuration      = errors.New("session duration must be positive")
	ErrInvalidSessionNumber = errors.New("session number must be at least 1")
	ErrSameParticipants     = errors.New("organizer and participant must differ")
)

// SessionAppointment is the durable appointment whose status the
// lifecycle table governs. Status changes only through TransitionTo.
type SessionAppointment struct {
	sharedDomain.BaseAggregateRoot
	organizerID      uuid.UUID
	participantID    uuid.UUID
	scheduledAt      time.Time
	duration         time.Duration
	sessionNumber    int
	status           Status
	monetary         bool
	paymentCompleted bool
	rescheduleReason string
	proposedTime     *time.Time
	cancelledBy      uuid.UUID
	noShowUsers      []uuid.UUID
}

// NewSessionAppointment creates a scheduled session in its initial
// lifecycle state.
func NewSessionAppointment(
	organizerID, participantID uuid.UUID,
	scheduledAt time.Time,
	duration time.Duration,
	sessionNumber int,
	monetary bool,
) (*SessionAppointment, error) {
	if duration <= 0 {
		return nil, ErrInvalidDuration
	}
	if sessionNumber < 1 {
		return nil, ErrInvalidSessionNumber
	}
	if organizerID == participantID {
		return nil, ErrSameParticipants
	}

	a := &SessionAppointment{
		BaseAggregateRoot: sharedDomain.NewBaseAggregateRoot(),
		organizerID:       organizerID,
		participantID:     participantID,
		scheduledAt:       scheduledAt.UTC(),
		duration:          duration,
		sessionNumber:     sessionNumber,
		status:            InitialStatus(monetary, false),
		monetary:          monetary,
	}
	a.AddDomainEvent(NewSessionScheduled(a))
	return a, nil
}

// Getters
func (a *SessionAppointment) OrganizerID() uuid.UUID   { return a.organizerID }
func (a *SessionAppointment) ParticipantID() uuid.UUID { return a.participantID }
func (a *SessionAppointment) ScheduledAt() time.Time   { return a.scheduledAt }
func (a *SessionAppointment) Duration() time.Duration  { return a.duration }
func (a *SessionAppointment) SessionNumber() int       { return a.sessionNumber }
func (a *SessionAppointment) Status() Status           { return a.status }
func (a *SessionAppointment) IsMonetary() bool         { return a.monetary }
func (a *SessionAppointment) PaymentCompleted() bool   { return a.paymentCompleted }
func (a *SessionAppointment) RescheduleReason() string { return a.rescheduleReason }
func (a *SessionAppointment) ProposedTime() *time.Time { return a.proposedTime }
func (a *SessionAppointment) CancelledBy() uuid.UUID   { return a.cancelledBy }

// EndsAt returns the scheduled end of the session window.
func (a *SessionAppointment) EndsAt() time.Time {
	return a.scheduledAt.Add(a.duration)
}

// NoShowUsers returns the recorded no-show participants.
func (a *SessionAppointment) NoShowUsers() []uuid.UUID {
	out := make([]uuid.UUID, len(a.noShowUsers))
	copy(out, a.noShowUsers)
	return out
}

// RequestReschedule records the facts a reschedule transition requires.
func (a *SessionAppointment) RequestReschedule(reason string, proposed time.Time) {
	a.rescheduleReason = reason
	p := proposed.UTC()
	a.proposedTime = &p
	a.Touch()
}

// RecordCancellation records who is cancelling.
func (a *SessionAppointment) RecordCancellation(userID uuid.UUID) {
	a.cancelledBy = userID
	a.Touch()
}

// RecordNoShow records which participants failed to appear.
func (a *SessionAppointment) RecordNoShow(userIDs []uuid.UUID) {
	a.noShowUsers = make([]uuid.UUID, len(userIDs))
	copy(a.noShowUsers, userIDs)
	a.Touch()
}

// MarkPaymentCompleted records that payment has settled. The
// PaymentCompleted transition only acknowledges this fact.
func (a *SessionAppointment) MarkPaymentCompleted() {
	a.paymentCompleted = true
	a.Touch()
}

// TransitionTo validates the transition and, if legal with all
// preconditions met, applies it and records a status-changed event.
func (a *SessionAppointment) TransitionTo(to Status, now time.Time) error {
	if err := ValidateTransition(a, to, now); err != nil {
		return err
	}
	if a.status == to {
		return nil
	}
	from := a.status
	a.status = to
	a.Touch()
	a.AddDomainEvent(NewSessionStatusChanged(a, from, to))
	return nil
}

// RehydrateSessionAppointment recreates an appointment from persisted
// state.
func RehydrateSessionAppointment(
	id uuid.UUID,
	organizerID, participantID uuid.UUID,
	scheduledAt time.Time,
	duration time.Duration,
	sessionNumber int,
	status Status,
	monetary, paymentCompleted bool,
	rescheduleReason string,
	proposedTime *time.Time,
	cancelledBy uuid.UUID,
	noShowUsers []uuid.UUID,
	version int,
	createdAt, updatedAt time.Time,
) *SessionAppointment {
	return &SessionAppointment{
		BaseAggregateRoot: sharedDomain.RehydrateBaseAggregateRoot(
			sharedDomain.RehydrateBaseEntity(id, createdAt, updatedAt), version),
		organizerID:      organizerID,
		participantID:    participantID,
		scheduledAt:      scheduledAt,
		duration:         duration,
		sessionNumber:    sessionNumber,
		status:           status,
		monetary:         monetary,
		paymentCompleted: paymentCompleted,
		rescheduleReason: rescheduleReason,
		proposedTime:     proposedTime,
		cancelledBy:      cancelledBy,
		noShowUsers:      noShowUsers,
	}
}
