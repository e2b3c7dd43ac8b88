package domain

import (
	"time"

	sharedDomain "github.com/felixgeelhaar/tandem/internal/shared/domain"
	"github.com/google/uuid"
)

const (
	AggregateType = "SessionAppointment"

	RoutingKeySessionScheduled     = "sessions.session.scheduled"
	RoutingKeySessionStatusChanged = "sessions.session.status_changed"
)

// SessionScheduled is emitted when a session appointment is created.
type SessionScheduled struct {
	sharedDomain.BaseEvent
	OrganizerID   uuid.UUID `json:"organizer_id"`
	ParticipantID uuid.UUID `json:"participant_id"`
	ScheduledAt   time.Time `json:"scheduled_at"`
	SessionNumber int       `json:"session_number"`
	Status        string    `json:"status"`
}

// NewSessionScheduled creates a SessionScheduled event.
func NewSessionScheduled(a *SessionAppointment) SessionScheduled {
	return SessionScheduled{
		BaseEvent:     sharedDomain.NewBaseEvent(a.ID(), AggregateType, RoutingKeySessionScheduled),
		OrganizerID:   a.OrganizerID(),
		ParticipantID: a.ParticipantID(),
		ScheduledAt:   a.ScheduledAt(),
		SessionNumber: a.SessionNumber(),
		Status:        string(a.Status()),
	}
}

// SessionStatusChanged is emitted when a validated transition commits.
type SessionStatusChanged struct {
	sharedDomain.BaseEvent
	From string `json:"from"`
	To   string `json:"to"`
}

// NewSessionStatusChanged creates a SessionStatusChanged event.
func NewSessionStatusChanged(a *SessionAppointment, from, to Status) SessionStatusChanged {
	return SessionStatusChanged{
		BaseEvent: sharedDomain.NewBaseEvent(a.ID(), AggregateType, RoutingKeySessionStatusChanged),
		From:      string(from),
		To:        string(to),
	}
}
