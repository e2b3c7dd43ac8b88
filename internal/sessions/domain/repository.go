package domain

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrAppointmentNotFound = errors.New("session appointment not found")

	// ErrVersionConflict means another transition committed first; the
	// caller must reload and re-validate against the new state.
	ErrVersionConflict = errors.New("session appointment was modified concurrently")
)

// Repository defines persistence operations for session appointments.
type Repository interface {
	// Save inserts a new appointment.
	Save(ctx context.Context, a *SessionAppointment) error

	// FindByID retrieves an appointment.
	FindByID(ctx context.Context, id uuid.UUID) (*SessionAppointment, error)

	// FindByUser retrieves a user's appointments overlapping [from, to).
	FindByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*SessionAppointment, error)

	// Update persists a mutated appointment guarded by its version
	// stamp; ErrVersionConflict if a concurrent update won.
	Update(ctx context.Context, a *SessionAppointment) error
}
