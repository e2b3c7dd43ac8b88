package commands

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/felixgeelhaar/tandem/internal/sessions/domain"
	sharedDomain "github.com/felixgeelhaar/tandem/internal/shared/domain"
	"github.com/felixgeelhaar/tandem/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// transitionRetries bounds how often a losing writer reloads and
// re-validates after a concurrent transition committed first.
const transitionRetries = 3

// BusyCache drops a user's cached busy windows after their bookings
// change, so the next scheduling pass sees the committed state instead
// of waiting out the TTL.
type BusyCache interface {
	Invalidate(ctx context.Context, userID uuid.UUID)
}

// TransitionSessionCommand requests a lifecycle transition for a
// session appointment.
type TransitionSessionCommand struct {
	AppointmentID uuid.UUID
	To            domain.Status

	// ActorID is the user performing the transition; required for
	// cancellations.
	ActorID uuid.UUID

	// Reschedule details, required when To is RescheduleRequested.
	RescheduleReason string
	ProposedTime     *time.Time

	// NoShowUsers, required when To is NoShow.
	NoShowUsers []uuid.UUID
}

// TransitionSessionResult reports a committed transition.
type TransitionSessionResult struct {
	AppointmentID uuid.UUID
	From          domain.Status
	To            domain.Status
}

// TransitionSessionHandler validates a status change against the
// lifecycle table and commits it with an optimistic-concurrency guard:
// if another transition wins the race, the command re-validates
// against the fresh state before retrying.
type TransitionSessionHandler struct {
	repo      domain.Repository
	publisher eventbus.Publisher
	clock     sharedDomain.Clock
	busyCache BusyCache
	logger    *slog.Logger
}

// NewTransitionSessionHandler creates a new TransitionSessionHandler.
// busyCache may be nil when no cache is configured.
func NewTransitionSessionHandler(
	repo domain.Repository,
	publisher eventbus.Publisher,
	clock sharedDomain.Clock,
	busyCache BusyCache,
	logger *slog.Logger,
) *TransitionSessionHandler {
	if clock == nil {
		clock = sharedDomain.SystemClock{}
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &TransitionSessionHandler{
		repo:      repo,
		publisher: publisher,
		clock:     clock,
		busyCache: busyCache,
		logger:    logger,
	}
}

// Handle executes the TransitionSessionCommand.
func (h *TransitionSessionHandler) Handle(ctx context.Context, cmd TransitionSessionCommand) (*TransitionSessionResult, error) {
	var lastErr error

	for attempt := 0; attempt < transitionRetries; attempt++ {
		appointment, err := h.repo.FindByID(ctx, cmd.AppointmentID)
		if err != nil {
			return nil, err
		}
		from := appointment.Status()

		// Record the facts the target state's preconditions check.
		switch cmd.To {
		case domain.StatusRescheduleRequested:
			if cmd.RescheduleReason != "" && cmd.ProposedTime != nil {
				appointment.RequestReschedule(cmd.RescheduleReason, *cmd.ProposedTime)
			}
		case domain.StatusCancelled:
			if cmd.ActorID != uuid.Nil {
				appointment.RecordCancellation(cmd.ActorID)
			}
		case domain.StatusNoShow:
			if len(cmd.NoShowUsers) > 0 {
				appointment.RecordNoShow(cmd.NoShowUsers)
			}
		}

		if err := appointment.TransitionTo(cmd.To, h.clock.Now()); err != nil {
			return nil, err
		}

		if err := h.repo.Update(ctx, appointment); err != nil {
			if errors.Is(err, domain.ErrVersionConflict) {
				h.logger.Warn("concurrent transition won, re-validating",
					"appointment_id", cmd.AppointmentID,
					"attempt", attempt+1,
				)
				lastErr = err
				continue
			}
			return nil, err
		}

		if h.busyCache != nil {
			h.busyCache.Invalidate(ctx, appointment.OrganizerID())
			h.busyCache.Invalidate(ctx, appointment.ParticipantID())
		}

		if err := eventbus.PublishDomainEvents(ctx, h.publisher, appointment.DomainEvents()); err != nil {
			h.logger.Error("failed to publish session events", "error", err)
		}
		appointment.ClearDomainEvents()

		h.logger.Info("session transition committed",
			"appointment_id", cmd.AppointmentID,
			"from", from,
			"to", cmd.To,
		)
		return &TransitionSessionResult{
			AppointmentID: cmd.AppointmentID,
			From:          from,
			To:            cmd.To,
		}, nil
	}

	return nil, lastErr
}
