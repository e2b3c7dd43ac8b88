package commands

import (
	"context"
	"log/slog"

	schedulingDomain "github.com/felixgeelhaar/tandem/internal/scheduling/domain"
	"github.com/felixgeelhaar/tandem/internal/sessions/domain"
	"github.com/felixgeelhaar/tandem/internal/shared/infrastructure/eventbus"
	"github.com/google/uuid"
)

// ProposeSessionsCommand runs the scheduling algorithm for a request
// and optionally persists the accepted proposals as appointments.
type ProposeSessionsCommand struct {
	Request schedulingDomain.SchedulingRequest
	Persist bool
}

// ProposeSessionsResult carries the proposals and any created
// appointment IDs.
type ProposeSessionsResult struct {
	Proposals  []schedulingDomain.ProposedAppointment
	CreatedIDs []uuid.UUID
}

// SlotGenerator is the scheduling entry point this handler drives.
type SlotGenerator interface {
	GenerateAppointmentSlots(ctx context.Context, req schedulingDomain.SchedulingRequest) ([]schedulingDomain.ProposedAppointment, error)
}

// ProposeSessionsHandler handles the ProposeSessionsCommand.
type ProposeSessionsHandler struct {
	scheduler SlotGenerator
	repo      domain.Repository
	publisher eventbus.Publisher
	busyCache BusyCache
	logger    *slog.Logger
}

// NewProposeSessionsHandler creates a new ProposeSessionsHandler.
// busyCache may be nil when no cache is configured.
func NewProposeSessionsHandler(
	scheduler SlotGenerator,
	repo domain.Repository,
	publisher eventbus.Publisher,
	busyCache BusyCache,
	logger *slog.Logger,
) *ProposeSessionsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ProposeSessionsHandler{
		scheduler: scheduler,
		repo:      repo,
		publisher: publisher,
		busyCache: busyCache,
		logger:    logger,
	}
}

// Handle executes the ProposeSessionsCommand. On cancellation the
// proposals generated so far are returned with the context error.
func (h *ProposeSessionsHandler) Handle(ctx context.Context, cmd ProposeSessionsCommand) (*ProposeSessionsResult, error) {
	proposals, err := h.scheduler.GenerateAppointmentSlots(ctx, cmd.Request)
	result := &ProposeSessionsResult{Proposals: proposals}
	if err != nil {
		return result, err
	}

	if !cmd.Persist {
		return result, nil
	}

	// Skill exchanges are barter; only learning-mode series are monetary.
	monetary := !cmd.Request.SkillExchange

	for _, p := range proposals {
		appointment, err := domain.NewSessionAppointment(
			p.OrganizerID,
			p.ParticipantID,
			p.ScheduledAt,
			p.Duration,
			p.SessionNumber,
			monetary,
		)
		if err != nil {
			return result, err
		}
		if err := h.repo.Save(ctx, appointment); err != nil {
			return result, err
		}
		if err := eventbus.PublishDomainEvents(ctx, h.publisher, appointment.DomainEvents()); err != nil {
			h.logger.Error("failed to publish session events", "error", err)
		}
		appointment.ClearDomainEvents()
		result.CreatedIDs = append(result.CreatedIDs, appointment.ID())
	}

	if h.busyCache != nil && len(result.CreatedIDs) > 0 {
		h.busyCache.Invalidate(ctx, cmd.Request.RequesterID)
		h.busyCache.Invalidate(ctx, cmd.Request.TargetID)
	}

	h.logger.Info("session series persisted",
		"proposals", len(proposals),
		"created", len(result.CreatedIDs),
	)
	return result, nil
}
