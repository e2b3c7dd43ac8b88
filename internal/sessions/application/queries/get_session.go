package queries

import (
	"context"

	"github.com/felixgeelhaar/tandem/internal/sessions/domain"
	"github.com/google/uuid"
)

// GetSessionQuery fetches a single appointment by ID.
type GetSessionQuery struct {
	AppointmentID uuid.UUID
}

// GetSessionHandler handles GetSessionQuery.
type GetSessionHandler struct {
	repo domain.Repository
}

// NewGetSessionHandler creates a new GetSessionHandler.
func NewGetSessionHandler(repo domain.Repository) *GetSessionHandler {
	return &GetSessionHandler{repo: repo}
}

// Handle executes the query.
func (h *GetSessionHandler) Handle(ctx context.Context, q GetSessionQuery) (*domain.SessionAppointment, error) {
	return h.repo.FindByID(ctx, q.AppointmentID)
}
