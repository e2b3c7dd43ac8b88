package queries

import (
	"context"
	"time"

	"github.com/felixgeelhaar/tandem/internal/sessions/domain"
	"github.com/google/uuid"
)

// ListSessionsQuery fetches a user's appointments in a time window,
// whether they organize or attend.
type ListSessionsQuery struct {
	UserID uuid.UUID
	From   time.Time
	To     time.Time
}

// ListSessionsHandler handles ListSessionsQuery.
type ListSessionsHandler struct {
	repo domain.Repository
}

// NewListSessionsHandler creates a new ListSessionsHandler.
func NewListSessionsHandler(repo domain.Repository) *ListSessionsHandler {
	return &ListSessionsHandler{repo: repo}
}

// Handle executes the query.
func (h *ListSessionsHandler) Handle(ctx context.Context, q ListSessionsQuery) ([]*domain.SessionAppointment, error) {
	return h.repo.FindByUser(ctx, q.UserID, q.From, q.To)
}
