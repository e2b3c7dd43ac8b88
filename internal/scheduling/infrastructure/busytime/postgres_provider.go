package busytime

import (
	"context"
	"time"

	"github.com/felixgeelhaar/tandem/internal/scheduling/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// statusPriority maps a booking's lifecycle status to the weight its
// collisions carry. Terminal statuses never block a slot and are
// excluded in the queries.
func statusPriority(status string) domain.BookingPriority {
	switch status {
	case "confirmed":
		return domain.PriorityConfirmed
	case "in_progress", "payment_completed":
		return domain.PriorityLocked
	default:
		return domain.PriorityHold
	}
}

// blockingStatuses enumerates the non-terminal lifecycle states whose
// appointments occupy calendar time.
var blockingStatuses = []string{
	"pending", "confirmed", "reschedule_requested",
	"in_progress", "waiting_for_payment", "payment_completed",
}

// PostgresProvider reads busy windows from the session_appointments
// table.
type PostgresProvider struct {
	pool *pgxpool.Pool
}

// NewPostgresProvider creates a new PostgreSQL busy-window provider.
func NewPostgresProvider(pool *pgxpool.Pool) *PostgresProvider {
	return &PostgresProvider{pool: pool}
}

// BusyWindows returns the user's booked windows overlapping [from, to).
func (p *PostgresProvider) BusyWindows(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.BusyWindow, error) {
	query := `
		SELECT id, organizer_id, participant_id, scheduled_at, duration_minutes, status
		FROM session_appointments
		WHERE (organizer_id = $1 OR participant_id = $1)
		  AND status = ANY($2)
		  AND scheduled_at < $4
		  AND scheduled_at + (duration_minutes * interval '1 minute') > $3
		ORDER BY scheduled_at
	`

	rows, err := p.pool.Query(ctx, query, userID, blockingStatuses, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []domain.BusyWindow
	for rows.Next() {
		var (
			bookingID, organizerID, participantID uuid.UUID
			scheduledAt                           time.Time
			durationMinutes                       int
			status                                string
		)
		if err := rows.Scan(&bookingID, &organizerID, &participantID, &scheduledAt, &durationMinutes, &status); err != nil {
			return nil, err
		}
		owner := organizerID
		if owner != userID {
			owner = participantID
		}
		windows = append(windows, domain.BusyWindow{
			BookingID: bookingID,
			OwnerID:   owner,
			Start:     scheduledAt,
			End:       scheduledAt.Add(time.Duration(durationMinutes) * time.Minute),
			Priority:  statusPriority(status),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return windows, nil
}
