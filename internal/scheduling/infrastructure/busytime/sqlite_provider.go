package busytime

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/felixgeelhaar/tandem/internal/scheduling/domain"
	"github.com/google/uuid"
)

// SQLiteProvider reads busy windows from the session_appointments
// table in SQLite, where timestamps are RFC 3339 strings. The query
// widens the lower bound by a day and the exact overlap filter runs
// in Go, since the end time lives only as a minute count.
type SQLiteProvider struct {
	dbConn *sql.DB
}

// NewSQLiteProvider creates a new SQLite busy-window provider.
func NewSQLiteProvider(dbConn *sql.DB) *SQLiteProvider {
	return &SQLiteProvider{dbConn: dbConn}
}

// BusyWindows returns the user's booked windows overlapping [from, to).
func (p *SQLiteProvider) BusyWindows(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]domain.BusyWindow, error) {
	placeholders := make([]string, len(blockingStatuses))
	args := []any{userID.String(), userID.String()}
	for i, status := range blockingStatuses {
		placeholders[i] = "?"
		args = append(args, status)
	}
	widened := from.Add(-24 * time.Hour)
	args = append(args, to.UTC().Format(time.RFC3339), widened.UTC().Format(time.RFC3339))

	query := fmt.Sprintf(`
		SELECT id, organizer_id, participant_id, scheduled_at, duration_minutes, status
		FROM session_appointments
		WHERE (organizer_id = ? OR participant_id = ?)
		  AND status IN (%s)
		  AND scheduled_at < ?
		  AND scheduled_at >= ?
		ORDER BY scheduled_at
	`, strings.Join(placeholders, ", "))

	rows, err := p.dbConn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var windows []domain.BusyWindow
	for rows.Next() {
		var (
			id, organizerID, participantID string
			scheduledAt                    string
			durationMinutes                int
			status                         string
		)
		if err := rows.Scan(&id, &organizerID, &participantID, &scheduledAt, &durationMinutes, &status); err != nil {
			return nil, err
		}

		bookingID, err := uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("invalid appointment id in database: %w", err)
		}
		start, err := time.Parse(time.RFC3339, scheduledAt)
		if err != nil {
			return nil, fmt.Errorf("invalid scheduled_at in database: %w", err)
		}
		end := start.Add(time.Duration(durationMinutes) * time.Minute)
		if !end.After(from) {
			continue
		}

		owner := userID
		if organizerID != userID.String() && participantID != userID.String() {
			owner, _ = uuid.Parse(organizerID)
		}
		windows = append(windows, domain.BusyWindow{
			BookingID: bookingID,
			OwnerID:   owner,
			Start:     start,
			End:       end,
			Priority:  statusPriority(status),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return windows, nil
}
