package persistence

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/felixgeelhaar/tandem/internal/sessions/domain"
	"github.com/google/uuid"
)

// SQLiteSessionRepository implements domain.Repository using SQLite.
// Timestamps are stored as RFC 3339 strings and the no-show set as a
// JSON array.
type SQLiteSessionRepository struct {
	dbConn *sql.DB
}

// NewSQLiteSessionRepository creates a new SQLite session repository.
func NewSQLiteSessionRepository(dbConn *sql.DB) *SQLiteSessionRepository {
	return &SQLiteSessionRepository{dbConn: dbConn}
}

// Save inserts a new appointment.
func (r *SQLiteSessionRepository) Save(ctx context.Context, a *domain.SessionAppointment) error {
	noShow, err := json.Marshal(a.NoShowUsers())
	if err != nil {
		return err
	}

	query := `
		INSERT INTO session_appointments (
			id, organizer_id, participant_id, scheduled_at, duration_minutes,
			session_number, status, monetary, payment_completed,
			reschedule_reason, proposed_time, cancelled_by, no_show_users,
			version, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.dbConn.ExecContext(ctx, query,
		a.ID().String(),
		a.OrganizerID().String(),
		a.ParticipantID().String(),
		a.ScheduledAt().Format(time.RFC3339),
		int(a.Duration().Minutes()),
		a.SessionNumber(),
		a.Status().String(),
		a.IsMonetary(),
		a.PaymentCompleted(),
		nullString(a.RescheduleReason()),
		nullTime(a.ProposedTime()),
		nullUUID(a.CancelledBy()),
		string(noShow),
		a.Version(),
		a.CreatedAt().Format(time.RFC3339),
		a.UpdatedAt().Format(time.RFC3339),
	)
	return err
}

// Update persists a modified appointment with a version guard.
func (r *SQLiteSessionRepository) Update(ctx context.Context, a *domain.SessionAppointment) error {
	noShow, err := json.Marshal(a.NoShowUsers())
	if err != nil {
		return err
	}

	query := `
		UPDATE session_appointments SET
			scheduled_at = ?,
			status = ?,
			payment_completed = ?,
			reschedule_reason = ?,
			proposed_time = ?,
			cancelled_by = ?,
			no_show_users = ?,
			version = version + 1,
			updated_at = ?
		WHERE id = ? AND version = ?
	`

	result, err := r.dbConn.ExecContext(ctx, query,
		a.ScheduledAt().Format(time.RFC3339),
		a.Status().String(),
		a.PaymentCompleted(),
		nullString(a.RescheduleReason()),
		nullTime(a.ProposedTime()),
		nullUUID(a.CancelledBy()),
		string(noShow),
		a.UpdatedAt().Format(time.RFC3339),
		a.ID().String(),
		a.Version(),
	)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrVersionConflict
	}
	a.IncrementVersion()
	return nil
}

// FindByID retrieves an appointment by its ID.
func (r *SQLiteSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.SessionAppointment, error) {
	query := sqliteSelectColumns + ` WHERE id = ?`

	row := r.dbConn.QueryRowContext(ctx, query, id.String())
	appointment, err := scanSQLiteRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, err
	}
	return appointment, nil
}

// FindByUser retrieves a user's appointments overlapping [from, to).
// SQLite cannot add minutes to a text timestamp cheaply, so the query
// widens the lower bound by a day and the exact filter runs in Go.
func (r *SQLiteSessionRepository) FindByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.SessionAppointment, error) {
	query := sqliteSelectColumns + `
		WHERE (organizer_id = ? OR participant_id = ?)
		  AND scheduled_at < ?
		  AND scheduled_at >= ?
		ORDER BY scheduled_at
	`

	widened := from.Add(-24 * time.Hour)
	rows, err := r.dbConn.QueryContext(ctx, query,
		userID.String(),
		userID.String(),
		to.UTC().Format(time.RFC3339),
		widened.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []*domain.SessionAppointment
	for rows.Next() {
		appointment, err := scanSQLiteRow(rows)
		if err != nil {
			return nil, err
		}
		if !appointment.EndsAt().After(from) {
			continue
		}
		appointments = append(appointments, appointment)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return appointments, nil
}

const sqliteSelectColumns = `
	SELECT id, organizer_id, participant_id, scheduled_at, duration_minutes,
	       session_number, status, monetary, payment_completed,
	       reschedule_reason, proposed_time, cancelled_by, no_show_users,
	       version, created_at, updated_at
	FROM session_appointments`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteRow(s rowScanner) (*domain.SessionAppointment, error) {
	var (
		id, organizerID, participantID    string
		scheduledAt, createdAt, updatedAt string
		durationMinutes, sessionNumber    int
		status                            string
		monetary, paymentCompleted        bool
		rescheduleReason, proposedTime    sql.NullString
		cancelledBy                       sql.NullString
		noShowJSON                        string
		version                           int
	)

	err := s.Scan(
		&id, &organizerID, &participantID, &scheduledAt, &durationMinutes,
		&sessionNumber, &status, &monetary, &paymentCompleted,
		&rescheduleReason, &proposedTime, &cancelledBy, &noShowJSON,
		&version, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	appointmentID, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid appointment id in database: %w", err)
	}
	organizer, err := uuid.Parse(organizerID)
	if err != nil {
		return nil, fmt.Errorf("invalid organizer id in database: %w", err)
	}
	participant, err := uuid.Parse(participantID)
	if err != nil {
		return nil, fmt.Errorf("invalid participant id in database: %w", err)
	}

	scheduled, err := time.Parse(time.RFC3339, scheduledAt)
	if err != nil {
		return nil, fmt.Errorf("invalid scheduled_at in database: %w", err)
	}
	created, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return nil, fmt.Errorf("invalid created_at in database: %w", err)
	}
	updated, err := time.Parse(time.RFC3339, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid updated_at in database: %w", err)
	}

	var proposed *time.Time
	if proposedTime.Valid {
		t, err := time.Parse(time.RFC3339, proposedTime.String)
		if err != nil {
			return nil, fmt.Errorf("invalid proposed_time in database: %w", err)
		}
		proposed = &t
	}

	cancelled := uuid.Nil
	if cancelledBy.Valid {
		cancelled, err = uuid.Parse(cancelledBy.String)
		if err != nil {
			return nil, fmt.Errorf("invalid cancelled_by in database: %w", err)
		}
	}

	var noShowUsers []uuid.UUID
	if noShowJSON != "" {
		if err := json.Unmarshal([]byte(noShowJSON), &noShowUsers); err != nil {
			return nil, fmt.Errorf("invalid no_show_users in database: %w", err)
		}
	}

	return domain.RehydrateSessionAppointment(
		appointmentID,
		organizer,
		participant,
		scheduled,
		time.Duration(durationMinutes)*time.Minute,
		sessionNumber,
		domain.Status(status),
		monetary,
		paymentCompleted,
		rescheduleReason.String,
		proposed,
		cancelled,
		noShowUsers,
		version,
		created,
		updated,
	), nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(time.RFC3339), Valid: true}
}

func nullUUID(id uuid.UUID) sql.NullString {
	if id == uuid.Nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}
