package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/felixgeelhaar/tandem/internal/sessions/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresSessionRepository implements domain.Repository using PostgreSQL.
type PostgresSessionRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresSessionRepository creates a new PostgreSQL session repository.
func NewPostgresSessionRepository(pool *pgxpool.Pool) *PostgresSessionRepository {
	return &PostgresSessionRepository{pool: pool}
}

// appointmentRow represents a database row for session appointments.
type appointmentRow struct {
	ID               uuid.UUID
	OrganizerID      uuid.UUID
	ParticipantID    uuid.UUID
	ScheduledAt      time.Time
	DurationMinutes  int
	SessionNumber    int
	Status           string
	Monetary         bool
	PaymentCompleted bool
	RescheduleReason *string
	ProposedTime     *time.Time
	CancelledBy      *uuid.UUID
	NoShowUsers      []uuid.UUID
	Version          int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Save inserts a new appointment.
func (r *PostgresSessionRepository) Save(ctx context.Context, a *domain.SessionAppointment) error {
	query := `
		INSERT INTO session_appointments (
			id, organizer_id, participant_id, scheduled_at, duration_minutes,
			session_number, status, monetary, payment_completed,
			reschedule_reason, proposed_time, cancelled_by, no_show_users,
			version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`

	_, err := r.pool.Exec(ctx, query,
		a.ID(),
		a.OrganizerID(),
		a.ParticipantID(),
		a.ScheduledAt(),
		int(a.Duration().Minutes()),
		a.SessionNumber(),
		a.Status().String(),
		a.IsMonetary(),
		a.PaymentCompleted(),
		nullableString(a.RescheduleReason()),
		a.ProposedTime(),
		nullableUUID(a.CancelledBy()),
		a.NoShowUsers(),
		a.Version(),
		a.CreatedAt(),
		a.UpdatedAt(),
	)
	return err
}

// Update persists a modified appointment. The WHERE clause guards on
// the version the caller loaded; zero rows affected means another
// writer committed first.
func (r *PostgresSessionRepository) Update(ctx context.Context, a *domain.SessionAppointment) error {
	query := `
		UPDATE session_appointments SET
			scheduled_at = $1,
			status = $2,
			payment_completed = $3,
			reschedule_reason = $4,
			proposed_time = $5,
			cancelled_by = $6,
			no_show_users = $7,
			version = version + 1,
			updated_at = $8
		WHERE id = $9 AND version = $10
	`

	tag, err := r.pool.Exec(ctx, query,
		a.ScheduledAt(),
		a.Status().String(),
		a.PaymentCompleted(),
		nullableString(a.RescheduleReason()),
		a.ProposedTime(),
		nullableUUID(a.CancelledBy()),
		a.NoShowUsers(),
		a.UpdatedAt(),
		a.ID(),
		a.Version(),
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrVersionConflict
	}
	a.IncrementVersion()
	return nil
}

// FindByID retrieves an appointment by its ID.
func (r *PostgresSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.SessionAppointment, error) {
	query := selectColumns + ` WHERE id = $1`

	var row appointmentRow
	err := r.pool.QueryRow(ctx, query, id).Scan(scanTargets(&row)...)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrAppointmentNotFound
		}
		return nil, err
	}
	return rowToAppointment(row), nil
}

// FindByUser retrieves a user's appointments overlapping [from, to),
// whether they organize or attend, in chronological order.
func (r *PostgresSessionRepository) FindByUser(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.SessionAppointment, error) {
	query := selectColumns + `
		WHERE (organizer_id = $1 OR participant_id = $1)
		  AND scheduled_at < $3
		  AND scheduled_at + (duration_minutes * interval '1 minute') > $2
		ORDER BY scheduled_at
	`

	rows, err := r.pool.Query(ctx, query, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var appointments []*domain.SessionAppointment
	for rows.Next() {
		var row appointmentRow
		if err := rows.Scan(scanTargets(&row)...); err != nil {
			return nil, err
		}
		appointments = append(appointments, rowToAppointment(row))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return appointments, nil
}

const selectColumns = `
	SELECT id, organizer_id, participant_id, scheduled_at, duration_minutes,
	       session_number, status, monetary, payment_completed,
	       reschedule_reason, proposed_time, cancelled_by, no_show_users,
	       version, created_at, updated_at
	FROM session_appointments`

func scanTargets(row *appointmentRow) []any {
	return []any{
		&row.ID,
		&row.OrganizerID,
		&row.ParticipantID,
		&row.ScheduledAt,
		&row.DurationMinutes,
		&row.SessionNumber,
		&row.Status,
		&row.Monetary,
		&row.PaymentCompleted,
		&row.RescheduleReason,
		&row.ProposedTime,
		&row.CancelledBy,
		&row.NoShowUsers,
		&row.Version,
		&row.CreatedAt,
		&row.UpdatedAt,
	}
}

func rowToAppointment(row appointmentRow) *domain.SessionAppointment {
	var reason string
	if row.RescheduleReason != nil {
		reason = *row.RescheduleReason
	}
	cancelledBy := uuid.Nil
	if row.CancelledBy != nil {
		cancelledBy = *row.CancelledBy
	}

	return domain.RehydrateSessionAppointment(
		row.ID,
		row.OrganizerID,
		row.ParticipantID,
		row.ScheduledAt,
		time.Duration(row.DurationMinutes)*time.Minute,
		row.SessionNumber,
		domain.Status(row.Status),
		row.Monetary,
		row.PaymentCompleted,
		reason,
		row.ProposedTime,
		cancelledBy,
		row.NoShowUsers,
		row.Version,
		row.CreatedAt,
		row.UpdatedAt,
	)
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func nullableUUID(id uuid.UUID) *uuid.UUID {
	if id == uuid.Nil {
		return nil
	}
	return &id
}
