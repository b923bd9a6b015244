package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("appointment not found")

// Status values an appointment moves through after an Interested outcome.
const (
	StatusProposed  = "Proposed"
	StatusConfirmed = "Confirmed"
	StatusCancelled = "Cancelled"
	StatusCompleted = "Completed"
)

type Appointment struct {
	ID              uuid.UUID
	EstablishmentID uuid.UUID
	SourceAttemptID *uuid.UUID
	AssigneeID      uuid.UUID
	ProposedDate    *time.Time
	ConfirmedDate   *time.Time
	Urgency         string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const appointmentColumns = `id, establishment_id, source_attempt_id, assignee_id, proposed_date,
	confirmed_date, urgency, status, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanAppointment(row pgx.Row) (Appointment, error) {
	var a Appointment
	err := row.Scan(
		&a.ID, &a.EstablishmentID, &a.SourceAttemptID, &a.AssigneeID, &a.ProposedDate,
		&a.ConfirmedDate, &a.Urgency, &a.Status, &a.CreatedAt, &a.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Appointment{}, ErrNotFound
	}
	return a, err
}

type CreateParams struct {
	EstablishmentID uuid.UUID
	SourceAttemptID *uuid.UUID
	AssigneeID      uuid.UUID
	ProposedDate    *time.Time
	Urgency         string
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (Appointment, error) {
	urgency := params.Urgency
	if urgency == "" {
		urgency = "normal"
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (establishment_id, source_attempt_id, assignee_id, proposed_date, urgency, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+appointmentColumns,
		params.EstablishmentID, params.SourceAttemptID, params.AssigneeID, params.ProposedDate, urgency, StatusProposed,
	)
	return scanAppointment(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `SELECT `+appointmentColumns+` FROM appointments WHERE id = $1`, id))
}

func (r *Repository) ListByEstablishment(ctx context.Context, establishmentID uuid.UUID) ([]Appointment, error) {
	return r.queryList(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE establishment_id = $1
		ORDER BY created_at DESC
	`, establishmentID)
}

func (r *Repository) ListByAssignee(ctx context.Context, assigneeID uuid.UUID, statuses []string) ([]Appointment, error) {
	if len(statuses) == 0 {
		statuses = []string{StatusProposed, StatusConfirmed}
	}
	return r.queryList(ctx, `
		SELECT `+appointmentColumns+` FROM appointments
		WHERE assignee_id = $1 AND status = ANY($2)
		ORDER BY COALESCE(confirmed_date, proposed_date, created_at) ASC
	`, assigneeID, statuses)
}

func (r *Repository) queryList(ctx context.Context, query string, args ...interface{}) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	appointments := make([]Appointment, 0)
	for rows.Next() {
		var a Appointment
		if err := rows.Scan(
			&a.ID, &a.EstablishmentID, &a.SourceAttemptID, &a.AssigneeID, &a.ProposedDate,
			&a.ConfirmedDate, &a.Urgency, &a.Status, &a.CreatedAt, &a.UpdatedAt,
		); err != nil {
			return nil, err
		}
		appointments = append(appointments, a)
	}
	return appointments, rows.Err()
}

// Confirm fixes the meeting date and moves the appointment to Confirmed.
func (r *Repository) Confirm(ctx context.Context, id uuid.UUID, confirmedDate time.Time) (Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET confirmed_date = $2, status = $3, updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns, id, confirmedDate, StatusConfirmed))
}

func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status string) (Appointment, error) {
	return scanAppointment(r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+appointmentColumns, id, status))
}
