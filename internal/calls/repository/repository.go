package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("call attempt not found")

// CallAttempt is one immutable log line per completed call. Only an explicit
// operator correction may touch it after the fact.
type CallAttempt struct {
	ID              uuid.UUID
	EstablishmentID uuid.UUID
	CallerID        uuid.UUID
	Outcome         string
	ContactName     string
	ContactRole     string
	ContactEmail    string
	ContactMobile   string
	Notes           string
	Offerings       []string
	DurationSeconds int
	CallbackID      *uuid.UUID
	AppointmentID   *uuid.UUID
	CreatedAt       time.Time
}

const attemptColumns = `id, establishment_id, caller_id, outcome, contact_name, contact_role,
	contact_email, contact_mobile, notes, offerings, duration_seconds, callback_id, appointment_id, created_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanAttempt(row pgx.Row) (CallAttempt, error) {
	var a CallAttempt
	err := row.Scan(
		&a.ID, &a.EstablishmentID, &a.CallerID, &a.Outcome, &a.ContactName, &a.ContactRole,
		&a.ContactEmail, &a.ContactMobile, &a.Notes, &a.Offerings, &a.DurationSeconds,
		&a.CallbackID, &a.AppointmentID, &a.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return CallAttempt{}, ErrNotFound
	}
	return a, err
}

type CreateParams struct {
	EstablishmentID uuid.UUID
	CallerID        uuid.UUID
	Outcome         string
	ContactName     string
	ContactRole     string
	ContactEmail    string
	ContactMobile   string
	Notes           string
	Offerings       []string
	DurationSeconds int
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (CallAttempt, error) {
	offerings := params.Offerings
	if offerings == nil {
		offerings = []string{}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO call_attempts (
			establishment_id, caller_id, outcome, contact_name, contact_role,
			contact_email, contact_mobile, notes, offerings, duration_seconds
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+attemptColumns,
		params.EstablishmentID, params.CallerID, params.Outcome, params.ContactName, params.ContactRole,
		params.ContactEmail, params.ContactMobile, params.Notes, offerings, params.DurationSeconds,
	)
	return scanAttempt(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (CallAttempt, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+attemptColumns+` FROM call_attempts WHERE id = $1`, id)
	return scanAttempt(row)
}

func (r *Repository) ListByEstablishment(ctx context.Context, establishmentID uuid.UUID) ([]CallAttempt, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+attemptColumns+` FROM call_attempts
		WHERE establishment_id = $1
		ORDER BY created_at DESC
	`, establishmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := make([]CallAttempt, 0)
	for rows.Next() {
		var a CallAttempt
		if err := rows.Scan(
			&a.ID, &a.EstablishmentID, &a.CallerID, &a.Outcome, &a.ContactName, &a.ContactRole,
			&a.ContactEmail, &a.ContactMobile, &a.Notes, &a.Offerings, &a.DurationSeconds,
			&a.CallbackID, &a.AppointmentID, &a.CreatedAt,
		); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// LinkCallback stores the id of the callback spawned by this attempt.
func (r *Repository) LinkCallback(ctx context.Context, attemptID, callbackID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE call_attempts SET callback_id = $2 WHERE id = $1`, attemptID, callbackID)
	return err
}

// LinkAppointment stores the id of the appointment spawned by this attempt.
func (r *Repository) LinkAppointment(ctx context.Context, attemptID, appointmentID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `UPDATE call_attempts SET appointment_id = $2 WHERE id = $1`, attemptID, appointmentID)
	return err
}

type CorrectionParams struct {
	ContactName   *string
	ContactRole   *string
	ContactEmail  *string
	ContactMobile *string
	Notes         *string
}

// Correct applies an operator correction to the captured text fields. The
// outcome itself is never rewritten; a wrong outcome is handled by deleting
// the attempt and recording a new one.
func (r *Repository) Correct(ctx context.Context, id uuid.UUID, params CorrectionParams) (CallAttempt, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE call_attempts
		SET contact_name = COALESCE($2, contact_name),
			contact_role = COALESCE($3, contact_role),
			contact_email = COALESCE($4, contact_email),
			contact_mobile = COALESCE($5, contact_mobile),
			notes = COALESCE($6, notes)
		WHERE id = $1
		RETURNING `+attemptColumns,
		id, params.ContactName, params.ContactRole, params.ContactEmail, params.ContactMobile, params.Notes,
	)
	return scanAttempt(row)
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `DELETE FROM call_attempts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// LastCallerForGroup is a derived projection: the caller who most recently
// logged an attempt against any member of the group. Recomputed per read,
// never cached.
func (r *Repository) LastCallerForGroup(ctx context.Context, groupID string) (uuid.UUID, time.Time, error) {
	var callerID uuid.UUID
	var at time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT ca.caller_id, ca.created_at
		FROM call_attempts ca
		JOIN establishments e ON e.id = ca.establishment_id
		WHERE e.group_id = $1
		ORDER BY ca.created_at DESC
		LIMIT 1
	`, groupID).Scan(&callerID, &at)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, time.Time{}, ErrNotFound
	}
	return callerID, at, err
}
