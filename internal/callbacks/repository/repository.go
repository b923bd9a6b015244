package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var ErrNotFound = errors.New("callback not found")

// Callback is one scheduled follow-up. A partial unique index on
// (establishment_id) WHERE NOT resolved enforces the at-most-one-unresolved
// invariant at the storage layer; Create works inside a transaction so the
// supersede never races it.
type Callback struct {
	ID              uuid.UUID
	EstablishmentID uuid.UUID
	DueDate         time.Time
	DueTime         string
	Reason          string
	ContactName     string
	ContactRole     string
	ContactEmail    string
	ContactMobile   string
	Resolved        bool
	ResolvedAt      *time.Time
	SupersededBy    *uuid.UUID
	CreatedAt       time.Time
}

const callbackColumns = `id, establishment_id, due_date, due_time, reason, contact_name, contact_role,
	contact_email, contact_mobile, resolved, resolved_at, superseded_by, created_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanCallback(row pgx.Row) (Callback, error) {
	var cb Callback
	err := row.Scan(
		&cb.ID, &cb.EstablishmentID, &cb.DueDate, &cb.DueTime, &cb.Reason, &cb.ContactName, &cb.ContactRole,
		&cb.ContactEmail, &cb.ContactMobile, &cb.Resolved, &cb.ResolvedAt, &cb.SupersededBy, &cb.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Callback{}, ErrNotFound
	}
	return cb, err
}

type CreateParams struct {
	EstablishmentID uuid.UUID
	DueDate         time.Time
	DueTime         string
	Reason          string
	ContactName     string
	ContactRole     string
	ContactEmail    string
	ContactMobile   string
}

// Create schedules a follow-up, superseding any unresolved one for the same
// establishment in the same transaction. The prior callback id, if any, is
// returned alongside the new record.
func (r *Repository) Create(ctx context.Context, params CreateParams) (Callback, *uuid.UUID, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return Callback{}, nil, err
	}
	defer tx.Rollback(ctx)

	var supersededID *uuid.UUID
	var prior uuid.UUID
	err = tx.QueryRow(ctx, `
		UPDATE callbacks
		SET resolved = true, resolved_at = now()
		WHERE establishment_id = $1 AND NOT resolved
		RETURNING id
	`, params.EstablishmentID).Scan(&prior)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return Callback{}, nil, err
	}
	if err == nil {
		supersededID = &prior
	}

	created, err := scanCallback(tx.QueryRow(ctx, `
		INSERT INTO callbacks (
			establishment_id, due_date, due_time, reason,
			contact_name, contact_role, contact_email, contact_mobile
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING `+callbackColumns,
		params.EstablishmentID, params.DueDate, params.DueTime, params.Reason,
		params.ContactName, params.ContactRole, params.ContactEmail, params.ContactMobile,
	))
	if err != nil {
		return Callback{}, nil, err
	}

	if supersededID != nil {
		if _, err := tx.Exec(ctx, `UPDATE callbacks SET superseded_by = $2 WHERE id = $1`, *supersededID, created.ID); err != nil {
			return Callback{}, nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return Callback{}, nil, err
	}

	return created, supersededID, nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Callback, error) {
	return scanCallback(r.pool.QueryRow(ctx, `SELECT `+callbackColumns+` FROM callbacks WHERE id = $1`, id))
}

// GetUnresolved returns the pending callback for an establishment, if any.
func (r *Repository) GetUnresolved(ctx context.Context, establishmentID uuid.UUID) (Callback, error) {
	return scanCallback(r.pool.QueryRow(ctx, `
		SELECT `+callbackColumns+` FROM callbacks
		WHERE establishment_id = $1 AND NOT resolved
	`, establishmentID))
}

func (r *Repository) queryList(ctx context.Context, query string, args ...interface{}) ([]Callback, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	callbacks := make([]Callback, 0)
	for rows.Next() {
		var cb Callback
		if err := rows.Scan(
			&cb.ID, &cb.EstablishmentID, &cb.DueDate, &cb.DueTime, &cb.Reason, &cb.ContactName, &cb.ContactRole,
			&cb.ContactEmail, &cb.ContactMobile, &cb.Resolved, &cb.ResolvedAt, &cb.SupersededBy, &cb.CreatedAt,
		); err != nil {
			return nil, err
		}
		callbacks = append(callbacks, cb)
	}
	return callbacks, rows.Err()
}

// ListDue returns unresolved callbacks with due date on or before asOf,
// oldest first then by wall-clock time. Overdue entries never silently drop
// off the list.
func (r *Repository) ListDue(ctx context.Context, asOf time.Time) ([]Callback, error) {
	return r.queryList(ctx, `
		SELECT `+callbackColumns+` FROM callbacks
		WHERE NOT resolved AND due_date <= $1
		ORDER BY due_date ASC, due_time ASC
	`, asOf)
}

func (r *Repository) ListByEstablishment(ctx context.Context, establishmentID uuid.UUID) ([]Callback, error) {
	return r.queryList(ctx, `
		SELECT `+callbackColumns+` FROM callbacks
		WHERE establishment_id = $1
		ORDER BY created_at DESC
	`, establishmentID)
}

func (r *Repository) Resolve(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE callbacks SET resolved = true, resolved_at = now()
		WHERE id = $1 AND NOT resolved
	`, id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// ResolveForEstablishment resolves whatever is pending for the
// establishment. Resolving nothing is fine.
func (r *Repository) ResolveForEstablishment(ctx context.Context, establishmentID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE callbacks SET resolved = true, resolved_at = now()
		WHERE establishment_id = $1 AND NOT resolved
	`, establishmentID)
	return err
}
