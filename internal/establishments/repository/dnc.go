package repository

import (
	"context"
	"errors"
	"time"

	"prospect_backend/internal/establishments/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

var ErrDNCNotFound = errors.New("do-not-call entry not found")

type DNCEntry struct {
	EstablishmentID uuid.UUID
	Reason          string
	RecordedBy      uuid.UUID
	RecordedAt      time.Time
}

// RecordDoNotCall writes the register entry and flips the establishment to
// Do_Not_Call in one transaction. Re-recording refreshes the reason.
func (r *Repository) RecordDoNotCall(ctx context.Context, establishmentID uuid.UUID, reason string, recordedBy uuid.UUID) (DNCEntry, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return DNCEntry{}, err
	}
	defer tx.Rollback(ctx)

	var entry DNCEntry
	err = tx.QueryRow(ctx, `
		INSERT INTO dnc_entries (establishment_id, reason, recorded_by)
		VALUES ($1, $2, $3)
		ON CONFLICT (establishment_id) DO UPDATE
		SET reason = EXCLUDED.reason, recorded_by = EXCLUDED.recorded_by, recorded_at = now()
		RETURNING establishment_id, reason, recorded_by, recorded_at
	`, establishmentID, reason, recordedBy).Scan(&entry.EstablishmentID, &entry.Reason, &entry.RecordedBy, &entry.RecordedAt)
	if err != nil {
		return DNCEntry{}, err
	}

	result, err := tx.Exec(ctx, `
		UPDATE establishments
		SET status = $2, contacted = true, last_contacted_at = now(), updated_at = now()
		WHERE id = $1
	`, establishmentID, domain.StatusDoNotCall)
	if err != nil {
		return DNCEntry{}, err
	}
	if result.RowsAffected() == 0 {
		return DNCEntry{}, ErrNotFound
	}

	if err := tx.Commit(ctx); err != nil {
		return DNCEntry{}, err
	}

	return entry, nil
}

func (r *Repository) GetDoNotCall(ctx context.Context, establishmentID uuid.UUID) (DNCEntry, error) {
	var entry DNCEntry
	err := r.pool.QueryRow(ctx, `
		SELECT establishment_id, reason, recorded_by, recorded_at
		FROM dnc_entries WHERE establishment_id = $1
	`, establishmentID).Scan(&entry.EstablishmentID, &entry.Reason, &entry.RecordedBy, &entry.RecordedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return DNCEntry{}, ErrDNCNotFound
	}
	return entry, err
}

// RemoveDoNotCall deletes the register entry and returns the establishment to
// To_Call. Admin override only; the handler enforces the role.
func (r *Repository) RemoveDoNotCall(ctx context.Context, establishmentID uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	result, err := tx.Exec(ctx, `DELETE FROM dnc_entries WHERE establishment_id = $1`, establishmentID)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrDNCNotFound
	}

	_, err = tx.Exec(ctx, `
		UPDATE establishments
		SET status = $2, updated_at = now()
		WHERE id = $1 AND status = $3
	`, establishmentID, domain.StatusToCall, domain.StatusDoNotCall)
	if err != nil {
		return err
	}

	return tx.Commit(ctx)
}
