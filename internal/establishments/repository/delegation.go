package repository

import (
	"context"
	"errors"
	"fmt"

	"prospect_backend/internal/establishments/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// SetDelegate points an establishment at its group primary and parks it under
// Redirected. Re-delegating to the same primary is a no-op; the establishment
// still exists, so no error is returned. A Do_Not_Call row is never touched:
// delegation routes contact, and a blocked establishment has none to route.
func (r *Repository) SetDelegate(ctx context.Context, id, primaryID uuid.UUID, note string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE establishments
		SET delegate_id = $2, status = $3, contacted = true, notes = $4, updated_at = now()
		WHERE id = $1 AND status <> $5 AND delegate_id IS DISTINCT FROM $2
	`, id, primaryID, domain.StatusRedirected, note, domain.StatusDoNotCall)
	if err != nil {
		return err
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	var status domain.Status
	err = r.pool.QueryRow(ctx, `SELECT status FROM establishments WHERE id = $1`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if status == domain.StatusDoNotCall {
		return ErrDoNotCall
	}
	return nil
}

// ClearDelegate removes the delegation pointer and returns the establishment
// to the active queue. A Do_Not_Call row keeps its status; undelegating it
// must not resurrect it into To_Call.
func (r *Repository) ClearDelegate(ctx context.Context, id uuid.UUID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE establishments
		SET delegate_id = NULL, status = $2, contacted = false, updated_at = now()
		WHERE id = $1 AND status <> $3 AND delegate_id IS NOT NULL
	`, id, domain.StatusToCall, domain.StatusDoNotCall)
	if err != nil {
		return err
	}
	if result.RowsAffected() > 0 {
		return nil
	}

	var status domain.Status
	err = r.pool.QueryRow(ctx, `SELECT status FROM establishments WHERE id = $1 AND delegate_id IS NOT NULL`, id).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if status == domain.StatusDoNotCall {
		return ErrDoNotCall
	}
	return ErrNotFound
}

// CountDelegatedTo returns how many establishments currently delegate to the
// given primary. Used to keep delegation one hop deep: a row that others
// point at cannot itself be delegated.
func (r *Repository) CountDelegatedTo(ctx context.Context, primaryID uuid.UUID) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx, `
		SELECT COUNT(*) FROM establishments WHERE delegate_id = $1
	`, primaryID).Scan(&count)
	return count, err
}

// ReassignGroupPrimary makes newPrimaryID the single delegation target of its
// legal group in one transaction: every other member gets the delegation
// pointer and Redirected, the new primary loses any pointer of its own and
// returns to To_Call unless it already sits in a terminal status. Do_Not_Call
// members are skipped on both sides. Returns the number of redirected
// siblings.
func (r *Repository) ReassignGroupPrimary(ctx context.Context, groupID string, newPrimaryID uuid.UUID, note string) (int64, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var primaryGroup *string
	err = tx.QueryRow(ctx, `
		SELECT group_id FROM establishments WHERE id = $1 FOR UPDATE
	`, newPrimaryID).Scan(&primaryGroup)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrNotFound
	}
	if err != nil {
		return 0, err
	}
	if primaryGroup == nil || *primaryGroup != groupID {
		return 0, fmt.Errorf("establishment %s is not a member of group %s", newPrimaryID, groupID)
	}

	result, err := tx.Exec(ctx, `
		UPDATE establishments
		SET delegate_id = $2, status = $3, contacted = true, notes = $4, updated_at = now()
		WHERE group_id = $1 AND id <> $2 AND status <> $5
	`, groupID, newPrimaryID, domain.StatusRedirected, note, domain.StatusDoNotCall)
	if err != nil {
		return 0, err
	}

	// A primary that was itself delegated, or never reached, re-enters the
	// active queue. One that already holds a contact outcome keeps it, and a
	// Do_Not_Call primary stays blocked.
	_, err = tx.Exec(ctx, `
		UPDATE establishments
		SET status = CASE WHEN delegate_id IS NOT NULL OR contacted = false THEN $2 ELSE status END,
			delegate_id = NULL,
			updated_at = now()
		WHERE id = $1 AND status <> $3
	`, newPrimaryID, domain.StatusToCall, domain.StatusDoNotCall)
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return result.RowsAffected(), nil
}
