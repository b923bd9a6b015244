package outbox

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository persists the outbound message log in Postgres.
type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func (r *Repository) RecordSent(ctx context.Context, establishmentID uuid.UUID, recipient, template string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO outbound_messages (id, establishment_id, recipient, template, sent_at)
		VALUES ($1, $2, $3, $4, now())
	`, uuid.New(), establishmentID, recipient, template)
	return err
}

func (r *Repository) SentSince(ctx context.Context, establishmentID uuid.UUID, template string, since time.Time) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM outbound_messages
			WHERE establishment_id = $1 AND template = $2 AND sent_at >= $3
		)
	`, establishmentID, template, since).Scan(&exists)
	return exists, err
}

var _ Store = (*Repository)(nil)
