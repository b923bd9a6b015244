package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound      = errors.New("caller not found")
	ErrTokenNotFound = errors.New("refresh token not found")
)

// Caller is an operator account. Base coordinates and the default radius
// drive the territory filter of the queue builder.
type Caller struct {
	ID              uuid.UUID
	Email           string
	Name            string
	PasswordHash    string
	Roles           []string
	BaseLatitude    *float64
	BaseLongitude   *float64
	DefaultRadiusKm int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

const callerColumns = `id, email, name, password_hash, roles, base_latitude, base_longitude,
	default_radius_km, created_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanCaller(row pgx.Row) (Caller, error) {
	var c Caller
	err := row.Scan(
		&c.ID, &c.Email, &c.Name, &c.PasswordHash, &c.Roles, &c.BaseLatitude, &c.BaseLongitude,
		&c.DefaultRadiusKm, &c.CreatedAt, &c.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return Caller{}, ErrNotFound
	}
	return c, err
}

type CreateParams struct {
	Email           string
	Name            string
	PasswordHash    string
	Roles           []string
	BaseLatitude    *float64
	BaseLongitude   *float64
	DefaultRadiusKm int
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (Caller, error) {
	roles := params.Roles
	if len(roles) == 0 {
		roles = []string{"caller"}
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO callers (email, name, password_hash, roles, base_latitude, base_longitude, default_radius_km)
		VALUES (lower($1), $2, $3, $4, $5, $6, $7)
		RETURNING `+callerColumns,
		params.Email, params.Name, params.PasswordHash, roles,
		params.BaseLatitude, params.BaseLongitude, params.DefaultRadiusKm,
	)
	return scanCaller(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (Caller, error) {
	return scanCaller(r.pool.QueryRow(ctx, `SELECT `+callerColumns+` FROM callers WHERE id = $1`, id))
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (Caller, error) {
	return scanCaller(r.pool.QueryRow(ctx, `SELECT `+callerColumns+` FROM callers WHERE email = lower($1)`, email))
}

func (r *Repository) List(ctx context.Context) ([]Caller, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+callerColumns+` FROM callers ORDER BY created_at ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	callers := make([]Caller, 0)
	for rows.Next() {
		var c Caller
		if err := rows.Scan(
			&c.ID, &c.Email, &c.Name, &c.PasswordHash, &c.Roles, &c.BaseLatitude, &c.BaseLongitude,
			&c.DefaultRadiusKm, &c.CreatedAt, &c.UpdatedAt,
		); err != nil {
			return nil, err
		}
		callers = append(callers, c)
	}
	return callers, rows.Err()
}

// UpdateTerritory sets the caller's home base and default radius.
func (r *Repository) UpdateTerritory(ctx context.Context, id uuid.UUID, lat, lon *float64, radiusKm int) (Caller, error) {
	return scanCaller(r.pool.QueryRow(ctx, `
		UPDATE callers
		SET base_latitude = $2, base_longitude = $3, default_radius_km = $4, updated_at = now()
		WHERE id = $1
		RETURNING `+callerColumns, id, lat, lon, radiusKm))
}

func (r *Repository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE callers SET password_hash = $2, updated_at = now() WHERE id = $1
	`, id, passwordHash)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// Refresh token storage. Only the SHA-256 hash of a token is persisted.

func (r *Repository) CreateRefreshToken(ctx context.Context, callerID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO refresh_tokens (caller_id, token_hash, expires_at)
		VALUES ($1, $2, $3)
	`, callerID, tokenHash, expiresAt)
	return err
}

func (r *Repository) GetRefreshToken(ctx context.Context, tokenHash string) (uuid.UUID, time.Time, error) {
	var callerID uuid.UUID
	var expiresAt time.Time
	err := r.pool.QueryRow(ctx, `
		SELECT caller_id, expires_at FROM refresh_tokens WHERE token_hash = $1
	`, tokenHash).Scan(&callerID, &expiresAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return uuid.Nil, time.Time{}, ErrTokenNotFound
	}
	return callerID, expiresAt, err
}

func (r *Repository) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE token_hash = $1`, tokenHash)
	return err
}

func (r *Repository) RevokeAllRefreshTokens(ctx context.Context, callerID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM refresh_tokens WHERE caller_id = $1`, callerID)
	return err
}
