package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"prospect_backend/internal/establishments/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound  = errors.New("establishment not found")
	ErrDoNotCall = errors.New("establishment is on the do-not-call register")
)

const establishmentColumns = `id, group_id, registration_id, name, address_street, address_zip_code, address_city,
	latitude, longitude, phone, email, website_domain, workforce_bracket, legal_form,
	quality_score, status, delegate_id, contacted, notes, created_at, last_contacted_at, updated_at`

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

func scanEstablishment(row pgx.Row) (domain.Establishment, error) {
	var e domain.Establishment
	err := row.Scan(
		&e.ID, &e.GroupID, &e.RegistrationID, &e.Name, &e.AddressStreet, &e.AddressZipCode, &e.AddressCity,
		&e.Latitude, &e.Longitude, &e.Phone, &e.Email, &e.WebsiteDomain, &e.WorkforceBracket, &e.LegalForm,
		&e.QualityScore, &e.Status, &e.DelegateID, &e.Contacted, &e.Notes, &e.CreatedAt, &e.LastContactedAt, &e.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Establishment{}, ErrNotFound
	}
	return e, err
}

type CreateParams struct {
	GroupID          *string
	RegistrationID   string
	Name             string
	AddressStreet    string
	AddressZipCode   string
	AddressCity      string
	Latitude         *float64
	Longitude        *float64
	Phone            string
	Email            string
	WebsiteDomain    string
	WorkforceBracket string
	LegalForm        string
	QualityScore     int
	Notes            string
}

func (r *Repository) Create(ctx context.Context, params CreateParams) (domain.Establishment, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		INSERT INTO establishments (
			group_id, registration_id, name, address_street, address_zip_code, address_city,
			latitude, longitude, phone, email, website_domain, workforce_bracket, legal_form,
			quality_score, status, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING %s
	`, establishmentColumns),
		params.GroupID, params.RegistrationID, params.Name, params.AddressStreet, params.AddressZipCode, params.AddressCity,
		params.Latitude, params.Longitude, params.Phone, params.Email, params.WebsiteDomain, params.WorkforceBracket,
		params.LegalForm, params.QualityScore, domain.StatusToCall, params.Notes,
	)
	return scanEstablishment(row)
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (domain.Establishment, error) {
	row := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT %s FROM establishments WHERE id = $1
	`, establishmentColumns), id)
	return scanEstablishment(row)
}

type UpdateParams struct {
	Name             *string
	AddressStreet    *string
	AddressZipCode   *string
	AddressCity      *string
	Latitude         *float64
	Longitude        *float64
	Phone            *string
	Email            *string
	WebsiteDomain    *string
	WorkforceBracket *string
	LegalForm        *string
	QualityScore     *int
	Notes            *string
}

func (r *Repository) Update(ctx context.Context, id uuid.UUID, params UpdateParams) (domain.Establishment, error) {
	setClauses := []string{}
	args := []interface{}{}
	argIdx := 1

	fields := []struct {
		enabled bool
		column  string
		value   interface{}
	}{
		{params.Name != nil, "name", deref(params.Name)},
		{params.AddressStreet != nil, "address_street", deref(params.AddressStreet)},
		{params.AddressZipCode != nil, "address_zip_code", deref(params.AddressZipCode)},
		{params.AddressCity != nil, "address_city", deref(params.AddressCity)},
		{params.Latitude != nil, "latitude", params.Latitude},
		{params.Longitude != nil, "longitude", params.Longitude},
		{params.Phone != nil, "phone", deref(params.Phone)},
		{params.Email != nil, "email", deref(params.Email)},
		{params.WebsiteDomain != nil, "website_domain", deref(params.WebsiteDomain)},
		{params.WorkforceBracket != nil, "workforce_bracket", deref(params.WorkforceBracket)},
		{params.LegalForm != nil, "legal_form", deref(params.LegalForm)},
		{params.QualityScore != nil, "quality_score", params.QualityScore},
		{params.Notes != nil, "notes", deref(params.Notes)},
	}

	for _, field := range fields {
		if !field.enabled {
			continue
		}
		setClauses = append(setClauses, fmt.Sprintf("%s = $%d", field.column, argIdx))
		args = append(args, field.value)
		argIdx++
	}

	if len(setClauses) == 0 {
		return r.GetByID(ctx, id)
	}

	setClauses = append(setClauses, "updated_at = now()")
	args = append(args, id)

	query := fmt.Sprintf(`
		UPDATE establishments SET %s
		WHERE id = $%d
		RETURNING %s
	`, strings.Join(setClauses, ", "), argIdx, establishmentColumns)

	return scanEstablishment(r.pool.QueryRow(ctx, query, args...))
}

func deref(value *string) string {
	if value == nil {
		return ""
	}
	return *value
}

// SetStatus records a contact-status change. The call outcome state machine is
// the sole writer of establishment status outside of delegation operations.
func (r *Repository) SetStatus(ctx context.Context, id uuid.UUID, status domain.Status, contacted bool) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE establishments
		SET status = $2, contacted = $3,
			last_contacted_at = CASE WHEN $3 THEN now() ELSE last_contacted_at END,
			updated_at = now()
		WHERE id = $1
	`, id, status, contacted)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdatePhone overwrites the phone number of a single establishment and puts
// it back in the active queue.
func (r *Repository) UpdatePhone(ctx context.Context, id uuid.UUID, phone string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE establishments
		SET phone = $2, status = $3, updated_at = now()
		WHERE id = $1
	`, id, phone, domain.StatusToCall)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// UpdateGroupPhone overwrites the phone number of every establishment sharing
// the group id and resets each to To_Call so they re-enter the queue.
// Do_Not_Call members are left untouched; a delegated member gets the new
// number but keeps Redirected and its delegation pointer. Returns the number
// of affected rows.
func (r *Repository) UpdateGroupPhone(ctx context.Context, groupID, phone string) (int64, error) {
	result, err := r.pool.Exec(ctx, `
		UPDATE establishments
		SET phone = $2,
			status = CASE WHEN delegate_id IS NULL THEN $3 ELSE status END,
			updated_at = now()
		WHERE group_id = $1 AND status <> $4
	`, groupID, phone, domain.StatusToCall, domain.StatusDoNotCall)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected(), nil
}

func (r *Repository) queryList(ctx context.Context, query string, args ...interface{}) ([]domain.Establishment, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]domain.Establishment, 0)
	for rows.Next() {
		var e domain.Establishment
		if err := rows.Scan(
			&e.ID, &e.GroupID, &e.RegistrationID, &e.Name, &e.AddressStreet, &e.AddressZipCode, &e.AddressCity,
			&e.Latitude, &e.Longitude, &e.Phone, &e.Email, &e.WebsiteDomain, &e.WorkforceBracket, &e.LegalForm,
			&e.QualityScore, &e.Status, &e.DelegateID, &e.Contacted, &e.Notes, &e.CreatedAt, &e.LastContactedAt, &e.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, e)
	}

	if rows.Err() != nil {
		return nil, rows.Err()
	}

	return items, nil
}

// ListByGroup returns every member of a legal group.
func (r *Repository) ListByGroup(ctx context.Context, groupID string) ([]domain.Establishment, error) {
	return r.queryList(ctx, fmt.Sprintf(`
		SELECT %s FROM establishments WHERE group_id = $1 ORDER BY created_at ASC
	`, establishmentColumns), groupID)
}

// ListByPhone returns establishments with the given phone, excluding one id.
func (r *Repository) ListByPhone(ctx context.Context, phone string, excludeID uuid.UUID) ([]domain.Establishment, error) {
	return r.queryList(ctx, fmt.Sprintf(`
		SELECT %s FROM establishments WHERE phone = $1 AND phone <> '' AND id <> $2
	`, establishmentColumns), phone, excludeID)
}

// ListByEmail returns establishments with the given email, excluding one id.
func (r *Repository) ListByEmail(ctx context.Context, email string, excludeID uuid.UUID) ([]domain.Establishment, error) {
	return r.queryList(ctx, fmt.Sprintf(`
		SELECT %s FROM establishments WHERE lower(email) = lower($1) AND email <> '' AND id <> $2
	`, establishmentColumns), email, excludeID)
}

// ListByDomain returns establishments whose normalized website domain matches,
// excluding one id. Callers normalize before querying.
func (r *Repository) ListByDomain(ctx context.Context, websiteDomain string, excludeID uuid.UUID) ([]domain.Establishment, error) {
	return r.queryList(ctx, fmt.Sprintf(`
		SELECT %s FROM establishments WHERE lower(website_domain) = lower($1) AND website_domain <> '' AND id <> $2
	`, establishmentColumns), websiteDomain, excludeID)
}

type ListParams struct {
	Statuses         []domain.Status
	DelegatedOnly    bool
	IncludeDelegated bool
	LegalForm        *string
	GroupID          *string
	Search           string
	Limit            int
	Offset           int
}

// List returns establishments matching the attribute filters. Delegated rows
// are excluded unless the params ask for them explicitly.
func (r *Repository) List(ctx context.Context, params ListParams) ([]domain.Establishment, int, error) {
	whereClauses := []string{"1=1"}
	args := []interface{}{}
	argIdx := 1

	if len(params.Statuses) > 0 {
		statuses := make([]string, len(params.Statuses))
		for i, s := range params.Statuses {
			statuses[i] = string(s)
		}
		whereClauses = append(whereClauses, fmt.Sprintf("status = ANY($%d)", argIdx))
		args = append(args, statuses)
		argIdx++
	}

	if params.DelegatedOnly {
		whereClauses = append(whereClauses, "delegate_id IS NOT NULL")
	} else if !params.IncludeDelegated {
		whereClauses = append(whereClauses, "delegate_id IS NULL")
	}

	if params.LegalForm != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("legal_form = $%d", argIdx))
		args = append(args, *params.LegalForm)
		argIdx++
	}

	if params.GroupID != nil {
		whereClauses = append(whereClauses, fmt.Sprintf("group_id = $%d", argIdx))
		args = append(args, *params.GroupID)
		argIdx++
	}

	if params.Search != "" {
		pattern := "%" + params.Search + "%"
		whereClauses = append(whereClauses, fmt.Sprintf(
			"(name ILIKE $%d OR address_city ILIKE $%d OR phone ILIKE $%d)",
			argIdx, argIdx, argIdx,
		))
		args = append(args, pattern)
		argIdx++
	}

	whereClause := strings.Join(whereClauses, " AND ")

	var total int
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM establishments WHERE %s", whereClause)
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	limitClause := ""
	if params.Limit > 0 {
		limitClause = fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIdx, argIdx+1)
		args = append(args, params.Limit, params.Offset)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM establishments
		WHERE %s
		ORDER BY quality_score DESC, created_at ASC%s
	`, establishmentColumns, whereClause, limitClause)

	items, err := r.queryList(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return items, total, nil
}
