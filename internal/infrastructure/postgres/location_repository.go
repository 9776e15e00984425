package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/bizsuite/ledger-api/internal/domain"
	"github.com/bizsuite/ledger-api/internal/domain/entity"
	"github.com/bizsuite/ledger-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación de LocationRepository sobre la tabla locations.
type LocationRepo struct {
	q Querier
}

// NewLocationRepository construye el adaptador. Pasar pool o tx (Querier).
func NewLocationRepository(q Querier) *LocationRepo {
	return &LocationRepo{q: q}
}

const locationColumns = `id, organization_id, code, name, address, is_headquarters, is_active, created_at, updated_at`

func (r *LocationRepo) Create(ctx context.Context, l *entity.Location) error {
	if l.ID == "" {
		l.ID = uuid.New().String()
	}
	query := `
		INSERT INTO locations (` + locationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.q.Exec(ctx, query,
		l.ID, l.OrganizationID, l.Code, l.Name, nullIfEmpty(l.Address),
		l.IsHeadquarters, l.IsActive, l.CreatedAt, l.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("location code %s: %w", l.Code, domain.ErrDuplicate)
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1`
	return r.one(ctx, query, id)
}

func (r *LocationRepo) GetByCode(ctx context.Context, organizationID, code string) (*entity.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE organization_id = $1 AND code = $2`
	return r.one(ctx, query, organizationID, code)
}

func (r *LocationRepo) ListHeadquarters(ctx context.Context, organizationID string) ([]*entity.Location, error) {
	query := `
		SELECT ` + locationColumns + `
		FROM locations
		WHERE organization_id = $1 AND is_headquarters
		ORDER BY created_at`
	return r.many(ctx, query, organizationID)
}

func (r *LocationRepo) Update(ctx context.Context, l *entity.Location) error {
	query := `
		UPDATE locations
		SET name = $2, address = $3, is_headquarters = $4, is_active = $5, updated_at = $6
		WHERE id = $1`
	tag, err := r.q.Exec(ctx, query, l.ID, l.Name, nullIfEmpty(l.Address), l.IsHeadquarters, l.IsActive, l.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update location: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *LocationRepo) ListByOrganization(ctx context.Context, organizationID string, activeOnly bool, limit, offset int) ([]*entity.Location, error) {
	lim, off := limitClause(limit, offset)
	query := `
		SELECT ` + locationColumns + `
		FROM locations
		WHERE organization_id = $1 AND (NOT $2 OR is_active)
		ORDER BY code
		LIMIT $3 OFFSET $4`
	return r.many(ctx, query, organizationID, activeOnly, lim, off)
}

func (r *LocationRepo) one(ctx context.Context, query string, args ...any) (*entity.Location, error) {
	l, err := scanLocation(r.q.QueryRow(ctx, query, args...))
	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("get location: %w", err)
	}
	return l, nil
}

func (r *LocationRepo) many(ctx context.Context, query string, args ...any) ([]*entity.Location, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	defer rows.Close()
	var list []*entity.Location
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("scan location: %w", err)
		}
		list = append(list, l)
	}
	return list, rows.Err()
}

func scanLocation(row pgx.Row) (*entity.Location, error) {
	var l entity.Location
	var address *string
	if err := row.Scan(
		&l.ID, &l.OrganizationID, &l.Code, &l.Name, &address,
		&l.IsHeadquarters, &l.IsActive, &l.CreatedAt, &l.UpdatedAt,
	); err != nil {
		return nil, err
	}
	l.Address = stringOrEmpty(address)
	return &l, nil
}
