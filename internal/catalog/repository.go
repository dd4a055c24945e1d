package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository reads the catalog.
type Repository interface {
	ListServices(ctx context.Context, filter ServiceFilter) ([]Service, error)
	GetService(ctx context.Context, id string) (Service, error)
	ListMaids(ctx context.Context, filter MaidFilter) ([]Maid, error)
	GetMaid(ctx context.Context, id string) (Maid, error)
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed catalog repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const (
	serviceColumns = `id::text, name, description, price::text, image, category, duration, is_active`
	maidColumns    = `id::text, name, image, rating::float8, reviews_count, skills, price_per_hour::text, verified, is_active`
)

// ListServices returns services matching filter ordered by name.
func (r *PostgresRepository) ListServices(ctx context.Context, filter ServiceFilter) ([]Service, error) {
	var (
		where []string
		args  []any
	)
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.ActiveOnly {
		where = append(where, "is_active")
	}

	query := `SELECT ` + serviceColumns + ` FROM services`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query services: %w", err)
	}
	defer rows.Close()

	var out []Service
	for rows.Next() {
		s, err := scanService(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GetService fetches a service by id.
func (r *PostgresRepository) GetService(ctx context.Context, id string) (Service, error) {
	s, err := scanService(r.db.QueryRow(ctx, `SELECT `+serviceColumns+` FROM services WHERE id::text = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Service{}, ErrServiceNotFound
	}
	return s, err
}

// ListMaids returns maids matching filter ordered by rating descending.
func (r *PostgresRepository) ListMaids(ctx context.Context, filter MaidFilter) ([]Maid, error) {
	var (
		where []string
		args  []any
	)
	if filter.VerifiedOnly {
		where = append(where, "verified")
	}
	if filter.ActiveOnly {
		where = append(where, "is_active")
	}
	if filter.Skill != "" {
		args = append(args, []string{filter.Skill})
		where = append(where, fmt.Sprintf("skills @> $%d::text[]", len(args)))
	}

	query := `SELECT ` + maidColumns + ` FROM maids`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY rating DESC, name`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query maids: %w", err)
	}
	defer rows.Close()

	var out []Maid
	for rows.Next() {
		m, err := scanMaid(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// GetMaid fetches a maid by id.
func (r *PostgresRepository) GetMaid(ctx context.Context, id string) (Maid, error) {
	m, err := scanMaid(r.db.QueryRow(ctx, `SELECT `+maidColumns+` FROM maids WHERE id::text = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Maid{}, ErrMaidNotFound
	}
	return m, err
}

func scanService(row pgx.Row) (Service, error) {
	var (
		s     Service
		price string
	)
	if err := row.Scan(&s.ID, &s.Name, &s.Description, &price, &s.Image, &s.Category, &s.Duration, &s.IsActive); err != nil {
		return Service{}, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return Service{}, fmt.Errorf("parse service price: %w", err)
	}
	s.Price = p
	return s, nil
}

func scanMaid(row pgx.Row) (Maid, error) {
	var (
		m     Maid
		price string
	)
	if err := row.Scan(&m.ID, &m.Name, &m.Image, &m.Rating, &m.ReviewsCount, &m.Skills, &price, &m.Verified, &m.IsActive); err != nil {
		return Maid{}, err
	}
	p, err := decimal.NewFromString(price)
	if err != nil {
		return Maid{}, fmt.Errorf("parse maid price: %w", err)
	}
	m.PricePerHour = p
	return m, nil
}
