package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

// Repository persists profiles. Create assigns the id.
type Repository interface {
	Create(ctx context.Context, profile Profile) (Profile, error)
	FindByID(ctx context.Context, id string) (Profile, error)
	FindByEmail(ctx context.Context, email string) (Profile, error)
	FindByPhone(ctx context.Context, phone string) (Profile, error)
	Update(ctx context.Context, profile Profile) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed profile repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const profileColumns = `id::text, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(address, ''),
        COALESCE(city, ''), COALESCE(pincode, ''), COALESCE(avatar_url, ''), created_at, updated_at`

// Create inserts profile and returns it with the store-assigned id.
func (r *PostgresRepository) Create(ctx context.Context, profile Profile) (Profile, error) {
	now := time.Now().UTC()
	row := r.db.QueryRow(ctx, `INSERT INTO profiles (name, email, phone, avatar_url, created_at, updated_at)
        VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, $5)
        RETURNING `+profileColumns,
		profile.Name, profile.Email, profile.Phone, profile.AvatarURL, now)
	created, err := scanProfile(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return Profile{}, ErrProfileExists
		}
		return Profile{}, fmt.Errorf("insert profile: %w", err)
	}
	return created, nil
}

// FindByID fetches a profile by id.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (Profile, error) {
	return r.findOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE id::text = $1`, id)
}

// FindByEmail fetches a profile by email.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (Profile, error) {
	return r.findOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE email = $1`, email)
}

// FindByPhone fetches a profile by normalized phone number.
func (r *PostgresRepository) FindByPhone(ctx context.Context, phone string) (Profile, error) {
	return r.findOne(ctx, `SELECT `+profileColumns+` FROM profiles WHERE phone = $1`, phone)
}

// Update stores every editable field of profile.
func (r *PostgresRepository) Update(ctx context.Context, profile Profile) error {
	cmd, err := r.db.Exec(ctx, `UPDATE profiles SET name = $2, email = NULLIF($3, ''), phone = NULLIF($4, ''),
        address = NULLIF($5, ''), city = NULLIF($6, ''), pincode = NULLIF($7, ''), avatar_url = NULLIF($8, ''),
        updated_at = $9 WHERE id::text = $1`,
		profile.ID, profile.Name, profile.Email, profile.Phone, profile.Address, profile.City,
		profile.Pincode, profile.AvatarURL, profile.UpdatedAt.UTC())
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrProfileExists
		}
		return fmt.Errorf("update profile: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrProfileNotFound
	}
	return nil
}

func (r *PostgresRepository) findOne(ctx context.Context, query string, arg string) (Profile, error) {
	profile, err := scanProfile(r.db.QueryRow(ctx, query, arg))
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, ErrProfileNotFound
	}
	if err != nil {
		return Profile{}, fmt.Errorf("query profile: %w", err)
	}
	return profile, nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var p Profile
	if err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.Address, &p.City, &p.Pincode, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Profile{}, err
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}
