// Package booking records booking requests and lists them per user.
package booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Repository persists bookings. Create assigns the id and creation time.
type Repository interface {
	Create(ctx context.Context, b Booking) (Booking, error)
	Get(ctx context.Context, id string) (Booking, error)
	ListByUser(ctx context.Context, userID string, statuses []Status) ([]Booking, error)
	// Transition moves id to status when its current status is one of from.
	Transition(ctx context.Context, id string, from []Status, to Status) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed booking repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const bookingColumns = `id::text, user_id::text, service_id::text, COALESCE(maid_id::text, ''), date, time, duration,
        address, status, COALESCE(coupon_code, ''), total_price::text, created_at`

// Create inserts a booking.
func (r *PostgresRepository) Create(ctx context.Context, b Booking) (Booking, error) {
	row := r.db.QueryRow(ctx, `INSERT INTO bookings (user_id, service_id, maid_id, date, time, duration, address, status, coupon_code, total_price)
        VALUES ($1::uuid, $2::uuid, NULLIF($3, '')::uuid, $4, $5, $6, $7, $8, NULLIF($9, ''), $10::numeric)
        RETURNING `+bookingColumns,
		b.UserID, b.ServiceID, b.MaidID, b.Date, b.Time, b.Duration, b.Address, string(b.Status), b.CouponCode, b.TotalPrice.String())
	created, err := scanBooking(row)
	if err != nil {
		return Booking{}, fmt.Errorf("insert booking: %w", err)
	}
	return created, nil
}

// Get fetches a booking by id.
func (r *PostgresRepository) Get(ctx context.Context, id string) (Booking, error) {
	b, err := scanBooking(r.db.QueryRow(ctx, `SELECT `+bookingColumns+` FROM bookings WHERE id::text = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Booking{}, ErrNotFound
	}
	if err != nil {
		return Booking{}, fmt.Errorf("query booking: %w", err)
	}
	return b, nil
}

// ListByUser returns the user's bookings in statuses, newest first.
func (r *PostgresRepository) ListByUser(ctx context.Context, userID string, statuses []Status) ([]Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+` FROM bookings
        WHERE user_id::text = $1 AND status = ANY($2) ORDER BY created_at DESC`, userID, statusStrings(statuses))
	if err != nil {
		return nil, fmt.Errorf("query bookings: %w", err)
	}
	defer rows.Close()

	var out []Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// Transition updates the status only from one of the allowed statuses.
func (r *PostgresRepository) Transition(ctx context.Context, id string, from []Status, to Status) error {
	cmd, err := r.db.Exec(ctx, `UPDATE bookings SET status = $2 WHERE id::text = $1 AND status = ANY($3)`, id, string(to), statusStrings(from))
	if err != nil {
		return fmt.Errorf("update booking status: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotCancellable
	}
	return nil
}

func statusStrings(statuses []Status) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}

func scanBooking(row pgx.Row) (Booking, error) {
	var (
		b      Booking
		status string
		total  string
	)
	if err := row.Scan(&b.ID, &b.UserID, &b.ServiceID, &b.MaidID, &b.Date, &b.Time, &b.Duration, &b.Address, &status, &b.CouponCode, &total, &b.CreatedAt); err != nil {
		return Booking{}, err
	}
	price, err := decimal.NewFromString(total)
	if err != nil {
		return Booking{}, fmt.Errorf("parse total price: %w", err)
	}
	b.Status = Status(status)
	b.TotalPrice = price
	b.CreatedAt = b.CreatedAt.UTC()
	return b, nil
}
