package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carrental-client/internal/model"
)

type BookingRepo struct {
	db *pgxpool.Pool
}

func NewBookingRepo(db *pgxpool.Pool) *BookingRepo {
	return &BookingRepo{db: db}
}

// Create inserts a booking. The car row is locked for the duration of the
// overlap check so two concurrent bookings cannot both succeed.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	var carID int64
	err = tx.QueryRow(ctx, `SELECT id FROM cars WHERE id = $1 FOR UPDATE`, b.CarID).Scan(&carID)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to lock car: %w", err)
	}

	var overlapping bool
	err = tx.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM bookings
			WHERE car_id = $1
				AND status <> $2
				AND start_date < $4
				AND $3 < end_date
		)
	`, b.CarID, model.BookingCancelled, b.StartDate, b.EndDate).Scan(&overlapping)
	if err != nil {
		return fmt.Errorf("failed to check overlap: %w", err)
	}
	if overlapping {
		return ErrBookingConflict
	}

	err = tx.QueryRow(ctx, `
		INSERT INTO bookings (car_id, user_id, start_date, end_date, total_price, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at
	`, b.CarID, b.UserID, b.StartDate, b.EndDate, b.TotalPrice, b.Status).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit booking: %w", err)
	}
	return nil
}

func (r *BookingRepo) ListByUser(ctx context.Context, userID int64) ([]model.Booking, error) {
	query := `
		SELECT id, car_id, user_id, start_date, end_date, total_price, status, created_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY start_date DESC, id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bookings: %w", err)
	}
	defer rows.Close()

	bookings := []model.Booking{}
	for rows.Next() {
		var b model.Booking
		if err := rows.Scan(&b.ID, &b.CarID, &b.UserID, &b.StartDate, &b.EndDate, &b.TotalPrice, &b.Status, &b.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan booking: %w", err)
		}
		bookings = append(bookings, b)
	}

	return bookings, rows.Err()
}
