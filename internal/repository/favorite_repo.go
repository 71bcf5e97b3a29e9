package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"carrental-client/internal/model"
)

type FavoriteRepo struct {
	db *pgxpool.Pool
}

func NewFavoriteRepo(db *pgxpool.Pool) *FavoriteRepo {
	return &FavoriteRepo{db: db}
}

// Add marks a car as favorite. Adding twice is not an error.
func (r *FavoriteRepo) Add(ctx context.Context, userID, carID int64) error {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO favorites (user_id, car_id)
		SELECT $1, id FROM cars WHERE id = $2
		ON CONFLICT (user_id, car_id) DO NOTHING
	`, userID, carID)
	if err != nil {
		return fmt.Errorf("failed to add favorite: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM cars WHERE id = $1)`, carID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check car: %w", err)
		}
		if !exists {
			return ErrNotFound
		}
	}

	return nil
}

func (r *FavoriteRepo) Remove(ctx context.Context, userID, carID int64) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM favorites WHERE user_id = $1 AND car_id = $2`, userID, carID); err != nil {
		return fmt.Errorf("failed to remove favorite: %w", err)
	}
	return nil
}

// ListCars returns the user's favorite cars, most recent first
func (r *FavoriteRepo) ListCars(ctx context.Context, userID int64) ([]model.Car, error) {
	query := `
		SELECT c.id, c.brand, c.model, c.year, c.price_per_day, c.rating, c.seats,
			COALESCE(c.transmission, ''), COALESCE(c.fuel_type, ''), COALESCE(c.body_type, ''),
			c.available, COALESCE(c.image_url, '')
		FROM favorites f
		JOIN cars c ON c.id = f.car_id
		WHERE f.user_id = $1
		ORDER BY f.created_at DESC, c.id
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}
	defer rows.Close()

	cars, err := scanCars(rows)
	if err != nil {
		return nil, err
	}
	for i := range cars {
		cars[i].Favorite = true
	}
	return cars, nil
}

// IDs returns the set of favorite car ids of a user
func (r *FavoriteRepo) IDs(ctx context.Context, userID int64) (map[int64]bool, error) {
	rows, err := r.db.Query(ctx, `SELECT car_id FROM favorites WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorite ids: %w", err)
	}
	defer rows.Close()

	ids := make(map[int64]bool)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids[id] = true
	}

	return ids, rows.Err()
}
