package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carrental-client/internal/matching"
	"carrental-client/internal/model"
)

var schema = []struct {
	name string
	sql  string
}{
	{"cars", `
		CREATE TABLE IF NOT EXISTS cars (
			id BIGSERIAL PRIMARY KEY,
			brand VARCHAR(100) NOT NULL,
			model VARCHAR(100) NOT NULL,
			year INTEGER NOT NULL,
			price_per_day NUMERIC(10,2) NOT NULL,
			rating NUMERIC(3,1) NOT NULL DEFAULT 0,
			seats INTEGER NOT NULL DEFAULT 5,
			transmission VARCHAR(20),
			fuel_type VARCHAR(20),
			body_type VARCHAR(30),
			available BOOLEAN NOT NULL DEFAULT TRUE,
			image_url TEXT
		)
	`},
	// folded brand and model text, see matching.Normalize
	{"cars_search_columns", `
		ALTER TABLE cars
			ADD COLUMN IF NOT EXISTS search_brand TEXT NOT NULL DEFAULT '',
			ADD COLUMN IF NOT EXISTS search_model TEXT NOT NULL DEFAULT ''
	`},
	{"cars_search_backfill", `
		UPDATE cars SET search_brand = LOWER(brand), search_model = LOWER(model)
		WHERE search_brand = '' OR search_model = ''
	`},
	{"idx_cars_brand", `CREATE INDEX IF NOT EXISTS idx_cars_brand ON cars (search_brand)`},
	{"idx_cars_rating", `CREATE INDEX IF NOT EXISTS idx_cars_rating ON cars (rating)`},
	{"users", `
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			name VARCHAR(150) NOT NULL,
			email VARCHAR(255) NOT NULL UNIQUE,
			phone VARCHAR(30),
			password_hash TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`},
	{"favorites", `
		CREATE TABLE IF NOT EXISTS favorites (
			user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			car_id BIGINT NOT NULL REFERENCES cars (id) ON DELETE CASCADE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (user_id, car_id)
		)
	`},
	{"bookings", `
		CREATE TABLE IF NOT EXISTS bookings (
			id BIGSERIAL PRIMARY KEY,
			car_id BIGINT NOT NULL REFERENCES cars (id),
			user_id BIGINT NOT NULL REFERENCES users (id) ON DELETE CASCADE,
			start_date TIMESTAMPTZ NOT NULL,
			end_date TIMESTAMPTZ NOT NULL,
			total_price NUMERIC(10,2) NOT NULL,
			status VARCHAR(20) NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CHECK (end_date > start_date)
		)
	`},
	{"idx_bookings_car", `CREATE INDEX IF NOT EXISTS idx_bookings_car ON bookings (car_id, start_date)`},
	{"idx_bookings_user", `CREATE INDEX IF NOT EXISTS idx_bookings_user ON bookings (user_id)`},
}

// RunMigrations creates the schema. Every statement is idempotent.
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	for _, m := range schema {
		if _, err := pool.Exec(ctx, m.sql); err != nil {
			return fmt.Errorf("failed to create %s: %w", m.name, err)
		}
	}
	return nil
}

// SeedCars inserts the fixture fleet when the cars table is empty. It
// returns the number of inserted rows.
func SeedCars(ctx context.Context, pool *pgxpool.Pool, cars []model.Car) (int, error) {
	var count int64
	if err := pool.QueryRow(ctx, `SELECT COUNT(*) FROM cars`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count cars: %w", err)
	}
	if count > 0 {
		return 0, nil
	}

	n, err := pool.CopyFrom(ctx,
		pgx.Identifier{"cars"},
		seedColumns,
		pgx.CopyFromRows(seedRows(cars)),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to seed cars: %w", err)
	}

	// explicit ids bypass the sequence
	if _, err := pool.Exec(ctx, `SELECT setval(pg_get_serial_sequence('cars', 'id'), (SELECT MAX(id) FROM cars))`); err != nil {
		return 0, fmt.Errorf("failed to reset cars sequence: %w", err)
	}

	return int(n), nil
}

var seedColumns = []string{
	"id", "brand", "model", "year", "price_per_day", "rating", "seats",
	"transmission", "fuel_type", "body_type", "available", "image_url",
	"search_brand", "search_model",
}

func seedRows(cars []model.Car) [][]any {
	rows := make([][]any, 0, len(cars))
	for _, c := range cars {
		rows = append(rows, []any{
			c.ID, c.Brand, c.Model, c.Year, c.PricePerDay, c.Rating, c.Seats,
			c.Transmission, c.FuelType, c.BodyType, c.Available, c.ImageURL,
			matching.Normalize(c.Brand), matching.Normalize(c.Model),
		})
	}
	return rows
}
