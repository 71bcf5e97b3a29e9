package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"carrental-client/internal/matching"
	"carrental-client/internal/model"
)

const carColumns = `
	id, brand, model, year, price_per_day, rating, seats,
	COALESCE(transmission, ''), COALESCE(fuel_type, ''), COALESCE(body_type, ''),
	available, COALESCE(image_url, '')
`

type CarRepo struct {
	db *pgxpool.Pool
}

func NewCarRepo(db *pgxpool.Pool) *CarRepo {
	return &CarRepo{db: db}
}

// List returns every car ordered by id
func (r *CarRepo) List(ctx context.Context) ([]model.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars ORDER BY id`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list cars: %w", err)
	}
	defer rows.Close()

	return scanCars(rows)
}

// ListPaged returns one page of cars matching the query
func (r *CarRepo) ListPaged(ctx context.Context, q model.PageQuery) (*model.Page[model.Car], error) {
	where, args := carWhere(q)

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM cars`+where, args...).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count cars: %w", err)
	}

	order := sortColumn(q.Sort)
	if descending(q.Direction) {
		order += " DESC"
	}

	query := `SELECT ` + carColumns + ` FROM cars` + where +
		fmt.Sprintf(` ORDER BY %s, id LIMIT $%d OFFSET $%d`, order, len(args)+1, len(args)+2)
	args = append(args, q.Size, q.Page*q.Size)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query cars: %w", err)
	}
	defer rows.Close()

	cars, err := scanCars(rows)
	if err != nil {
		return nil, err
	}

	return model.NewPage(cars, q.Page, q.Size, total), nil
}

func (r *CarRepo) GetByID(ctx context.Context, id int64) (*model.Car, error) {
	query := `SELECT ` + carColumns + ` FROM cars WHERE id = $1`

	var c model.Car
	err := r.db.QueryRow(ctx, query, id).Scan(
		&c.ID, &c.Brand, &c.Model, &c.Year, &c.PricePerDay, &c.Rating, &c.Seats,
		&c.Transmission, &c.FuelType, &c.BodyType, &c.Available, &c.ImageURL,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get car %d: %w", id, err)
	}

	return &c, nil
}

// carWhere builds the WHERE clause for a page query
func carWhere(q model.PageQuery) (string, []any) {
	var conds []string
	args := []any{}
	argIndex := 1

	// plain substring match on the folded columns, no LIKE wildcards
	if q.Brand != "" {
		conds = append(conds, fmt.Sprintf(`strpos(search_brand, $%d) > 0`, argIndex))
		args = append(args, matching.Normalize(q.Brand))
		argIndex++
	}

	if q.Model != "" {
		conds = append(conds, fmt.Sprintf(`strpos(search_model, $%d) > 0`, argIndex))
		args = append(args, matching.Normalize(q.Model))
		argIndex++
	}

	if q.MinRating != nil {
		conds = append(conds, fmt.Sprintf(`rating >= $%d`, argIndex))
		args = append(args, *q.MinRating)
		argIndex++
	}

	if q.MaxRating != nil {
		conds = append(conds, fmt.Sprintf(`rating <= $%d`, argIndex))
		args = append(args, *q.MaxRating)
		argIndex++
	}

	if q.Availability != nil {
		conds = append(conds, fmt.Sprintf(`available = $%d`, argIndex))
		args = append(args, *q.Availability)
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func scanCars(rows pgx.Rows) ([]model.Car, error) {
	cars := []model.Car{}
	for rows.Next() {
		var c model.Car
		if err := rows.Scan(
			&c.ID, &c.Brand, &c.Model, &c.Year, &c.PricePerDay, &c.Rating, &c.Seats,
			&c.Transmission, &c.FuelType, &c.BodyType, &c.Available, &c.ImageURL,
		); err != nil {
			return nil, fmt.Errorf("failed to scan car: %w", err)
		}
		cars = append(cars, c)
	}

	return cars, rows.Err()
}
