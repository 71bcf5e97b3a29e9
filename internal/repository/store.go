package repository

import (
	"context"
	"errors"

	"carrental-client/internal/model"
)

var (
	ErrNotFound        = errors.New("record not found")
	ErrDuplicateEmail  = errors.New("email already registered")
	ErrBookingConflict = errors.New("car already booked for the period")
)

// CarStore reads the car catalog
type CarStore interface {
	List(ctx context.Context) ([]model.Car, error)
	ListPaged(ctx context.Context, q model.PageQuery) (*model.Page[model.Car], error)
	GetByID(ctx context.Context, id int64) (*model.Car, error)
}

// UserStore keeps accounts and their password hashes
type UserStore interface {
	Create(ctx context.Context, user *model.User, passwordHash string) error
	GetByEmail(ctx context.Context, email string) (*model.User, string, error)
	GetByID(ctx context.Context, id int64) (*model.User, error)
}

type FavoriteStore interface {
	Add(ctx context.Context, userID, carID int64) error
	Remove(ctx context.Context, userID, carID int64) error
	ListCars(ctx context.Context, userID int64) ([]model.Car, error)
	IDs(ctx context.Context, userID int64) (map[int64]bool, error)
}

// BookingStore keeps bookings. Create fails with ErrBookingConflict when an
// active booking of the same car overlaps the period.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) error
	ListByUser(ctx context.Context, userID int64) ([]model.Booking, error)
}

// sortColumns whitelists the sort keys accepted from clients
var sortColumns = map[string]string{
	"id":          "id",
	"brand":       "brand",
	"model":       "model",
	"year":        "year",
	"price":       "price_per_day",
	"pricePerDay": "price_per_day",
	"rating":      "rating",
}

func sortColumn(key string) string {
	if col, ok := sortColumns[key]; ok {
		return col
	}
	return "id"
}

func descending(direction string) bool {
	return direction == "desc" || direction == "DESC"
}
