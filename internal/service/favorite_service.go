package service

import (
	"context"
	"fmt"
	"log/slog"

	"carrental-client/internal/model"
)

type FavoriteBackend interface {
	ListFavorites(ctx context.Context) ([]model.Car, error)
	AddFavorite(ctx context.Context, carID int64) error
	RemoveFavorite(ctx context.Context, carID int64) error
}

// FavoriteView is where the optimistic flag is shown, usually the listing
// controller
type FavoriteView interface {
	SetFavorite(carID int64, favorite bool) bool
}

type FavoriteService struct {
	backend FavoriteBackend
	view    FavoriteView
	logger  *slog.Logger
}

func NewFavoriteService(backend FavoriteBackend, view FavoriteView, logger *slog.Logger) *FavoriteService {
	if logger == nil {
		logger = slog.Default()
	}
	return &FavoriteService{backend: backend, view: view, logger: logger}
}

// Toggle flips the favorite flag of car. The view is updated before the
// backend answers and reverted if the call fails.
func (s *FavoriteService) Toggle(ctx context.Context, car model.Car) (model.Car, error) {
	want := !car.Favorite
	s.show(car.ID, want)

	var err error
	if want {
		err = s.backend.AddFavorite(ctx, car.ID)
	} else {
		err = s.backend.RemoveFavorite(ctx, car.ID)
	}

	if err != nil {
		s.show(car.ID, car.Favorite)
		s.logger.Warn("favorite update failed, reverted",
			"car_id", car.ID,
			"favorite", want,
			"error", err,
		)
		return car, fmt.Errorf("failed to update favorite: %w", err)
	}

	return car.WithFavorite(want), nil
}

// List returns the user's favorite cars
func (s *FavoriteService) List(ctx context.Context) ([]model.Car, error) {
	cars, err := s.backend.ListFavorites(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list favorites: %w", err)
	}

	for i := range cars {
		cars[i].Favorite = true
	}
	return cars, nil
}

func (s *FavoriteService) show(carID int64, favorite bool) {
	if s.view != nil {
		s.view.SetFavorite(carID, favorite)
	}
}
