package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"carrental-client/internal/model"
	"carrental-client/internal/repository"
)

const maxPageSize = 100

type CarHandler struct {
	cars      repository.CarStore
	favorites repository.FavoriteStore
	pageSize  int
	logger    *slog.Logger
}

func NewCarHandler(cars repository.CarStore, favorites repository.FavoriteStore, pageSize int, logger *slog.Logger) *CarHandler {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &CarHandler{cars: cars, favorites: favorites, pageSize: pageSize, logger: logger}
}

// List returns the whole catalog
func (h *CarHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	cars, err := h.cars.List(ctx)
	if err != nil {
		h.logger.Error("failed to list cars", "error", err)
		writeError(w, http.StatusInternalServerError, "database_error", "Failed to list cars")
		return
	}

	writeJSON(w, http.StatusOK, h.markFavorites(ctx, cars))
}

// Paged returns one page of the filtered catalog
func (h *CarHandler) Paged(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	q, err := model.ParsePageQuery(r.URL.Query(), h.pageSize)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_query", err.Error())
		return
	}
	q.Size = min(q.Size, maxPageSize)

	page, err := h.cars.ListPaged(ctx, q)
	if err != nil {
		h.logger.Error("failed to list car page", "error", err, "page", q.Page)
		writeError(w, http.StatusInternalServerError, "database_error", "Failed to list cars")
		return
	}

	page.Content = h.markFavorites(ctx, page.Content)
	writeJSON(w, http.StatusOK, page)
}

func (h *CarHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := idParam(w, r, "id")
	if !ok {
		return
	}

	car, err := h.cars.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "Car not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get car", "error", err, "car_id", id)
		writeError(w, http.StatusInternalServerError, "database_error", "Failed to get car")
		return
	}

	cars := h.markFavorites(ctx, []model.Car{*car})
	writeJSON(w, http.StatusOK, cars[0])
}

// markFavorites sets the favorite flag for the signed-in user. Anonymous
// requests and lookup failures leave the cars unchanged.
func (h *CarHandler) markFavorites(ctx context.Context, cars []model.Car) []model.Car {
	if cars == nil {
		cars = []model.Car{}
	}

	userID, ok := UserID(ctx)
	if !ok || h.favorites == nil {
		return cars
	}

	ids, err := h.favorites.IDs(ctx, userID)
	if err != nil {
		h.logger.Warn("failed to load favorites", "error", err, "user_id", userID)
		return cars
	}

	for i := range cars {
		cars[i].Favorite = ids[cars[i].ID]
	}
	return cars
}
