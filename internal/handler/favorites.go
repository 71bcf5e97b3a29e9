package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"carrental-client/internal/repository"
)

type FavoriteHandler struct {
	favorites repository.FavoriteStore
	logger    *slog.Logger
}

func NewFavoriteHandler(favorites repository.FavoriteStore, logger *slog.Logger) *FavoriteHandler {
	return &FavoriteHandler{favorites: favorites, logger: logger}
}

func (h *FavoriteHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	cars, err := h.favorites.ListCars(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list favorites", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "database_error", "Failed to list favorites")
		return
	}

	writeJSON(w, http.StatusOK, cars)
}

func (h *FavoriteHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	carID, ok := idParam(w, r, "carId")
	if !ok {
		return
	}

	err := h.favorites.Add(r.Context(), userID, carID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "Car not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to add favorite", "error", err, "user_id", userID, "car_id", carID)
		writeError(w, http.StatusInternalServerError, "database_error", "Failed to add favorite")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *FavoriteHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())
	carID, ok := idParam(w, r, "carId")
	if !ok {
		return
	}

	if err := h.favorites.Remove(r.Context(), userID, carID); err != nil {
		h.logger.Error("failed to remove favorite", "error", err, "user_id", userID, "car_id", carID)
		writeError(w, http.StatusInternalServerError, "database_error", "Failed to remove favorite")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
