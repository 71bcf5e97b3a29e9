package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"math"
	"net/http"

	"carrental-client/internal/model"
	"carrental-client/internal/repository"
)

type BookingHandler struct {
	cars     repository.CarStore
	bookings repository.BookingStore
	logger   *slog.Logger
}

func NewBookingHandler(cars repository.CarStore, bookings repository.BookingStore, logger *slog.Logger) *BookingHandler {
	return &BookingHandler{cars: cars, bookings: bookings, logger: logger}
}

func (h *BookingHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := UserID(r.Context())

	bookings, err := h.bookings.ListByUser(r.Context(), userID)
	if err != nil {
		h.logger.Error("failed to list bookings", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "database_error", "Failed to list bookings")
		return
	}

	writeJSON(w, http.StatusOK, bookings)
}

// Create books a car for the signed-in user. The price is charged per
// started day.
func (h *BookingHandler) Create(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID, _ := UserID(ctx)

	var req model.BookingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid JSON body")
		return
	}
	if !req.EndDate.After(req.StartDate) {
		writeError(w, http.StatusBadRequest, "invalid_dates", "End date must be after start date")
		return
	}

	car, err := h.cars.GetByID(ctx, req.CarID)
	if errors.Is(err, repository.ErrNotFound) {
		writeError(w, http.StatusNotFound, "not_found", "Car not found")
		return
	}
	if err != nil {
		h.logger.Error("failed to get car", "error", err, "car_id", req.CarID)
		writeError(w, http.StatusInternalServerError, "database_error", "Failed to create booking")
		return
	}
	if !car.Available {
		writeError(w, http.StatusConflict, "car_unavailable", "Car is not available")
		return
	}

	days := max(int(math.Ceil(req.EndDate.Sub(req.StartDate).Hours()/24)), 1)
	booking := &model.Booking{
		CarID:      req.CarID,
		UserID:     userID,
		StartDate:  req.StartDate.UTC(),
		EndDate:    req.EndDate.UTC(),
		TotalPrice: math.Round(car.PricePerDay*float64(days)*100) / 100,
		Status:     model.BookingConfirmed,
	}

	err = h.bookings.Create(ctx, booking)
	if errors.Is(err, repository.ErrBookingConflict) {
		writeError(w, http.StatusConflict, "booking_conflict", "Car already booked for these dates")
		return
	}
	if err != nil {
		h.logger.Error("failed to create booking", "error", err, "car_id", req.CarID)
		writeError(w, http.StatusInternalServerError, "database_error", "Failed to create booking")
		return
	}

	h.logger.Info("booking created", "booking_id", booking.ID, "car_id", booking.CarID, "user_id", userID)
	writeJSON(w, http.StatusCreated, booking)
}
