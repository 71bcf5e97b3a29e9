package client

import (
	"context"
	"fmt"
	"net/http"

	"carrental-client/internal/model"
)

func (c *CarClient) Login(ctx context.Context, email, password string) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, request{
		op:     "auth.Login",
		method: http.MethodPost,
		path:   "/api/auth/login",
		body:   model.LoginRequest{Email: email, Password: password},
		auth:   authNone,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *CarClient) Register(ctx context.Context, req model.RegisterRequest) (*model.AuthResponse, error) {
	var resp model.AuthResponse
	err := c.do(ctx, request{
		op:     "auth.Register",
		method: http.MethodPost,
		path:   "/api/auth/register",
		body:   req,
		auth:   authNone,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

// Me fetches the profile of the signed-in user
func (c *CarClient) Me(ctx context.Context) (*model.User, error) {
	var user model.User
	err := c.do(ctx, request{
		op:     "users.Me",
		method: http.MethodGet,
		path:   "/api/users/me",
		auth:   authRequired,
	}, &user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *CarClient) ListFavorites(ctx context.Context) ([]model.Car, error) {
	var cars []model.Car
	err := c.do(ctx, request{
		op:     "favorites.List",
		method: http.MethodGet,
		path:   "/api/favorites",
		auth:   authRequired,
	}, &cars)
	if err != nil {
		return nil, err
	}

	if cars == nil {
		cars = []model.Car{}
	}
	return cars, nil
}

func (c *CarClient) AddFavorite(ctx context.Context, carID int64) error {
	return c.do(ctx, request{
		op:     "favorites.Add",
		method: http.MethodPost,
		path:   fmt.Sprintf("/api/favorites/%d", carID),
		auth:   authRequired,
	}, nil)
}

func (c *CarClient) RemoveFavorite(ctx context.Context, carID int64) error {
	return c.do(ctx, request{
		op:     "favorites.Remove",
		method: http.MethodDelete,
		path:   fmt.Sprintf("/api/favorites/%d", carID),
		auth:   authRequired,
	}, nil)
}

func (c *CarClient) ListBookings(ctx context.Context) ([]model.Booking, error) {
	var bookings []model.Booking
	err := c.do(ctx, request{
		op:     "bookings.List",
		method: http.MethodGet,
		path:   "/api/bookings",
		auth:   authRequired,
	}, &bookings)
	if err != nil {
		return nil, err
	}

	if bookings == nil {
		bookings = []model.Booking{}
	}
	return bookings, nil
}

func (c *CarClient) CreateBooking(ctx context.Context, req model.BookingRequest) (*model.Booking, error) {
	var booking model.Booking
	err := c.do(ctx, request{
		op:     "bookings.Create",
		method: http.MethodPost,
		path:   "/api/bookings",
		body:   req,
		auth:   authRequired,
	}, &booking)
	if err != nil {
		return nil, err
	}
	return &booking, nil
}
