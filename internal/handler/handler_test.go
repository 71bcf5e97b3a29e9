package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"carrental-client/internal/auth"
	"carrental-client/internal/database"
	"carrental-client/internal/model"
	"carrental-client/internal/repository"
)

type testAPI struct {
	router http.Handler
	tokens *auth.Manager
}

func newTestAPI(t *testing.T) *testAPI {
	t.Helper()

	store := repository.NewMemoryStore(database.Fleet())
	tokens, err := auth.NewManager("test-signing-key", "carrental-stub")
	require.NoError(t, err)

	router := NewRouter(Deps{
		Cars:       store,
		Users:      store.Users(),
		Favorites:  store,
		Bookings:   store.Bookings(),
		Tokens:     tokens,
		PageSize:   10,
		BcryptCost: bcrypt.MinCost,
	})

	return &testAPI{router: router, tokens: tokens}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	return rec
}

func (a *testAPI) register(t *testing.T, email string) model.AuthResponse {
	t.Helper()

	rec := a.do(t, http.MethodPost, "/api/auth/register", "", model.RegisterRequest{
		Name:     "Test User",
		Email:    email,
		Password: "secret123",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp model.AuthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/health", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[model.HealthResponse](t, rec)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "memory", resp.Database)
}

type failingPinger struct{}

func (failingPinger) Ping(ctx context.Context) error { return errors.New("down") }

func TestHealthDegraded(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHealthHandler(failingPinger{}).Check(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	resp := decode[model.HealthResponse](t, rec)
	assert.Equal(t, "degraded", resp.Status)
	assert.Equal(t, "disconnected", resp.Database)
}

func TestListCars(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/cars", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	cars := decode[[]model.Car](t, rec)
	assert.Len(t, cars, len(database.Fleet()))
}

func TestPagedCars(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/cars/paged?page=0&size=5&brand=toyota", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	page := decode[model.Page[model.Car]](t, rec)
	assert.Len(t, page.Content, 3)
	assert.Equal(t, 1, page.TotalPages)
	assert.True(t, page.Last)
	for _, c := range page.Content {
		assert.Equal(t, "Toyota", c.Brand)
	}

	rec = api.do(t, http.MethodGet, "/api/cars/paged?availability=true&size=10", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page = decode[model.Page[model.Car]](t, rec)
	assert.Equal(t, 3, page.TotalPages)
	assert.False(t, page.Last)

	rec = api.do(t, http.MethodGet, "/api/cars/paged?page=-1", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/cars/paged?page=9223372036854775807&size=100", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/cars/paged?size=1000", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, maxPageSize, decode[model.Page[model.Car]](t, rec).Size)
}

func TestGetCar(t *testing.T) {
	api := newTestAPI(t)

	rec := api.do(t, http.MethodGet, "/api/cars/4", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "BMW", decode[model.Car](t, rec).Brand)

	rec = api.do(t, http.MethodGet, "/api/cars/999", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	errResp := decode[model.ErrorResponse](t, rec)
	assert.Equal(t, "not_found", errResp.Error)

	rec = api.do(t, http.MethodGet, "/api/cars/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterAndLogin(t *testing.T) {
	api := newTestAPI(t)

	reg := api.register(t, "ana@example.com")
	assert.NotEmpty(t, reg.Token)
	assert.Equal(t, "ana@example.com", reg.User.Email)

	userID, err := api.tokens.ParseUserID(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, userID)

	rec := api.do(t, http.MethodPost, "/api/auth/register", "", model.RegisterRequest{Name: "Dup", Email: "ANA@example.com", Password: "secret123"})
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/auth/register", "", model.RegisterRequest{Name: "Short", Email: "b@example.com", Password: "123"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/auth/login", "", model.LoginRequest{Email: "ana@example.com", Password: "secret123"})
	require.Equal(t, http.StatusOK, rec.Code)
	login := decode[model.AuthResponse](t, rec)
	assert.Equal(t, reg.User.ID, login.User.ID)

	rec = api.do(t, http.MethodPost, "/api/auth/login", "", model.LoginRequest{Email: "ana@example.com", Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/auth/login", "", model.LoginRequest{Email: "nobody@example.com", Password: "secret123"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/users/me", login.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Test User", decode[model.User](t, rec).Name)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	api := newTestAPI(t)

	expired, err := api.tokens.NewUserJWT(1, -time.Minute)
	require.NoError(t, err)

	for _, token := range []string{"", "garbage", expired} {
		rec := api.do(t, http.MethodGet, "/api/favorites", token, nil)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "unauthenticated", decode[model.ErrorResponse](t, rec).Error)
	}
}

func TestFavorites(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "fav@example.com").Token

	rec := api.do(t, http.MethodPost, "/api/favorites/3", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodPost, "/api/favorites/999", token, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/favorites", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	favs := decode[[]model.Car](t, rec)
	require.Len(t, favs, 1)
	assert.Equal(t, int64(3), favs[0].ID)
	assert.True(t, favs[0].Favorite)

	rec = api.do(t, http.MethodGet, "/api/cars/3", token, nil)
	assert.True(t, decode[model.Car](t, rec).Favorite)
	rec = api.do(t, http.MethodGet, "/api/cars/3", "", nil)
	assert.False(t, decode[model.Car](t, rec).Favorite)

	rec = api.do(t, http.MethodDelete, "/api/favorites/3", token, nil)
	require.Equal(t, http.StatusNoContent, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/favorites", token, nil)
	assert.Empty(t, decode[[]model.Car](t, rec))
}

func TestBookings(t *testing.T) {
	api := newTestAPI(t)
	token := api.register(t, "book@example.com").Token

	start := time.Date(2026, 12, 1, 10, 0, 0, 0, time.UTC)
	req := model.BookingRequest{CarID: 1, StartDate: start, EndDate: start.Add(50 * time.Hour)}

	rec := api.do(t, http.MethodPost, "/api/bookings", token, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	booking := decode[model.Booking](t, rec)
	assert.Equal(t, model.BookingConfirmed, booking.Status)
	assert.Equal(t, 135.0, booking.TotalPrice)

	rec = api.do(t, http.MethodPost, "/api/bookings", token, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "booking_conflict", decode[model.ErrorResponse](t, rec).Error)

	rec = api.do(t, http.MethodPost, "/api/bookings", token, model.BookingRequest{CarID: 5, StartDate: start, EndDate: start.Add(24 * time.Hour)})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "car_unavailable", decode[model.ErrorResponse](t, rec).Error)

	rec = api.do(t, http.MethodPost, "/api/bookings", token, model.BookingRequest{CarID: 1, StartDate: start, EndDate: start})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = api.do(t, http.MethodGet, "/api/bookings", token, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]model.Booking](t, rec)
	require.Len(t, list, 1)
	assert.Equal(t, booking.ID, list[0].ID)
}

func TestCORSPreflight(t *testing.T) {
	api := newTestAPI(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/cars", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", "GET")
	rec := httptest.NewRecorder()
	api.router.ServeHTTP(rec, req)

	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
