package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/cors"

	"carrental-client/internal/auth"
	"carrental-client/internal/repository"
)

// Deps are the stores and settings the router serves from
type Deps struct {
	Cars      repository.CarStore
	Users     repository.UserStore
	Favorites repository.FavoriteStore
	Bookings  repository.BookingStore
	DB        Pinger
	Tokens    *auth.Manager
	TokenTTL  time.Duration
	PageSize  int

	// BcryptCost defaults to bcrypt.DefaultCost
	BcryptCost int

	// AllowedOrigins for CORS; empty allows any origin
	AllowedOrigins []string

	// RequestLog enables chi's request logger
	RequestLog bool
	Logger     *slog.Logger
}

// NewRouter builds the HTTP API of the fixture backend
func NewRouter(d Deps) http.Handler {
	logger := d.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if d.TokenTTL <= 0 {
		d.TokenTTL = 24 * time.Hour
	}

	health := NewHealthHandler(d.DB)
	cars := NewCarHandler(d.Cars, d.Favorites, d.PageSize, logger)
	authH := NewAuthHandler(d.Users, d.Tokens, d.TokenTTL, d.BcryptCost, logger)
	favorites := NewFavoriteHandler(d.Favorites, logger)
	bookings := NewBookingHandler(d.Cars, d.Bookings, logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if d.RequestLog {
		r.Use(middleware.Logger)
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", health.Check)

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(OptionalUser(d.Tokens))
			r.Get("/cars", cars.List)
			r.Get("/cars/paged", cars.Paged)
			r.Get("/cars/{id}", cars.Get)
		})

		r.Post("/auth/login", authH.Login)
		r.Post("/auth/register", authH.Register)

		r.Group(func(r chi.Router) {
			r.Use(RequireUser(d.Tokens))
			r.Get("/users/me", authH.Me)
			r.Get("/favorites", favorites.List)
			r.Post("/favorites/{carId}", favorites.Add)
			r.Delete("/favorites/{carId}", favorites.Remove)
			r.Get("/bookings", bookings.List)
			r.Post("/bookings", bookings.Create)
		})
	})

	origins := d.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
	})

	return c.Handler(r)
}
