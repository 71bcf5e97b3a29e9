package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carrental-client/internal/auth"
	"carrental-client/internal/client"
	"carrental-client/internal/config"
	"carrental-client/internal/listing"
	"carrental-client/internal/model"
	"carrental-client/internal/service"
	"carrental-client/internal/tokenstore"
)

func main() {
	var (
		brand     = flag.String("brand", "", "Filter by brand")
		carModel  = flag.String("model", "", "Filter by model")
		minRating = flag.Float64("min-rating", -1, "Minimum rating (defaults to 0 when only -max-rating is set)")
		maxRating = flag.Float64("max-rating", -1, "Maximum rating (defaults to 5 when only -min-rating is set)")
		available = flag.Bool("available", false, "List available cars only")
		carID     = flag.Int64("id", 0, "Load a single car by ID")
		page      = flag.Int("page", 0, "Zero-based page index for -available")
		size      = flag.Int("size", 0, "Page size (0 uses LISTING_PAGE_SIZE)")
		pages     = flag.Int("pages", 0, "Number of further pages to walk forward")
		email     = flag.String("email", "", "Sign in with this email before listing")
		password  = flag.String("password", os.Getenv("CARCTL_PASSWORD"), "Password for -email")
		logout    = flag.Bool("logout", false, "Clear the stored session and exit")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}

	// stdout carries the state stream
	logger := setupLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		sig := <-sigChan
		logger.Info("received signal, shutting down", "signal", sig)
		cancel()
	}()

	session, closeSession, err := openSession(ctx, cfg.Session)
	if err != nil {
		logger.Error("failed to open session store", "error", err)
		os.Exit(1)
	}
	defer closeSession()

	api := client.NewCarClient(client.Config{
		BaseURL:   cfg.API.BaseURL,
		Timeout:   cfg.API.Timeout,
		RateLimit: cfg.API.RateLimit,
		Retry: client.RetryConfig{
			MaxRetries:     cfg.API.MaxRetries,
			InitialBackoff: 500 * time.Millisecond,
			MaxBackoff:     10 * time.Second,
			Multiplier:     2.0,
		},
		UserAgent: "carctl/1.0",
	}, session, logger)
	defer api.Close()

	var manager *auth.Manager
	if cfg.Auth.Mock {
		manager, err = auth.NewManager(cfg.Auth.SigningKey, "carrental-client")
		if err != nil {
			logger.Error("failed to create token manager", "error", err)
			os.Exit(1)
		}
	}
	accounts := service.NewAuthService(api, session, manager, service.AuthConfig{
		Mock:     cfg.Auth.Mock,
		TokenTTL: cfg.Auth.TokenTTL,
	}, logger)

	if *logout {
		if err := accounts.Logout(ctx); err != nil {
			logger.Error("failed to log out", "error", err)
			os.Exit(1)
		}
		logger.Info("session cleared")
		return
	}

	if *email != "" {
		resp, err := accounts.Login(ctx, *email, *password)
		if err != nil {
			logger.Error("login failed", "error", err)
			os.Exit(1)
		}
		logger.Info("logged in", "user", resp.User.Email)
	}

	ctrl := listing.NewControllerContext(ctx, api, listing.Config{
		PageSize:    cfg.Listing.PageSize,
		Sort:        cfg.Listing.Sort,
		Direction:   cfg.Listing.Direction,
		CallTimeout: cfg.API.CallTimeout,
	}, logger)

	states, unsubscribe := ctrl.Subscribe()
	defer unsubscribe()

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		enc := json.NewEncoder(os.Stdout)
		for s := range states {
			if err := enc.Encode(newStateLine(s)); err != nil {
				logger.Warn("failed to print state", "error", err)
			}
		}
	}()

	lo, hi, byRating := ratingBounds(*minRating, *maxRating)

	switch {
	case *carID > 0:
		ctrl.LoadByID(*carID)
	case *brand != "":
		ctrl.FilterByBrand(*brand)
	case *carModel != "":
		ctrl.FilterByModel(*carModel)
	case byRating:
		ctrl.FilterByRatingRange(lo, hi)
	case *available:
		ctrl.LoadAvailable(*page, *size)
	default:
		ctrl.LoadAll()
	}
	ctrl.Wait()

	for i := 0; i < *pages && ctx.Err() == nil; i++ {
		if ctrl.Snapshot().IsLastPage {
			break
		}
		ctrl.NextPage()
		ctrl.Wait()
	}

	exitCode := 0
	if ctrl.State().Kind == listing.KindError {
		exitCode = 1
	}

	ctrl.Close()
	<-printed

	if exitCode != 0 {
		closeSession()
		os.Exit(exitCode)
	}
}

const (
	lowestRating  = 0
	highestRating = 5
)

// ratingBounds resolves the rating flags. A negative value means unset; an
// unset side takes the end of the rating scale.
func ratingBounds(lo, hi float64) (float64, float64, bool) {
	if lo < 0 && hi < 0 {
		return 0, 0, false
	}
	if lo < 0 {
		lo = lowestRating
	}
	if hi < 0 {
		hi = highestRating
	}
	return lo, hi, true
}

// openSession selects the session token store. Every store is wrapped so
// that an expired token reads as signed out.
func openSession(ctx context.Context, cfg config.SessionConfig) (tokenstore.Store, func(), error) {
	switch cfg.Backend {
	case "memory":
		return tokenstore.NewExpiring(tokenstore.NewMemoryStore()), func() {}, nil
	case "redis":
		store, err := tokenstore.NewRedisStoreFromURL(ctx, cfg.RedisURL, "carrental", cfg.Profile)
		if err != nil {
			return nil, nil, err
		}
		return tokenstore.NewExpiring(store), func() { store.Close() }, nil
	default:
		return tokenstore.NewExpiring(tokenstore.NewFileStore(cfg.File)), func() {}, nil
	}
}

// stateLine is the JSON form of a published listing state
type stateLine struct {
	Kind  listing.Kind           `json:"kind"`
	Items []model.Car            `json:"items,omitempty"`
	Page  *model.Page[model.Car] `json:"page,omitempty"`
	Car   *model.Car             `json:"car,omitempty"`
	Error string                 `json:"error,omitempty"`
	Cause model.ErrorKind        `json:"errorKind,omitempty"`
}

func newStateLine(s listing.State) stateLine {
	line := stateLine{
		Kind:  s.Kind,
		Items: s.Items,
		Page:  s.Page,
		Car:   s.Car,
		Error: s.Message(),
	}
	if s.Err != nil {
		line.Cause = s.Err.Kind
	}
	return line
}

// setupLogger creates a structured logger on stderr with the specified level
func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
