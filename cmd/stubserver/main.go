package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"carrental-client/internal/auth"
	"carrental-client/internal/config"
	"carrental-client/internal/database"
	"carrental-client/internal/handler"
	"carrental-client/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	logger := setupLogger(cfg.LogLevel)
	slog.SetDefault(logger)

	logger.Info("starting stub backend", "store", cfg.Stub.Store, "port", cfg.Stub.Port)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tokens, err := auth.NewManager(cfg.Auth.SigningKey, "carrental-stub")
	if err != nil {
		logger.Error("failed to create token manager", "error", err)
		os.Exit(1)
	}

	deps := handler.Deps{
		Tokens:     tokens,
		TokenTTL:   cfg.Auth.TokenTTL,
		PageSize:   cfg.Listing.PageSize,
		RequestLog: true,
		Logger:     logger,
	}

	switch cfg.Stub.Store {
	case "postgres":
		logger.Info("connecting to database", "host", cfg.Database.Host, "database", cfg.Database.Name)
		db, err := database.Connect(ctx, database.FromConfig(cfg.Database))
		if err != nil {
			logger.Error("failed to connect to database", "error", err)
			os.Exit(1)
		}
		defer db.Close()

		if err := database.RunMigrations(ctx, db); err != nil {
			logger.Error("failed to run migrations", "error", err)
			os.Exit(1)
		}
		seeded, err := database.SeedCars(ctx, db, database.Fleet())
		if err != nil {
			logger.Error("failed to seed cars", "error", err)
			os.Exit(1)
		}
		logger.Info("database ready", "seeded_cars", seeded)

		deps.Cars = repository.NewCarRepo(db)
		deps.Users = repository.NewUserRepo(db)
		deps.Favorites = repository.NewFavoriteRepo(db)
		deps.Bookings = repository.NewBookingRepo(db)
		deps.DB = db
	default:
		store := repository.NewMemoryStore(database.Fleet())
		deps.Cars = store
		deps.Users = store.Users()
		deps.Favorites = store
		deps.Bookings = store.Bookings()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Stub.Port,
		Handler:      handler.NewRouter(deps),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info("shutting down server")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("failed to shut down server", "error", err)
	}

	logger.Info("server stopped")
}

// setupLogger creates a structured logger with the specified level
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

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}
