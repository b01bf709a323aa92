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
	_ "time/tzdata"

	"github.com/msomdec/event-rsvp/internal/clock"
	"github.com/msomdec/event-rsvp/internal/config"
	"github.com/msomdec/event-rsvp/internal/domain"
	"github.com/msomdec/event-rsvp/internal/handler"
	"github.com/msomdec/event-rsvp/internal/repository/postgres"
	"github.com/msomdec/event-rsvp/internal/repository/sqlite"
	"github.com/msomdec/event-rsvp/internal/service"
	"github.com/msomdec/event-rsvp/internal/telemetry"
)

const serviceName = "event-rsvp"

func main() {
	logOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
	logger := slog.New(slog.NewMultiHandler(
		slog.NewTextHandler(os.Stdout, logOpts),
		slog.NewJSONHandler(os.Stderr, logOpts),
	))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	// Graceful shutdown on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.Setup(ctx, serviceName, cfg.OTelEndpoint)
	if err != nil {
		slog.Error("failed to set up tracing", "error", err)
		os.Exit(1)
	}

	store, err := openStore(ctx, cfg)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if err := store.Migrate(ctx); err != nil {
		slog.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}
	slog.Info("database migrations applied")

	clk := clock.System
	authService := service.NewAuthService(store.Users(), cfg.JWTSecret, clk)
	eventService := service.NewEventService(store.Events(), store.Registrations(), store.FeedItems(), clk, cfg.Location())
	registrationService := service.NewRegistrationService(store.Events(), store.Registrations())
	invitationService := service.NewInvitationService(store.Invitations(), cfg.BcryptCost)
	userService := service.NewUserService(store.Users(), cfg.BcryptCost)

	if created, err := userService.EnsureAdmin(ctx, cfg.AdminUsername, cfg.AdminPassword); err != nil {
		slog.Error("failed to create bootstrap admin", "error", err)
		os.Exit(1)
	} else if !created && cfg.AdminUsername != "" {
		slog.Info("bootstrap admin skipped, users already exist")
	}

	// Five login attempts per client, refilled at one every twelve seconds.
	loginThrottle := service.NewTokenBucket(1.0/12, 5, clk)
	go loginThrottle.RunCleanup(ctx)

	mux := http.NewServeMux()
	handler.RegisterRoutes(mux, handler.Services{
		Auth:          authService,
		Events:        eventService,
		Registrations: registrationService,
		Invitations:   invitationService,
		Users:         userService,
		LoginThrottle: loginThrottle,
		CookieSecure:  cfg.CookieSecure,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler.RequestLogger(handler.SecurityHeaders(mux)),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1MB
	}

	go func() {
		slog.Info("server starting", "addr", srv.Addr, "timezone", cfg.DisplayTimezone)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server shutdown error", "error", err)
	}
	if err := shutdownTracing(shutdownCtx); err != nil {
		slog.Error("tracing shutdown error", "error", err)
	}
	slog.Info("server stopped")
}

// openStore returns the Postgres store when DATABASE_URL is set and the
// SQLite store otherwise.
func openStore(ctx context.Context, cfg config.Config) (domain.Store, error) {
	if cfg.DatabaseURL != "" {
		slog.Info("using postgres store")
		db, err := postgres.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		return db, nil
	}
	slog.Info("using sqlite store", "path", cfg.DatabasePath)
	db, err := sqlite.New(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	return db, nil
}
