// Package main is the entrypoint for the garagelink API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kiranshivaraju/garagelink/internal/api"
	"github.com/kiranshivaraju/garagelink/internal/api/handler"
	mw "github.com/kiranshivaraju/garagelink/internal/api/middleware"
	"github.com/kiranshivaraju/garagelink/internal/cache"
	"github.com/kiranshivaraju/garagelink/internal/config"
	"github.com/kiranshivaraju/garagelink/internal/conversation"
	"github.com/kiranshivaraju/garagelink/internal/jobs"
	"github.com/kiranshivaraju/garagelink/internal/logging"
	"github.com/kiranshivaraju/garagelink/internal/store"
	"github.com/kiranshivaraju/garagelink/internal/vehicle"
)

const shutdownTimeout = 30 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load config, fail fast on invalid config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(logging.New(os.Stdout, cfg.Log))
	slog.Info("config loaded", "env", cfg.Server.Env, "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 2. Connect to database
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()
	slog.Info("database connected")

	// 3. Run migrations
	if err := store.RunMigrations(cfg.Database.URL, cfg.Database.MigrationsDir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database migrations applied")

	// 4. Create Redis cache
	redisCache, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("create redis cache: %w", err)
	}
	defer redisCache.Close()

	if err := redisCache.Ping(ctx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis connected")

	// 5. Build services and router
	router := newRouter(cfg, store.NewPostgresStore(pool), redisCache, time.Now)

	// 6. Start HTTP server
	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
		slog.Info("shutdown signal received, draining connections...")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped gracefully")
	return nil
}

// newRouter wires the services over st and c and returns the HTTP handler.
func newRouter(cfg *config.Config, st store.Store, c cache.Cache, now func() time.Time) http.Handler {
	vehicles := vehicle.NewResolver(vehicle.NewCachedCatalog(st, c, cfg.Cache.VehicleTTL))
	jobSvc := jobs.NewService(st, c, cfg.Cache.JobStatusTTL)
	convSvc := conversation.NewResolver(st, st, vehicles, mw.Identity{}, now)

	jobsHandler := handler.NewJobs(jobSvc, vehicles, c)
	analyticsHandler := handler.NewAnalytics(jobSvc, now)
	convHandler := handler.NewConversations(convSvc)

	return api.NewRouter(api.Dependencies{
		Auth:      mw.NewAuth(st),
		RateLimit: mw.NewRateLimit(c, cfg.Server.RateLimitPerMinute),

		HealthHandler: handler.NewHealth(map[string]handler.Pinger{
			"database": st,
			"cache":    c,
		}),
		CustomerJobs:      jobsHandler.ListByCustomer,
		CustomerAnalytics: analyticsHandler.Summary,
		MechanicJobs:      jobsHandler.ListByMechanic,
		GetJob:            jobsHandler.Get,
		GetJobStatus:      jobsHandler.GetStatus,
		UpdateJobStatus:   jobsHandler.UpdateStatus,
		CancelJob:         jobsHandler.Cancel,
		AssignJob:         jobsHandler.Assign,
		OpenConversation:  convHandler.Open,
	})
}
