package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"github.com/nekogravitycat/classroom-booking-backend/internal/app"
	"github.com/nekogravitycat/classroom-booking-backend/internal/config"
	"github.com/nekogravitycat/classroom-booking-backend/internal/db"
	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/logger"
	"github.com/nekogravitycat/classroom-booking-backend/internal/pkg/tracing"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load config
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	logr := logger.New(cfg.LogLevel, cfg.LogFormat)
	log.Logger = logr

	// Tracing
	tp, err := tracing.Init(tracing.Config{
		Enabled:        cfg.TracingEnabled,
		ZipkinEndpoint: cfg.ZipkinEndpoint,
		ServiceName:    "classroom-booking",
	})
	if err != nil {
		logr.Fatal().Err(err).Msg("failed to init tracing")
	}

	// Connect DB and apply migrations
	var pool *pgxpool.Pool
	if cfg.StoreDriver == config.StorePostgres {
		pool, err = db.NewPool(ctx, cfg.DBDSN, 0)
		if err != nil {
			logr.Fatal().Err(err).Msg("failed to connect to db")
		}
		defer pool.Close()

		if err := db.Migrate(pool); err != nil {
			logr.Fatal().Err(err).Msg("failed to migrate db")
		}
	} else {
		logr.Warn().Msg("running on the in-memory store, data is lost on exit")
	}

	container := app.NewContainer(app.Config{
		IsProduction: cfg.IsProduction,
		ProdOrigins:  cfg.ProdOrigins,
		DBPool:       pool,
		JWTSecret:    cfg.JWTSecret,
		JWTTTL:       cfg.JWTAccessTokenTTL,
		Rules:        cfg.Policy.Rules,
		Catalog:      cfg.Policy.Catalog,
		Logger:       logr,
		Tracer:       tracing.Tracer(),
	})

	// Use http.Server for graceful shutdown
	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: container.Router,
	}

	// Run server in separate goroutine
	go func() {
		logr.Info().
			Str("addr", cfg.HTTPAddr).
			Str("store", cfg.StoreDriver).
			Str("timezone", cfg.Policy.Rules.Location.String()).
			Msg("server running")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for Ctrl+C
	<-ctx.Done()
	logr.Info().Msg("shutdown signal received")

	// Create a shutdown context with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(shutdownCtx); err != nil {
		logr.Error().Err(err).Msg("server forced to shutdown")
	}
	if err := tracing.Shutdown(shutdownCtx, tp); err != nil {
		logr.Error().Err(err).Msg("failed to flush traces")
	}

	logr.Info().Msg("server exited gracefully")
}
