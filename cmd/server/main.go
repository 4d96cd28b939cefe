// Package main is the entry point for the bond trading API.
//
// The service keeps an in-memory bond catalog loaded from the Moment API,
// proxies quotes, price history and order books, and records orders placed
// through either a simulated or a broker-backed executor.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anadkat/bondtrading/internal/config"
	"github.com/anadkat/bondtrading/internal/di"
	"github.com/anadkat/bondtrading/internal/server"
	"github.com/anadkat/bondtrading/pkg/logger"
)

const bootSyncTimeout = time.Minute

func main() {
	cfg, err := config.Load()
	if err != nil {
		// Use fallback logger if config fails
		fallbackLog := logger.New(logger.Config{
			Level:  "info",
			Pretty: true,
		})
		fallbackLog.Fatal().Err(err).Msg("Failed to load configuration")
	}

	log := logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Pretty: cfg.LogPretty,
	})
	logger.SetGlobalLogger(log)

	log.Info().
		Str("moment_api", cfg.MomentBaseURL).
		Str("execution_mode", cfg.ExecutionMode).
		Msg("Starting bond trading API")

	container, err := di.Wire(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire dependencies")
	}

	// Initial catalog load. Upstream failures leave the catalog empty and are
	// recorded in the sync status; startup continues either way.
	bootCtx, bootCancel := context.WithTimeout(context.Background(), bootSyncTimeout)
	result := container.SyncService.Refresh(bootCtx)
	bootCancel()
	log.Info().
		Int("synced", result.SyncedCount).
		Int("total_bonds", result.TotalBonds).
		Msg("Initial bond sync finished")

	container.Scheduler.Start()

	srv := server.New(server.Config{
		Log:       log,
		Port:      cfg.Port,
		DevMode:   cfg.DevMode,
		Container: container,
	})

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	log.Info().Int("port", cfg.Port).Msg("Server started successfully")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	container.Scheduler.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server stopped")
}
