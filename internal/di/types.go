// Package di provides dependency injection type definitions.
//
// The Container holds every long-lived service instance and is handed to the
// HTTP server so handlers are built from a single source of truth.
package di

import (
	"github.com/rs/zerolog"

	"github.com/anadkat/bondtrading/internal/clients/moment"
	"github.com/anadkat/bondtrading/internal/config"
	"github.com/anadkat/bondtrading/internal/domain"
	"github.com/anadkat/bondtrading/internal/modules/bonds"
	"github.com/anadkat/bondtrading/internal/modules/catalog"
	"github.com/anadkat/bondtrading/internal/modules/trading"
	"github.com/anadkat/bondtrading/internal/scheduler"
)

// Container holds all application dependencies
type Container struct {
	Config *config.Config
	Log    zerolog.Logger

	// Clients
	MomentClient *moment.Client

	// Store
	Catalog *catalog.Catalog

	// Services
	Executor     domain.OrderExecutor
	OrderService *trading.OrderService
	SyncService  *bonds.SyncService

	// Background jobs
	Scheduler  *scheduler.Scheduler
	RefreshJob *bonds.RefreshJob
}
