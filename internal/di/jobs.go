package di

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/anadkat/bondtrading/internal/config"
	"github.com/anadkat/bondtrading/internal/modules/bonds"
	"github.com/anadkat/bondtrading/internal/scheduler"
)

const refreshJobTimeout = 2 * time.Minute

// RegisterJobs creates the scheduler and registers the catalog refresh job
// when a schedule is configured. The scheduler is not started here.
func RegisterJobs(container *Container, cfg *config.Config, log zerolog.Logger) error {
	container.Scheduler = scheduler.New(log)
	container.RefreshJob = bonds.NewRefreshJob(container.SyncService, refreshJobTimeout)

	if cfg.SyncSchedule == "" {
		log.Info().Msg("Catalog refresh schedule disabled")
		return nil
	}

	return container.Scheduler.AddJob(cfg.SyncSchedule, container.RefreshJob)
}
