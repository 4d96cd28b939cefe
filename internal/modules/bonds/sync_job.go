package bonds

import (
	"context"
	"time"
)

// RefreshJob re-pulls the instrument list on a schedule
type RefreshJob struct {
	service *SyncService
	timeout time.Duration
}

// NewRefreshJob creates a scheduler job around SyncService.Refresh
func NewRefreshJob(service *SyncService, timeout time.Duration) *RefreshJob {
	if timeout <= 0 {
		timeout = time.Minute
	}
	return &RefreshJob{service: service, timeout: timeout}
}

// Name implements scheduler.Job
func (j *RefreshJob) Name() string {
	return "bond_catalog_refresh"
}

// Run implements scheduler.Job. The listing error of this run is returned so the
// scheduler logs the failure.
func (j *RefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), j.timeout)
	defer cancel()

	_, err := j.service.run(ctx, true)
	return err
}
