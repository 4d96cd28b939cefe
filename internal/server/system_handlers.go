package server

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/rs/zerolog"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/anadkat/bondtrading/internal/modules/bonds"
	"github.com/anadkat/bondtrading/internal/modules/catalog"
	"github.com/anadkat/bondtrading/internal/scheduler"
)

// SyncStatusProvider reports the most recent catalog sync
type SyncStatusProvider interface {
	Status() bonds.SyncStatus
}

// JobLister reports scheduled background jobs
type JobLister interface {
	Entries() []scheduler.Entry
}

// SystemHandlers serves process and host diagnostics
type SystemHandlers struct {
	catalog       *catalog.Catalog
	sync          SyncStatusProvider
	jobs          JobLister
	executionMode string
	startedAt     time.Time
	stats         func() (float64, float64)
	log           zerolog.Logger
}

// SystemStatusResponse is returned by GET /api/system/status
type SystemStatusResponse struct {
	Status        string            `json:"status"`
	ExecutionMode string            `json:"execution_mode"`
	BondsLoaded   int               `json:"bonds_loaded"`
	OrdersTracked int               `json:"orders_tracked"`
	LastSync      bonds.SyncStatus  `json:"last_sync"`
	ScheduledJobs []scheduler.Entry `json:"scheduled_jobs"`
	CPUPercent    float64           `json:"cpu_percent"`
	MemoryPercent float64           `json:"memory_percent"`
	Goroutines    int               `json:"goroutines"`
	UptimeSeconds int64             `json:"uptime_seconds"`
	Runtime       map[string]string `json:"runtime"`
}

// NewSystemHandlers creates system diagnostics handlers
func NewSystemHandlers(cat *catalog.Catalog, sync SyncStatusProvider, jobs JobLister, executionMode string, log zerolog.Logger) *SystemHandlers {
	h := &SystemHandlers{
		catalog:       cat,
		sync:          sync,
		jobs:          jobs,
		executionMode: executionMode,
		startedAt:     time.Now(),
		log:           log.With().Str("handler", "system").Logger(),
	}
	h.stats = h.getSystemStats
	return h
}

// HandleSystemStatus handles GET /api/system/status
func (h *SystemHandlers) HandleSystemStatus(w http.ResponseWriter, r *http.Request) {
	cpuPercent, memPercent := h.stats()

	jobs := []scheduler.Entry{}
	if h.jobs != nil {
		jobs = h.jobs.Entries()
	}

	h.writeJSON(w, SystemStatusResponse{
		Status:        "healthy",
		ExecutionMode: h.executionMode,
		BondsLoaded:   h.catalog.BondCount(),
		OrdersTracked: h.catalog.OrderCount(),
		LastSync:      h.sync.Status(),
		ScheduledJobs: jobs,
		CPUPercent:    cpuPercent,
		MemoryPercent: memPercent,
		Goroutines:    runtime.NumGoroutine(),
		UptimeSeconds: int64(time.Since(h.startedAt).Seconds()),
		Runtime: map[string]string{
			"go_version": runtime.Version(),
			"os":         runtime.GOOS,
			"arch":       runtime.GOARCH,
		},
	})
}

// getSystemStats calculates CPU and RAM usage percentages.
// CPU is sampled over 100ms so the endpoint stays responsive.
func (h *SystemHandlers) getSystemStats() (float64, float64) {
	cpuPercent, err := cpu.Percent(100*time.Millisecond, false)
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get CPU percentage")
		cpuPercent = []float64{0}
	}

	memStat, err := mem.VirtualMemory()
	if err != nil {
		h.log.Warn().Err(err).Msg("Failed to get memory statistics")
		return 0, 0
	}

	cpuAvg := 0.0
	if len(cpuPercent) > 0 {
		cpuAvg = cpuPercent[0]
	}

	return cpuAvg, memStat.UsedPercent
}

func (h *SystemHandlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}
