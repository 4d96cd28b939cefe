// Package scheduler runs the service's background jobs (catalog refreshes) on
// cron schedules.
package scheduler

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is a unit of background work. Run must return once its own deadline passes.
type Job interface {
	Run() error
	Name() string
}

// Entry describes a registered job. Next is zero until the scheduler is started.
type Entry struct {
	Name     string    `json:"name"`
	Schedule string    `json:"schedule"`
	Next     time.Time `json:"next_run"`
}

type registration struct {
	id       cron.EntryID
	schedule string
}

// Scheduler owns the cron runner. Overlapping runs of the same job are skipped.
type Scheduler struct {
	cron *cron.Cron
	log  zerolog.Logger

	mu   sync.Mutex
	jobs map[string]registration
}

// New creates a scheduler. Schedules take an optional leading seconds field and
// descriptors such as "@every 15m".
func New(log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds(), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:  log.With().Str("component", "scheduler").Logger(),
		jobs: make(map[string]registration),
	}
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Strs("jobs", s.Jobs()).Msg("Background jobs started")
}

// Stop halts scheduling and blocks until in-flight runs return
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.log.Info().Msg("Background jobs stopped")
}

// AddJob registers job under schedule. Job names must be unique.
func (s *Scheduler) AddJob(schedule string, job Job) error {
	name := job.Name()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[name]; exists {
		return fmt.Errorf("job %q already registered", name)
	}

	id, err := s.cron.AddFunc(schedule, func() { s.execute(job) })
	if err != nil {
		return fmt.Errorf("invalid schedule %q for job %q: %w", schedule, name, err)
	}
	s.jobs[name] = registration{id: id, schedule: schedule}

	s.log.Info().Str("job", name).Str("schedule", schedule).Msg("Job scheduled")
	return nil
}

// Jobs returns registered job names in sorted order
func (s *Scheduler) Jobs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Entries reports every registered job with its schedule and next run time
func (s *Scheduler) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Entry, 0, len(s.jobs))
	for name, reg := range s.jobs {
		out = append(out, Entry{
			Name:     name,
			Schedule: reg.schedule,
			Next:     s.cron.Entry(reg.id).Next,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RunNow runs job synchronously, outside its schedule
func (s *Scheduler) RunNow(job Job) error {
	return s.execute(job)
}

func (s *Scheduler) execute(job Job) error {
	started := time.Now()
	err := job.Run()

	event := s.log.Info()
	if err != nil {
		event = s.log.Error().Err(err)
	}
	event.Str("job", job.Name()).
		Dur("duration", time.Since(started)).
		Msg("Job finished")
	return err
}
