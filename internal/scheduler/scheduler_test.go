package scheduler

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingJob struct {
	name string
	runs atomic.Int32
	err  error
}

func (j *countingJob) Run() error {
	j.runs.Add(1)
	return j.err
}

func (j *countingJob) Name() string {
	if j.name == "" {
		return "counting"
	}
	return j.name
}

func newTestScheduler() *Scheduler {
	return New(zerolog.New(nil).Level(zerolog.Disabled))
}

func TestAddJob_InvalidSchedule(t *testing.T) {
	s := newTestScheduler()

	err := s.AddJob("not a schedule", &countingJob{})

	assert.ErrorContains(t, err, `job "counting"`)
	assert.Empty(t, s.Jobs())
	assert.Empty(t, s.Entries())
}

func TestAddJob_DuplicateName(t *testing.T) {
	s := newTestScheduler()

	require.NoError(t, s.AddJob("@every 1h", &countingJob{}))
	err := s.AddJob("@every 2h", &countingJob{})

	assert.ErrorContains(t, err, "already registered")
	assert.Equal(t, []string{"counting"}, s.Jobs())
}

func TestAddJob_RunsOnSchedule(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{}

	require.NoError(t, s.AddJob("@every 1s", job))
	assert.Equal(t, []string{"counting"}, s.Jobs())

	s.Start()
	assert.Eventually(t, func() bool { return job.runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
	s.Stop()
}

func TestEntries(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob("@every 30m", &countingJob{name: "refresh"}))
	require.NoError(t, s.AddJob("0 0 * * * *", &countingJob{name: "audit"}))

	before := s.Entries()
	require.Len(t, before, 2)
	assert.Equal(t, "audit", before[0].Name)
	assert.Equal(t, "0 0 * * * *", before[0].Schedule)
	assert.Equal(t, "refresh", before[1].Name)
	assert.True(t, before[1].Next.IsZero())

	s.Start()
	defer s.Stop()

	assert.Eventually(t, func() bool {
		for _, e := range s.Entries() {
			if e.Next.IsZero() {
				return false
			}
		}
		return true
	}, time.Second, 10*time.Millisecond)
}

func TestRunNow(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{err: errors.New("boom")}

	err := s.RunNow(job)

	assert.EqualError(t, err, "boom")
	assert.Equal(t, int32(1), job.runs.Load())
}
