package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeJob struct {
	name string
	runs atomic.Int32
	err  error
}

func (j *fakeJob) Name() string        { return j.name }
func (j *fakeJob) Description() string { return "fake job for tests" }
func (j *fakeJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestIntervalSchedule_Next(t *testing.T) {
	s := Every(10 * time.Minute)
	base := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, base.Add(10*time.Minute), s.Next(base))
	assert.Equal(t, "@every 10m0s", s.String())
}

func TestDailySchedule_Next(t *testing.T) {
	s := DailyAt(20, 30)

	morning := time.Date(2026, 8, 31, 9, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 8, 31, 20, 30, 0, 0, time.UTC), s.Next(morning))

	evening := time.Date(2026, 8, 31, 21, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 9, 1, 20, 30, 0, 0, time.UTC), s.Next(evening))

	exactly := time.Date(2026, 8, 31, 20, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 9, 1, 20, 30, 0, 0, time.UTC), s.Next(exactly),
		"a run scheduled for t itself must move to the next day")
}

func TestScheduler_RegisterRejectsDuplicates(t *testing.T) {
	s := New(Config{})
	job := &fakeJob{name: "rebuild"}

	require.NoError(t, s.Register(job, Every(time.Hour)))
	assert.ErrorIs(t, s.Register(job, Every(time.Hour)), ErrJobAlreadyExists)
	assert.ErrorIs(t, s.Register(nil, Every(time.Hour)), ErrNilJob)
	assert.ErrorIs(t, s.Register(&fakeJob{name: "other"}, nil), ErrNilSchedule)
}

func TestScheduler_RunNow(t *testing.T) {
	s := New(Config{})
	job := &fakeJob{name: "rebuild"}
	require.NoError(t, s.Register(job, Every(time.Hour)))

	result, err := s.RunNow(context.Background(), "rebuild")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, int32(1), job.runs.Load())

	last, ok := s.LastResult("rebuild")
	require.True(t, ok)
	assert.Equal(t, "rebuild", last.JobName)

	_, err = s.RunNow(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrJobNotFound)
}

func TestScheduler_RunNowReportsFailure(t *testing.T) {
	s := New(Config{})
	job := &fakeJob{name: "broken", err: errors.New("boom")}
	require.NoError(t, s.Register(job, Every(time.Hour)))

	result, err := s.RunNow(context.Background(), "broken")
	assert.Error(t, err)
	assert.False(t, result.Success)
}

func TestScheduler_RunsDueJobs(t *testing.T) {
	s := New(Config{Tick: 5 * time.Millisecond})
	job := &fakeJob{name: "fast"}
	require.NoError(t, s.Register(job, Every(10*time.Millisecond)))

	require.NoError(t, s.Start(context.Background()))
	assert.ErrorIs(t, s.Start(context.Background()), ErrSchedulerAlreadyRunning)

	assert.Eventually(t, func() bool {
		return job.runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)

	require.NoError(t, s.Stop())
	assert.False(t, s.IsRunning())
	assert.ErrorIs(t, s.Stop(), ErrSchedulerNotRunning)
}

func TestScheduler_DisabledJobDoesNotRun(t *testing.T) {
	s := New(Config{Tick: 5 * time.Millisecond})
	job := &fakeJob{name: "dormant"}
	require.NoError(t, s.Register(job, Every(10*time.Millisecond)))
	require.NoError(t, s.DisableJob("dormant"))

	require.NoError(t, s.Start(context.Background()))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, s.Stop())

	assert.Equal(t, int32(0), job.runs.Load())

	infos := s.ListJobs()
	require.Len(t, infos, 1)
	assert.False(t, infos[0].Enabled)
}
