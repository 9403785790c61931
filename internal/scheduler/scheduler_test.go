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
	name  string
	runs  atomic.Int32
	err   error
	block chan struct{}
}

func (j *countingJob) Run() error {
	j.runs.Add(1)
	if j.block != nil {
		<-j.block
	}
	return j.err
}

func (j *countingJob) Name() string {
	if j.name == "" {
		return "counting"
	}
	return j.name
}

func TestAddJobRejectsBadSchedule(t *testing.T) {
	s := New(zerolog.Nop())
	assert.Error(t, s.AddJob("every now and then", &countingJob{}))
	assert.Empty(t, s.Jobs())
}

func TestAddJobRegisters(t *testing.T) {
	s := New(zerolog.Nop())
	require.NoError(t, s.AddJob("@every 10m", &countingJob{name: "warm"}))
	require.NoError(t, s.AddJob("*/5 * * * *", &countingJob{name: "cleanup"}))

	jobs := s.Jobs()
	require.Len(t, jobs, 2)
	assert.Equal(t, Entry{Name: "cleanup", Schedule: "*/5 * * * *"}, jobs[0])
	assert.Equal(t, "warm", jobs[1].Name)
	assert.True(t, jobs[1].Next.IsZero())

	s.Start()
	defer s.Stop()
	assert.False(t, s.Jobs()[1].Next.IsZero())
}

func TestScheduledJobRuns(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{err: errors.New("failure is logged, not fatal")}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	defer s.Stop()
	require.Eventually(t, func() bool { return job.runs.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestRunNow(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{}
	require.NoError(t, s.RunNow(job))
	assert.Equal(t, int32(1), job.runs.Load())

	job.err = errors.New("boom")
	assert.EqualError(t, s.RunNow(job), "boom")
}

func TestOverlappingRunIsSkipped(t *testing.T) {
	s := New(zerolog.Nop())
	job := &countingJob{block: make(chan struct{})}
	require.NoError(t, s.AddJob("@every 1s", job))

	s.Start()
	require.Eventually(t, func() bool { return job.runs.Load() == 1 }, 3*time.Second, 50*time.Millisecond)
	time.Sleep(2200 * time.Millisecond)
	assert.Equal(t, int32(1), job.runs.Load())

	close(job.block)
	s.Stop()
}
