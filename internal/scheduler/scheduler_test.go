package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/investsim/pkg/logger"
)

type countingJob struct {
	name     string
	schedule string
	failures int32
	calls    atomic.Int32
}

func (j *countingJob) Name() string     { return j.name }
func (j *countingJob) Schedule() string { return j.schedule }

func (j *countingJob) Run(ctx context.Context) error {
	n := j.calls.Add(1)
	if n <= j.failures {
		return errors.New("transient failure")
	}
	return nil
}

func newTestScheduler(opts ...Option) *Scheduler {
	opts = append([]Option{WithRetry(2, time.Millisecond)}, opts...)
	return New(logger.NewNop(), opts...)
}

func TestAddJob(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "warmup", schedule: "0 */10 * * * *"}

	require.NoError(t, s.AddJob(job))
	assert.Equal(t, []string{"warmup"}, s.Jobs())

	err := s.AddJob(job)
	assert.ErrorContains(t, err, "already exists")
}

func TestAddJob_InvalidSchedule(t *testing.T) {
	s := newTestScheduler()

	err := s.AddJob(&countingJob{name: "bad", schedule: "not a cron"})

	require.Error(t, err)
	assert.Empty(t, s.Jobs())
}

func TestRemoveJob(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@hourly"}))

	require.NoError(t, s.RemoveJob("a"))
	assert.Empty(t, s.Jobs())
	assert.Error(t, s.RemoveJob("a"))
}

func TestRunNow_Success(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "a", schedule: "@hourly"}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunNow(context.Background(), "a")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Empty(t, result.Error)
}

func TestRunNow_RetriesThenSucceeds(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "a", schedule: "@hourly", failures: 2}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunNow(context.Background(), "a")

	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, int32(3), job.calls.Load())
}

func TestRunNow_FailsAfterRetries(t *testing.T) {
	s := newTestScheduler()
	job := &countingJob{name: "a", schedule: "@hourly", failures: 10}
	require.NoError(t, s.AddJob(job))

	result, err := s.RunNow(context.Background(), "a")

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 3, result.Attempts)
	assert.Equal(t, "transient failure", result.Error)

	stats := s.Stats()["a"]
	assert.Equal(t, 1, stats.TotalRuns)
	assert.Equal(t, 1, stats.FailureCount)
	assert.NotNil(t, stats.LastFailure)
	assert.Nil(t, stats.LastSuccess)
}

func TestRunNow_UnknownJob(t *testing.T) {
	s := newTestScheduler()

	_, err := s.RunNow(context.Background(), "missing")

	assert.ErrorContains(t, err, "not found")
}

func TestRunNow_CancelledContextStopsRetrying(t *testing.T) {
	s := New(logger.NewNop(), WithRetry(5, time.Hour))
	job := &countingJob{name: "a", schedule: "@hourly", failures: 10}
	require.NoError(t, s.AddJob(job))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := s.RunNow(ctx, "a")

	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, int32(1), job.calls.Load())
	assert.Equal(t, context.Canceled.Error(), result.Error)
}

func TestHistory(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@hourly"}))

	for i := 0; i < 3; i++ {
		_, err := s.RunNow(context.Background(), "a")
		require.NoError(t, err)
	}

	history, err := s.History("a")
	require.NoError(t, err)
	assert.Len(t, history.Results, 3)
	assert.Equal(t, 1.0, history.SuccessRate())

	_, err = s.History("missing")
	assert.Error(t, err)
}

func TestJobHistory_Limit(t *testing.T) {
	h := &JobHistory{}
	for i := 0; i < historyLimit+20; i++ {
		h.AddResult(JobResult{Success: i%2 == 0})
	}

	assert.Len(t, h.Results, historyLimit)
	assert.Len(t, h.Latest(5), 5)
	assert.Empty(t, h.Latest(0))
	assert.InDelta(t, 0.5, h.SuccessRate(), 1e-9)
	assert.Len(t, h.Failures(), historyLimit/2)
}

func TestStartStop(t *testing.T) {
	s := newTestScheduler()
	require.NoError(t, s.AddJob(&countingJob{name: "a", schedule: "@hourly"}))

	s.Start()
	s.Stop()
}

func TestKVFields(t *testing.T) {
	fields := kvFields([]interface{}{"entry", 3, "next", "soon", "dangling"})

	assert.Equal(t, map[string]interface{}{"entry": 3, "next": "soon"}, fields)
}

func TestCronLogger(t *testing.T) {
	l := cronLogger{logger.NewNop()}

	assert.NotPanics(t, func() {
		l.Info("skip", "entry", 1)
		l.Error(errors.New("boom"), "panic", "entry", 1)
	})
}
