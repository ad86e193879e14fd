package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"emr-auth/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSchedulerLogger(t *testing.T) *logger.Logger {
	t.Helper()

	log, err := logger.New("error", "development")
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })

	return log
}

func TestSchedulerRunsJobRepeatedly(t *testing.T) {
	var runs atomic.Int64

	s := New(testSchedulerLogger(t))
	s.Register(Job{
		Name:     "counter",
		Interval: 10 * time.Millisecond,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	s.Start()

	assert.Eventually(t, func() bool {
		return runs.Load() >= 3
	}, 2*time.Second, 10*time.Millisecond)

	s.Stop()
}

func TestSchedulerSurvivesJobErrors(t *testing.T) {
	var runs atomic.Int64

	s := New(testSchedulerLogger(t))
	s.Register(Job{
		Name:     "flaky",
		Interval: 10 * time.Millisecond,
		Run: func(context.Context) error {
			runs.Add(1)
			return errors.New("transient failure")
		},
	})
	s.Start()

	// A failing run must not stop the ticker.
	assert.Eventually(t, func() bool {
		return runs.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	s.Stop()
}

func TestSchedulerRunsJobsIndependently(t *testing.T) {
	var first, second atomic.Int64

	s := New(testSchedulerLogger(t))
	s.Register(Job{
		Name:     "first",
		Interval: 10 * time.Millisecond,
		Run: func(context.Context) error {
			first.Add(1)
			return nil
		},
	})
	s.Register(Job{
		Name:     "second",
		Interval: 10 * time.Millisecond,
		Run: func(context.Context) error {
			second.Add(1)
			return nil
		},
	})
	s.Start()

	assert.Eventually(t, func() bool {
		return first.Load() >= 2 && second.Load() >= 2
	}, 2*time.Second, 10*time.Millisecond)

	s.Stop()
}

func TestSchedulerStopHaltsJobs(t *testing.T) {
	var runs atomic.Int64

	s := New(testSchedulerLogger(t))
	s.Register(Job{
		Name:     "counter",
		Interval: 5 * time.Millisecond,
		Run: func(context.Context) error {
			runs.Add(1)
			return nil
		},
	})
	s.Start()

	assert.Eventually(t, func() bool {
		return runs.Load() >= 1
	}, 2*time.Second, 5*time.Millisecond)

	s.Stop()
	after := runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, runs.Load(), "no runs after Stop")
}

func TestSchedulerStopIsIdempotent(t *testing.T) {
	s := New(testSchedulerLogger(t))
	s.Start()
	s.Stop()
	s.Stop()
}
