package jobs

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSchedulerRunsRegisteredTask(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(nil)
	s.Register("tick", 10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	s.Start(context.Background())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return runs.Load() >= 2
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerStopHaltsRuns(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(nil)
	s.Register("tick", 10*time.Millisecond, func(context.Context) error {
		runs.Add(1)
		return nil
	})

	s.Start(context.Background())
	time.Sleep(35 * time.Millisecond)
	s.Stop()

	after := runs.Load()
	time.Sleep(50 * time.Millisecond)
	assert.Equal(t, after, runs.Load())
}

func TestSchedulerSurvivesFailuresAndPanics(t *testing.T) {
	var runs atomic.Int32
	s := NewScheduler(nil)
	s.Register("flaky", 10*time.Millisecond, func(context.Context) error {
		n := runs.Add(1)
		if n == 1 {
			panic("boom")
		}
		if n == 2 {
			return fmt.Errorf("transient")
		}
		return nil
	})

	s.Start(context.Background())
	defer s.Stop()

	assert.Eventually(t, func() bool {
		return runs.Load() >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestSchedulerIgnoresInvalidRegistrations(t *testing.T) {
	s := NewScheduler(nil)
	s.Register("no-task", 10*time.Millisecond, nil)
	s.Register("no-interval", 0, func(context.Context) error { return nil })
	assert.Empty(t, s.jobs)
}
