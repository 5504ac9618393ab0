package jobs

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Task is a periodic unit of work. Errors are logged; runs are never retried
// ahead of schedule.
type Task func(context.Context) error

type job struct {
	name     string
	interval time.Duration
	task     Task
}

// Scheduler runs registered tasks on fixed intervals. It replaces the
// host-managed time triggers the workflow previously relied on.
type Scheduler struct {
	logger *zap.Logger

	jobs []job

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewScheduler builds an empty scheduler.
func NewScheduler(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{logger: logger}
}

// Register adds a named task. Must be called before Start.
func (s *Scheduler) Register(name string, interval time.Duration, task Task) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started || interval <= 0 || task == nil {
		return
	}
	s.jobs = append(s.jobs, job{name: name, interval: interval, task: task})
}

// Start launches one ticker goroutine per registered task. Safe to call once.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.started {
		return
	}
	s.ctx, s.cancel = context.WithCancel(ctx)
	for _, j := range s.jobs {
		s.wg.Add(1)
		go s.loop(j)
	}
	s.started = true
	s.logger.Sugar().Infow("scheduler started", "jobs", len(s.jobs))
}

// Stop cancels all tickers and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.mu.Unlock()
	s.wg.Wait()
	s.logger.Sugar().Infow("scheduler stopped")
}

func (s *Scheduler) loop(j job) {
	defer s.wg.Done()
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.run(j)
		}
	}
}

func (s *Scheduler) run(j job) {
	runID := uuid.NewString()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Sugar().Errorw("job panicked", "job", j.name, "run_id", runID, "panic", r)
		}
	}()

	start := time.Now()
	if err := j.task(s.ctx); err != nil {
		s.logger.Sugar().Errorw("job failed", "job", j.name, "run_id", runID, "error", err)
		return
	}
	s.logger.Sugar().Infow("job completed", "job", j.name, "run_id", runID, "duration", time.Since(start))
}
