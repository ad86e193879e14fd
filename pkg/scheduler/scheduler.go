package scheduler

import (
	"context"
	"sync"
	"time"

	"emr-auth/pkg/logger"
)

// Job is one unit of periodic work. Errors are logged and retried on the
// next tick, never fatal.
type Job struct {
	Name     string
	Interval time.Duration
	Run      func(ctx context.Context) error
}

// Scheduler runs registered jobs on their own tickers until stopped
type Scheduler struct {
	jobs   []Job
	done   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once
	logger *logger.Logger
}

// New creates an empty scheduler
func New(log *logger.Logger) *Scheduler {
	return &Scheduler{
		done:   make(chan struct{}),
		logger: log,
	}
}

// Register adds a job. Must be called before Start.
func (s *Scheduler) Register(job Job) {
	s.jobs = append(s.jobs, job)
}

// Start launches one goroutine per registered job
func (s *Scheduler) Start() {
	for _, job := range s.jobs {
		s.wg.Add(1)
		go s.loop(job)
	}
}

// Stop halts all jobs and waits for in-flight runs to finish
func (s *Scheduler) Stop() {
	s.once.Do(func() {
		close(s.done)
		s.wg.Wait()
	})
}

func (s *Scheduler) loop(job Job) {
	defer s.wg.Done()

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), job.Interval)
			if err := job.Run(ctx); err != nil {
				s.logger.Errorw("Scheduled job failed", "job", job.Name, "error", err)
			} else {
				s.logger.Debugw("Scheduled job completed", "job", job.Name)
			}
			cancel()
		case <-s.done:
			return
		}
	}
}
