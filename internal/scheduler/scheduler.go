package scheduler

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrAlreadyStarted is returned by Start on a running scheduler.
var ErrAlreadyStarted = errors.New("scheduler: already started")

// Job is a periodic task. A zero InitialDelay runs the job immediately.
type Job struct {
	Name         string
	Interval     time.Duration
	InitialDelay time.Duration
	Run          func(ctx context.Context) error
}

// Scheduler runs jobs on fixed intervals until stopped.
type Scheduler struct {
	jobs   []Job
	logger *zap.Logger

	mu     sync.Mutex
	cancel context.CancelFunc
	group  *errgroup.Group
}

// New builds a scheduler for jobs. Jobs without Run or a positive Interval are
// rejected.
func New(logger *zap.Logger, jobs ...Job) (*Scheduler, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for _, job := range jobs {
		if job.Run == nil || job.Interval <= 0 {
			return nil, errors.New("scheduler: job " + job.Name + " needs Run and a positive Interval")
		}
	}
	return &Scheduler{jobs: jobs, logger: logger.Named("scheduler")}, nil
}

// Start launches one goroutine per job. Jobs stop when ctx is cancelled or
// Stop is called.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		return ErrAlreadyStarted
	}

	runCtx, cancel := context.WithCancel(ctx)
	group, groupCtx := errgroup.WithContext(runCtx)
	for _, job := range s.jobs {
		job := job
		group.Go(func() error {
			s.loop(groupCtx, job)
			return nil
		})
	}
	s.cancel = cancel
	s.group = group
	s.logger.Info("scheduler started", zap.Int("jobs", len(s.jobs)))
	return nil
}

// Stop cancels all jobs and waits for in-flight runs to return. It is a no-op
// on a scheduler that is not running.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	cancel, group := s.cancel, s.group
	s.cancel, s.group = nil, nil
	s.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	_ = group.Wait()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) loop(ctx context.Context, job Job) {
	logger := s.logger.With(zap.String("job", job.Name))

	if job.InitialDelay > 0 {
		timer := time.NewTimer(job.InitialDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-timer.C:
		}
	}
	s.runOnce(ctx, logger, job)

	ticker := time.NewTicker(job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.runOnce(ctx, logger, job)
		}
	}
}

// runOnce executes job, logging failures and panics. A failing run never stops
// the loop.
func (s *Scheduler) runOnce(ctx context.Context, logger *zap.Logger, job Job) {
	defer func() {
		if r := recover(); r != nil {
			logger.Error("job panicked", zap.Any("panic", r))
		}
	}()

	started := time.Now()
	if err := job.Run(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		logger.Error("job failed", zap.Error(err), zap.Duration("took", time.Since(started)))
		return
	}
	logger.Debug("job finished", zap.Duration("took", time.Since(started)))
}
