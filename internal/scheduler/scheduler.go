package scheduler

import (
	"context"
	"fmt"
	"time"

	"anoa.com/wanderhub/pkg/apperror"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const defaultJobTimeout = 5 * time.Minute

type Scheduler struct {
	cron    *cron.Cron
	jobs    []Job
	timeout time.Duration
	log     *zap.SugaredLogger
}

func New(log *zap.SugaredLogger) *Scheduler {
	return &Scheduler{
		// A job still running when its next tick fires is skipped rather
		// than run twice.
		cron:    cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		timeout: defaultJobTimeout,
		log:     log,
	}
}

// Register adds a job. Jobs with a schedule are handed to cron; the others
// only run through RunByName.
func (s *Scheduler) Register(job Job) error {
	s.jobs = append(s.jobs, job)

	schedule := job.Schedule()
	if schedule == "" {
		s.log.Infow("registered on-demand job", "job", job.Name())
		return nil
	}

	if _, err := s.cron.AddFunc(schedule, func() { s.run(job) }); err != nil {
		return fmt.Errorf("failed to schedule %s: %w", job.Name(), err)
	}
	s.log.Infow("scheduled job", "job", job.Name(), "schedule", schedule)
	return nil
}

func (s *Scheduler) run(job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	if err := job.Run(ctx); err != nil {
		s.log.Errorw("job failed", "job", job.Name(), "error", err, "duration", time.Since(start))
		return
	}
	s.log.Debugw("job completed", "job", job.Name(), "duration", time.Since(start))
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Infow("scheduler started", "jobs", len(s.jobs))
}

// Stop prevents new runs and waits for running jobs until ctx is done.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("scheduler stopped before running jobs finished")
		return
	}
	s.log.Info("scheduler stopped")
}

// RunByName runs a registered job right away, bounded by the same timeout
// as a scheduled run. It backs the admin jobs endpoint.
func (s *Scheduler) RunByName(ctx context.Context, name string) error {
	for _, job := range s.jobs {
		if job.Name() != name {
			continue
		}

		ctx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()

		start := time.Now()
		if err := job.Run(ctx); err != nil {
			s.log.Errorw("on-demand job failed", "job", name, "error", err, "duration", time.Since(start))
			return err
		}
		s.log.Infow("on-demand job completed", "job", name, "duration", time.Since(start))
		return nil
	}
	return apperror.Wrap(apperror.ErrNotFound, fmt.Sprintf("job %q not registered", name))
}

func (s *Scheduler) Names() []string {
	names := make([]string, len(s.jobs))
	for i, job := range s.jobs {
		names[i] = job.Name()
	}
	return names
}
