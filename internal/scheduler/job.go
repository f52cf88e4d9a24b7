package scheduler

import "context"

// Job is a unit of background work the scheduler can run on a cron
// schedule or on demand.
type Job interface {
	// Name identifies the job in logs and for RunByName.
	Name() string

	// Schedule is a cron expression such as "@every 1m" or "0 6 * * *".
	// An empty schedule registers the job as on-demand only.
	Schedule() string

	Run(ctx context.Context) error
}

type funcJob struct {
	name     string
	schedule string
	run      func(ctx context.Context) error
}

// NewJob wraps a function as a Job.
func NewJob(name, schedule string, run func(ctx context.Context) error) Job {
	return &funcJob{name: name, schedule: schedule, run: run}
}

func (j *funcJob) Name() string                  { return j.name }
func (j *funcJob) Schedule() string              { return j.schedule }
func (j *funcJob) Run(ctx context.Context) error { return j.run(ctx) }
