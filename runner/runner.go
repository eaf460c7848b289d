// Package runner drives batches of lifecycle runs on a bounded worker pool.
package runner

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/alitto/pond/v2"
	"github.com/caarlos0/env/v11"
	"go.uber.org/atomic"

	"github.com/amp-labs/amp-lifecycle/errors"
	"github.com/amp-labs/amp-lifecycle/shutdown"
)

const defaultWorkerCount = 8

// Job is the unit of work a Runner drives. *command.Run satisfies it.
type Job interface {
	ID() string
	Execute(ctx context.Context) error
	Failed() bool
}

// Config controls worker pool sizing, sourced from the environment.
type Config struct {
	WorkerCount int `env:"RUNNER_WORKER_COUNT" envDefault:"8"`
}

// ConfigFromEnv reads runner configuration from the environment.
func ConfigFromEnv() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse runner config: %w", err)
	}

	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = defaultWorkerCount
	}

	return cfg, nil
}

// Runner executes jobs on a shared bounded pool.
type Runner struct {
	name    string
	pool    pond.Pool
	stopped *atomic.Bool
}

type runnerOptions struct {
	name        string
	workerCount int
}

// Option configures a Runner.
type Option func(*runnerOptions)

// WithName sets the runner name used in logs and metric labels.
func WithName(name string) Option {
	return func(o *runnerOptions) {
		o.name = name
	}
}

// WithWorkerCount overrides the environment-provided pool size.
func WithWorkerCount(count int) Option {
	return func(o *runnerOptions) {
		o.workerCount = count
	}
}

// New creates a runner backed by a bounded worker pool. The pool is
// drained before process shutdown.
func New(opts ...Option) (*Runner, error) {
	options := &runnerOptions{name: "runner"}

	for _, opt := range opts {
		opt(options)
	}

	if options.workerCount < 1 {
		cfg, err := ConfigFromEnv()
		if err != nil {
			return nil, err
		}

		options.workerCount = cfg.WorkerCount
	}

	slog.Debug("Initializing runner pool", "name", options.name, "workers", options.workerCount)

	runner := &Runner{
		name:    options.name,
		pool:    pond.NewPool(options.workerCount),
		stopped: atomic.NewBool(false),
	}

	initMetrics(runner.name, options.workerCount)

	shutdown.BeforeShutdown("runner:"+runner.name, func() {
		slog.Debug("Stopping runner pool", "name", runner.name)
		runner.Stop()
	})

	return runner, nil
}

// MustNew creates a runner and panics if configuration fails.
func MustNew(opts ...Option) *Runner {
	runner, err := New(opts...)
	if err != nil {
		panic(err)
	}

	return runner
}

// Name returns the runner name.
func (r *Runner) Name() string {
	return r.name
}

// Go submits fire-and-forget work to the pool. It returns an error if
// the pool is stopped.
func (r *Runner) Go(f func()) error {
	return r.pool.Go(f)
}

// Stop drains the pool, waiting for in-flight jobs to finish. Further
// submissions are rejected.
func (r *Runner) Stop() {
	if r.stopped.CompareAndSwap(false, true) {
		r.pool.StopAndWait()
	}
}

// NewBatch starts an empty batch on this runner.
func (r *Runner) NewBatch() *Batch {
	return &Batch{
		runner:    r,
		errs:      &errors.SyncCollection{},
		completed: atomic.NewInt64(0),
		failed:    atomic.NewInt64(0),
	}
}

// Run executes jobs as a single batch and waits for all of them.
func (r *Runner) Run(ctx context.Context, jobs ...Job) (*Batch, error) {
	batch := r.NewBatch()
	for _, job := range jobs {
		batch.Submit(ctx, job)
	}

	return batch, batch.Wait()
}

// Batch collects jobs submitted together so callers can wait for the
// whole set and inspect aggregate results.
type Batch struct {
	runner    *Runner
	mu        sync.Mutex
	tasks     []pond.Task
	errs      *errors.SyncCollection
	completed *atomic.Int64
	failed    *atomic.Int64
}

// Submit enqueues one job on the pool. Errors returned by Execute are
// collected for Wait; a job that merely ends failed is counted, not
// collected.
func (b *Batch) Submit(ctx context.Context, job Job) {
	queuedJobs.WithLabelValues(b.runner.name).Inc()

	task := b.runner.pool.Submit(func() {
		queuedJobs.WithLabelValues(b.runner.name).Dec()
		inflightJobs.WithLabelValues(b.runner.name).Inc()
		defer inflightJobs.WithLabelValues(b.runner.name).Dec()

		b.account(job, job.Execute(ctx))
	})

	b.mu.Lock()
	b.tasks = append(b.tasks, task)
	b.mu.Unlock()
}

// Wait blocks until every submitted job has finished. It returns the
// aggregate of collected errors, including panics recovered by the
// pool. Failed jobs do not contribute to the error.
func (b *Batch) Wait() error {
	b.mu.Lock()
	tasks := b.tasks
	b.tasks = nil
	b.mu.Unlock()

	for _, task := range tasks {
		if err := task.Wait(); err != nil {
			b.errs.Add(err)
		}
	}

	return b.errs.GetError()
}

// Completed returns the number of jobs that finished executing.
func (b *Batch) Completed() int64 {
	return b.completed.Load()
}

// Failed returns the number of jobs that ended in their failure state.
func (b *Batch) Failed() int64 {
	return b.failed.Load()
}

func (b *Batch) account(job Job, err error) {
	b.completed.Inc()

	switch {
	case err != nil:
		slog.Error("Job aborted", "runner", b.runner.name, "job", job.ID(), "error", err)
		b.errs.Add(fmt.Errorf("job %s: %w", job.ID(), err))
		completedJobs.WithLabelValues(b.runner.name, outcomeAborted).Inc()
	case job.Failed():
		b.failed.Inc()
		completedJobs.WithLabelValues(b.runner.name, outcomeFailed).Inc()
	default:
		completedJobs.WithLabelValues(b.runner.name, outcomeSucceeded).Inc()
	}
}
