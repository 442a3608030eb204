package queue

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

// ErrDispatcherClosed is returned by Enqueue after Close.
var ErrDispatcherClosed = errors.New("dispatcher closed")

// InProcessDispatcher processes review jobs on a worker pool inside the same
// process. It is the backend for deployments without a message broker and
// keeps the same retry and dead-letter semantics as the RabbitMQ consumer.
type InProcessDispatcher struct {
	handler    JobHandler
	jobs       chan *ReviewJob
	jobTimeout time.Duration
	logger     *slog.Logger

	mu     sync.RWMutex
	closed bool
	wg     sync.WaitGroup

	deadMu sync.Mutex
	dead   []*ReviewJob
}

// InProcessConfig holds in-process dispatcher configuration.
type InProcessConfig struct {
	Workers    int
	Buffer     int
	JobTimeout time.Duration
}

// DefaultInProcessConfig returns sensible defaults.
func DefaultInProcessConfig() InProcessConfig {
	return InProcessConfig{
		Workers:    3,
		Buffer:     64,
		JobTimeout: 2 * time.Minute,
	}
}

// NewInProcessDispatcher creates and starts an in-process dispatcher.
func NewInProcessDispatcher(handler JobHandler, cfg InProcessConfig, logger *slog.Logger) *InProcessDispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if cfg.Buffer <= 0 {
		cfg.Buffer = 64
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 2 * time.Minute
	}

	d := &InProcessDispatcher{
		handler:    handler,
		jobs:       make(chan *ReviewJob, cfg.Buffer),
		jobTimeout: cfg.JobTimeout,
		logger:     logger,
	}

	for i := 0; i < cfg.Workers; i++ {
		d.wg.Add(1)
		go d.worker(i)
	}

	return d
}

// Enqueue hands a job to the worker pool. It blocks while the buffer is full
// unless ctx is cancelled first. The read lock is held across the send so a
// concurrent Close cannot close the channel underneath it.
func (d *InProcessDispatcher) Enqueue(ctx context.Context, job *ReviewJob) error {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return ErrDispatcherClosed
	}

	select {
	case d.jobs <- job:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops accepting jobs and waits for in-flight ones to finish.
func (d *InProcessDispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	close(d.jobs)
	d.mu.Unlock()

	d.wg.Wait()
}

// DeadJobs returns jobs that exhausted all attempts.
func (d *InProcessDispatcher) DeadJobs() []*ReviewJob {
	d.deadMu.Lock()
	defer d.deadMu.Unlock()
	out := make([]*ReviewJob, len(d.dead))
	copy(out, d.dead)
	return out
}

func (d *InProcessDispatcher) worker(id int) {
	defer d.wg.Done()

	for job := range d.jobs {
		d.process(id, job)
	}
}

func (d *InProcessDispatcher) process(workerID int, job *ReviewJob) {
	for ; job.Attempt < MaxAttempts; job.Attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), d.jobTimeout)
		err := d.handler(ctx, job)
		cancel()

		if err == nil {
			d.logger.Info("review job completed",
				"worker_id", workerID,
				"job_id", job.ID,
				"submission_id", job.SubmissionID,
				"attempt", job.Attempt,
			)
			return
		}

		d.logger.Error("review job failed",
			"worker_id", workerID,
			"job_id", job.ID,
			"submission_id", job.SubmissionID,
			"attempt", job.Attempt,
			"error", err,
		)
	}

	d.logger.Error("review job dead-lettered",
		"job_id", job.ID,
		"submission_id", job.SubmissionID,
		"attempts", job.Attempt,
	)
	d.deadMu.Lock()
	d.dead = append(d.dead, job)
	d.deadMu.Unlock()
}

// Ensure both backends satisfy Dispatcher.
var (
	_ Dispatcher = (*Producer)(nil)
	_ Dispatcher = (*InProcessDispatcher)(nil)
)
