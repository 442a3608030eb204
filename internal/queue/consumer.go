package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// JobHandler generates the review for one job. A nil error acknowledges the
// job; an error retries it until MaxAttempts, then dead-letters it.
type JobHandler func(ctx context.Context, job *ReviewJob) error

// Consumer consumes review jobs from the queue
type Consumer struct {
	conn       *Connection
	handler    JobHandler
	producer   *Producer
	workers    int
	prefetch   int
	jobTimeout time.Duration
	cancelFunc context.CancelFunc
	wg         sync.WaitGroup
}

// ConsumerConfig holds consumer configuration
type ConsumerConfig struct {
	Workers    int           // Number of concurrent workers
	Prefetch   int           // Prefetch count per worker
	JobTimeout time.Duration // Per-job processing deadline
}

// DefaultConsumerConfig returns sensible defaults
func DefaultConsumerConfig() ConsumerConfig {
	return ConsumerConfig{
		Workers:    3,
		Prefetch:   1, // Process one at a time per worker for fairness
		JobTimeout: 2 * time.Minute,
	}
}

// NewConsumer creates a new queue consumer
func NewConsumer(conn *Connection, handler JobHandler, cfg ConsumerConfig) *Consumer {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if cfg.Prefetch <= 0 {
		cfg.Prefetch = 1
	}
	if cfg.JobTimeout <= 0 {
		cfg.JobTimeout = 2 * time.Minute
	}

	return &Consumer{
		conn:       conn,
		handler:    handler,
		producer:   NewProducer(conn),
		workers:    cfg.Workers,
		prefetch:   cfg.Prefetch,
		jobTimeout: cfg.JobTimeout,
	}
}

// Start begins consuming messages
func (c *Consumer) Start(ctx context.Context) error {
	ctx, c.cancelFunc = context.WithCancel(ctx)

	ch := c.conn.Channel()

	// Set QoS (prefetch)
	if err := ch.Qos(c.prefetch, 0, false); err != nil {
		return fmt.Errorf("failed to set QoS: %w", err)
	}

	msgs, err := ch.Consume(
		ReviewQueueName,
		"",    // consumer tag (auto-generated)
		false, // auto-ack (manual ack for reliability)
		false, // exclusive
		false, // no-local
		false, // no-wait
		nil,   // args
	)
	if err != nil {
		return fmt.Errorf("failed to start consuming: %w", err)
	}

	slog.Info("starting review queue consumer", "workers", c.workers, "prefetch", c.prefetch)

	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go c.worker(ctx, i, msgs)
	}

	return nil
}

// worker processes messages from the queue
func (c *Consumer) worker(ctx context.Context, id int, msgs <-chan amqp.Delivery) {
	defer c.wg.Done()

	slog.Info("worker started", "worker_id", id)

	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopping", "worker_id", id)
			return

		case msg, ok := <-msgs:
			if !ok {
				slog.Info("message channel closed", "worker_id", id)
				return
			}

			c.processMessage(ctx, id, msg)
		}
	}
}

// processMessage handles a single message
func (c *Consumer) processMessage(ctx context.Context, workerID int, msg amqp.Delivery) {
	start := time.Now()

	var job ReviewJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		slog.Error("failed to unmarshal review job",
			"worker_id", workerID,
			"error", err,
		)
		// Reject without requeue for malformed messages; dead-letters
		_ = msg.Reject(false)
		return
	}

	slog.Info("processing review job",
		"worker_id", workerID,
		"job_id", job.ID,
		"submission_id", job.SubmissionID,
		"attempt", job.Attempt,
	)

	jobCtx, cancel := context.WithTimeout(ctx, c.jobTimeout)
	defer cancel()

	err := c.handler(jobCtx, &job)
	duration := time.Since(start)

	if err == nil {
		slog.Info("review job completed",
			"worker_id", workerID,
			"job_id", job.ID,
			"submission_id", job.SubmissionID,
			"duration", duration,
		)
		if err := msg.Ack(false); err != nil {
			slog.Error("failed to ack message", "worker_id", workerID, "job_id", job.ID, "error", err)
		}
		return
	}

	slog.Error("review job failed",
		"worker_id", workerID,
		"job_id", job.ID,
		"submission_id", job.SubmissionID,
		"attempt", job.Attempt,
		"error", err,
		"duration", duration,
	)

	if job.Attempt+1 >= MaxAttempts {
		slog.Error("review job dead-lettered",
			"job_id", job.ID,
			"submission_id", job.SubmissionID,
			"attempts", job.Attempt+1,
		)
		// Reject without requeue routes to the dead queue
		if err := msg.Reject(false); err != nil {
			slog.Error("failed to reject message", "job_id", job.ID, "error", err)
		}
		return
	}

	// Republish with the attempt counter bumped, then ack the original so
	// the retry count survives redelivery.
	retry := job
	retry.Attempt++
	if err := c.producer.Enqueue(ctx, &retry); err != nil {
		slog.Error("failed to republish review job, requeueing original",
			"job_id", job.ID,
			"error", err,
		)
		_ = msg.Reject(true)
		return
	}
	if err := msg.Ack(false); err != nil {
		slog.Error("failed to ack retried message", "job_id", job.ID, "error", err)
	}
}

// Stop gracefully stops the consumer
func (c *Consumer) Stop() {
	if c.cancelFunc != nil {
		c.cancelFunc()
	}
	c.wg.Wait()
	slog.Info("consumer stopped")
}
