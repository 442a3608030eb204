package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// Producer publishes review jobs to the queue
type Producer struct {
	conn *Connection
}

// NewProducer creates a new queue producer
func NewProducer(conn *Connection) *Producer {
	return &Producer{conn: conn}
}

// Enqueue publishes a review job to the queue.
func (p *Producer) Enqueue(ctx context.Context, job *ReviewJob) error {
	if job.ID == uuid.Nil {
		job.ID = uuid.New()
	}
	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}

	if err := p.conn.PublishJSON(ctx, ReviewQueueName, job); err != nil {
		return fmt.Errorf("failed to publish review job: %w", err)
	}

	slog.Info("published review job",
		"job_id", job.ID,
		"submission_id", job.SubmissionID,
		"user_id", job.UserID,
		"attempt", job.Attempt,
	)

	return nil
}
