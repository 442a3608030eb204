package review

import (
	"context"

	"github.com/google/uuid"

	"github.com/gil-sasi/code-mentor/internal/domain"
)

// Store defines the persistence operations the review service needs
type Store interface {
	GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error)

	// MarkSubmissionReviewed conditionally flips the reviewed flag and links
	// the review id. Returns false when the submission was already reviewed,
	// so concurrent generation attempts cannot both claim it.
	MarkSubmissionReviewed(ctx context.Context, submissionID, reviewID uuid.UUID) (bool, error)

	CreateReview(ctx context.Context, r *domain.Review) error
	GetReview(ctx context.Context, id uuid.UUID) (*domain.Review, error)
	GetReviewBySubmission(ctx context.Context, submissionID uuid.UUID) (*domain.Review, error)

	GetChallenge(ctx context.Context, id uuid.UUID) (*domain.Challenge, error)
}
