package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gil-sasi/code-mentor/internal/domain"
)

// ReviewStore implements review persistence backed by SQLite.
type ReviewStore struct {
	db *DB
}

// NewReviewStore creates a new SQLite-backed review store.
func NewReviewStore(db *DB) *ReviewStore {
	return &ReviewStore{db: db}
}

// CreateReview inserts a new review. The UNIQUE constraint on submission_id
// enforces at most one review per submission; a constraint hit surfaces as
// domain.ErrDuplicateReview so callers can return the existing review.
func (s *ReviewStore) CreateReview(ctx context.Context, r *domain.Review) error {
	feedback, err := json.Marshal(r.Feedback)
	if err != nil {
		return fmt.Errorf("marshal feedback: %w", err)
	}
	quality, err := json.Marshal(r.CodeQuality)
	if err != nil {
		return fmt.Errorf("marshal code_quality: %w", err)
	}
	careerTips, err := json.Marshal(r.CareerTips)
	if err != nil {
		return fmt.Errorf("marshal career_tips: %w", err)
	}
	nextSteps, err := json.Marshal(r.NextSteps)
	if err != nil {
		return fmt.Errorf("marshal next_steps: %w", err)
	}
	resources, err := json.Marshal(r.Resources)
	if err != nil {
		return fmt.Errorf("marshal resources: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO code_reviews (id, submission_id, user_id, challenge_id,
			overall_score, feedback, code_quality, career_tips, next_steps,
			resources, reviewed_at, model, format_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID.String(), r.SubmissionID.String(), r.UserID, r.ChallengeID.String(),
		r.OverallScore, string(feedback), string(quality), string(careerTips),
		string(nextSteps), string(resources), r.ReviewedAt, r.Model, r.FormatVersion,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateReview
		}
		return fmt.Errorf("insert review: %w", err)
	}
	return nil
}

// GetReview retrieves a review by id.
func (s *ReviewStore) GetReview(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, submission_id, user_id, challenge_id, overall_score,
			feedback, code_quality, career_tips, next_steps, resources,
			reviewed_at, model, format_version
		FROM code_reviews WHERE id = ?`, id.String())

	return scanReview(row)
}

// GetReviewBySubmission retrieves the review for a submission.
func (s *ReviewStore) GetReviewBySubmission(ctx context.Context, submissionID uuid.UUID) (*domain.Review, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, submission_id, user_id, challenge_id, overall_score,
			feedback, code_quality, career_tips, next_steps, resources,
			reviewed_at, model, format_version
		FROM code_reviews WHERE submission_id = ?`, submissionID.String())

	return scanReview(row)
}

// ListReviewsByUser returns all reviews for a user, newest first.
func (s *ReviewStore) ListReviewsByUser(ctx context.Context, userID string) ([]*domain.Review, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, submission_id, user_id, challenge_id, overall_score,
			feedback, code_quality, career_tips, next_steps, resources,
			reviewed_at, model, format_version
		FROM code_reviews WHERE user_id = ? ORDER BY reviewed_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var out []*domain.Review
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func scanReview(row rowScanner) (*domain.Review, error) {
	var r domain.Review
	var id, submissionID, challengeID string
	var feedback, quality, careerTips, nextSteps, resources string

	err := row.Scan(&id, &submissionID, &r.UserID, &challengeID, &r.OverallScore,
		&feedback, &quality, &careerTips, &nextSteps, &resources,
		&r.ReviewedAt, &r.Model, &r.FormatVersion)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrReviewNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan review: %w", err)
	}

	r.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse review id: %w", err)
	}
	r.SubmissionID, err = uuid.Parse(submissionID)
	if err != nil {
		return nil, fmt.Errorf("parse submission id: %w", err)
	}
	r.ChallengeID, err = uuid.Parse(challengeID)
	if err != nil {
		return nil, fmt.Errorf("parse challenge id: %w", err)
	}

	if err := json.Unmarshal([]byte(feedback), &r.Feedback); err != nil {
		return nil, fmt.Errorf("unmarshal feedback: %w", err)
	}
	if err := json.Unmarshal([]byte(quality), &r.CodeQuality); err != nil {
		return nil, fmt.Errorf("unmarshal code_quality: %w", err)
	}
	if err := json.Unmarshal([]byte(careerTips), &r.CareerTips); err != nil {
		return nil, fmt.Errorf("unmarshal career_tips: %w", err)
	}
	if err := json.Unmarshal([]byte(nextSteps), &r.NextSteps); err != nil {
		return nil, fmt.Errorf("unmarshal next_steps: %w", err)
	}
	if err := json.Unmarshal([]byte(resources), &r.Resources); err != nil {
		return nil, fmt.Errorf("unmarshal resources: %w", err)
	}

	return &r, nil
}
