package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/gil-sasi/code-mentor/internal/domain"
)

// Store defines the persistence operations the submission service needs
type Store interface {
	CreateSubmission(ctx context.Context, sub *domain.Submission) error
	GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error)
	GetSubmissionByUserChallenge(ctx context.Context, userID string, challengeID uuid.UUID) (*domain.Submission, error)
	ListSubmissionsByUser(ctx context.Context, userID string) ([]*domain.Submission, error)

	GetChallenge(ctx context.Context, id uuid.UUID) (*domain.Challenge, error)
}

// DuplicateError reports a rejected second submission for the same user and
// challenge, carrying the id of the submission that already exists.
type DuplicateError struct {
	ExistingID uuid.UUID
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("submission already exists for this challenge (id %s)", e.ExistingID)
}

func (e *DuplicateError) Unwrap() error {
	return domain.ErrDuplicateSubmission
}

// Service accepts and stores code submissions, enforcing at most one
// submission per (user, challenge) pair.
type Service struct {
	store  Store
	logger *slog.Logger
}

// NewService creates a new submission service
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// Submit validates and persists a new submission. The duplicate check runs
// before the insert; the unique constraint backstops the race where two
// requests pass the check at once.
func (s *Service) Submit(ctx context.Context, sub *domain.Submission) (*domain.Submission, error) {
	if sub.UserID == "" {
		sub.UserID = domain.AnonymousUser
	}
	if err := sub.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.store.GetChallenge(ctx, sub.ChallengeID); err != nil {
		return nil, err
	}

	existing, err := s.store.GetSubmissionByUserChallenge(ctx, sub.UserID, sub.ChallengeID)
	if err == nil {
		return nil, &DuplicateError{ExistingID: existing.ID}
	}
	if !errors.Is(err, domain.ErrSubmissionNotFound) {
		return nil, fmt.Errorf("check existing submission: %w", err)
	}

	sub.ID = uuid.New()
	sub.SubmittedAt = time.Now().UTC()
	sub.IsReviewed = false
	sub.ReviewID = nil

	if err := s.store.CreateSubmission(ctx, sub); err != nil {
		if errors.Is(err, domain.ErrDuplicateSubmission) {
			// Lost the race to a concurrent insert
			if existing, lookupErr := s.store.GetSubmissionByUserChallenge(ctx, sub.UserID, sub.ChallengeID); lookupErr == nil {
				return nil, &DuplicateError{ExistingID: existing.ID}
			}
			return nil, err
		}
		return nil, fmt.Errorf("persist submission: %w", err)
	}

	s.logger.Info("submission accepted",
		"submission_id", sub.ID,
		"challenge_id", sub.ChallengeID,
		"user_id", sub.UserID,
		"language", sub.Language)

	return sub, nil
}

// Get returns a submission by id
func (s *Service) Get(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	return s.store.GetSubmission(ctx, id)
}

// ListByUser returns all submissions for a user, newest first
func (s *Service) ListByUser(ctx context.Context, userID string) ([]*domain.Submission, error) {
	if userID == "" {
		userID = domain.AnonymousUser
	}
	return s.store.ListSubmissionsByUser(ctx, userID)
}
