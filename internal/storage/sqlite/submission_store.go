package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/gil-sasi/code-mentor/internal/domain"
)

// SubmissionStore implements submission persistence backed by SQLite.
type SubmissionStore struct {
	db *DB
}

// NewSubmissionStore creates a new SQLite-backed submission store.
func NewSubmissionStore(db *DB) *SubmissionStore {
	return &SubmissionStore{db: db}
}

// CreateSubmission inserts a new submission. The UNIQUE(user_id, challenge_id)
// constraint enforces at most one submission per user and challenge even
// under concurrent requests.
func (s *SubmissionStore) CreateSubmission(ctx context.Context, sub *domain.Submission) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO submissions (id, user_id, challenge_id, code, language, method,
			github_url, pastebin_url, notes, submitted_at, is_reviewed, review_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)`,
		sub.ID.String(), sub.UserID, sub.ChallengeID.String(), sub.Code,
		string(sub.Language), string(sub.Method),
		sub.GithubURL, sub.PastebinURL, sub.Notes, sub.SubmittedAt, sub.IsReviewed,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateSubmission
		}
		return fmt.Errorf("insert submission: %w", err)
	}
	return nil
}

// GetSubmission retrieves a submission by id.
func (s *SubmissionStore) GetSubmission(ctx context.Context, id uuid.UUID) (*domain.Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, challenge_id, code, language, method,
			github_url, pastebin_url, notes, submitted_at, is_reviewed, review_id
		FROM submissions WHERE id = ?`, id.String())

	return scanSubmission(row)
}

// GetSubmissionByUserChallenge retrieves the submission a user made for a
// challenge, if any.
func (s *SubmissionStore) GetSubmissionByUserChallenge(ctx context.Context, userID string, challengeID uuid.UUID) (*domain.Submission, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, challenge_id, code, language, method,
			github_url, pastebin_url, notes, submitted_at, is_reviewed, review_id
		FROM submissions WHERE user_id = ? AND challenge_id = ?`,
		userID, challengeID.String())

	return scanSubmission(row)
}

// ListSubmissionsByUser returns all submissions for a user, newest first.
func (s *SubmissionStore) ListSubmissionsByUser(ctx context.Context, userID string) ([]*domain.Submission, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, challenge_id, code, language, method,
			github_url, pastebin_url, notes, submitted_at, is_reviewed, review_id
		FROM submissions WHERE user_id = ? ORDER BY submitted_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	defer rows.Close()

	var out []*domain.Submission
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sub)
	}
	return out, rows.Err()
}

// MarkSubmissionReviewed conditionally flips the reviewed flag and links the
// review. The WHERE clause makes the claim atomic: only one caller ever sees
// a positive row count for a given submission.
func (s *SubmissionStore) MarkSubmissionReviewed(ctx context.Context, submissionID, reviewID uuid.UUID) (bool, error) {
	res, err := s.db.ExecContext(ctx, `
		UPDATE submissions SET is_reviewed = 1, review_id = ?
		WHERE id = ? AND is_reviewed = 0`,
		reviewID.String(), submissionID.String())
	if err != nil {
		return false, fmt.Errorf("mark submission reviewed: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

func scanSubmission(row rowScanner) (*domain.Submission, error) {
	var sub domain.Submission
	var id, challengeID, language, method string
	var reviewID sql.NullString

	err := row.Scan(&id, &sub.UserID, &challengeID, &sub.Code, &language, &method,
		&sub.GithubURL, &sub.PastebinURL, &sub.Notes, &sub.SubmittedAt,
		&sub.IsReviewed, &reviewID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrSubmissionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan submission: %w", err)
	}

	sub.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse submission id: %w", err)
	}
	sub.ChallengeID, err = uuid.Parse(challengeID)
	if err != nil {
		return nil, fmt.Errorf("parse challenge id: %w", err)
	}
	sub.Language = domain.Language(language)
	sub.Method = domain.SubmissionMethod(method)

	if reviewID.Valid {
		rid, err := uuid.Parse(reviewID.String)
		if err != nil {
			return nil, fmt.Errorf("parse review id: %w", err)
		}
		sub.ReviewID = &rid
	}

	return &sub, nil
}
