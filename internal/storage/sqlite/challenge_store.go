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

// ChallengeStore implements challenge persistence backed by SQLite.
type ChallengeStore struct {
	db *DB
}

// NewChallengeStore creates a new SQLite-backed challenge store.
func NewChallengeStore(db *DB) *ChallengeStore {
	return &ChallengeStore{db: db}
}

// CreateChallenge inserts a new challenge. Challenges are immutable once
// created, so there is no update path.
func (s *ChallengeStore) CreateChallenge(ctx context.Context, ch *domain.Challenge) error {
	requirements, err := json.Marshal(ch.Requirements)
	if err != nil {
		return fmt.Errorf("marshal requirements: %w", err)
	}
	hints, err := json.Marshal(ch.Hints)
	if err != nil {
		return fmt.Errorf("marshal hints: %w", err)
	}
	technologies, err := json.Marshal(ch.Technologies)
	if err != nil {
		return fmt.Errorf("marshal technologies: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO challenges (id, title, description, difficulty, category,
			requirements, hints, technologies, estimated_time, example_code,
			created_at, user_id, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ch.ID.String(), ch.Title, ch.Description, string(ch.Difficulty), string(ch.Category),
		string(requirements), string(hints), string(technologies), ch.EstimatedTime, ch.ExampleCode,
		ch.CreatedAt, ch.UserID, ch.IsActive,
	)
	if err != nil {
		return fmt.Errorf("insert challenge: %w", err)
	}
	return nil
}

// GetChallenge retrieves a challenge by id.
func (s *ChallengeStore) GetChallenge(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, description, difficulty, category,
			requirements, hints, technologies, estimated_time, example_code,
			created_at, user_id, is_active
		FROM challenges WHERE id = ?`, id.String())

	return scanChallenge(row)
}

// ListChallenges returns the most recent challenges created for a user.
func (s *ChallengeStore) ListChallenges(ctx context.Context, userID string, limit int) ([]*domain.Challenge, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, description, difficulty, category,
			requirements, hints, technologies, estimated_time, example_code,
			created_at, user_id, is_active
		FROM challenges
		WHERE user_id = ? AND is_active = 1
		ORDER BY created_at DESC
		LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list challenges: %w", err)
	}
	defer rows.Close()

	var out []*domain.Challenge
	for rows.Next() {
		ch, err := scanChallenge(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ch)
	}
	return out, rows.Err()
}

// CountChallengesByDifficulty counts all active challenges per difficulty.
func (s *ChallengeStore) CountChallengesByDifficulty(ctx context.Context) (map[domain.Difficulty]int, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT difficulty, COUNT(*) FROM challenges WHERE is_active = 1 GROUP BY difficulty`)
	if err != nil {
		return nil, fmt.Errorf("count challenges: %w", err)
	}
	defer rows.Close()

	counts := make(map[domain.Difficulty]int)
	for rows.Next() {
		var difficulty string
		var n int
		if err := rows.Scan(&difficulty, &n); err != nil {
			return nil, fmt.Errorf("scan challenge count: %w", err)
		}
		counts[domain.Difficulty(difficulty)] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanChallenge(row rowScanner) (*domain.Challenge, error) {
	var ch domain.Challenge
	var id, difficulty, category string
	var requirements, hints, technologies string

	err := row.Scan(&id, &ch.Title, &ch.Description, &difficulty, &category,
		&requirements, &hints, &technologies, &ch.EstimatedTime, &ch.ExampleCode,
		&ch.CreatedAt, &ch.UserID, &ch.IsActive)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrChallengeNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan challenge: %w", err)
	}

	ch.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse challenge id: %w", err)
	}
	ch.Difficulty = domain.Difficulty(difficulty)
	ch.Category = domain.Category(category)

	if err := json.Unmarshal([]byte(requirements), &ch.Requirements); err != nil {
		return nil, fmt.Errorf("unmarshal requirements: %w", err)
	}
	if err := json.Unmarshal([]byte(hints), &ch.Hints); err != nil {
		return nil, fmt.Errorf("unmarshal hints: %w", err)
	}
	if err := json.Unmarshal([]byte(technologies), &ch.Technologies); err != nil {
		return nil, fmt.Errorf("unmarshal technologies: %w", err)
	}

	return &ch, nil
}
