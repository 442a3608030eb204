package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/gil-sasi/code-mentor/internal/domain"
)

// ProgressStore implements progress persistence backed by SQLite.
// The progress row is a materialized view, overwritten in full on every
// recomputation.
type ProgressStore struct {
	db *DB
}

// NewProgressStore creates a new SQLite-backed progress store.
func NewProgressStore(db *DB) *ProgressStore {
	return &ProgressStore{db: db}
}

// GetProgress retrieves a user's progress record.
func (s *ProgressStore) GetProgress(ctx context.Context, userID string) (*domain.Progress, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT user_id, total_challenges, completed_challenges, average_score,
			current_streak, longest_streak, last_challenge_at,
			skill_scores, difficulty_progress, achievements,
			weekly_goal, monthly_stats, last_active, created_at, updated_at
		FROM progress WHERE user_id = ?`, userID)

	var p domain.Progress
	var lastChallengeAt sql.NullTime
	var skillScores, difficultyProgress, achievements, monthlyStats string

	err := row.Scan(&p.UserID, &p.TotalChallenges, &p.CompletedChallenges, &p.AverageScore,
		&p.CurrentStreak, &p.LongestStreak, &lastChallengeAt,
		&skillScores, &difficultyProgress, &achievements,
		&p.WeeklyGoal, &monthlyStats, &p.LastActive, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrProgressNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan progress: %w", err)
	}

	if lastChallengeAt.Valid {
		t := lastChallengeAt.Time
		p.LastChallengeAt = &t
	}

	if err := json.Unmarshal([]byte(skillScores), &p.SkillScores); err != nil {
		return nil, fmt.Errorf("unmarshal skill_scores: %w", err)
	}
	if err := json.Unmarshal([]byte(difficultyProgress), &p.DifficultyProgress); err != nil {
		return nil, fmt.Errorf("unmarshal difficulty_progress: %w", err)
	}
	if err := json.Unmarshal([]byte(achievements), &p.Achievements); err != nil {
		return nil, fmt.Errorf("unmarshal achievements: %w", err)
	}
	if err := json.Unmarshal([]byte(monthlyStats), &p.MonthlyStats); err != nil {
		return nil, fmt.Errorf("unmarshal monthly_stats: %w", err)
	}

	return &p, nil
}

// UpsertProgress writes the full progress record (insert or overwrite).
func (s *ProgressStore) UpsertProgress(ctx context.Context, p *domain.Progress) error {
	skillScores, err := json.Marshal(p.SkillScores)
	if err != nil {
		return fmt.Errorf("marshal skill_scores: %w", err)
	}
	difficultyProgress, err := json.Marshal(p.DifficultyProgress)
	if err != nil {
		return fmt.Errorf("marshal difficulty_progress: %w", err)
	}
	achievements, err := json.Marshal(p.Achievements)
	if err != nil {
		return fmt.Errorf("marshal achievements: %w", err)
	}
	monthlyStats, err := json.Marshal(p.MonthlyStats)
	if err != nil {
		return fmt.Errorf("marshal monthly_stats: %w", err)
	}

	var lastChallengeAt any
	if p.LastChallengeAt != nil {
		lastChallengeAt = *p.LastChallengeAt
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO progress (user_id, total_challenges, completed_challenges,
			average_score, current_streak, longest_streak, last_challenge_at,
			skill_scores, difficulty_progress, achievements, weekly_goal,
			monthly_stats, last_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			total_challenges=excluded.total_challenges,
			completed_challenges=excluded.completed_challenges,
			average_score=excluded.average_score,
			current_streak=excluded.current_streak,
			longest_streak=excluded.longest_streak,
			last_challenge_at=excluded.last_challenge_at,
			skill_scores=excluded.skill_scores,
			difficulty_progress=excluded.difficulty_progress,
			achievements=excluded.achievements,
			weekly_goal=excluded.weekly_goal,
			monthly_stats=excluded.monthly_stats,
			last_active=excluded.last_active,
			updated_at=excluded.updated_at`,
		p.UserID, p.TotalChallenges, p.CompletedChallenges,
		p.AverageScore, p.CurrentStreak, p.LongestStreak, lastChallengeAt,
		string(skillScores), string(difficultyProgress), string(achievements),
		p.WeeklyGoal, string(monthlyStats), p.LastActive, p.CreatedAt, p.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert progress: %w", err)
	}
	return nil
}
