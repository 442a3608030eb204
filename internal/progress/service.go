package progress

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/gil-sasi/code-mentor/internal/domain"
)

// maxStreak caps the simplified streak counter. The streak is derived from
// completed challenge count, not from consecutive-day activity.
const maxStreak = 10

// Store defines the persistence operations the progress service needs
type Store interface {
	ListSubmissionsByUser(ctx context.Context, userID string) ([]*domain.Submission, error)
	ListReviewsByUser(ctx context.Context, userID string) ([]*domain.Review, error)
	GetChallenge(ctx context.Context, id uuid.UUID) (*domain.Challenge, error)
	CountChallengesByDifficulty(ctx context.Context) (map[domain.Difficulty]int, error)

	GetProgress(ctx context.Context, userID string) (*domain.Progress, error)
	UpsertProgress(ctx context.Context, p *domain.Progress) error
}

// Service recomputes per-user progress aggregates from the full submission
// and review history on every fetch. The stored record is a materialized
// view; only achievements, weekly goal, and longest streak carry state that
// cannot be re-derived.
type Service struct {
	store  Store
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a new progress service
func NewService(store Store, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// aggregate is the recomputed view of a user's history
type aggregate struct {
	totalChallenges     int
	completedChallenges int
	averageScore        float64
	currentStreak       int
	skillScores         map[domain.Category]float64
	difficultyProgress  map[domain.Difficulty]domain.DifficultyStat
	monthlyStats        []domain.MonthlyStat
	lastChallengeAt     *time.Time
	hasPerfectScore     bool
}

// Get recomputes and persists the user's progress, returning the fresh view.
func (s *Service) Get(ctx context.Context, userID string) (*domain.Progress, error) {
	return s.refresh(ctx, userID, nil)
}

// SetWeeklyGoal updates the user's weekly goal and returns the recomputed
// progress. The goal must be between 1 and 20.
func (s *Service) SetWeeklyGoal(ctx context.Context, userID string, goal int) (*domain.Progress, error) {
	if err := domain.ValidateWeeklyGoal(goal); err != nil {
		return nil, err
	}
	return s.refresh(ctx, userID, func(p *domain.Progress) {
		p.WeeklyGoal = goal
	})
}

func (s *Service) refresh(ctx context.Context, userID string, mutate func(*domain.Progress)) (*domain.Progress, error) {
	p, err := s.store.GetProgress(ctx, userID)
	if errors.Is(err, domain.ErrProgressNotFound) {
		p = domain.NewProgress(userID)
	} else if err != nil {
		return nil, fmt.Errorf("load progress: %w", err)
	}

	agg, err := s.compute(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()

	p.TotalChallenges = agg.totalChallenges
	p.CompletedChallenges = agg.completedChallenges
	p.AverageScore = agg.averageScore
	p.CurrentStreak = agg.currentStreak
	if agg.currentStreak > p.LongestStreak {
		p.LongestStreak = agg.currentStreak
	}
	p.LastChallengeAt = agg.lastChallengeAt
	p.SkillScores = agg.skillScores
	p.DifficultyProgress = agg.difficultyProgress
	p.MonthlyStats = agg.monthlyStats
	p.LastActive = now
	p.UpdatedAt = now

	for _, rule := range achievementRules {
		if p.HasAchievement(rule.ID) {
			continue
		}
		if rule.Unlocked(agg) {
			p.Achievements = append(p.Achievements, domain.Achievement{
				ID:          rule.ID,
				Title:       rule.Title,
				Description: rule.Description,
				Icon:        rule.Icon,
				UnlockedAt:  now,
			})
			s.logger.Info("achievement unlocked", "user_id", userID, "achievement", rule.ID)
		}
	}

	if mutate != nil {
		mutate(p)
	}

	if err := s.store.UpsertProgress(ctx, p); err != nil {
		return nil, fmt.Errorf("persist progress: %w", err)
	}

	return p, nil
}

func (s *Service) compute(ctx context.Context, userID string) (*aggregate, error) {
	subs, err := s.store.ListSubmissionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load submissions: %w", err)
	}
	reviews, err := s.store.ListReviewsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load reviews: %w", err)
	}
	totals, err := s.store.CountChallengesByDifficulty(ctx)
	if err != nil {
		return nil, fmt.Errorf("count challenges: %w", err)
	}

	agg := &aggregate{
		skillScores:        make(map[domain.Category]float64, len(domain.Categories())),
		difficultyProgress: make(map[domain.Difficulty]domain.DifficultyStat, len(domain.Difficulties())),
		monthlyStats:       []domain.MonthlyStat{},
	}
	for _, c := range domain.Categories() {
		agg.skillScores[c] = 0
	}
	for _, d := range domain.Difficulties() {
		agg.difficultyProgress[d] = domain.DifficultyStat{Total: totals[d]}
	}

	agg.totalChallenges = len(subs)
	for _, sub := range subs {
		if sub.IsReviewed {
			agg.completedChallenges++
		}
		if agg.lastChallengeAt == nil || sub.SubmittedAt.After(*agg.lastChallengeAt) {
			t := sub.SubmittedAt
			agg.lastChallengeAt = &t
		}
	}

	// Streak is a simplification: completed count capped at maxStreak,
	// not consecutive-day activity.
	agg.currentStreak = agg.completedChallenges
	if agg.currentStreak > maxStreak {
		agg.currentStreak = maxStreak
	}

	if len(reviews) == 0 {
		return agg, nil
	}

	// Per-category and per-difficulty rollups need each review's challenge
	challenges := make(map[uuid.UUID]*domain.Challenge)
	var scoreSum float64
	catSum := make(map[domain.Category]float64)
	catCount := make(map[domain.Category]int)
	monthCompleted := make(map[string]int)
	monthScoreSum := make(map[string]float64)

	for _, r := range reviews {
		scoreSum += float64(r.OverallScore)
		if r.OverallScore == 10 {
			agg.hasPerfectScore = true
		}

		month := r.ReviewedAt.UTC().Format("2006-01")
		monthCompleted[month]++
		monthScoreSum[month] += float64(r.OverallScore)

		ch, ok := challenges[r.ChallengeID]
		if !ok {
			ch, err = s.store.GetChallenge(ctx, r.ChallengeID)
			if err != nil {
				if errors.Is(err, domain.ErrChallengeNotFound) {
					s.logger.Warn("review references missing challenge",
						"review_id", r.ID, "challenge_id", r.ChallengeID)
					continue
				}
				return nil, fmt.Errorf("load challenge: %w", err)
			}
			challenges[r.ChallengeID] = ch
		}

		catSum[ch.Category] += float64(r.OverallScore)
		catCount[ch.Category]++

		stat := agg.difficultyProgress[ch.Difficulty]
		stat.Completed++
		agg.difficultyProgress[ch.Difficulty] = stat
	}

	agg.averageScore = scoreSum / float64(len(reviews))
	for c, n := range catCount {
		agg.skillScores[c] = catSum[c] / float64(n)
	}

	months := make([]string, 0, len(monthCompleted))
	for m := range monthCompleted {
		months = append(months, m)
	}
	sort.Strings(months)
	for _, m := range months {
		agg.monthlyStats = append(agg.monthlyStats, domain.MonthlyStat{
			Month:        m,
			Completed:    monthCompleted[m],
			AverageScore: monthScoreSum[m] / float64(monthCompleted[m]),
		})
	}

	return agg, nil
}
