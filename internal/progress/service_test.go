package progress

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"reflect"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/gil-sasi/code-mentor/internal/domain"
)

type fakeStore struct {
	submissions []*domain.Submission
	reviews     []*domain.Review
	challenges  map[uuid.UUID]*domain.Challenge
	progress    map[string]*domain.Progress
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		challenges: make(map[uuid.UUID]*domain.Challenge),
		progress:   make(map[string]*domain.Progress),
	}
}

func (s *fakeStore) ListSubmissionsByUser(ctx context.Context, userID string) ([]*domain.Submission, error) {
	var out []*domain.Submission
	for _, sub := range s.submissions {
		if sub.UserID == userID {
			out = append(out, sub)
		}
	}
	return out, nil
}

func (s *fakeStore) ListReviewsByUser(ctx context.Context, userID string) ([]*domain.Review, error) {
	var out []*domain.Review
	for _, r := range s.reviews {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

func (s *fakeStore) GetChallenge(ctx context.Context, id uuid.UUID) (*domain.Challenge, error) {
	ch, ok := s.challenges[id]
	if !ok {
		return nil, domain.ErrChallengeNotFound
	}
	return ch, nil
}

func (s *fakeStore) CountChallengesByDifficulty(ctx context.Context) (map[domain.Difficulty]int, error) {
	counts := make(map[domain.Difficulty]int)
	for _, ch := range s.challenges {
		counts[ch.Difficulty]++
	}
	return counts, nil
}

func (s *fakeStore) GetProgress(ctx context.Context, userID string) (*domain.Progress, error) {
	p, ok := s.progress[userID]
	if !ok {
		return nil, domain.ErrProgressNotFound
	}
	return p, nil
}

func (s *fakeStore) UpsertProgress(ctx context.Context, p *domain.Progress) error {
	s.progress[p.UserID] = p
	return nil
}

// addCompleted seeds a challenge, a reviewed submission, and its review
func (s *fakeStore) addCompleted(userID string, difficulty domain.Difficulty, category domain.Category, score int, reviewedAt time.Time) {
	ch := &domain.Challenge{
		ID:            uuid.New(),
		Title:         "seeded",
		Description:   "seeded challenge",
		Difficulty:    difficulty,
		Category:      category,
		Requirements:  []string{"r"},
		Hints:         []string{"h"},
		Technologies:  []string{"t"},
		EstimatedTime: 30,
		CreatedAt:     reviewedAt,
		IsActive:      true,
	}
	s.challenges[ch.ID] = ch

	reviewID := uuid.New()
	sub := &domain.Submission{
		ID:          uuid.New(),
		UserID:      userID,
		ChallengeID: ch.ID,
		Code:        "const x = 1;",
		Language:    domain.LanguageJavaScript,
		Method:      domain.MethodDirect,
		SubmittedAt: reviewedAt,
		IsReviewed:  true,
		ReviewID:    &reviewID,
	}
	s.submissions = append(s.submissions, sub)

	s.reviews = append(s.reviews, &domain.Review{
		ID:            reviewID,
		SubmissionID:  sub.ID,
		UserID:        userID,
		ChallengeID:   ch.ID,
		OverallScore:  score,
		Feedback:      domain.Feedback{Strengths: []string{"s"}, Improvements: []string{"i"}},
		ReviewedAt:    reviewedAt,
		Model:         "heuristic-v1",
		FormatVersion: domain.ReviewFormatVersion,
	})
}

func testService(store *fakeStore) *Service {
	svc := NewService(store, slog.New(slog.NewTextHandler(io.Discard, nil)))
	return svc
}

func TestService_Get_EmptyHistory(t *testing.T) {
	store := newFakeStore()
	svc := testService(store)

	p, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.CompletedChallenges != 0 {
		t.Errorf("CompletedChallenges = %d, want 0", p.CompletedChallenges)
	}
	if p.AverageScore != 0 {
		t.Errorf("AverageScore = %v, want 0", p.AverageScore)
	}
	if len(p.Achievements) != 0 {
		t.Errorf("Achievements = %v, want none", p.Achievements)
	}
	if p.WeeklyGoal != domain.DefaultWeeklyGoal {
		t.Errorf("WeeklyGoal = %d, want default %d", p.WeeklyGoal, domain.DefaultWeeklyGoal)
	}
	for _, c := range domain.Categories() {
		if p.SkillScores[c] != 0 {
			t.Errorf("SkillScores[%s] = %v, want 0", c, p.SkillScores[c])
		}
	}
}

func TestService_Get_FirstCompletion(t *testing.T) {
	store := newFakeStore()
	store.addCompleted("user-1", domain.DifficultyBeginner, domain.CategoryReact, 5, time.Now().UTC())
	svc := testService(store)

	p, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.CompletedChallenges != 1 {
		t.Errorf("CompletedChallenges = %d, want 1", p.CompletedChallenges)
	}
	if p.AverageScore != 5 {
		t.Errorf("AverageScore = %v, want 5", p.AverageScore)
	}
	if p.SkillScores[domain.CategoryReact] != 5 {
		t.Errorf("SkillScores[react] = %v, want 5", p.SkillScores[domain.CategoryReact])
	}
	if !p.HasAchievement("first_challenge") {
		t.Error("first_challenge achievement not unlocked")
	}
	got := p.DifficultyProgress[domain.DifficultyBeginner]
	if got.Completed != 1 || got.Total != 1 {
		t.Errorf("beginner progress = %+v, want {1 1}", got)
	}
}

func TestService_Get_PureRecomputation(t *testing.T) {
	// Two consecutive fetches with no intervening writes must produce
	// identical aggregate fields.
	store := newFakeStore()
	now := time.Now().UTC()
	store.addCompleted("user-1", domain.DifficultyBeginner, domain.CategoryReact, 7, now)
	store.addCompleted("user-1", domain.DifficultyIntermediate, domain.CategoryJavaScript, 6, now)
	store.addCompleted("user-1", domain.DifficultyAdvanced, domain.CategoryCSS, 4, now)
	svc := testService(store)

	first, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("first Get() error = %v", err)
	}
	second, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("second Get() error = %v", err)
	}

	if first.CompletedChallenges != second.CompletedChallenges {
		t.Errorf("CompletedChallenges drifted: %d vs %d", first.CompletedChallenges, second.CompletedChallenges)
	}
	if first.AverageScore != second.AverageScore {
		t.Errorf("AverageScore drifted: %v vs %v", first.AverageScore, second.AverageScore)
	}
	if !reflect.DeepEqual(first.SkillScores, second.SkillScores) {
		t.Errorf("SkillScores drifted: %v vs %v", first.SkillScores, second.SkillScores)
	}
	if !reflect.DeepEqual(first.DifficultyProgress, second.DifficultyProgress) {
		t.Errorf("DifficultyProgress drifted: %v vs %v", first.DifficultyProgress, second.DifficultyProgress)
	}
}

func TestService_Get_AchievementMonotonicity(t *testing.T) {
	store := newFakeStore()
	now := time.Now().UTC()
	for i := 0; i < 3; i++ {
		store.addCompleted("user-1", domain.DifficultyBeginner, domain.CategoryReact, 6, now)
	}
	svc := testService(store)

	first, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !first.HasAchievement("streak_3") {
		t.Fatal("streak_3 not unlocked at 3 completions")
	}
	unlockedAt := map[string]time.Time{}
	for _, a := range first.Achievements {
		unlockedAt[a.ID] = a.UnlockedAt
	}

	second, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("second Get() error = %v", err)
	}
	if len(second.Achievements) != len(first.Achievements) {
		t.Errorf("achievement count changed: %d vs %d", len(first.Achievements), len(second.Achievements))
	}
	for _, a := range second.Achievements {
		if ts, ok := unlockedAt[a.ID]; !ok {
			t.Errorf("achievement %s lost or re-added", a.ID)
		} else if !a.UnlockedAt.Equal(ts) {
			t.Errorf("achievement %s unlock time changed", a.ID)
		}
	}
}

func TestService_Get_StreakCap(t *testing.T) {
	store := newFakeStore()
	now := time.Now().UTC()
	for i := 0; i < 12; i++ {
		store.addCompleted("user-1", domain.DifficultyBeginner, domain.CategoryGeneral, 5, now)
	}
	svc := testService(store)

	p, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.CurrentStreak != maxStreak {
		t.Errorf("CurrentStreak = %d, want capped at %d", p.CurrentStreak, maxStreak)
	}
	if p.LongestStreak != maxStreak {
		t.Errorf("LongestStreak = %d, want %d", p.LongestStreak, maxStreak)
	}
	if !p.HasAchievement("streak_7") {
		t.Error("streak_7 not unlocked")
	}
	if !p.HasAchievement("beginner_master") {
		t.Error("beginner_master not unlocked at 12 beginner completions")
	}
	if p.HasAchievement("advanced_master") {
		t.Error("advanced_master unlocked without advanced completions")
	}
}

func TestService_Get_PerfectScore(t *testing.T) {
	store := newFakeStore()
	store.addCompleted("user-1", domain.DifficultyBeginner, domain.CategoryReact, 10, time.Now().UTC())
	svc := testService(store)

	p, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !p.HasAchievement("perfect_score") {
		t.Error("perfect_score not unlocked for a 10/10 review")
	}
}

func TestService_Get_MonthlyStats(t *testing.T) {
	store := newFakeStore()
	jan := time.Date(2026, time.January, 15, 12, 0, 0, 0, time.UTC)
	feb := time.Date(2026, time.February, 3, 9, 0, 0, 0, time.UTC)
	store.addCompleted("user-1", domain.DifficultyBeginner, domain.CategoryReact, 4, jan)
	store.addCompleted("user-1", domain.DifficultyBeginner, domain.CategoryReact, 8, jan)
	store.addCompleted("user-1", domain.DifficultyBeginner, domain.CategoryReact, 7, feb)
	svc := testService(store)

	p, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	want := []domain.MonthlyStat{
		{Month: "2026-01", Completed: 2, AverageScore: 6},
		{Month: "2026-02", Completed: 1, AverageScore: 7},
	}
	if !reflect.DeepEqual(p.MonthlyStats, want) {
		t.Errorf("MonthlyStats = %+v, want %+v", p.MonthlyStats, want)
	}
}

func TestService_SetWeeklyGoal(t *testing.T) {
	store := newFakeStore()
	svc := testService(store)

	t.Run("valid goal", func(t *testing.T) {
		p, err := svc.SetWeeklyGoal(context.Background(), "user-1", 5)
		if err != nil {
			t.Fatalf("SetWeeklyGoal() error = %v", err)
		}
		if p.WeeklyGoal != 5 {
			t.Errorf("WeeklyGoal = %d, want 5", p.WeeklyGoal)
		}

		// Goal survives subsequent recomputation
		p, err = svc.Get(context.Background(), "user-1")
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		if p.WeeklyGoal != 5 {
			t.Errorf("WeeklyGoal after refetch = %d, want 5", p.WeeklyGoal)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		for _, goal := range []int{0, -1, 21, 100} {
			_, err := svc.SetWeeklyGoal(context.Background(), "user-1", goal)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("SetWeeklyGoal(%d) error = %v, want ErrInvalidInput", goal, err)
			}
		}
	})
}

func TestService_Get_UnreviewedNotCounted(t *testing.T) {
	store := newFakeStore()
	store.addCompleted("user-1", domain.DifficultyBeginner, domain.CategoryReact, 6, time.Now().UTC())

	// An unreviewed submission counts toward totals but not completions
	store.submissions = append(store.submissions, &domain.Submission{
		ID:          uuid.New(),
		UserID:      "user-1",
		ChallengeID: uuid.New(),
		Code:        "let y = 2;",
		Language:    domain.LanguageJavaScript,
		Method:      domain.MethodDirect,
		SubmittedAt: time.Now().UTC(),
	})
	svc := testService(store)

	p, err := svc.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if p.TotalChallenges != 2 {
		t.Errorf("TotalChallenges = %d, want 2", p.TotalChallenges)
	}
	if p.CompletedChallenges != 1 {
		t.Errorf("CompletedChallenges = %d, want 1", p.CompletedChallenges)
	}
}
