package domain

import (
	"fmt"
	"time"
)

// Weekly goal bounds (challenges per week, user-settable).
const (
	MinWeeklyGoal     = 1
	MaxWeeklyGoal     = 20
	DefaultWeeklyGoal = 3
)

// DifficultyStat tracks completion within one difficulty tier
type DifficultyStat struct {
	Completed int `json:"completed"`
	Total     int `json:"total"`
}

// Achievement is an unlocked milestone. Once unlocked it is never removed.
type Achievement struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	UnlockedAt  time.Time `json:"unlockedAt"`
}

// MonthlyStat summarizes one calendar month of review activity
type MonthlyStat struct {
	Month        string  `json:"month"` // "2026-08"
	Completed    int     `json:"challengesCompleted"`
	AverageScore float64 `json:"averageScore"`
}

// Progress is the per-user derived summary of submission and review history.
// All aggregate fields are recomputed in full from history on every fetch;
// only Achievements and WeeklyGoal carry state that is not re-derivable.
type Progress struct {
	UserID               string                        `json:"userId"`
	TotalChallenges      int                           `json:"totalChallenges"`
	CompletedChallenges  int                           `json:"completedChallenges"`
	AverageScore         float64                       `json:"averageScore"`
	CurrentStreak        int                           `json:"currentStreak"`
	LongestStreak        int                           `json:"longestStreak"`
	LastChallengeAt      *time.Time                    `json:"lastChallengeAt,omitempty"`
	SkillScores          map[Category]float64          `json:"skillScores"`
	DifficultyProgress   map[Difficulty]DifficultyStat `json:"difficultyProgress"`
	Achievements         []Achievement                 `json:"achievements"`
	WeeklyGoal           int                           `json:"weeklyGoal"`
	MonthlyStats         []MonthlyStat                 `json:"monthlyStats"`
	LastActive           time.Time                     `json:"lastActive"`
	CreatedAt            time.Time                     `json:"createdAt"`
	UpdatedAt            time.Time                     `json:"updatedAt"`
}

// NewProgress creates an empty progress record for a user
func NewProgress(userID string) *Progress {
	now := time.Now()
	p := &Progress{
		UserID:             userID,
		SkillScores:        make(map[Category]float64, len(Categories())),
		DifficultyProgress: make(map[Difficulty]DifficultyStat, len(Difficulties())),
		Achievements:       []Achievement{},
		MonthlyStats:       []MonthlyStat{},
		WeeklyGoal:         DefaultWeeklyGoal,
		LastActive:         now,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	for _, c := range Categories() {
		p.SkillScores[c] = 0
	}
	for _, d := range Difficulties() {
		p.DifficultyProgress[d] = DifficultyStat{}
	}
	return p
}

// HasAchievement reports whether the achievement id is already unlocked
func (p *Progress) HasAchievement(id string) bool {
	for _, a := range p.Achievements {
		if a.ID == id {
			return true
		}
	}
	return false
}

// ValidateWeeklyGoal checks the user-settable goal range.
func ValidateWeeklyGoal(goal int) error {
	if goal < MinWeeklyGoal || goal > MaxWeeklyGoal {
		return fmt.Errorf("%w: weekly goal must be between %d and %d",
			ErrInvalidInput, MinWeeklyGoal, MaxWeeklyGoal)
	}
	return nil
}
