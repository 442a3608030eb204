package progress

import "github.com/gil-sasi/code-mentor/internal/domain"

// achievementRule pairs an achievement definition with its unlock predicate.
// Rules are evaluated against the freshly recomputed aggregate on every
// progress fetch; an unlocked achievement is never re-evaluated or removed.
type achievementRule struct {
	ID          string
	Title       string
	Description string
	Icon        string
	Unlocked    func(agg *aggregate) bool
}

var achievementRules = []achievementRule{
	{
		ID:          "first_challenge",
		Title:       "First Steps",
		Description: "Complete your first coding challenge",
		Icon:        "🎯",
		Unlocked: func(agg *aggregate) bool {
			return agg.completedChallenges >= 1
		},
	},
	{
		ID:          "streak_3",
		Title:       "Getting Warm",
		Description: "Reach a streak of 3",
		Icon:        "🔥",
		Unlocked: func(agg *aggregate) bool {
			return agg.currentStreak >= 3
		},
	},
	{
		ID:          "streak_7",
		Title:       "On Fire",
		Description: "Reach a streak of 7",
		Icon:        "⚡",
		Unlocked: func(agg *aggregate) bool {
			return agg.currentStreak >= 7
		},
	},
	{
		ID:          "perfect_score",
		Title:       "Flawless",
		Description: "Receive a perfect 10 on a code review",
		Icon:        "💯",
		Unlocked: func(agg *aggregate) bool {
			return agg.hasPerfectScore
		},
	},
	{
		ID:          "beginner_master",
		Title:       "Beginner Master",
		Description: "Complete 10 beginner challenges",
		Icon:        "🌱",
		Unlocked: func(agg *aggregate) bool {
			return agg.difficultyProgress[domain.DifficultyBeginner].Completed >= 10
		},
	},
	{
		ID:          "intermediate_master",
		Title:       "Intermediate Master",
		Description: "Complete 10 intermediate challenges",
		Icon:        "🚀",
		Unlocked: func(agg *aggregate) bool {
			return agg.difficultyProgress[domain.DifficultyIntermediate].Completed >= 10
		},
	},
	{
		ID:          "advanced_master",
		Title:       "Advanced Master",
		Description: "Complete 10 advanced challenges",
		Icon:        "🏆",
		Unlocked: func(agg *aggregate) bool {
			return agg.difficultyProgress[domain.DifficultyAdvanced].Completed >= 10
		},
	},
}
