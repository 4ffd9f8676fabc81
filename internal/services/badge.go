package services

import (
	"slices"
	"time"

	"github.com/pavangundu/ai-helper/internal/models"
)

const (
	// StreakBadgeThreshold is the streak length that unlocks streak_7.
	StreakBadgeThreshold = 7
	// EarlyBirdHour: a full day finished before this local hour unlocks early_bird.
	EarlyBirdHour = 9
)

// BadgeCatalog is every badge the app knows about. quiz_master and dsa_solver have no
// grant rule yet (empty Condition) and are always shown locked.
var BadgeCatalog = []models.Badge{
	{
		ID:          models.BadgeStreak7,
		Name:        "Week Warrior",
		Description: "Complete full study days 7 days in a row.",
		Icon:        "flame",
		Category:    models.BadgeCategoryStreak,
		Condition:   "streak",
		Threshold:   StreakBadgeThreshold,
	},
	{
		ID:          models.BadgeEarlyBird,
		Name:        "Early Bird",
		Description: "Finish a full study day before 9 AM.",
		Icon:        "sunrise",
		Category:    models.BadgeCategoryHabit,
		Condition:   "day_completed_before_hour",
		Threshold:   EarlyBirdHour,
	},
	{
		ID:          models.BadgeQuizMaster,
		Name:        "Quiz Master",
		Description: "Ace aptitude quizzes.",
		Icon:        "brain",
		Category:    models.BadgeCategoryPractice,
	},
	{
		ID:          models.BadgeDSASolver,
		Name:        "DSA Solver",
		Description: "Solve data structures and algorithms problems.",
		Icon:        "code",
		Category:    models.BadgeCategoryPractice,
	},
}

// BadgeSignals is the snapshot the evaluator looks at.
type BadgeSignals struct {
	Streak int
	// DayCompleted is set only for the event where a day just became fully complete.
	DayCompleted bool
	// CompletedAt is the wall-clock time of that event, in the user's location.
	CompletedAt time.Time
}

// EvaluateBadges returns the badges earned by signals that are not in held, in catalog
// order. It never returns a held badge, so badges are only ever added.
func EvaluateBadges(held []string, s BadgeSignals) []string {
	var earned []string
	grant := func(id string) {
		if !slices.Contains(held, id) && !slices.Contains(earned, id) {
			earned = append(earned, id)
		}
	}

	if s.Streak >= StreakBadgeThreshold {
		grant(models.BadgeStreak7)
	}
	if s.DayCompleted && !s.CompletedAt.IsZero() && s.CompletedAt.Hour() < EarlyBirdHour {
		grant(models.BadgeEarlyBird)
	}
	return earned
}
