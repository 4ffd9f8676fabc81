package seeds

import (
	"context"
	"errors"
	"fmt"

	"github.com/pavangundu/ai-helper/internal/models"
	"github.com/pavangundu/ai-helper/internal/services"
	"github.com/pavangundu/ai-helper/internal/store"
	apperrors "github.com/pavangundu/ai-helper/pkg/errors"
	"github.com/pavangundu/ai-helper/pkg/logger"
	"gorm.io/gorm"
)

const (
	DemoEmail    = "demo@ai-helper.dev"
	DemoPassword = "DemoPrep2026"
)

var demoTopics = []struct {
	title, aptitude, dsa, core string
}{
	{"Getting started", "Number system: divisibility rules", "Arrays: traversal and prefix sums", "Go: variables, types and control flow"},
	{"Ratios", "Ratio and proportion", "Arrays: two pointers", "Go: slices and maps"},
	{"Percentages", "Percentages and successive change", "Strings: sliding window", "Go: structs and methods"},
	{"Speed", "Time, speed and distance", "Hashing: frequency counting", "Go: interfaces"},
	{"Work", "Time and work", "Stacks: balanced brackets", "Go: error handling"},
	{"Probability", "Permutations and combinations", "Queues: BFS on a grid", "Go: goroutines and channels"},
	{"Review", "Mixed aptitude quiz", "Binary search on answers", "Go: testing with testify"},
}

// DemoPlan is a two-week plan used for the demo account and local development.
func DemoPlan() *models.RoadmapPlan {
	month := models.PlanMonth{Month: 1}
	for w := 1; w <= 2; w++ {
		week := models.PlanWeek{Week: w}
		for d, topic := range demoTopics {
			week.DailyTasks = append(week.DailyTasks, models.PlanDay{
				Day:          d + 1,
				Title:        fmt.Sprintf("Week %d: %s", w, topic.title),
				Description:  "Warm up with aptitude, then one DSA pattern, then the core skill.",
				AptitudeTask: topic.aptitude,
				DSATask:      topic.dsa,
				CoreTask:     topic.core,
				Resources:    []string{"https://go.dev/doc/effective_go"},
			})
		}
		month.Weeks = append(month.Weeks, week)
	}
	return &models.RoadmapPlan{Months: []models.PlanMonth{month}}
}

// SeedDemoProfile creates the demo account with an active roadmap. It is a no-op when
// the account already exists.
func SeedDemoProfile(ctx context.Context, db *gorm.DB) error {
	profiles := store.NewProfileStore(db)
	roadmaps := store.NewRoadmapStore(db)

	existing, err := profiles.FindByEmail(ctx, DemoEmail)
	if err == nil {
		logger.Info().Str("profile_id", existing.ID).Msg("Demo profile already exists")
		return nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}

	svc := services.NewProfileService(profiles, roadmaps, services.NewActivityLog(store.NewActivityStore(db)), nil)
	p, err := svc.Register(ctx, services.RegisterInput{
		Name:     "Demo Student",
		Email:    DemoEmail,
		Password: DemoPassword,
		Settings: models.ProfileSettings{
			TargetRole:     "Backend Developer",
			CoreSkill:      "Go",
			CurrentLevel:   "Beginner",
			DailyStudyTime: 90,
			GoalTimeline:   "2 weeks",
		},
	})
	if err != nil {
		return err
	}

	days, err := services.IngestPlan(DemoPlan())
	if err != nil {
		return err
	}
	roadmap := &models.Roadmap{ProfileID: p.ID, Role: p.TargetRole, Days: days}
	if err := roadmaps.Create(ctx, roadmap); err != nil {
		return err
	}

	logger.Info().Str("profile_id", p.ID).Str("roadmap_id", roadmap.ID).Msg("Demo profile created")
	return nil
}
