package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pavangundu/ai-helper/internal/models"
	apperrors "github.com/pavangundu/ai-helper/pkg/errors"
	"github.com/pavangundu/ai-helper/pkg/logger"
)

// maxDayUpdateAttempts bounds the optimistic retry loop on a contended day.
const maxDayUpdateAttempts = 3

// RewardPolicy sets the points and study minutes a completion earns.
type RewardPolicy struct {
	SubtaskPoints  int
	DayBonusPoints int
	StudyMinutes   map[models.Category]int
	// RepeatSubtaskRewards credits subtask points and minutes on every call, even when
	// the sub-task was already marked done. When false they are credited once per sub-task.
	RepeatSubtaskRewards bool
}

func DefaultRewardPolicy() RewardPolicy {
	return RewardPolicy{
		SubtaskPoints:  10,
		DayBonusPoints: 50,
		StudyMinutes: map[models.Category]int{
			models.CategoryAptitude: 10,
			models.CategoryDSA:      20,
			models.CategoryCore:     30,
		},
	}
}

// CompleteSubtaskInput addresses one sub-task of one day.
type CompleteSubtaskInput struct {
	ProfileID string
	RoadmapID string
	Address   models.DayAddress
	Category  models.Category
}

type CompletionResult struct {
	// DayCompleted is the day's completion state after the call.
	DayCompleted bool `json:"dayCompleted"`
	// JustCompleted is true only for the call that completed the day.
	JustCompleted     bool     `json:"justCompleted"`
	StreakIncremented bool     `json:"streakIncremented"`
	FlagAdded         bool     `json:"flagAdded"`
	PointsAwarded     int      `json:"pointsAwarded"`
	NewBadges         []string `json:"newBadges"`
	Streak            int      `json:"streak"`
	Points            int      `json:"points"`
}

// CompletionService marks sub-tasks done and credits the profile.
type CompletionService struct {
	profiles ProfileRepository
	roadmaps RoadmapRepository
	activity *ActivityLog
	progress *ProgressCache
	policy   RewardPolicy

	// Now and Location define "today" and the early-bird hour. Tests pin both.
	Now      func() time.Time
	Location *time.Location
}

func NewCompletionService(profiles ProfileRepository, roadmaps RoadmapRepository, activity *ActivityLog, progress *ProgressCache, policy RewardPolicy) *CompletionService {
	return &CompletionService{
		profiles: profiles,
		roadmaps: roadmaps,
		activity: activity,
		progress: progress,
		policy:   policy,
		Now:      time.Now,
		Location: time.Local,
	}
}

func (s *CompletionService) now() time.Time {
	loc := s.Location
	if loc == nil {
		loc = time.Local
	}
	return s.Now().In(loc)
}

// CompleteSubtask records the sub-task as done. The day write and the profile credit
// are separate writes: if crediting fails the day stays marked and the error is returned.
func (s *CompletionService) CompleteSubtask(ctx context.Context, in CompleteSubtaskInput) (*CompletionResult, error) {
	if _, err := s.profiles.FindByID(ctx, in.ProfileID); err != nil {
		return nil, err
	}

	roadmap, err := s.roadmaps.FindHeader(ctx, in.RoadmapID)
	if err != nil {
		return nil, err
	}
	if roadmap.ProfileID != in.ProfileID {
		return nil, apperrors.NotFound("Roadmap not found")
	}

	now := s.now()
	day, flagAdded, justCompleted, err := s.markDay(ctx, roadmap.ID, in, now)
	if err != nil {
		return nil, err
	}

	res := &CompletionResult{
		DayCompleted:  day.IsCompleted,
		JustCompleted: justCompleted,
		FlagAdded:     flagAdded,
		NewBadges:     []string{},
	}
	if flagAdded || justCompleted {
		s.progress.Invalidate(ctx, roadmap.ID)
	}

	if err := s.credit(ctx, in, res, now); err != nil {
		logger.Error().Err(err).
			Str("profile_id", in.ProfileID).
			Str("day_id", day.ID).
			Msg("Day updated but profile credit failed")
		return nil, err
	}

	s.recordActivity(ctx, in, day, res)
	return res, nil
}

// markDay adds the flag and derives isCompleted from a freshly read day, retrying when
// another writer bumped the version in between.
func (s *CompletionService) markDay(ctx context.Context, roadmapID string, in CompleteSubtaskInput, now time.Time) (*models.RoadmapDay, bool, bool, error) {
	for attempt := 1; ; attempt++ {
		day, err := s.roadmaps.FindDay(ctx, roadmapID, in.Address)
		if err != nil {
			return nil, false, false, err
		}

		flagAdded := day.MarkDone(in.Category)
		justCompleted := false
		if !day.IsCompleted && day.AllDone() {
			completedAt := now
			day.IsCompleted = true
			day.CompletedAt = &completedAt
			justCompleted = true
		}
		if !flagAdded && !justCompleted {
			return day, false, false, nil
		}

		err = s.roadmaps.SaveDay(ctx, day)
		if err == nil {
			return day, flagAdded, justCompleted, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, false, false, err
		}
		if attempt == maxDayUpdateAttempts {
			return nil, false, false, apperrors.Conflict(fmt.Sprintf("Day %d of week %d, month %d is being updated, try again",
				in.Address.Day, in.Address.Week, in.Address.Month))
		}
		logger.Debug().Str("day_id", day.ID).Int("attempt", attempt).Msg("Day version changed, retrying")
	}
}

func (s *CompletionService) credit(ctx context.Context, in CompleteSubtaskInput, res *CompletionResult, now time.Time) error {
	points := 0
	if res.FlagAdded || s.policy.RepeatSubtaskRewards {
		points += s.policy.SubtaskPoints
		if minutes := s.policy.StudyMinutes[in.Category]; minutes > 0 {
			if err := s.profiles.AddStudyTime(ctx, in.ProfileID, in.Category, minutes); err != nil {
				return err
			}
		}
	}

	if res.JustCompleted {
		incremented, err := s.profiles.IncrementStreakOnce(ctx, in.ProfileID, now)
		if err != nil {
			return err
		}
		res.StreakIncremented = incremented
		points += s.policy.DayBonusPoints
	}

	if points > 0 {
		if err := s.profiles.AddPoints(ctx, in.ProfileID, points); err != nil {
			return err
		}
	}
	res.PointsAwarded = points

	profile, err := s.profiles.FindByID(ctx, in.ProfileID)
	if err != nil {
		return err
	}

	earned := EvaluateBadges(profile.BadgeIDs(), BadgeSignals{
		Streak:       profile.Streak,
		DayCompleted: res.JustCompleted,
		CompletedAt:  now,
	})
	if len(earned) > 0 {
		if err := s.profiles.AddBadges(ctx, in.ProfileID, earned...); err != nil {
			return err
		}
		res.NewBadges = earned
	}

	res.Streak = profile.Streak
	res.Points = profile.Points
	return nil
}

func (s *CompletionService) recordActivity(ctx context.Context, in CompleteSubtaskInput, day *models.RoadmapDay, res *CompletionResult) {
	if res.FlagAdded {
		s.activity.Log(ctx, in.ProfileID, models.ActivityTaskCompleted, day.ID,
			fmt.Sprintf("Completed %s task: %s", in.Category, day.Title))
	}
	if res.JustCompleted {
		s.activity.Log(ctx, in.ProfileID, models.ActivityDayCompleted, day.ID,
			fmt.Sprintf("Finished month %d, week %d, day %d", day.Month, day.Week, day.Day))
	}
	if res.StreakIncremented {
		logger.Info().Str("profile_id", in.ProfileID).Int("streak", res.Streak).Msg("Streak incremented")
		s.activity.Log(ctx, in.ProfileID, models.ActivityStreak, day.ID,
			fmt.Sprintf("Streak is now %d days", res.Streak))
	}
	for _, b := range res.NewBadges {
		logger.Info().Str("profile_id", in.ProfileID).Str("badge", b).Msg("Badge unlocked")
		s.activity.Log(ctx, in.ProfileID, models.ActivityAchievement, b, "Unlocked badge "+b)
	}
}
