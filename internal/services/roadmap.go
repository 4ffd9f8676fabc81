package services

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/pavangundu/ai-helper/internal/models"
	apperrors "github.com/pavangundu/ai-helper/pkg/errors"
	"github.com/pavangundu/ai-helper/pkg/logger"
)

// RoadmapGenerator produces a study plan for a profile. PlanGenerator over a
// GeminiClient is the production implementation.
type RoadmapGenerator interface {
	Generate(ctx context.Context, req GenerationRequest) (*models.RoadmapPlan, error)
}

// GenerationRequest is the profile slice the generator sees.
type GenerationRequest struct {
	TargetRole     string
	CoreSkill      string
	CurrentLevel   string
	DailyStudyTime int
	GoalTimeline   string
}

// NewGenerationRequest fills blank profile preferences with defaults.
func NewGenerationRequest(p *models.Profile) GenerationRequest {
	req := GenerationRequest{
		TargetRole:     strings.TrimSpace(p.TargetRole),
		CoreSkill:      strings.TrimSpace(p.CoreSkill),
		CurrentLevel:   strings.TrimSpace(p.CurrentLevel),
		DailyStudyTime: p.DailyStudyTime,
		GoalTimeline:   strings.TrimSpace(p.GoalTimeline),
	}
	if req.TargetRole == "" {
		req.TargetRole = "Software Developer"
	}
	if req.CoreSkill == "" {
		req.CoreSkill = "General Programming"
	}
	if req.CurrentLevel == "" {
		req.CurrentLevel = "Beginner"
	}
	if req.DailyStudyTime <= 0 {
		req.DailyStudyTime = 60
	}
	if req.GoalTimeline == "" {
		req.GoalTimeline = "3 months"
	}
	return req
}

// IngestPlan validates the plan's numbering and flattens it to day rows in
// (month, week, day) order. Completion markers from the plan are dropped so a new
// roadmap always starts incomplete.
func IngestPlan(plan *models.RoadmapPlan) ([]models.RoadmapDay, error) {
	if plan == nil || len(plan.Months) == 0 {
		return nil, apperrors.Validation("Roadmap has no months")
	}

	var days []models.RoadmapDay
	seenMonths := map[int]bool{}
	for _, m := range plan.Months {
		if m.Month <= 0 {
			return nil, apperrors.Validation(fmt.Sprintf("Invalid month number %d", m.Month))
		}
		if seenMonths[m.Month] {
			return nil, apperrors.Validation(fmt.Sprintf("Duplicate month %d", m.Month))
		}
		seenMonths[m.Month] = true

		seenWeeks := map[int]bool{}
		for _, w := range m.Weeks {
			if w.Week <= 0 {
				return nil, apperrors.Validation(fmt.Sprintf("Invalid week number %d in month %d", w.Week, m.Month))
			}
			if seenWeeks[w.Week] {
				return nil, apperrors.Validation(fmt.Sprintf("Duplicate week %d in month %d", w.Week, m.Month))
			}
			seenWeeks[w.Week] = true

			seenDays := map[int]bool{}
			for _, d := range w.DailyTasks {
				if d.Day <= 0 {
					return nil, apperrors.Validation(fmt.Sprintf("Invalid day number %d in month %d, week %d", d.Day, m.Month, w.Week))
				}
				if seenDays[d.Day] {
					return nil, apperrors.Validation(fmt.Sprintf("Duplicate day %d in month %d, week %d", d.Day, m.Month, w.Week))
				}
				seenDays[d.Day] = true

				days = append(days, models.RoadmapDay{
					Month:        m.Month,
					Week:         w.Week,
					Day:          d.Day,
					Title:        d.Title,
					Description:  d.Description,
					AptitudeTask: d.AptitudeTask,
					DSATask:      d.DSATask,
					CoreTask:     d.CoreTask,
					Resources:    cleanResources(d.Resources),
				})
			}
		}
	}
	if len(days) == 0 {
		return nil, apperrors.Validation("Roadmap has no days")
	}

	sortDays(days)
	return days, nil
}

func cleanResources(in []string) []string {
	out := make([]string, 0, len(in))
	for _, r := range in {
		r = strings.TrimSpace(r)
		if r == "" || models.IsCompletionFlag(r) || slices.Contains(out, r) {
			continue
		}
		out = append(out, r)
	}
	return out
}

func sortDays(days []models.RoadmapDay) {
	slices.SortStableFunc(days, func(a, b models.RoadmapDay) int {
		switch {
		case a.Address().Less(b.Address()):
			return -1
		case b.Address().Less(a.Address()):
			return 1
		}
		return 0
	})
}

// NestDays rebuilds the months → weeks → dailyTasks view from flat, ordered days.
func NestDays(days []models.RoadmapDay) models.RoadmapPlan {
	plan := models.RoadmapPlan{Months: []models.PlanMonth{}}
	for i := range days {
		d := &days[i]

		if n := len(plan.Months); n == 0 || plan.Months[n-1].Month != d.Month {
			plan.Months = append(plan.Months, models.PlanMonth{Month: d.Month})
		}
		month := &plan.Months[len(plan.Months)-1]

		if n := len(month.Weeks); n == 0 || month.Weeks[n-1].Week != d.Week {
			month.Weeks = append(month.Weeks, models.PlanWeek{Week: d.Week})
		}
		week := &month.Weeks[len(month.Weeks)-1]

		resources := []string(d.Resources)
		if resources == nil {
			resources = []string{}
		}
		week.DailyTasks = append(week.DailyTasks, models.PlanDay{
			Day:          d.Day,
			Title:        d.Title,
			Description:  d.Description,
			AptitudeTask: d.AptitudeTask,
			DSATask:      d.DSATask,
			CoreTask:     d.CoreTask,
			Resources:    resources,
			IsCompleted:  d.IsCompleted,
		})
	}
	return plan
}

// CurrentTask returns the first incomplete day in (month, week, day) order, or nil.
func CurrentTask(days []models.RoadmapDay) *models.RoadmapDay {
	var current *models.RoadmapDay
	for i := range days {
		d := &days[i]
		if d.IsCompleted {
			continue
		}
		if current == nil || d.Address().Less(current.Address()) {
			current = d
		}
	}
	return current
}

// RoadmapView is the active roadmap as the client renders it.
type RoadmapView struct {
	ID               string             `json:"id"`
	ProfileID        string             `json:"profileId"`
	Role             string             `json:"role"`
	Status           string             `json:"status"`
	CreatedAt        time.Time          `json:"createdAt"`
	Months           []models.PlanMonth `json:"months"`
	PercentCompleted int                `json:"percentCompleted"`
}

func newRoadmapView(r *models.Roadmap) *RoadmapView {
	plan := NestDays(r.Days)
	return &RoadmapView{
		ID:               r.ID,
		ProfileID:        r.ProfileID,
		Role:             r.Role,
		Status:           string(r.Status),
		CreatedAt:        r.CreatedAt,
		Months:           plan.Months,
		PercentCompleted: ComputeProgress(r.Days).Overall,
	}
}

// TaskView is a single day with its address, returned by the current-task lookup.
type TaskView struct {
	RoadmapID string `json:"roadmapId"`
	Month     int    `json:"month"`
	Week      int    `json:"week"`
	models.PlanDay
}

func newTaskView(roadmapID string, d *models.RoadmapDay) *TaskView {
	plan := NestDays([]models.RoadmapDay{*d})
	return &TaskView{
		RoadmapID: roadmapID,
		Month:     d.Month,
		Week:      d.Week,
		PlanDay:   plan.Months[0].Weeks[0].DailyTasks[0],
	}
}

// RoadmapService owns generation and read access to roadmaps.
type RoadmapService struct {
	profiles  ProfileRepository
	roadmaps  RoadmapRepository
	generator RoadmapGenerator
	limiter   RateLimiter
	progress  *ProgressCache
	activity  *ActivityLog

	GenerationTimeout  time.Duration
	GenerationsPerHour int
}

func NewRoadmapService(profiles ProfileRepository, roadmaps RoadmapRepository, generator RoadmapGenerator, limiter RateLimiter, progress *ProgressCache, activity *ActivityLog) *RoadmapService {
	return &RoadmapService{
		profiles:           profiles,
		roadmaps:           roadmaps,
		generator:          generator,
		limiter:            limiter,
		progress:           progress,
		activity:           activity,
		GenerationTimeout:  90 * time.Second,
		GenerationsPerHour: 5,
	}
}

// Generate returns the profile's active roadmap, generating and storing one first if
// there is none. created reports whether a new roadmap was stored.
func (s *RoadmapService) Generate(ctx context.Context, profileID string) (view *RoadmapView, created bool, err error) {
	profile, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		return nil, false, err
	}

	existing, err := s.roadmaps.FindActiveByProfile(ctx, profileID)
	if err == nil {
		return newRoadmapView(existing), false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, err
	}

	if s.generator == nil {
		return nil, false, apperrors.Unavailable("Roadmap generation is not configured")
	}
	if s.limiter != nil {
		allowed, err := s.limiter.CheckRateLimit(ctx, "roadmap_generate:"+profileID, s.GenerationsPerHour, time.Hour)
		if err != nil {
			logger.Warn().Err(err).Str("profile_id", profileID).Msg("Generation rate limit check failed")
		} else if !allowed {
			return nil, false, apperrors.RateLimited("Too many roadmap generations, try again later")
		}
	}

	genCtx := ctx
	if s.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, s.GenerationTimeout)
		defer cancel()
	}

	req := NewGenerationRequest(profile)
	start := time.Now()
	plan, err := s.generator.Generate(genCtx, req)
	if err != nil {
		logger.Error().Err(err).Str("profile_id", profileID).Msg("Roadmap generation failed")
		var appErr *apperrors.AppError
		if errors.As(err, &appErr) {
			return nil, false, err
		}
		return nil, false, apperrors.BadGateway("Failed to generate roadmap", err)
	}

	days, err := IngestPlan(plan)
	if err != nil {
		return nil, false, err
	}

	roadmap := &models.Roadmap{
		ProfileID: profileID,
		Role:      req.TargetRole,
		Status:    models.RoadmapActive,
		Days:      days,
	}
	if err := s.roadmaps.Create(ctx, roadmap); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			// another request stored one first
			if existing, findErr := s.roadmaps.FindActiveByProfile(ctx, profileID); findErr == nil {
				return newRoadmapView(existing), false, nil
			}
		}
		return nil, false, err
	}

	logger.Info().
		Str("profile_id", profileID).
		Str("roadmap_id", roadmap.ID).
		Int("days", len(days)).
		Dur("took", time.Since(start)).
		Msg("Roadmap generated")
	s.activity.Log(ctx, profileID, models.ActivityRoadmapCreated, roadmap.ID, "Generated a roadmap for "+req.TargetRole)

	return newRoadmapView(roadmap), true, nil
}

// Active returns the profile's active roadmap with its overall completion.
func (s *RoadmapService) Active(ctx context.Context, profileID string) (*RoadmapView, error) {
	roadmap, err := s.roadmaps.FindActiveByProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}
	return newRoadmapView(roadmap), nil
}

func (s *RoadmapService) owned(ctx context.Context, profileID, roadmapID string) (*models.Roadmap, error) {
	roadmap, err := s.roadmaps.FindByID(ctx, roadmapID)
	if err != nil {
		return nil, err
	}
	if roadmap.ProfileID != profileID {
		return nil, apperrors.NotFound("Roadmap not found")
	}
	return roadmap, nil
}

// GetProgress is a read-through of ComputeProgress for a roadmap the profile owns.
func (s *RoadmapService) GetProgress(ctx context.Context, profileID, roadmapID string) (Progress, error) {
	header, err := s.roadmaps.FindHeader(ctx, roadmapID)
	if err != nil {
		return Progress{}, err
	}
	if header.ProfileID != profileID {
		return Progress{}, apperrors.NotFound("Roadmap not found")
	}

	if p, ok := s.progress.Get(ctx, roadmapID); ok {
		return p, nil
	}

	roadmap, err := s.roadmaps.FindByID(ctx, roadmapID)
	if err != nil {
		return Progress{}, err
	}
	p := ComputeProgress(roadmap.Days)
	s.progress.Set(ctx, roadmapID, p)
	return p, nil
}

// CurrentTask returns the first incomplete day, or nil when every day is complete.
func (s *RoadmapService) CurrentTask(ctx context.Context, profileID, roadmapID string) (*TaskView, error) {
	roadmap, err := s.owned(ctx, profileID, roadmapID)
	if err != nil {
		return nil, err
	}
	day := CurrentTask(roadmap.Days)
	if day == nil {
		return nil, nil
	}
	return newTaskView(roadmap.ID, day), nil
}
