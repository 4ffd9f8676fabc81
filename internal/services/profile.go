package services

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/pavangundu/ai-helper/internal/models"
	apperrors "github.com/pavangundu/ai-helper/pkg/errors"
	"github.com/pavangundu/ai-helper/pkg/logger"
	"github.com/pavangundu/ai-helper/pkg/utils"
	"golang.org/x/crypto/bcrypt"
)

const (
	maxNameLength    = 100
	maxSettingLength = 200
	maxDailyMinutes  = 24 * 60
)

// RegisterInput is what signup collects. The study preferences are optional.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Settings models.ProfileSettings
}

// ProfileView is a profile as returned to its owner, with the badge ids flattened.
type ProfileView struct {
	*models.Profile
	Badges []string `json:"badges"`
}

func NewProfileView(p *models.Profile) *ProfileView {
	return &ProfileView{Profile: p, Badges: p.BadgeIDs()}
}

// Dashboard is the home screen summary.
type Dashboard struct {
	User            *ProfileView `json:"user"`
	NewBadges       []string     `json:"newBadges"`
	RoadmapID       string       `json:"roadmapId,omitempty"`
	CurrentTask     *TaskView    `json:"currentTask"`
	Progress        Progress     `json:"progress"`
	TotalStudyHours float64      `json:"totalStudyHours"`
}

type ProfileService struct {
	profiles ProfileRepository
	roadmaps RoadmapRepository
	activity *ActivityLog
	progress *ProgressCache
}

func NewProfileService(profiles ProfileRepository, roadmaps RoadmapRepository, activity *ActivityLog, progress *ProgressCache) *ProfileService {
	return &ProfileService{
		profiles: profiles,
		roadmaps: roadmaps,
		activity: activity,
		progress: progress,
	}
}

func validatePasswordStrength(password string) error {
	var hasUpper, hasLower, hasNumber bool
	for _, char := range password {
		switch {
		case unicode.IsUpper(char):
			hasUpper = true
		case unicode.IsLower(char):
			hasLower = true
		case unicode.IsNumber(char):
			hasNumber = true
		}
	}
	if len(password) < 8 || !hasUpper || !hasLower || !hasNumber {
		return apperrors.BadRequest("Password must be at least 8 characters long and contain an uppercase letter, a lowercase letter and a number")
	}
	return nil
}

func cleanSettings(s models.ProfileSettings) (models.ProfileSettings, error) {
	s.Name = utils.CleanText(s.Name, maxNameLength)
	s.TargetRole = utils.CleanText(s.TargetRole, maxSettingLength)
	s.CoreSkill = utils.CleanText(s.CoreSkill, maxSettingLength)
	s.CurrentLevel = utils.CleanText(s.CurrentLevel, maxSettingLength)
	s.GoalTimeline = utils.CleanText(s.GoalTimeline, maxSettingLength)
	if s.DailyStudyTime < 0 || s.DailyStudyTime > maxDailyMinutes {
		return s, apperrors.BadRequest("dailyStudyTime must be between 0 and 1440 minutes")
	}
	return s, nil
}

func (s *ProfileService) Register(ctx context.Context, in RegisterInput) (*models.Profile, error) {
	email := utils.NormalizeEmail(in.Email)
	if email == "" || !strings.Contains(email, "@") {
		return nil, apperrors.BadRequest("A valid email is required")
	}
	if err := validatePasswordStrength(in.Password); err != nil {
		return nil, err
	}

	in.Settings.Name = in.Name
	settings, err := cleanSettings(in.Settings)
	if err != nil {
		return nil, err
	}
	if settings.DailyStudyTime == 0 {
		settings.DailyStudyTime = 60
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash password")
		return nil, apperrors.Internal("Failed to hash password")
	}

	p := &models.Profile{
		Name:           settings.Name,
		Email:          email,
		Password:       string(hashed),
		TargetRole:     settings.TargetRole,
		CoreSkill:      settings.CoreSkill,
		CurrentLevel:   settings.CurrentLevel,
		DailyStudyTime: settings.DailyStudyTime,
		GoalTimeline:   settings.GoalTimeline,
	}
	if err := s.profiles.Create(ctx, p); err != nil {
		return nil, err
	}

	logger.Info().Str("profile_id", p.ID).Msg("User registered successfully")
	return p, nil
}

// Authenticate checks the credentials. Unknown email and wrong password are the same error.
func (s *ProfileService) Authenticate(ctx context.Context, email, password string) (*models.Profile, error) {
	p, err := s.profiles.FindByEmail(ctx, utils.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			logger.Warn().Str("email", email).Msg("Login failed: user not found")
			return nil, apperrors.Unauthorized("Invalid credentials")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(p.Password), []byte(password)); err != nil {
		logger.Warn().Str("email", email).Msg("Login failed: invalid password")
		return nil, apperrors.Unauthorized("Invalid credentials")
	}
	return p, nil
}

func (s *ProfileService) Get(ctx context.Context, id string) (*models.Profile, error) {
	return s.profiles.FindByID(ctx, id)
}

// UpdateSettings saves new preferences and starts the profile over: streak, points and
// study time go to zero and existing roadmaps are deleted so a new one gets generated.
func (s *ProfileService) UpdateSettings(ctx context.Context, id string, settings models.ProfileSettings) (*models.Profile, error) {
	settings, err := cleanSettings(settings)
	if err != nil {
		return nil, err
	}

	current, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if settings.Name == "" {
		settings.Name = current.Name
	}
	if settings.DailyStudyTime == 0 {
		settings.DailyStudyTime = current.DailyStudyTime
	}

	if active, err := s.roadmaps.FindActiveByProfile(ctx, id); err == nil {
		s.progress.Invalidate(ctx, active.ID)
	}

	p, err := s.profiles.ResetWithSettings(ctx, id, settings)
	if err != nil {
		return nil, err
	}

	logger.Info().Str("profile_id", id).Msg("Profile updated and progress reset")
	s.activity.Log(ctx, id, models.ActivityProfileReset, id, "Updated study preferences and reset progress")
	return p, nil
}

// Delete removes the account with its roadmaps, badges and activity.
func (s *ProfileService) Delete(ctx context.Context, id string) error {
	if active, err := s.roadmaps.FindActiveByProfile(ctx, id); err == nil {
		s.progress.Invalidate(ctx, active.ID)
	}
	if err := s.profiles.Delete(ctx, id); err != nil {
		return err
	}
	logger.Info().Str("profile_id", id).Msg("Account deleted")
	return nil
}

// Dashboard loads the summary and grants any badge the profile already qualifies for.
func (s *ProfileService) Dashboard(ctx context.Context, id string) (*Dashboard, error) {
	p, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	earned := EvaluateBadges(p.BadgeIDs(), BadgeSignals{Streak: p.Streak})
	if len(earned) > 0 {
		if err := s.profiles.AddBadges(ctx, id, earned...); err != nil {
			return nil, err
		}
		for _, b := range earned {
			s.activity.Log(ctx, id, models.ActivityAchievement, b, "Unlocked badge "+b)
		}
		if p, err = s.profiles.FindByID(ctx, id); err != nil {
			return nil, err
		}
	}

	minutes := p.TotalStudyTime.Aptitude + p.TotalStudyTime.DSA + p.TotalStudyTime.Core
	d := &Dashboard{
		User:            NewProfileView(p),
		NewBadges:       earned,
		TotalStudyHours: float64(minutes) / 60,
	}
	if d.NewBadges == nil {
		d.NewBadges = []string{}
	}

	roadmap, err := s.roadmaps.FindActiveByProfile(ctx, id)
	switch {
	case err == nil:
		d.RoadmapID = roadmap.ID
		if day := CurrentTask(roadmap.Days); day != nil {
			d.CurrentTask = newTaskView(roadmap.ID, day)
		}
		d.Progress = ComputeProgress(roadmap.Days)
	case !errors.Is(err, apperrors.ErrNotFound):
		return nil, err
	}
	return d, nil
}

// BadgeStatus is a catalog entry with the profile's unlock state.
type BadgeStatus struct {
	models.Badge
	Unlocked bool `json:"unlocked"`
}

func (s *ProfileService) Badges(ctx context.Context, id string) ([]BadgeStatus, error) {
	p, err := s.profiles.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	out := make([]BadgeStatus, 0, len(BadgeCatalog))
	for _, b := range BadgeCatalog {
		out = append(out, BadgeStatus{Badge: b, Unlocked: p.HasBadge(b.ID)})
	}
	return out, nil
}
