package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pavangundu/ai-helper/internal/models"
	apperrors "github.com/pavangundu/ai-helper/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProfileService(env *testEnv) *ProfileService {
	return NewProfileService(env.profiles, env.roadmaps, NewActivityLog(env.activities), NewProgressCache(env.cache, time.Minute))
}

func TestProfileService_RegisterAndAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	svc := newProfileService(env)
	ctx := context.Background()

	p, err := svc.Register(ctx, RegisterInput{
		Name:     "  Ravi <b>K</b> ",
		Email:    " Ravi@Example.com ",
		Password: "Secret123",
		Settings: models.ProfileSettings{TargetRole: "Data Engineer"},
	})
	require.NoError(t, err)
	assert.Equal(t, "ravi@example.com", p.Email)
	assert.Equal(t, "Ravi K", p.Name)
	assert.Equal(t, 60, p.DailyStudyTime)
	assert.NotEqual(t, "Secret123", p.Password)

	got, err := svc.Authenticate(ctx, "RAVI@example.com", "Secret123")
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)

	_, err = svc.Authenticate(ctx, "ravi@example.com", "wrong")
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))
	_, err = svc.Authenticate(ctx, "nobody@example.com", "Secret123")
	assert.True(t, errors.Is(err, apperrors.ErrUnauthorized))

	_, err = svc.Register(ctx, RegisterInput{Name: "Dup", Email: "ravi@example.com", Password: "Secret123"})
	assert.True(t, errors.Is(err, apperrors.ErrConflict))
}

func TestProfileService_RegisterRejectsWeakInput(t *testing.T) {
	env := newTestEnv(t)
	svc := newProfileService(env)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Email: "a@example.com", Password: "short"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidRequest))

	_, err = svc.Register(ctx, RegisterInput{Email: "not-an-email", Password: "Secret123"})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidRequest))

	_, err = svc.Register(ctx, RegisterInput{Email: "b@example.com", Password: "Secret123", Settings: models.ProfileSettings{DailyStudyTime: 5000}})
	assert.True(t, errors.Is(err, apperrors.ErrInvalidRequest))
}

func TestProfileService_UpdateSettingsResetsProgress(t *testing.T) {
	env := newTestEnv(t)
	svc := newProfileService(env)
	p := env.createProfile(t)
	r := env.createRoadmap(t, p.ID, 2)
	ctx := context.Background()

	for _, c := range models.Categories {
		env.complete(t, p, r, 1, c)
	}
	require.NoError(t, env.profiles.AddBadges(ctx, p.ID, models.BadgeEarlyBird))

	updated, err := svc.UpdateSettings(ctx, p.ID, models.ProfileSettings{
		TargetRole:     "Frontend Developer",
		CoreSkill:      "React",
		DailyStudyTime: 90,
	})
	require.NoError(t, err)

	assert.Equal(t, "Frontend Developer", updated.TargetRole)
	assert.Equal(t, "React", updated.CoreSkill)
	assert.Equal(t, 90, updated.DailyStudyTime)
	assert.Equal(t, p.Name, updated.Name)
	assert.Equal(t, 0, updated.Streak)
	assert.Equal(t, 0, updated.Points)
	assert.Nil(t, updated.LastStreakIncrement)
	assert.Equal(t, models.StudyTime{}, updated.TotalStudyTime)
	assert.True(t, updated.HasBadge(models.BadgeEarlyBird))

	_, err = env.roadmaps.FindByID(ctx, r.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	_, err = svc.UpdateSettings(ctx, "missing", models.ProfileSettings{})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}

func TestProfileService_DeleteCascades(t *testing.T) {
	env := newTestEnv(t)
	svc := newProfileService(env)
	p := env.createProfile(t)
	r := env.createRoadmap(t, p.ID, 1)
	ctx := context.Background()
	env.complete(t, p, r, 1, models.CategoryCore)

	require.NoError(t, svc.Delete(ctx, p.ID))

	_, err := svc.Get(ctx, p.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
	_, err = env.roadmaps.FindByID(ctx, r.ID)
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))

	var days int64
	require.NoError(t, env.db.Model(&models.RoadmapDay{}).Where("roadmap_id = ?", r.ID).Count(&days).Error)
	assert.Zero(t, days)

	assert.True(t, errors.Is(svc.Delete(ctx, p.ID), apperrors.ErrNotFound))
}

func TestProfileService_DashboardGrantsStreakBadgeRetroactively(t *testing.T) {
	env := newTestEnv(t)
	svc := newProfileService(env)
	p := env.createProfile(t)
	env.setStreak(t, p.ID, 8)
	ctx := context.Background()

	d, err := svc.Dashboard(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{models.BadgeStreak7}, d.NewBadges)
	assert.Contains(t, d.User.Badges, models.BadgeStreak7)
	assert.Empty(t, d.RoadmapID)
	assert.Nil(t, d.CurrentTask)

	d, err = svc.Dashboard(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, d.NewBadges)
	assert.Equal(t, []string{models.BadgeStreak7}, d.User.Badges)
}

func TestProfileService_DashboardWithRoadmap(t *testing.T) {
	env := newTestEnv(t)
	svc := newProfileService(env)
	p := env.createProfile(t)
	r := env.createRoadmap(t, p.ID, 4)

	for _, c := range models.Categories {
		env.complete(t, p, r, 1, c)
	}
	env.complete(t, p, r, 2, models.CategoryDSA)

	d, err := svc.Dashboard(context.Background(), p.ID)
	require.NoError(t, err)
	assert.Equal(t, r.ID, d.RoadmapID)
	require.NotNil(t, d.CurrentTask)
	assert.Equal(t, 2, d.CurrentTask.Day)
	assert.Equal(t, 1, d.CurrentTask.Week)
	assert.Equal(t, 25, d.Progress.Aptitude)
	assert.Equal(t, 50, d.Progress.DSA)
	assert.Equal(t, 1, d.User.Streak)
	assert.InDelta(t, 80.0/60, d.TotalStudyHours, 0.001)
}

func TestProfileService_Badges(t *testing.T) {
	env := newTestEnv(t)
	svc := newProfileService(env)
	p := env.createProfile(t)
	require.NoError(t, env.profiles.AddBadges(context.Background(), p.ID, models.BadgeEarlyBird))

	badges, err := svc.Badges(context.Background(), p.ID)
	require.NoError(t, err)
	require.Len(t, badges, len(BadgeCatalog))
	for _, b := range badges {
		assert.Equal(t, b.ID == models.BadgeEarlyBird, b.Unlocked, b.ID)
	}
}
