package services

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pavangundu/ai-helper/internal/models"
	"github.com/pavangundu/ai-helper/internal/store"
	"github.com/pavangundu/ai-helper/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type testEnv struct {
	db         *gorm.DB
	profiles   *store.ProfileStore
	roadmaps   *store.RoadmapStore
	activities *store.ActivityStore
	cache      *memoryCache
	completion *CompletionService
	clock      time.Time
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewTestDB(t)
	env := &testEnv{
		db:         db,
		profiles:   store.NewProfileStore(db),
		roadmaps:   store.NewRoadmapStore(db),
		activities: store.NewActivityStore(db),
		cache:      newMemoryCache(),
		clock:      time.Date(2026, 3, 10, 14, 0, 0, 0, time.UTC),
	}
	env.completion = NewCompletionService(env.profiles, env.roadmaps, NewActivityLog(env.activities),
		NewProgressCache(env.cache, time.Minute), DefaultRewardPolicy())
	env.completion.Now = func() time.Time { return env.clock }
	env.completion.Location = time.UTC
	return env
}

func (e *testEnv) createProfile(t *testing.T) *models.Profile {
	t.Helper()
	p := &models.Profile{
		Name:         "Asha",
		Email:        "asha-" + uuid.NewString() + "@example.com",
		TargetRole:   "Backend Developer",
		CoreSkill:    "Go",
		CurrentLevel: "Beginner",
	}
	require.NoError(t, e.profiles.Create(context.Background(), p))
	return p
}

// createRoadmap stores an active roadmap for the profile with one week of n days in month 1.
func (e *testEnv) createRoadmap(t *testing.T, profileID string, n int) *models.Roadmap {
	t.Helper()
	days, err := IngestPlan(samplePlan(1, 1, n))
	require.NoError(t, err)
	r := &models.Roadmap{ProfileID: profileID, Role: "Backend Developer", Days: days}
	require.NoError(t, e.roadmaps.Create(context.Background(), r))
	return r
}

func (e *testEnv) setStreak(t *testing.T, profileID string, streak int) {
	t.Helper()
	require.NoError(t, e.db.Model(&models.Profile{}).Where("id = ?", profileID).Update("streak", streak).Error)
}

func (e *testEnv) profile(t *testing.T, id string) *models.Profile {
	t.Helper()
	p, err := e.profiles.FindByID(context.Background(), id)
	require.NoError(t, err)
	return p
}

func (e *testEnv) day(t *testing.T, roadmapID string, addr models.DayAddress) *models.RoadmapDay {
	t.Helper()
	d, err := e.roadmaps.FindDay(context.Background(), roadmapID, addr)
	require.NoError(t, err)
	return d
}

func (e *testEnv) complete(t *testing.T, p *models.Profile, r *models.Roadmap, day int, c models.Category) *CompletionResult {
	t.Helper()
	res, err := e.completion.CompleteSubtask(context.Background(), CompleteSubtaskInput{
		ProfileID: p.ID,
		RoadmapID: r.ID,
		Address:   models.DayAddress{Month: 1, Week: 1, Day: day},
		Category:  c,
	})
	require.NoError(t, err)
	return res
}

func samplePlan(months, weeks, days int) *models.RoadmapPlan {
	plan := &models.RoadmapPlan{}
	for m := 1; m <= months; m++ {
		month := models.PlanMonth{Month: m}
		for w := 1; w <= weeks; w++ {
			week := models.PlanWeek{Week: w}
			for d := 1; d <= days; d++ {
				week.DailyTasks = append(week.DailyTasks, models.PlanDay{
					Day:          d,
					Title:        fmt.Sprintf("Day %d", d),
					AptitudeTask: "Percentages: basics",
					DSATask:      "Arrays: two pointers",
					CoreTask:     "Go: slices",
				})
			}
			month.Weeks = append(month.Weeks, week)
		}
		plan.Months = append(plan.Months, month)
	}
	return plan
}

// memoryCache is an in-process Cache used where redis would be.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]Progress
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string]Progress{}}
}

func (c *memoryCache) CacheGet(_ context.Context, key string, dest interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	p, ok := c.entries[key]
	if !ok {
		return fmt.Errorf("miss")
	}
	*(dest.(*Progress)) = p
	return nil
}

func (c *memoryCache) CacheSet(_ context.Context, key string, value interface{}, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value.(Progress)
	return nil
}

func (c *memoryCache) CacheDelete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.entries, k)
	}
	return nil
}

func (c *memoryCache) has(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.entries[key]
	return ok
}
