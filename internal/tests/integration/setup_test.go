package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pavangundu/ai-helper/internal/config"
	"github.com/pavangundu/ai-helper/internal/handlers"
	"github.com/pavangundu/ai-helper/internal/middleware"
	"github.com/pavangundu/ai-helper/internal/models"
	"github.com/pavangundu/ai-helper/internal/routes"
	"github.com/pavangundu/ai-helper/internal/services"
	"github.com/pavangundu/ai-helper/internal/store"
	"github.com/pavangundu/ai-helper/internal/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// memoryRedis stands in for database.RedisStore: token revocation and the progress cache.
type memoryRedis struct {
	mu      sync.Mutex
	revoked map[string]bool
	values  map[string]string
}

func newMemoryRedis() *memoryRedis {
	return &memoryRedis{revoked: map[string]bool{}, values: map[string]string{}}
}

func (m *memoryRedis) Enabled() bool { return true }

func (m *memoryRedis) BlacklistToken(_ context.Context, jti string, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.revoked[jti] = true
	return nil
}

func (m *memoryRedis) IsTokenBlacklisted(_ context.Context, jti string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.revoked[jti]
}

func (m *memoryRedis) CacheGet(_ context.Context, key string, dest interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	if !ok {
		return errCacheMiss
	}
	return json.Unmarshal([]byte(v), dest)
}

func (m *memoryRedis) CacheSet(_ context.Context, key string, value interface{}, _ time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = string(b)
	return nil
}

func (m *memoryRedis) CacheDelete(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.values, key)
	}
	return nil
}

type cacheMiss struct{}

func (cacheMiss) Error() string { return "cache miss" }

var errCacheMiss error = cacheMiss{}

// planGenerator returns a fixed plan of one month with two weeks of the given length.
type planGenerator struct {
	daysPerWeek int
	calls       int
}

func (g *planGenerator) Generate(_ context.Context, req services.GenerationRequest) (*models.RoadmapPlan, error) {
	g.calls++
	month := models.PlanMonth{Month: 1}
	for w := 1; w <= 2; w++ {
		week := models.PlanWeek{Week: w}
		for d := 1; d <= g.daysPerWeek; d++ {
			week.DailyTasks = append(week.DailyTasks, models.PlanDay{
				Day:          d,
				Title:        req.CoreSkill + " fundamentals",
				AptitudeTask: "Time and work",
				DSATask:      "Binary search",
				CoreTask:     req.CoreSkill + " basics",
				Resources:    []string{"https://go.dev/tour"},
			})
		}
		month.Weeks = append(month.Weeks, week)
	}
	return &models.RoadmapPlan{Months: []models.PlanMonth{month}}, nil
}

type testApp struct {
	db        *gorm.DB
	router    *gin.Engine
	redis     *memoryRedis
	generator *planGenerator
}

func setupApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.AppConfig = &config.Config{
		JWTSecret: "test_secret_key_12345",
	}

	db := testutil.NewTestDB(t)
	redis := newMemoryRedis()
	generator := &planGenerator{daysPerWeek: 3}

	profiles := store.NewProfileStore(db)
	roadmaps := store.NewRoadmapStore(db)
	activities := store.NewActivityStore(db)
	activity := services.NewActivityLog(activities)
	progress := services.NewProgressCache(redis, time.Minute)

	h := &handlers.Handler{
		Profiles:   services.NewProfileService(profiles, roadmaps, activity, progress),
		Roadmaps:   services.NewRoadmapService(profiles, roadmaps, generator, nil, progress, activity),
		Practice:   services.NewPracticeService(nil, profiles, roadmaps, nil),
		Completion: services.NewCompletionService(profiles, roadmaps, activity, progress, services.DefaultRewardPolicy()),
		Activity:   activities,
		Tokens:     redis,
	}
	r := routes.NewRouter(h, routes.RouterConfig{
		FrontendURL: "http://localhost:3000",
		Auth:        middleware.AuthMiddleware(redis, profiles),
		Health:      func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) },
	})

	return &testApp{db: db, router: r, redis: redis, generator: generator}
}

func performRequest(r http.Handler, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var reqBody []byte
	if body != nil {
		reqBody, _ = json.Marshal(body)
	}
	req, _ := http.NewRequest(method, path, bytes.NewBuffer(reqBody))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// createTestUser signs up through the API and returns the session token.
func createTestUser(t *testing.T, r http.Handler, email string) string {
	t.Helper()
	w := performRequest(r, http.MethodPost, "/api/auth/signup", map[string]interface{}{
		"name":         "Ravi",
		"email":        email,
		"password":     "Placement2026",
		"targetRole":   "Backend Developer",
		"coreSkill":    "Go",
		"currentLevel": "Intermediate",
	}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeBody(t, w)["token"].(string)
}
