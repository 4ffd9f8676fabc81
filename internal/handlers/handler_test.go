package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pavangundu/ai-helper/internal/config"
	"github.com/pavangundu/ai-helper/internal/middleware"
	"github.com/pavangundu/ai-helper/internal/models"
	"github.com/pavangundu/ai-helper/internal/services"
	"github.com/pavangundu/ai-helper/internal/store"
	"github.com/pavangundu/ai-helper/internal/testutil"
	"github.com/pavangundu/ai-helper/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubGenerator struct {
	plan *models.RoadmapPlan
}

func (g stubGenerator) Generate(context.Context, services.GenerationRequest) (*models.RoadmapPlan, error) {
	return g.plan, nil
}

type recordingRevoker struct {
	disabled bool
	revoked  map[string]time.Duration
}

func (r *recordingRevoker) Enabled() bool { return !r.disabled }

func (r *recordingRevoker) BlacklistToken(_ context.Context, jti string, ttl time.Duration) error {
	r.revoked[jti] = ttl
	return nil
}

func onePlan(days int) *models.RoadmapPlan {
	week := models.PlanWeek{Week: 1}
	for d := 1; d <= days; d++ {
		week.DailyTasks = append(week.DailyTasks, models.PlanDay{
			Day:          d,
			Title:        "Arrays",
			AptitudeTask: "Percentages: basics",
			DSATask:      "Arrays: two pointers",
			CoreTask:     "Go: slices",
		})
	}
	return &models.RoadmapPlan{Months: []models.PlanMonth{{Month: 1, Weeks: []models.PlanWeek{week}}}}
}

type testServer struct {
	engine   *gin.Engine
	handler  *Handler
	profiles *store.ProfileStore
	revoker  *recordingRevoker
	llm      *promptRouter
}

func setupServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.AppConfig = &config.Config{JWTSecret: "test_secret_key_12345"}

	db := testutil.NewTestDB(t)
	profiles := store.NewProfileStore(db)
	roadmaps := store.NewRoadmapStore(db)
	activities := store.NewActivityStore(db)
	activity := services.NewActivityLog(activities)

	revoker := &recordingRevoker{revoked: map[string]time.Duration{}}
	llm := &promptRouter{replies: map[string]string{}}
	h := &Handler{
		Practice:   services.NewPracticeService(llm, profiles, roadmaps, nil),
		Profiles:   services.NewProfileService(profiles, roadmaps, activity, nil),
		Roadmaps:   services.NewRoadmapService(profiles, roadmaps, stubGenerator{plan: onePlan(3)}, nil, nil, activity),
		Completion: services.NewCompletionService(profiles, roadmaps, activity, nil, services.DefaultRewardPolicy()),
		Activity:   activities,
		Tokens:     revoker,
	}

	r := gin.New()
	r.Use(middleware.ErrorHandlerMiddleware())
	r.POST("/signup", h.Signup)
	r.POST("/login", h.Login)

	authed := r.Group("")
	authed.Use(middleware.AuthMiddleware(nil, profiles))
	authed.POST("/logout", h.Logout)
	authed.GET("/profile", h.GetProfile)
	authed.PATCH("/profile", h.UpdateProfile)
	authed.DELETE("/user", h.DeleteAccount)
	authed.GET("/dashboard", h.GetDashboard)
	authed.GET("/badges", h.GetBadges)
	authed.GET("/activity", h.GetActivityFeed)
	authed.POST("/roadmap/generate", h.GenerateRoadmap)
	authed.GET("/roadmap", h.GetRoadmap)
	authed.GET("/roadmap/:id/progress", h.GetProgress)
	authed.GET("/roadmap/:id/current", h.GetCurrentTask)
	authed.POST("/task/complete", h.CompleteTask)
	authed.POST("/practice/aptitude/quiz", h.GenerateQuiz)
	authed.POST("/practice/dsa/problem", h.GenerateProblem)
	authed.POST("/practice/dsa/judge", h.JudgeSolution)
	authed.POST("/mentor/chat", h.MentorChat)
	authed.POST("/resume/optimize", h.OptimizeResume)

	return &testServer{engine: r, handler: h, profiles: profiles, revoker: revoker, llm: llm}
}

func (s *testServer) do(method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) signup(t *testing.T, email string) string {
	t.Helper()
	w := s.do(http.MethodPost, "/signup", gin.H{"name": "Meera", "email": email, "password": "Secret123", "coreSkill": "Go"}, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Token
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestSignupAndLogin(t *testing.T) {
	s := setupServer(t)
	s.signup(t, "meera@example.com")

	w := s.do(http.MethodPost, "/signup", gin.H{"name": "Meera", "email": "meera@example.com", "password": "Secret123"}, "")
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodPost, "/login", gin.H{"email": "meera@example.com", "password": "Secret123"}, "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.NotEmpty(t, body["token"])
	user := body["user"].(map[string]interface{})
	assert.Equal(t, "meera@example.com", user["email"])
	assert.NotContains(t, user, "password")
	assert.Equal(t, []interface{}{}, user["badges"])

	w = s.do(http.MethodPost, "/login", gin.H{"email": "meera@example.com", "password": "Wrong1234"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/login", gin.H{"email": "not-an-email"}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAuthRequired(t *testing.T) {
	s := setupServer(t)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/dashboard", nil, "").Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/dashboard", nil, "garbage").Code)

	// token for a profile that does not exist
	token, err := utils.GenerateToken("ghost")
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/dashboard", nil, token).Code)
}

func TestRoadmapLifecycle(t *testing.T) {
	s := setupServer(t)
	token := s.signup(t, "lifecycle@example.com")

	w := s.do(http.MethodGet, "/roadmap", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodPost, "/roadmap/generate", nil, token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	roadmapID := decode(t, w)["roadmapId"].(string)

	w = s.do(http.MethodPost, "/roadmap/generate", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, roadmapID, decode(t, w)["roadmapId"])

	for _, taskType := range []string{"aptitude", "dsa", "core"} {
		w = s.do(http.MethodPost, "/task/complete", gin.H{"roadmapId": roadmapID, "month": 1, "week": 1, "day": 1, "taskType": taskType}, token)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}
	res := decode(t, w)
	assert.Equal(t, true, res["dayCompleted"])
	assert.Equal(t, true, res["streakIncremented"])

	w = s.do(http.MethodGet, "/roadmap/"+roadmapID+"/progress", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	progress := decode(t, w)
	assert.Equal(t, float64(33), progress["aptitude"])
	assert.Equal(t, float64(33), progress["overall"])

	w = s.do(http.MethodGet, "/roadmap/"+roadmapID+"/current", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	current := decode(t, w)["currentTask"].(map[string]interface{})
	assert.Equal(t, float64(2), current["day"])
	assert.Equal(t, float64(1), current["week"])

	w = s.do(http.MethodGet, "/roadmap", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, float64(33), decode(t, w)["percentCompleted"])

	w = s.do(http.MethodGet, "/dashboard", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	dash := decode(t, w)
	assert.Equal(t, roadmapID, dash["roadmapId"])
	assert.Equal(t, float64(1), dash["user"].(map[string]interface{})["streak"])

	w = s.do(http.MethodGet, "/activity", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotEmpty(t, decode(t, w)["activities"])
}

func TestCompleteTaskValidation(t *testing.T) {
	s := setupServer(t)
	token := s.signup(t, "validation@example.com")
	w := s.do(http.MethodPost, "/roadmap/generate", nil, token)
	require.Equal(t, http.StatusCreated, w.Code)
	roadmapID := decode(t, w)["roadmapId"].(string)

	w = s.do(http.MethodPost, "/task/complete", gin.H{"roadmapId": roadmapID, "month": 1, "week": 1, "day": 1, "taskType": "quiz"}, token)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodPost, "/task/complete", gin.H{"roadmapId": roadmapID, "month": 0, "week": 1, "day": 1, "taskType": "dsa"}, token)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPost, "/task/complete", gin.H{"roadmapId": roadmapID, "month": 4, "week": 1, "day": 1, "taskType": "dsa"}, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Task day not found", decode(t, w)["error"])

	other := s.signup(t, "other@example.com")
	w = s.do(http.MethodPost, "/task/complete", gin.H{"roadmapId": roadmapID, "month": 1, "week": 1, "day": 1, "taskType": "dsa"}, other)
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = s.do(http.MethodGet, "/roadmap/"+roadmapID+"/progress", nil, other)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(http.MethodGet, "/roadmap/not-a-uuid/current", nil, token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestUpdateProfileResetsAndDeletesRoadmap(t *testing.T) {
	s := setupServer(t)
	token := s.signup(t, "settings@example.com")
	require.Equal(t, http.StatusCreated, s.do(http.MethodPost, "/roadmap/generate", nil, token).Code)

	w := s.do(http.MethodPatch, "/profile", gin.H{"targetRole": "SRE", "dailyStudyTime": 30}, token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	user := decode(t, w)["user"].(map[string]interface{})
	assert.Equal(t, "SRE", user["targetRole"])
	assert.Equal(t, float64(0), user["points"])

	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/roadmap", nil, token).Code)
}

func TestBadges(t *testing.T) {
	s := setupServer(t)
	token := s.signup(t, "badges@example.com")

	w := s.do(http.MethodGet, "/badges", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	badges := decode(t, w)["badges"].([]interface{})
	assert.Len(t, badges, len(services.BadgeCatalog))
	for _, b := range badges {
		assert.Equal(t, false, b.(map[string]interface{})["unlocked"])
	}
}

func TestLogoutRevokesToken(t *testing.T) {
	s := setupServer(t)
	token := s.signup(t, "logout@example.com")
	claims, err := utils.ValidateToken(token)
	require.NoError(t, err)

	w := s.do(http.MethodPost, "/logout", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["revoked"])
	ttl, ok := s.revoker.revoked[claims.GetJTI()]
	require.True(t, ok)
	assert.Greater(t, ttl, time.Duration(0))
}

func TestLogoutWithoutRevocationStore(t *testing.T) {
	s := setupServer(t)
	s.revoker.disabled = true
	token := s.signup(t, "norevoke@example.com")

	w := s.do(http.MethodPost, "/logout", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	body := decode(t, w)
	assert.Equal(t, false, body["revoked"])
	assert.Contains(t, body["message"], "stays valid")
	assert.Empty(t, s.revoker.revoked)

	// the token was not revoked, so it still authenticates
	assert.Equal(t, http.StatusOK, s.do(http.MethodGet, "/profile", nil, token).Code)
}

func TestDeleteAccount(t *testing.T) {
	s := setupServer(t)
	token := s.signup(t, "delete@example.com")

	w := s.do(http.MethodDelete, "/user", nil, token)
	require.Equal(t, http.StatusOK, w.Code)

	assert.Equal(t, http.StatusUnauthorized, s.do(http.MethodGet, "/profile", nil, token).Code)
	w = s.do(http.MethodPost, "/login", gin.H{"email": "delete@example.com", "password": "Secret123"}, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
