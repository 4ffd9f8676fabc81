package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pavangundu/ai-helper/internal/config"
	"github.com/pavangundu/ai-helper/internal/database"
	"github.com/pavangundu/ai-helper/internal/handlers"
	"github.com/pavangundu/ai-helper/internal/middleware"
	"github.com/pavangundu/ai-helper/internal/migrations"
	"github.com/pavangundu/ai-helper/internal/routes"
	"github.com/pavangundu/ai-helper/internal/seeds"
	"github.com/pavangundu/ai-helper/internal/services"
	"github.com/pavangundu/ai-helper/internal/store"
	"github.com/pavangundu/ai-helper/pkg/logger"
)

func main() {
	// 0. Load Config & Initialize Logger
	config.LoadConfig()
	cfg := config.AppConfig

	env := cfg.Env
	if env == "" {
		env = "development"
	}
	logger.Init(env)
	logger.Info().Str("environment", env).Msg("Starting AI Helper backend...")

	if env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 1. Database, migrations and seed data
	database.Connect()
	if err := migrations.NewMigrator(database.DB).Run(); err != nil {
		logger.Fatal().Err(err).Msg("Failed to run database migrations")
	}
	if err := seeds.SeedBadges(database.DB); err != nil {
		logger.Fatal().Err(err).Msg("Failed to seed badges")
	}

	bootCtx, cancelBoot := context.WithTimeout(context.Background(), 10*time.Second)
	redisStore := database.InitRedis(bootCtx)
	defer redisStore.Close()

	// 2. Gemini (optional). Without it roadmap generation and practice answer 503,
	// except the quiz which serves its built-in questions.
	var llm services.TextGenerator
	var generator services.RoadmapGenerator
	if cfg.GeminiAPIKey != "" {
		client, err := services.NewGeminiClient(bootCtx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to create Gemini client")
		}
		llm = client
		generator = services.NewPlanGenerator(client)
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set, roadmap generation and practice are disabled")
	}
	cancelBoot()

	// 3. Services
	profileStore := store.NewProfileStore(database.DB)
	roadmapStore := store.NewRoadmapStore(database.DB)
	activityStore := store.NewActivityStore(database.DB)

	activity := services.NewActivityLog(activityStore)
	progress := services.NewProgressCache(redisStore, cfg.ProgressCacheTTL())

	policy := services.DefaultRewardPolicy()
	policy.RepeatSubtaskRewards = cfg.TaskRepeatRewards
	completion := services.NewCompletionService(profileStore, roadmapStore, activity, progress, policy)
	completion.Location = cfg.Location()

	roadmaps := services.NewRoadmapService(profileStore, roadmapStore, generator, redisStore, progress, activity)
	if t := cfg.GenerationTimeout(); t > 0 {
		roadmaps.GenerationTimeout = t
	}
	if cfg.GenerationLimitPerHour > 0 {
		roadmaps.GenerationsPerHour = cfg.GenerationLimitPerHour
	}

	practice := services.NewPracticeService(llm, profileStore, roadmapStore, redisStore)
	if t := cfg.PracticeTimeout(); t > 0 {
		practice.RequestTimeout = t
	}
	if cfg.PracticeLimitPerHour > 0 {
		practice.RequestsPerHour = cfg.PracticeLimitPerHour
	}

	h := &handlers.Handler{
		Profiles:   services.NewProfileService(profileStore, roadmapStore, activity, progress),
		Roadmaps:   roadmaps,
		Completion: completion,
		Practice:   practice,
		Activity:   activityStore,
		Tokens:     redisStore,
	}

	// 4. Router
	r := routes.NewRouter(h, routes.RouterConfig{
		FrontendURL: cfg.FrontendURL,
		Auth:        middleware.AuthMiddleware(redisStore, profileStore),
		RateLimit:   true,
		Health: func(c *gin.Context) {
			dbStatus := "ok"
			if err := database.Ping(database.DB); err != nil {
				dbStatus = "error"
			}

			redisStatus := "not configured"
			if redisStore.Enabled() {
				redisStatus = "ok"
				if err := redisStore.Ping(c.Request.Context()); err != nil {
					redisStatus = "error"
				}
			}

			status := "ok"
			if dbStatus != "ok" || redisStatus == "error" {
				status = "degraded"
			}
			c.JSON(http.StatusOK, gin.H{
				"status": status,
				"checks": gin.H{
					"database":  dbStatus,
					"redis":     redisStatus,
					"generator": generator != nil,
				},
			})
		},
	})

	// 5. Start Server with graceful shutdown
	port := cfg.Port
	if port == "" {
		port = "8080"
	}

	// Generation can take well over a minute
	srv := &http.Server{
		Addr:         ":" + port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: roadmaps.GenerationTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info().Str("port", port).Str("env", env).Msg("Server starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Info().Msg("Server exited gracefully")
}
