package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pavangundu/ai-helper/internal/handlers"
	"github.com/pavangundu/ai-helper/internal/middleware"
)

// RouterConfig is what NewRouter needs besides the handlers.
type RouterConfig struct {
	FrontendURL string
	Auth        gin.HandlerFunc
	Health      gin.HandlerFunc
	// RateLimit enables the per-IP limiters.
	RateLimit bool
}

// NewRouter builds the engine with middleware and every API route mounted under /api.
func NewRouter(h *handlers.Handler, cfg RouterConfig) *gin.Engine {
	r := gin.New()

	r.Use(middleware.LoggingMiddleware())
	r.Use(middleware.ErrorHandlerMiddleware())
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORSMiddleware(cfg.FrontendURL))
	if cfg.RateLimit {
		r.Use(middleware.GeneralRateLimit())
	}

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		if cfg.RateLimit {
			auth.Use(middleware.AuthRateLimit())
		}
		RegisterAuthRoutes(auth, h, cfg.Auth)

		protected := api.Group("")
		protected.Use(cfg.Auth)
		RegisterUserRoutes(protected, h)
		if cfg.RateLimit {
			RegisterRoadmapRoutes(protected, h, middleware.GenerateRateLimit())
			RegisterPracticeRoutes(protected, h, middleware.PracticeRateLimit())
		} else {
			RegisterRoadmapRoutes(protected, h)
			RegisterPracticeRoutes(protected, h)
		}
	}

	if cfg.Health != nil {
		r.GET("/health", cfg.Health)
	}
	return r
}
