package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pavangundu/ai-helper/internal/handlers"
)

// RegisterPracticeRoutes mounts the model-backed practice tools. limits run before each of them.
func RegisterPracticeRoutes(r gin.IRouter, h *handlers.Handler, limits ...gin.HandlerFunc) {
	limited := r.Group("", limits...)

	practice := limited.Group("/practice")
	{
		practice.POST("/aptitude/quiz", h.GenerateQuiz)
		practice.POST("/dsa/problem", h.GenerateProblem)
		practice.POST("/dsa/judge", h.JudgeSolution)
	}

	limited.POST("/mentor/chat", h.MentorChat)
	limited.POST("/resume/optimize", h.OptimizeResume)
}
