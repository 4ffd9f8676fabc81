package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pavangundu/ai-helper/internal/handlers"
)

// RegisterRoadmapRoutes mounts roadmap and task routes. generateLimits run before generation.
func RegisterRoadmapRoutes(r gin.IRouter, h *handlers.Handler, generateLimits ...gin.HandlerFunc) {
	roadmap := r.Group("/roadmap")
	{
		roadmap.POST("/generate", append(generateLimits, h.GenerateRoadmap)...)
		roadmap.GET("", h.GetRoadmap)
		roadmap.GET("/:id/progress", h.GetProgress)
		roadmap.GET("/:id/current", h.GetCurrentTask)
	}

	r.POST("/task/complete", h.CompleteTask)
}
