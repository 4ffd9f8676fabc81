package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/pavangundu/ai-helper/internal/handlers"
)

func RegisterUserRoutes(r gin.IRouter, h *handlers.Handler) {
	user := r.Group("/user")
	{
		user.GET("/profile", h.GetProfile)
		user.PATCH("/profile", h.UpdateProfile)
		user.DELETE("", h.DeleteAccount)
	}

	r.GET("/dashboard", h.GetDashboard)
	r.GET("/badges", h.GetBadges)
	r.GET("/activity", h.GetActivityFeed)
}
